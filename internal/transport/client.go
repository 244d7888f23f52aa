package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/leaguerunner/tournament/pkg/retry"
)

// Client delivers league.v2 envelopes to a peer's /rpc endpoint,
// retrying transient failures per the retry.Policy it was built with.
type Client struct {
	httpClient *http.Client
	policy     retry.Policy
}

// NewClient builds a Client bound to httpClient (and its timeout) and policy.
func NewClient(httpClient *http.Client, policy retry.Policy) *Client {
	return &Client{httpClient: httpClient, policy: policy}
}

// Send posts message to endpoint as a handle_message RPC call and
// returns the raw result payload, if any.
func (c *Client) Send(ctx context.Context, endpoint, requestID string, message json.RawMessage) (json.RawMessage, error) {
	req := RPCRequest{
		JSONRPC: "2.0",
		ID:      requestID,
		Method:  "handle_message",
		Params:  RPCParams{Message: message},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal rpc request: %w", err)
	}

	var result json.RawMessage
	err = retry.Do(ctx, c.policy, nil, func(ctx context.Context) error {
		res, sendErr := c.doOnce(ctx, endpoint, body)
		if sendErr != nil {
			return sendErr
		}
		result = res
		return nil
	})
	return result, err
}

func (c *Client) doOnce(ctx context.Context, endpoint string, body []byte) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, retry.MarkTransient(fmt.Errorf("rpc call: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, retry.MarkTransient(fmt.Errorf("rpc call: peer returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc call: peer returned %d", resp.StatusCode)
	}

	var rpcResp RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("decode rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("rpc error %s: %s", rpcResp.Error.LeagueCode, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}
