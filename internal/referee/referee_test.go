package referee

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaguerunner/tournament/internal/config"
	"github.com/leaguerunner/tournament/internal/gameengine"
	"github.com/leaguerunner/tournament/internal/protocol"
	"github.com/leaguerunner/tournament/pkg/logger"
)

type recordingCaller struct {
	mu    sync.Mutex
	calls []call
	reply json.RawMessage
	err   error
}

type call struct {
	endpoint string
	env      protocol.Envelope
}

func newRecordingCaller() *recordingCaller {
	return &recordingCaller{}
}

func (c *recordingCaller) Send(ctx context.Context, endpoint, requestID string, message json.RawMessage) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var env protocol.Envelope
	_ = json.Unmarshal(message, &env)
	c.calls = append(c.calls, call{endpoint: endpoint, env: env})
	return c.reply, c.err
}

func newTestReferee(t *testing.T, caller Caller) *Referee {
	t.Helper()
	log, err := logger.New("error", "json")
	require.NoError(t, err)
	cfg := config.RefereeConfig{MaxConcurrentMatches: 4}
	timeouts := config.TimeoutConfig{Transport: 2 * time.Second, ChooseParity: 2 * time.Second, Join: 2 * time.Second}
	r := New("http://ref.local/rpc", "http://lm.local/rpc", caller, gameengine.NewParityEngine(), cfg, timeouts, log, nil)
	r.id = "REF01"
	return r
}

func TestHandleRoundAnnouncement_SkipsMatchesForOtherReferees(t *testing.T) {
	caller := newRecordingCaller()
	r := newTestReferee(t, caller)

	ann := &protocol.RoundAnnouncement{
		Envelope:      protocol.Envelope{ConversationID: "conv-1"},
		LeagueIDField: "L1",
		RoundIDField:  1,
		Matches: []protocol.ScheduledMatch{
			{MatchID: "R1M1", RefereeEndpoint: "http://other-ref.local/rpc", PlayerAEndpoint: "http://a", PlayerBEndpoint: "http://b"},
		},
	}

	r.handleRoundAnnouncement(context.Background(), ann)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 0, r.ActiveCount())
	assert.Empty(t, caller.calls)
}

func TestHandleRoundAnnouncement_SkipsMatchWithMissingEndpoint(t *testing.T) {
	caller := newRecordingCaller()
	r := newTestReferee(t, caller)

	ann := &protocol.RoundAnnouncement{
		Envelope:      protocol.Envelope{ConversationID: "conv-1"},
		LeagueIDField: "L1",
		RoundIDField:  1,
		Matches: []protocol.ScheduledMatch{
			{MatchID: "R1M1", RefereeEndpoint: "http://ref.local/rpc", PlayerAEndpoint: "", PlayerBEndpoint: "http://b"},
		},
	}

	r.handleRoundAnnouncement(context.Background(), ann)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 0, r.ActiveCount())
}

func TestHandleRoundAnnouncement_RespectsConcurrencyCap(t *testing.T) {
	caller := newRecordingCaller()
	caller.err = assertErr{}

	log, err := logger.New("error", "json")
	require.NoError(t, err)
	cfg := config.RefereeConfig{MaxConcurrentMatches: 1}
	timeouts := config.TimeoutConfig{Transport: 50 * time.Millisecond, ChooseParity: 50 * time.Millisecond, Join: 50 * time.Millisecond}
	r := New("http://ref.local/rpc", "http://lm.local/rpc", caller, gameengine.NewParityEngine(), cfg, timeouts, log, nil)
	r.id = "REF01"

	ann := &protocol.RoundAnnouncement{
		Envelope:      protocol.Envelope{ConversationID: "conv-1"},
		LeagueIDField: "L1",
		RoundIDField:  1,
		Matches: []protocol.ScheduledMatch{
			{MatchID: "R1M1", RefereeEndpoint: "http://ref.local/rpc", PlayerAEndpoint: "http://a", PlayerBEndpoint: "http://b"},
			{MatchID: "R1M2", RefereeEndpoint: "http://ref.local/rpc", PlayerAEndpoint: "http://c", PlayerBEndpoint: "http://d"},
		},
	}

	r.handleRoundAnnouncement(context.Background(), ann)

	// At most one task could acquire the single semaphore slot
	// immediately; the second is skipped, not queued.
	assert.LessOrEqual(t, r.ActiveCount(), 1)

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, r.ActiveCount())
}

type assertErr struct{}

func (assertErr) Error() string { return "simulated transport failure" }
