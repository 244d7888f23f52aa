// Package transport implements the JSON-RPC-over-HTTP wire carrying
// league.v2 envelopes between agents: a chi-based inbound Handler and
// an outbound Client with timeout and retry support.
package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/leaguerunner/tournament/internal/config"
	apperrors "github.com/leaguerunner/tournament/pkg/errors"
	"github.com/leaguerunner/tournament/pkg/logger"
)

// RPCRequest is the JSON-RPC 2.0 envelope every agent speaks. The only
// method in use is handle_message; params.message carries the raw
// league.v2 envelope for the receiving agent to decode.
type RPCRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Method  string    `json:"method"`
	Params  RPCParams `json:"params"`
}

// RPCParams holds the single league.v2 message carried by a request.
type RPCParams struct {
	Message json.RawMessage `json:"message"`
}

// RPCResponse is the JSON-RPC 2.0 response, result carrying an
// outbound league.v2 envelope (often an ACK) when the handler has one.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError mirrors a pkg/errors.AppError onto the wire.
type RPCError struct {
	Code        int    `json:"code"`
	LeagueCode  string `json:"league_code"`
	Description string `json:"description"`
	Message     string `json:"message"`
}

// MessageHandler decodes and reacts to one inbound league.v2 envelope,
// optionally returning an outbound envelope (e.g. an immediate ACK).
type MessageHandler func(ctx context.Context, raw json.RawMessage) (json.RawMessage, *apperrors.AppError)

// Server exposes a single handle_message endpoint plus health and
// debug/system introspection, in the shape of the teacher's chi server.
type Server struct {
	router  *chi.Mux
	handler MessageHandler
	log     *logger.Logger
}

// NewServer wires middleware and routes around handler. diagnostics may
// be nil, in which case /debug/system is not mounted.
func NewServer(handler MessageHandler, corsCfg config.CORSConfig, diagnostics http.Handler, log *logger.Logger) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		handler: handler,
		log:     log,
	}

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsCfg.AllowedOrigins,
		AllowedMethods:   corsCfg.AllowedMethods,
		AllowedHeaders:   corsCfg.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           corsCfg.MaxAge,
	}))

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Post("/rpc", s.handleRPC)
	if diagnostics != nil {
		s.router.Get("/debug/system", diagnostics.ServeHTTP)
	}

	return s
}

// Router exposes the underlying chi.Mux so a process can mount
// additional routes (e.g. the spectator websocket) before serving.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the underlying http.Handler for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req RPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "", apperrors.ErrInvalidMessageFormat)
		return
	}

	result, appErr := s.handler(r.Context(), req.Params.Message)
	if appErr != nil {
		s.log.LogError("handle_message failed", appErr, zap.String("id", req.ID))
		s.writeError(w, req.ID, appErr)
		return
	}

	resp := RPCResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) writeError(w http.ResponseWriter, id string, appErr *apperrors.AppError) {
	resp := RPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:        appErr.Code,
			LeagueCode:  appErr.LeagueCode,
			Description: appErr.Description,
			Message:     appErr.Message,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK) // JSON-RPC errors ride a 200 with an error body
	_ = json.NewEncoder(w).Encode(resp)
}

// defaultRequestTimeout is not referenced by Client; a single outbound
// RPC call is bounded by the timeout of the http.Client given to NewClient.
const defaultRequestTimeout = 5 * time.Second
