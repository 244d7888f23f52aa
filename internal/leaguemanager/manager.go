// Package leaguemanager implements the League Manager: agent registry,
// round-robin scheduling, standings, and round/league progression.
// Its single Manager owns all mutable league state behind one mutex,
// modeling the §5 concurrency note that a true multi-threaded
// reimplementation must guard per-agent state explicitly (the
// reference relies on single-loop cooperative scheduling instead).
package leaguemanager

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/leaguerunner/tournament/internal/config"
	"github.com/leaguerunner/tournament/internal/domain"
	"github.com/leaguerunner/tournament/internal/leagueauth"
	"github.com/leaguerunner/tournament/internal/protocol"
	"github.com/leaguerunner/tournament/internal/repository"
	apperrors "github.com/leaguerunner/tournament/pkg/errors"
	"github.com/leaguerunner/tournament/pkg/logger"
)

// Fanout delivers an outbound envelope to endpoint, best-effort. Send
// failures are logged by the caller and never propagated to callers of
// Manager's own handlers (§4.2.3: "send failures are logged and
// swallowed").
type Fanout interface {
	Send(ctx context.Context, endpoint, requestID string, message json.RawMessage) (json.RawMessage, error)
}

// Observer mirrors outbound league traffic to spectators. wsobserver.Hub
// satisfies this; a Manager with a nil observer simply skips mirroring.
type Observer interface {
	Broadcast(leagueID string, envelope json.RawMessage)
}

// Manager owns the single league's registries, schedule, and
// standings. All state-mutating handlers acquire mu for the duration
// of their state transition; outbound fan-out calls are made after
// releasing it.
type Manager struct {
	mu sync.Mutex

	league   *domain.League
	players  *registry
	referees *registry

	auth        *leagueauth.Manager
	standings   repository.StandingsRepository
	matches     repository.MatchRepository
	scheduleCfg config.ScheduleConfig

	fanout   Fanout
	observer Observer
	senderID string
	log      *logger.Logger

	convCounter atomic.Int64
}

// New creates a Manager for leagueID, not yet started. observer may be
// nil; its Broadcast is then simply never called.
func New(
	leagueID string,
	auth *leagueauth.Manager,
	standings repository.StandingsRepository,
	matches repository.MatchRepository,
	scheduleCfg config.ScheduleConfig,
	fanout Fanout,
	observer Observer,
	log *logger.Logger,
) *Manager {
	return &Manager{
		league:      domain.NewLeague(leagueID),
		players:     newRegistry("P"),
		referees:    newRegistry("REF"),
		auth:        auth,
		standings:   standings,
		matches:     matches,
		scheduleCfg: scheduleCfg,
		fanout:      fanout,
		observer:    observer,
		senderID:    "league_manager:LM",
		log:         log,
	}
}

// HandleMessage decodes raw and dispatches to the matching handler. It
// is the adapter wired into transport.Server.
func (m *Manager) HandleMessage(ctx context.Context, raw json.RawMessage) (json.RawMessage, *apperrors.AppError) {
	msg, appErr := protocol.Decode(raw)
	if appErr != nil {
		return nil, appErr
	}

	switch req := msg.(type) {
	case *protocol.RefereeRegisterRequest:
		resp, appErr := m.handleRefereeRegister(req)
		if appErr != nil {
			return m.errorReply(appErr, req.Envelope, nil), nil
		}
		return marshalOrErr(resp, nil)
	case *protocol.LeagueRegisterRequest:
		resp, appErr := m.handleLeagueRegister(req)
		if appErr != nil {
			return m.errorReply(appErr, req.Envelope, nil), nil
		}
		return marshalOrErr(resp, nil)
	case *protocol.StartLeague:
		resp, appErr := m.handleStartLeague(ctx, req)
		if appErr != nil {
			return m.errorReply(appErr, req.Envelope, nil), nil
		}
		return marshalOrErr(resp, nil)
	case *protocol.MatchResultReport:
		resp, appErr := m.handleMatchResultReport(ctx, req)
		if appErr != nil {
			return m.errorReply(appErr, req.Envelope, nil), nil
		}
		return marshalOrErr(resp, nil)
	case *protocol.LeagueQuery:
		resp, appErr := m.handleLeagueQuery(ctx, req)
		if appErr != nil {
			errCtx := protocol.LeagueErrorContext{}
			if appErr.LeagueCode == apperrors.ErrAuthTokenInvalid.LeagueCode {
				errCtx["provided_token"] = req.AuthToken
			}
			return m.errorReply(appErr, req.Envelope, errCtx), nil
		}
		return marshalOrErr(resp, nil)
	default:
		return nil, apperrors.ErrInvalidMessageFormat.WithMessage(
			fmt.Sprintf("league manager does not accept %s", envelopeMessageType(msg)))
	}
}

// errorReply builds a LEAGUE_ERROR envelope for a business-logic
// failure and marshals it, swallowing a marshal error into an empty
// payload (it cannot realistically fail for this fixed shape).
func (m *Manager) errorReply(appErr *apperrors.AppError, reqEnv protocol.Envelope, errCtx protocol.LeagueErrorContext) json.RawMessage {
	leagueErr := protocol.NewError(appErr, m.senderID, reqEnv.ConversationID, string(reqEnv.MessageType), errCtx)
	raw, err := json.Marshal(leagueErr)
	if err != nil {
		m.log.LogError("failed to marshal league_error", err)
		return json.RawMessage(`{}`)
	}
	return raw
}

func marshalOrErr(v interface{}, appErr *apperrors.AppError) (json.RawMessage, *apperrors.AppError) {
	if appErr != nil {
		return nil, appErr
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.ErrInternal.WithError(err)
	}
	return raw, nil
}

func envelopeMessageType(msg interface{}) protocol.MessageType {
	switch v := msg.(type) {
	case *protocol.RefereeRegisterRequest:
		return v.MessageType
	case *protocol.LeagueRegisterRequest:
		return v.MessageType
	case *protocol.StartLeague:
		return v.MessageType
	case *protocol.MatchResultReport:
		return v.MessageType
	case *protocol.LeagueQuery:
		return v.MessageType
	default:
		return "UNKNOWN"
	}
}

func (m *Manager) nextConversationID() string {
	n := m.convCounter.Add(1)
	return fmt.Sprintf("%s-conv-%d", m.league.LeagueID, n)
}
