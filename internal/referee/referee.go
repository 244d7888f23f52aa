// Package referee implements a Referee agent: registration with the
// League Manager, the inbound ROUND_ANNOUNCEMENT/LEAGUE_COMPLETED
// surface, and the per-match task pool that executes spec.md §4.3's
// invite/choose/adjudicate/report micro-protocol.
package referee

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leaguerunner/tournament/internal/config"
	"github.com/leaguerunner/tournament/internal/gameengine"
	"github.com/leaguerunner/tournament/internal/protocol"
	apperrors "github.com/leaguerunner/tournament/pkg/errors"
	"github.com/leaguerunner/tournament/pkg/logger"
	"github.com/leaguerunner/tournament/pkg/metrics"
)

// Caller delivers one outbound league.v2 envelope to endpoint and
// returns the peer's raw reply payload, if any. transport.Client
// satisfies this.
type Caller interface {
	Send(ctx context.Context, endpoint, requestID string, message json.RawMessage) (json.RawMessage, error)
}

// Referee drives match tasks for every ROUND_ANNOUNCEMENT match
// assigned to its own endpoint, up to MaxConcurrentMatches concurrently.
// Additional assigned matches beyond capacity are skipped, not queued
// (spec.md §9 open question, reference behavior).
type Referee struct {
	mu sync.Mutex

	id         string
	endpoint   string
	leagueID   string
	lmEndpoint string

	caller Caller
	engine gameengine.Engine

	cfg      config.RefereeConfig
	timeouts config.TimeoutConfig
	log      *logger.Logger
	metrics  *metrics.Metrics

	sem chan struct{}

	activeMu sync.Mutex
	active   map[string]*matchTask
}

// New creates a Referee bound to its own contact endpoint. Register
// with the League Manager before serving ROUND_ANNOUNCEMENT traffic.
func New(endpoint, lmEndpoint string, caller Caller, engine gameengine.Engine, cfg config.RefereeConfig, timeouts config.TimeoutConfig, log *logger.Logger, m *metrics.Metrics) *Referee {
	return &Referee{
		endpoint:   endpoint,
		lmEndpoint: lmEndpoint,
		caller:     caller,
		engine:     engine,
		cfg:        cfg,
		timeouts:   timeouts,
		log:        log,
		metrics:    m,
		sem:        make(chan struct{}, cfg.MaxConcurrentMatches),
		active:     make(map[string]*matchTask),
	}
}

// senderID is this referee's envelope sender field, valid only after
// Register succeeds.
func (r *Referee) senderID() string {
	return fmt.Sprintf("referee:%s", r.id)
}

// Register sends REFEREE_REGISTER_REQUEST to the League Manager and
// records the assigned id and league id from the response.
func (r *Referee) Register(ctx context.Context, meta protocol.RefereeMeta) error {
	lmEndpoint := r.lmEndpoint
	req := protocol.RefereeRegisterRequest{
		Envelope: protocol.Envelope{
			Protocol:       protocol.ProtocolVersion,
			MessageType:    protocol.TypeRefereeRegisterRequest,
			Sender:         "referee:unregistered",
			Timestamp:      protocol.Now(),
			ConversationID: uuid.NewString(),
		},
		RefereeMeta: meta,
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal referee register request: %w", err)
	}

	result, err := r.caller.Send(ctx, lmEndpoint, req.ConversationID, raw)
	if err != nil {
		return fmt.Errorf("send referee register request: %w", err)
	}

	var resp protocol.RefereeRegisterResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return fmt.Errorf("decode referee register response: %w", err)
	}
	if resp.Status != "ACCEPTED" {
		return fmt.Errorf("referee registration rejected: %s", resp.Reason)
	}

	r.mu.Lock()
	r.id = resp.RefereeID
	r.leagueID = resp.LeagueID
	r.mu.Unlock()

	r.log.Info("referee registered", zap.String("referee_id", resp.RefereeID), zap.String("league_id", resp.LeagueID))
	return nil
}

// ID returns the assigned referee id, empty before Register succeeds.
func (r *Referee) ID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id
}

// HandleMessage is the transport.MessageHandler adapter.
func (r *Referee) HandleMessage(ctx context.Context, raw json.RawMessage) (json.RawMessage, *apperrors.AppError) {
	msg, appErr := protocol.Decode(raw)
	if appErr != nil {
		return nil, appErr
	}

	switch m := msg.(type) {
	case *protocol.RoundAnnouncement:
		r.handleRoundAnnouncement(context.Background(), m)
		return r.ack(m.Envelope)
	case *protocol.LeagueCompleted:
		return r.ack(m.Envelope)
	default:
		return nil, apperrors.ErrInvalidMessageFormat.WithMessage(
			fmt.Sprintf("referee does not accept %s", m))
	}
}

func (r *Referee) ack(req protocol.Envelope) (json.RawMessage, *apperrors.AppError) {
	ack := protocol.Ack{Envelope: protocol.Envelope{
		Protocol:       protocol.ProtocolVersion,
		MessageType:    protocol.TypeAck,
		Sender:         r.senderID(),
		Timestamp:      protocol.Now(),
		ConversationID: req.ConversationID,
	}}
	raw, err := json.Marshal(ack)
	if err != nil {
		return nil, apperrors.ErrInternal.WithError(err)
	}
	return raw, nil
}

// handleRoundAnnouncement implements spec.md §4.3 steps 1-3: for every
// match assigned to this referee's own endpoint, validate both player
// endpoints are present, try to acquire a concurrency slot without
// blocking, and spawn a match task on success.
func (r *Referee) handleRoundAnnouncement(ctx context.Context, ann *protocol.RoundAnnouncement) {
	r.mu.Lock()
	r.leagueID = ann.LeagueIDField
	r.mu.Unlock()

	for _, match := range ann.Matches {
		if match.RefereeEndpoint != r.endpoint {
			continue
		}
		if match.PlayerAEndpoint == "" || match.PlayerBEndpoint == "" {
			r.log.Error("skipping match with missing player endpoint", zap.String("match_id", match.MatchID))
			continue
		}

		select {
		case r.sem <- struct{}{}:
		default:
			r.log.Error("referee at capacity, skipping match",
				zap.String("match_id", match.MatchID), zap.Int("max_concurrent_matches", r.cfg.MaxConcurrentMatches))
			continue
		}

		task := newMatchTask(r, ann.LeagueIDField, ann.RoundIDField, match)
		r.activeMu.Lock()
		r.active[match.MatchID] = task
		r.activeMu.Unlock()

		if r.metrics != nil {
			r.metrics.RecordMatchStart()
		}

		go func() {
			task.run(context.Background())
			r.onTaskComplete(match.MatchID)
		}()
	}
}

// onTaskComplete removes matchID from the active set and releases its
// concurrency slot on every exit path, success or failure.
func (r *Referee) onTaskComplete(matchID string) {
	r.activeMu.Lock()
	delete(r.active, matchID)
	r.activeMu.Unlock()
	<-r.sem
}

// ActiveCount reports the number of in-flight match tasks.
func (r *Referee) ActiveCount() int {
	r.activeMu.Lock()
	defer r.activeMu.Unlock()
	return len(r.active)
}
