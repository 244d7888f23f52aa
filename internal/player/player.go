// Package player implements a Player agent: registration with the
// League Manager and the inbound handler set that drives one match's
// worth of a round (game invitation, parity call, game-over) plus the
// league-wide broadcast messages a player only needs to acknowledge.
package player

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leaguerunner/tournament/internal/domain"
	"github.com/leaguerunner/tournament/internal/protocol"
	"github.com/leaguerunner/tournament/internal/repository"
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

// Player answers a referee's match micro-protocol using a Strategy and
// records every completed game to its own history.
type Player struct {
	mu sync.Mutex

	id         string
	leagueID   string
	lmEndpoint string

	caller   Caller
	strategy Strategy
	history  repository.HistoryRepository

	log     *logger.Logger
	metrics *metrics.Metrics
}

// New creates a Player. strategy may reference the same history
// repository passed here (CounterFrequencyStrategy does).
func New(lmEndpoint string, caller Caller, strategy Strategy, history repository.HistoryRepository, log *logger.Logger, m *metrics.Metrics) *Player {
	return &Player{
		lmEndpoint: lmEndpoint,
		caller:     caller,
		strategy:   strategy,
		history:    history,
		log:        log,
		metrics:    m,
	}
}

func (p *Player) senderID() string {
	return fmt.Sprintf("player:%s", p.id)
}

// ID returns the assigned player id, empty before Register succeeds.
func (p *Player) ID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.id
}

// Register sends LEAGUE_REGISTER_REQUEST to the League Manager and
// records the assigned id and league id from the response.
func (p *Player) Register(ctx context.Context, meta protocol.PlayerMeta) error {
	req := protocol.LeagueRegisterRequest{
		Envelope: protocol.Envelope{
			Protocol:       protocol.ProtocolVersion,
			MessageType:    protocol.TypeLeagueRegisterRequest,
			Sender:         "player:unregistered",
			Timestamp:      protocol.Now(),
			ConversationID: uuid.NewString(),
		},
		PlayerMeta: meta,
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal league register request: %w", err)
	}

	result, err := p.caller.Send(ctx, p.lmEndpoint, req.ConversationID, raw)
	if err != nil {
		return fmt.Errorf("send league register request: %w", err)
	}

	var resp protocol.LeagueRegisterResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return fmt.Errorf("decode league register response: %w", err)
	}
	if resp.Status != "ACCEPTED" {
		return fmt.Errorf("league registration rejected: %s", resp.Reason)
	}

	p.mu.Lock()
	p.id = resp.PlayerID
	p.leagueID = resp.LeagueID
	p.mu.Unlock()

	if setter, ok := p.strategy.(interface{ SetPlayerID(string) }); ok {
		setter.SetPlayerID(resp.PlayerID)
	}

	if p.metrics != nil {
		p.metrics.RecordRegistration("player", "accepted")
	}

	p.log.Info("player registered", zap.String("player_id", resp.PlayerID), zap.String("league_id", resp.LeagueID))
	return nil
}

// HandleMessage is the transport.MessageHandler adapter.
func (p *Player) HandleMessage(ctx context.Context, raw json.RawMessage) (json.RawMessage, *apperrors.AppError) {
	msg, appErr := protocol.Decode(raw)
	if appErr != nil {
		return nil, appErr
	}

	switch m := msg.(type) {
	case *protocol.RoundAnnouncement:
		return p.ack(m.Envelope)
	case *protocol.GameInvitation:
		return p.handleGameInvitation(m)
	case *protocol.ChooseParityCall:
		return p.handleChooseParity(ctx, m)
	case *protocol.GameOver:
		return p.handleGameOver(ctx, m)
	case *protocol.LeagueStandingsUpdate:
		return p.ack(m.Envelope)
	case *protocol.RoundCompleted:
		return p.ack(m.Envelope)
	case *protocol.LeagueCompleted:
		return p.ack(m.Envelope)
	default:
		return nil, apperrors.ErrInvalidMessageFormat.WithMessage(
			fmt.Sprintf("player does not accept %s", m))
	}
}

func (p *Player) ack(req protocol.Envelope) (json.RawMessage, *apperrors.AppError) {
	ack := protocol.Ack{Envelope: protocol.Envelope{
		Protocol:       protocol.ProtocolVersion,
		MessageType:    protocol.TypeAck,
		Sender:         p.senderID(),
		Timestamp:      protocol.Now(),
		ConversationID: req.ConversationID,
	}}
	raw, err := json.Marshal(ack)
	if err != nil {
		return nil, apperrors.ErrInternal.WithError(err)
	}
	return raw, nil
}

// handleGameInvitation always accepts, per spec.md's baseline player:
// there is no rule under which a registered player declines a match.
func (p *Player) handleGameInvitation(inv *protocol.GameInvitation) (json.RawMessage, *apperrors.AppError) {
	ack := protocol.GameJoinAck{
		Envelope: protocol.Envelope{
			Protocol:       protocol.ProtocolVersion,
			MessageType:    protocol.TypeGameJoinAck,
			Sender:         p.senderID(),
			Timestamp:      protocol.Now(),
			ConversationID: inv.ConversationID,
			MatchID:        inv.MatchIDField,
		},
		MatchIDField:     inv.MatchIDField,
		PlayerID:         p.ID(),
		ArrivalTimestamp: protocol.Now(),
		Accept:           true,
	}

	raw, err := json.Marshal(ack)
	if err != nil {
		return nil, apperrors.ErrInternal.WithError(err)
	}
	return raw, nil
}

// handleChooseParity asks the configured Strategy for a parity call
// against the invitation's opponent and replies with that choice.
func (p *Player) handleChooseParity(ctx context.Context, call *protocol.ChooseParityCall) (json.RawMessage, *apperrors.AppError) {
	choice, err := p.strategy.Choose(ctx, call.Context.OpponentID)
	if err != nil {
		p.log.LogError("strategy failed to produce a parity choice", err)
		return nil, apperrors.ErrInternal.WithError(err)
	}

	resp := protocol.ChooseParityResponse{
		Envelope: protocol.Envelope{
			Protocol:       protocol.ProtocolVersion,
			MessageType:    protocol.TypeChooseParityResponse,
			Sender:         p.senderID(),
			Timestamp:      protocol.Now(),
			ConversationID: call.ConversationID,
			MatchID:        call.MatchIDField,
		},
		MatchIDField: call.MatchIDField,
		PlayerID:     p.ID(),
		ParityChoice: choice,
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, apperrors.ErrInternal.WithError(err)
	}
	return raw, nil
}

// handleGameOver appends the outcome to this player's history and acks.
// The referee is the sole source of truth for who the opponent was, so
// the opponent id is recovered from GameResult.Choices: whichever key
// isn't this player's own id.
func (p *Player) handleGameOver(ctx context.Context, over *protocol.GameOver) (json.RawMessage, *apperrors.AppError) {
	id := p.ID()

	myChoice := over.GameResult.Choices[id]
	opponent, opponentChoice := "", ""
	for pid, choice := range over.GameResult.Choices {
		if pid == id {
			continue
		}
		opponent = pid
		opponentChoice = choice
	}

	won := over.GameResult.Status == "WIN" && over.GameResult.WinnerPlayerID == id

	entry := historyEntry(over.MatchIDField, opponent, myChoice, opponentChoice, over.GameResult.DrawnNumber, over.GameResult.WinnerPlayerID, won)
	if err := p.history.Append(ctx, id, entry); err != nil {
		p.log.LogError("failed to append history entry", err, zap.String("match_id", over.MatchIDField))
	}

	return p.ack(over.Envelope)
}

func historyEntry(matchID, opponent, myChoice, opponentChoice string, drawnNumber int, winner string, won bool) domain.HistoryEntry {
	return domain.HistoryEntry{
		MatchID:        matchID,
		Opponent:       opponent,
		MyChoice:       myChoice,
		OpponentChoice: opponentChoice,
		DrawnNumber:    drawnNumber,
		Winner:         winner,
		Won:            won,
	}
}
