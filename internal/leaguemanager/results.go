package leaguemanager

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/leaguerunner/tournament/internal/domain"
	"github.com/leaguerunner/tournament/internal/protocol"
	apperrors "github.com/leaguerunner/tournament/pkg/errors"
)

// defaultPoints is the 3/1/0 fallback used when a score map omits a
// player's key, per §4.2.4 step 2.
func defaultPoints(winner, playerID string) int {
	switch {
	case winner == "":
		return 1
	case winner == playerID:
		return 3
	default:
		return 0
	}
}

// handleMatchResultReport implements §4.2.4: idempotent standings
// mutation, completion bookkeeping, and round/league progression.
func (m *Manager) handleMatchResultReport(ctx context.Context, req *protocol.MatchResultReport) (*protocol.MatchResultAck, *apperrors.AppError) {
	m.mu.Lock()

	match := m.league.MatchByID(req.MatchIDField)
	if match == nil {
		m.mu.Unlock()
		return nil, apperrors.ErrMatchNotFound.WithMessage("unknown match_id: " + req.MatchIDField)
	}

	_, alreadyDone := m.league.CompletedMatches[req.MatchIDField]
	if alreadyDone {
		m.mu.Unlock()
		return &protocol.MatchResultAck{
			Envelope:     m.replyEnvelope(protocol.TypeMatchResultAck, req.Envelope),
			MatchIDField: req.MatchIDField,
			Status:       "recorded",
		}, nil
	}

	m.league.CompletedMatches[req.MatchIDField] = struct{}{}
	round := match.RoundID
	roundDone := m.league.RoundComplete(round)
	totalRounds := m.league.TotalRounds
	leagueID := m.league.LeagueID
	playerIDs := m.players.orderedIDs()

	m.mu.Unlock()

	result := &domain.MatchResult{
		MatchID:   req.MatchIDField,
		RoundID:   req.RoundIDField,
		PlayerAID: match.PlayerAID,
		PlayerBID: match.PlayerBID,
		Winner:    req.Result.Winner,
		Score:     req.Result.Score,
		Details: domain.MatchResultDetails{
			DrawnNumber: req.Result.Details.DrawnNumber,
			Choices:     req.Result.Details.Choices,
			Reason:      req.Result.Details.Reason,
		},
	}
	if err := m.matches.Save(ctx, result); err != nil {
		m.log.LogError("failed to persist match result", err, zap.String("match_id", req.MatchIDField))
	}

	if err := m.applyStandings(ctx, match.PlayerAID, match.PlayerBID, req.Result.Winner, req.Result.Score); err != nil {
		m.log.LogError("failed to update standings", err, zap.String("match_id", req.MatchIDField))
	}

	standings, err := m.standings.GetAll(ctx)
	if err != nil {
		m.log.LogError("failed to read standings for fan-out", err)
	} else {
		m.fanOutStandings(ctx, leagueID, round, standings)
	}

	if roundDone {
		m.onRoundComplete(ctx, leagueID, round, totalRounds, playerIDs)
	}

	return &protocol.MatchResultAck{
		Envelope:     m.replyEnvelope(protocol.TypeMatchResultAck, req.Envelope),
		MatchIDField: req.MatchIDField,
		Status:       "recorded",
	}, nil
}

// applyStandings increments played/wins/draws/losses/points for the
// two participants per §4.2.4 step 2, then recomputes ranks (done
// inside StandingsRepository.Put per §3 Invariant 7).
func (m *Manager) applyStandings(ctx context.Context, playerAID, playerBID, winner string, score map[string]int) error {
	ids := []string{playerAID, playerBID}
	updated := make([]*domain.Standing, 0, 2)

	for _, id := range ids {
		st, err := m.standings.Get(ctx, id)
		if err != nil {
			continue
		}
		st.Played++
		switch {
		case winner == id:
			st.Wins++
		case winner == "":
			st.Draws++
		default:
			st.Losses++
		}
		if pts, ok := score[id]; ok {
			st.Points += pts
		} else {
			st.Points += defaultPoints(winner, id)
		}
		updated = append(updated, st)
	}

	return m.standings.Put(ctx, updated)
}

func (m *Manager) fanOutStandings(ctx context.Context, leagueID string, round int, standings []*domain.Standing) {
	payload := make([]protocol.StandingPayload, 0, len(standings))
	for _, s := range standings {
		payload = append(payload, toStandingPayload(s))
	}

	update := protocol.LeagueStandingsUpdate{
		Envelope: protocol.Envelope{
			Protocol:       protocol.ProtocolVersion,
			MessageType:    protocol.TypeLeagueStandingsUpdate,
			Sender:         m.senderID,
			Timestamp:      protocol.Now(),
			ConversationID: m.nextConversationID(),
			LeagueID:       leagueID,
			RoundID:        round,
		},
		LeagueIDField: leagueID,
		RoundIDField:  round,
		Standings:     payload,
	}

	raw, err := json.Marshal(update)
	if err != nil {
		m.log.LogError("failed to marshal standings update", err)
		return
	}

	m.mu.Lock()
	targets := m.playerEndpoints()
	m.mu.Unlock()

	m.broadcast(ctx, targets, raw, "league_standings_update")
}

// playerEndpoints returns registered player contact endpoints. Caller
// must hold mu.
func (m *Manager) playerEndpoints() []string {
	var out []string
	for _, id := range m.players.orderedIDs() {
		if a, ok := m.players.get(id); ok {
			out = append(out, a.ContactEndpoint)
		}
	}
	return out
}

func toStandingPayload(s *domain.Standing) protocol.StandingPayload {
	return protocol.StandingPayload{
		Rank:        s.Rank,
		PlayerID:    s.PlayerID,
		DisplayName: s.DisplayName,
		Played:      s.Played,
		Wins:        s.Wins,
		Draws:       s.Draws,
		Losses:      s.Losses,
		Points:      s.Points,
	}
}

// onRoundComplete implements §4.2.4 step 6: emits ROUND_COMPLETED, then
// either advances to the next round's announcement or completes the
// league, emitting LEAGUE_COMPLETED to every agent.
func (m *Manager) onRoundComplete(ctx context.Context, leagueID string, round, totalRounds int, playerIDs []string) {
	m.mu.Lock()
	matchesCompleted := len(m.league.CompletedMatches)
	isFinal := round == totalRounds
	nextRound := round + 1
	if !isFinal {
		m.league.CurrentRound = nextRound
	} else {
		m.league.Status = domain.StatusCompleted
	}
	targets := m.allAgentEndpoints()
	m.mu.Unlock()

	completed := protocol.RoundCompleted{
		Envelope: protocol.Envelope{
			Protocol:       protocol.ProtocolVersion,
			MessageType:    protocol.TypeRoundCompleted,
			Sender:         m.senderID,
			Timestamp:      protocol.Now(),
			ConversationID: m.nextConversationID(),
			LeagueID:       leagueID,
			RoundID:        round,
		},
		LeagueIDField:    leagueID,
		RoundIDField:     round,
		MatchesCompleted: matchesCompleted,
		Summary:          "round completed",
	}
	if !isFinal {
		completed.NextRoundID = nextRound
	}

	if raw, err := json.Marshal(completed); err == nil {
		m.mu.Lock()
		playerTargets := m.playerEndpoints()
		m.mu.Unlock()
		m.broadcast(ctx, playerTargets, raw, "round_completed")
	} else {
		m.log.LogError("failed to marshal round_completed", err)
	}

	if isFinal {
		m.emitLeagueCompleted(ctx, leagueID, totalRounds, matchesCompleted, targets)
		return
	}

	go m.announceRound(ctx, nextRound)
}

func (m *Manager) emitLeagueCompleted(ctx context.Context, leagueID string, totalRounds, totalMatches int, targets []string) {
	standings, err := m.standings.GetAll(ctx)
	if err != nil {
		m.log.LogError("failed to read final standings", err)
		return
	}

	var champion string
	if len(standings) > 0 {
		champion = standings[0].PlayerID
	}

	payload := make([]protocol.StandingPayload, 0, len(standings))
	for _, s := range standings {
		payload = append(payload, toStandingPayload(s))
	}

	completed := protocol.LeagueCompleted{
		Envelope: protocol.Envelope{
			Protocol:       protocol.ProtocolVersion,
			MessageType:    protocol.TypeLeagueCompleted,
			Sender:         m.senderID,
			Timestamp:      protocol.Now(),
			ConversationID: m.nextConversationID(),
			LeagueID:       leagueID,
		},
		LeagueIDField:  leagueID,
		TotalRounds:    totalRounds,
		TotalMatches:   totalMatches,
		Champion:       champion,
		FinalStandings: payload,
	}

	raw, err := json.Marshal(completed)
	if err != nil {
		m.log.LogError("failed to marshal league_completed", err)
		return
	}

	m.broadcast(ctx, targets, raw, "league_completed")
}
