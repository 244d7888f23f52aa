package leaguemanager

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/leaguerunner/tournament/internal/domain"
	"github.com/leaguerunner/tournament/internal/protocol"
	apperrors "github.com/leaguerunner/tournament/pkg/errors"
)

// handleStartLeague implements §4.2.2: validates player count, builds
// the schedule, seeds standings, and kicks off round 1's announcement.
func (m *Manager) handleStartLeague(ctx context.Context, req *protocol.StartLeague) (*protocol.LeagueStatusMessage, *apperrors.AppError) {
	m.mu.Lock()

	if m.players.count() < 2 {
		m.mu.Unlock()
		return nil, apperrors.ErrNotEnoughPlayers
	}

	playerIDs := m.players.orderedIDs()
	matchesByRound := buildSchedule(playerIDs, m.scheduleCfg.Algorithm)

	m.league.MatchesByRound = matchesByRound
	m.league.TotalRounds = len(matchesByRound)
	m.league.CurrentRound = 1
	m.league.Status = domain.StatusRunning

	totalRounds := m.league.TotalRounds
	currentRound := m.league.CurrentRound
	leagueID := m.league.LeagueID

	m.mu.Unlock()

	for _, playerID := range playerIDs {
		agent, _ := m.players.get(playerID)
		if err := m.standings.Ensure(ctx, playerID, agent.DisplayName); err != nil {
			m.log.LogError("failed to seed standing", err, zap.String("player_id", playerID))
		}
	}

	go m.announceRound(context.Background(), currentRound)

	return &protocol.LeagueStatusMessage{
		Envelope:         m.replyEnvelope(protocol.TypeLeagueStatus, req.Envelope),
		LeagueIDField:    leagueID,
		Status:           string(domain.StatusRunning),
		CurrentRound:     currentRound,
		TotalRounds:      totalRounds,
		MatchesCompleted: 0,
	}, nil
}

// announceRound implements §4.2.3: assigns endpoints for round's
// matches and fans ROUND_ANNOUNCEMENT out to every registered referee
// and player, best-effort. Send failures are logged and swallowed.
func (m *Manager) announceRound(ctx context.Context, round int) {
	m.mu.Lock()
	matches := m.league.MatchesByRound[round]
	refereeIDs := m.referees.orderedIDs()

	scheduled := make([]protocol.ScheduledMatch, 0, len(matches))
	for i, match := range matches {
		if len(refereeIDs) > 0 {
			refID := refereeIDs[i%len(refereeIDs)]
			if refAgent, ok := m.referees.get(refID); ok {
				match.RefereeEndpoint = refAgent.ContactEndpoint
			}
		}
		if a, ok := m.players.get(match.PlayerAID); ok {
			match.PlayerAEndpoint = a.ContactEndpoint
		}
		if b, ok := m.players.get(match.PlayerBID); ok {
			match.PlayerBEndpoint = b.ContactEndpoint
		}

		scheduled = append(scheduled, protocol.ScheduledMatch{
			MatchID:         match.MatchID,
			GameType:        match.GameType,
			PlayerAID:       match.PlayerAID,
			PlayerBID:       match.PlayerBID,
			RefereeEndpoint: match.RefereeEndpoint,
			PlayerAEndpoint: match.PlayerAEndpoint,
			PlayerBEndpoint: match.PlayerBEndpoint,
		})
	}

	leagueID := m.league.LeagueID
	targets := m.allAgentEndpoints()
	m.mu.Unlock()

	announcement := protocol.RoundAnnouncement{
		Envelope: protocol.Envelope{
			Protocol:       protocol.ProtocolVersion,
			MessageType:    protocol.TypeRoundAnnouncement,
			Sender:         m.senderID,
			Timestamp:      protocol.Now(),
			ConversationID: m.nextConversationID(),
			LeagueID:       leagueID,
			RoundID:        round,
		},
		LeagueIDField: leagueID,
		RoundIDField:  round,
		Matches:       scheduled,
	}

	raw, err := json.Marshal(announcement)
	if err != nil {
		m.log.LogError("failed to marshal round announcement", err)
		return
	}

	m.broadcast(ctx, targets, raw, "round_announcement")
}

// allAgentEndpoints returns every registered referee and player contact
// endpoint. Caller must hold mu.
func (m *Manager) allAgentEndpoints() []string {
	var out []string
	for _, id := range m.referees.orderedIDs() {
		if a, ok := m.referees.get(id); ok {
			out = append(out, a.ContactEndpoint)
		}
	}
	for _, id := range m.players.orderedIDs() {
		if a, ok := m.players.get(id); ok {
			out = append(out, a.ContactEndpoint)
		}
	}
	return out
}

// broadcast delivers raw to every endpoint, logging and swallowing
// individual failures per §4.2.3, and mirrors raw to spectators of this
// league through the observer, if one is configured.
func (m *Manager) broadcast(ctx context.Context, endpoints []string, raw json.RawMessage, kind string) {
	if m.observer != nil {
		m.observer.Broadcast(m.league.LeagueID, raw)
	}

	for _, endpoint := range endpoints {
		endpoint := endpoint
		go func() {
			if _, err := m.fanout.Send(ctx, endpoint, m.nextConversationID(), raw); err != nil {
				m.log.LogError("fan-out delivery failed", err,
					zap.String("endpoint", endpoint), zap.String("kind", kind))
			}
		}()
	}
}
