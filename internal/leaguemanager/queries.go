package leaguemanager

import (
	"context"
	"fmt"

	"github.com/leaguerunner/tournament/internal/domain"
	"github.com/leaguerunner/tournament/internal/protocol"
	apperrors "github.com/leaguerunner/tournament/pkg/errors"
)

// handleLeagueQuery implements §4.2.5. auth_token must validate against
// the agent id parsed from sender; on failure the caller emits
// LEAGUE_ERROR rather than this response, with AUTH_TOKEN_MISSING for an
// empty token and AUTH_TOKEN_INVALID otherwise.
func (m *Manager) handleLeagueQuery(ctx context.Context, req *protocol.LeagueQuery) (*protocol.LeagueQueryResponse, *apperrors.AppError) {
	agentID := protocol.SenderID(req.Sender)

	if req.AuthToken == "" {
		return nil, apperrors.ErrAuthTokenMissing
	}

	if err := m.validateAgentToken(agentID, req.AuthToken); err != nil {
		return nil, apperrors.ErrAuthTokenInvalid.WithMessage(
			fmt.Sprintf("auth token invalid for agent %s", agentID))
	}

	switch req.QueryType {
	case "GET_STANDINGS":
		return m.queryStandings(ctx, req)
	case "GET_NEXT_MATCH":
		return m.queryNextMatch(ctx, req, agentID)
	default:
		return nil, apperrors.ErrInvalidFieldValue.WithMessage("unknown query_type: " + req.QueryType)
	}
}

// validateAgentToken tries the agent against both registries, since a
// LEAGUE_QUERY sender may be a player or a referee.
func (m *Manager) validateAgentToken(agentID, token string) error {
	m.mu.Lock()
	playerAgent, isPlayer := m.players.get(agentID)
	refereeAgent, isReferee := m.referees.get(agentID)
	leagueID := m.league.LeagueID
	m.mu.Unlock()

	if isPlayer {
		return m.auth.Validate(token, agentID, leagueID, domain.KindPlayer)
	}
	if isReferee {
		return m.auth.Validate(token, agentID, leagueID, domain.KindReferee)
	}
	_ = playerAgent
	_ = refereeAgent
	return fmt.Errorf("agent %s not registered", agentID)
}

func (m *Manager) queryStandings(ctx context.Context, req *protocol.LeagueQuery) (*protocol.LeagueQueryResponse, *apperrors.AppError) {
	standings, err := m.standings.GetAll(ctx)
	if err != nil {
		return nil, apperrors.ErrInternal.WithError(err)
	}

	payload := make([]protocol.StandingPayload, 0, len(standings))
	for _, s := range standings {
		payload = append(payload, toStandingPayload(s))
	}

	return &protocol.LeagueQueryResponse{
		Envelope:  m.replyEnvelope(protocol.TypeLeagueQueryResponse, req.Envelope),
		QueryType: req.QueryType,
		Success:   true,
		Data:      payload,
	}, nil
}

func (m *Manager) queryNextMatch(ctx context.Context, req *protocol.LeagueQuery, agentID string) (*protocol.LeagueQueryResponse, *apperrors.AppError) {
	playerID, _ := req.QueryParams["player_id"].(string)
	if playerID == "" {
		playerID = agentID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var next *domain.Match
	for round := 1; round <= m.league.CurrentRound; round++ {
		for _, match := range m.league.MatchesByRound[round] {
			if match.PlayerAID != playerID && match.PlayerBID != playerID {
				continue
			}
			if _, done := m.league.CompletedMatches[match.MatchID]; done {
				continue
			}
			next = match
			break
		}
		if next != nil {
			break
		}
	}

	var data interface{}
	if next != nil {
		data = protocol.ScheduledMatch{
			MatchID:         next.MatchID,
			GameType:        next.GameType,
			PlayerAID:       next.PlayerAID,
			PlayerBID:       next.PlayerBID,
			RefereeEndpoint: next.RefereeEndpoint,
			PlayerAEndpoint: next.PlayerAEndpoint,
			PlayerBEndpoint: next.PlayerBEndpoint,
		}
	}

	return &protocol.LeagueQueryResponse{
		Envelope:  m.replyEnvelope(protocol.TypeLeagueQueryResponse, req.Envelope),
		QueryType: req.QueryType,
		Success:   true,
		Data:      data,
	}, nil
}
