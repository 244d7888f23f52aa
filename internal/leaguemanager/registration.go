package leaguemanager

import (
	"github.com/leaguerunner/tournament/internal/domain"
	"github.com/leaguerunner/tournament/internal/protocol"
	apperrors "github.com/leaguerunner/tournament/pkg/errors"
)

// handleRefereeRegister implements §4.2.1 for referees. Per the §9 open
// question, the reference does not guard registries by league_started,
// so registration is accepted in any league status.
func (m *Manager) handleRefereeRegister(req *protocol.RefereeRegisterRequest) (*protocol.RefereeRegisterResponse, *apperrors.AppError) {
	if req.RefereeMeta.ContactEndpoint == "" || req.RefereeMeta.DisplayName == "" {
		return nil, apperrors.ErrInvalidAgentMetadata.WithMessage("referee_meta requires display_name and contact_endpoint")
	}

	m.mu.Lock()
	agent := &domain.Agent{
		Kind:                 domain.KindReferee,
		DisplayName:          req.RefereeMeta.DisplayName,
		Version:              req.RefereeMeta.Version,
		ContactEndpoint:      req.RefereeMeta.ContactEndpoint,
		GameTypes:            req.RefereeMeta.GameTypes,
		MaxConcurrentMatches: req.RefereeMeta.MaxConcurrentMatches,
	}
	id := m.referees.add(agent)
	leagueID := m.league.LeagueID
	m.mu.Unlock()

	token, err := m.auth.Issue(id, leagueID, domain.KindReferee)
	if err != nil {
		return nil, apperrors.ErrInternal.WithError(err)
	}
	agent.AuthToken = token

	return &protocol.RefereeRegisterResponse{
		Envelope:  m.replyEnvelope(protocol.TypeRefereeRegisterResponse, req.Envelope),
		Status:    "ACCEPTED",
		RefereeID: id,
		AuthToken: token,
	}, nil
}

// handleLeagueRegister implements §4.2.1 for players.
func (m *Manager) handleLeagueRegister(req *protocol.LeagueRegisterRequest) (*protocol.LeagueRegisterResponse, *apperrors.AppError) {
	if req.PlayerMeta.ContactEndpoint == "" || req.PlayerMeta.DisplayName == "" {
		return nil, apperrors.ErrInvalidAgentMetadata.WithMessage("player_meta requires display_name and contact_endpoint")
	}

	m.mu.Lock()
	agent := &domain.Agent{
		Kind:            domain.KindPlayer,
		DisplayName:     req.PlayerMeta.DisplayName,
		Version:         req.PlayerMeta.Version,
		ContactEndpoint: req.PlayerMeta.ContactEndpoint,
		GameTypes:       req.PlayerMeta.GameTypes,
	}
	id := m.players.add(agent)
	leagueID := m.league.LeagueID
	m.mu.Unlock()

	token, err := m.auth.Issue(id, leagueID, domain.KindPlayer)
	if err != nil {
		return nil, apperrors.ErrInternal.WithError(err)
	}
	agent.AuthToken = token

	return &protocol.LeagueRegisterResponse{
		Envelope:  m.replyEnvelope(protocol.TypeLeagueRegisterResponse, req.Envelope),
		Status:    "ACCEPTED",
		PlayerID:  id,
		AuthToken: token,
	}, nil
}

// replyEnvelope builds the outbound envelope for a synchronous reply to
// req, echoing its conversation_id per §4.1.
func (m *Manager) replyEnvelope(msgType protocol.MessageType, req protocol.Envelope) protocol.Envelope {
	return protocol.Envelope{
		Protocol:       protocol.ProtocolVersion,
		MessageType:    msgType,
		Sender:         m.senderID,
		Timestamp:      protocol.Now(),
		ConversationID: req.ConversationID,
		LeagueID:       m.league.LeagueID,
	}
}
