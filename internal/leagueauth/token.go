// Package leagueauth issues and validates the opaque auth tokens bound
// 1:1 to a registered agent id, per spec.md's data model and §9 design
// note on replacing the reference's short hash with a cryptographically
// strong MAC.
package leagueauth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/leaguerunner/tournament/internal/domain"
)

// Manager derives and validates deterministic auth tokens from
// (agent_id, league_id, kind) using a per-process HMAC secret. The
// external contract is deterministic issuance and equality-based
// validation within a run — never re-issuance, never expiry.
type Manager struct {
	secretKey []byte
}

// NewManager creates a token manager bound to secret.
func NewManager(secret string) *Manager {
	return &Manager{secretKey: []byte(secret)}
}

// Claims is deterministic: no iat/exp/nbf, so signing the same
// (agent_id, league_id, kind) twice yields byte-identical tokens.
// jwt.MapClaims marshals through encoding/json, which sorts map keys,
// so the signed payload is reproducible.
type claims jwt.MapClaims

// Issue derives the token bound to agentID for the lifetime of league.
func (m *Manager) Issue(agentID, leagueID string, kind domain.AgentKind) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"agent_id":  agentID,
		"league_id": leagueID,
		"kind":      string(kind),
	})
	return token.SignedString(m.secretKey)
}

// Validate checks that tokenString is a well-formed, correctly signed
// token and that it is bound to the given agentID. Equality-based
// validation: the only thing that matters is that re-deriving the
// token for (agentID, leagueID, kind) produces the same string.
func (m *Manager) Validate(tokenString, agentID, leagueID string, kind domain.AgentKind) error {
	expected, err := m.Issue(agentID, leagueID, kind)
	if err != nil {
		return err
	}
	if tokenString != expected {
		return fmt.Errorf("token does not match agent %s", agentID)
	}
	return nil
}

// AgentID extracts the agent_id claim from tokenString without
// verifying the signature — used only to look up which agent to
// validate against, never to authorize.
func AgentID(tokenString string) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	agentID, _ := mapClaims["agent_id"].(string)
	if agentID == "" {
		return "", fmt.Errorf("token has no agent_id claim")
	}
	return agentID, nil
}
