package leagueauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaguerunner/tournament/internal/domain"
)

func TestIssue_Deterministic(t *testing.T) {
	m := NewManager("test-secret")

	t1, err := m.Issue("P01", "L1", domain.KindPlayer)
	require.NoError(t, err)

	t2, err := m.Issue("P01", "L1", domain.KindPlayer)
	require.NoError(t, err)

	assert.Equal(t, t1, t2)
}

func TestIssue_DifferentAgentsDifferentTokens(t *testing.T) {
	m := NewManager("test-secret")

	t1, _ := m.Issue("P01", "L1", domain.KindPlayer)
	t2, _ := m.Issue("P02", "L1", domain.KindPlayer)

	assert.NotEqual(t, t1, t2)
}

func TestValidate_Success(t *testing.T) {
	m := NewManager("test-secret")
	token, _ := m.Issue("P01", "L1", domain.KindPlayer)

	err := m.Validate(token, "P01", "L1", domain.KindPlayer)

	assert.NoError(t, err)
}

func TestValidate_WrongAgent(t *testing.T) {
	m := NewManager("test-secret")
	token, _ := m.Issue("P01", "L1", domain.KindPlayer)

	err := m.Validate(token, "P02", "L1", domain.KindPlayer)

	assert.Error(t, err)
}

func TestValidate_BogusToken(t *testing.T) {
	m := NewManager("test-secret")

	err := m.Validate("bogus", "P01", "L1", domain.KindPlayer)

	assert.Error(t, err)
}

func TestAgentID_ExtractsClaim(t *testing.T) {
	m := NewManager("test-secret")
	token, _ := m.Issue("REF01", "L1", domain.KindReferee)

	agentID, err := AgentID(token)

	require.NoError(t, err)
	assert.Equal(t, "REF01", agentID)
}

func TestAgentID_InvalidToken(t *testing.T) {
	_, err := AgentID("not-a-jwt")

	assert.Error(t, err)
}
