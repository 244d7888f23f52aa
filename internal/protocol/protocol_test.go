package protocol

import (
	"encoding/json"
	"testing"

	apperrors "github.com/leaguerunner/tournament/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenderID(t *testing.T) {
	assert.Equal(t, "P01", SenderID("player:P01"))
	assert.Equal(t, "REF01", SenderID("referee:REF01"))
	assert.Equal(t, "P01", SenderID("P01"))
	assert.Equal(t, "P01", SenderID("league:manager:P01"))
}

func TestValidateEnvelope_NotAnObject(t *testing.T) {
	_, appErr := ValidateEnvelope(json.RawMessage(`"just a string"`))

	require.NotNil(t, appErr)
	assert.Equal(t, "E001", appErr.LeagueCode)
}

func TestValidateEnvelope_MissingRequiredField(t *testing.T) {
	raw := []byte(`{"protocol":"league.v2","sender":"player:P01","timestamp":"2026-07-31T10:00:00Z"}`)

	_, appErr := ValidateEnvelope(raw)

	require.NotNil(t, appErr)
	assert.Equal(t, "E003", appErr.LeagueCode)
}

func TestValidateEnvelope_UnsupportedProtocolVersion(t *testing.T) {
	raw := []byte(`{"protocol":"league.v1","message_type":"ACK","sender":"player:P01","timestamp":"2026-07-31T10:00:00Z","conversation_id":"c1"}`)

	_, appErr := ValidateEnvelope(raw)

	require.NotNil(t, appErr)
	assert.Equal(t, "E002", appErr.LeagueCode)
}

func TestValidateEnvelope_InvalidTimestamp(t *testing.T) {
	raw := []byte(`{"protocol":"league.v2","message_type":"ACK","sender":"player:P01","timestamp":"2026-07-31T10:00:00+03:00","conversation_id":"c1"}`)

	_, appErr := ValidateEnvelope(raw)

	require.NotNil(t, appErr)
	assert.Equal(t, "E004", appErr.LeagueCode)
}

func TestValidateEnvelope_Valid(t *testing.T) {
	raw := []byte(`{"protocol":"league.v2","message_type":"ACK","sender":"player:P01","timestamp":"2026-07-31T10:00:00Z","conversation_id":"c1"}`)

	env, appErr := ValidateEnvelope(raw)

	require.Nil(t, appErr)
	require.NotNil(t, env)
	assert.Equal(t, TypeAck, env.MessageType)
}

func TestDecode_StartLeague(t *testing.T) {
	raw := []byte(`{
		"protocol":"league.v2","message_type":"START_LEAGUE","sender":"ext:cli",
		"timestamp":"2026-07-31T10:00:00Z","conversation_id":"c1","league_id":"L1"
	}`)

	msg, appErr := Decode(raw)

	require.Nil(t, appErr)
	start, ok := msg.(*StartLeague)
	require.True(t, ok)
	assert.Equal(t, "L1", start.LeagueID)
}

func TestDecode_ChooseParityResponse(t *testing.T) {
	raw := []byte(`{
		"protocol":"league.v2","message_type":"CHOOSE_PARITY_RESPONSE","sender":"player:P01",
		"timestamp":"2026-07-31T10:00:00Z","conversation_id":"c2",
		"match_id":"R1M1","player_id":"P01","parity_choice":"even"
	}`)

	msg, appErr := Decode(raw)

	require.Nil(t, appErr)
	resp, ok := msg.(*ChooseParityResponse)
	require.True(t, ok)
	assert.Equal(t, "even", resp.ParityChoice)
}

func TestDecode_UnknownMessageType(t *testing.T) {
	raw := []byte(`{
		"protocol":"league.v2","message_type":"NOT_A_REAL_TYPE","sender":"player:P01",
		"timestamp":"2026-07-31T10:00:00Z","conversation_id":"c1"
	}`)

	_, appErr := Decode(raw)

	require.NotNil(t, appErr)
	assert.Equal(t, "E001", appErr.LeagueCode)
}

func TestNewError_EchoesConversationID(t *testing.T) {
	err := NewError(apperrors.ErrAuthTokenInvalid, "leaguemanager:LM", "c99", "LEAGUE_QUERY", LeagueErrorContext{"provided_token": "bogus"})

	assert.Equal(t, "c99", err.ConversationID)
	assert.Equal(t, "E012", err.ErrorCode)
	assert.Equal(t, "LEAGUE_QUERY", err.OriginalMessageType)
}
