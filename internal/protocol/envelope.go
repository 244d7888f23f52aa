// Package protocol implements the league.v2 message envelope: the
// shared header every inter-agent message carries, its validation
// rules (§4.1), and the tagged-variant catalog of message payloads
// (§6). Each concrete message type embeds Envelope and is decoded
// through Decode, which dispatches on the message_type discriminator.
package protocol

import (
	"encoding/json"
	"time"

	apperrors "github.com/leaguerunner/tournament/pkg/errors"
	"github.com/leaguerunner/tournament/pkg/validator"
)

// ProtocolVersion is the only accepted value of Envelope.Protocol.
const ProtocolVersion = "league.v2"

// MessageType discriminates the message catalog in §6.
type MessageType string

const (
	TypeRefereeRegisterRequest  MessageType = "REFEREE_REGISTER_REQUEST"
	TypeRefereeRegisterResponse MessageType = "REFEREE_REGISTER_RESPONSE"
	TypeLeagueRegisterRequest   MessageType = "LEAGUE_REGISTER_REQUEST"
	TypeLeagueRegisterResponse  MessageType = "LEAGUE_REGISTER_RESPONSE"
	TypeStartLeague             MessageType = "START_LEAGUE"
	TypeLeagueStatus            MessageType = "LEAGUE_STATUS"
	TypeRoundAnnouncement       MessageType = "ROUND_ANNOUNCEMENT"
	TypeGameInvitation          MessageType = "GAME_INVITATION"
	TypeGameJoinAck             MessageType = "GAME_JOIN_ACK"
	TypeChooseParityCall        MessageType = "CHOOSE_PARITY_CALL"
	TypeChooseParityResponse    MessageType = "CHOOSE_PARITY_RESPONSE"
	TypeGameOver                MessageType = "GAME_OVER"
	TypeMatchResultReport       MessageType = "MATCH_RESULT_REPORT"
	TypeMatchResultAck          MessageType = "MATCH_RESULT_ACK"
	TypeLeagueStandingsUpdate   MessageType = "LEAGUE_STANDINGS_UPDATE"
	TypeRoundCompleted          MessageType = "ROUND_COMPLETED"
	TypeLeagueCompleted         MessageType = "LEAGUE_COMPLETED"
	TypeLeagueQuery             MessageType = "LEAGUE_QUERY"
	TypeLeagueQueryResponse     MessageType = "LEAGUE_QUERY_RESPONSE"
	TypeLeagueError             MessageType = "LEAGUE_ERROR"
	TypeAck                     MessageType = "ACK"
)

// Envelope is the header every league.v2 message shares.
type Envelope struct {
	Protocol       string      `json:"protocol"`
	MessageType    MessageType `json:"message_type"`
	Sender         string      `json:"sender"`
	Timestamp      string      `json:"timestamp"`
	ConversationID string      `json:"conversation_id"`
	AuthToken      string      `json:"auth_token,omitempty"`
	LeagueID       string      `json:"league_id,omitempty"`
	MatchID        string      `json:"match_id,omitempty"`
	RoundID        int         `json:"round_id,omitempty"`
}

// SenderID extracts the agent id from a "kind:id" sender string, or
// returns the whole string if no ":" is present. Exact reference
// behavior — preserved intentionally.
func SenderID(sender string) string {
	idx := -1
	for i := len(sender) - 1; i >= 0; i-- {
		if sender[i] == ':' {
			idx = i
			break
		}
	}
	if idx == -1 {
		return sender
	}
	return sender[idx+1:]
}

// Now returns the current instant formatted as the envelope's required
// ISO-8601 UTC timestamp.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// ValidateEnvelope applies the §4.1 receipt validation rules, returning
// the matching protocol AppError on the first failure.
func ValidateEnvelope(raw json.RawMessage) (*Envelope, *apperrors.AppError) {
	if len(raw) == 0 || raw[0] != '{' {
		return nil, apperrors.ErrInvalidMessageFormat
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperrors.ErrInvalidMessageFormat.WithError(err)
	}

	var missing []string
	if env.MessageType == "" {
		missing = append(missing, "message_type")
	}
	if env.Sender == "" {
		missing = append(missing, "sender")
	}
	if env.Timestamp == "" {
		missing = append(missing, "timestamp")
	}
	if env.ConversationID == "" {
		missing = append(missing, "conversation_id")
	}
	if env.Protocol == "" {
		missing = append(missing, "protocol")
	}
	if len(missing) > 0 {
		return nil, apperrors.ErrMissingRequiredField.WithMessage(
			"missing required field(s): " + joinFields(missing))
	}

	if env.Protocol != ProtocolVersion {
		return nil, apperrors.ErrUnsupportedProtocolVersion.WithMessage(
			"unsupported protocol: " + env.Protocol)
	}

	if err := validator.ValidateUTCTimestamp("timestamp", env.Timestamp); err != nil {
		return nil, apperrors.ErrInvalidFieldValue.WithError(err)
	}

	return &env, nil
}

func joinFields(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ", "
		}
		out += f
	}
	return out
}
