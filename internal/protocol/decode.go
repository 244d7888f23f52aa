package protocol

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/leaguerunner/tournament/pkg/errors"
)

// Decode validates the envelope then unmarshals raw into the concrete
// message struct matching its message_type. The returned value is one
// of the typed structs in messages.go; callers type-switch on it.
func Decode(raw json.RawMessage) (interface{}, *apperrors.AppError) {
	env, appErr := ValidateEnvelope(raw)
	if appErr != nil {
		return nil, appErr
	}

	var (
		target interface{}
	)

	switch env.MessageType {
	case TypeRefereeRegisterRequest:
		target = &RefereeRegisterRequest{}
	case TypeRefereeRegisterResponse:
		target = &RefereeRegisterResponse{}
	case TypeLeagueRegisterRequest:
		target = &LeagueRegisterRequest{}
	case TypeLeagueRegisterResponse:
		target = &LeagueRegisterResponse{}
	case TypeStartLeague:
		target = &StartLeague{}
	case TypeLeagueStatus:
		target = &LeagueStatusMessage{}
	case TypeRoundAnnouncement:
		target = &RoundAnnouncement{}
	case TypeGameInvitation:
		target = &GameInvitation{}
	case TypeGameJoinAck:
		target = &GameJoinAck{}
	case TypeChooseParityCall:
		target = &ChooseParityCall{}
	case TypeChooseParityResponse:
		target = &ChooseParityResponse{}
	case TypeGameOver:
		target = &GameOver{}
	case TypeMatchResultReport:
		target = &MatchResultReport{}
	case TypeMatchResultAck:
		target = &MatchResultAck{}
	case TypeLeagueStandingsUpdate:
		target = &LeagueStandingsUpdate{}
	case TypeRoundCompleted:
		target = &RoundCompleted{}
	case TypeLeagueCompleted:
		target = &LeagueCompleted{}
	case TypeLeagueQuery:
		target = &LeagueQuery{}
	case TypeLeagueQueryResponse:
		target = &LeagueQueryResponse{}
	case TypeLeagueError:
		target = &LeagueError{}
	case TypeAck:
		target = &Ack{}
	default:
		return nil, apperrors.ErrInvalidMessageFormat.WithMessage(
			fmt.Sprintf("unknown message_type: %s", env.MessageType))
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return nil, apperrors.ErrInvalidMessageFormat.WithError(err)
	}

	return target, nil
}

// NewError builds a LEAGUE_ERROR envelope replying to originalType,
// echoing conversationID, sent from sender.
func NewError(appErr *apperrors.AppError, sender, conversationID, originalType string, context LeagueErrorContext) LeagueError {
	return LeagueError{
		Envelope: Envelope{
			Protocol:       ProtocolVersion,
			MessageType:    TypeLeagueError,
			Sender:         sender,
			Timestamp:      Now(),
			ConversationID: conversationID,
		},
		ErrorCode:           appErr.LeagueCode,
		ErrorDescription:    appErr.Description,
		OriginalMessageType: originalType,
		Context:             context,
	}
}
