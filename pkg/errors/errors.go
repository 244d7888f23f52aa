// Package errors is the application-wide error type: an HTTP status for
// transport-level surfacing, paired with the protocol's own error code
// registry (E001-E023) for LEAGUE_ERROR envelopes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an application error carrying both an HTTP status and the
// protocol error code it corresponds to.
type AppError struct {
	Code        int    // HTTP status
	LeagueCode  string // protocol error code, e.g. "E012"
	Description string // protocol error_description, e.g. "AUTH_TOKEN_INVALID"
	Message     string // human-readable message
	Err         error  // wrapped internal error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap allows errors.Unwrap / errors.As to see through AppError.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an application error.
func New(code int, leagueCode, description, message string, err error) *AppError {
	return &AppError{
		Code:        code,
		LeagueCode:  leagueCode,
		Description: description,
		Message:     message,
		Err:         err,
	}
}

// Wrap wraps an error with additional context, preserving errors.Is/As.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// The protocol error code registry from the message catalog (§6).
var (
	// Envelope/protocol errors (E001-E004)
	ErrInvalidMessageFormat       = New(http.StatusBadRequest, "E001", "INVALID_MESSAGE_FORMAT", "invalid message format", nil)
	ErrUnsupportedProtocolVersion = New(http.StatusBadRequest, "E002", "UNSUPPORTED_PROTOCOL_VERSION", "unsupported protocol version", nil)
	ErrMissingRequiredField       = New(http.StatusBadRequest, "E003", "MISSING_REQUIRED_FIELD", "missing required field", nil)
	ErrInvalidFieldValue          = New(http.StatusBadRequest, "E004", "INVALID_FIELD_VALUE", "invalid field value", nil)

	// Registration/league lifecycle errors (E005-E007, E021-E023)
	ErrNotEnoughPlayers     = New(http.StatusConflict, "E005", "NOT_ENOUGH_PLAYERS", "at least two players must be registered", nil)
	ErrDuplicateRegistration = New(http.StatusConflict, "E006", "DUPLICATE_REGISTRATION", "agent already registered", nil)
	ErrInvalidAgentMetadata = New(http.StatusBadRequest, "E007", "INVALID_AGENT_METADATA", "invalid agent metadata", nil)
	ErrLeagueAlreadyStarted = New(http.StatusConflict, "E021", "LEAGUE_ALREADY_STARTED", "league has already started", nil)
	ErrLeagueNotStarted     = New(http.StatusConflict, "E022", "LEAGUE_NOT_STARTED", "league has not started", nil)
	ErrRoundNotFound        = New(http.StatusNotFound, "E023", "ROUND_NOT_FOUND", "round not found", nil)

	// ID validation errors (E008-E011)
	ErrInvalidPlayerID   = New(http.StatusBadRequest, "E008", "INVALID_PLAYER_ID", "invalid player id", nil)
	ErrInvalidRefereeID  = New(http.StatusBadRequest, "E009", "INVALID_REFEREE_ID", "invalid referee id", nil)
	ErrInvalidMatchID    = New(http.StatusBadRequest, "E010", "INVALID_MATCH_ID", "invalid match id", nil)
	ErrInvalidLeagueID   = New(http.StatusBadRequest, "E011", "INVALID_LEAGUE_ID", "invalid league id", nil)

	// Auth errors (E012-E014)
	ErrAuthTokenInvalid = New(http.StatusUnauthorized, "E012", "AUTH_TOKEN_INVALID", "auth token invalid", nil)
	ErrAuthTokenExpired = New(http.StatusUnauthorized, "E013", "AUTH_TOKEN_EXPIRED", "auth token expired", nil)
	ErrAuthTokenMissing = New(http.StatusUnauthorized, "E014", "AUTH_TOKEN_MISSING", "auth token missing", nil)

	// Game flow errors (E015-E020)
	ErrGameAlreadyStarted   = New(http.StatusConflict, "E015", "GAME_ALREADY_STARTED", "game already started", nil)
	ErrPlayerNotRegistered  = New(http.StatusNotFound, "E016", "PLAYER_NOT_REGISTERED", "player not registered", nil)
	ErrRefereeNotRegistered = New(http.StatusNotFound, "E017", "REFEREE_NOT_REGISTERED", "referee not registered", nil)
	ErrMatchNotFound        = New(http.StatusNotFound, "E018", "MATCH_NOT_FOUND", "match not found", nil)
	ErrChoiceTimeout        = New(http.StatusGatewayTimeout, "E019", "CHOICE_TIMEOUT", "parity choice timed out", nil)
	ErrJoinTimeout          = New(http.StatusGatewayTimeout, "E020", "JOIN_TIMEOUT", "game join timed out", nil)

	// Internal/server errors (not part of the protocol registry)
	ErrInternal = New(http.StatusInternalServerError, "", "", "internal server error", nil)
)

// WithMessage returns a copy of the error with a different message.
func (e *AppError) WithMessage(msg string) *AppError {
	cp := *e
	cp.Message = msg
	return &cp
}

// WithError returns a copy of the error wrapping an internal error.
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// IsAppError reports whether err is (or wraps) an *AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts the *AppError from err, if any.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// ToAppError converts any error into an *AppError, defaulting to internal.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}
	return ErrInternal.WithError(err)
}

// IsNotFound reports whether err denotes a not-found condition.
func IsNotFound(err error) bool {
	appErr := GetAppError(err)
	if appErr != nil {
		return appErr.Code == http.StatusNotFound
	}
	return false
}
