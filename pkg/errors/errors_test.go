package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error_WithInnerError(t *testing.T) {
	innerErr := fmt.Errorf("inner error")
	appErr := New(http.StatusBadRequest, "E004", "INVALID_FIELD_VALUE", "outer message", innerErr)

	result := appErr.Error()

	assert.Equal(t, "outer message: inner error", result)
}

func TestAppError_Error_WithoutInnerError(t *testing.T) {
	appErr := New(http.StatusBadRequest, "E004", "INVALID_FIELD_VALUE", "just message", nil)

	result := appErr.Error()

	assert.Equal(t, "just message", result)
}

func TestAppError_Unwrap(t *testing.T) {
	innerErr := fmt.Errorf("inner error")
	appErr := New(http.StatusBadRequest, "E004", "INVALID_FIELD_VALUE", "outer", innerErr)

	unwrapped := appErr.Unwrap()

	assert.Equal(t, innerErr, unwrapped)
}

func TestAppError_Unwrap_Nil(t *testing.T) {
	appErr := New(http.StatusBadRequest, "E004", "INVALID_FIELD_VALUE", "message", nil)

	unwrapped := appErr.Unwrap()

	assert.Nil(t, unwrapped)
}

func TestNew(t *testing.T) {
	err := fmt.Errorf("some error")
	appErr := New(http.StatusNotFound, "E018", "MATCH_NOT_FOUND", "not found", err)

	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "E018", appErr.LeagueCode)
	assert.Equal(t, "MATCH_NOT_FOUND", appErr.Description)
	assert.Equal(t, "not found", appErr.Message)
	assert.Equal(t, err, appErr.Err)
}

func TestWrap_WithError(t *testing.T) {
	innerErr := fmt.Errorf("original error")
	wrapped := Wrap(innerErr, "wrapped")

	assert.NotNil(t, wrapped)
	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original error")
	assert.True(t, errors.Is(wrapped, innerErr))
}

func TestWrap_NilError(t *testing.T) {
	wrapped := Wrap(nil, "message")

	assert.Nil(t, wrapped)
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       int
		leagueCode string
	}{
		{"ErrInvalidMessageFormat", ErrInvalidMessageFormat, http.StatusBadRequest, "E001"},
		{"ErrUnsupportedProtocolVersion", ErrUnsupportedProtocolVersion, http.StatusBadRequest, "E002"},
		{"ErrMissingRequiredField", ErrMissingRequiredField, http.StatusBadRequest, "E003"},
		{"ErrInvalidFieldValue", ErrInvalidFieldValue, http.StatusBadRequest, "E004"},
		{"ErrNotEnoughPlayers", ErrNotEnoughPlayers, http.StatusConflict, "E005"},
		{"ErrDuplicateRegistration", ErrDuplicateRegistration, http.StatusConflict, "E006"},
		{"ErrInvalidAgentMetadata", ErrInvalidAgentMetadata, http.StatusBadRequest, "E007"},
		{"ErrInvalidPlayerID", ErrInvalidPlayerID, http.StatusBadRequest, "E008"},
		{"ErrInvalidRefereeID", ErrInvalidRefereeID, http.StatusBadRequest, "E009"},
		{"ErrInvalidMatchID", ErrInvalidMatchID, http.StatusBadRequest, "E010"},
		{"ErrInvalidLeagueID", ErrInvalidLeagueID, http.StatusBadRequest, "E011"},
		{"ErrAuthTokenInvalid", ErrAuthTokenInvalid, http.StatusUnauthorized, "E012"},
		{"ErrAuthTokenExpired", ErrAuthTokenExpired, http.StatusUnauthorized, "E013"},
		{"ErrAuthTokenMissing", ErrAuthTokenMissing, http.StatusUnauthorized, "E014"},
		{"ErrGameAlreadyStarted", ErrGameAlreadyStarted, http.StatusConflict, "E015"},
		{"ErrPlayerNotRegistered", ErrPlayerNotRegistered, http.StatusNotFound, "E016"},
		{"ErrRefereeNotRegistered", ErrRefereeNotRegistered, http.StatusNotFound, "E017"},
		{"ErrMatchNotFound", ErrMatchNotFound, http.StatusNotFound, "E018"},
		{"ErrChoiceTimeout", ErrChoiceTimeout, http.StatusGatewayTimeout, "E019"},
		{"ErrJoinTimeout", ErrJoinTimeout, http.StatusGatewayTimeout, "E020"},
		{"ErrLeagueAlreadyStarted", ErrLeagueAlreadyStarted, http.StatusConflict, "E021"},
		{"ErrLeagueNotStarted", ErrLeagueNotStarted, http.StatusConflict, "E022"},
		{"ErrRoundNotFound", ErrRoundNotFound, http.StatusNotFound, "E023"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.leagueCode, tc.err.LeagueCode)
		})
	}
}

func TestAppError_WithMessage(t *testing.T) {
	original := ErrMatchNotFound
	custom := original.WithMessage("match R1M1 not found")

	assert.Equal(t, "match R1M1 not found", custom.Message)
	assert.Equal(t, original.Code, custom.Code)
	assert.Equal(t, original.LeagueCode, custom.LeagueCode)

	assert.Equal(t, "match not found", original.Message)
}

func TestAppError_WithError(t *testing.T) {
	original := ErrInvalidFieldValue
	innerErr := fmt.Errorf("timestamp must end in Z")
	custom := original.WithError(innerErr)

	assert.Equal(t, innerErr, custom.Err)
	assert.Equal(t, original.Code, custom.Code)
	assert.Equal(t, original.Message, custom.Message)

	assert.Nil(t, original.Err)
}

func TestIsAppError_True(t *testing.T) {
	result := IsAppError(ErrMatchNotFound)

	assert.True(t, result)
}

func TestIsAppError_Wrapped(t *testing.T) {
	appErr := ErrMatchNotFound.WithMessage("not found")
	wrapped := fmt.Errorf("wrapped: %w", appErr)

	result := IsAppError(wrapped)

	assert.True(t, result)
}

func TestIsAppError_False(t *testing.T) {
	regularErr := fmt.Errorf("regular error")

	result := IsAppError(regularErr)

	assert.False(t, result)
}

func TestIsAppError_Nil(t *testing.T) {
	result := IsAppError(nil)

	assert.False(t, result)
}

func TestGetAppError_Direct(t *testing.T) {
	result := GetAppError(ErrMatchNotFound)

	require.NotNil(t, result)
	assert.Equal(t, ErrMatchNotFound.Code, result.Code)
}

func TestGetAppError_Wrapped(t *testing.T) {
	appErr := ErrAuthTokenInvalid.WithMessage("access denied")
	wrapped := fmt.Errorf("wrapped: %w", appErr)

	result := GetAppError(wrapped)

	require.NotNil(t, result)
	assert.Equal(t, http.StatusUnauthorized, result.Code)
	assert.Equal(t, "access denied", result.Message)
}

func TestGetAppError_NotAppError(t *testing.T) {
	regularErr := fmt.Errorf("regular error")

	result := GetAppError(regularErr)

	assert.Nil(t, result)
}

func TestGetAppError_Nil(t *testing.T) {
	result := GetAppError(nil)

	assert.Nil(t, result)
}

func TestToAppError_AlreadyAppError(t *testing.T) {
	appErr := ErrInvalidFieldValue.WithMessage("custom message")

	result := ToAppError(appErr)

	require.NotNil(t, result)
	assert.Equal(t, appErr.Code, result.Code)
	assert.Equal(t, appErr.Message, result.Message)
}

func TestToAppError_WrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", ErrMatchNotFound)

	result := ToAppError(wrapped)

	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.Code)
}

func TestToAppError_RegularError(t *testing.T) {
	regularErr := fmt.Errorf("connection failed")

	result := ToAppError(regularErr)

	require.NotNil(t, result)
	assert.Equal(t, http.StatusInternalServerError, result.Code)
	assert.Contains(t, result.Error(), "connection failed")
}

func TestToAppError_Nil(t *testing.T) {
	result := ToAppError(nil)

	assert.Nil(t, result)
}

func TestAppError_ErrorChaining(t *testing.T) {
	original := fmt.Errorf("original error")
	appErr := ErrInvalidFieldValue.WithError(original)
	wrapped := fmt.Errorf("context: %w", appErr)

	assert.True(t, errors.Is(wrapped, original))

	result := GetAppError(wrapped)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusBadRequest, result.Code)
}

func TestAppError_Immutability(t *testing.T) {
	original := ErrMatchNotFound

	_ = original.WithMessage("custom")
	_ = original.WithError(fmt.Errorf("inner"))

	assert.Equal(t, "match not found", original.Message)
	assert.Nil(t, original.Err)
}
