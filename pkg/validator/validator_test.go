package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("sender", "player:P01"))
	assert.Error(t, ValidateRequired("sender", ""))
}

func TestValidateEnum(t *testing.T) {
	assert.NoError(t, ValidateEnum("parity_choice", "even", []string{"even", "odd"}))
	assert.Error(t, ValidateEnum("parity_choice", "maybe", []string{"even", "odd"}))
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange("round_id", 1, 1, 0))
	assert.Error(t, ValidateRange("round_id", 0, 1, 0))
	assert.NoError(t, ValidateRange("drawn_number", 10, 1, 10))
	assert.Error(t, ValidateRange("drawn_number", 11, 1, 10))
}

func TestValidateUTCTimestamp(t *testing.T) {
	assert.NoError(t, ValidateUTCTimestamp("timestamp", "2026-07-31T12:00:00Z"))
	assert.Error(t, ValidateUTCTimestamp("timestamp", ""))
	assert.Error(t, ValidateUTCTimestamp("timestamp", "2026-07-31T12:00:00+03:00"))
	assert.Error(t, ValidateUTCTimestamp("timestamp", "not-a-timestamp"))
}

func TestValidationErrors_Add(t *testing.T) {
	var errs ValidationErrors
	errs.Add("sender", "sender is required")

	assert.True(t, errs.HasErrors())
	assert.Contains(t, errs.Error(), "sender is required")
}
