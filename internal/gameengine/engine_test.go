package gameengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjudicate_DrawnNumberInRange(t *testing.T) {
	e := NewParityEngine()

	for i := 0; i < 50; i++ {
		outcome, err := e.Adjudicate("P01", "even", "P02", "odd")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, outcome.DrawnNumber, MinDraw)
		assert.LessOrEqual(t, outcome.DrawnNumber, MaxDraw)
	}
}

func TestAdjudicate_WinnerMatchesParity(t *testing.T) {
	e := NewParityEngine()

	outcome, err := e.Adjudicate("P01", "even", "P02", "odd")
	require.NoError(t, err)

	if outcome.Parity == "even" {
		assert.Equal(t, "P01", outcome.Winner)
		assert.Equal(t, 3, outcome.Score["P01"])
		assert.Equal(t, 0, outcome.Score["P02"])
	} else {
		assert.Equal(t, "P02", outcome.Winner)
		assert.Equal(t, 3, outcome.Score["P02"])
		assert.Equal(t, 0, outcome.Score["P01"])
	}
}

func TestAdjudicate_BothMatchParity_AWinsOutright(t *testing.T) {
	e := NewParityEngine()

	outcome, err := e.Adjudicate("P01", "even", "P02", "even")
	require.NoError(t, err)

	if outcome.Parity == "even" {
		assert.Equal(t, "P01", outcome.Winner)
		assert.Equal(t, 3, outcome.Score["P01"])
		assert.Equal(t, 0, outcome.Score["P02"])
	}
}

func TestAdjudicate_NeitherMatchesParity_NullDraw(t *testing.T) {
	e := NewParityEngine()

	outcome, err := e.Adjudicate("P01", "even", "P02", "even")
	require.NoError(t, err)

	if outcome.Parity == "odd" {
		assert.Empty(t, outcome.Winner)
		assert.Equal(t, 0, outcome.Score["P01"])
		assert.Equal(t, 0, outcome.Score["P02"])
	}
}

func TestAdjudicate_ChoicesRecorded(t *testing.T) {
	e := NewParityEngine()

	outcome, err := e.Adjudicate("P01", "even", "P02", "odd")
	require.NoError(t, err)

	assert.Equal(t, "even", outcome.Choices["P01"])
	assert.Equal(t, "odd", outcome.Choices["P02"])
}
