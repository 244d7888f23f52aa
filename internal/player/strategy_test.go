package player

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaguerunner/tournament/internal/domain"
	"github.com/leaguerunner/tournament/internal/repository/memory"
)

func TestRandomStrategy_ReturnsValidChoice(t *testing.T) {
	s := RandomStrategy{}
	choice, err := s.Choose(context.Background(), "P02")
	require.NoError(t, err)
	assert.Contains(t, []string{"even", "odd"}, choice)
}

func TestCounterFrequencyStrategy_NoHistory_FallsBackToRandom(t *testing.T) {
	history := memory.NewHistory()
	s := &CounterFrequencyStrategy{History: history}
	s.SetPlayerID("P01")

	choice, err := s.Choose(context.Background(), "P02")
	require.NoError(t, err)
	assert.Contains(t, []string{"even", "odd"}, choice)
}

func TestCounterFrequencyStrategy_CountersMoreCommonChoice(t *testing.T) {
	history := memory.NewHistory()
	ctx := context.Background()
	require.NoError(t, history.Append(ctx, "P01", domain.HistoryEntry{Opponent: "P02", OpponentChoice: "odd"}))
	require.NoError(t, history.Append(ctx, "P01", domain.HistoryEntry{Opponent: "P02", OpponentChoice: "odd"}))
	require.NoError(t, history.Append(ctx, "P01", domain.HistoryEntry{Opponent: "P02", OpponentChoice: "even"}))

	s := &CounterFrequencyStrategy{History: history}
	s.SetPlayerID("P01")

	choice, err := s.Choose(ctx, "P02")
	require.NoError(t, err)
	assert.Equal(t, "even", choice)
}

func TestCounterFrequencyStrategy_IgnoresOtherOpponents(t *testing.T) {
	history := memory.NewHistory()
	ctx := context.Background()
	require.NoError(t, history.Append(ctx, "P01", domain.HistoryEntry{Opponent: "P03", OpponentChoice: "odd"}))

	s := &CounterFrequencyStrategy{History: history}
	s.SetPlayerID("P01")

	choice, err := s.Choose(ctx, "P02")
	require.NoError(t, err)
	assert.Contains(t, []string{"even", "odd"}, choice)
}
