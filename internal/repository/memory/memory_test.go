package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaguerunner/tournament/internal/domain"
)

func TestStandings_EnsureThenGet(t *testing.T) {
	s := NewStandings()
	ctx := context.Background()

	require.NoError(t, s.Ensure(ctx, "P01", "Alice"))

	got, err := s.Get(ctx, "P01")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.DisplayName)
}

func TestStandings_PutRecomputesRanks(t *testing.T) {
	s := NewStandings()
	ctx := context.Background()

	err := s.Put(ctx, []*domain.Standing{
		{PlayerID: "P02", Points: 0},
		{PlayerID: "P01", Points: 3},
	})
	require.NoError(t, err)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "P01", all[0].PlayerID)
	assert.Equal(t, 1, all[0].Rank)
}

func TestMatches_SaveAndIsCompleted(t *testing.T) {
	m := NewMatches()
	ctx := context.Background()

	done, err := m.IsCompleted(ctx, "R1M1")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, m.Save(ctx, &domain.MatchResult{MatchID: "R1M1", Winner: "P01"}))

	done, err = m.IsCompleted(ctx, "R1M1")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestHistory_AppendAndList(t *testing.T) {
	h := NewHistory()
	ctx := context.Background()

	require.NoError(t, h.Append(ctx, "P01", domain.HistoryEntry{MatchID: "R1M1", Opponent: "P02", Won: true}))
	require.NoError(t, h.Append(ctx, "P01", domain.HistoryEntry{MatchID: "R2M3", Opponent: "P03", Won: false}))

	entries, err := h.List(ctx, "P01")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "R1M1", entries[0].MatchID)
}

func TestHistory_List_SnapshotIsIndependent(t *testing.T) {
	h := NewHistory()
	ctx := context.Background()
	require.NoError(t, h.Append(ctx, "P01", domain.HistoryEntry{MatchID: "R1M1"}))

	snapshot, err := h.List(ctx, "P01")
	require.NoError(t, err)

	require.NoError(t, h.Append(ctx, "P01", domain.HistoryEntry{MatchID: "R2M1"}))

	assert.Len(t, snapshot, 1)
}
