package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeRanks_OrdersByPoints(t *testing.T) {
	standings := []*Standing{
		{PlayerID: "P02", Points: 0, Wins: 0, Losses: 1},
		{PlayerID: "P01", Points: 3, Wins: 1, Losses: 0},
	}

	RecomputeRanks(standings)

	assert.Equal(t, "P01", standings[0].PlayerID)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, "P02", standings[1].PlayerID)
	assert.Equal(t, 2, standings[1].Rank)
}

func TestRecomputeRanks_TieBrokenByWinsThenLossesThenID(t *testing.T) {
	standings := []*Standing{
		{PlayerID: "P02", Points: 1, Wins: 0, Losses: 0},
		{PlayerID: "P01", Points: 1, Wins: 0, Losses: 0},
	}

	RecomputeRanks(standings)

	assert.Equal(t, "P01", standings[0].PlayerID)
	assert.Equal(t, "P02", standings[1].PlayerID)
}

func TestRecomputeRanks_DenseRanks(t *testing.T) {
	standings := []*Standing{
		{PlayerID: "P01", Points: 5},
		{PlayerID: "P02", Points: 3},
		{PlayerID: "P03", Points: 1},
	}

	RecomputeRanks(standings)

	for i, s := range standings {
		assert.Equal(t, i+1, s.Rank)
	}
}
