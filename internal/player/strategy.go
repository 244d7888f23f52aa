package player

import (
	"context"
	"crypto/rand"
	"math/big"
	"sync"

	"github.com/leaguerunner/tournament/internal/repository"
)

// Strategy decides a parity call for one match. Implementations must be
// safe for concurrent use; the player agent may adjudicate several
// matches at once.
type Strategy interface {
	Choose(ctx context.Context, opponentID string) (string, error)
}

// RandomStrategy draws "even" or "odd" uniformly, mirroring the
// reference's baseline player.
type RandomStrategy struct{}

func (RandomStrategy) Choose(ctx context.Context, opponentID string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		return "", err
	}
	if n.Int64() == 0 {
		return "even", nil
	}
	return "odd", nil
}

// CounterFrequencyStrategy calls whichever parity the opponent has
// chosen less often in this player's own history, falling back to a
// uniform random draw on a tie (including the first meeting, which
// ties 0-0). PlayerID is set once, after registration assigns the id,
// via SetPlayerID.
type CounterFrequencyStrategy struct {
	History repository.HistoryRepository

	mu       sync.Mutex
	playerID string
}

// SetPlayerID records the id assigned by the League Manager.
func (s *CounterFrequencyStrategy) SetPlayerID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerID = id
}

func (s *CounterFrequencyStrategy) Choose(ctx context.Context, opponentID string) (string, error) {
	s.mu.Lock()
	playerID := s.playerID
	s.mu.Unlock()

	entries, err := s.History.List(ctx, playerID)
	if err != nil {
		return "", err
	}

	var evens, odds int
	for _, e := range entries {
		if e.Opponent != opponentID {
			continue
		}
		switch e.OpponentChoice {
		case "even":
			evens++
		case "odd":
			odds++
		}
	}

	if evens == odds {
		return RandomStrategy{}.Choose(ctx, opponentID)
	}
	if evens < odds {
		return "even", nil
	}
	return "odd", nil
}
