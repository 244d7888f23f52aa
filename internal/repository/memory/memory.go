// Package memory implements the repository contracts with in-process
// maps guarded by a mutex. This is the default StoreConfig.Backend so
// a single binary runs with no external dependency.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/leaguerunner/tournament/internal/domain"
)

// Standings is the in-memory StandingsRepository.
type Standings struct {
	mu   sync.Mutex
	byID map[string]*domain.Standing
}

// NewStandings creates an empty in-memory standings store.
func NewStandings() *Standings {
	return &Standings{byID: make(map[string]*domain.Standing)}
}

func (s *Standings) Get(ctx context.Context, playerID string) (*domain.Standing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byID[playerID]
	if !ok {
		return nil, fmt.Errorf("no standing for player %s", playerID)
	}
	cp := *st
	return &cp, nil
}

func (s *Standings) GetAll(ctx context.Context) ([]*domain.Standing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*domain.Standing, 0, len(s.byID))
	for _, st := range s.byID {
		cp := *st
		all = append(all, &cp)
	}
	domain.RecomputeRanks(all)
	return all, nil
}

func (s *Standings) Put(ctx context.Context, standings []*domain.Standing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	domain.RecomputeRanks(standings)
	for _, st := range standings {
		cp := *st
		s.byID[st.PlayerID] = &cp
	}
	return nil
}

func (s *Standings) Ensure(ctx context.Context, playerID, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[playerID]; ok {
		return nil
	}
	s.byID[playerID] = &domain.Standing{PlayerID: playerID, DisplayName: displayName}
	return nil
}

// Matches is the in-memory MatchRepository.
type Matches struct {
	mu      sync.Mutex
	results map[string]*domain.MatchResult
}

// NewMatches creates an empty in-memory match result store.
func NewMatches() *Matches {
	return &Matches{results: make(map[string]*domain.MatchResult)}
}

func (m *Matches) Save(ctx context.Context, result *domain.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *result
	m.results[result.MatchID] = &cp
	return nil
}

func (m *Matches) Get(ctx context.Context, matchID string) (*domain.MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.results[matchID]
	if !ok {
		return nil, fmt.Errorf("no result for match %s", matchID)
	}
	cp := *r
	return &cp, nil
}

func (m *Matches) IsCompleted(ctx context.Context, matchID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.results[matchID]
	return ok, nil
}

// History is the in-memory HistoryRepository.
type History struct {
	mu      sync.Mutex
	entries map[string][]domain.HistoryEntry
}

// NewHistory creates an empty in-memory history store.
func NewHistory() *History {
	return &History{entries: make(map[string][]domain.HistoryEntry)}
}

func (h *History) Append(ctx context.Context, playerID string, entry domain.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[playerID] = append(h.entries[playerID], entry)
	return nil
}

func (h *History) List(ctx context.Context, playerID string) ([]domain.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot := make([]domain.HistoryEntry, len(h.entries[playerID]))
	copy(snapshot, h.entries[playerID])
	return snapshot, nil
}
