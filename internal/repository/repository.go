// Package repository declares the three persistent-state contracts
// named in spec.md §6: StandingsRepository, MatchRepository, and
// HistoryRepository. Each has an in-memory, a Redis-backed, and a
// Postgres-backed implementation (memory, rediskv, postgres
// subpackages), selected at process start by config.StoreConfig.Backend.
package repository

import (
	"context"

	"github.com/leaguerunner/tournament/internal/domain"
)

// StandingsRepository holds one league's per-player standings. Put
// must update ranks atomically across every standing it touches.
type StandingsRepository interface {
	Get(ctx context.Context, playerID string) (*domain.Standing, error)
	GetAll(ctx context.Context) ([]*domain.Standing, error)
	Put(ctx context.Context, standings []*domain.Standing) error
	Ensure(ctx context.Context, playerID, displayName string) error
}

// MatchRepository is a by-id store of completed match results.
type MatchRepository interface {
	Save(ctx context.Context, result *domain.MatchResult) error
	Get(ctx context.Context, matchID string) (*domain.MatchResult, error)
	IsCompleted(ctx context.Context, matchID string) (bool, error)
}

// HistoryRepository is an append-only per-player sequence of game
// history entries. Reads return a snapshot copy, safe to range over
// without synchronization.
type HistoryRepository interface {
	Append(ctx context.Context, playerID string, entry domain.HistoryEntry) error
	List(ctx context.Context, playerID string) ([]domain.HistoryEntry, error)
}
