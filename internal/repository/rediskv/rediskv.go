// Package rediskv implements the repository contracts on top of
// github.com/redis/go-redis/v9, the optional StandingsRepository,
// MatchRepository and HistoryRepository backend selected by
// STORE_BACKEND=redis. Standings are stored in a hash and GetAll
// recomputes rank order on every read; matches and history use
// hashes/lists.
package rediskv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/leaguerunner/tournament/internal/config"
	"github.com/leaguerunner/tournament/internal/domain"
)

// NewClient dials Redis per cfg and verifies the connection.
func NewClient(ctx context.Context, cfg config.StoreConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: cfg.RedisPoolSize,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

const (
	standingsHashKey = "league:standings"
)

// Standings is the Redis-backed StandingsRepository. Each player's
// standing is stored as a JSON blob in a hash; ranks are recomputed
// on every read, same as the reference Invariant 7 requires.
type Standings struct {
	client *redis.Client
}

// NewStandings wraps an existing Redis client.
func NewStandings(client *redis.Client) *Standings {
	return &Standings{client: client}
}

func (s *Standings) Get(ctx context.Context, playerID string) (*domain.Standing, error) {
	raw, err := s.client.HGet(ctx, standingsHashKey, playerID).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("no standing for player %s", playerID)
	}
	if err != nil {
		return nil, fmt.Errorf("hget standing: %w", err)
	}
	var st domain.Standing
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("unmarshal standing: %w", err)
	}
	return &st, nil
}

func (s *Standings) GetAll(ctx context.Context) ([]*domain.Standing, error) {
	raws, err := s.client.HGetAll(ctx, standingsHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall standings: %w", err)
	}
	all := make([]*domain.Standing, 0, len(raws))
	for _, raw := range raws {
		var st domain.Standing
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			return nil, fmt.Errorf("unmarshal standing: %w", err)
		}
		all = append(all, &st)
	}
	domain.RecomputeRanks(all)
	return all, nil
}

func (s *Standings) Put(ctx context.Context, standings []*domain.Standing) error {
	domain.RecomputeRanks(standings)

	pipe := s.client.TxPipeline()
	for _, st := range standings {
		raw, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("marshal standing: %w", err)
		}
		pipe.HSet(ctx, standingsHashKey, st.PlayerID, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put standings: %w", err)
	}
	return nil
}

func (s *Standings) Ensure(ctx context.Context, playerID, displayName string) error {
	exists, err := s.client.HExists(ctx, standingsHashKey, playerID).Result()
	if err != nil {
		return fmt.Errorf("hexists standing: %w", err)
	}
	if exists {
		return nil
	}
	raw, err := json.Marshal(&domain.Standing{PlayerID: playerID, DisplayName: displayName})
	if err != nil {
		return fmt.Errorf("marshal standing: %w", err)
	}
	return s.client.HSet(ctx, standingsHashKey, playerID, raw).Err()
}

func matchKey(matchID string) string {
	return fmt.Sprintf("league:match:%s", matchID)
}

// Matches is the Redis-backed MatchRepository.
type Matches struct {
	client *redis.Client
}

// NewMatches wraps an existing Redis client.
func NewMatches(client *redis.Client) *Matches {
	return &Matches{client: client}
}

func (m *Matches) Save(ctx context.Context, result *domain.MatchResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal match result: %w", err)
	}
	return m.client.Set(ctx, matchKey(result.MatchID), raw, 0).Err()
}

func (m *Matches) Get(ctx context.Context, matchID string) (*domain.MatchResult, error) {
	raw, err := m.client.Get(ctx, matchKey(matchID)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("no result for match %s", matchID)
	}
	if err != nil {
		return nil, fmt.Errorf("get match result: %w", err)
	}
	var res domain.MatchResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("unmarshal match result: %w", err)
	}
	return &res, nil
}

func (m *Matches) IsCompleted(ctx context.Context, matchID string) (bool, error) {
	n, err := m.client.Exists(ctx, matchKey(matchID)).Result()
	if err != nil {
		return false, fmt.Errorf("exists match result: %w", err)
	}
	return n > 0, nil
}

func historyKey(playerID string) string {
	return fmt.Sprintf("league:history:%s", playerID)
}

// History is the Redis-backed HistoryRepository, one list per player.
type History struct {
	client *redis.Client
}

// NewHistory wraps an existing Redis client.
func NewHistory(client *redis.Client) *History {
	return &History{client: client}
}

func (h *History) Append(ctx context.Context, playerID string, entry domain.HistoryEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	return h.client.RPush(ctx, historyKey(playerID), raw).Err()
}

func (h *History) List(ctx context.Context, playerID string) ([]domain.HistoryEntry, error) {
	raws, err := h.client.LRange(ctx, historyKey(playerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange history: %w", err)
	}
	entries := make([]domain.HistoryEntry, 0, len(raws))
	for _, raw := range raws {
		var entry domain.HistoryEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("unmarshal history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
