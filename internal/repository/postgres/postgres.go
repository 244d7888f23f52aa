// Package postgres implements the repository contracts on top of
// jmoiron/sqlx and lib/pq, the optional StoreConfig.Backend=postgres
// backend for durable, queryable standings/match/history storage.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/leaguerunner/tournament/internal/config"
	"github.com/leaguerunner/tournament/internal/domain"
)

// New opens and verifies a connection pool per cfg.
func New(ctx context.Context, cfg config.StoreConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.PostgresMaxConnections)
	db.SetMaxIdleConns(cfg.PostgresMaxIdle)
	db.SetConnMaxLifetime(cfg.PostgresMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// standingRow mirrors the standings table for sqlx scanning.
type standingRow struct {
	PlayerID    string `db:"player_id"`
	DisplayName string `db:"display_name"`
	Played      int    `db:"played"`
	Wins        int    `db:"wins"`
	Draws       int    `db:"draws"`
	Losses      int    `db:"losses"`
	Points      int    `db:"points"`
}

func (r standingRow) toDomain() *domain.Standing {
	return &domain.Standing{
		PlayerID:    r.PlayerID,
		DisplayName: r.DisplayName,
		Played:      r.Played,
		Wins:        r.Wins,
		Draws:       r.Draws,
		Losses:      r.Losses,
		Points:      r.Points,
	}
}

// Standings is the Postgres-backed StandingsRepository.
type Standings struct {
	db *sqlx.DB
}

// NewStandings wraps an existing *sqlx.DB.
func NewStandings(db *sqlx.DB) *Standings {
	return &Standings{db: db}
}

func (s *Standings) Get(ctx context.Context, playerID string) (*domain.Standing, error) {
	var row standingRow
	err := s.db.GetContext(ctx, &row,
		`SELECT player_id, display_name, played, wins, draws, losses, points
		 FROM standings WHERE player_id = $1`, playerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no standing for player %s", playerID)
	}
	if err != nil {
		return nil, fmt.Errorf("get standing: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Standings) GetAll(ctx context.Context) ([]*domain.Standing, error) {
	var rows []standingRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT player_id, display_name, played, wins, draws, losses, points FROM standings`)
	if err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}
	all := make([]*domain.Standing, 0, len(rows))
	for _, r := range rows {
		all = append(all, r.toDomain())
	}
	domain.RecomputeRanks(all)
	return all, nil
}

func (s *Standings) Put(ctx context.Context, standings []*domain.Standing) error {
	domain.RecomputeRanks(standings)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, st := range standings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO standings (player_id, display_name, played, wins, draws, losses, points)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (player_id) DO UPDATE SET
				played = EXCLUDED.played,
				wins = EXCLUDED.wins,
				draws = EXCLUDED.draws,
				losses = EXCLUDED.losses,
				points = EXCLUDED.points
		`, st.PlayerID, st.DisplayName, st.Played, st.Wins, st.Draws, st.Losses, st.Points)
		if err != nil {
			return fmt.Errorf("upsert standing %s: %w", st.PlayerID, err)
		}
	}

	return tx.Commit()
}

func (s *Standings) Ensure(ctx context.Context, playerID, displayName string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO standings (player_id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (player_id) DO NOTHING
	`, playerID, displayName)
	if err != nil {
		return fmt.Errorf("ensure standing %s: %w", playerID, err)
	}
	return nil
}

// Matches is the Postgres-backed MatchRepository.
type Matches struct {
	db *sqlx.DB
}

// NewMatches wraps an existing *sqlx.DB.
func NewMatches(db *sqlx.DB) *Matches {
	return &Matches{db: db}
}

func (m *Matches) Save(ctx context.Context, result *domain.MatchResult) error {
	score, err := json.Marshal(result.Score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	details, err := json.Marshal(result.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO match_results (match_id, round_id, player_a_id, player_b_id, winner, score, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (match_id) DO NOTHING
	`, result.MatchID, result.RoundID, result.PlayerAID, result.PlayerBID, nullableString(result.Winner), score, details)
	if err != nil {
		return fmt.Errorf("save match result: %w", err)
	}
	return nil
}

func (m *Matches) Get(ctx context.Context, matchID string) (*domain.MatchResult, error) {
	var row struct {
		MatchID   string         `db:"match_id"`
		RoundID   int            `db:"round_id"`
		PlayerAID string         `db:"player_a_id"`
		PlayerBID string         `db:"player_b_id"`
		Winner    sql.NullString `db:"winner"`
		Score     []byte         `db:"score"`
		Details   []byte         `db:"details"`
	}
	err := m.db.GetContext(ctx, &row, `
		SELECT match_id, round_id, player_a_id, player_b_id, winner, score, details
		FROM match_results WHERE match_id = $1
	`, matchID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no result for match %s", matchID)
	}
	if err != nil {
		return nil, fmt.Errorf("get match result: %w", err)
	}

	var score map[string]int
	if err := json.Unmarshal(row.Score, &score); err != nil {
		return nil, fmt.Errorf("unmarshal score: %w", err)
	}
	var details domain.MatchResultDetails
	if err := json.Unmarshal(row.Details, &details); err != nil {
		return nil, fmt.Errorf("unmarshal details: %w", err)
	}

	return &domain.MatchResult{
		MatchID:   row.MatchID,
		RoundID:   row.RoundID,
		PlayerAID: row.PlayerAID,
		PlayerBID: row.PlayerBID,
		Winner:    row.Winner.String,
		Score:     score,
		Details:   details,
	}, nil
}

func (m *Matches) IsCompleted(ctx context.Context, matchID string) (bool, error) {
	var exists bool
	err := m.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM match_results WHERE match_id = $1)`, matchID)
	if err != nil {
		return false, fmt.Errorf("check match completion: %w", err)
	}
	return exists, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// History is the Postgres-backed HistoryRepository.
type History struct {
	db *sqlx.DB
}

// NewHistory wraps an existing *sqlx.DB.
func NewHistory(db *sqlx.DB) *History {
	return &History{db: db}
}

func (h *History) Append(ctx context.Context, playerID string, entry domain.HistoryEntry) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO history_entries
			(player_id, match_id, opponent, my_choice, opponent_choice, drawn_number, winner, won)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, playerID, entry.MatchID, entry.Opponent, entry.MyChoice, entry.OpponentChoice,
		entry.DrawnNumber, nullableString(entry.Winner), entry.Won)
	if err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

func (h *History) List(ctx context.Context, playerID string) ([]domain.HistoryEntry, error) {
	var rows []struct {
		MatchID        string         `db:"match_id"`
		Opponent       string         `db:"opponent"`
		MyChoice       string         `db:"my_choice"`
		OpponentChoice string         `db:"opponent_choice"`
		DrawnNumber    int            `db:"drawn_number"`
		Winner         sql.NullString `db:"winner"`
		Won            bool           `db:"won"`
	}
	err := h.db.SelectContext(ctx, &rows, `
		SELECT match_id, opponent, my_choice, opponent_choice, drawn_number, winner, won
		FROM history_entries WHERE player_id = $1 ORDER BY id
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, domain.HistoryEntry{
			MatchID:        r.MatchID,
			Opponent:       r.Opponent,
			MyChoice:       r.MyChoice,
			OpponentChoice: r.OpponentChoice,
			DrawnNumber:    r.DrawnNumber,
			Winner:         r.Winner.String,
			Won:            r.Won,
		})
	}
	return entries, nil
}
