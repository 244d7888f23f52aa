// Package domain holds the league's core record types: agents, the
// league state machine, scheduled matches, standings, and match history.
package domain

import "time"

// AgentKind distinguishes players from referees in the registries.
type AgentKind string

const (
	KindPlayer  AgentKind = "player"
	KindReferee AgentKind = "referee"
)

// Agent is a registered participant: an id bound 1:1 to an auth token.
type Agent struct {
	ID                   string
	Kind                 AgentKind
	DisplayName          string
	Version              string
	ContactEndpoint      string
	GameTypes            []string
	MaxConcurrentMatches int // referees only
	AuthToken            string
	RegisteredAt         time.Time
}

// LeagueStatus is the league's lifecycle state.
type LeagueStatus string

const (
	StatusNotStarted LeagueStatus = "NOT_STARTED"
	StatusRunning    LeagueStatus = "RUNNING"
	StatusCompleted  LeagueStatus = "COMPLETED"
)

// Match is a scheduled pairing, frozen at league start and populated
// with endpoints just before its round is announced.
type Match struct {
	MatchID          string
	RoundID          int
	GameType         string
	PlayerAID        string
	PlayerBID        string
	RefereeEndpoint  string
	PlayerAEndpoint  string
	PlayerBEndpoint  string
}

// Standing is one player's accumulated record. Rank is derived, never
// stored authoritatively between recomputations.
type Standing struct {
	Rank        int
	PlayerID    string
	DisplayName string
	Played      int
	Wins        int
	Draws       int
	Losses      int
	Points      int
}

// MatchResult is the outcome a referee reports for one match.
type MatchResult struct {
	MatchID   string
	RoundID   int
	PlayerAID string
	PlayerBID string
	Winner    string // empty denotes a draw
	Score     map[string]int
	Details   MatchResultDetails
}

// MatchResultDetails carries the game-engine's explanation of the outcome.
type MatchResultDetails struct {
	DrawnNumber int
	Choices     map[string]string // player id -> "even"|"odd"
	Reason      string
}

// HistoryEntry is one player's record of a single completed game.
type HistoryEntry struct {
	MatchID        string
	Opponent       string
	MyChoice       string
	OpponentChoice string
	DrawnNumber    int
	Winner         string
	Won            bool
}

// League is the singleton tournament state owned by the League Manager.
type League struct {
	LeagueID         string
	Status           LeagueStatus
	CurrentRound     int
	TotalRounds      int
	MatchesByRound   map[int][]*Match
	CompletedMatches map[string]struct{}
}

// NewLeague returns a freshly created, not-yet-started league.
func NewLeague(leagueID string) *League {
	return &League{
		LeagueID:         leagueID,
		Status:           StatusNotStarted,
		MatchesByRound:   make(map[int][]*Match),
		CompletedMatches: make(map[string]struct{}),
	}
}

// AllMatches returns every scheduled match across every round, in
// round order then intra-round order.
func (l *League) AllMatches() []*Match {
	var all []*Match
	for round := 1; round <= l.TotalRounds; round++ {
		all = append(all, l.MatchesByRound[round]...)
	}
	return all
}

// MatchByID finds a scheduled match by its id, or nil.
func (l *League) MatchByID(matchID string) *Match {
	for _, m := range l.AllMatches() {
		if m.MatchID == matchID {
			return m
		}
	}
	return nil
}

// RoundComplete reports whether every match in the given round has a
// recorded completion.
func (l *League) RoundComplete(round int) bool {
	for _, m := range l.MatchesByRound[round] {
		if _, done := l.CompletedMatches[m.MatchID]; !done {
			return false
		}
	}
	return true
}
