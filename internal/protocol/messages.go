package protocol

// RefereeMeta is the registration metadata a referee supplies.
type RefereeMeta struct {
	DisplayName          string   `json:"display_name"`
	Version              string   `json:"version"`
	ContactEndpoint      string   `json:"contact_endpoint"`
	GameTypes            []string `json:"game_types"`
	MaxConcurrentMatches int      `json:"max_concurrent_matches"`
}

// PlayerMeta is the registration metadata a player supplies.
type PlayerMeta struct {
	DisplayName     string   `json:"display_name"`
	Version         string   `json:"version"`
	ContactEndpoint string   `json:"contact_endpoint"`
	GameTypes       []string `json:"game_types"`
}

// RefereeRegisterRequest is R→LM.
type RefereeRegisterRequest struct {
	Envelope
	RefereeMeta RefereeMeta `json:"referee_meta"`
}

// RefereeRegisterResponse is LM→R.
type RefereeRegisterResponse struct {
	Envelope
	Status     string `json:"status"`
	RefereeID  string `json:"referee_id"`
	AuthToken  string `json:"auth_token"`
	Reason     string `json:"reason,omitempty"`
}

// LeagueRegisterRequest is P→LM.
type LeagueRegisterRequest struct {
	Envelope
	PlayerMeta PlayerMeta `json:"player_meta"`
}

// LeagueRegisterResponse is LM→P.
type LeagueRegisterResponse struct {
	Envelope
	Status    string `json:"status"`
	PlayerID  string `json:"player_id"`
	AuthToken string `json:"auth_token"`
	Reason    string `json:"reason,omitempty"`
}

// StartLeague is ext→LM.
type StartLeague struct {
	Envelope
	LeagueID string `json:"league_id"`
}

// LeagueStatusMessage is LM→ext.
type LeagueStatusMessage struct {
	Envelope
	LeagueIDField    string `json:"league_id"`
	Status           string `json:"status"`
	CurrentRound     int    `json:"current_round"`
	TotalRounds      int    `json:"total_rounds"`
	MatchesCompleted int    `json:"matches_completed"`
}

// ScheduledMatch is one entry in a ROUND_ANNOUNCEMENT's match list.
type ScheduledMatch struct {
	MatchID         string `json:"match_id"`
	GameType        string `json:"game_type"`
	PlayerAID       string `json:"player_a_id"`
	PlayerBID       string `json:"player_b_id"`
	RefereeEndpoint string `json:"referee_endpoint"`
	PlayerAEndpoint string `json:"player_a_endpoint"`
	PlayerBEndpoint string `json:"player_b_endpoint"`
}

// RoundAnnouncement is LM→R,P.
type RoundAnnouncement struct {
	Envelope
	LeagueIDField string           `json:"league_id"`
	RoundIDField  int              `json:"round_id"`
	Matches       []ScheduledMatch `json:"matches"`
}

// GameInvitation is R→P.
type GameInvitation struct {
	Envelope
	LeagueIDField string `json:"league_id"`
	RoundIDField  int    `json:"round_id"`
	MatchIDField  string `json:"match_id"`
	GameType      string `json:"game_type"`
	RoleInMatch   string `json:"role_in_match"`
	OpponentID    string `json:"opponent_id"`
}

// GameJoinAck is P→R.
type GameJoinAck struct {
	Envelope
	MatchIDField     string `json:"match_id"`
	PlayerID         string `json:"player_id"`
	ArrivalTimestamp string `json:"arrival_timestamp"`
	Accept           bool   `json:"accept"`
}

// ChooseParityContext carries the opponent id and round context a
// player may use to decide.
type ChooseParityContext struct {
	OpponentID string `json:"opponent_id"`
	RoundID    int    `json:"round_id"`
}

// ChooseParityCall is R→P.
type ChooseParityCall struct {
	Envelope
	MatchIDField string              `json:"match_id"`
	PlayerID     string              `json:"player_id"`
	GameType     string              `json:"game_type"`
	Context      ChooseParityContext `json:"context"`
	Deadline     string              `json:"deadline"`
}

// ChooseParityResponse is P→R.
type ChooseParityResponse struct {
	Envelope
	MatchIDField string `json:"match_id"`
	PlayerID     string `json:"player_id"`
	ParityChoice string `json:"parity_choice"`
}

// GameResult is the adjudication outcome carried inside GAME_OVER.
type GameResult struct {
	Status          string            `json:"status"`
	WinnerPlayerID  string            `json:"winner_player_id,omitempty"`
	DrawnNumber     int               `json:"drawn_number"`
	NumberParity    string            `json:"number_parity"`
	Choices         map[string]string `json:"choices"`
	Reason          string            `json:"reason,omitempty"`
}

// GameOver is R→P.
type GameOver struct {
	Envelope
	MatchIDField string     `json:"match_id"`
	GameType     string     `json:"game_type"`
	GameResult   GameResult `json:"game_result"`
}

// MatchResultDetails mirrors domain.MatchResultDetails on the wire.
type MatchResultDetails struct {
	DrawnNumber int               `json:"drawn_number"`
	Choices     map[string]string `json:"choices"`
	Reason      string            `json:"reason,omitempty"`
}

// MatchResultPayload is the result object inside MATCH_RESULT_REPORT.
type MatchResultPayload struct {
	Winner  string              `json:"winner,omitempty"`
	Score   map[string]int      `json:"score"`
	Details MatchResultDetails  `json:"details"`
}

// MatchResultReport is R→LM.
type MatchResultReport struct {
	Envelope
	LeagueIDField string              `json:"league_id"`
	RoundIDField  int                 `json:"round_id"`
	MatchIDField  string              `json:"match_id"`
	GameType      string              `json:"game_type"`
	Result        MatchResultPayload  `json:"result"`
}

// MatchResultAck is LM→R.
type MatchResultAck struct {
	Envelope
	MatchIDField string `json:"match_id"`
	Status       string `json:"status"`
}

// StandingPayload mirrors domain.Standing on the wire.
type StandingPayload struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Played      int    `json:"played"`
	Wins        int    `json:"wins"`
	Draws       int    `json:"draws"`
	Losses      int    `json:"losses"`
	Points      int    `json:"points"`
}

// LeagueStandingsUpdate is LM→P.
type LeagueStandingsUpdate struct {
	Envelope
	LeagueIDField string            `json:"league_id"`
	RoundIDField  int               `json:"round_id"`
	Standings     []StandingPayload `json:"standings"`
}

// RoundCompleted is LM→P.
type RoundCompleted struct {
	Envelope
	LeagueIDField    string `json:"league_id"`
	RoundIDField     int    `json:"round_id"`
	MatchesCompleted int    `json:"matches_completed"`
	NextRoundID      int    `json:"next_round_id,omitempty"`
	Summary          string `json:"summary"`
}

// LeagueCompleted is LM→*.
type LeagueCompleted struct {
	Envelope
	LeagueIDField  string            `json:"league_id"`
	TotalRounds    int               `json:"total_rounds"`
	TotalMatches   int               `json:"total_matches"`
	Champion       string            `json:"champion"`
	FinalStandings []StandingPayload `json:"final_standings"`
}

// LeagueQuery is P→LM.
type LeagueQuery struct {
	Envelope
	QueryType   string                 `json:"query_type"`
	QueryParams map[string]interface{} `json:"query_params,omitempty"`
}

// LeagueQueryResponse is LM→P.
type LeagueQueryResponse struct {
	Envelope
	QueryType string      `json:"query_type"`
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
}

// LeagueErrorContext carries the originating request's relevant fields
// for client-side diagnosis.
type LeagueErrorContext map[string]interface{}

// LeagueError is LM→*.
type LeagueError struct {
	Envelope
	ErrorCode           string             `json:"error_code"`
	ErrorDescription    string             `json:"error_description"`
	OriginalMessageType string             `json:"original_message_type,omitempty"`
	Context             LeagueErrorContext `json:"context,omitempty"`
}

// Ack is the generic acknowledgement carrying only the envelope.
type Ack struct {
	Envelope
}
