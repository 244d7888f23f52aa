package referee

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leaguerunner/tournament/internal/gameengine"
	"github.com/leaguerunner/tournament/internal/protocol"
)

// state is the match task's explicit lifecycle, per spec.md §9 "Match
// task lifecycle": INVITING -> CHOOSING -> ADJUDICATING -> REPORTING
// -> DONE, with every abort path also landing on DONE.
type state string

const (
	stateInviting     state = "INVITING"
	stateChoosing     state = "CHOOSING"
	stateAdjudicating state = "ADJUDICATING"
	stateReporting    state = "REPORTING"
	stateDone         state = "DONE"
)

const (
	roleA = "PLAYER_A"
	roleB = "PLAYER_B"
)

// matchTask owns the execution of one scheduled match end-to-end. It
// is created and tracked by Referee and never outlives one run() call.
type matchTask struct {
	ref      *Referee
	leagueID string
	roundID  int
	match    protocol.ScheduledMatch

	state state
}

func newMatchTask(ref *Referee, leagueID string, roundID int, match protocol.ScheduledMatch) *matchTask {
	return &matchTask{ref: ref, leagueID: leagueID, roundID: roundID, match: match, state: stateInviting}
}

// run drives the micro-protocol of spec.md §4.3. Any failure aborts
// the match: by default (ReportTechnicalLoss=false) it is logged and
// silently abandoned, reproducing the reference's stalling behavior
// (§9 open question); with the flag set it instead synthesizes a
// TECHNICAL_LOSS result so standings and round completion still
// advance.
func (t *matchTask) run(ctx context.Context) {
	start := time.Now()
	log := t.ref.log.WithMatchID(t.match.MatchID).WithRoundID(t.roundID)

	acks, err := t.invite(ctx)
	if err != nil {
		log.LogError("match aborted at invitation", err)
		t.abort(ctx, err.Error(), nil)
		t.recordOutcome("aborted", start)
		return
	}
	_ = acks

	t.state = stateChoosing
	choiceA, choiceB, err := t.chooseParity(ctx)
	if err != nil {
		log.LogError("match aborted at choose-parity", err)
		t.abort(ctx, err.Error(), nil)
		t.recordOutcome("aborted", start)
		return
	}

	t.state = stateAdjudicating
	outcome, err := t.ref.engine.Adjudicate(t.match.PlayerAID, choiceA, t.match.PlayerBID, choiceB)
	if err != nil {
		log.LogError("match aborted at adjudication", err)
		t.abort(ctx, err.Error(), nil)
		t.recordOutcome("aborted", start)
		return
	}

	t.state = stateReporting
	t.reportOutcome(ctx, outcome)

	t.state = stateDone
	t.recordOutcome("completed", start)
}

func (t *matchTask) recordOutcome(status string, start time.Time) {
	if t.ref.metrics != nil {
		t.ref.metrics.RecordMatchComplete(t.match.GameType, status, time.Since(start))
	}
}

// invite sends GAME_INVITATION to both players and awaits both
// GAME_JOIN_ACK replies concurrently, each under the transport timeout.
func (t *matchTask) invite(ctx context.Context) (map[string]*protocol.GameJoinAck, error) {
	type result struct {
		playerID string
		ack      *protocol.GameJoinAck
		err      error
	}

	results := make(chan result, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		ack, err := t.inviteOne(ctx, roleA, t.match.PlayerAID, t.match.PlayerBID, t.match.PlayerAEndpoint)
		results <- result{t.match.PlayerAID, ack, err}
	}()
	go func() {
		defer wg.Done()
		ack, err := t.inviteOne(ctx, roleB, t.match.PlayerBID, t.match.PlayerAID, t.match.PlayerBEndpoint)
		results <- result{t.match.PlayerBID, ack, err}
	}()

	go func() { wg.Wait(); close(results) }()

	acks := make(map[string]*protocol.GameJoinAck, 2)
	var failed string
	for r := range results {
		if r.err != nil || r.ack == nil || !r.ack.Accept {
			failed = r.playerID
			continue
		}
		acks[r.playerID] = r.ack
	}

	if failed != "" {
		return acks, fmt.Errorf("player %s did not join: join timeout or decline", failed)
	}
	return acks, nil
}

func (t *matchTask) inviteOne(ctx context.Context, role, playerID, opponentID, endpoint string) (*protocol.GameJoinAck, error) {
	invite := protocol.GameInvitation{
		Envelope:      t.envelope(protocol.TypeGameInvitation),
		LeagueIDField: t.leagueID,
		RoundIDField:  t.roundID,
		MatchIDField:  t.match.MatchID,
		GameType:      t.match.GameType,
		RoleInMatch:   role,
		OpponentID:    opponentID,
	}

	raw, err := t.call(ctx, endpoint, t.ref.timeouts.Join, invite)
	if err != nil {
		return nil, err
	}

	var ack protocol.GameJoinAck
	if err := json.Unmarshal(raw, &ack); err != nil {
		return nil, fmt.Errorf("decode join ack from %s: %w", playerID, err)
	}
	return &ack, nil
}

// chooseParity sends CHOOSE_PARITY_CALL to both players with an
// application-level deadline and awaits both CHOOSE_PARITY_RESPONSE,
// each under the transport timeout (spec.md §5 distinguishes the two).
func (t *matchTask) chooseParity(ctx context.Context) (string, string, error) {
	type result struct {
		playerID string
		choice   string
		err      error
	}

	results := make(chan result, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	deadline := time.Now().Add(t.ref.timeouts.ChooseParity).UTC().Format(time.RFC3339Nano)

	go func() {
		defer wg.Done()
		c, err := t.chooseOne(ctx, t.match.PlayerAID, t.match.PlayerBID, t.match.PlayerAEndpoint, deadline)
		results <- result{t.match.PlayerAID, c, err}
	}()
	go func() {
		defer wg.Done()
		c, err := t.chooseOne(ctx, t.match.PlayerBID, t.match.PlayerAID, t.match.PlayerBEndpoint, deadline)
		results <- result{t.match.PlayerBID, c, err}
	}()

	go func() { wg.Wait(); close(results) }()

	choices := make(map[string]string, 2)
	var failed string
	for r := range results {
		if r.err != nil || (r.choice != "even" && r.choice != "odd") {
			failed = r.playerID
			continue
		}
		choices[r.playerID] = r.choice
	}

	if failed != "" {
		return "", "", fmt.Errorf("player %s failed to submit a valid parity choice", failed)
	}
	return choices[t.match.PlayerAID], choices[t.match.PlayerBID], nil
}

func (t *matchTask) chooseOne(ctx context.Context, playerID, opponentID, endpoint, deadline string) (string, error) {
	call := protocol.ChooseParityCall{
		Envelope:     t.envelope(protocol.TypeChooseParityCall),
		MatchIDField: t.match.MatchID,
		PlayerID:     playerID,
		GameType:     t.match.GameType,
		Context:      protocol.ChooseParityContext{OpponentID: opponentID, RoundID: t.roundID},
		Deadline:     deadline,
	}

	raw, err := t.call(ctx, endpoint, t.ref.timeouts.ChooseParity, call)
	if err != nil {
		return "", err
	}

	var resp protocol.ChooseParityResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode parity choice from %s: %w", playerID, err)
	}
	return resp.ParityChoice, nil
}

// reportOutcome emits GAME_OVER to both players and MATCH_RESULT_REPORT
// to the League Manager for a normal (non-aborted) adjudication.
func (t *matchTask) reportOutcome(ctx context.Context, outcome gameengine.Outcome) {
	status := "DRAW"
	if outcome.Winner != "" {
		status = "WIN"
	}

	result := protocol.GameResult{
		Status:         status,
		WinnerPlayerID: outcome.Winner,
		DrawnNumber:    outcome.DrawnNumber,
		NumberParity:   outcome.Parity,
		Choices:        outcome.Choices,
		Reason:         outcome.Reason,
	}

	t.sendGameOver(ctx, t.match.PlayerAID, t.match.PlayerAEndpoint, result)
	t.sendGameOver(ctx, t.match.PlayerBID, t.match.PlayerBEndpoint, result)

	t.sendMatchResult(ctx, outcome.Winner, outcome.Score, protocol.MatchResultDetails{
		DrawnNumber: outcome.DrawnNumber,
		Choices:     outcome.Choices,
		Reason:      outcome.Reason,
	})
}

// abort handles every non-normal exit path per spec.md §7 item 4 and
// §9's "abandoned match" open question. When ReportTechnicalLoss is
// off (the reference default), the match is logged and silently
// abandoned — no report is sent and the league can stall. When it is
// on, a TECHNICAL_LOSS outcome is synthesized and reported so
// standings/completion still advance.
func (t *matchTask) abort(ctx context.Context, reason string, winnerHint *string) {
	if !t.ref.cfg.ReportTechnicalLoss {
		return
	}

	result := protocol.GameResult{
		Status: "TECHNICAL_LOSS",
		Reason: reason,
	}
	if winnerHint != nil {
		result.WinnerPlayerID = *winnerHint
	}

	t.sendGameOver(ctx, t.match.PlayerAID, t.match.PlayerAEndpoint, result)
	t.sendGameOver(ctx, t.match.PlayerBID, t.match.PlayerBEndpoint, result)

	score := map[string]int{t.match.PlayerAID: 0, t.match.PlayerBID: 0}
	if winnerHint != nil && *winnerHint != "" {
		score[*winnerHint] = 3
	}

	winner := ""
	if winnerHint != nil {
		winner = *winnerHint
	}

	t.sendMatchResult(ctx, winner, score, protocol.MatchResultDetails{Reason: reason})
}

func (t *matchTask) sendGameOver(ctx context.Context, playerID, endpoint string, result protocol.GameResult) {
	if endpoint == "" {
		return
	}
	over := protocol.GameOver{
		Envelope:     t.envelope(protocol.TypeGameOver),
		MatchIDField: t.match.MatchID,
		GameType:     t.match.GameType,
		GameResult:   result,
	}
	if _, err := t.call(ctx, endpoint, t.ref.timeouts.Transport, over); err != nil {
		t.ref.log.LogError("failed to deliver game_over", err, zap.String("player_id", playerID))
	}
}

func (t *matchTask) sendMatchResult(ctx context.Context, winner string, score map[string]int, details protocol.MatchResultDetails) {
	report := protocol.MatchResultReport{
		Envelope:      t.envelope(protocol.TypeMatchResultReport),
		LeagueIDField: t.leagueID,
		RoundIDField:  t.roundID,
		MatchIDField:  t.match.MatchID,
		GameType:      t.match.GameType,
		Result: protocol.MatchResultPayload{
			Winner:  winner,
			Score:   score,
			Details: details,
		},
	}
	if _, err := t.call(ctx, t.ref.lmEndpoint, t.ref.timeouts.Transport, report); err != nil {
		t.ref.log.LogError("failed to deliver match_result_report", err)
	}
}

// call marshals msg and sends it via the referee's Caller, bounding the
// attempt with timeout.
func (t *matchTask) call(ctx context.Context, endpoint string, timeout time.Duration, msg interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return t.ref.caller.Send(cctx, endpoint, uuid.NewString(), raw)
}

func (t *matchTask) envelope(msgType protocol.MessageType) protocol.Envelope {
	return protocol.Envelope{
		Protocol:       protocol.ProtocolVersion,
		MessageType:    msgType,
		Sender:         t.ref.senderID(),
		Timestamp:      protocol.Now(),
		ConversationID: uuid.NewString(),
		LeagueID:       t.leagueID,
		MatchID:        t.match.MatchID,
		RoundID:        t.roundID,
	}
}
