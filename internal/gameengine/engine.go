// Package gameengine implements the pluggable game module the
// Referee invokes once both players have submitted a parity choice
// (spec.md §4.3 step 3). It is the one external collaborator explicit
// randomness lives behind.
package gameengine

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// MinDraw and MaxDraw bound the reference parity game's draw.
	MinDraw = 1
	MaxDraw = 10
)

// Outcome is the adjudication result for one match.
type Outcome struct {
	Winner      string // empty denotes a draw
	DrawnNumber int
	Parity      string // "even" or "odd"
	Choices     map[string]string
	Score       map[string]int
	Reason      string
}

// Engine adjudicates a parity-choice match between two players.
type Engine interface {
	Adjudicate(playerA, choiceA, playerB, choiceB string) (Outcome, error)
}

// ParityEngine is the reference engine: draw a uniform random integer
// in [MinDraw, MaxDraw], award the win to whichever player's choice
// matches its parity.
type ParityEngine struct{}

// NewParityEngine returns the reference parity-game engine.
func NewParityEngine() *ParityEngine {
	return &ParityEngine{}
}

// Adjudicate draws a number and scores the two submitted choices.
func (e *ParityEngine) Adjudicate(playerA, choiceA, playerB, choiceB string) (Outcome, error) {
	n, err := draw()
	if err != nil {
		return Outcome{}, fmt.Errorf("draw number: %w", err)
	}

	parity := "odd"
	if n%2 == 0 {
		parity = "even"
	}

	choices := map[string]string{playerA: choiceA, playerB: choiceB}
	score := map[string]int{playerA: 0, playerB: 0}

	aMatches := choiceA == parity
	bMatches := choiceB == parity

	outcome := Outcome{
		DrawnNumber: n,
		Parity:      parity,
		Choices:     choices,
	}

	switch {
	case aMatches:
		// A's match takes precedence even when B also matches.
		outcome.Winner = playerA
		score[playerA] = 3
	case bMatches:
		outcome.Winner = playerB
		score[playerB] = 3
	default:
		outcome.Reason = fmt.Sprintf("neither choice matched drawn parity %s", parity)
	}

	outcome.Score = score
	return outcome, nil
}

func draw() (int, error) {
	span := big.NewInt(int64(MaxDraw - MinDraw + 1))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return 0, err
	}
	return MinDraw + int(n.Int64()), nil
}
