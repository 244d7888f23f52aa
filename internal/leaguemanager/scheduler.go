package leaguemanager

import (
	"strconv"

	"github.com/leaguerunner/tournament/internal/domain"
)

// pair is an unordered pairing of two player ids in canonical order:
// the order the two ids are produced by the enumeration below, not
// necessarily registration order.
type pair struct {
	a, b string
}

// canonicalPairs enumerates every unordered pair of playerIDs in
// lexicographic order of (i, j) index over the registration-order
// sequence, i.e. (P1,P2), (P1,P3), ..., (P1,Pn), (P2,P3), ....
func canonicalPairs(playerIDs []string) []pair {
	var pairs []pair
	for i := 0; i < len(playerIDs); i++ {
		for j := i + 1; j < len(playerIDs); j++ {
			pairs = append(pairs, pair{a: playerIDs[i], b: playerIDs[j]})
		}
	}
	return pairs
}

// roundCapacity is floor(n/2) for even n, floor((n-1)/2) for odd n.
func roundCapacity(n int) int {
	if n%2 == 0 {
		return n / 2
	}
	return (n - 1) / 2
}

// scheduleReference packs canonicalPairs into rounds of roundCapacity
// size by straight chunking, with no regard for whether a player
// already appears earlier in the same round. This reproduces the
// reference implementation's round-robin bug bit-for-bit: for n >= 4
// a player can be double-booked within one round.
func scheduleReference(playerIDs []string) [][]pair {
	pairs := canonicalPairs(playerIDs)
	capacity := roundCapacity(len(playerIDs))
	if capacity == 0 {
		return nil
	}

	var rounds [][]pair
	for start := 0; start < len(pairs); start += capacity {
		end := start + capacity
		if end > len(pairs) {
			end = len(pairs)
		}
		rounds = append(rounds, pairs[start:end])
	}
	return rounds
}

// scheduleCircle produces a correct round-robin via the circle method:
// one fixed player plus n-1 (or n for odd n, with a bye) rotating
// players, guaranteeing every player appears at most once per round.
func scheduleCircle(playerIDs []string) [][]pair {
	ids := make([]string, len(playerIDs))
	copy(ids, playerIDs)

	bye := false
	if len(ids)%2 != 0 {
		ids = append(ids, "")
		bye = true
	}

	n := len(ids)
	if n < 2 {
		return nil
	}

	totalRounds := n - 1
	half := n / 2

	var rounds [][]pair
	for r := 0; r < totalRounds; r++ {
		var round []pair
		for i := 0; i < half; i++ {
			a, b := ids[i], ids[n-1-i]
			if bye && (a == "" || b == "") {
				continue
			}
			round = append(round, pair{a: a, b: b})
		}
		if len(round) > 0 {
			rounds = append(rounds, round)
		}

		// rotate all but the first element
		fixed := ids[0]
		rest := append([]string{}, ids[1:]...)
		rest = append(rest[len(rest)-1:], rest[:len(rest)-1]...)
		ids = append([]string{fixed}, rest...)
	}
	return rounds
}

// buildSchedule runs the configured packing algorithm and materializes
// domain.Match records with monotonic R{round}M{k} ids.
func buildSchedule(playerIDs []string, algorithm string) map[int][]*domain.Match {
	var rounds [][]pair
	switch algorithm {
	case "circle":
		rounds = scheduleCircle(playerIDs)
	default:
		rounds = scheduleReference(playerIDs)
	}

	matchesByRound := make(map[int][]*domain.Match)
	k := 1
	for roundIdx, roundPairs := range rounds {
		roundID := roundIdx + 1
		for _, p := range roundPairs {
			match := &domain.Match{
				MatchID:   matchID(roundID, k),
				RoundID:   roundID,
				GameType:  "even_odd",
				PlayerAID: p.a,
				PlayerBID: p.b,
			}
			matchesByRound[roundID] = append(matchesByRound[roundID], match)
			k++
		}
	}
	return matchesByRound
}

func matchID(round, k int) string {
	return "R" + strconv.Itoa(round) + "M" + strconv.Itoa(k)
}
