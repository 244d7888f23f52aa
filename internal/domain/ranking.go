package domain

import "sort"

// RecomputeRanks sorts standings by the §3 Invariant 7 total order —
// (−points, −wins, losses, player_id) — and assigns dense ranks 1..N
// in place.
func RecomputeRanks(standings []*Standing) {
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		return a.PlayerID < b.PlayerID
	})
	for i, s := range standings {
		s.Rank = i + 1
	}
}
