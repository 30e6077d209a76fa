// Package leaderboard orders rotation periods and ranks submissions for
// the leaderboard read model.
//
// Everything here is a pure read-time computation over a snapshot; there
// is no materialized board to invalidate. Sorting P periods costs
// O(P log P), cheap enough to recompute per request.
package leaderboard

import (
	"sort"

	"github.com/edithlab/growthboard/internal/domain/model"
)

// Cycle is one rotation period with its associated submissions.
type Cycle struct {
	model.RotationPeriod
	Submissions []model.Submission `json:"submissions"`
}

// SortCycles returns the cycles ordered most-recent-first: year
// descending, then month, then week. The input slice is not mutated.
func SortCycles(cycles []Cycle) []Cycle {
	out := make([]Cycle, len(cycles))
	copy(out, cycles)
	sort.SliceStable(out, func(i, j int) bool {
		return periodLess(out[j].RotationPeriod, out[i].RotationPeriod)
	})
	return out
}

// periodLess orders periods ascending by (year, month, week).
func periodLess(a, b model.RotationPeriod) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Month != b.Month {
		return a.Month < b.Month
	}
	return a.Week < b.Week
}

// Ranked is a submission with its 1-based rank within a period.
type Ranked struct {
	Rank int `json:"rank"`
	model.Submission
}

// Rank orders submissions by composite total descending, breaking ties
// by earliest posted-at, and assigns 1-based ranks. The input slice is
// not mutated.
func Rank(subs []model.Submission) []Ranked {
	sorted := make([]model.Submission, len(subs))
	copy(sorted, subs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Total != sorted[j].Total {
			return sorted[i].Total > sorted[j].Total
		}
		return sorted[i].PostedAt.Before(sorted[j].PostedAt)
	})

	ranked := make([]Ranked, len(sorted))
	for i, sub := range sorted {
		ranked[i] = Ranked{Rank: i + 1, Submission: sub}
	}
	return ranked
}
