package ranking

import (
	"cmp"
	"slices"

	"github.com/cloo-solutions/draftwise/internal/domain"
)

// Threshold selects how a minimum score is compared.
type Threshold int

const (
	// Inclusive keeps scores >= min.
	Inclusive Threshold = iota
	// Exclusive keeps scores > min.
	Exclusive
)

// Passes reports whether score clears min under the threshold mode.
func (t Threshold) Passes(score, min float64) bool {
	if t == Exclusive {
		return score > min
	}
	return score >= min
}

// SortByScore orders s by score descending, then ID ascending.
func SortByScore[T any](s []T, score func(T) float64, id func(T) int64) {
	slices.SortStableFunc(s, func(a, b T) int {
		if c := cmp.Compare(score(b), score(a)); c != 0 {
			return c
		}
		return cmp.Compare(id(a), id(b))
	})
}

// SortScored orders results by similarity descending, then ID ascending.
func SortScored(results []domain.ScoredResult) {
	SortByScore(results,
		func(r domain.ScoredResult) float64 { return r.Similarity },
		func(r domain.ScoredResult) int64 { return r.ID })
}

// SortHybrid orders results by combined score descending, then ID ascending.
func SortHybrid(results []domain.HybridResult) {
	SortByScore(results,
		func(h domain.HybridResult) float64 { return h.CombinedScore },
		func(h domain.HybridResult) int64 { return h.ID })
}

// TopK truncates s to at most k elements. k <= 0 returns s unchanged.
func TopK[T any](s []T, k int) []T {
	if k <= 0 || len(s) <= k {
		return s
	}
	return s[:k]
}
