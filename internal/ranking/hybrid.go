package ranking

import "github.com/cloo-solutions/draftwise/internal/domain"

// Weights balance the semantic and stakeholder-priority signals.
type Weights struct {
	Semantic float64
	Priority float64
}

// DefaultWeights favour the free-text query over the audience signal.
var DefaultWeights = Weights{Semantic: 0.7, Priority: 0.3}

// Combine merges two independently ranked result sets by entry ID.
//
// An entry present on one side only scores 0 on the other. The combined score
// is round(w.Semantic*s + w.Priority*p, 4). Output is ordered by combined
// score descending, ties by ID ascending, and truncated to limit. Inputs are
// not modified.
func Combine(semantic, priority []domain.ScoredResult, w Weights, limit int) []domain.HybridResult {
	merged := make(map[int64]*domain.HybridResult, len(semantic)+len(priority))
	order := make([]int64, 0, len(semantic)+len(priority))

	for _, r := range semantic {
		if _, ok := merged[r.ID]; ok {
			continue
		}
		merged[r.ID] = &domain.HybridResult{ScoredResult: r, SemanticScore: r.Similarity}
		order = append(order, r.ID)
	}

	seenPriority := make(map[int64]struct{}, len(priority))
	for _, r := range priority {
		if _, dup := seenPriority[r.ID]; dup {
			continue
		}
		seenPriority[r.ID] = struct{}{}

		if existing, ok := merged[r.ID]; ok {
			existing.PriorityScore = r.Similarity
			continue
		}
		merged[r.ID] = &domain.HybridResult{ScoredResult: r, PriorityScore: r.Similarity}
		order = append(order, r.ID)
	}

	out := make([]domain.HybridResult, 0, len(order))
	for _, id := range order {
		h := merged[id]
		h.CombinedScore = domain.Round4(w.Semantic*h.SemanticScore + w.Priority*h.PriorityScore)
		out = append(out, *h)
	}

	SortHybrid(out)
	return TopK(out, limit)
}
