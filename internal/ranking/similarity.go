// Package ranking scores and orders retrieval results. Everything here is a
// pure function of its arguments.
package ranking

import "math"

// Cosine returns the cosine similarity of a and b.
//
// A zero-magnitude, empty or length-mismatched pair scores 0 so that ranking
// never fails on a degenerate embedding.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return 0
	}
	// Clamp float drift so identical vectors never exceed 1.
	return math.Max(-1, math.Min(1, sim))
}
