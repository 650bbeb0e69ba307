package domain

import (
	"math"
	"time"
	"unicode/utf8"
)

// PreviewMaxChars bounds the content preview returned with search results.
const PreviewMaxChars = 500

// ScoredResult is one ranked knowledge entry. It is computed per request.
type ScoredResult struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	EntryType   EntryType  `json:"entry_type"`
	MeetingDate *time.Time `json:"meeting_date,omitempty"`
	ClientID    int64      `json:"client_id"`
	Similarity  float64    `json:"similarity"`
}

// HybridResult carries both relevance signals and their weighted combination.
type HybridResult struct {
	ScoredResult
	SemanticScore float64 `json:"semantic_score"`
	PriorityScore float64 `json:"priority_score"`
	CombinedScore float64 `json:"combined_score"`
}

// NewScoredResult builds a result with a truncated preview and a rounded score.
func NewScoredResult(k *KnowledgeEntry, score float64) ScoredResult {
	return ScoredResult{
		ID:          k.ID,
		Title:       k.Title,
		Content:     Preview(k.Content, PreviewMaxChars),
		EntryType:   k.Type,
		MeetingDate: k.MeetingDate,
		ClientID:    k.ClientID,
		Similarity:  Round4(score),
	}
}

// Preview truncates s to max runes, appending "..." when it was cut.
func Preview(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// Round4 rounds to four decimal places, half away from zero.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
