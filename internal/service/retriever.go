package service

import (
	"context"
	"log/slog"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/ranking"
	"github.com/cloo-solutions/draftwise/internal/telemetry"
)

// CandidateSource lists embedded entries within a scope.
type CandidateSource interface {
	ListCandidates(ctx context.Context, scope domain.Scope) ([]domain.Candidate, error)
}

// RecentEntryLister lists the newest entries within a scope.
type RecentEntryLister interface {
	ListRecent(ctx context.Context, scope domain.Scope, limit int) ([]*domain.KnowledgeEntry, error)
}

// RetrieveInput describes one retrieval.
type RetrieveInput struct {
	Query     string
	Scope     domain.Scope
	TopK      int
	MinScore  float64
	Threshold ranking.Threshold
}

// RetrievedEntry is a full entry with its rounded relevance score.
type RetrievedEntry struct {
	Entry *domain.KnowledgeEntry
	Score float64
}

// Retrieval is the outcome of RetrieveForGeneration.
type Retrieval struct {
	Entries []RetrievedEntry
	// Recency is set when the entries come from the most-recent fallback.
	Recency bool
}

const defaultTopK = 5

// Retriever ranks embedded knowledge entries against a query.
type Retriever struct {
	vectorizer Vectorizer
	candidates CandidateSource
	recent     RecentEntryLister
	logger     *slog.Logger
}

func NewRetriever(vectorizer Vectorizer, candidates CandidateSource, recent RecentEntryLister) *Retriever {
	return &Retriever{
		vectorizer: vectorizer,
		candidates: candidates,
		recent:     recent,
		logger:     slog.Default().With("component", "retriever"),
	}
}

// Retrieve returns the TopK entries whose cosine similarity to the query
// clears MinScore, best first. Entries without an embedding never appear.
func (r *Retriever) Retrieve(ctx context.Context, input RetrieveInput) ([]domain.ScoredResult, error) {
	entries, err := r.rank(ctx, input)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ScoredResult, len(entries))
	for i, e := range entries {
		out[i] = domain.NewScoredResult(e.Entry, e.Score)
	}
	return out, nil
}

// RetrieveForGeneration behaves like Retrieve but never comes back empty
// handed while the scope holds entries: on a vectorizer or store failure, or
// when nothing clears the threshold, it falls back to the most recent
// entries with score 0.
func (r *Retriever) RetrieveForGeneration(ctx context.Context, input RetrieveInput) (*Retrieval, error) {
	entries, err := r.rank(ctx, input)
	if err != nil {
		r.logger.Warn("semantic retrieval failed, using most recent entries", "err", err)
	}
	if err == nil && len(entries) > 0 {
		return &Retrieval{Entries: entries}, nil
	}

	recent, err := r.recent.ListRecent(ctx, input.Scope, topK(input.TopK))
	if err != nil {
		return nil, err
	}

	out := make([]RetrievedEntry, len(recent))
	for i, e := range recent {
		out[i] = RetrievedEntry{Entry: e, Score: 0}
	}
	return &Retrieval{Entries: out, Recency: true}, nil
}

func (r *Retriever) rank(ctx context.Context, input RetrieveInput) ([]RetrievedEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "Retriever.Retrieve", telemetry.SpanAttributes{
		ClientID:  derefID(input.Scope.ClientID),
		Operation: "retrieve",
	})
	defer span.End()

	query, err := r.vectorizer.Embed(ctx, input.Query)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	candidates, err := r.candidates.ListCandidates(ctx, input.Scope)
	if err != nil {
		return nil, err
	}

	scored := make([]RetrievedEntry, 0, len(candidates))
	for _, c := range candidates {
		if !input.Scope.Contains(c.Entry) {
			continue
		}
		// The threshold sees the reported score.
		score := domain.Round4(ranking.Cosine(query, c.Vector))
		if !input.Threshold.Passes(score, input.MinScore) {
			continue
		}
		scored = append(scored, RetrievedEntry{Entry: c.Entry, Score: score})
	}

	ranking.SortByScore(scored,
		func(e RetrievedEntry) float64 { return e.Score },
		func(e RetrievedEntry) int64 { return e.Entry.ID })

	return ranking.TopK(scored, topK(input.TopK)), nil
}

func topK(k int) int {
	if k <= 0 {
		return defaultTopK
	}
	return k
}
