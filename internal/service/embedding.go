package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/telemetry"
)

// Vectorizer turns text into unit-norm embeddings.
type Vectorizer interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Model() string
}

// EmbeddingStoreInterface persists at most one embedding per knowledge entry.
type EmbeddingStoreInterface interface {
	HasEmbedding(ctx context.Context, entryID int64) (bool, error)
	Get(ctx context.Context, entryID int64) (*domain.Embedding, error)
	Put(ctx context.Context, e *domain.Embedding) error
	Delete(ctx context.Context, entryID int64) error
	ListMissing(ctx context.Context, clientID *int64, limit int) ([]domain.MissingEmbedding, error)
	ListCandidates(ctx context.Context, scope domain.Scope) ([]domain.Candidate, error)
}

// EntryReader loads a single knowledge entry.
type EntryReader interface {
	GetByID(ctx context.Context, id int64) (*domain.KnowledgeEntry, error)
}

// EmbedResult reports whether a call created the embedding.
type EmbedResult struct {
	EntryID int64 `json:"entry_id"`
	Created bool  `json:"created"`
}

// EmbeddingService embeds knowledge entries on demand.
type EmbeddingService struct {
	vectorizer Vectorizer
	store      EmbeddingStoreInterface
	entries    EntryReader
	logger     *slog.Logger
	now        func() time.Time
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(vectorizer Vectorizer, store EmbeddingStoreInterface, entries EntryReader) *EmbeddingService {
	return &EmbeddingService{
		vectorizer: vectorizer,
		store:      store,
		entries:    entries,
		logger:     slog.Default().With("component", "embedding"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// EmbedEntry computes and stores the embedding for an entry. It is idempotent:
// an entry that already has one is left untouched and Created is false.
func (s *EmbeddingService) EmbedEntry(ctx context.Context, entryID int64) (*EmbedResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "EmbeddingService.EmbedEntry", telemetry.SpanAttributes{
		EntryID:   entryID,
		Operation: "embed",
	})
	defer span.End()

	exists, err := s.store.HasEmbedding(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if exists {
		return &EmbedResult{EntryID: entryID, Created: false}, nil
	}

	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	vector, err := s.vectorizer.Embed(ctx, entry.Content)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	return s.put(ctx, entryID, vector)
}

// Regenerate replaces an entry's embedding, for example after its content changed.
func (s *EmbeddingService) Regenerate(ctx context.Context, entryID int64) (*EmbedResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "EmbeddingService.Regenerate", telemetry.SpanAttributes{
		EntryID:   entryID,
		Operation: "regenerate",
	})
	defer span.End()

	if err := s.store.Delete(ctx, entryID); err != nil && !errors.Is(err, domain.ErrEmbeddingNotFound) {
		return nil, err
	}
	return s.EmbedEntry(ctx, entryID)
}

func (s *EmbeddingService) put(ctx context.Context, entryID int64, vector []float32) (*EmbedResult, error) {
	emb := domain.NewEmbedding(entryID, vector, s.vectorizer.Model(), s.now())
	if err := domain.ValidateEmbedding(emb, s.vectorizer.Dimensions()); err != nil {
		return nil, err
	}

	err := s.store.Put(ctx, emb)
	switch {
	case errors.Is(err, domain.ErrEmbeddingAlreadyExists):
		// A concurrent call won; the stored vector stays.
		return &EmbedResult{EntryID: entryID, Created: false}, nil
	case err != nil:
		return nil, err
	}

	s.logger.Debug("stored embedding", "entry_id", entryID, "model", emb.Model)
	return &EmbedResult{EntryID: entryID, Created: true}, nil
}
