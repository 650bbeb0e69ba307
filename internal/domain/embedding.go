package domain

import (
	"fmt"
	"time"
)

// DefaultEmbeddingDimension is the vector length of the knowledge_embeddings column.
const DefaultEmbeddingDimension = 384

// Embedding is the single vector stored for a knowledge entry. It is never
// updated in place; regeneration deletes and recreates it.
type Embedding struct {
	ID               int64
	KnowledgeEntryID int64
	Vector           []float32
	Model            string
	CreatedAt        time.Time
}

// NewEmbedding creates a new Embedding instance
func NewEmbedding(entryID int64, vector []float32, model string, createdAt time.Time) *Embedding {
	return &Embedding{
		KnowledgeEntryID: entryID,
		Vector:           vector,
		Model:            model,
		CreatedAt:        createdAt,
	}
}

// ValidateEmbedding checks the entry reference and the vector length.
func ValidateEmbedding(e *Embedding, dimension int) error {
	if e == nil {
		return NewDomainError(ErrCodeValidation, "embedding cannot be nil")
	}
	if e.KnowledgeEntryID <= 0 {
		return NewDomainError(ErrCodeValidation, "embedding knowledge_entry_id is required")
	}
	if len(e.Vector) != dimension {
		return ErrInvalidEmbeddingDimension.WithCause(fmt.Errorf("expected %d, got %d", dimension, len(e.Vector)))
	}
	return nil
}

// MissingEmbedding is an entry awaiting backfill.
type MissingEmbedding struct {
	EntryID int64
	Text    string
}

// Candidate is an embedded entry considered during retrieval.
type Candidate struct {
	Entry  *KnowledgeEntry
	Vector []float32
}
