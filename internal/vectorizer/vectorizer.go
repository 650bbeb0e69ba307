// Package vectorizer turns text into fixed-length, unit-norm embeddings.
package vectorizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/cloo-solutions/draftwise/internal/domain"
)

// Backend produces raw embeddings for a batch of non-blank texts.
// Output[i] must depend on texts[i] only.
type Backend interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

// Vectorizer wraps a Backend with dimension checks, normalisation and the
// blank-input policy. It is constructed once and is safe for concurrent use.
type Vectorizer struct {
	backend    Backend
	dimensions int
	blank      []float32
	logger     *slog.Logger
}

// Option configures a Vectorizer.
type Option func(*Vectorizer)

// WithDimensions overrides the expected vector length.
func WithDimensions(n int) Option {
	return func(v *Vectorizer) {
		if n > 0 {
			v.dimensions = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vectorizer) {
		if logger != nil {
			v.logger = logger
		}
	}
}

const probeText = "vectorizer readiness probe"

// New builds a Vectorizer and probes the backend once. Any failure, including
// a probe vector of the wrong length, is reported as domain.ErrModelUnavailable.
func New(ctx context.Context, backend Backend, opts ...Option) (*Vectorizer, error) {
	if backend == nil {
		return nil, domain.ErrModelUnavailable.WithCause(errors.New("no embedding backend configured"))
	}

	v := &Vectorizer{
		backend:    backend,
		dimensions: domain.DefaultEmbeddingDimension,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("component", "vectorizer", "model", backend.ModelName())
	v.blank = uniformVector(v.dimensions)

	if _, err := v.Embed(ctx, probeText); err != nil {
		return nil, domain.ErrModelUnavailable.WithCause(err)
	}

	v.logger.Info("embedding model ready", "dimensions", v.dimensions)
	return v, nil
}

// Dimensions returns the vector length every embedding has.
func (v *Vectorizer) Dimensions() int { return v.dimensions }

// Model identifies the backend model, recorded alongside stored embeddings.
func (v *Vectorizer) Model() string { return v.backend.ModelName() }

// Embed returns the embedding for a single text. Blank text yields the
// zero-information vector rather than an error.
func (v *Vectorizer) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := v.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedMany embeds each text independently; out[i] equals Embed(texts[i]).
func (v *Vectorizer) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	pending := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			out[i] = v.Blank()
			continue
		}
		pending = append(pending, text)
		positions = append(positions, i)
	}

	if len(pending) == 0 {
		return out, nil
	}

	raw, err := v.backend.EmbedDocuments(ctx, pending)
	if err != nil {
		v.logger.Error("failed to generate embeddings", "count", len(pending), "err", err)
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(raw) != len(pending) {
		return nil, fmt.Errorf("backend returned %d embeddings for %d texts", len(raw), len(pending))
	}

	for j, vec := range raw {
		if len(vec) != v.dimensions {
			return nil, domain.ErrInvalidEmbeddingDimension.WithCause(
				fmt.Errorf("expected %d, got %d", v.dimensions, len(vec)))
		}
		out[positions[j]] = v.normalize(vec)
	}

	return out, nil
}

// Blank returns a copy of the zero-information vector.
func (v *Vectorizer) Blank() []float32 {
	return append([]float32(nil), v.blank...)
}

// normalize scales vec to unit length. A zero vector carries no information
// and is replaced by the blank vector so self-similarity stays 1.
func (v *Vectorizer) normalize(vec []float32) []float32 {
	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return v.Blank()
	}

	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, x := range vec {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func uniformVector(n int) []float32 {
	out := make([]float32, n)
	c := float32(1 / math.Sqrt(float64(n)))
	for i := range out {
		out[i] = c
	}
	return out
}
