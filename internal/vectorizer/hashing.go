package vectorizer

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
)

// HashingBackend is a deterministic, dependency-free embedder based on
// signed feature hashing of unigrams and bigrams. It needs no model download
// and backs tests and demo deployments.
type HashingBackend struct {
	dimensions   int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewHashingBackend creates a HashingBackend producing vectors of length dims.
func NewHashingBackend(dims int) *HashingBackend {
	return &HashingBackend{
		dimensions:   dims,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`),
		stopwords:    defaultStopwords(),
	}
}

// ModelName implements Backend.
func (h *HashingBackend) ModelName() string {
	return fmt.Sprintf("hashing-v1-%d", h.dimensions)
}

// EmbedDocuments implements Backend.
func (h *HashingBackend) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.embed(text)
	}
	return out, nil
}

const bigramWeight = 0.5

func (h *HashingBackend) embed(text string) []float32 {
	vec := make([]float32, h.dimensions)
	tokens := h.tokenize(text)

	for i, tok := range tokens {
		h.add(vec, tok, 1)
		if i > 0 {
			h.add(vec, tokens[i-1]+" "+tok, bigramWeight)
		}
	}
	return vec
}

func (h *HashingBackend) add(vec []float32, feature string, weight float32) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(feature))
	sum := hasher.Sum64()

	idx := int(sum % uint64(h.dimensions))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

func (h *HashingBackend) tokenize(text string) []string {
	raw := h.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := h.stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into",
		"about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "should", "now", "we", "our", "you", "your", "they",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
