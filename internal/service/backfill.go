package service

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/telemetry"
	"github.com/panjf2000/ants/v2"
)

const (
	// MaxEmbedRetries is how many failed runs an entry gets before backfill skips it.
	MaxEmbedRetries     = 3
	defaultBackfillSize = 500
	defaultBatchSize    = 32
)

// BackfillInput selects which unembedded entries to process.
type BackfillInput struct {
	ClientID *int64
	Limit    int
}

// BackfillResult summarises one backfill run.
type BackfillResult struct {
	Embedded int `json:"embedded"`
	Existing int `json:"existing"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// Backfiller embeds entries that have no embedding yet, in batches on a
// bounded worker pool. Entries that keep failing are skipped after
// MaxEmbedRetries runs.
type Backfiller struct {
	vectorizer Vectorizer
	store      EmbeddingStoreInterface
	pool       *ants.Pool
	batchSize  int
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	failures map[int64]int
}

// BackfillOption configures a Backfiller.
type BackfillOption func(*Backfiller) error

// WithBackfillWorkers sets the worker pool size. Default is runtime.NumCPU() / 2.
func WithBackfillWorkers(size int) BackfillOption {
	return func(b *Backfiller) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if b.pool != nil {
			b.pool.Release()
		}
		b.pool = pool
		return nil
	}
}

// WithBatchSize sets how many texts go to the vectorizer per call.
func WithBatchSize(n int) BackfillOption {
	return func(b *Backfiller) error {
		if n > 0 {
			b.batchSize = n
		}
		return nil
	}
}

// WithBackfillLogger sets a custom logger.
func WithBackfillLogger(logger *slog.Logger) BackfillOption {
	return func(b *Backfiller) error {
		if logger != nil {
			b.logger = logger
		}
		return nil
	}
}

// NewBackfiller creates a Backfiller. Call Release when done.
func NewBackfiller(vectorizer Vectorizer, store EmbeddingStoreInterface, opts ...BackfillOption) (*Backfiller, error) {
	size := runtime.NumCPU() / 2
	if size < 1 {
		size = 1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}

	b := &Backfiller{
		vectorizer: vectorizer,
		store:      store,
		pool:       pool,
		batchSize:  defaultBatchSize,
		logger:     slog.Default().With("component", "backfill"),
		now:        func() time.Time { return time.Now().UTC() },
		failures:   make(map[int64]int),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			b.Release()
			return nil, err
		}
	}
	return b, nil
}

// Release stops the worker pool.
func (b *Backfiller) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}

// Run embeds up to input.Limit missing entries and waits for completion.
func (b *Backfiller) Run(ctx context.Context, input BackfillInput) (*BackfillResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "Backfiller.Run", telemetry.SpanAttributes{
		ClientID:  derefID(input.ClientID),
		Operation: "backfill",
	})
	defer span.End()

	limit := input.Limit
	if limit <= 0 {
		limit = defaultBackfillSize
	}

	// Over-fetch by the number of exhausted entries so they cannot starve the rest.
	missing, err := b.store.ListMissing(ctx, input.ClientID, limit+b.exhaustedCount())
	if err != nil {
		return nil, err
	}

	result := &BackfillResult{}
	work := make([]domain.MissingEmbedding, 0, len(missing))
	for _, m := range missing {
		if b.exhausted(m.EntryID) {
			result.Skipped++
			continue
		}
		if len(work) < limit {
			work = append(work, m)
		}
	}

	if len(work) == 0 {
		return result, nil
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sub error
	)
	for start := 0; start < len(work); start += b.batchSize {
		batch := work[start:min(start+b.batchSize, len(work))]
		wg.Add(1)
		err := b.pool.Submit(func() {
			defer wg.Done()
			embedded, existing, failed := b.processBatch(ctx, batch)
			mu.Lock()
			result.Embedded += embedded
			result.Existing += existing
			result.Failed += failed
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			sub = err
			break
		}
	}
	wg.Wait()

	if sub != nil {
		span.SetError(sub)
		return result, sub
	}

	span.SetCount("embedded", result.Embedded)
	span.SetCount("failed", result.Failed)
	b.logger.Info("backfill finished",
		"embedded", result.Embedded,
		"existing", result.Existing,
		"failed", result.Failed,
		"skipped", result.Skipped)
	return result, nil
}

func (b *Backfiller) processBatch(ctx context.Context, batch []domain.MissingEmbedding) (embedded, existing, failed int) {
	texts := make([]string, len(batch))
	for i, m := range batch {
		texts[i] = m.Text
	}

	vectors, err := b.vectorizer.EmbedMany(ctx, texts)
	if err != nil {
		b.logger.Error("batch embedding failed", "size", len(batch), "err", err)
		vectors = b.embedEach(ctx, batch, err)
	}

	for i, m := range batch {
		if vectors[i] == nil {
			b.recordFailure(m.EntryID)
			failed++
			continue
		}

		emb := domain.NewEmbedding(m.EntryID, vectors[i], b.vectorizer.Model(), b.now())
		err := domain.ValidateEmbedding(emb, b.vectorizer.Dimensions())
		if err == nil {
			err = b.store.Put(ctx, emb)
		}

		switch {
		case err == nil:
			embedded++
			b.clearFailure(m.EntryID)
		case errors.Is(err, domain.ErrEmbeddingAlreadyExists):
			existing++
		case errors.Is(err, domain.ErrKnowledgeEntryNotFound):
			// Deleted since listing.
			existing++
		default:
			b.logger.Warn("failed to store embedding", "entry_id", m.EntryID, "err", err)
			b.recordFailure(m.EntryID)
			failed++
		}
	}
	return embedded, existing, failed
}

// embedEach retries a failed batch one text at a time so a single bad entry
// only fails itself. Entries that still fail get a nil vector.
func (b *Backfiller) embedEach(ctx context.Context, batch []domain.MissingEmbedding, batchErr error) [][]float32 {
	vectors := make([][]float32, len(batch))
	if len(batch) == 1 || ctx.Err() != nil {
		return vectors
	}

	for i, m := range batch {
		v, err := b.vectorizer.Embed(ctx, m.Text)
		if err != nil {
			b.logger.Warn("entry embedding failed", "entry_id", m.EntryID, "err", err, "batch_err", batchErr)
			continue
		}
		vectors[i] = v
	}
	return vectors
}

func (b *Backfiller) recordFailure(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[id]++
}

func (b *Backfiller) clearFailure(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, id)
}

func (b *Backfiller) exhausted(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures[id] >= MaxEmbedRetries
}

func (b *Backfiller) exhaustedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.failures {
		if c >= MaxEmbedRetries {
			n++
		}
	}
	return n
}
