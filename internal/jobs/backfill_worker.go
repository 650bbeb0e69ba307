package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloo-solutions/draftwise/internal/service"
)

// BackfillRunner embeds entries that are still missing a vector.
type BackfillRunner interface {
	Run(ctx context.Context, input service.BackfillInput) (*service.BackfillResult, error)
}

// BackfillProcessor runs one backfill pass per tick.
type BackfillProcessor struct {
	runner BackfillRunner
	limit  int
	logger *slog.Logger
}

// NewBackfillProcessor creates a processor that embeds at most limit entries per pass.
func NewBackfillProcessor(runner BackfillRunner, limit int, logger *slog.Logger) *BackfillProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackfillProcessor{
		runner: runner,
		limit:  limit,
		logger: logger.With("component", "backfill_worker"),
	}
}

// Process implements Processor.
func (p *BackfillProcessor) Process(ctx context.Context) error {
	result, err := p.runner.Run(ctx, service.BackfillInput{Limit: p.limit})
	if err != nil {
		return fmt.Errorf("backfill pass failed: %w", err)
	}

	if result.Embedded+result.Failed > 0 {
		p.logger.Info("backfill pass",
			"embedded", result.Embedded,
			"failed", result.Failed,
			"skipped", result.Skipped)
	}
	return nil
}
