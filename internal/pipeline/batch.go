package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/model"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
)

// DefaultConcurrency is used when WithConcurrency is not given.
const DefaultConcurrency = 4

// BatchProcessor runs a pipeline over many files with bounded concurrency.
type BatchProcessor struct {
	// pipelineFactory creates a pipeline for each file.
	pipelineFactory func() *Pipeline

	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of files processed at once.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs every source through a fresh pipeline. Outcomes are
// returned in the order of sources. A file that fails is recorded as a
// rejection, so the only error is cancellation of ctx.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []string) ([]*model.Outcome, error) {
	outcomes := make([]*model.Outcome, len(sources))
	err := bp.ProcessBatchWithCallback(ctx, sources, func(o *model.Outcome, i int) {
		outcomes[i] = o
	})
	return outcomes, err
}

// ProcessBatchWithCallback runs every source and calls callback with each
// outcome as it completes. callback runs on worker goroutines.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sources []string,
	callback func(o *model.Outcome, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_files", len(sources),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			job := NewJob(source)
			_ = bp.pipelineFactory().Execute(gctx, job) //nolint:errcheck // recorded on the job

			if job.Outcome == nil {
				// A pipeline without a sanitize step accepts nothing.
				job.Reject(sanitizer.Reject(sanitizer.ReasonSanitizerUnavailable, "no sanitize step", nil))
			}
			callback(job.Outcome, i)

			if job.Rejected() {
				bp.logger.Info("file rejected", "file", source, "reason", string(job.Outcome.Reason))
			} else {
				bp.logger.Debug("file accepted", "file", source, "status", string(job.Outcome.Status))
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	bp.logger.Info("batch processing complete",
		"total_files", len(sources),
		"elapsed", time.Since(start),
	)
	return err
}
