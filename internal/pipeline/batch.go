package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/sitegrab/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchRunner handles concurrent crawling of multiple seed URLs.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchRunner rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-crawl execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
//
// Each crawl stays single-threaded; concurrency applies across seeds.
type BatchRunner struct {
	// pipelineFactory creates a new pipeline for each crawl. We use a
	// factory so every crawl gets a fresh pipeline, and it receives the
	// seed so per-site configuration can shape the pipeline.
	pipelineFactory func(seed string) *Pipeline

	// concurrency is the maximum number of concurrent crawls.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed crawl reports.
	// Access is synchronized via mutex.
	results []*model.CrawlReport
	mu      sync.Mutex
}

// BatchOption configures a BatchRunner.
type BatchOption func(*BatchRunner)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchRunner) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent crawls.
// Default is 1 (sequential) if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchRunner) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchRunner creates a new BatchRunner.
//
// The pipelineFactory function is called for each seed to create a fresh
// pipeline instance. This ensures that pipeline state doesn't leak between
// crawls and lets per-site configuration pick different depths or headers.
func NewBatchRunner(pipelineFactory func(seed string) *Pipeline, opts ...BatchOption) *BatchRunner {
	br := &BatchRunner{
		pipelineFactory: pipelineFactory,
		concurrency:     1,
		results:         make([]*model.CrawlReport, 0),
	}

	for _, opt := range opts {
		opt(br)
	}

	if br.logger == nil {
		br.logger = slog.Default()
	}

	return br
}

// Run crawls multiple seed URLs, at most 'concurrency' at a time.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each seed gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all reports collected, in seed order, even for crawls that
// failed. The error return indicates if the batch was cancelled.
func (br *BatchRunner) Run(ctx context.Context, seeds []string) ([]*model.CrawlReport, error) {
	br.logger.Info("starting batch crawl",
		"total_seeds", len(seeds),
		"concurrency", br.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	br.results = make([]*model.CrawlReport, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(br.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			br.logger.Info("crawling seed",
				"seed", seed,
				"index", i+1,
				"total", len(seeds),
			)

			// Create report for this seed
			report := model.NewCrawlReport(seed)

			// Create and execute pipeline
			pipeline := br.pipelineFactory(seed)
			err := pipeline.Execute(ctx, report)

			// Store result regardless of error
			// The report contains error information if the crawl failed
			br.mu.Lock()
			br.results[i] = report
			br.mu.Unlock()

			if err != nil {
				br.logger.Warn("crawl failed",
					"seed", seed,
					"error", err,
				)
				// Don't return the error to errgroup - we want the other
				// crawls to continue. The error is recorded in the report.
				return nil
			}

			br.logger.Info("crawl completed",
				"seed", seed,
			)

			return nil
		})
	}

	// Wait for all crawls to complete
	err := g.Wait()

	elapsed := time.Since(startTime)
	br.logger.Info("batch crawl complete",
		"total_seeds", len(seeds),
		"elapsed", elapsed,
	)

	return br.results, err
}

// RunWithCallback crawls multiple seeds and calls a callback for each
// completed crawl. This is useful for streaming results.
//
// The callback receives the report and the index of the seed in the
// original slice. The callback is called from the goroutine that completed
// the crawl, so it should be thread-safe if it accesses shared state.
func (br *BatchRunner) RunWithCallback(
	ctx context.Context,
	seeds []string,
	callback func(report *model.CrawlReport, index int),
) error {
	br.logger.Info("starting batch crawl with callback",
		"total_seeds", len(seeds),
		"concurrency", br.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(br.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := model.NewCrawlReport(seed)
			pipeline := br.pipelineFactory(seed)
			_ = pipeline.Execute(ctx, report) //nolint:errcheck // Error is stored in report

			// Call the callback with the result
			callback(report, i)

			return nil
		})
	}

	return g.Wait()
}
