package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/sitegrab/internal/crawler"
	"github.com/nao1215/sitegrab/internal/database"
	"github.com/nao1215/sitegrab/internal/imagemeta"
	"github.com/nao1215/sitegrab/internal/model"
)

// CrawlStep runs the crawl itself: recursive descent from the seed,
// text extraction, and image downloads.
//
// Design decision: The step wraps a fully-built Scraper rather than
// constructing one because:
// 1. The scraper's client and layout depend on CLI and site configuration
// 2. Construction at the call site keeps this step free of config plumbing
// 3. Tests can inject a scraper pointed at a test server
type CrawlStep struct {
	// scraper performs the actual traversal.
	scraper *crawler.Scraper

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawl step around the given scraper.
func NewCrawlStep(scraper *crawler.Scraper, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		scraper: scraper,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step. The scraper owns its report, so the
// result is swapped into the report the pipeline carries, keeping the
// bookkeeping earlier steps may have written.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	result, err := s.scraper.Run(ctx, report.Seed)
	if result != nil {
		result.StepsRun = report.StepsRun
		result.ErrorMessage = report.ErrorMessage
		*report = *result
	}
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	s.logger.Info("crawl completed",
		"seed", report.Seed,
		"pages", report.PageCount(),
		"failures", report.FailedCount(),
		"images_saved", report.ImagesSaved,
	)

	return nil
}

// ExifStep inspects saved images for EXIF metadata and records the
// findings in the report.
//
// Design decision: EXIF inspection is a separate step because:
// 1. It operates on files the crawl already wrote
// 2. It's opt-in; most crawls don't need it
// 3. Its failures must never affect the crawl result
type ExifStep struct {
	// inspector extracts EXIF findings from saved images.
	inspector *imagemeta.Inspector

	// logger for structured logging.
	logger *slog.Logger
}

// ExifStepOption configures an ExifStep.
type ExifStepOption func(*ExifStep)

// WithExifInspector provides a preconfigured inspector.
func WithExifInspector(inspector *imagemeta.Inspector) ExifStepOption {
	return func(s *ExifStep) {
		s.inspector = inspector
	}
}

// WithExifLogger sets a custom logger for the EXIF step.
func WithExifLogger(logger *slog.Logger) ExifStepOption {
	return func(s *ExifStep) {
		s.logger = logger
	}
}

// NewExifStep creates a new EXIF inspection step.
func NewExifStep(opts ...ExifStepOption) *ExifStep {
	s := &ExifStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.inspector == nil {
		s.inspector = imagemeta.NewInspector(imagemeta.WithLogger(s.logger))
	}

	return s
}

// Name returns the step name.
func (s *ExifStep) Name() string {
	return "exif"
}

// Do executes the EXIF inspection step. Findings gathered before a
// cancellation still land in the report.
func (s *ExifStep) Do(ctx context.Context, report *model.CrawlReport) error {
	if report.ImagesSaved == 0 {
		s.logger.Debug("skipping EXIF inspection, no images saved")
		return nil
	}

	findings, err := s.inspector.Inspect(ctx, report)
	report.ImageFindings = append(report.ImageFindings, findings...)
	if err != nil {
		return err
	}

	s.logger.Info("EXIF inspection completed",
		"images_saved", report.ImagesSaved,
		"findings", len(findings),
	)

	return nil
}

// SaveStep persists the finished report to the history database.
//
// Design decision: Persistence is a pipeline step rather than CLI code
// because:
// 1. Batch crawls save each report as its crawl finishes
// 2. The step sees the report after EXIF findings are attached
// 3. The database handle is shared; the step serializes nothing itself
type SaveStep struct {
	// db is the opened history database.
	db *database.CrawlDB

	// logger for structured logging.
	logger *slog.Logger
}

// SaveStepOption configures a SaveStep.
type SaveStepOption func(*SaveStep)

// WithSaveLogger sets a custom logger for the save step.
func WithSaveLogger(logger *slog.Logger) SaveStepOption {
	return func(s *SaveStep) {
		s.logger = logger
	}
}

// NewSaveStep creates a new history persistence step.
// The database must already be open; the step does not close it.
func NewSaveStep(db *database.CrawlDB, opts ...SaveStepOption) *SaveStep {
	s := &SaveStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do executes the save step.
func (s *SaveStep) Do(ctx context.Context, report *model.CrawlReport) error {
	id, err := s.db.SaveCrawl(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to save crawl history: %w", err)
	}

	s.logger.Info("crawl saved to history",
		"id", id,
		"seed", report.Seed,
	)

	return nil
}

// StandardPipeline creates a pipeline with the usual steps: the crawl,
// EXIF inspection when an inspector is provided, and history persistence
// when a database is provided.
//
// Design decision: We provide a standard pipeline because:
// 1. Most crawls want the same step ordering
// 2. Reduces boilerplate in the CLI
// 3. Optional steps stay optional without conditionals at call sites
func StandardPipeline(scraper *crawler.Scraper, inspector *imagemeta.Inspector, db *database.CrawlDB, opts ...Option) *Pipeline {
	p := New(opts...)

	p.AddStep(NewCrawlStep(scraper, WithCrawlLogger(p.logger)))
	if inspector != nil {
		p.AddStep(NewExifStep(
			WithExifInspector(inspector),
			WithExifLogger(p.logger),
		))
	}
	if db != nil {
		p.AddStep(NewSaveStep(db, WithSaveLogger(p.logger)))
	}

	return p
}
