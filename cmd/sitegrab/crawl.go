package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/sitegrab/internal/config"
	"github.com/nao1215/sitegrab/internal/crawler"
	"github.com/nao1215/sitegrab/internal/database"
	"github.com/nao1215/sitegrab/internal/fetcher"
	"github.com/nao1215/sitegrab/internal/imagemeta"
	"github.com/nao1215/sitegrab/internal/log"
	"github.com/nao1215/sitegrab/internal/model"
	"github.com/nao1215/sitegrab/internal/pipeline"
	"github.com/nao1215/sitegrab/internal/report"
	"github.com/nao1215/sitegrab/internal/storage"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url ...]",
		Short: "Crawl a website and save its text and images",
		Long: `Crawl visits a website starting from the seed URL, following links on
every fetched page up to the configured depth.

For each visited page it stores:
- The readable text (paragraphs, headings, list items) as
  data/<host>/text/page_<depth>.txt
- The images referenced by the page under data/<host>/img/

When called without a URL argument, crawl asks for one on standard
input. A page that fails to fetch is logged and skipped; its links are
not followed, and the crawl continues with the remaining pages.

Examples:
  # Crawl a single site
  sitegrab crawl https://example.com

  # Crawl several sites, two at a time
  sitegrab crawl --concurrency 2 site1.example site2.example site3.example

  # Shallow crawl without image downloads
  sitegrab crawl --depth 2 --skip-images https://example.com

  # Inspect downloaded images for EXIF metadata and keep the result
  sitegrab crawl --exif --save https://example.com

  # Write a JSON report to a file
  sitegrab crawl --json -o report.json https://example.com

Configuration file (.sitegrab) example:
  defaults:
    depth: 10
  sites:
    example.com:
      user_agent: "sitegrab/1.0 research crawl"
      headers:
        Cookie: "session=abc123"
    other.example:
      skip_images: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum crawl recursion depth (pages at this depth are not fetched)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request (0 waits indefinitely)")
	cmd.Flags().StringP("user-agent", "u", fetcher.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Int64("max-body-size", fetcher.DefaultMaxBodySize,
		"Maximum page body size in bytes read into memory")
	cmd.Flags().Bool("skip-images", false,
		"Record image URLs without downloading the files")
	cmd.Flags().BoolP("exif", "e", false,
		"Inspect downloaded images for EXIF metadata after the crawl")

	// Storage flags
	cmd.Flags().String("data-dir", storage.DefaultBaseDir,
		"Directory for crawled text and images")

	// Batch crawling flags
	cmd.Flags().IntP("concurrency", "b", config.DefaultBatchSize,
		"Number of seeds crawled concurrently (each crawl stays sequential)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitegrab in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().BoolP("save", "s", false,
		"Save the crawl to the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// No URL on the command line: ask for one on stdin, preserving the
	// tool's interactive entry mode.
	if len(cfg.Seeds) == 0 {
		seed, err := promptSeed(cmd)
		if err != nil {
			return err
		}
		if seed != "" {
			cfg.Seeds = []string{seed}
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	cfg.Verbose = verbose
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// promptSeed asks for a seed URL on the command's input stream and
// returns the entered line with surrounding whitespace removed.
func promptSeed(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Enter the URL to crawl: ")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read seed URL: %w", err)
		}
		return "", nil
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body-size")
	if err != nil {
		return nil, err
	}

	cfg.SkipImages, err = cmd.Flags().GetBool("skip-images")
	if err != nil {
		return nil, err
	}

	cfg.InspectExif, err = cmd.Flags().GetBool("exif")
	if err != nil {
		return nil, err
	}

	cfg.DataDir, err = cmd.Flags().GetString("data-dir")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	// Get positional arguments (seed URLs)
	cfg.Seeds = args

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// String attributes longer than log.MaxAttrLen (URLs, text snippets)
// are truncated before they reach the output.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewLogger(os.Stderr, verbose)
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Seeds) == 0 {
		return errors.New("no seeds provided (specify one or more URLs as arguments)")
	}

	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"maxDepth", cfg.MaxDepth,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// One HTTP client serves every crawl so connections are pooled
	// across seeds. Timeout zero means the client waits indefinitely.
	httpClient := &http.Client{Timeout: cfg.Timeout}

	// Use the batch runner for parallel crawling if multiple seeds
	if len(cfg.Seeds) > 1 && cfg.BatchSize > 1 {
		return runBatchCrawl(ctx, cfg, httpClient, db, logger)
	}

	// Single seed or sequential crawling
	return runSequentialCrawl(ctx, cfg, httpClient, db, logger)
}

// runSequentialCrawl crawls seeds one at a time.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, httpClient *http.Client, db *database.CrawlDB, logger *slog.Logger) error {
	for _, seed := range cfg.Seeds {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Get site-specific configuration
		siteConfig := getSiteConfig(cfg, seed)

		// Create pipeline with site-specific options
		p := createPipelineForSeed(httpClient, logger, cfg, db, siteConfig)

		crawlReport := model.NewCrawlReport(seed)

		fmt.Printf("Crawling %s...\n", seed)
		startTime := time.Now()

		// Execute the pipeline
		if err := p.Execute(ctx, crawlReport); err != nil {
			logger.Error("crawl failed", "seed", seed, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", seed, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Steps that failed without stopping the pipeline leave their
		// error on the report.
		if crawlReport.ErrorMessage != "" {
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %s\n", seed, crawlReport.ErrorMessage)
		}

		// Generate and output report
		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "seed", seed, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple seeds concurrently using BatchRunner.
// The pipeline factory receives each seed, so site-specific settings
// apply in batch mode exactly as they do sequentially.
func runBatchCrawl(ctx context.Context, cfg *config.Config, httpClient *http.Client, db *database.CrawlDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d seeds (concurrency: %d)...\n\n",
		len(cfg.Seeds), cfg.BatchSize)

	startTime := time.Now()

	// Create batch runner with per-seed pipeline factory
	br := pipeline.NewBatchRunner(
		func(seed string) *pipeline.Pipeline {
			return createPipelineForSeed(httpClient, logger, cfg, db, getSiteConfig(cfg, seed))
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := br.RunWithCallback(ctx, cfg.Seeds, func(crawlReport *model.CrawlReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Crawl completed: %s\n", index+1, len(cfg.Seeds), crawlReport.Seed)

		if crawlReport.ErrorMessage != "" {
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %s\n", crawlReport.Seed, crawlReport.ErrorMessage)
		}

		// Generate and output report
		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "seed", crawlReport.Seed, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch crawl completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// getSiteConfig returns the site-specific configuration for a seed.
// Falls back to defaults if no site-specific config exists.
func getSiteConfig(cfg *config.Config, seed string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}

	// Sites are keyed by host. Normalize the seed the same way the
	// crawler does before taking its host component.
	normalized := seed
	if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
		normalized = "http://" + normalized
	}

	u, err := url.Parse(normalized)
	if err != nil || u.Host == "" {
		return cfg.SiteConfigs.Defaults
	}

	return cfg.SiteConfigs.GetSiteConfig(u.Host)
}

// createPipelineForSeed creates a pipeline with the given configuration.
// Site-specific values override the global ones.
func createPipelineForSeed(httpClient *http.Client, logger *slog.Logger, cfg *config.Config, db *database.CrawlDB, siteConfig config.SiteConfig) *pipeline.Pipeline {
	// Determine crawl depth (site-specific overrides global)
	maxDepth := cfg.MaxDepth
	if siteConfig.Depth > 0 {
		maxDepth = siteConfig.Depth
	}

	userAgent := cfg.UserAgent
	if siteConfig.UserAgent != "" {
		userAgent = siteConfig.UserAgent
	}

	skipImages := cfg.SkipImages || siteConfig.SkipImages

	fetchOpts := []fetcher.Option{
		fetcher.WithUserAgent(userAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
	}
	if len(siteConfig.Headers) > 0 {
		fetchOpts = append(fetchOpts, fetcher.WithHeaders(siteConfig.Headers))
	}

	client := fetcher.NewClient(httpClient, fetchOpts...)
	layout := storage.NewLayout(cfg.DataDir)
	scraper := crawler.NewScraper(client, layout,
		crawler.WithMaxDepth(maxDepth),
		crawler.WithSkipImages(skipImages),
		crawler.WithLogger(logger),
	)

	// EXIF inspection runs only when requested
	var inspector *imagemeta.Inspector
	if cfg.InspectExif {
		inspector = imagemeta.NewInspector(imagemeta.WithLogger(logger))
	}

	return pipeline.StandardPipeline(scraper, inspector, db,
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with owner-only permissions
		// (0600); reports quote crawled page text.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		// JSON output carries the tool version for machine consumers
		w = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		// Human-readable report (default)
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	// When the report goes to a file, the terminal still gets a short
	// human-readable summary.
	if cfg.ReportFile != "" {
		w = report.NewMultiWriter(w, report.NewSimpleWriter(os.Stdout))
	}

	_, err := w.Write(crawlReport)
	return err
}
