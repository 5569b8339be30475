package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout of zero means the HTTP client waits indefinitely for
	// a response. Ordinary web servers answer quickly, and a forced cutoff
	// would turn slow-but-healthy pages into crawl failures. Users who want
	// a bound set one via the --timeout CLI flag.
	DefaultTimeout = 0 * time.Second

	// DefaultMaxDepth of 100 allows thorough exploration of most sites
	// while preventing unbounded descent on link-dense or generated pages.
	// Larger sites may need this increased via the --depth CLI flag.
	DefaultMaxDepth = 100

	// DefaultBatchSize of 1 crawls multiple seed URLs strictly one after
	// another. Each crawl is itself sequential, so anything above 1 only
	// affects how many independent sites are crawled at once.
	DefaultBatchSize = 1

	// AppName is the application name used for XDG directory paths.
	AppName = "sitegrab"
)

// Config holds all configuration options for sitegrab.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Seeds is the list of URLs to crawl. Each seed is crawled
	// independently with its own visited set and its own report.
	// Must contain at least one entry.
	Seeds []string

	// MaxDepth is the maximum recursion depth for web crawling.
	// A page at depth >= MaxDepth is never fetched, so a value of 0
	// visits nothing at all, and 1 fetches only the seed page.
	MaxDepth int

	// DataDir is the directory under which per-site crawl artifacts are
	// stored (text files and images). When empty, "data" in the current
	// directory is used.
	DataDir string

	// UserAgent is the User-Agent header sent with HTTP requests.
	// A descriptive User-Agent helps site operators identify crawler
	// traffic. When empty, the fetcher's built-in default is used.
	UserAgent string

	// Timeout is the per-request timeout for HTTP fetches.
	// Zero means no timeout: the client waits as long as the server takes.
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory
	// exhaustion. Set to 0 to use the fetcher's built-in default.
	MaxBodySize int64

	// SkipImages disables image downloads. Image URLs are still recorded
	// on each page; only the fetch-and-store step is skipped.
	SkipImages bool

	// InspectExif enables EXIF inspection of downloaded images after the
	// crawl completes. Findings (location, device, author, timestamps)
	// are attached to the crawl report.
	InspectExif bool

	// BatchSize is the number of seeds crawled concurrently when multiple
	// seed URLs are given. Each crawl remains internally sequential.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// SaveToDB indicates whether to save crawl results to the history
	// database. The database is written only after a crawl completes and
	// is never read during traversal.
	SaveToDB bool

	// DBDir is the directory path for storing the SQLite history database.
	// Defaults to the XDG data directory (~/.local/share/sitegrab on Linux).
	DBDir string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .sitegrab in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-host configurations loaded from the config file.
	// This is populated by LoadConfigFile and consulted per seed.
	SiteConfigs *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because some defaults are non-zero (depth, batch size).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:   DefaultTimeout,
		MaxDepth:  DefaultMaxDepth,
		BatchSize: DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for sitegrab.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/sitegrab
// On macOS: ~/Library/Application Support/sitegrab
// On Windows: %LOCALAPPDATA%\sitegrab
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one seed to crawl
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}

	// Depth may be zero (crawl nothing) but never negative
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	// Timeout may be zero (no timeout) but never negative
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	// BatchSize must be positive; zero would mean no crawling
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// MaxBodySize must be non-negative; zero means the built-in default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
