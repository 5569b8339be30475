package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitegrab/internal/model"
)

// DBFileName is the SQLite database file name inside the database directory.
const DBFileName = "sitegrab.db"

// sqliteTimeFormat is the format used to store timestamps.
// It matches SQLite's default datetime rendering so values written by us
// and values produced by CURRENT_TIMESTAMP parse the same way.
const sqliteTimeFormat = "2006-01-02 15:04:05"

// CrawlDB provides SQLite-based storage for crawl history.
// It manages connection pooling and provides methods for saving and
// listing completed crawls.
//
// Design decision: We use a single database file for all crawls rather
// than one file per site. This keeps history queries across sites simple
// and makes backup/restore a single-file operation.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// closed reports whether Close has been called. Close must only be
	// called after all operations have finished.
	closed bool
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		// Check if database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// and a single connection sidesteps table-lock contention between
	// concurrent crawl saves.
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Wait for competing writers instead of failing immediately with
	// SQLITE_BUSY when several crawls finish at once.
	if _, err := db.ExecContext(context.Background(), "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Create tables
	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
// Any operation after Close returns ErrClosed.
func (cdb *CrawlDB) Close() error {
	cdb.closed = true
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Crawl records store one row per completed crawl
	CREATE TABLE IF NOT EXISTS crawls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		host TEXT NOT NULL,
		site_root TEXT NOT NULL,
		max_depth INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		page_count INTEGER NOT NULL,
		failed_count INTEGER NOT NULL,
		images_saved INTEGER NOT NULL,
		images_failed INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_seed ON crawls(seed);
	CREATE INDEX IF NOT EXISTS idx_crawls_started ON crawls(started_at);

	-- Page records store one row per visited page, in visit order
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		crawl_id INTEGER NOT NULL REFERENCES crawls(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		content_type TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		text_file TEXT NOT NULL DEFAULT '',
		image_count INTEGER NOT NULL DEFAULT 0,
		images_saved INTEGER NOT NULL DEFAULT 0,
		images_failed INTEGER NOT NULL DEFAULT 0,
		fetch_error TEXT NOT NULL DEFAULT '',
		fetched_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_crawl ON pages(crawl_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// CrawlSummary contains summary information about a stored crawl.
// This is used for displaying crawl history without loading the full report.
type CrawlSummary struct {
	// ID is the unique identifier of the crawl in the database.
	ID int64 `json:"id"`

	// Seed is the URL the crawl started from.
	Seed string `json:"seed"`

	// Host is the seed's host component.
	Host string `json:"host"`

	// MaxDepth is the depth bound the crawl ran with.
	MaxDepth int `json:"max_depth"`

	// StartedAt and FinishedAt bound the crawl duration.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// PageCount is the number of pages visited.
	PageCount int `json:"page_count"`

	// FailedCount is the number of pages whose fetch failed.
	FailedCount int `json:"failed_count"`

	// ImagesSaved and ImagesFailed count image downloads across all pages.
	ImagesSaved  int `json:"images_saved"`
	ImagesFailed int `json:"images_failed"`
}

// PageRecord represents a stored page row.
type PageRecord struct {
	ID           int64     `json:"id"`
	CrawlID      int64     `json:"crawl_id"`
	URL          string    `json:"url"`
	Depth        int       `json:"depth"`
	StatusCode   int       `json:"status_code"`
	ContentType  string    `json:"content_type"`
	Title        string    `json:"title"`
	TextFile     string    `json:"text_file"`
	ImageCount   int       `json:"image_count"`
	ImagesSaved  int       `json:"images_saved"`
	ImagesFailed int       `json:"images_failed"`
	FetchError   string    `json:"fetch_error,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// SaveCrawl stores a completed crawl report: one crawls row plus one
// pages row per visited page, all in a single transaction.
// It returns the database ID of the new crawl.
func (cdb *CrawlDB) SaveCrawl(ctx context.Context, report *model.CrawlReport) (int64, error) {
	if cdb.closed {
		return 0, ErrClosed
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx, `
	INSERT INTO crawls (seed, host, site_root, max_depth, started_at, finished_at,
		page_count, failed_count, images_saved, images_failed, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.Seed,
		report.Host,
		report.SiteRoot,
		report.MaxDepth,
		report.StartedAt.UTC().Format(sqliteTimeFormat),
		report.FinishedAt.UTC().Format(sqliteTimeFormat),
		report.PageCount(),
		report.FailedCount(),
		report.ImagesSaved,
		report.ImagesFailed,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl: %w", err)
	}

	crawlID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get crawl id: %w", err)
	}

	for _, page := range report.Pages {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO pages (crawl_id, url, depth, status_code, content_type, title,
			text_file, image_count, images_saved, images_failed, fetch_error, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			crawlID,
			page.URL,
			page.Depth,
			page.StatusCode,
			page.ContentType,
			page.Title,
			page.TextFile,
			len(page.Images),
			len(page.SavedImages),
			page.ImagesFailed,
			page.FetchError,
			page.FetchedAt.UTC().Format(sqliteTimeFormat),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert page %s: %w", page.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit crawl: %w", err)
	}

	return crawlID, nil
}

// ListCrawls returns stored crawl summaries, newest first.
// When seed is non-empty, only crawls of that seed are returned.
// When limit is positive, at most limit rows are returned.
func (cdb *CrawlDB) ListCrawls(ctx context.Context, seed string, limit int) ([]CrawlSummary, error) {
	if cdb.closed {
		return nil, ErrClosed
	}

	query := `
	SELECT id, seed, host, max_depth, started_at, finished_at,
		page_count, failed_count, images_saved, images_failed
	FROM crawls
	WHERE 1=1
	`
	args := make([]any, 0, 2)

	if seed != "" {
		query += " AND seed = ?"
		args = append(args, seed)
	}

	query += " ORDER BY started_at DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawls: %w", err)
	}
	defer rows.Close()

	var results []CrawlSummary
	for rows.Next() {
		var summary CrawlSummary
		var startedAt, finishedAt string

		err := rows.Scan(
			&summary.ID,
			&summary.Seed,
			&summary.Host,
			&summary.MaxDepth,
			&startedAt,
			&finishedAt,
			&summary.PageCount,
			&summary.FailedCount,
			&summary.ImagesSaved,
			&summary.ImagesFailed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crawl summary: %w", err)
		}

		summary.StartedAt = parseTimestamp(startedAt)
		summary.FinishedAt = parseTimestamp(finishedAt)
		results = append(results, summary)
	}

	return results, rows.Err()
}

// GetCrawlReport retrieves a full stored crawl report by its database ID.
// It returns nil without error when no crawl has that ID.
func (cdb *CrawlDB) GetCrawlReport(ctx context.Context, id int64) (*model.CrawlReport, error) {
	if cdb.closed {
		return nil, ErrClosed
	}

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, `SELECT report_json FROM crawls WHERE id = ?`, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListPages returns the stored page rows of one crawl in visit order.
func (cdb *CrawlDB) ListPages(ctx context.Context, crawlID int64) ([]PageRecord, error) {
	if cdb.closed {
		return nil, ErrClosed
	}

	rows, err := cdb.db.QueryContext(ctx, `
	SELECT id, crawl_id, url, depth, status_code, content_type, title,
		text_file, image_count, images_saved, images_failed, fetch_error, fetched_at
	FROM pages
	WHERE crawl_id = ?
	ORDER BY id
	`, crawlID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var results []PageRecord
	for rows.Next() {
		var record PageRecord
		var fetchedAt string

		err := rows.Scan(
			&record.ID,
			&record.CrawlID,
			&record.URL,
			&record.Depth,
			&record.StatusCode,
			&record.ContentType,
			&record.Title,
			&record.TextFile,
			&record.ImageCount,
			&record.ImagesSaved,
			&record.ImagesFailed,
			&record.FetchError,
			&fetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page record: %w", err)
		}

		record.FetchedAt = parseTimestamp(fetchedAt)
		results = append(results, record)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
