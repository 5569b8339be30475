package storage

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Layout constants.
const (
	// DefaultBaseDir is the top-level directory crawl artifacts are
	// written under when no data directory is configured.
	DefaultBaseDir = "data"

	// textDirName holds the per-depth text files of a site.
	textDirName = "text"

	// imageDirName holds the downloaded images of a site.
	imageDirName = "img"

	// dirPerm is the permission for created directories.
	// Owner and group only; crawl output may contain scraped content
	// that should not be world-readable by default.
	dirPerm = 0750

	// filePerm is the permission for created files.
	filePerm = 0600
)

// unsafeFilenameChars matches every character that may not appear in a
// stored image filename. Letters, digits, underscore, and period are
// kept; everything else becomes an underscore.
var unsafeFilenameChars = regexp.MustCompile(`[^\w.]`)

// Layout resolves URLs and depths to on-disk paths and performs all
// filesystem writes for a crawl.
type Layout struct {
	// baseDir is the top-level data directory.
	baseDir string
}

// NewLayout creates a Layout rooted at baseDir. An empty baseDir falls
// back to DefaultBaseDir.
func NewLayout(baseDir string) *Layout {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	return &Layout{baseDir: baseDir}
}

// SiteRoot derives the site directory for the given URL and creates it
// if absent. The directory name is the URL's host with every dot
// replaced by an underscore, so "example.com" maps to
// "<base>/example_com". Creation is idempotent.
func (l *Layout) SiteRoot(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse site URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %s", ErrNoHost, rawURL)
	}

	dir := filepath.Join(l.baseDir, strings.ReplaceAll(u.Host, ".", "_"))
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create site root: %w", err)
	}
	return dir, nil
}

// PagePaths returns the text file path and image directory for one page,
// creating the text and img subdirectories if absent. The text filename
// is keyed by crawl depth: page_<depth>.txt.
func (l *Layout) PagePaths(siteRoot string, depth int) (textFile, imageDir string, err error) {
	textDir := filepath.Join(siteRoot, textDirName)
	if err := os.MkdirAll(textDir, dirPerm); err != nil {
		return "", "", fmt.Errorf("failed to create text directory: %w", err)
	}

	imageDir = filepath.Join(siteRoot, imageDirName)
	if err := os.MkdirAll(imageDir, dirPerm); err != nil {
		return "", "", fmt.Errorf("failed to create image directory: %w", err)
	}

	textFile = filepath.Join(textDir, fmt.Sprintf("page_%d.txt", depth))
	return textFile, imageDir, nil
}

// WriteText writes a page's extracted text as UTF-8, truncating any
// existing file at the path.
func WriteText(path, content string) error {
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		return fmt.Errorf("failed to write text file: %w", err)
	}
	return nil
}

// WriteStream streams binary content to the path, truncating any
// existing file. It returns the number of bytes written.
func WriteStream(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}
	return n, nil
}

// ImagePath returns the destination path for an image URL inside dir.
// The filename is the URL's final path segment, query stripped, with
// every character outside [0-9A-Za-z_.] replaced by an underscore:
// "photo name?v=2.jpg" stores as "photo_name.jpg".
func ImagePath(dir, rawURL string) (string, error) {
	name := SanitizeFilename(rawURL)
	if name == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyFilename, rawURL)
	}
	return filepath.Join(dir, name), nil
}

// SanitizeFilename derives a safe filename from an image URL: the query
// (everything from the first '?') is stripped, the final slash-separated
// segment is taken, and unsafe characters are replaced by underscores.
// Returns "" when the URL ends in a slash or has no path segment.
func SanitizeFilename(rawURL string) string {
	trimmed, _, _ := strings.Cut(rawURL, "?")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return unsafeFilenameChars.ReplaceAllString(trimmed, "_")
}
