package imagemeta

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/nao1215/sitegrab/internal/model"
)

// Finding categories. Each extracted tag is assigned exactly one.
const (
	// CategoryLocation marks GPS tags that reveal where a photo was taken.
	CategoryLocation = "location"

	// CategoryDevice marks camera, software, and serial number tags.
	CategoryDevice = "device"

	// CategoryAuthor marks artist and copyright tags.
	CategoryAuthor = "author"

	// CategoryTimestamp marks datetime tags.
	CategoryTimestamp = "timestamp"
)

// DefaultMaxFileSize is the largest image file the inspector will read (16MB).
//
// Design decision: The cap exists because:
//  1. EXIF blocks live near the start of a file; huge files add nothing
//  2. ReadFile loads the whole file into memory, and crawls can save many images
//  3. Oversized "images" are usually mislabeled downloads, not photos
const DefaultMaxFileSize = 16 * 1024 * 1024

// Inspector extracts EXIF metadata from image files saved during a crawl.
// EXIF data can contain GPS coordinates, camera identifiers, editing
// software, and timestamps that the publisher may not have meant to share.
type Inspector struct {
	// logger records per-file diagnostics at debug level.
	logger *slog.Logger

	// maxFileSize limits how large a file may be before it is skipped.
	maxFileSize int64

	// exifFormats matches file extensions of formats that carry EXIF.
	exifFormats *regexp.Regexp
}

// Option is a functional option for configuring an Inspector.
type Option func(*Inspector)

// WithLogger sets the logger for per-file diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		i.logger = logger
	}
}

// WithMaxFileSize sets the largest file size the inspector will read.
func WithMaxFileSize(size int64) Option {
	return func(i *Inspector) {
		i.maxFileSize = size
	}
}

// NewInspector creates an Inspector with default settings.
func NewInspector(opts ...Option) *Inspector {
	i := &Inspector{
		logger:      slog.Default(),
		maxFileSize: DefaultMaxFileSize,
		exifFormats: regexp.MustCompile(`(?i)\.(jpe?g|tiff?|heic)$`),
	}

	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inspect reads every image saved during the crawl and returns the EXIF
// findings. Each saved file is inspected once even when several pages
// reference it. Unreadable files and files without EXIF data contribute
// no findings and no error.
func (i *Inspector) Inspect(ctx context.Context, report *model.CrawlReport) ([]model.ImageFinding, error) {
	findings := make([]model.ImageFinding, 0)
	inspected := make(map[string]bool)

	for _, page := range report.Pages {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		for _, path := range page.SavedImages {
			if inspected[path] {
				continue
			}
			inspected[path] = true

			// Only JPEG, TIFF, and HEIC carry EXIF data.
			if !i.exifFormats.MatchString(path) {
				continue
			}

			findings = append(findings, i.InspectFile(path)...)
		}
	}

	return findings, nil
}

// InspectFile extracts EXIF findings from a single image file.
func (i *Inspector) InspectFile(path string) []model.ImageFinding {
	info, err := os.Stat(path)
	if err != nil {
		i.logger.Debug("skipping unreadable image", "path", path, "error", err)
		return nil
	}
	if info.Size() > i.maxFileSize {
		i.logger.Debug("skipping oversized image", "path", path, "size", info.Size())
		return nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // paths come from images this tool saved
	if err != nil {
		i.logger.Debug("skipping unreadable image", "path", path, "error", err)
		return nil
	}

	return i.inspectData(path, data)
}

// inspectData extracts EXIF findings from raw image bytes.
func (i *Inspector) inspectData(path string, data []byte) []model.ImageFinding {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		// Most web images carry no EXIF data. Not an error.
		return nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		i.logger.Debug("failed to parse EXIF data", "path", path, "error", err)
		return nil
	}

	findings := make([]model.ImageFinding, 0, len(entries))
	for _, entry := range entries {
		category, tracked := categorize(entry.TagName)
		if !tracked {
			continue
		}

		findings = append(findings, model.ImageFinding{
			Path:     path,
			Tag:      entry.TagName,
			Value:    entry.Formatted,
			Category: category,
		})
	}
	return findings
}

// categorize maps an EXIF tag name to a finding category.
// Tags outside the tracked categories are dropped.
func categorize(tag string) (string, bool) {
	if strings.HasPrefix(tag, "GPS") {
		return CategoryLocation, true
	}

	switch tag {
	case "Make", "Model", "Software", "ProcessingSoftware", "HostComputer",
		"SerialNumber", "CameraSerialNumber", "BodySerialNumber", "LensSerialNumber":
		return CategoryDevice, true
	case "Artist", "Author", "Copyright", "XPAuthor":
		return CategoryAuthor, true
	case "DateTime", "DateTimeOriginal", "DateTimeDigitized":
		return CategoryTimestamp, true
	}

	return "", false
}
