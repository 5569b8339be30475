package model

import "time"

// CrawlReport is the result of one complete crawl: the seed, the on-disk
// site root, one record per visited page, and aggregate counters.
//
// Design decision: The crawler returns a report value rather than mutating
// shared state because:
//  1. Each crawl owns its report; concurrent crawls cannot interfere
//  2. Report writers and the history database consume a finished value
//  3. Outcomes stay visible and testable instead of living in logs only
type CrawlReport struct {
	// Seed is the URL the crawl started from.
	Seed string `json:"seed"`

	// Host is the seed's host component.
	Host string `json:"host"`

	// SiteRoot is the directory all artifacts were written under.
	SiteRoot string `json:"site_root"`

	// MaxDepth is the configured depth bound the crawl ran with.
	MaxDepth int `json:"max_depth"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the crawl ended. Zero while running.
	FinishedAt time.Time `json:"finished_at"`

	// Pages holds one record per visited URL, in visit order.
	Pages []*Page `json:"pages"`

	// ImagesSaved counts image downloads that reached disk,
	// across all pages.
	ImagesSaved int `json:"images_saved"`

	// ImagesFailed counts image downloads that failed, across all pages.
	ImagesFailed int `json:"images_failed"`

	// ImageFindings holds EXIF metadata extracted from saved images.
	// Populated only when image inspection is enabled.
	ImageFindings []ImageFinding `json:"image_findings,omitempty"`

	// StepsRun lists the pipeline steps that executed, in order.
	StepsRun []string `json:"steps_run,omitempty"`

	// ErrorMessage holds the last pipeline step error, when one failed.
	// Page-level fetch failures live on the pages, not here.
	ErrorMessage string `json:"error_message,omitempty"`
}

// ImageFinding is one EXIF metadata hit on a downloaded image. Camera
// serial numbers, GPS coordinates, and author tags survive in images more
// often than site owners expect, so findings are worth surfacing in
// reports.
type ImageFinding struct {
	// Path is the on-disk path of the image the tag was found in.
	Path string `json:"path"`

	// Tag is the EXIF tag name (e.g. "Model", "GPSLatitude").
	Tag string `json:"tag"`

	// Value is the formatted tag value.
	Value string `json:"value"`

	// Category groups related tags: "location", "device", "author",
	// or "timestamp".
	Category string `json:"category"`
}

// NewCrawlReport creates a report for a crawl of the given seed URL.
// The caller fills in Host, SiteRoot, and MaxDepth once known.
func NewCrawlReport(seed string) *CrawlReport {
	return &CrawlReport{
		Seed:      seed,
		StartedAt: time.Now(),
		Pages:     []*Page{},
	}
}

// AddPage appends a page record and folds its image counters into the
// report totals.
func (r *CrawlReport) AddPage(p *Page) {
	r.Pages = append(r.Pages, p)
	r.ImagesSaved += len(p.SavedImages)
	r.ImagesFailed += p.ImagesFailed
}

// Finish stamps the report's end time.
func (r *CrawlReport) Finish() {
	r.FinishedAt = time.Now()
}

// Duration returns the crawl's wall-clock duration. While the crawl is
// still running it returns the time elapsed so far.
func (r *CrawlReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// PageCount returns the number of visited pages, failed fetches included.
func (r *CrawlReport) PageCount() int {
	return len(r.Pages)
}

// FailedCount returns the number of pages whose fetch failed.
func (r *CrawlReport) FailedCount() int {
	n := 0
	for _, p := range r.Pages {
		if p.Failed() {
			n++
		}
	}
	return n
}

// DeepestPage returns the largest depth among visited pages, or zero
// when nothing was visited.
func (r *CrawlReport) DeepestPage() int {
	deepest := 0
	for _, p := range r.Pages {
		if p.Depth > deepest {
			deepest = p.Depth
		}
	}
	return deepest
}
