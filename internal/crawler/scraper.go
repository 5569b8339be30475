package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/sitegrab/internal/fetcher"
	"github.com/nao1215/sitegrab/internal/model"
	"github.com/nao1215/sitegrab/internal/storage"
)

// DefaultMaxDepth bounds how many link hops a crawl may descend when no
// depth is configured. The bound doubles as the crawl's only protection
// against unbounded growth, so it is deliberately generous.
const DefaultMaxDepth = 100

// Scraper drives a depth-bounded, depth-first crawl from one seed URL,
// writing page text and images through the storage layout as it goes.
//
// Design decision: We call it "Scraper" rather than "Crawler" because:
//  1. It scrapes content (text, images) as it traverses, not just URLs
//  2. Distinguishes the component from the package name
//  3. Clearer in code: crawler.NewScraper() vs crawler.NewCrawler()
type Scraper struct {
	// client issues page and image fetches.
	client *fetcher.Client

	// layout derives site directories and page paths.
	layout *storage.Layout

	// maxDepth limits link hops from the seed. A frame at
	// depth >= maxDepth is skipped before any side effect.
	maxDepth int

	// skipImages disables image downloads while keeping image URLs
	// in the page records.
	skipImages bool

	// logger receives per-page progress and failure records.
	logger *slog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithMaxDepth sets the maximum crawl depth. The seed is depth 0, so a
// depth of 1 visits only the seed page.
func WithMaxDepth(depth int) Option {
	return func(s *Scraper) {
		s.maxDepth = depth
	}
}

// WithSkipImages disables image downloads. Image URLs are still
// extracted and recorded.
func WithSkipImages(skip bool) Option {
	return func(s *Scraper) {
		s.skipImages = skip
	}
}

// WithLogger sets the logger for crawl progress and failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScraper creates a Scraper that fetches through client and writes
// through layout.
//
// Design decision: We take the fetch client and layout as constructor
// arguments rather than building them internally because:
//  1. Timeout and header policy belong to configuration, not traversal
//  2. Tests inject an httptest-backed client and a temp-dir layout
//  3. One client can serve several crawls in batch mode
func NewScraper(client *fetcher.Client, layout *storage.Layout, opts ...Option) *Scraper {
	s := &Scraper{
		client:   client,
		layout:   layout,
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// frame is one work-list entry: the URL to visit, its link distance
// from the seed, and the site root it writes under.
type frame struct {
	url      string
	depth    int
	siteRoot string
}

// Run crawls from the seed URL until every reachable, depth-permitted
// URL has been visited once, and returns the crawl report.
//
// Traversal is depth-first pre-order: a page's first link is fully
// explored before its second, exactly as recursive descent would visit
// them, but driven by an explicit stack so deep crawls cannot exhaust
// the call stack. All state (visited set, work list, report) is owned
// by this invocation; concurrent Runs share nothing but the client.
func (s *Scraper) Run(ctx context.Context, seed string) (*model.CrawlReport, error) {
	if !strings.HasPrefix(seed, "http://") && !strings.HasPrefix(seed, "https://") {
		seed = "http://" + seed
	}
	su, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if su.Host == "" {
		return nil, fmt.Errorf("%w: no host in %q", ErrInvalidSeed, seed)
	}

	report := model.NewCrawlReport(su.String())
	report.Host = su.Host
	report.MaxDepth = s.maxDepth

	visited := newVisitedSet()
	stack := []frame{{url: su.String(), depth: 0}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			report.Finish()
			return report, err
		}

		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Gate: already claimed or too deep means no side effects.
		if visited.has(fr.url) || fr.depth >= s.maxDepth {
			continue
		}
		visited.mark(fr.url)

		// The seed's frame enters with no site root; every frame it
		// spawns inherits the computed one unchanged.
		if fr.siteRoot == "" {
			root, err := s.layout.SiteRoot(fr.url)
			if err != nil {
				report.Finish()
				return report, err
			}
			fr.siteRoot = root
			report.SiteRoot = root
		}

		page, links := s.visit(ctx, fr)
		report.AddPage(page)

		// Push in reverse document order so the first link on the
		// page is popped, and its subtree explored, first.
		for i := len(links) - 1; i >= 0; i-- {
			if !visited.has(links[i]) {
				stack = append(stack, frame{url: links[i], depth: fr.depth + 1, siteRoot: fr.siteRoot})
			}
		}
	}

	report.Finish()
	return report, nil
}

// visit fetches, extracts, and persists one page. It returns the page
// record and the links to descend into; a failed fetch returns no
// links, ending that subtree while leaving the URL marked visited.
func (s *Scraper) visit(ctx context.Context, fr frame) (*model.Page, []string) {
	page := &model.Page{URL: fr.url, Depth: fr.depth, FetchedAt: time.Now()}

	result, err := s.client.FetchPage(ctx, fr.url)
	if result != nil {
		page.StatusCode = result.StatusCode
		page.ContentType = result.ContentType()
	}
	if err != nil {
		page.FetchError = err.Error()
		s.logger.Warn("failed to fetch page", "url", fr.url, "depth", fr.depth, "error", err)
		return page, nil
	}

	content, err := Extract(result.Body, page.ContentType, fr.url)
	if err != nil {
		page.FetchError = err.Error()
		s.logger.Warn("failed to extract page", "url", fr.url, "depth", fr.depth, "error", err)
		return page, nil
	}

	page.Title = content.Title
	page.Images = content.Images
	page.Links = content.Links

	textFile, imageDir, err := s.layout.PagePaths(fr.siteRoot, fr.depth)
	if err != nil {
		// Persistence trouble does not stop traversal; the page's
		// links are still worth following.
		s.logger.Error("failed to prepare page directories", "site_root", fr.siteRoot, "error", err)
		return page, content.Links
	}

	if err := storage.WriteText(textFile, content.Text); err != nil {
		s.logger.Error("failed to write page text", "path", textFile, "error", err)
	} else {
		page.TextFile = textFile
	}

	if !s.skipImages {
		for _, img := range content.Images {
			saved, err := s.client.SaveImage(ctx, img, imageDir)
			if err != nil {
				page.ImagesFailed++
				s.logger.Warn("failed to save image", "url", img, "error", err)
				continue
			}
			page.SavedImages = append(page.SavedImages, saved.Path)
			s.logger.Debug("saved image", "url", img, "path", saved.Path, "bytes", saved.Bytes)
		}
	}

	s.logger.Debug("crawled page",
		"url", fr.url,
		"depth", fr.depth,
		"links", len(content.Links),
		"images", len(content.Images),
	)
	return page, content.Links
}
