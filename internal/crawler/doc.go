// Package crawler implements sitegrab's traversal engine.
//
// # Architecture
//
// The package is designed around the Scraper type, which drives a
// depth-bounded, depth-first crawl from one seed URL. Traversal state
// lives in an explicit work list rather than the call stack, and the
// visited set is owned by a single Run invocation, so several crawls
// can run in one process without sharing anything.
//
// Design decision: We implement the traversal ourselves rather than
// using a crawling framework because:
//  1. The on-disk layout contract (depth-keyed text files, per-site
//     image directories) is the product, not an afterthought
//  2. Visit order is part of the contract: depth-first pre-order,
//     children in document order
//  3. Visited-set identity is deliberately exact-string (fragment and
//     trailing-slash variants are distinct), which frameworks
//     normalize away
//
// # Components
//
//   - Scraper: the work-list crawl loop
//   - Extract: goquery-based text/image/link extraction
//   - Resolve: relative reference resolution against a base URL
//
// # Usage
//
//	scraper := crawler.NewScraper(client, layout, crawler.WithMaxDepth(3))
//	report, err := scraper.Run(ctx, "http://example.com/")
package crawler
