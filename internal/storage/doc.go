// Package storage derives and owns sitegrab's on-disk layout.
//
// Every crawl writes into a site root named after the seed's host with
// dots replaced by underscores, rooted under a fixed data directory:
//
//	data/<host_with_dots_as_underscores>/
//	├── text/page_<depth>.txt
//	└── img/<sanitized_filename>
//
// Design decision: All filesystem writes go through this package rather
// than being scattered across the crawler and fetcher because:
//  1. The layout contract (directory names, file naming, permissions)
//     lives in one place and is tested in one place
//  2. Directory creation stays idempotent no matter who triggers it
//  3. The crawler and fetcher stay testable against a temp directory
//
// Text filenames are keyed by depth, not URL: two pages reached at the
// same depth overwrite each other's text file. That is an accepted
// property of the layout, not an error.
package storage
