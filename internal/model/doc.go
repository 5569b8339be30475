// Package model defines the core data structures used throughout sitegrab.
//
// This package contains the following main types:
//   - PageContent: The extraction result of one parsed document
//   - Page: The recorded outcome of one page visit
//   - CrawlReport: The result of one complete crawl
//   - ImageFinding: One EXIF metadata hit on a downloaded image
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, report, database, imagemeta) need
// to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
