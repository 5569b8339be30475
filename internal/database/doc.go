// Package database provides SQLite-based storage for crawl history.
//
// This package implements the CrawlDB, which stores:
//   - One record per completed crawl with aggregate counts
//   - One record per visited page in visit order
//   - The full crawl report as JSON for later inspection
//
// History is observational: it is written only after a crawl completes
// and is never consulted during traversal.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
