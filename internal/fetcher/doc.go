// Package fetcher wraps HTTP transport for sitegrab.
//
// The Client issues page fetches that return the body in memory for
// extraction, and image fetches that stream the body straight to disk.
// Both send a User-Agent identifying the client and treat non-2xx
// statuses as failures.
//
// Design decision: Fetch outcomes are explicit values (Result,
// ImageResult) plus an error rather than silent fall-through because:
//  1. The crawler decides what a failure means for traversal (stop the
//     subtree, count and continue), not the transport
//  2. Every failure path is visible and testable at the call site
//  3. Page and image fetches share one configured client
package fetcher
