package storage

import "errors"

// Layout errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances at each call site. This allows callers to
// use errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoHost is returned when a site root is requested for a URL
	// without a host component. Only the seed URL ever computes a site
	// root, so this surfaces as an invalid-seed failure at crawl start.
	ErrNoHost = errors.New("no host in URL: cannot derive a site directory")

	// ErrEmptyFilename is returned when a URL's path yields no usable
	// filename after query stripping and sanitization (for example, a
	// URL ending in a slash).
	ErrEmptyFilename = errors.New("empty filename: URL path has no final segment")
)
