package crawler

import "errors"

// Crawl errors.
var (
	// ErrInvalidSeed is returned when the seed URL cannot be parsed or
	// has no host. Only the seed is validated up front; URLs discovered
	// during the crawl fail at fetch time instead.
	ErrInvalidSeed = errors.New("invalid seed URL")
)
