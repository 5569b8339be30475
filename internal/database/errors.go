package database

import "errors"

// ErrClosed is returned when an operation is attempted on a CrawlDB
// that has already been closed. Callers should treat this as a
// programming error: the database is closed once, after all crawls
// and history queries have finished.
var ErrClosed = errors.New("database is closed")
