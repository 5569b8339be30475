// Package log provides logging for sitegrab, built on top of the standard
// slog package.
//
// This package extends slog to provide:
//   - Truncation of oversized attribute values (URLs, text snippets)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Truncation
//
// Crawlers log values with no natural size bound: query-laden URLs, data:
// URIs, extracted text snippets. The TrimHandler caps every string
// attribute at MaxAttrLen bytes so a single record can never flood the
// log output, even in verbose mode.
//
// # Usage
//
//	// Create a logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Warn("fetch failed",
//	    "url", "http://example.com/some/very/long/path...",
//	    "error", err,
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
