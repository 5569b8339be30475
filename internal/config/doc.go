// Package config provides configuration structures and utilities for sitegrab.
// It defines the crawl options populated from CLI flags, per-host overrides
// loaded from the .sitegrab file, and report output preferences.
package config
