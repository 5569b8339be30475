// Package main provides the entry point for the sitegrab CLI.
//
// Sitegrab is a recursive web crawler. Starting from a seed URL it
// visits pages depth-first, saves each page's readable text, and
// downloads the images the pages reference.
//
// Usage:
//
//	sitegrab crawl <url>
//	sitegrab history --seed <url>
//
// See --help for all available options.
package main

// main is the entry point for sitegrab.
func main() {
	Execute()
}
