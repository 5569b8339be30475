// Package imagemeta extracts EXIF metadata from images saved during a crawl.
//
// # Purpose
//
// This package reads the image files a crawl wrote to disk and surfaces
// the EXIF tags that say something about where, when, and by whom a
// photo was taken. Web images are usually stripped of metadata by
// publishing pipelines, so any surviving tag is worth reporting.
//
// # Design Philosophy
//
// The inspector works on saved files rather than re-fetching images over
// HTTP. This design was chosen because:
//  1. The crawl already downloaded every image; fetching twice wastes bandwidth
//  2. File reads cannot fail for network reasons, keeping inspection deterministic
//  3. Inspection stays decoupled from the crawl and can run on old data
//
// # Finding Categories
//
// Extracted tags are grouped into categories:
//   - location: GPS tags (coordinates, altitude, references)
//   - device: camera make/model, serial numbers, software, host computer
//   - author: artist, author, and copyright tags
//   - timestamp: original/digitized/modified datetimes
//
// Tags outside these categories are ignored. Images without EXIF data
// are skipped silently; most web images carry none.
//
// # Usage
//
//	inspector := imagemeta.NewInspector()
//	findings, err := inspector.Inspect(ctx, report)
package imagemeta
