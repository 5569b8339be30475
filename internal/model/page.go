package model

import "time"

// PageContent is the extraction result of one parsed document: the page
// title, the newline-joined visible text, and the absolute image and link
// URLs in document order. Duplicates are kept; whether to fetch a URL again
// is decided by the crawler, not here.
type PageContent struct {
	// Title is the stripped text of the first <title> element.
	// Empty when the document has none.
	Title string

	// Text is the stripped text of every paragraph, heading, and list
	// item element, one line per element, joined by newlines.
	Text string

	// Images holds the resolved absolute URL of every <img src>,
	// in document order, duplicates included.
	Images []string

	// Links holds the resolved absolute URL of every <a href>,
	// in document order, duplicates included.
	Links []string
}

// Page records the outcome of one page visit during a crawl.
//
// Design decision: We keep one record per visited URL, including failed
// fetches, because:
//  1. Failed URLs stay marked visited and are never retried; the record
//     is the only trace of the attempt
//  2. Reports and the history database need per-page status
//  3. The extracted text itself lives on disk, not in memory, so the
//     record stays small even for large pages
type Page struct {
	// URL is the absolute URL that was fetched.
	URL string `json:"url"`

	// Depth is the number of link hops from the seed (0 for the seed).
	Depth int `json:"depth"`

	// StatusCode is the HTTP response status code.
	// Zero when the request never produced a response.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type from the Content-Type header.
	ContentType string `json:"content_type,omitempty"`

	// Title is the page title extracted from the <title> tag.
	Title string `json:"title,omitempty"`

	// TextFile is the path of the persisted text blob.
	// Empty when the fetch failed before extraction.
	TextFile string `json:"text_file,omitempty"`

	// Images holds the absolute image URLs discovered on the page.
	Images []string `json:"images,omitempty"`

	// Links holds the absolute link URLs discovered on the page.
	Links []string `json:"links,omitempty"`

	// SavedImages holds the on-disk paths of images downloaded for
	// this page, in document order.
	SavedImages []string `json:"saved_images,omitempty"`

	// ImagesFailed counts image downloads that failed.
	// Image failures never abort the page; they are only counted.
	ImagesFailed int `json:"images_failed"`

	// FetchedAt is the time the fetch was attempted.
	FetchedAt time.Time `json:"fetched_at"`

	// FetchError holds the failure reason when the fetch did not
	// succeed. Empty on success.
	FetchError string `json:"fetch_error,omitempty"`
}

// Failed reports whether the page fetch failed (transport error or
// non-2xx status). A failed page produced no text file and no children.
func (p *Page) Failed() bool {
	return p.FetchError != ""
}
