package crawler

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/sitegrab/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// textElements selects the elements whose stripped text makes up a
// page's text blob, in document order. Nested matches (a <p> inside an
// <li>) are each reported once, so their text repeats; that mirrors a
// plain element search and is deliberate.
const textElements = "p, h1, h2, h3, h4, h5, h6, li"

// Extract parses a fetched body and returns the page's title, text
// blob, and the absolute image and link URLs in document order.
//
// The body is decoded to UTF-8 first, using the Content-Type header and
// in-document hints; contentType may be empty. Extraction runs on every
// fetched body regardless of MIME type: non-HTML content simply yields
// no elements and an empty text blob.
func Extract(body []byte, contentType, pageURL string) (*model.PageContent, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page URL: %w", err)
	}

	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		// Undecodable declarations fall back to the raw bytes; the
		// parser tolerates arbitrary input.
		r = bytes.NewReader(body)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	content := &model.PageContent{
		Title: strippedText(doc.Find("title").First()),
	}

	var lines []string
	doc.Find(textElements).Each(func(_ int, sel *goquery.Selection) {
		if text := strippedText(sel); text != "" {
			lines = append(lines, text)
		}
	})
	content.Text = strings.Join(lines, "\n")

	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		content.Images = append(content.Images, Resolve(base, src))
	})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		content.Links = append(content.Links, Resolve(base, href))
	})

	return content, nil
}

// strippedText concatenates the trimmed text nodes under the selection.
// Each text node is trimmed of surrounding whitespace and empty nodes
// contribute nothing, so "<li> a <b>b</b> </li>" yields "ab".
func strippedText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		collectText(n, &b)
	}
	return b.String()
}

// collectText walks the node's subtree in document order, appending
// trimmed text nodes.
func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(strings.TrimSpace(n.Data))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
