package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/sitegrab/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional per-page detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full crawl report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writePages(&sb, report)
	w.writeImageFindings(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        SITEGRAB CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Seed URL:       %s\n", report.Seed))
	sb.WriteString(fmt.Sprintf("Host:           %s\n", report.Host))
	if report.SiteRoot != "" {
		sb.WriteString(fmt.Sprintf("Site Root:      %s\n", report.SiteRoot))
	}
	sb.WriteString(fmt.Sprintf("Crawl Date:     %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:       %s\n", report.Duration().Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Max Depth:      %d\n", report.MaxDepth))
	sb.WriteString(fmt.Sprintf("Status:         %s\n", w.statusText(report)))

	sb.WriteString("\n")
}

// statusText summarizes the crawl outcome in a single line.
func (w *SimpleWriter) statusText(report *model.CrawlReport) string {
	if report.PageCount() == 0 {
		return "Complete (no pages visited)"
	}
	if failed := report.FailedCount(); failed > 0 {
		return fmt.Sprintf("Complete (%d fetch failure(s))", failed)
	}
	return "Complete"
}

// writeSummary writes the crawl summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Pages visited:  %d\n", report.PageCount()))
	sb.WriteString(fmt.Sprintf("  Fetch failures: %d\n", report.FailedCount()))
	sb.WriteString(fmt.Sprintf("  Deepest page:   %d\n", report.DeepestPage()))
	sb.WriteString(fmt.Sprintf("  Images saved:   %d\n", report.ImagesSaved))
	sb.WriteString(fmt.Sprintf("  Images failed:  %d\n", report.ImagesFailed))
	sb.WriteString("\n")
}

// writePages writes the visited pages in visit order.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Pages) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Pages) == 0 {
		sb.WriteString("  No pages visited\n\n")
		return
	}

	for _, page := range report.Pages {
		sb.WriteString(fmt.Sprintf("  [%d] %s\n", page.Depth, page.URL))

		if page.Failed() {
			sb.WriteString(fmt.Sprintf("      Error:  %s\n", page.FetchError))
			continue
		}

		if page.Title != "" {
			sb.WriteString(fmt.Sprintf("      Title:  %s\n", page.Title))
		}
		sb.WriteString(fmt.Sprintf("      Status: %d\n", page.StatusCode))
		if page.TextFile != "" {
			sb.WriteString(fmt.Sprintf("      Text:   %s\n", page.TextFile))
		}

		if w.verbose {
			sb.WriteString(fmt.Sprintf("      Links:  %d\n", len(page.Links)))
			for _, img := range page.SavedImages {
				sb.WriteString(fmt.Sprintf("      Image:  %s\n", img))
			}
			if page.ImagesFailed > 0 {
				sb.WriteString(fmt.Sprintf("      Images failed: %d\n", page.ImagesFailed))
			}
		}
	}
	sb.WriteString("\n")
}

// writeImageFindings writes EXIF findings collected from saved images.
func (w *SimpleWriter) writeImageFindings(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.ImageFindings) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("IMAGE FINDINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.ImageFindings) == 0 {
		sb.WriteString("  No EXIF findings\n\n")
		return
	}

	for _, finding := range report.ImageFindings {
		sb.WriteString(fmt.Sprintf("  * %s\n", finding.Path))
		sb.WriteString(fmt.Sprintf("    Tag:      %s (%s)\n", finding.Tag, finding.Category))
		sb.WriteString(fmt.Sprintf("    Value:    %s\n", finding.Value))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by sitegrab\n")
	sb.WriteString("https://github.com/nao1215/sitegrab\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
