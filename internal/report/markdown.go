package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/sitegrab/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full crawl report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writePages(md, report)
	w.writeImageFindings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Sitegrab Crawl Report")
	md.PlainText("")

	siteRoot := report.SiteRoot
	if siteRoot == "" {
		siteRoot = "-"
	}

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + report.Seed + "`"},
			{"Host", "`" + report.Host + "`"},
			{"Site Root", "`" + siteRoot + "`"},
			{"Crawl Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration().Round(time.Millisecond).String()},
			{"Max Depth", strconv.Itoa(report.MaxDepth)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the crawl summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages visited", strconv.Itoa(report.PageCount())},
			{"Fetch failures", strconv.Itoa(report.FailedCount())},
			{"Deepest page", strconv.Itoa(report.DeepestPage())},
			{"Images saved", strconv.Itoa(report.ImagesSaved)},
			{"Images failed", strconv.Itoa(report.ImagesFailed)},
		},
	})
	md.PlainText("")

	if report.PageCount() > 0 {
		w.writeDepthChart(md, report)
	}

	w.writeAlert(md, report)
}

// writeDepthChart writes a mermaid pie chart of pages per depth.
func (w *MarkdownWriter) writeDepthChart(md *markdown.Markdown, report *model.CrawlReport) {
	counts := make(map[int]int)
	for _, page := range report.Pages {
		counts[page.Depth]++
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Pages per Depth"),
		piechart.WithShowData(true),
	)
	for depth := 0; depth <= report.DeepestPage(); depth++ {
		if counts[depth] > 0 {
			chart.LabelAndIntValue(fmt.Sprintf("depth %d", depth), uint64(counts[depth]))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the crawl outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.CrawlReport) {
	switch {
	case report.PageCount() == 0:
		md.Note("No pages were visited. Check the seed URL and depth limit.")
	case report.FailedCount() > 0:
		md.Warningf(
			"%d page fetch(es) failed. Their links were not explored.",
			report.FailedCount(),
		)
	case report.ImagesFailed > 0:
		md.Importantf(
			"%d image download(s) failed. Page text was still saved.",
			report.ImagesFailed,
		)
	default:
		md.Tip("All pages and images were fetched successfully.")
	}
	md.PlainText("")
}

// writePages writes the visited pages table in visit order.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Pages")
	md.PlainText("")

	if len(report.Pages) == 0 {
		md.PlainText("No pages visited.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Pages))
	for i, page := range report.Pages {
		title := page.Title
		if title == "" {
			title = "-"
		}

		result := page.TextFile
		if page.Failed() {
			result = "error: " + page.FetchError
		} else if result == "" {
			result = "-"
		}

		rows[i] = []string{
			strconv.Itoa(page.Depth),
			truncateString(page.URL, 60),
			truncateString(title, 40),
			strconv.Itoa(page.StatusCode),
			truncateString(result, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Depth", "URL", "Title", "Status", "Result"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeImageFindings writes EXIF findings collected from saved images.
func (w *MarkdownWriter) writeImageFindings(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.ImageFindings) == 0 {
		return
	}

	md.H2("Image Findings")
	md.PlainText("")

	rows := make([][]string, len(report.ImageFindings))
	for i, finding := range report.ImageFindings {
		rows[i] = []string{
			truncateString(finding.Path, 50),
			finding.Tag,
			truncateString(finding.Value, 50),
			finding.Category,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Image", "Tag", "Value", "Category"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitegrab](https://github.com/nao1215/sitegrab)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
