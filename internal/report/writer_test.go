package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitegrab/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.CrawlReport {
	report := model.NewCrawlReport("https://example.com/")
	report.Host = "example.com"
	report.SiteRoot = filepath.Join("data", "example_com")
	report.MaxDepth = 3

	report.AddPage(&model.Page{
		URL:         "https://example.com/",
		Depth:       0,
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Title:       "Example Home",
		TextFile:    filepath.Join("data", "example_com", "text", "page_0.txt"),
		Images:      []string{"https://example.com/logo.png"},
		Links:       []string{"https://example.com/about", "https://example.com/broken"},
		SavedImages: []string{filepath.Join("data", "example_com", "img", "logo.png")},
		FetchedAt:   time.Now(),
	})
	report.AddPage(&model.Page{
		URL:        "https://example.com/about",
		Depth:      1,
		StatusCode: 200,
		Title:      "About Us",
		TextFile:   filepath.Join("data", "example_com", "text", "page_1.txt"),
		FetchedAt:  time.Now(),
	})
	report.AddPage(&model.Page{
		URL:        "https://example.com/broken",
		Depth:      1,
		StatusCode: 500,
		FetchError: "unexpected response status: 500",
		FetchedAt:  time.Now(),
	})

	report.ImageFindings = append(report.ImageFindings, model.ImageFinding{
		Path:     filepath.Join("data", "example_com", "img", "logo.png"),
		Tag:      "Model",
		Value:    "PixelCam 3000",
		Category: "device",
	})

	report.Finish()
	return report
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "SITEGRAB CRAWL REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "https://example.com/") {
			t.Error("expected output to contain seed URL")
		}
		if !strings.Contains(output, "Host:           example.com") {
			t.Error("expected output to contain host")
		}
	})

	t.Run("writes crawl summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "SUMMARY") {
			t.Error("expected output to contain summary section")
		}
		if !strings.Contains(output, "Pages visited:  3") {
			t.Error("expected output to contain page count")
		}
		if !strings.Contains(output, "Fetch failures: 1") {
			t.Error("expected output to contain failure count")
		}
		if !strings.Contains(output, "Images saved:   1") {
			t.Error("expected output to contain image count")
		}
	})

	t.Run("status line counts failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "1 fetch failure") {
			t.Error("expected status to mention fetch failures")
		}
	})

	t.Run("writes pages in visit order", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		first := strings.Index(output, "[0] https://example.com/")
		second := strings.Index(output, "[1] https://example.com/about")
		third := strings.Index(output, "[1] https://example.com/broken")

		if first == -1 || second == -1 || third == -1 {
			t.Fatal("expected all pages in output")
		}
		if !(first < second && second < third) {
			t.Error("expected pages in visit order")
		}
		if !strings.Contains(output, "Title:  Example Home") {
			t.Error("expected page title in output")
		}
	})

	t.Run("failed page shows error instead of text path", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Error:  unexpected response status: 500") {
			t.Error("expected fetch error in output")
		}
	})

	t.Run("verbose mode includes saved images and link counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Links:  2") {
			t.Error("expected verbose output to contain link count")
		}
		if !strings.Contains(output, "Image:  "+filepath.Join("data", "example_com", "img", "logo.png")) {
			t.Error("expected verbose output to contain saved image path")
		}
	})

	t.Run("non-verbose mode omits per-page image paths", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "Links:") {
			t.Error("expected non-verbose output to omit link counts")
		}
	})

	t.Run("writes image findings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "IMAGE FINDINGS") {
			t.Error("expected image findings section")
		}
		if !strings.Contains(output, "PixelCam 3000") {
			t.Error("expected finding value in output")
		}
		if !strings.Contains(output, "Model (device)") {
			t.Error("expected tag and category in output")
		}
	})

	t.Run("hides empty findings section without showEmpty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()
		report.ImageFindings = nil

		if _, err := w.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "IMAGE FINDINGS") {
			t.Error("should not show image findings section without findings")
		}
	})

	t.Run("shows empty sections with showEmpty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowEmpty(true))
		report := model.NewCrawlReport("https://empty.example.com")
		report.Finish()

		if _, err := w.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No pages visited") {
			t.Error("expected 'No pages visited' with showEmpty")
		}
		if !strings.Contains(output, "No EXIF findings") {
			t.Error("expected 'No EXIF findings' with showEmpty")
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes headings and info table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Sitegrab Crawl Report") {
			t.Error("expected H1 heading")
		}
		if !strings.Contains(output, "`https://example.com/`") {
			t.Error("expected seed URL in info table")
		}
		if !strings.Contains(output, "## Summary") {
			t.Error("expected summary heading")
		}
		if !strings.Contains(output, "## Pages") {
			t.Error("expected pages heading")
		}
	})

	t.Run("includes depth distribution chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "mermaid") {
			t.Error("expected mermaid chart block")
		}
		if !strings.Contains(output, "depth 0") {
			t.Error("expected depth labels in chart")
		}
	})

	t.Run("warns about fetch failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "WARNING") {
			t.Error("expected warning alert for fetch failures")
		}
	})

	t.Run("clean crawl gets a tip", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := model.NewCrawlReport("https://example.com/")
		report.AddPage(&model.Page{
			URL:        "https://example.com/",
			StatusCode: 200,
			FetchedAt:  time.Now(),
		})
		report.Finish()

		if _, err := w.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "TIP") {
			t.Error("expected tip alert for clean crawl")
		}
	})

	t.Run("writes image findings table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Image Findings") {
			t.Error("expected image findings heading")
		}
		if !strings.Contains(output, "PixelCam 3000") {
			t.Error("expected finding value in table")
		}
	})

	t.Run("empty report renders without pages table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := model.NewCrawlReport("https://empty.example.com")
		report.Finish()

		if _, err := w.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No pages visited.") {
			t.Error("expected empty-pages message")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed model.CrawlReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Seed != "https://example.com/" {
			t.Errorf("expected seed %q, got %q", "https://example.com/", parsed.Seed)
		}
		if len(parsed.Pages) != 3 {
			t.Errorf("expected 3 pages, got %d", len(parsed.Pages))
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) > 1 {
			t.Errorf("expected compact output (1 line), got %d lines", len(lines))
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) < 5 {
			t.Errorf("expected multi-line output, got %d lines", len(lines))
		}
	})
}

// TestFullJSONWriter tests the full JSON writer with metadata.
func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("includes version in output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3", WithPrettyPrint())

		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed JSONReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Version != "1.2.3" {
			t.Errorf("expected version %q, got %q", "1.2.3", parsed.Version)
		}
		if parsed.Report == nil || parsed.Report.Seed != "https://example.com/" {
			t.Error("expected wrapped report with seed")
		}
	})
}

// failingWriter always returns an error, for MultiWriter error tests.
type failingWriter struct{}

func (failingWriter) Write(_ *model.CrawlReport) (int, error) {
	return 0, errors.New("write failed")
}

// TestMultiWriter tests writing to multiple outputs.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		multi := NewMultiWriter(NewSimpleWriter(&buf1), NewJSONWriter(&buf2))

		if _, err := multi.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if buf1.Len() == 0 {
			t.Error("expected buf1 to have content")
		}
		if buf2.Len() == 0 {
			t.Error("expected buf2 to have content")
		}

		// Verify formats are different
		if strings.Contains(buf1.String(), "{") {
			t.Error("expected buf1 (simple) to not be JSON")
		}
		if !strings.Contains(buf2.String(), "{") {
			t.Error("expected buf2 (JSON) to contain JSON")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		multi := NewMultiWriter(failingWriter{}, NewSimpleWriter(&buf))

		if _, err := multi.Write(createTestReport()); err == nil {
			t.Fatal("expected error from failing writer")
		}
		if buf.Len() != 0 {
			t.Error("expected second writer to be skipped after error")
		}
	})
}

// TestTruncateString tests the table cell truncation helper.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string unchanged", input: "short", maxLen: 10, want: "short"},
		{name: "exact length unchanged", input: "exact", maxLen: 5, want: "exact"},
		{name: "long string gets ellipsis", input: "a very long string", maxLen: 10, want: "a very ..."},
		{name: "tiny max cuts hard", input: "abcdef", maxLen: 2, want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
