package imagemeta

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/sitegrab/internal/model"
)

// buildExifTIFF builds a minimal little-endian TIFF stream carrying
// Make ("Pix") and Model ("Cam") tags. The layout is the byte-order
// header, one IFD with two inline ASCII entries, and a zero next-IFD
// offset.
func buildExifTIFF() []byte {
	return []byte{
		'I', 'I', 0x2a, 0x00, // little-endian byte order
		0x08, 0x00, 0x00, 0x00, // first IFD at offset 8
		0x02, 0x00, // two entries
		0x0f, 0x01, 0x02, 0x00, 0x04, 0x00, 0x00, 0x00, 'P', 'i', 'x', 0x00, // Make
		0x10, 0x01, 0x02, 0x00, 0x04, 0x00, 0x00, 0x00, 'C', 'a', 'm', 0x00, // Model
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
}

// writeImage writes data to a file under dir and returns its path.
func writeImage(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}
	return path
}

// reportWithImages builds a report with one page per saved image path.
func reportWithImages(paths ...string) *model.CrawlReport {
	report := model.NewCrawlReport("https://example.com/")
	for _, path := range paths {
		report.AddPage(&model.Page{
			URL:         "https://example.com/",
			StatusCode:  200,
			SavedImages: []string{path},
		})
	}
	return report
}

// TestInspectorInspect tests EXIF extraction from saved images.
func TestInspectorInspect(t *testing.T) {
	t.Parallel()

	t.Run("extracts device tags from saved image", func(t *testing.T) {
		t.Parallel()

		path := writeImage(t, t.TempDir(), "camera.jpg", buildExifTIFF())
		inspector := NewInspector()

		findings, err := inspector.Inspect(context.Background(), reportWithImages(path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(findings) != 2 {
			t.Fatalf("expected 2 findings, got %d", len(findings))
		}

		tags := make(map[string]string, len(findings))
		for _, f := range findings {
			if f.Path != path {
				t.Errorf("expected path %q, got %q", path, f.Path)
			}
			if f.Category != CategoryDevice {
				t.Errorf("expected category %q, got %q", CategoryDevice, f.Category)
			}
			tags[f.Tag] = f.Value
		}

		if tags["Make"] != "Pix" {
			t.Errorf("expected Make %q, got %q", "Pix", tags["Make"])
		}
		if tags["Model"] != "Cam" {
			t.Errorf("expected Model %q, got %q", "Cam", tags["Model"])
		}
	})

	t.Run("inspects each file once", func(t *testing.T) {
		t.Parallel()

		path := writeImage(t, t.TempDir(), "shared.jpg", buildExifTIFF())
		inspector := NewInspector()

		// Two pages reference the same saved file.
		findings, err := inspector.Inspect(context.Background(), reportWithImages(path, path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(findings) != 2 {
			t.Errorf("expected 2 findings for deduplicated file, got %d", len(findings))
		}
	})

	t.Run("skips images without exif data", func(t *testing.T) {
		t.Parallel()

		path := writeImage(t, t.TempDir(), "plain.jpg", []byte("no metadata here"))
		inspector := NewInspector()

		findings, err := inspector.Inspect(context.Background(), reportWithImages(path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 0 {
			t.Errorf("expected no findings, got %d", len(findings))
		}
	})

	t.Run("skips formats that cannot carry exif", func(t *testing.T) {
		t.Parallel()

		// Same bytes would produce findings under a .jpg name.
		path := writeImage(t, t.TempDir(), "chart.png", buildExifTIFF())
		inspector := NewInspector()

		findings, err := inspector.Inspect(context.Background(), reportWithImages(path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 0 {
			t.Errorf("expected no findings for .png, got %d", len(findings))
		}
	})

	t.Run("skips missing files", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "gone.jpg")
		inspector := NewInspector()

		findings, err := inspector.Inspect(context.Background(), reportWithImages(path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 0 {
			t.Errorf("expected no findings for missing file, got %d", len(findings))
		}
	})

	t.Run("skips oversized files", func(t *testing.T) {
		t.Parallel()

		path := writeImage(t, t.TempDir(), "big.jpg", buildExifTIFF())
		inspector := NewInspector(WithMaxFileSize(4))

		findings, err := inspector.Inspect(context.Background(), reportWithImages(path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 0 {
			t.Errorf("expected no findings for oversized file, got %d", len(findings))
		}
	})

	t.Run("empty report yields no findings", func(t *testing.T) {
		t.Parallel()

		inspector := NewInspector()

		findings, err := inspector.Inspect(context.Background(), model.NewCrawlReport("https://example.com/"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(findings) != 0 {
			t.Errorf("expected no findings, got %d", len(findings))
		}
	})

	t.Run("returns context error when cancelled", func(t *testing.T) {
		t.Parallel()

		path := writeImage(t, t.TempDir(), "camera.jpg", buildExifTIFF())
		inspector := NewInspector()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := inspector.Inspect(ctx, reportWithImages(path))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestCategorize tests the EXIF tag to category mapping.
func TestCategorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag      string
		category string
		tracked  bool
	}{
		{tag: "GPSLatitude", category: CategoryLocation, tracked: true},
		{tag: "GPSLongitude", category: CategoryLocation, tracked: true},
		{tag: "GPSAltitude", category: CategoryLocation, tracked: true},
		{tag: "Make", category: CategoryDevice, tracked: true},
		{tag: "Model", category: CategoryDevice, tracked: true},
		{tag: "Software", category: CategoryDevice, tracked: true},
		{tag: "SerialNumber", category: CategoryDevice, tracked: true},
		{tag: "HostComputer", category: CategoryDevice, tracked: true},
		{tag: "Artist", category: CategoryAuthor, tracked: true},
		{tag: "Copyright", category: CategoryAuthor, tracked: true},
		{tag: "DateTimeOriginal", category: CategoryTimestamp, tracked: true},
		{tag: "DateTime", category: CategoryTimestamp, tracked: true},
		{tag: "ColorSpace", tracked: false},
		{tag: "ImageWidth", tracked: false},
		{tag: "Orientation", tracked: false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			t.Parallel()

			category, tracked := categorize(tt.tag)
			if tracked != tt.tracked {
				t.Fatalf("categorize(%q) tracked = %v, want %v", tt.tag, tracked, tt.tracked)
			}
			if category != tt.category {
				t.Errorf("categorize(%q) = %q, want %q", tt.tag, category, tt.category)
			}
		})
	}
}
