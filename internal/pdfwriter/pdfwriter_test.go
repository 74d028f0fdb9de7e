package pdfwriter

// Notes:
// - Inspect runs the full pdfcpu validation on files written here, so the
//   round trip checks both the page count and that the output is well formed.

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestFit - Uniform scaling into the page
// ---------------------------------------------------------------------------

func TestFit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		w, h       float64
		page       Size
		wantW      float64
		wantH      float64
	}{
		{"same aspect", 2550, 3300, Letter, 612, 792},
		{"wide image", 3300, 1275, Letter, 612, 236.4545},
		{"tall image", 100, 400, Size{Width: 300, Height: 300}, 75, 300},
		{"upscale", 10, 10, Size{Width: 100, Height: 50}, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, h := Fit(tt.w, tt.h, tt.page)
			if math.Abs(w-tt.wantW) > 0.01 || math.Abs(h-tt.wantH) > 0.01 {
				t.Errorf("Fit() = %.4f x %.4f, want %.4f x %.4f", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestSize(t *testing.T) {
	t.Parallel()

	if got := Letter.Landscape(); got != (Size{Width: 792, Height: 612}) {
		t.Errorf("Letter.Landscape() = %v", got)
	}
	if got := Letter.Landscape().Portrait(); got != Letter {
		t.Errorf("Portrait() = %v, want %v", got, Letter)
	}
	if err := (Size{Width: 0, Height: 10}).Validate(); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Validate() error = %v, want ErrInvalidSize", err)
	}
}

// ---------------------------------------------------------------------------
// TestWriteImages - One page per image, in order
// ---------------------------------------------------------------------------

func TestWriteImages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := []string{
		writePNG(t, dir, "1.png", 85, 110),
		writePNG(t, dir, "2.png", 85, 110),
		writePNG(t, dir, "3.png", 110, 85),
	}
	out := filepath.Join(dir, "out", "problems.pdf")

	staged, err := WriteImages(paths, Letter, out)
	if err != nil {
		t.Fatalf("WriteImages() unexpected error: %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output visible before commit")
	}
	if err := staged.Commit(); err != nil {
		t.Fatalf("Commit() unexpected error: %v", err)
	}
	pages, err := Inspect(out)
	if err != nil {
		t.Fatalf("Inspect() unexpected error: %v", err)
	}
	if pages != 3 {
		t.Errorf("pages = %d, want 3", pages)
	}
}

func TestWriteImages_Errors(t *testing.T) {
	t.Parallel()

	t.Run("no images", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "empty.pdf")
		if _, err := WriteImages(nil, Letter, out); !errors.Is(err, ErrNoImages) {
			t.Errorf("WriteImages(nil) error = %v, want ErrNoImages", err)
		}
		if _, err := os.Stat(out); !os.IsNotExist(err) {
			t.Error("output exists after failure")
		}
	})

	t.Run("missing image", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		out := filepath.Join(dir, "broken.pdf")
		_, err := WriteImages([]string{filepath.Join(dir, "nope.png")}, Letter, out)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("WriteImages() error = %v, want ErrNotExist", err)
		}
		if _, err := os.Stat(out); !os.IsNotExist(err) {
			t.Error("output exists after failure")
		}
	})

	t.Run("not a png", func(t *testing.T) {
		t.Parallel()

		doc, err := New(Letter)
		if err != nil {
			t.Fatal(err)
		}
		if err := doc.AddImage(bytes.NewReader([]byte("not an image"))); err == nil {
			t.Error("AddImage() expected error for garbage input")
		}
		if doc.Pages() != 0 {
			t.Errorf("Pages() = %d, want 0", doc.Pages())
		}
	})
}

func TestInspect_NotPDF(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Inspect(path); err == nil {
		t.Error("Inspect() expected error for non-PDF file")
	}
}
