// Package pdfwriter writes page images into PDF documents, one image per
// page, and inspects written files.
package pdfwriter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png" // PNG page images
	"io"
	"os"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/alnah/go-tsumego-pdf/internal/fileutil"
)

// Sentinel errors for PDF output.
var (
	ErrNoImages    = errors.New("no page images")
	ErrInvalidSize = errors.New("invalid page size")
	ErrWritePDF    = errors.New("failed to write PDF")
)

// Size is a page size in PDF points (1/72 inch).
type Size struct {
	Width, Height float64
}

// Named page sizes, portrait.
var (
	Letter = Size{Width: 612, Height: 792}
	Legal  = Size{Width: 612, Height: 1008}
	A4     = Size{Width: 595.28, Height: 841.89}
)

// Landscape returns the size with its long side horizontal.
func (s Size) Landscape() Size {
	return Size{Width: max(s.Width, s.Height), Height: min(s.Width, s.Height)}
}

// Portrait returns the size with its long side vertical.
func (s Size) Portrait() Size {
	return Size{Width: min(s.Width, s.Height), Height: max(s.Width, s.Height)}
}

// Validate rejects empty or negative sizes.
func (s Size) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: %gx%g", ErrInvalidSize, s.Width, s.Height)
	}
	return nil
}

// Document builds a PDF whose pages all have one size.
type Document struct {
	pdf   *gofpdf.Fpdf
	size  Size
	pages int
}

// New starts an empty document.
func New(size Size) (*Document, error) {
	if err := size.Validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: size.Width, Ht: size.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return &Document{pdf: pdf, size: size}, nil
}

// Pages returns the number of pages added so far.
func (d *Document) Pages() int { return d.pages }

// AddImageFile adds a page holding the image stored at path.
func (d *Document) AddImageFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- pipeline temp file
	if err != nil {
		return fmt.Errorf("reading page image: %w", err)
	}
	return d.AddImage(bytes.NewReader(data))
}

// AddImage adds a page holding the PNG read from r. The image is scaled
// uniformly to fit the page and anchored at the bottom-left origin.
func (d *Document) AddImage(r io.ReadSeeker) error {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return fmt.Errorf("decoding page image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("decoding page image: empty %dx%d image", cfg.Width, cfg.Height)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding page image: %w", err)
	}

	name := "page-" + strconv.Itoa(d.pages)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(name, opts, r)

	w, h := Fit(float64(cfg.Width), float64(cfg.Height), d.size)
	d.pdf.AddPage()
	d.pdf.ImageOptions(name, 0, d.size.Height-h, w, h, false, opts, 0, "")
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("%w: page %d: %w", ErrWritePDF, d.pages+1, err)
	}
	d.pages++
	return nil
}

// Write serializes the document.
func (d *Document) Write(w io.Writer) error {
	if d.pages == 0 {
		return ErrNoImages
	}
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("%w: %w", ErrWritePDF, err)
	}
	return nil
}

// Fit scales a w x h image uniformly to the largest size inside page.
func Fit(w, h float64, page Size) (float64, float64) {
	scale := min(page.Width/w, page.Height/h)
	return w * scale, h * scale
}

// FromImages builds a document with one page per image path, in order.
func FromImages(paths []string, size Size) (*Document, error) {
	if len(paths) == 0 {
		return nil, ErrNoImages
	}
	doc, err := New(size)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := doc.AddImageFile(p); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// WriteImages writes one page per image next to out without making it
// visible. The caller commits or discards the result.
func WriteImages(paths []string, size Size, out string) (*fileutil.Staged, error) {
	doc, err := FromImages(paths, size)
	if err != nil {
		return nil, err
	}
	return fileutil.Stage(out, doc.Write)
}

// Inspect validates a PDF file and returns its page count.
func Inspect(path string) (int, error) {
	f, err := os.Open(path) // #nosec G304 -- file written by this program
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	ctx, err := pdfapi.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("validating %s: %w", path, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", path, err)
	}
	return ctx.PageCount, nil
}
