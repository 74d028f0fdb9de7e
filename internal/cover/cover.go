// Package cover draws booklet covers.
//
// A cover is the right half of a booklet sheet: a graphic 70% of the half
// width, centered horizontally at one third of the height, with optional
// title text beneath it.
package cover

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // cover graphics
	_ "image/png"  // cover graphics
	"io"
	"os"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/alnah/go-tsumego-pdf/internal/fileutil"
	"github.com/alnah/go-tsumego-pdf/internal/layout"
)

// Built-in cover styles.
const (
	StyleBoard = "board"
	StyleNone  = "none"
)

const graphicShare = 0.7

// Sentinel errors for cover drawing.
var (
	ErrInvalidSize  = errors.New("invalid cover size")
	ErrUnknownStyle = errors.New("unknown cover style")
)

var (
	titleInk    = color.RGBA{40, 40, 40, 255}
	subtitleInk = color.RGBA{110, 110, 110, 255}
)

// Options describe a cover.
type Options struct {
	// SheetWidth and SheetHeight are the full sheet size in pixels; the
	// cover is the right half.
	SheetWidth, SheetHeight int

	// Style picks a built-in graphic when GraphicPath is empty.
	Style string

	// GraphicPath is a PNG or JPEG drawn instead of the built-in graphic.
	GraphicPath string

	Text Text
}

// Size returns the cover size for a sheet.
func (o Options) Size() image.Point {
	return image.Pt(o.SheetWidth-o.SheetWidth/2, o.SheetHeight)
}

// WritePNG draws the cover into a temporary PNG in dir.
func WritePNG(opts Options, dir string) (string, error) {
	dc, err := render(opts)
	if err != nil {
		return "", err
	}
	defer dc.Close()
	path, _, err := fileutil.WriteTempFile(dir, "png", func(w io.Writer) error {
		return dc.EncodePNG(w)
	})
	return path, err
}

func render(opts Options) (*gg.Context, error) {
	size := opts.Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, opts.SheetWidth, opts.SheetHeight)
	}

	graphic, err := loadGraphic(opts, int(float64(opts.SheetWidth/2)*graphicShare))
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(size.X, size.Y)
	dc.ClearWithColor(gg.White)

	bottom := float64(size.Y) / 3
	if graphic != nil {
		b := graphic.Bounds()
		span := opts.SheetWidth / 2
		x := (span - b.Dx()) / 2
		y := int(float64(size.Y)/3 - float64(b.Dy())/2)
		dc.DrawImage(gg.ImageBufFromImage(graphic), float64(x), float64(y))
		bottom = float64(y + b.Dy())
	}

	if err := drawText(dc, opts.Text, bottom); err != nil {
		dc.Close()
		return nil, err
	}
	return dc, nil
}

// loadGraphic returns the cover graphic scaled to width, or nil for none.
func loadGraphic(opts Options, width int) (image.Image, error) {
	if opts.GraphicPath == "" {
		switch opts.Style {
		case "", StyleBoard:
			return drawBoard(width)
		case StyleNone:
			return nil, nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, opts.Style)
		}
	}

	f, err := os.Open(opts.GraphicPath) // #nosec G304 -- user-provided cover
	if err != nil {
		return nil, fmt.Errorf("opening cover graphic: %w", err)
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding cover graphic: %w", err)
	}
	return scale(src, width), nil
}

// scale resizes src to width, keeping its aspect ratio.
func scale(src image.Image, width int) image.Image {
	b := src.Bounds()
	height := int(float64(width) * float64(b.Dy()) / float64(b.Dx()))
	dst := image.NewRGBA(image.Rect(0, 0, width, max(height, 1)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// drawBoard draws a corner of a 9x9 board with a classic shape on it.
func drawBoard(width int) (image.Image, error) {
	const lines = 9
	dc := gg.NewContext(width, width)
	defer dc.Close()

	cell := float64(width) / lines
	off := cell / 2
	dc.SetRGB(0.86, 0.70, 0.42)
	dc.DrawRectangle(0, 0, float64(width), float64(width))
	if err := dc.Fill(); err != nil {
		return nil, err
	}

	dc.SetColor(color.Black)
	dc.SetLineWidth(max(1, float64(width)/400))
	for i := range lines {
		p := off + float64(i)*cell
		dc.DrawLine(off, p, off+cell*(lines-1), p)
		dc.DrawLine(p, off, p, off+cell*(lines-1))
	}
	if err := dc.Stroke(); err != nil {
		return nil, err
	}

	stones := []struct {
		x, y  int
		black bool
	}{
		{2, 2, true}, {3, 2, true}, {4, 3, true}, {2, 4, true},
		{3, 3, false}, {3, 4, false}, {4, 4, false}, {5, 5, true},
		{6, 2, false},
	}
	for _, s := range stones {
		cx, cy := off+float64(s.x)*cell, off+float64(s.y)*cell
		dc.DrawCircle(cx, cy, cell*0.47)
		if s.black {
			dc.SetColor(color.Black)
		} else {
			dc.SetColor(color.White)
		}
		if err := dc.Fill(); err != nil {
			return nil, err
		}
		if !s.black {
			dc.SetColor(color.Black)
			dc.DrawCircle(cx, cy, cell*0.47)
			if err := dc.Stroke(); err != nil {
				return nil, err
			}
		}
	}
	return dc.Image(), nil
}

func drawText(dc *gg.Context, t Text, top float64) error {
	if t.Title == "" && len(t.Lines) == 0 {
		return nil
	}
	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return fmt.Errorf("loading cover font: %w", err)
	}
	defer src.Close()

	cx := float64(dc.Width()) / 2
	y := top + float64(layout.DPI)/3

	if t.Title != "" {
		face := src.Face(float64(layout.DPI) / 3)
		dc.SetFont(face)
		dc.SetColor(titleInk)
		dc.DrawStringAnchored(t.Title, cx, y+face.Metrics().Ascent, 0.5, 0)
		y += (face.Metrics().Ascent + face.Metrics().Descent) * 1.5
	}

	face := src.Face(float64(layout.DPI) / 6)
	dc.SetFont(face)
	dc.SetColor(subtitleInk)
	for _, line := range t.Lines {
		dc.DrawStringAnchored(line, cx, y+face.Metrics().Ascent, 0.5, 0)
		y += (face.Metrics().Ascent + face.Metrics().Descent) * 1.3
	}
	return nil
}
