// Package diagram rasterizes single tsumego diagrams: a cropped board
// window with stones, optional solution marks and a label underneath.
//
// A Renderer owns its font faces and stone sprites, keyed by size. It is not
// safe for concurrent use; give each worker its own.
package diagram

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/alnah/go-tsumego-pdf/internal/layout"
	"github.com/alnah/go-tsumego-pdf/internal/puzzle"
)

// Board drawing constants, in pixels at layout.DPI.
const (
	boardPadding = 2
	labelPadTop  = layout.DPI / 16
	minCrop      = 15 // rows at or above which the full height is kept
)

var (
	lineColor  = color.RGBA{128, 128, 128, 255}
	DefaultInk = color.RGBA{128, 128, 128, 255}
)

// ErrNoProblem is returned when a request carries no problem.
var ErrNoProblem = errors.New("diagram: nil problem")

// Style holds the settings shared by every diagram of a document.
type Style struct {
	// DisplayWidth is the maximum number of board columns shown.
	DisplayWidth int
	// Label adds "problem N" text below the board.
	Label bool
	// CollectionLabel adds the collection name above the problem text.
	CollectionLabel bool
	// TextHeight is the label text height in inches.
	TextHeight float64
	// TextColor and KeyTextColor color the label of problem and key
	// diagrams. Zero values mean DefaultInk.
	TextColor    color.RGBA
	KeyTextColor color.RGBA
}

// DefaultStyle mirrors the classic worksheet look.
func DefaultStyle() Style {
	return Style{
		DisplayWidth: 12,
		Label:        true,
		TextHeight:   0.2,
		TextColor:    DefaultInk,
		KeyTextColor: DefaultInk,
	}
}

// Request describes one diagram.
type Request struct {
	Problem     *puzzle.Problem
	Width       int
	Orientation puzzle.Orientation
	ToPlay      puzzle.Color
	StateToPlay bool
	// Key draws solution marks and numbered key moves.
	Key bool
}

type spriteKey struct {
	cell  int
	color puzzle.Color
}

// Renderer draws diagrams with one style.
type Renderer struct {
	style   Style
	source  *text.FontSource
	faces   map[float64]text.Face
	sprites map[spriteKey]*gg.ImageBuf
}

// NewRenderer loads the label font.
func NewRenderer(style Style) (*Renderer, error) {
	if style.DisplayWidth <= 0 {
		style.DisplayWidth = puzzle.BoardSize
	}
	if style.TextColor == (color.RGBA{}) {
		style.TextColor = DefaultInk
	}
	if style.KeyTextColor == (color.RGBA{}) {
		style.KeyTextColor = DefaultInk
	}

	src, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("diagram: loading font: %w", err)
	}
	return &Renderer{
		style:   style,
		source:  src,
		faces:   make(map[float64]text.Face),
		sprites: make(map[spriteKey]*gg.ImageBuf),
	}, nil
}

// Close releases the font source.
func (r *Renderer) Close() error {
	return r.source.Close()
}

// Face returns a cached face for a pixel size.
func (r *Renderer) Face(px float64) text.Face {
	f, ok := r.faces[px]
	if !ok {
		f = r.source.Face(px)
		r.faces[px] = f
	}
	return f
}

// CellSize is the stone size in pixels for a diagram width.
func (r *Renderer) CellSize(width int) int {
	return width / min(puzzle.BoardSize, r.style.DisplayWidth)
}

// frame is the crop window in full-board pixels.
type frame struct {
	cell   int
	window image.Rectangle
	label  int
}

func (r *Renderer) frame(req Request) frame {
	cell := r.CellSize(req.Width)
	full := cell*puzzle.BoardSize + 2*boardPadding

	extent := req.Orientation.ApplyExtent(req.Problem.Board.Extent)
	rows := extent.Y + 1
	if extent.Y == 0 || rows >= minCrop {
		rows = puzzle.BoardSize
	}
	cols := min(r.style.DisplayWidth, puzzle.BoardSize)

	w := min(full, cell*cols+boardPadding)
	h := min(full, cell*rows+boardPadding)
	if rows == puzzle.BoardSize {
		h = full
	}
	if cols == puzzle.BoardSize {
		w = full
	}

	top, left := req.Orientation.Corner()
	x0, y0 := 0, 0
	if !left {
		x0 = full - w
	}
	if !top {
		y0 = full - h
	}
	return frame{
		cell:   cell,
		window: image.Rect(x0, y0, x0+w, y0+h),
		label:  r.labelHeight(),
	}
}

func (r *Renderer) labelHeight() int {
	if !r.style.Label {
		return 0
	}
	lines := 1
	px := r.style.TextHeight * layout.DPI
	if r.style.CollectionLabel {
		lines = 2
		px /= 2
	}
	m := r.Face(px).Metrics()
	return int(math.Ceil(m.Ascent+m.Descent))*lines + labelPadTop
}

// Size returns the pixel size of a diagram and its cell size. It depends
// only on the problem, width and orientation, never on Key.
func (r *Renderer) Size(req Request) (image.Point, int, error) {
	if req.Problem == nil {
		return image.Point{}, 0, ErrNoProblem
	}
	f := r.frame(req)
	return image.Pt(f.window.Dx(), f.window.Dy()+f.label), f.cell, nil
}
