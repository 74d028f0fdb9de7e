package diagram

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gg"

	"github.com/alnah/go-tsumego-pdf/internal/layout"
	"github.com/alnah/go-tsumego-pdf/internal/puzzle"
)

var starPoints = []int{3, 9, 15}

// Render draws the diagram. The image always has the size reported by Size.
func (r *Renderer) Render(req Request) (image.Image, error) {
	size, _, err := r.Size(req)
	if err != nil {
		return nil, err
	}
	f := r.frame(req)

	dc := gg.NewContext(size.X, size.Y)
	defer dc.Close()
	dc.ClearWithColor(gg.White)

	b := &boardPainter{dc: dc, cell: f.cell, origin: f.window.Min}
	if err := b.grid(); err != nil {
		return nil, err
	}

	invert := req.ToPlay != req.Problem.Board.ToPlay
	for _, s := range req.Problem.Board.Stones {
		c := s.Color
		if invert {
			c = c.Opponent()
		}
		sprite, err := r.sprite(f.cell, c)
		if err != nil {
			return nil, err
		}
		x, y := b.corner(req.Orientation.Apply(s.At))
		dc.DrawImage(sprite, x, y)
	}

	if req.Key {
		if err := r.drawKey(b, req, invert); err != nil {
			return nil, err
		}
	}

	if r.style.Label {
		r.drawLabel(dc, req, f.window.Dy())
	}
	return dc.Image(), nil
}

type boardPainter struct {
	dc     *gg.Context
	cell   int
	origin image.Point
}

// center returns the pixel center of an oriented board point.
func (b *boardPainter) center(p image.Point) (float64, float64) {
	half := b.cell / 2
	return float64(boardPadding + half + p.X*b.cell - b.origin.X),
		float64(boardPadding + half + p.Y*b.cell - b.origin.Y)
}

func (b *boardPainter) corner(p image.Point) (float64, float64) {
	x, y := b.center(p)
	return x - float64(b.cell/2), y - float64(b.cell/2)
}

func (b *boardPainter) grid() error {
	dc := b.dc
	dc.SetColor(lineColor)
	dc.SetLineWidth(float64(max(1, layout.DPI/96)))

	last := puzzle.BoardSize - 1
	for i := range puzzle.BoardSize {
		x0, y0 := b.center(image.Pt(i, 0))
		x1, y1 := b.center(image.Pt(i, last))
		dc.DrawLine(x0, y0, x1, y1)

		x0, y0 = b.center(image.Pt(0, i))
		x1, y1 = b.center(image.Pt(last, i))
		dc.DrawLine(x0, y0, x1, y1)
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("diagram: drawing grid: %w", err)
	}

	radius := max(2, float64(b.cell)/10)
	for _, sx := range starPoints {
		for _, sy := range starPoints {
			x, y := b.center(image.Pt(sx, sy))
			dc.DrawCircle(x, y, radius)
		}
	}
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("diagram: drawing star points: %w", err)
	}
	return nil
}

// sprite returns the cached stone image for a cell size and color.
func (r *Renderer) sprite(cell int, c puzzle.Color) (*gg.ImageBuf, error) {
	key := spriteKey{cell: cell, color: c}
	if s, ok := r.sprites[key]; ok {
		return s, nil
	}

	sc := gg.NewContext(cell, cell)
	defer sc.Close()

	mid := float64(cell) / 2
	outline := max(1, float64(layout.DPI)/128)
	radius := mid - outline/2

	if c == puzzle.White {
		sc.SetColor(color.White)
	} else {
		sc.SetColor(color.Black)
	}
	sc.DrawCircle(mid, mid, radius)
	if err := sc.Fill(); err != nil {
		return nil, fmt.Errorf("diagram: drawing stone: %w", err)
	}
	sc.SetColor(color.Black)
	sc.SetLineWidth(outline)
	sc.DrawCircle(mid, mid, radius)
	if err := sc.Stroke(); err != nil {
		return nil, fmt.Errorf("diagram: drawing stone outline: %w", err)
	}

	s := gg.ImageBufFromImage(sc.Image())
	r.sprites[key] = s
	return s, nil
}

func (r *Renderer) drawKey(b *boardPainter, req Request, invert bool) error {
	dc := b.dc
	cell := float64(b.cell)

	for _, p := range req.Problem.Board.Solutions {
		x, y := b.center(req.Orientation.Apply(p))
		if req.ToPlay == puzzle.White {
			dc.SetColor(color.White)
			dc.DrawCircle(x, y, cell/4)
			if err := dc.Fill(); err != nil {
				return fmt.Errorf("diagram: drawing mark: %w", err)
			}
			dc.SetColor(color.Black)
			dc.SetLineWidth(cell / 16)
			dc.DrawCircle(x, y, cell/4)
		} else {
			d := cell * 0.3
			dc.SetColor(color.Black)
			dc.SetLineWidth(cell / 10)
			dc.DrawLine(x-d, y-d, x+d, y+d)
			dc.DrawLine(x-d, y+d, x+d, y-d)
		}
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("diagram: drawing mark: %w", err)
		}
	}

	dc.SetFont(r.Face(cell * 0.55))
	for _, k := range req.Problem.Board.KeyMoves {
		x, y := b.center(req.Orientation.Apply(k.At))
		ink := color.Color(color.Black)
		if k.Stone {
			stone := k.Color
			if invert {
				stone = stone.Opponent()
			}
			if stone == puzzle.Black {
				ink = color.White
			}
		} else {
			dc.SetColor(color.White)
			dc.DrawCircle(x, y, cell*0.4)
			if err := dc.Fill(); err != nil {
				return fmt.Errorf("diagram: drawing key move: %w", err)
			}
		}
		dc.SetColor(ink)
		dc.DrawStringAnchored(k.Label, x, y, 0.5, 0.35)
	}
	return nil
}

// LabelLines returns the text printed under a diagram, collection name
// first when enabled.
func (r *Renderer) LabelLines(req Request) []string {
	p := req.Problem
	s := fmt.Sprintf("problem %d", p.Problem)
	if p.SectionNumber > 0 {
		s = fmt.Sprintf("problem %d-%d", p.SectionNumber, p.Problem)
	}
	if req.StateToPlay || p.StateToPlay {
		s += fmt.Sprintf(", %s to play", req.ToPlay)
	}
	if r.style.CollectionLabel {
		return []string{p.CollectionLabel, s}
	}
	return []string{s}
}

func (r *Renderer) drawLabel(dc *gg.Context, req Request, boardHeight int) {
	px := r.style.TextHeight * layout.DPI
	lines := r.LabelLines(req)
	if len(lines) > 1 {
		px /= 2
	}
	face := r.Face(px)
	m := face.Metrics()

	ink := r.style.TextColor
	if req.Key {
		ink = r.style.KeyTextColor
	}
	dc.SetFont(face)
	dc.SetColor(ink)

	y := float64(boardHeight + labelPadTop)
	cx := float64(dc.Width()) / 2
	for _, line := range lines {
		dc.DrawString(line, cx-face.Advance(line)/2, y+m.Ascent)
		y += m.Ascent + m.Descent
	}
}
