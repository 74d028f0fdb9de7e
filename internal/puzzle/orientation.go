package puzzle

import "image"

// Orientation is a board symmetry. Transpose swaps the axes and is applied
// first; FlipX then mirrors top to bottom and FlipY left to right.
type Orientation struct {
	FlipX     bool
	FlipY     bool
	Transpose bool
}

// Apply maps a board point through the orientation.
func (o Orientation) Apply(p image.Point) image.Point {
	if o.Transpose {
		p.X, p.Y = p.Y, p.X
	}
	if o.FlipX {
		p.Y = BoardSize - 1 - p.Y
	}
	if o.FlipY {
		p.X = BoardSize - 1 - p.X
	}
	return p
}

// Corner reports which board corner the position's origin lands in after
// the orientation is applied.
// Positions are stored in the top-left corner, which transposing keeps.
func (o Orientation) Corner() (top, left bool) {
	return !o.FlipX, !o.FlipY
}

// ApplyExtent returns the stone extent measured from the oriented corner.
func (o Orientation) ApplyExtent(e image.Point) image.Point {
	if o.Transpose {
		e.X, e.Y = e.Y, e.X
	}
	return e
}
