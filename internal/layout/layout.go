// Package layout places variably-sized diagrams into page columns.
//
// Planning is pure and sequential: Plan never rasterizes and never rejects
// its input. All measures are raster pixels.
package layout

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/alnah/go-tsumego-pdf/internal/puzzle"
)

// ErrInvalidPlacement is returned by ParsePolicy for unknown method names.
var ErrInvalidPlacement = errors.New("invalid placement method")

// Policy selects how items are positioned inside a column.
type Policy struct {
	// Block snaps each item's top to a multiple of its cell size so grid
	// lines of neighboring diagrams line up across columns.
	Block bool
	// Proportional spreads a finished column's leftover height evenly
	// between its items.
	Proportional bool
}

// ParsePolicy accepts "default", "block", "proportional" and
// "block-proportional" (or "proportional-block"). Empty means "default".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return Policy{}, nil
	case "block":
		return Policy{Block: true}, nil
	case "proportional":
		return Policy{Proportional: true}, nil
	case "block-proportional", "proportional-block":
		return Policy{Block: true, Proportional: true}, nil
	default:
		return Policy{}, fmt.Errorf("%w: %q (want default, block, proportional or block-proportional)", ErrInvalidPlacement, s)
	}
}

func (p Policy) String() string {
	switch {
	case p.Block && p.Proportional:
		return "block-proportional"
	case p.Block:
		return "block"
	case p.Proportional:
		return "proportional"
	default:
		return "default"
	}
}

// Geometry describes the printable page in pixels.
type Geometry struct {
	Width, Height int

	MarginLeft, MarginTop, MarginRight, MarginBottom int

	Columns       int
	ColumnSpacing int
	// SpacingBelow is the vertical gap left under every item.
	SpacingBelow int
}

// ColumnWidth is the width available to a single diagram.
func (g Geometry) ColumnWidth() int {
	n := max(1, g.Columns)
	return (g.Width - g.MarginLeft - g.MarginRight - g.ColumnSpacing*(n-1)) / n
}

// ColumnX is the left edge of column i.
func (g Geometry) ColumnX(i int) int {
	return g.MarginLeft + i*(g.ColumnWidth()+g.ColumnSpacing)
}

// bottom is the lowest Y an item may reach.
func (g Geometry) bottom() int { return g.Height - g.MarginBottom }

// DiagramPlan is one diagram to place. Size and CellSize are fixed before
// planning; X, Y and Placed are set by Plan.
type DiagramPlan struct {
	Problem     *puzzle.Problem
	Orientation puzzle.Orientation
	// ToPlay is the color moving in the printed diagram.
	ToPlay puzzle.Color
	// StateToPlay prints the color to play in the label.
	StateToPlay bool

	// Width is the diagram width requested from the renderer; Size.X may
	// be smaller once the board is cropped.
	Width    int
	Size     image.Point
	CellSize int

	X, Y   int
	Placed bool
}

// Bounds returns the placed rectangle.
func (d DiagramPlan) Bounds() image.Rectangle {
	return image.Rect(d.X, d.Y, d.X+d.Size.X, d.Y+d.Size.Y)
}

// Column is a run of diagrams kept top to bottom.
type Column struct {
	X     int
	Items []DiagramPlan
}

// PagePlan is one page. Number is 1-based in generation order.
type PagePlan struct {
	Number        int
	Width, Height int
	Columns       []Column
}

// Items returns the page's diagrams in placement order.
func (p PagePlan) Items() []DiagramPlan {
	var items []DiagramPlan
	for _, c := range p.Columns {
		items = append(items, c.Items...)
	}
	return items
}

// ItemCount returns the number of diagrams on the page.
func (p PagePlan) ItemCount() int {
	n := 0
	for _, c := range p.Columns {
		n += len(c.Items)
	}
	return n
}

// DPI is the raster resolution of every page image.
const DPI = 300

// Inches converts inches to whole pixels.
func Inches(in float64) int {
	return int(in * DPI)
}

// PointsToPixels converts PDF points (1/72 inch) to whole pixels.
func PointsToPixels(pt float64) int {
	return int(pt / 72 * DPI)
}
