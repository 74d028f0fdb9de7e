// Package impose arranges rendered pages onto double-sided booklet sheets.
//
// A booklet is printed on sheets folded once down the middle; each sheet
// carries four logical pages, two per side. Sheets are grouped into
// signatures, nested stacks that are folded together and then bound. Plan
// computes which logical page lands on which half of which side; Imposer
// composites the sides and writes the PDFs.
package impose

import (
	"errors"
	"fmt"
)

// Sentinel errors for imposition.
var (
	ErrNoPages = errors.New("no pages to impose")

	// ErrInvalidSignatureCount reports a signature count below one or, for a
	// printer's spread, above the number of sheets. The bound is sheets, not
	// pages: every signature holds at least one sheet of four pages, so 5
	// pages pad to 2 sheets and allow at most 2 signatures.
	ErrInvalidSignatureCount = errors.New("invalid signature count")
)

// Slot contents besides page indices.
const (
	BlankSlot = -1
	CoverSlot = -2
)

// NoSlot marks an empty half of a side.
const NoSlot = -1

// PlanOptions control imposition planning.
type PlanOptions struct {
	// PrintersSpread orders pages for duplex printing and folding. When
	// false, pages are laid out in reading order as a reader would see the
	// open booklet.
	PrintersSpread bool

	// Signatures is the number of nested stacks; must be >= 1.
	Signatures int

	// Cover adds a cover page.
	Cover bool

	// EmbedCover prints the cover on the outer sheet of the first signature
	// instead of a separate sheet. Only honored for multi-signature printer's
	// spreads.
	EmbedCover bool
}

// Side is one face of a physical sheet. Left and Right index Plan.Slots,
// or are NoSlot.
type Side struct {
	Left, Right int
	Signature   int
	// BindMarks is set on the innermost side of each signature.
	BindMarks bool
}

// Run is the inclusive slot range of one signature.
type Run struct {
	Start, End int
}

// Sheets returns the number of physical sheets in the run.
func (r Run) Sheets() int { return (r.End - r.Start + 1) / 4 }

// Plan is the complete imposition of a page sequence.
type Plan struct {
	// Slots is the padded page sequence: page indices, BlankSlot or
	// CoverSlot.
	Slots []int

	// Sides in print order.
	Sides []Side

	// Runs holds one entry per signature in printer's spread mode.
	Runs []Run

	// CoverEmbedded reports that the cover occupies slot 0.
	CoverEmbedded bool

	// SeparateCover reports that the cover is printed on its own sheet
	// ahead of the sides.
	SeparateCover bool

	printersSpread bool
}

// Content returns what fills slot i, or BlankSlot for NoSlot.
func (p *Plan) Content(i int) int {
	if i < 0 || i >= len(p.Slots) {
		return BlankSlot
	}
	return p.Slots[i]
}

// IsBlank reports whether a side shows nothing.
func (p *Plan) IsBlank(s Side) bool {
	return p.Content(s.Left) == BlankSlot && p.Content(s.Right) == BlankSlot
}

// Signatures returns the number of output signatures.
func (p *Plan) Signatures() int {
	if !p.printersSpread {
		return 1
	}
	return len(p.Runs)
}

// NewPlan imposes n pages.
func NewPlan(n int, opts PlanOptions) (*Plan, error) {
	if n <= 0 {
		return nil, ErrNoPages
	}
	if opts.Signatures < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSignatureCount, opts.Signatures)
	}

	embed := opts.Cover && opts.EmbedCover && opts.PrintersSpread && opts.Signatures > 1
	p := &Plan{
		CoverEmbedded:  embed,
		SeparateCover:  opts.Cover && !embed,
		printersSpread: opts.PrintersSpread,
	}

	if embed {
		p.Slots = append(p.Slots, CoverSlot, BlankSlot)
	}
	for i := range n {
		p.Slots = append(p.Slots, i)
	}
	p.pad()
	if embed && p.Slots[len(p.Slots)-1] != BlankSlot {
		// The outer back cover stays blank.
		p.Slots = append(p.Slots, BlankSlot, BlankSlot, BlankSlot, BlankSlot)
	}

	if !opts.PrintersSpread {
		p.digital()
		return p, nil
	}

	sheets := len(p.Slots) / 4
	if opts.Signatures > sheets {
		return nil, fmt.Errorf("%w: %d signatures for %d sheets", ErrInvalidSignatureCount, opts.Signatures, sheets)
	}
	p.partition(opts.Signatures)
	for sig, run := range p.Runs {
		p.Sides = append(p.Sides, saddleStitch(run, sig)...)
	}
	return p, nil
}

func (p *Plan) pad() {
	for len(p.Slots)%4 != 0 {
		p.Slots = append(p.Slots, BlankSlot)
	}
}

// partition splits the sheets into contiguous runs; sheets left over by the
// division go to the last signature.
func (p *Plan) partition(signatures int) {
	sheets := len(p.Slots) / 4
	per := sheets / signatures
	extra := sheets - per*signatures

	for sig := range signatures {
		start := sig * per * 4
		end := (sig+1)*per*4 - 1
		if sig == signatures-1 {
			end += extra * 4
		}
		p.Runs = append(p.Runs, Run{Start: start, End: end})
	}
}

// saddleStitch orders the sides of one signature. Side k pairs the k-th
// slot from the front with the k-th slot from the back; the outer half
// alternates between left and right as sheets are turned over.
func saddleStitch(r Run, sig int) []Side {
	n := (r.End - r.Start + 1) / 2
	sides := make([]Side, n)
	for k := range n {
		front, back := r.Start+k, r.End-k
		if k%2 == 0 {
			sides[k] = Side{Left: back, Right: front, Signature: sig}
		} else {
			sides[k] = Side{Left: front, Right: back, Signature: sig}
		}
	}
	sides[n-1].BindMarks = true
	return sides
}

// digital lays out spreads in reading order: the first page alone on the
// right, then facing pairs. Blank spreads are dropped.
func (p *Plan) digital() {
	last := len(p.Slots) - 1
	sides := []Side{{Left: last, Right: 0}}
	for i := 1; i < last; i += 2 {
		sides = append(sides, Side{Left: i, Right: i + 1})
	}
	if p.Slots[last] != BlankSlot {
		sides[0] = Side{Left: NoSlot, Right: 0}
		sides = append(sides, Side{Left: last, Right: NoSlot})
	}

	for _, s := range sides {
		if !p.IsBlank(s) {
			p.Sides = append(p.Sides, s)
		}
	}
}
