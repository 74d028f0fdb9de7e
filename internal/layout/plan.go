package layout

import "image"

// Plan places items in order, filling columns top to bottom and pages left
// to right. An item that would cross the bottom margin moves to the next
// column (or page); an item taller than a whole column is still placed in
// an empty column.
func Plan(items []DiagramPlan, g Geometry, policy Policy) []PagePlan {
	if len(items) == 0 {
		return nil
	}
	columns := max(1, g.Columns)

	var pages []PagePlan
	newPage := func() *PagePlan {
		pages = append(pages, PagePlan{
			Number:  len(pages) + 1,
			Width:   g.Width,
			Height:  g.Height,
			Columns: []Column{{X: g.ColumnX(0)}},
		})
		return &pages[len(pages)-1]
	}

	page := newPage()
	col := 0
	y := g.MarginTop

	for _, item := range items {
		top := y
		if policy.Block {
			top = snapUp(y, item.CellSize)
		}

		if len(page.Columns[col].Items) > 0 && top+item.Size.Y > g.bottom() {
			finishColumn(&page.Columns[col], g, policy)
			col++
			if col >= columns {
				page = newPage()
				col = 0
			} else {
				page.Columns = append(page.Columns, Column{X: g.ColumnX(col)})
			}
			y = g.MarginTop
			top = y
			if policy.Block {
				top = snapUp(y, item.CellSize)
			}
		}

		item.X = page.Columns[col].X
		item.Y = top
		item.Placed = true
		page.Columns[col].Items = append(page.Columns[col].Items, item)
		y = top + item.Size.Y + g.SpacingBelow
	}
	finishColumn(&page.Columns[col], g, policy)

	return pages
}

// finishColumn applies proportional spacing to a completed column.
func finishColumn(c *Column, g Geometry, policy Policy) {
	if !policy.Proportional || len(c.Items) < 2 {
		return
	}
	gaps, ok := proportionalGaps(heights(c.Items), g.bottom()-g.MarginTop)
	if !ok {
		return
	}

	y := g.MarginTop
	prevBottom := g.MarginTop
	for i := range c.Items {
		it := &c.Items[i]
		top := y
		if policy.Block && it.CellSize > 0 {
			if down := top / it.CellSize * it.CellSize; down >= prevBottom {
				top = down
			}
		}
		it.Y = top
		prevBottom = top + it.Size.Y
		if i < len(gaps) {
			y += it.Size.Y + gaps[i]
		}
	}
}

// proportionalGaps splits the leftover height of a column into len(h)-1
// gaps whose sum equals available - sum(h) exactly. The integer remainder
// goes one pixel at a time to the first gaps. It reports false when the
// items do not fit.
func proportionalGaps(h []int, available int) ([]int, bool) {
	if len(h) < 2 {
		return nil, false
	}
	leftover := available
	for _, v := range h {
		leftover -= v
	}
	if leftover < 0 {
		return nil, false
	}

	n := len(h) - 1
	gaps := make([]int, n)
	for i := range gaps {
		gaps[i] = leftover / n
		if i < leftover%n {
			gaps[i]++
		}
	}
	return gaps, true
}

func heights(items []DiagramPlan) []int {
	h := make([]int, len(items))
	for i, it := range items {
		h[i] = it.Size.Y
	}
	return h
}

func snapUp(y, cell int) int {
	if cell <= 0 {
		return y
	}
	return (y + cell - 1) / cell * cell
}

// DefaultSquareRatio is the aspect ratio band, [5/6, 6/5], inside which a
// stone bounding box counts as square.
const DefaultSquareRatio = 5.0 / 6.0

// ResolveTranspose decides whether a diagram's axes are swapped. A stone
// box wider than the display width is always transposed and a near-square
// box never is. A box taller than the display width is never transposed
// either, even when requested: its height would become the shown width and
// the display window would crop stones. Otherwise the requested flag is
// kept. A non-positive ratio means DefaultSquareRatio.
func ResolveTranspose(extent image.Point, displayWidth int, ratio float64, requested bool) bool {
	if ratio <= 0 {
		ratio = DefaultSquareRatio
	}
	if extent.X > displayWidth {
		return true
	}
	if extent.X > 0 && extent.Y > 0 {
		lo, hi := ratio, 1/ratio
		if lo > hi {
			lo, hi = hi, lo
		}
		aspect := float64(extent.X) / float64(extent.Y)
		if aspect >= lo && aspect <= hi {
			return false
		}
	}
	if extent.Y > displayWidth {
		return false
	}
	return requested
}
