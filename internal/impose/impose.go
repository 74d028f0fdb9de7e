package impose

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gogpu/gg"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-tsumego-pdf/internal/fileutil"
	"github.com/alnah/go-tsumego-pdf/internal/layout"
	"github.com/alnah/go-tsumego-pdf/internal/pdfwriter"
)

// Bind marks along the fold of each signature's innermost side.
const (
	bindMarkCount = 6
	bindMarkStart = layout.DPI / 2
)

var (
	bindMarkRadius = float64(layout.DPI) / 64
	bindMarkInk    = color.RGBA{128, 128, 128, 255}
	blankMarkInk   = color.RGBA{245, 245, 245, 255}
)

// Options control one imposition.
type Options struct {
	// Sheet is the physical sheet size in points.
	Sheet pdfwriter.Size

	// CenterPadding is the gutter between facing pages, in pixels.
	CenterPadding int

	PrintersSpread bool
	Signatures     int

	// CoverPath is a PNG half a sheet wide; empty means no cover.
	CoverPath  string
	EmbedCover bool

	// Out is the output path. Multi-signature booklets write
	// <base>-signature-N.pdf and <base>-cover.pdf next to it.
	Out string

	// Dir receives composited sheets; empty means the system temp dir.
	Dir string
}

// Imposer composites booklet sheets and writes them as PDFs.
type Imposer struct {
	workers int
	logger  *slog.Logger
}

// Option configures an Imposer.
type Option func(*Imposer)

// WithWorkers sets how many sheets are composited at once.
func WithWorkers(n int) Option {
	return func(im *Imposer) {
		if n > 0 {
			im.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(im *Imposer) {
		if l != nil {
			im.logger = l
		}
	}
}

// New creates an Imposer.
func New(opts ...Option) *Imposer {
	im := &Imposer{workers: 1, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// document is one output PDF and the composited sheets it holds.
type document struct {
	path   string
	sheets []string
}

// Impose composites the booklet for pages, given in reading order, and
// writes every output file next to its destination without making any of
// them visible. The caller commits or discards the result. On error nothing
// is left behind.
func (im *Imposer) Impose(ctx context.Context, pages []string, opts Options) ([]*fileutil.Staged, error) {
	plan, err := NewPlan(len(pages), PlanOptions{
		PrintersSpread: opts.PrintersSpread,
		Signatures:     opts.Signatures,
		Cover:          opts.CoverPath != "",
		EmbedCover:     opts.EmbedCover,
	})
	if err != nil {
		return nil, err
	}
	if err := opts.Sheet.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	im.logger.Debug("imposing booklet",
		"pages", len(pages),
		"slots", len(plan.Slots),
		"sides", len(plan.Sides),
		"signatures", plan.Signatures(),
		"cover_embedded", plan.CoverEmbedded)

	sides := plan.Sides
	if plan.SeparateCover {
		cover := []Side{{Left: NoSlot, Right: NoSlot}}
		if opts.PrintersSpread {
			// back of the cover sheet
			cover = append(cover, Side{Left: NoSlot, Right: NoSlot})
		}
		sides = append(cover, sides...)
	}

	c := &compositor{
		plan:  plan,
		pages: pages,
		opts:  opts,
		w:     layout.PointsToPixels(opts.Sheet.Width),
		h:     layout.PointsToPixels(opts.Sheet.Height),
	}
	sheets, err := im.compositeAll(ctx, c, sides)
	defer fileutil.RemoveAll(sheets)
	if err != nil {
		return nil, err
	}

	docs := split(plan, opts, sheets)
	staged := make([]*fileutil.Staged, 0, len(docs))
	for _, d := range docs {
		pdf, err := pdfwriter.FromImages(d.sheets, opts.Sheet)
		if err != nil {
			fileutil.DiscardAll(staged)
			return nil, err
		}
		s, err := fileutil.Stage(d.path, pdf.Write)
		if err != nil {
			fileutil.DiscardAll(staged)
			return nil, err
		}
		staged = append(staged, s)
	}
	im.logger.Debug("booklet staged", "files", len(staged), "duration", time.Since(start))
	return staged, nil
}

// compositeAll renders every side to a temporary PNG, in order. The cover
// side, when separate, is sides[0].
func (im *Imposer) compositeAll(ctx context.Context, c *compositor, sides []Side) ([]string, error) {
	paths := make([]string, len(sides))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(im.workers, len(sides)))

	for i, side := range sides {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			coverSide := c.plan.SeparateCover && i == 0
			path, err := c.side(side, coverSide)
			if err != nil {
				return fmt.Errorf("sheet side %d: %w", i+1, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return paths, err
	}
	return paths, nil
}

// split assigns composited sheets to output files.
func split(plan *Plan, opts Options, sheets []string) []document {
	multi := opts.PrintersSpread && plan.Signatures() > 1
	if !multi {
		return []document{{path: opts.Out, sheets: sheets}}
	}

	base := strings.TrimSuffix(opts.Out, filepath.Ext(opts.Out))
	var docs []document
	if plan.SeparateCover {
		docs = append(docs, document{path: base + "-cover.pdf", sheets: sheets[:2]})
		sheets = sheets[2:]
	}
	for sig := range plan.Signatures() {
		docs = append(docs, document{path: base + "-signature-" + strconv.Itoa(sig) + ".pdf"})
	}
	for i, s := range plan.Sides {
		d := &docs[len(docs)-plan.Signatures()+s.Signature]
		d.sheets = append(d.sheets, sheets[i])
	}
	return docs
}

type compositor struct {
	plan  *Plan
	pages []string
	opts  Options
	w, h  int
}

// load returns the image filling slot, or nil for a blank.
func (c *compositor) load(slot int) (*gg.ImageBuf, bool, error) {
	switch content := c.plan.Content(slot); content {
	case BlankSlot:
		return nil, false, nil
	case CoverSlot:
		img, err := gg.LoadImage(c.opts.CoverPath)
		return img, true, err
	default:
		img, err := gg.LoadImage(c.pages[content])
		return img, false, err
	}
}

func (c *compositor) side(s Side, coverSide bool) (string, error) {
	dc := gg.NewContext(c.w, c.h)
	defer dc.Close()
	dc.ClearWithColor(gg.White)

	blank := true
	if coverSide {
		img, err := gg.LoadImage(c.opts.CoverPath)
		if err != nil {
			return "", fmt.Errorf("loading cover: %w", err)
		}
		dc.DrawImage(img, float64(snapX(c.w/2)), 0)
		blank = false
	}

	left, _, err := c.load(s.Left)
	if err != nil {
		return "", err
	}
	if left != nil {
		x := float64(c.w)/2 - float64(c.opts.CenterPadding)/2 - float64(left.Width())
		dc.DrawImage(left, float64(snapX(int(x))), 0)
		blank = false
	}

	right, isCover, err := c.load(s.Right)
	if err != nil {
		return "", err
	}
	if right != nil {
		x := c.w / 2
		if !isCover {
			x = int(float64(c.w)/2 + float64(c.opts.CenterPadding)/2)
		}
		dc.DrawImage(right, float64(snapX(x)), 0)
		blank = false
	}

	if blank {
		if err := c.blankMark(dc); err != nil {
			return "", err
		}
	}
	if s.BindMarks {
		if err := c.bindMarks(dc); err != nil {
			return "", err
		}
	}

	path, _, err := fileutil.WriteTempFile(c.opts.Dir, "png", func(w io.Writer) error {
		return dc.EncodePNG(w)
	})
	return path, err
}

// snapX aligns x to the 72 DPI grid of the PDF.
func snapX(x int) int {
	return int(float64(int(float64(x)/layout.DPI*72)) * (float64(layout.DPI) / 72))
}

// blankMark keeps print drivers from dropping an empty side.
func (c *compositor) blankMark(dc *gg.Context) error {
	r := float64(layout.PointsToPixels(5))
	dc.SetColor(blankMarkInk)
	dc.DrawCircle(float64(c.w)/2+2*r, float64(c.h)/2, r)
	return dc.Fill()
}

// BindMarkYs returns the vertical centers of the bind marks on a sheet of
// height h pixels.
func BindMarkYs(h int) []float64 {
	spacing := float64(h-2*bindMarkStart) / (bindMarkCount - 1)
	ys := make([]float64, bindMarkCount)
	for i := range ys {
		ys[i] = bindMarkStart + float64(i)*spacing
	}
	return ys
}

func (c *compositor) bindMarks(dc *gg.Context) error {
	dc.SetColor(bindMarkInk)
	for _, y := range BindMarkYs(c.h) {
		dc.DrawCircle(float64(c.w)/2, y, bindMarkRadius)
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	return nil
}
