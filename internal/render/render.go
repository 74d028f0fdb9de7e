// Package render rasterizes planned pages on a bounded worker pool.
//
// Pages are independent: each worker draws one page on its own canvas with
// a renderer taken from the pool, writes a temporary PNG and records the
// path at the page's position. The first failure cancels the batch.
package render

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gogpu/gg"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-tsumego-pdf/internal/diagram"
	"github.com/alnah/go-tsumego-pdf/internal/fileutil"
	"github.com/alnah/go-tsumego-pdf/internal/layout"
)

// Sentinel errors for page rendering.
var (
	ErrRender       = errors.New("render failed")
	ErrSizeMismatch = errors.New("diagram size differs from its plan")
)

var pageNumberInk = color.RGBA{128, 128, 128, 255}

// Counter counts rendered pages across concurrent batches.
type Counter struct {
	n atomic.Int64
}

func (c *Counter) Add(n int64) { c.n.Add(n) }

func (c *Counter) Load() int64 { return c.n.Load() }

// Options control one render batch.
type Options struct {
	// Key draws solution marks.
	Key bool

	// PageNumbers stamps each page's number centered at PageNumberY (top of
	// the text), shifted by PageNumberOffset pixels: right on odd pages,
	// left on even pages.
	PageNumbers      bool
	PageNumberY      int
	PageNumberOffset int
	// PageNumberHeight is the text height in pixels.
	PageNumberHeight float64

	// Dir receives the temporary PNGs; empty means the system temp dir.
	Dir string

	// Counter, when set, is incremented once per finished page.
	Counter *Counter
}

// Renderer renders page plans.
type Renderer struct {
	pool    *Pool
	workers int
	logger  *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithWorkers sets the concurrency ceiling. Zero or less means the pool size.
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Renderer drawing with renderers from pool.
func New(pool *Pool, opts ...Option) *Renderer {
	r := &Renderer{
		pool:    pool,
		workers: pool.Size(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws every page and returns the temporary PNG paths in page
// order. On error no path survives: files already written are removed.
func (r *Renderer) Render(ctx context.Context, pages []layout.PagePlan, opts Options) ([]string, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	start := time.Now()
	workers := min(r.workers, len(pages))
	r.logger.Debug("render batch starting", "pages", len(pages), "workers", workers, "key", opts.Key)

	paths := make([]string, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			dr, err := r.pool.Acquire(gctx)
			if err != nil {
				return err
			}
			defer r.pool.Release(dr)

			path, err := r.renderPage(dr, page, opts)
			if err != nil {
				return fmt.Errorf("page %d: %w", page.Number, err)
			}
			paths[i] = path

			if opts.Counter != nil {
				opts.Counter.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		fileutil.RemoveAll(paths)
		r.logger.Debug("render batch failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	r.logger.Debug("render batch finished", "pages", len(pages), "duration", time.Since(start))
	return paths, nil
}

func (r *Renderer) renderPage(dr DiagramRenderer, page layout.PagePlan, opts Options) (string, error) {
	dc := gg.NewContext(page.Width, page.Height)
	defer dc.Close()
	dc.ClearWithColor(gg.White)

	for _, item := range page.Items() {
		img, err := dr.Render(diagram.Request{
			Problem:     item.Problem,
			Width:       item.Width,
			Orientation: item.Orientation,
			ToPlay:      item.ToPlay,
			StateToPlay: item.StateToPlay,
			Key:         opts.Key,
		})
		if err != nil {
			return "", fmt.Errorf("%s: %w", item.Problem.Selection, err)
		}
		if got := img.Bounds().Size(); got != item.Size {
			return "", fmt.Errorf("%w: %s is %v, planned %v", ErrSizeMismatch, item.Problem.Selection, got, item.Size)
		}
		dc.DrawImage(gg.ImageBufFromImage(img), float64(item.X), float64(item.Y))
	}

	if opts.PageNumbers {
		stampPageNumber(dc, dr, page, opts)
	}

	path, _, err := fileutil.WriteTempFile(opts.Dir, "png", func(w io.Writer) error {
		return dc.EncodePNG(w)
	})
	return path, err
}

// PageNumberX returns the horizontal center of a page number.
func PageNumberX(width, number, offset int) int {
	if number%2 == 0 {
		return width/2 - offset
	}
	return width/2 + offset
}

func stampPageNumber(dc *gg.Context, dr DiagramRenderer, page layout.PagePlan, opts Options) {
	face := dr.Face(opts.PageNumberHeight)
	if face == nil {
		return
	}
	s := strconv.Itoa(page.Number)
	x := float64(PageNumberX(page.Width, page.Number, opts.PageNumberOffset)) - face.Advance(s)/2
	dc.SetFont(face)
	dc.SetColor(pageNumberInk)
	dc.DrawString(s, x, float64(opts.PageNumberY)+face.Metrics().Ascent)
}

// Compile-time interface implementation check.
var _ DiagramRenderer = (*diagram.Renderer)(nil)
