package tsumegopdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-tsumego-pdf/internal/cover"
	"github.com/alnah/go-tsumego-pdf/internal/diagram"
	"github.com/alnah/go-tsumego-pdf/internal/fileutil"
	"github.com/alnah/go-tsumego-pdf/internal/impose"
	"github.com/alnah/go-tsumego-pdf/internal/layout"
	"github.com/alnah/go-tsumego-pdf/internal/pdfwriter"
	"github.com/alnah/go-tsumego-pdf/internal/puzzle"
	"github.com/alnah/go-tsumego-pdf/internal/render"
)

// Compile-time interface implementation checks.
var (
	_ pageRenderer = (*render.Renderer)(nil)
	_ pageImposer  = (*impose.Imposer)(nil)
	_ Store        = (*puzzle.MemoryStore)(nil)
	_ Store        = (*puzzle.SQLiteStore)(nil)
)

type pageRenderer interface {
	Render(ctx context.Context, pages []layout.PagePlan, opts render.Options) ([]string, error)
}

type pageImposer interface {
	Impose(ctx context.Context, pages []string, opts impose.Options) ([]*fileutil.Staged, error)
}

// Generator turns problem selections into PDF documents.
// Create with NewGenerator and call Generate once per document set.
type Generator struct {
	store    Store
	workers  int
	logger   *slog.Logger
	progress io.Writer
	verify   bool
	tempDir  string

	// newRenderer and imposer are replaced in tests.
	newRenderer func(pool *render.Pool) pageRenderer
	imposer     pageImposer
}

// Option configures a Generator.
type Option func(*Generator)

// WithWorkers sets the number of concurrent page renderers per document.
// Zero or less means one per CPU, capped by render.MaxPoolSize.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		g.workers = n
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithProgress draws a progress bar on w while pages render.
func WithProgress(w io.Writer) Option {
	return func(g *Generator) {
		g.progress = w
	}
}

// WithVerify re-reads every written PDF and checks its page count.
func WithVerify(v bool) Option {
	return func(g *Generator) {
		g.verify = v
	}
}

// WithTempDir sets where intermediate images are written.
// Empty means the system temp directory.
func WithTempDir(dir string) Option {
	return func(g *Generator) {
		g.tempDir = dir
	}
}

// NewGenerator creates a Generator reading problems from store.
func NewGenerator(store Store, opts ...Option) *Generator {
	g := &Generator{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.newRenderer == nil {
		g.newRenderer = func(pool *render.Pool) pageRenderer {
			return render.New(pool, render.WithWorkers(g.workers), render.WithLogger(g.logger))
		}
	}
	if g.imposer == nil {
		g.imposer = impose.New(impose.WithWorkers(render.ResolvePoolSize(g.workers)), impose.WithLogger(g.logger))
	}
	return g
}

// geometry is the resolved page layout of a run.
type geometry struct {
	// paper is the physical page size: the sheet for booklets.
	paper  pdfwriter.Size
	page   layout.Geometry
	policy layout.Policy
	render render.Options
}

// Generate runs the full pipeline: selection, planning, rendering and
// output. Intermediate images are removed before it returns, whatever the
// outcome. Output files of both documents appear together, only once all
// of them are written and verified. Recovers from internal panics to prevent crashes from
// propagating to callers.
func (g *Generator) Generate(ctx context.Context, req Request) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if g.store == nil {
		return nil, ErrNoStore
	}
	req = withDefaults(req)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rng := newRand(req.Diagram.Seed)
	problems, err := g.problems(ctx, req, rng)
	if err != nil {
		return nil, err
	}

	geo, err := resolveGeometry(req)
	if err != nil {
		return nil, err
	}
	style := diagramStyle(req)
	items, err := planItems(problems, req, style, geo.page.ColumnWidth(), rng)
	if err != nil {
		return nil, err
	}
	pages := layout.Plan(items, geo.page, geo.policy)
	g.logger.Info("layout planned", "problems", len(items), "pages", len(pages), "placement", geo.policy.String())

	dir, err := os.MkdirTemp(g.tempDir, "tsumego-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			g.logger.Warn("removing temp directory", "dir", dir, "error", rmErr)
		}
	}()
	geo.render.Dir = dir

	problemPNGs, keyPNGs, err := g.renderAll(ctx, pages, style, geo.render, req.Key)
	if err != nil {
		return nil, err
	}

	problemFiles, err := g.write(ctx, problemPNGs, req, geo, dir, false)
	if err != nil {
		return nil, err
	}
	staged := problemFiles
	var keyFiles []*fileutil.Staged
	if req.Key {
		keyFiles, err = g.write(ctx, keyPNGs, req, geo, dir, true)
		if err != nil {
			fileutil.DiscardAll(staged)
			return nil, err
		}
		staged = append(staged, keyFiles...)
	}

	var verifyErr error
	if g.verify {
		verifyErr = g.verifyAll(staged, len(pages), req.Booklet == nil)
	}
	if err := fileutil.CommitAll(staged, verifyErr); err != nil {
		return nil, err
	}

	result = &Result{
		Problems:     len(items),
		Pages:        len(pages),
		ProblemFiles: finalPaths(problemFiles),
		KeyFiles:     finalPaths(keyFiles),
	}
	g.logger.Info("documents written", "files", result.Files())
	return result, nil
}

func finalPaths(staged []*fileutil.Staged) []string {
	if len(staged) == 0 {
		return nil
	}
	paths := make([]string, len(staged))
	for i, s := range staged {
		paths[i] = s.Path()
	}
	return paths
}

// withDefaults fills nil settings. Key diagrams always carry labels so both
// documents share one layout.
func withDefaults(req Request) Request {
	if req.Page == nil {
		req.Page = DefaultPageSettings()
	}
	if req.Layout == nil {
		req.Layout = DefaultLayoutSettings()
	}
	if req.Diagram == nil {
		req.Diagram = DefaultDiagramSettings()
	}
	if req.Key && !req.Diagram.Labels {
		d := *req.Diagram
		d.Labels = true
		req.Diagram = &d
	}
	return req
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// problems resolves the request's selections in print order.
func (g *Generator) problems(ctx context.Context, req Request, rng *rand.Rand) ([]*puzzle.Problem, error) {
	sels := req.Selections
	if len(sels) == 0 {
		var err error
		sels, err = puzzle.AllSelections(ctx, g.store, req.Collection, req.Section)
		if err != nil {
			return nil, err
		}
		if len(sels) == 0 {
			return nil, fmt.Errorf("%w: %s is empty", ErrNoSelections, req.Collection)
		}
	}
	if req.Shuffle {
		sels = append([]Selection(nil), sels...)
		rng.Shuffle(len(sels), func(i, j int) { sels[i], sels[j] = sels[j], sels[i] })
	}

	problems := make([]*puzzle.Problem, len(sels))
	for i, sel := range sels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := g.store.Problem(ctx, sel)
		if err != nil {
			return nil, err
		}
		problems[i] = p
	}
	return problems, nil
}

// resolveGeometry converts the request's inches and points into pixels.
// A booklet page is half the landscape sheet less half the center padding.
func resolveGeometry(req Request) (geometry, error) {
	paper := req.Page.size()
	width := layout.PointsToPixels(paper.Width)
	height := layout.PointsToPixels(paper.Height)

	var opts render.Options
	if b := req.Booklet; b != nil {
		paper = paper.Landscape()
		width = layout.PointsToPixels(paper.Width)
		height = layout.PointsToPixels(paper.Height)
		pad := layout.Inches(b.CenterPadding)
		width = (width - pad) / 2
		opts.PageNumberOffset = pad / 2
	}

	m := req.Page.Margins
	bottom := layout.Inches(m.Bottom)
	if req.PageNumbers {
		numberHeight := layout.Inches(PageNumberHeight)
		opts.PageNumbers = true
		opts.PageNumberHeight = float64(numberHeight)
		opts.PageNumberY = height - bottom - numberHeight
		bottom += 2 * numberHeight
	}

	policy, err := layout.ParsePolicy(req.Layout.Placement)
	if err != nil {
		return geometry{}, err
	}
	page := layout.Geometry{
		Width:         width,
		Height:        height,
		MarginLeft:    layout.Inches(m.Left),
		MarginTop:     layout.Inches(m.Top),
		MarginRight:   layout.Inches(m.Right),
		MarginBottom:  bottom,
		Columns:       req.Layout.Columns,
		ColumnSpacing: layout.Inches(req.Layout.ColumnSpacing),
		SpacingBelow:  layout.Inches(req.Layout.SpacingBelow),
	}
	if page.ColumnWidth() <= 0 || page.Height-page.MarginTop-page.MarginBottom <= 0 {
		return geometry{}, fmt.Errorf("%w: %dx%d px with margins", ErrPageTooSmall, width, height)
	}
	return geometry{paper: paper, page: page, policy: policy, render: opts}, nil
}

func diagramStyle(req Request) diagram.Style {
	d := req.Diagram
	return diagram.Style{
		DisplayWidth:    req.Layout.DisplayWidth,
		Label:           d.Labels,
		CollectionLabel: d.CollectionLabel,
		TextHeight:      d.TextHeight,
		TextColor:       d.ProblemColor,
		KeyTextColor:    d.SolutionColor,
	}
}

// planItems fixes every diagram's orientation, color to play and size.
func planItems(problems []*puzzle.Problem, req Request, style diagram.Style, width int, rng *rand.Rand) ([]layout.DiagramPlan, error) {
	sizer, err := diagram.NewRenderer(style)
	if err != nil {
		return nil, err
	}
	defer sizer.Close()

	d := req.Diagram
	mode := strings.ToLower(d.ColorToPlay)
	items := make([]layout.DiagramPlan, 0, len(problems))
	for _, p := range problems {
		var o puzzle.Orientation
		transpose := d.Transpose
		if d.RandomFlip {
			o.FlipX = rng.IntN(2) == 1
			o.FlipY = rng.IntN(2) == 1
			transpose = rng.IntN(2) == 1
		}
		o.Transpose = layout.ResolveTranspose(p.Board.Extent, req.Layout.DisplayWidth, req.Layout.SquareRatio, transpose)

		toPlay := p.Board.ToPlay
		switch mode {
		case ColorToPlayBlack:
			toPlay = puzzle.Black
		case ColorToPlayWhite:
			toPlay = puzzle.White
		case ColorToPlayRandom:
			if rng.IntN(2) == 1 {
				toPlay = toPlay.Opponent()
			}
		}

		dr := diagram.Request{
			Problem:     p,
			Width:       width,
			Orientation: o,
			ToPlay:      toPlay,
			StateToPlay: mode == ColorToPlayRandom,
		}
		size, cell, err := sizer.Size(dr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Selection, err)
		}
		items = append(items, layout.DiagramPlan{
			Problem:     p,
			Orientation: o,
			ToPlay:      toPlay,
			StateToPlay: dr.StateToPlay,
			Width:       width,
			Size:        size,
			CellSize:    cell,
		})
	}
	return items, nil
}

// renderAll renders the problems and, when key is set, the solutions
// concurrently on separate pools sharing one progress counter.
func (g *Generator) renderAll(ctx context.Context, pages []layout.PagePlan, style diagram.Style, opts render.Options, key bool) (problems, solutions []string, err error) {
	counter := &render.Counter{}
	opts.Counter = counter
	total := len(pages)
	if key {
		total *= 2
	}
	stop := startProgress(g.progress, "rendering", total, counter)

	start := time.Now()
	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		problems, err = g.renderDocument(ectx, pages, style, opts)
		return err
	})
	if key {
		keyOpts := opts
		keyOpts.Key = true
		eg.Go(func() error {
			var err error
			solutions, err = g.renderDocument(ectx, pages, style, keyOpts)
			return err
		})
	}
	err = eg.Wait()
	stop(err == nil)
	if err != nil {
		return nil, nil, err
	}
	g.logger.Info("pages rendered", "pages", counter.Load(), "duration", time.Since(start))
	return problems, solutions, nil
}

func (g *Generator) renderDocument(ctx context.Context, pages []layout.PagePlan, style diagram.Style, opts render.Options) ([]string, error) {
	pool := render.NewDiagramPool(render.ResolvePoolSize(g.workers), style)
	defer func() {
		if err := pool.Close(); err != nil {
			g.logger.Warn("closing renderer pool", "error", err)
		}
	}()
	g.logger.Debug("renderer pool ready", "size", pool.Size(), "key", opts.Key)

	return g.newRenderer(pool).Render(ctx, pages, opts)
}

// write stages the PDF files of one document.
func (g *Generator) write(ctx context.Context, pngs []string, req Request, geo geometry, dir string, key bool) ([]*fileutil.Staged, error) {
	out := req.ProblemsPath
	if key {
		out = req.KeyPath
	}

	b := req.Booklet
	if b == nil {
		s, err := pdfwriter.WriteImages(pngs, geo.paper, out)
		if err != nil {
			return nil, err
		}
		g.logger.Debug("PDF staged", "path", out, "pages", len(pngs))
		return []*fileutil.Staged{s}, nil
	}

	opts := impose.Options{
		Sheet:          geo.paper,
		CenterPadding:  layout.Inches(b.CenterPadding),
		PrintersSpread: b.PrintersSpread,
		Signatures:     b.Signatures,
		Out:            out,
		Dir:            dir,
	}
	if key {
		opts.PrintersSpread = b.KeyPrintersSpread
	} else if b.Cover != "" {
		path, err := g.drawCover(b, geo, dir)
		if err != nil {
			return nil, err
		}
		opts.CoverPath = path
		opts.EmbedCover = b.EmbedCover
	}

	files, err := g.imposer.Impose(ctx, pngs, opts)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("booklet staged", "files", len(files), "key", key)
	return files, nil
}

func (g *Generator) drawCover(b *Booklet, geo geometry, dir string) (string, error) {
	opts := cover.Options{
		SheetWidth:  layout.PointsToPixels(geo.paper.Width),
		SheetHeight: layout.PointsToPixels(geo.paper.Height),
		Text:        cover.ParseText([]byte(b.CoverText)),
	}
	switch strings.ToLower(b.Cover) {
	case cover.StyleBoard, cover.StyleNone:
		opts.Style = strings.ToLower(b.Cover)
	default:
		opts.GraphicPath = b.Cover
	}
	return cover.WritePNG(opts, dir)
}

// verifyAll re-reads every staged file. Plain documents must hold exactly
// one page per rendered page.
func (g *Generator) verifyAll(staged []*fileutil.Staged, pages int, plain bool) error {
	var errs []error
	for _, s := range staged {
		path := s.Path()
		n, err := pdfwriter.Inspect(s.TempPath())
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrVerify, path, err))
		case n == 0 || (plain && n != pages):
			errs = append(errs, fmt.Errorf("%w: %s has %d pages", ErrVerify, path, n))
		default:
			g.logger.Debug("PDF verified", "path", path, "pages", n)
		}
	}
	return errors.Join(errs...)
}
