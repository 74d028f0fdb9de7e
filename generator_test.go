package tsumegopdf

// Notes:
// - End-to-end runs use a 4x4 inch page (1200x1200 px) and two small
//   problems so that everything lands on a single page and renders fast.
// - Failure paths swap the page renderer and imposer for fakes through
//   the Generator's internal fields.
// - Written PDFs are checked with pdfwriter.Inspect.

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/alnah/go-tsumego-pdf/internal/fileutil"
	"github.com/alnah/go-tsumego-pdf/internal/impose"
	"github.com/alnah/go-tsumego-pdf/internal/layout"
	"github.com/alnah/go-tsumego-pdf/internal/pdfwriter"
	"github.com/alnah/go-tsumego-pdf/internal/puzzle"
	"github.com/alnah/go-tsumego-pdf/internal/render"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func testStore(t *testing.T) *puzzle.MemoryStore {
	t.Helper()
	s, err := puzzle.NewMemoryStore(
		&puzzle.Collection{
			Name:  "cho-elementary",
			Label: "Cho's Elementary",
			Problems: []puzzle.Entry{
				{Board: "B..@@ .@!!X"},
				{Board: "B.@! X@!"},
			},
		},
		&puzzle.Collection{
			Name: "gokyo-shumyo",
			Sections: []puzzle.Section{
				{Name: "living", Problems: []puzzle.Entry{{Board: "B@! .X"}, {Board: "W!@ X."}}},
				{Name: "killing", Problems: []puzzle.Entry{{Board: "W@@! ..X"}}},
			},
		},
	)
	if err != nil {
		t.Fatalf("NewMemoryStore() unexpected error: %v", err)
	}
	return s
}

func smallPage() *PageSettings {
	return &PageSettings{
		Size:        "288x288",
		Orientation: OrientationPortrait,
		Margins:     Margins{0.25, 0.25, 0.25, 0.25},
	}
}

func smallLayout() *LayoutSettings {
	l := DefaultLayoutSettings()
	l.Columns = 1
	l.DisplayWidth = puzzle.BoardSize
	return l
}

func pageCount(t *testing.T, path string) int {
	t.Helper()
	n, err := pdfwriter.Inspect(path)
	if err != nil {
		t.Fatalf("Inspect(%s) unexpected error: %v", path, err)
	}
	return n
}

type failingRenderer struct{ err error }

func (f failingRenderer) Render(context.Context, []layout.PagePlan, render.Options) ([]string, error) {
	return nil, f.err
}

// recordingImposer stages content as the booklet instead of imposing.
type recordingImposer struct {
	opts    []impose.Options
	content string
}

func (r *recordingImposer) Impose(_ context.Context, _ []string, opts impose.Options) ([]*fileutil.Staged, error) {
	r.opts = append(r.opts, opts)
	s, err := fileutil.Stage(opts.Out, func(w io.Writer) error {
		_, err := io.WriteString(w, r.content)
		return err
	})
	if err != nil {
		return nil, err
	}
	return []*fileutil.Staged{s}, nil
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

// ---------------------------------------------------------------------------
// TestGenerate - End-to-end
// ---------------------------------------------------------------------------

func TestGenerate_PlainWithKey(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	var progress bytes.Buffer
	gen := NewGenerator(testStore(t), WithWorkers(2), WithProgress(&progress), WithVerify(true))

	res, err := gen.Generate(context.Background(), Request{
		Collection:   "cho-elementary",
		Page:         smallPage(),
		Layout:       smallLayout(),
		PageNumbers:  true,
		Key:          true,
		ProblemsPath: filepath.Join(out, "problems.pdf"),
		KeyPath:      filepath.Join(out, "solutions.pdf"),
	})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	if res.Problems != 2 || res.Pages != 1 {
		t.Errorf("Result = %d problems on %d pages, want 2 on 1", res.Problems, res.Pages)
	}
	if len(res.ProblemFiles) != 1 || len(res.KeyFiles) != 1 {
		t.Fatalf("Result files = %v, %v; want one of each", res.ProblemFiles, res.KeyFiles)
	}
	for _, f := range res.Files() {
		if got := pageCount(t, f); got != 1 {
			t.Errorf("%s has %d pages, want 1", f, got)
		}
	}
	if !strings.Contains(progress.String(), "100.0%") {
		t.Errorf("progress output %q never reached 100%%", progress.String())
	}
}

func TestGenerate_Booklet(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	booklet := DefaultBooklet()
	booklet.Cover = "board"
	booklet.CoverText = "# Life and Death\n\nElementary drills"

	gen := NewGenerator(testStore(t), WithVerify(true))
	res, err := gen.Generate(context.Background(), Request{
		Collection:   "cho-elementary",
		Page:         smallPage(),
		Layout:       smallLayout(),
		Booklet:      booklet,
		Key:          true,
		ProblemsPath: filepath.Join(out, "book.pdf"),
		KeyPath:      filepath.Join(out, "key.pdf"),
	})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	// one page pads to a single sheet; the cover adds its own sheet
	if got := pageCount(t, res.ProblemFiles[0]); got != 4 {
		t.Errorf("problems booklet has %d sides, want 4", got)
	}
	if got := pageCount(t, res.KeyFiles[0]); got != 2 {
		t.Errorf("key booklet has %d sides, want 2", got)
	}
}

func TestGenerate_RemovesTempFiles(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	out := t.TempDir()
	gen := NewGenerator(testStore(t), WithTempDir(tmp))
	_, err := gen.Generate(context.Background(), Request{
		Collection:   "gokyo-shumyo",
		Section:      "living",
		Page:         smallPage(),
		Layout:       smallLayout(),
		ProblemsPath: filepath.Join(out, "living.pdf"),
	})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir holds %d entries after Generate, want 0", len(entries))
	}
}

// ---------------------------------------------------------------------------
// TestGenerate - Errors
// ---------------------------------------------------------------------------

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "out.pdf")
	tests := []struct {
		name    string
		store   bool
		req     Request
		wantErr error
	}{
		{
			name:    "no store",
			req:     Request{Collection: "cho-elementary", ProblemsPath: out},
			wantErr: ErrNoStore,
		},
		{
			name:    "nothing selected",
			store:   true,
			req:     Request{ProblemsPath: out},
			wantErr: ErrNoSelections,
		},
		{
			name:    "key without path",
			store:   true,
			req:     Request{Collection: "cho-elementary", ProblemsPath: out, Key: true},
			wantErr: ErrNoOutput,
		},
		{
			name:    "unknown collection",
			store:   true,
			req:     Request{Collection: "hatsuyoron", ProblemsPath: out},
			wantErr: puzzle.ErrNotFound,
		},
		{
			name:  "unknown problem",
			store: true,
			req: Request{
				Selections:   []Selection{{Collection: "cho-elementary", Problem: 9}},
				ProblemsPath: out,
			},
			wantErr: puzzle.ErrNotFound,
		},
		{
			name:    "bad page size",
			store:   true,
			req:     Request{Collection: "cho-elementary", ProblemsPath: out, Page: &PageSettings{Size: "b5"}},
			wantErr: ErrInvalidPageSize,
		},
		{
			name:  "margins swallow the page",
			store: true,
			req: Request{
				Collection:   "cho-elementary",
				ProblemsPath: out,
				Page:         &PageSettings{Size: "288x288", Margins: Margins{2, 0, 2, 0}},
			},
			wantErr: ErrPageTooSmall,
		},
		{
			name:    "zero signatures",
			store:   true,
			req:     Request{Collection: "cho-elementary", ProblemsPath: out, Booklet: &Booklet{}},
			wantErr: ErrInvalidSignatures,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var store Store
			if tt.store {
				store = testStore(t)
			}
			_, err := NewGenerator(store).Generate(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerate_RenderFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	out := filepath.Join(t.TempDir(), "out.pdf")
	gen := NewGenerator(testStore(t))
	gen.newRenderer = func(*render.Pool) pageRenderer { return failingRenderer{err: boom} }

	_, err := gen.Generate(context.Background(), Request{
		Collection:   "cho-elementary",
		Page:         smallPage(),
		Layout:       smallLayout(),
		ProblemsPath: out,
	})
	if !errors.Is(err, boom) {
		t.Errorf("Generate() error = %v, want %v", err, boom)
	}
	if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("output written despite render failure: %v", statErr)
	}
}

func TestGenerate_KeyFailureLeavesNoOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		booklet *Booklet
	}{
		{"plain", nil},
		{"booklet with separate cover", &Booklet{Signatures: 1, PrintersSpread: true, Cover: "board"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := t.TempDir()
			blocker := filepath.Join(out, "blocker")
			if err := os.WriteFile(blocker, nil, 0o600); err != nil {
				t.Fatal(err)
			}
			problems := filepath.Join(out, "problems.pdf")

			_, err := NewGenerator(testStore(t)).Generate(context.Background(), Request{
				Collection:   "cho-elementary",
				Page:         smallPage(),
				Layout:       smallLayout(),
				Booklet:      tt.booklet,
				Key:          true,
				ProblemsPath: problems,
				KeyPath:      filepath.Join(blocker, "key.pdf"),
			})
			if err == nil {
				t.Fatal("Generate() expected error for a key path under a regular file")
			}
			if _, statErr := os.Stat(problems); !errors.Is(statErr, os.ErrNotExist) {
				t.Errorf("problems document written despite key failure: %v", statErr)
			}
			if names := dirNames(t, out); !slices.Equal(names, []string{"blocker"}) {
				t.Errorf("output dir holds %v, want only the blocker", names)
			}
		})
	}
}

func TestGenerate_VerifyFailureLeavesNoOutput(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	gen := NewGenerator(testStore(t), WithVerify(true))
	gen.imposer = &recordingImposer{content: "not a pdf"}

	_, err := gen.Generate(context.Background(), Request{
		Collection:   "cho-elementary",
		Page:         smallPage(),
		Layout:       smallLayout(),
		Booklet:      &Booklet{Signatures: 1},
		Key:          true,
		ProblemsPath: filepath.Join(out, "book.pdf"),
		KeyPath:      filepath.Join(out, "key.pdf"),
	})
	if !errors.Is(err, ErrVerify) {
		t.Fatalf("Generate() error = %v, want %v", err, ErrVerify)
	}
	if names := dirNames(t, out); len(names) != 0 {
		t.Errorf("output dir holds %v after failed verification, want nothing", names)
	}
}

func TestGenerate_ImposeOptions(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	rec := &recordingImposer{}
	gen := NewGenerator(testStore(t))
	gen.imposer = rec

	booklet := &Booklet{
		Signatures:     3,
		PrintersSpread: true,
		Cover:          "none",
		EmbedCover:     true,
		CenterPadding:  0.5,
	}
	_, err := gen.Generate(context.Background(), Request{
		Collection:   "cho-elementary",
		Page:         smallPage(),
		Layout:       smallLayout(),
		Booklet:      booklet,
		Key:          true,
		ProblemsPath: filepath.Join(out, "book.pdf"),
		KeyPath:      filepath.Join(out, "key.pdf"),
	})
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if len(rec.opts) != 2 {
		t.Fatalf("Impose called %d times, want 2", len(rec.opts))
	}

	problems, key := rec.opts[0], rec.opts[1]
	if problems.CoverPath == "" || !problems.EmbedCover || !problems.PrintersSpread {
		t.Errorf("problems options = %+v, want embedded cover in a printer's spread", problems)
	}
	if key.CoverPath != "" || key.PrintersSpread {
		t.Errorf("key options = %+v, want no cover in reader spreads", key)
	}
	if problems.Signatures != 3 || problems.CenterPadding != 150 {
		t.Errorf("problems options = %+v, want 3 signatures and 150 px padding", problems)
	}
	if want := (pdfwriter.Size{Width: 288, Height: 288}); problems.Sheet != want {
		t.Errorf("Sheet = %+v, want %+v", problems.Sheet, want)
	}
}

// ---------------------------------------------------------------------------
// Pipeline stages
// ---------------------------------------------------------------------------

func TestProblems_ShuffleIsSeeded(t *testing.T) {
	t.Parallel()

	gen := NewGenerator(testStore(t))
	sels := []Selection{
		{Collection: "cho-elementary", Problem: 1},
		{Collection: "cho-elementary", Problem: 2},
		{Collection: "gokyo-shumyo", Section: "living", Problem: 1},
		{Collection: "gokyo-shumyo", Section: "living", Problem: 2},
		{Collection: "gokyo-shumyo", Section: "killing", Problem: 1},
	}
	req := withDefaults(Request{Selections: sels, Shuffle: true})
	req.Diagram.Seed = 42

	order := func() []string {
		ps, err := gen.problems(context.Background(), req, newRand(req.Diagram.Seed))
		if err != nil {
			t.Fatalf("problems() unexpected error: %v", err)
		}
		var names []string
		for _, p := range ps {
			names = append(names, p.Selection.String())
		}
		return names
	}

	first, second := order(), order()
	if !slices.Equal(first, second) {
		t.Errorf("same seed gave %v then %v", first, second)
	}
	if len(first) != len(sels) {
		t.Errorf("shuffled %d problems, want %d", len(first), len(sels))
	}
	if sels[0].Collection != "cho-elementary" || sels[0].Problem != 1 {
		t.Error("shuffle reordered the caller's slice")
	}
}

func TestResolveGeometry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		req         Request
		wantPaper   pdfwriter.Size
		wantWidth   int
		wantHeight  int
		wantBottom  int
		wantNumberY int
		wantOffset  int
	}{
		{
			name:       "letter portrait",
			req:        Request{},
			wantPaper:  pdfwriter.Letter,
			wantWidth:  2550,
			wantHeight: 3300,
			wantBottom: 150,
		},
		{
			name:       "landscape",
			req:        Request{Page: &PageSettings{Size: "letter", Orientation: "landscape"}},
			wantPaper:  pdfwriter.Letter.Landscape(),
			wantWidth:  3300,
			wantHeight: 2550,
			wantBottom: 0,
		},
		{
			name:        "page numbers reserve the bottom margin",
			req:         Request{PageNumbers: true},
			wantPaper:   pdfwriter.Letter,
			wantWidth:   2550,
			wantHeight:  3300,
			wantBottom:  150 + 2*layout.Inches(PageNumberHeight),
			wantNumberY: 3300 - 150 - layout.Inches(PageNumberHeight),
		},
		{
			name:       "booklet halves the landscape sheet",
			req:        Request{Booklet: DefaultBooklet()},
			wantPaper:  pdfwriter.Letter.Landscape(),
			wantWidth:  (3300 - 150) / 2,
			wantHeight: 2550,
			wantBottom: 150,
			wantOffset: 75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			geo, err := resolveGeometry(withDefaults(tt.req))
			if err != nil {
				t.Fatalf("resolveGeometry() unexpected error: %v", err)
			}
			if geo.paper != tt.wantPaper {
				t.Errorf("paper = %+v, want %+v", geo.paper, tt.wantPaper)
			}
			if geo.page.Width != tt.wantWidth || geo.page.Height != tt.wantHeight {
				t.Errorf("page = %dx%d, want %dx%d", geo.page.Width, geo.page.Height, tt.wantWidth, tt.wantHeight)
			}
			if geo.page.MarginBottom != tt.wantBottom {
				t.Errorf("MarginBottom = %d, want %d", geo.page.MarginBottom, tt.wantBottom)
			}
			if geo.render.PageNumberY != tt.wantNumberY {
				t.Errorf("PageNumberY = %d, want %d", geo.render.PageNumberY, tt.wantNumberY)
			}
			if geo.render.PageNumberOffset != tt.wantOffset {
				t.Errorf("PageNumberOffset = %d, want %d", geo.render.PageNumberOffset, tt.wantOffset)
			}
		})
	}
}

func TestPlanItems_ColorToPlay(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	ctx := context.Background()
	var problems []*puzzle.Problem
	for _, sel := range []Selection{
		{Collection: "gokyo-shumyo", Section: "living", Problem: 1},
		{Collection: "gokyo-shumyo", Section: "living", Problem: 2},
	} {
		p, err := store.Problem(ctx, sel)
		if err != nil {
			t.Fatal(err)
		}
		problems = append(problems, p)
	}

	tests := []struct {
		mode      string
		want      []puzzle.Color
		wantState bool
	}{
		{ColorToPlayDefault, []puzzle.Color{puzzle.Black, puzzle.White}, false},
		{ColorToPlayBlack, []puzzle.Color{puzzle.Black, puzzle.Black}, false},
		{ColorToPlayWhite, []puzzle.Color{puzzle.White, puzzle.White}, false},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			t.Parallel()

			req := withDefaults(Request{})
			req.Diagram.ColorToPlay = tt.mode
			items, err := planItems(problems, req, diagramStyle(req), 600, newRand(1))
			if err != nil {
				t.Fatalf("planItems() unexpected error: %v", err)
			}
			for i, item := range items {
				if item.ToPlay != tt.want[i] {
					t.Errorf("item %d ToPlay = %v, want %v", i, item.ToPlay, tt.want[i])
				}
				if item.StateToPlay != tt.wantState {
					t.Errorf("item %d StateToPlay = %v, want %v", i, item.StateToPlay, tt.wantState)
				}
				if item.Size.X <= 0 || item.Size.Y <= 0 || item.CellSize <= 0 {
					t.Errorf("item %d has no size: %+v", i, item)
				}
			}
		})
	}

	t.Run("random states the color", func(t *testing.T) {
		t.Parallel()

		req := withDefaults(Request{})
		req.Diagram.ColorToPlay = ColorToPlayRandom
		items, err := planItems(problems, req, diagramStyle(req), 600, newRand(1))
		if err != nil {
			t.Fatalf("planItems() unexpected error: %v", err)
		}
		for i, item := range items {
			if !item.StateToPlay {
				t.Errorf("item %d does not state the color to play", i)
			}
		}
	})
}

func TestWithDefaults_KeyForcesLabels(t *testing.T) {
	t.Parallel()

	d := DefaultDiagramSettings()
	d.Labels = false
	req := withDefaults(Request{Key: true, Diagram: d})
	if !req.Diagram.Labels {
		t.Error("key request without labels")
	}
	if d.Labels {
		t.Error("withDefaults modified the caller's settings")
	}
}
