package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tsumegopdf "github.com/alnah/go-tsumego-pdf"
	"github.com/alnah/go-tsumego-pdf/internal/config"
	"github.com/alnah/go-tsumego-pdf/internal/fileutil"
	"github.com/alnah/go-tsumego-pdf/internal/hints"
	"github.com/alnah/go-tsumego-pdf/internal/impose"
	"github.com/alnah/go-tsumego-pdf/internal/naming"
	"github.com/alnah/go-tsumego-pdf/internal/puzzle"
	"github.com/alnah/go-tsumego-pdf/internal/render"
)

// Sentinel errors for CLI operations.
var (
	ErrNoCollection       = errors.New("no collection specified")
	ErrInvalidNumbers     = errors.New("invalid problem numbers")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrCatalogMissing     = errors.New("puzzle catalog not found")
	ErrReadCoverText      = errors.New("failed to read cover text")
)

// dirPermissions is used for output directories: rwxr-x---.
const dirPermissions = 0o750

// store is a puzzle store the command owns.
type store interface {
	puzzle.Store
	Close() error
}

type memoryStore struct{ *puzzle.MemoryStore }

func (memoryStore) Close() error { return nil }

// runGenerate builds the problems document and, when asked, the key.
func runGenerate(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseGenerateFlags(args, env.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if err := mergeFlags(flags, positional, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Problems.Collection == "" {
		return ErrNoCollection
	}

	logger := newLogger(env.Stderr, flags.common.verbose, flags.common.quiet)
	if cfg.Diagram.Seed == 0 {
		cfg.Diagram.Seed = uint64(env.Now().UnixNano())
	}
	logger.Info("generating", "collection", cfg.Problems.Collection, "seed", cfg.Diagram.Seed)

	req, err := buildRequest(cfg, env)
	if err != nil {
		return err
	}
	if err := ensureOutputDirs(req); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForOutputDirectory())
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		if errors.Is(err, ErrCatalogMissing) {
			return fmt.Errorf("%w%s", err, hints.ForCatalogMissing(cfg.Catalog.Path))
		}
		return err
	}
	defer st.Close()

	opts := []tsumegopdf.Option{
		tsumegopdf.WithWorkers(cfg.Render.Workers),
		tsumegopdf.WithLogger(logger),
		tsumegopdf.WithVerify(cfg.Output.Verify),
	}
	if !flags.common.quiet {
		opts = append(opts, tsumegopdf.WithProgress(env.Stdout))
	}

	result, err := tsumegopdf.NewGenerator(st, opts...).Generate(ctx, req)
	if err != nil {
		return withHint(ctx, err, st)
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "%d problems on %d pages\n", result.Problems, result.Pages)
		for _, f := range result.Files() {
			fmt.Fprintf(env.Stdout, "  %s\n", f)
		}
	}
	return nil
}

// withHint appends a hint for errors the user can act on.
func withHint(ctx context.Context, err error, st puzzle.Store) error {
	var nf *puzzle.NotFoundError
	switch {
	case errors.As(err, &nf):
		var available []string
		switch nf.Kind {
		case puzzle.KindCollection:
			if infos, lerr := st.Collections(ctx); lerr == nil {
				for _, info := range infos {
					available = append(available, info.Name)
				}
			}
		case puzzle.KindSection:
			available, _ = st.Sections(ctx, nf.Collection)
		}
		return fmt.Errorf("%w%s", err, hints.ForNotFound(available))
	case errors.Is(err, impose.ErrInvalidSignatureCount):
		return fmt.Errorf("%w%s", err, hints.ForSignatures())
	case errors.Is(err, render.ErrRender):
		return fmt.Errorf("%w%s", err, hints.ForRender())
	}
	return err
}

// loadConfig resolves the config file, from the flag or TSUMEGO_CONFIG, and
// applies environment overrides.
func loadConfig(name string, env *Environment) (*config.Config, error) {
	warnUnknownEnvVars(env.Stderr, env.Environ())
	envCfg := loadEnvConfig(env.Getenv)
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// mergeFlags applies flags given on the command line over cfg.
func mergeFlags(f *generateFlags, positional []string, cfg *config.Config) error {
	if len(positional) > 0 {
		cfg.Problems.Collection = positional[0]
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: unexpected arguments %v", ErrUsage, positional[1:])
	}

	set := f.set
	if set["catalog"] {
		cfg.Catalog.Path = f.catalog.path
	}
	if set["collections"] {
		cfg.Catalog.Collections = f.catalog.collections
	}
	if set["workers"] {
		cfg.Render.Workers = f.workers
	}

	if set["section"] {
		cfg.Problems.Section = f.selection.section
	}
	if set["problems"] {
		numbers, err := parseNumbers(f.selection.problems)
		if err != nil {
			return err
		}
		cfg.Problems.Numbers = numbers
	}
	if set["shuffle"] {
		cfg.Problems.Shuffle = f.selection.shuffle
	}

	if set["page-size"] {
		cfg.Page.Size = f.page.size
	}
	if set["orientation"] {
		cfg.Page.Orientation = f.page.orientation
	}
	if set["margin"] {
		m := f.page.margin
		cfg.Page.Margins = config.Margins{Left: m, Top: m, Right: m, Bottom: m}
	}
	if set["page-numbers"] {
		cfg.Page.PageNumbers = f.page.pageNumbers
	}

	if set["columns"] {
		cfg.Layout.Columns = f.layout.columns
	}
	if set["column-spacing"] {
		cfg.Layout.ColumnSpacing = f.layout.columnSpacing
	}
	if set["spacing"] {
		cfg.Layout.SpacingBelow = f.layout.spacingBelow
	}
	if set["placement"] {
		cfg.Layout.Placement = f.layout.placement
	}
	if set["display-width"] {
		cfg.Layout.DisplayWidth = f.layout.displayWidth
	}

	if set["color"] {
		cfg.Diagram.ColorToPlay = f.diagram.colorToPlay
	}
	if set["random-flip"] {
		cfg.Diagram.RandomFlip = f.diagram.randomFlip
	}
	if set["transpose"] {
		cfg.Diagram.Transpose = f.diagram.transpose
	}
	if set["no-labels"] {
		cfg.Diagram.Labels = !f.diagram.noLabels
	}
	if set["collection-label"] {
		cfg.Diagram.CollectionLabel = f.diagram.collectionLabel
	}
	if set["seed"] {
		cfg.Diagram.Seed = f.diagram.seed
	}

	if set["booklet"] {
		cfg.Booklet.Enabled = f.booklet.enabled
	}
	if set["signatures"] {
		cfg.Booklet.Signatures = f.booklet.signatures
	}
	if set["digital"] {
		cfg.Booklet.PrintersSpread = !f.booklet.digital
		cfg.Booklet.KeyPrintersSpread = !f.booklet.digital
	}
	if set["cover"] {
		cfg.Booklet.Cover = f.booklet.cover
	}
	if set["cover-text"] {
		data, err := os.ReadFile(f.booklet.coverText) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("%w: %w", ErrReadCoverText, err)
		}
		cfg.Booklet.CoverText = string(data)
	}
	if set["embed-cover"] {
		cfg.Booklet.EmbedCover = f.booklet.embedCover
	}
	if set["center-padding"] {
		cfg.Booklet.CenterPadding = f.booklet.centerPadding
	}

	if set["output"] {
		cfg.Output.Problems = f.output.problems
	}
	if set["key-output"] {
		cfg.Output.Solutions = f.output.solutions
		cfg.Key.Enabled = true
	}
	if set["output-dir"] {
		cfg.Output.Dir = f.output.dir
	}
	if set["key"] {
		cfg.Key.Enabled = f.output.key
	}
	if set["verify"] {
		cfg.Output.Verify = f.output.verify
	}
	return nil
}

// parseNumbers parses "1-5,8,10-12" into problem numbers in order.
func parseNumbers(s string) ([]int, error) {
	var numbers []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || first < 1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNumbers, part)
		}
		last := first
		if isRange {
			last, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || last < first {
				return nil, fmt.Errorf("%w: %q", ErrInvalidNumbers, part)
			}
		}
		for n := first; n <= last; n++ {
			numbers = append(numbers, n)
		}
	}
	if len(numbers) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumbers, s)
	}
	return numbers, nil
}

// buildRequest converts a validated config into a generation request.
func buildRequest(cfg *config.Config, env *Environment) (tsumegopdf.Request, error) {
	problemColor, err := config.ParseHexColor(cfg.Diagram.ProblemColor)
	if err != nil {
		return tsumegopdf.Request{}, err
	}
	solutionColor, err := config.ParseHexColor(cfg.Diagram.SolutionColor)
	if err != nil {
		return tsumegopdf.Request{}, err
	}

	m := cfg.Page.Margins
	req := tsumegopdf.Request{
		Collection: cfg.Problems.Collection,
		Section:    cfg.Problems.Section,
		Shuffle:    cfg.Problems.Shuffle,
		Page: &tsumegopdf.PageSettings{
			Size:        cfg.Page.Size,
			Orientation: cfg.Page.Orientation,
			Margins:     tsumegopdf.Margins{Left: m.Left, Top: m.Top, Right: m.Right, Bottom: m.Bottom},
		},
		Layout: &tsumegopdf.LayoutSettings{
			Columns:       cfg.Layout.Columns,
			ColumnSpacing: cfg.Layout.ColumnSpacing,
			SpacingBelow:  cfg.Layout.SpacingBelow,
			Placement:     cfg.Layout.Placement,
			DisplayWidth:  cfg.Layout.DisplayWidth,
			SquareRatio:   cfg.Layout.SquareRatio,
		},
		Diagram: &tsumegopdf.DiagramSettings{
			ColorToPlay:     cfg.Diagram.ColorToPlay,
			RandomFlip:      cfg.Diagram.RandomFlip,
			Transpose:       cfg.Diagram.Transpose,
			Labels:          cfg.Diagram.Labels,
			CollectionLabel: cfg.Diagram.CollectionLabel,
			TextHeight:      cfg.Diagram.TextHeight,
			ProblemColor:    problemColor,
			SolutionColor:   solutionColor,
			Seed:            cfg.Diagram.Seed,
		},
		PageNumbers: cfg.Page.PageNumbers,
		Key:         cfg.Key.Enabled,
	}
	for _, n := range cfg.Problems.Numbers {
		req.Selections = append(req.Selections, tsumegopdf.Selection{
			Collection: cfg.Problems.Collection,
			Section:    cfg.Problems.Section,
			Problem:    n,
		})
	}

	if b := cfg.Booklet; b.Enabled {
		req.Booklet = &tsumegopdf.Booklet{
			Signatures:        b.Signatures,
			PrintersSpread:    b.PrintersSpread,
			KeyPrintersSpread: b.KeyPrintersSpread,
			Cover:             b.Cover,
			CoverText:         b.CoverText,
			EmbedCover:        b.EmbedCover,
			CenterPadding:     b.CenterPadding,
		}
	}

	now := env.Now()
	req.ProblemsPath, err = naming.Output(cfg.Output.Problems, cfg.Output.Dir, naming.Problems, now)
	if err != nil {
		return tsumegopdf.Request{}, err
	}
	if req.Key {
		req.KeyPath, err = naming.Output(cfg.Output.Solutions, cfg.Output.Dir, naming.Solutions, now)
		if err != nil {
			return tsumegopdf.Request{}, err
		}
	}
	return req, nil
}

// ensureOutputDirs creates the parent directories of the output files.
func ensureOutputDirs(req tsumegopdf.Request) error {
	for _, p := range []string{req.ProblemsPath, req.KeyPath} {
		if p == "" {
			continue
		}
		dir := filepath.Dir(p)
		if dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	return nil
}

// openStore opens the YAML collections directory when configured, the
// SQLite catalog otherwise. A missing catalog is an error rather than an
// empty database.
func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	if dir := cfg.Catalog.Collections; dir != "" {
		cols, err := puzzle.LoadDir(dir)
		if err != nil {
			return nil, err
		}
		m, err := puzzle.NewMemoryStore(cols...)
		if err != nil {
			return nil, err
		}
		return memoryStore{m}, nil
	}
	if !fileutil.FileExists(cfg.Catalog.Path) {
		return nil, fmt.Errorf("%w: %s", ErrCatalogMissing, cfg.Catalog.Path)
	}
	s, err := puzzle.OpenSQLite(ctx, cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newLogger logs to w: debug when verbose, errors only when quiet,
// warnings otherwise.
func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func validateWorkers(n int) error {
	if n < 0 || n > config.MaxWorkers {
		return fmt.Errorf("%w: %d (must be 0 to %d)", ErrInvalidWorkerCount, n, config.MaxWorkers)
	}
	return nil
}
