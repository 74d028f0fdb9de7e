package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// catalogFlags locate puzzle data.
type catalogFlags struct {
	path        string
	collections string
}

// selectionFlags choose the problems.
type selectionFlags struct {
	section  string
	problems string
	shuffle  bool
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
	pageNumbers bool
}

// layoutFlags holds diagram placement flags.
type layoutFlags struct {
	columns       int
	columnSpacing float64
	spacingBelow  float64
	placement     string
	displayWidth  int
}

// diagramFlags holds per-diagram flags.
type diagramFlags struct {
	colorToPlay     string
	randomFlip      bool
	transpose       bool
	noLabels        bool
	collectionLabel bool
	seed            uint64
}

// bookletFlags holds imposition flags.
type bookletFlags struct {
	enabled       bool
	signatures    int
	digital       bool
	cover         string
	coverText     string // markdown file
	embedCover    bool
	centerPadding float64
}

// outputFlags holds output destinations.
type outputFlags struct {
	problems  string
	solutions string
	dir       string
	key       bool
	verify    bool
}

// generateFlags holds all flags for the generate command.
type generateFlags struct {
	common    commonFlags
	catalog   catalogFlags
	selection selectionFlags
	page      pageFlags
	layout    layoutFlags
	diagram   diagramFlags
	booklet   bookletFlags
	output    outputFlags
	workers   int

	// set records the flags given on the command line.
	set map[string]bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log pipeline stages")
}

// addCatalogFlags adds puzzle source flags to a FlagSet.
func addCatalogFlags(fs *flag.FlagSet, f *catalogFlags) {
	fs.StringVar(&f.path, "catalog", "", "SQLite catalog path")
	fs.StringVar(&f.collections, "collections", "", "directory of YAML collections (instead of the catalog)")
}

func addSelectionFlags(fs *flag.FlagSet, f *selectionFlags) {
	fs.StringVarP(&f.section, "section", "s", "", "section of the collection")
	fs.StringVarP(&f.problems, "problems", "n", "", "problem numbers, e.g. 1-20,25")
	fs.BoolVar(&f.shuffle, "shuffle", false, "shuffle the problems")
}

func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal or WxH points")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "margin on every side in inches")
	fs.BoolVar(&f.pageNumbers, "page-numbers", false, "number pages")
}

func addLayoutFlags(fs *flag.FlagSet, f *layoutFlags) {
	fs.IntVar(&f.columns, "columns", 0, "diagram columns per page")
	fs.Float64Var(&f.columnSpacing, "column-spacing", 0, "gap between columns in inches")
	fs.Float64Var(&f.spacingBelow, "spacing", 0, "gap below each diagram in inches")
	fs.StringVar(&f.placement, "placement", "", "placement: default, block, proportional, block-proportional")
	fs.IntVar(&f.displayWidth, "display-width", 0, "board columns shown per diagram (1-19)")
}

func addDiagramFlags(fs *flag.FlagSet, f *diagramFlags) {
	fs.StringVar(&f.colorToPlay, "color", "", "color to play: default, black, white, random")
	fs.BoolVar(&f.randomFlip, "random-flip", false, "mirror diagrams at random")
	fs.BoolVar(&f.transpose, "transpose", false, "swap diagram axes where allowed")
	fs.BoolVar(&f.noLabels, "no-labels", false, "omit problem labels")
	fs.BoolVar(&f.collectionLabel, "collection-label", false, "print the collection name in labels")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed (0 = from the clock)")
}

func addBookletFlags(fs *flag.FlagSet, f *bookletFlags) {
	fs.BoolVarP(&f.enabled, "booklet", "b", false, "impose pages as a booklet")
	fs.IntVar(&f.signatures, "signatures", 0, "number of signatures")
	fs.BoolVar(&f.digital, "digital", false, "reader spreads instead of printer's spreads")
	fs.StringVar(&f.cover, "cover", "", "cover: board, none or an image path")
	fs.StringVar(&f.coverText, "cover-text", "", "markdown file printed on the cover")
	fs.BoolVar(&f.embedCover, "embed-cover", false, "print the cover inside the first signature")
	fs.Float64Var(&f.centerPadding, "center-padding", 0, "gutter between facing pages in inches")
}

func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.problems, "output", "o", "", "problems PDF path, auto or auto:FORMAT")
	fs.StringVar(&f.solutions, "key-output", "", "solutions PDF path, auto or auto:FORMAT")
	fs.StringVarP(&f.dir, "output-dir", "d", "", "directory for automatic names")
	fs.BoolVarP(&f.key, "key", "k", false, "also write the solutions key")
	fs.BoolVar(&f.verify, "verify", false, "re-read written PDFs")
}

// newGenerateFlagSet registers every generate flag into f.
func newGenerateFlagSet(f *generateFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.IntVarP(&f.workers, "workers", "w", 0, "render workers per document (0 = auto)")
	addCommonFlags(fs, &f.common)
	addCatalogFlags(fs, &f.catalog)
	addSelectionFlags(fs, &f.selection)
	addPageFlags(fs, &f.page)
	addLayoutFlags(fs, &f.layout)
	addDiagramFlags(fs, &f.diagram)
	addBookletFlags(fs, &f.booklet)
	addOutputFlags(fs, &f.output)
	return fs
}

// parseGenerateFlags parses generate command flags and returns positional args.
func parseGenerateFlags(args []string, usage io.Writer) (*generateFlags, []string, error) {
	f := &generateFlags{set: make(map[string]bool)}
	fs := newGenerateFlagSet(f)
	fs.SetOutput(usage)
	fs.Usage = func() { printGenerateUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	return f, fs.Args(), nil
}

// catalogCommandFlags holds flags of the import and collections commands.
type catalogCommandFlags struct {
	common  commonFlags
	catalog catalogFlags
}

func newCatalogFlagSet(name string, f *catalogCommandFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	addCommonFlags(fs, &f.common)
	addCatalogFlags(fs, &f.catalog)
	return fs
}

func parseCatalogFlags(name string, args []string, usage io.Writer, printUsage func(io.Writer)) (*catalogCommandFlags, []string, error) {
	f := &catalogCommandFlags{}
	fs := newCatalogFlagSet(name, f)
	fs.SetOutput(usage)
	fs.Usage = func() { printUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// exportFlags holds flags of the export command.
type exportFlags struct {
	catalogCommandFlags
	output string
}

func newExportFlagSet(f *exportFlags) *flag.FlagSet {
	fs := newCatalogFlagSet("export", &f.catalogCommandFlags)
	fs.StringVarP(&f.output, "output", "o", "", "write YAML to a file instead of stdout")
	return fs
}

func parseExportFlags(args []string, usage io.Writer) (*exportFlags, []string, error) {
	f := &exportFlags{}
	fs := newExportFlagSet(f)
	fs.SetOutput(usage)
	fs.Usage = func() { printExportUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// hasVerboseFlag reports whether -v or --verbose appears before "--".
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}
