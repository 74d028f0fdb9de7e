package tsumegopdf

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/alnah/go-tsumego-pdf/internal/config"
	"github.com/alnah/go-tsumego-pdf/internal/layout"
	"github.com/alnah/go-tsumego-pdf/internal/pdfwriter"
	"github.com/alnah/go-tsumego-pdf/internal/puzzle"
)

// Selection identifies one problem of a collection.
type Selection = puzzle.Selection

// Store resolves selections into problems.
type Store = puzzle.Store

// Page size constants. Any "WxH" size in points is also accepted.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// Color to play modes.
const (
	ColorToPlayDefault = "default"
	ColorToPlayBlack   = "black"
	ColorToPlayWhite   = "white"
	ColorToPlayRandom  = "random"
)

// PageNumberHeight is the page number text height in inches.
const PageNumberHeight = 0.125

// Margins are page margins in inches.
type Margins struct {
	Left, Top, Right, Bottom float64
}

// PageSettings configures page dimensions. In a booklet the page is the
// physical sheet, always used landscape.
type PageSettings struct {
	Size        string // "letter", "a4", "legal" or "WxH" in points
	Orientation string // "portrait", "landscape"
	Margins     Margins
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margins:     Margins{DefaultMargin, DefaultMargin, DefaultMargin, DefaultMargin},
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	if _, _, err := config.ParsePageSize(p.Size); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}
	switch strings.ToLower(p.Orientation) {
	case "", OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}
	for _, m := range []float64{p.Margins.Left, p.Margins.Top, p.Margins.Right, p.Margins.Bottom} {
		if m < 0 || m > MaxMargin {
			return fmt.Errorf("%w: %.2f (must be between 0 and %.2f)", ErrInvalidMargin, m, MaxMargin)
		}
	}
	return nil
}

// size returns the page size in points with the orientation applied.
func (p *PageSettings) size() pdfwriter.Size {
	w, h, _ := config.ParsePageSize(p.Size)
	s := pdfwriter.Size{Width: w, Height: h}
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		return s.Landscape()
	}
	return s.Portrait()
}

// LayoutSettings configures how diagrams are placed on pages.
type LayoutSettings struct {
	Columns int
	// ColumnSpacing and SpacingBelow are in inches.
	ColumnSpacing float64
	SpacingBelow  float64
	// Placement is "default", "block", "proportional" or
	// "block-proportional".
	Placement string
	// DisplayWidth is the number of board columns a diagram may show.
	DisplayWidth int
	// SquareRatio bounds the aspect ratio under which a problem counts as
	// square and is never transposed. Zero means the default.
	SquareRatio float64
}

// DefaultLayoutSettings returns layout settings with default values.
func DefaultLayoutSettings() *LayoutSettings {
	return &LayoutSettings{
		Columns:       2,
		ColumnSpacing: 0.5,
		SpacingBelow:  0.25,
		Placement:     "default",
		DisplayWidth:  12,
		SquareRatio:   layout.DefaultSquareRatio,
	}
}

// Validate checks that layout settings are valid.
// Returns nil if l is nil (nil means use defaults).
func (l *LayoutSettings) Validate() error {
	if l == nil {
		return nil
	}
	if l.Columns < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidColumns, l.Columns)
	}
	if l.ColumnSpacing < 0 || l.SpacingBelow < 0 {
		return fmt.Errorf("%w: spacing cannot be negative", ErrInvalidSpacing)
	}
	if _, err := layout.ParsePolicy(l.Placement); err != nil {
		return err
	}
	if l.DisplayWidth < 1 || l.DisplayWidth > puzzle.BoardSize {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidDisplayWidth, l.DisplayWidth, puzzle.BoardSize)
	}
	if l.SquareRatio < 0 || l.SquareRatio > 1 {
		return fmt.Errorf("%w: %.2f", ErrInvalidSquareRatio, l.SquareRatio)
	}
	return nil
}

// DiagramSettings configures individual diagrams.
type DiagramSettings struct {
	ColorToPlay string // "default", "black", "white", "random"
	// RandomFlip mirrors each diagram at random, including transposition.
	RandomFlip bool
	// Transpose requests swapped axes for diagrams that are neither square
	// nor too wide.
	Transpose       bool
	Labels          bool
	CollectionLabel bool
	// TextHeight is the label height in inches.
	TextHeight    float64
	ProblemColor  color.RGBA
	SolutionColor color.RGBA
	// Seed drives random flips and colors.
	Seed uint64
}

// DefaultDiagramSettings returns diagram settings with default values.
func DefaultDiagramSettings() *DiagramSettings {
	gray := color.RGBA{128, 128, 128, 255}
	return &DiagramSettings{
		ColorToPlay:   ColorToPlayDefault,
		Labels:        true,
		TextHeight:    0.2,
		ProblemColor:  gray,
		SolutionColor: gray,
	}
}

// Validate checks that diagram settings are valid.
// Returns nil if d is nil (nil means use defaults).
func (d *DiagramSettings) Validate() error {
	if d == nil {
		return nil
	}
	switch strings.ToLower(d.ColorToPlay) {
	case "", ColorToPlayDefault, ColorToPlayBlack, ColorToPlayWhite, ColorToPlayRandom:
	default:
		return fmt.Errorf("%w: %q (must be default, black, white or random)", ErrInvalidColorToPlay, d.ColorToPlay)
	}
	if d.TextHeight < 0 || d.TextHeight > 2 {
		return fmt.Errorf("%w: %.2f", ErrInvalidTextHeight, d.TextHeight)
	}
	return nil
}

// Booklet configures imposition. A nil Booklet produces plain PDFs.
type Booklet struct {
	Signatures int
	// PrintersSpread pairs pages for folding; false gives reader spreads.
	PrintersSpread bool
	// KeyPrintersSpread applies to the solutions key.
	KeyPrintersSpread bool
	// Cover is "", "none", "board" or a path to an image file.
	Cover string
	// CoverText is markdown printed on the cover.
	CoverText  string
	EmbedCover bool
	// CenterPadding is the gutter between facing pages, in inches.
	CenterPadding float64
}

// DefaultBooklet returns a single-signature printer's spread booklet.
func DefaultBooklet() *Booklet {
	return &Booklet{
		Signatures:        1,
		PrintersSpread:    true,
		KeyPrintersSpread: true,
		CenterPadding:     0.5,
	}
}

// Validate checks that booklet settings are valid.
// Returns nil if b is nil (nil means no booklet).
func (b *Booklet) Validate() error {
	if b == nil {
		return nil
	}
	if b.Signatures < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidSignatures, b.Signatures)
	}
	if b.CenterPadding < 0 {
		return fmt.Errorf("%w: %.2f", ErrInvalidCenterPadding, b.CenterPadding)
	}
	return nil
}

// Request describes one generation run.
type Request struct {
	// Selections lists problems in print order. When empty, every problem
	// of Collection (restricted to Section when set) is used.
	Selections []Selection
	Collection string
	Section    string
	// Shuffle permutes the selections with the diagram seed.
	Shuffle bool

	Page    *PageSettings    // nil = defaults
	Layout  *LayoutSettings  // nil = defaults
	Diagram *DiagramSettings // nil = defaults
	Booklet *Booklet         // nil = plain PDF

	PageNumbers bool
	// Key also produces the solutions document.
	Key bool

	// ProblemsPath and KeyPath are the output files. In a multi-signature
	// booklet they are base names for the signature files.
	ProblemsPath string
	KeyPath      string
}

// Validate checks the request and its settings.
func (r *Request) Validate() error {
	if len(r.Selections) == 0 && r.Collection == "" {
		return ErrNoSelections
	}
	if r.ProblemsPath == "" || (r.Key && r.KeyPath == "") {
		return ErrNoOutput
	}
	if err := r.Page.Validate(); err != nil {
		return err
	}
	if err := r.Layout.Validate(); err != nil {
		return err
	}
	if err := r.Diagram.Validate(); err != nil {
		return err
	}
	return r.Booklet.Validate()
}

// Result lists what a run produced.
type Result struct {
	// ProblemFiles and KeyFiles are the written PDFs in print order.
	ProblemFiles []string
	KeyFiles     []string
	// Problems is the number of diagrams and Pages the number of logical
	// pages of the problems document.
	Problems int
	Pages    int
}

// Files returns every written PDF.
func (r *Result) Files() []string {
	return append(append([]string(nil), r.ProblemFiles...), r.KeyFiles...)
}
