package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"

	"github.com/alnah/go-tsumego-pdf/internal/fileutil"
	"github.com/alnah/go-tsumego-pdf/internal/layout"
	"github.com/alnah/go-tsumego-pdf/internal/yamlutil"
)

// AppName names the per-user config and data directories.
const AppName = "tsumego-pdf"

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength       = 4096
	MaxPageSizeLength   = 30 // "letter", "a4" or "612x792"
	MaxColorLength      = 7  // "#RRGGBB"
	MaxCollectionLength = 100
	MaxSectionLength    = 100
	MaxPlacementLength  = 30
)

// Limits on numeric fields.
const (
	MaxColumns      = 12
	MaxDisplayWidth = 19
	MaxSignatures   = 64
	MaxWorkers      = 64
)

// Config holds all configuration for booklet generation.
type Config struct {
	Page     PageConfig     `yaml:"page"`
	Layout   LayoutConfig   `yaml:"layout"`
	Diagram  DiagramConfig  `yaml:"diagram"`
	Key      KeyConfig      `yaml:"key"`
	Booklet  BookletConfig  `yaml:"booklet"`
	Output   OutputConfig   `yaml:"output"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Render   RenderConfig   `yaml:"render"`
	Problems ProblemsConfig `yaml:"problems"`
}

// PageConfig defines the physical page.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "letter", "a4", "legal" or "WxH" in points
	Orientation string  `yaml:"orientation"` // "portrait", "landscape"
	Margins     Margins `yaml:"margins"`     // inches
	PageNumbers bool    `yaml:"pageNumbers"`
}

// Margins in inches.
type Margins struct {
	Left   float64 `yaml:"left"`
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
}

// LayoutConfig defines diagram placement.
type LayoutConfig struct {
	Columns       int     `yaml:"columns"`
	ColumnSpacing float64 `yaml:"columnSpacing"` // inches
	SpacingBelow  float64 `yaml:"spacingBelow"`  // inches
	Placement     string  `yaml:"placement"`     // "default", "block", "proportional", "block-proportional"
	DisplayWidth  int     `yaml:"displayWidth"`  // board lines shown across a diagram
	SquareRatio   float64 `yaml:"squareRatio"`   // aspect ratio treated as square when flipping
}

// DiagramConfig defines how each diagram is drawn.
type DiagramConfig struct {
	ColorToPlay     string  `yaml:"colorToPlay"` // "default", "black", "white", "random"
	RandomFlip      bool    `yaml:"randomFlip"`
	Transpose       bool    `yaml:"transpose"`
	Labels          bool    `yaml:"labels"`
	CollectionLabel bool    `yaml:"collectionLabel"`
	TextHeight      float64 `yaml:"textHeight"` // inches
	ProblemColor    string  `yaml:"problemColor"`
	SolutionColor   string  `yaml:"solutionColor"`
	Seed            uint64  `yaml:"seed"` // 0 = random
}

// KeyConfig defines the solutions document.
type KeyConfig struct {
	Enabled bool `yaml:"enabled"`
}

// BookletConfig defines imposition.
type BookletConfig struct {
	Enabled           bool    `yaml:"enabled"`
	Signatures        int     `yaml:"signatures"`
	PrintersSpread    bool    `yaml:"printersSpread"`
	KeyPrintersSpread bool    `yaml:"keyPrintersSpread"`
	Cover             string  `yaml:"cover"` // "", "board", "none" or an image path
	CoverText         string  `yaml:"coverText"`
	EmbedCover        bool    `yaml:"embedCover"`
	CenterPadding     float64 `yaml:"centerPadding"` // inches
}

// OutputConfig defines output destinations.
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	Problems  string `yaml:"problems"`  // path, "auto" or "auto:FORMAT"
	Solutions string `yaml:"solutions"` // path, "auto" or "auto:FORMAT"
	Verify    bool   `yaml:"verify"`
}

// CatalogConfig locates puzzle data.
type CatalogConfig struct {
	Path        string `yaml:"path"`        // SQLite catalog
	Collections string `yaml:"collections"` // directory of YAML collections, used instead of the catalog
}

// RenderConfig controls concurrency.
type RenderConfig struct {
	Workers int `yaml:"workers"` // 0 = automatic
}

// ProblemsConfig selects the problems to print.
type ProblemsConfig struct {
	Collection string `yaml:"collection"`
	Section    string `yaml:"section"`
	Numbers    []int  `yaml:"numbers"` // empty = all
	Shuffle    bool   `yaml:"shuffle"`
}

// Validate checks enums, ranges and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("page.size", c.Page.Size, MaxPageSizeLength); err != nil {
		return err
	}
	if c.Page.Size != "" {
		if _, _, err := ParsePageSize(c.Page.Size); err != nil {
			return err
		}
	}
	if err := validateEnum("page.orientation", c.Page.Orientation, "portrait", "landscape"); err != nil {
		return err
	}
	m := c.Page.Margins
	for name, v := range map[string]float64{"left": m.Left, "top": m.Top, "right": m.Right, "bottom": m.Bottom} {
		if v < 0 || v > 5 {
			return fmt.Errorf("%w: page.margins.%s must be between 0 and 5, got %.2f", ErrInvalidValue, name, v)
		}
	}

	if c.Layout.Columns < 0 || c.Layout.Columns > MaxColumns {
		return fmt.Errorf("%w: layout.columns must be between 1 and %d, got %d", ErrInvalidValue, MaxColumns, c.Layout.Columns)
	}
	if c.Layout.ColumnSpacing < 0 || c.Layout.SpacingBelow < 0 {
		return fmt.Errorf("%w: layout spacing cannot be negative", ErrInvalidValue)
	}
	if err := validateFieldLength("layout.placement", c.Layout.Placement, MaxPlacementLength); err != nil {
		return err
	}
	if _, err := layout.ParsePolicy(c.Layout.Placement); err != nil {
		return fmt.Errorf("%w: layout.placement: %w", ErrInvalidValue, err)
	}
	if c.Layout.DisplayWidth < 0 || c.Layout.DisplayWidth > MaxDisplayWidth {
		return fmt.Errorf("%w: layout.displayWidth must be between 1 and %d, got %d", ErrInvalidValue, MaxDisplayWidth, c.Layout.DisplayWidth)
	}
	if c.Layout.SquareRatio < 0 || c.Layout.SquareRatio > 1 {
		return fmt.Errorf("%w: layout.squareRatio must be between 0 and 1, got %.2f", ErrInvalidValue, c.Layout.SquareRatio)
	}

	if err := validateEnum("diagram.colorToPlay", c.Diagram.ColorToPlay, "default", "black", "white", "random"); err != nil {
		return err
	}
	if c.Diagram.TextHeight < 0 || c.Diagram.TextHeight > 2 {
		return fmt.Errorf("%w: diagram.textHeight must be between 0 and 2, got %.2f", ErrInvalidValue, c.Diagram.TextHeight)
	}
	for field, v := range map[string]string{"diagram.problemColor": c.Diagram.ProblemColor, "diagram.solutionColor": c.Diagram.SolutionColor} {
		if err := validateFieldLength(field, v, MaxColorLength); err != nil {
			return err
		}
		if v != "" {
			if _, err := ParseHexColor(v); err != nil {
				return fmt.Errorf("%s: %w", field, err)
			}
		}
	}

	if c.Booklet.Signatures < 0 || c.Booklet.Signatures > MaxSignatures {
		return fmt.Errorf("%w: booklet.signatures must be between 1 and %d, got %d", ErrInvalidValue, MaxSignatures, c.Booklet.Signatures)
	}
	if c.Booklet.CenterPadding < 0 {
		return fmt.Errorf("%w: booklet.centerPadding cannot be negative", ErrInvalidValue)
	}
	for field, v := range map[string]string{
		"booklet.cover":       c.Booklet.Cover,
		"booklet.coverText":   c.Booklet.CoverText,
		"output.dir":          c.Output.Dir,
		"output.problems":     c.Output.Problems,
		"output.solutions":    c.Output.Solutions,
		"catalog.path":        c.Catalog.Path,
		"catalog.collections": c.Catalog.Collections,
	} {
		if err := validateFieldLength(field, v, MaxPathLength); err != nil {
			return err
		}
	}

	if c.Render.Workers < 0 || c.Render.Workers > MaxWorkers {
		return fmt.Errorf("%w: render.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Render.Workers)
	}

	if err := validateFieldLength("problems.collection", c.Problems.Collection, MaxCollectionLength); err != nil {
		return err
	}
	if err := validateFieldLength("problems.section", c.Problems.Section, MaxSectionLength); err != nil {
		return err
	}
	for i, n := range c.Problems.Numbers {
		if n < 1 {
			return fmt.Errorf("%w: problems.numbers[%d] must be positive, got %d", ErrInvalidValue, i, n)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateEnum(fieldName, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s: %q (must be %s)", ErrInvalidValue, fieldName, value, strings.Join(allowed, ", "))
}

// ParsePageSize returns a page size in points from a name or "WxH".
func ParsePageSize(s string) (w, h float64, err error) {
	switch strings.ToLower(s) {
	case "letter":
		return 612, 792, nil
	case "legal":
		return 612, 1008, nil
	case "a4":
		return 595.28, 841.89, nil
	}
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if ok {
		w, errW := strconv.ParseFloat(strings.TrimSpace(ws), 64)
		h, errH := strconv.ParseFloat(strings.TrimSpace(hs), 64)
		if errW == nil && errH == nil && w > 0 && h > 0 {
			return w, h, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: page.size %q (use letter, a4, legal or WxH in points)", ErrInvalidValue, s)
}

// ParseHexColor parses "#RRGGBB".
func ParseHexColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("%w: color %q (use #RRGGBB)", ErrInvalidValue, s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q (use #RRGGBB)", ErrInvalidValue, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// DefaultConfig returns the settings used when no config file is given:
// letter portrait, half-inch margins, two columns, no key, no booklet.
func DefaultConfig() *Config {
	return &Config{
		Page: PageConfig{
			Size:        "letter",
			Orientation: "portrait",
			Margins:     Margins{Left: 0.5, Top: 0.5, Right: 0.5, Bottom: 0.5},
		},
		Layout: LayoutConfig{
			Columns:       2,
			ColumnSpacing: 0.5,
			SpacingBelow:  0.25,
			Placement:     "default",
			DisplayWidth:  12,
			SquareRatio:   layout.DefaultSquareRatio,
		},
		Diagram: DiagramConfig{
			ColorToPlay:   "default",
			Labels:        true,
			TextHeight:    0.2,
			ProblemColor:  "#808080",
			SolutionColor: "#808080",
		},
		Booklet: BookletConfig{
			Signatures:        1,
			PrintersSpread:    true,
			KeyPrintersSpread: true,
			CenterPadding:     0.5,
		},
		Output: OutputConfig{Problems: "auto", Solutions: "auto"},
		Catalog: CatalogConfig{
			Path: DefaultCatalogPath(),
		},
	}
}

// DefaultCatalogPath is the SQLite catalog under the XDG data home.
func DefaultCatalogPath() string {
	return filepath.Join(xdg.DataHome, AppName, "catalog.db")
}

// LoadConfig loads configuration from a file path or config name on top of
// DefaultConfig. If nameOrPath contains a path separator, it's treated as a
// file path. Otherwise, it's treated as a config name and searched in
// standard locations. Returns error if the file is not found (no silent
// fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the candidate files for a config name: the current
// directory first, then the XDG config home.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	for _, ext := range extensions {
		paths = append(paths, filepath.Join(xdg.ConfigHome, AppName, name+ext))
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
