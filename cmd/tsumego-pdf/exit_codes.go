package main

import (
	"errors"
	"os"

	tsumegopdf "github.com/alnah/go-tsumego-pdf"
	"github.com/alnah/go-tsumego-pdf/internal/config"
	"github.com/alnah/go-tsumego-pdf/internal/cover"
	"github.com/alnah/go-tsumego-pdf/internal/impose"
	"github.com/alnah/go-tsumego-pdf/internal/layout"
	"github.com/alnah/go-tsumego-pdf/internal/naming"
	"github.com/alnah/go-tsumego-pdf/internal/pdfwriter"
	"github.com/alnah/go-tsumego-pdf/internal/puzzle"
	"github.com/alnah/go-tsumego-pdf/internal/render"
)

// Exit codes for the tsumego-pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Documents written
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or validation
	ExitIO       = 3 // File not found, permission denied, write failures
	ExitNotFound = 4 // Unknown collection, section, problem or catalog
	ExitRender   = 5 // Rendering or verification failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Render errors (exit 5)
	if errors.Is(err, render.ErrRender) ||
		errors.Is(err, render.ErrSizeMismatch) ||
		errors.Is(err, tsumegopdf.ErrVerify) {
		return ExitRender
	}

	// Lookup errors (exit 4)
	if errors.Is(err, puzzle.ErrNotFound) ||
		errors.Is(err, ErrCatalogMissing) {
		return ExitNotFound
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, pdfwriter.ErrWritePDF) ||
		errors.Is(err, ErrReadCoverText) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrNoCollection) ||
		errors.Is(err, ErrNoImportInput) ||
		errors.Is(err, ErrNoExportName) ||
		errors.Is(err, ErrInvalidNumbers) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, naming.ErrInvalidFormat) ||
		errors.Is(err, layout.ErrInvalidPlacement) ||
		errors.Is(err, impose.ErrInvalidSignatureCount) ||
		errors.Is(err, cover.ErrUnknownStyle) ||
		errors.Is(err, puzzle.ErrInvalidCollection) ||
		errors.Is(err, tsumegopdf.ErrNoSelections) ||
		errors.Is(err, tsumegopdf.ErrInvalidPageSize) ||
		errors.Is(err, tsumegopdf.ErrInvalidOrientation) ||
		errors.Is(err, tsumegopdf.ErrInvalidMargin) ||
		errors.Is(err, tsumegopdf.ErrInvalidColumns) ||
		errors.Is(err, tsumegopdf.ErrInvalidSpacing) ||
		errors.Is(err, tsumegopdf.ErrInvalidDisplayWidth) ||
		errors.Is(err, tsumegopdf.ErrInvalidSquareRatio) ||
		errors.Is(err, tsumegopdf.ErrPageTooSmall) ||
		errors.Is(err, tsumegopdf.ErrInvalidColorToPlay) ||
		errors.Is(err, tsumegopdf.ErrInvalidTextHeight) ||
		errors.Is(err, tsumegopdf.ErrInvalidSignatures) ||
		errors.Is(err, tsumegopdf.ErrInvalidCenterPadding) {
		return ExitUsage
	}

	return ExitGeneral
}
