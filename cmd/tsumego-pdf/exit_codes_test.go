package main

// Notes:
// - exitCodeFor: we test sentinel errors from every package the CLI maps,
//   plus wrapped errors to verify the errors.Is() chain works correctly.
// - Exit code constants: we verify Unix conventions (0=success, 1=general, 2=usage)
//   and custom codes are below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	tsumegopdf "github.com/alnah/go-tsumego-pdf"
	"github.com/alnah/go-tsumego-pdf/internal/config"
	"github.com/alnah/go-tsumego-pdf/internal/impose"
	"github.com/alnah/go-tsumego-pdf/internal/layout"
	"github.com/alnah/go-tsumego-pdf/internal/naming"
	"github.com/alnah/go-tsumego-pdf/internal/pdfwriter"
	"github.com/alnah/go-tsumego-pdf/internal/puzzle"
	"github.com/alnah/go-tsumego-pdf/internal/render"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		// Render errors (exit 5)
		{"render", render.ErrRender, ExitRender},
		{"size mismatch", render.ErrSizeMismatch, ExitRender},
		{"verify", tsumegopdf.ErrVerify, ExitRender},
		{"wrapped render", fmt.Errorf("page 3: %w", render.ErrRender), ExitRender},

		// Lookup errors (exit 4)
		{"not found", &puzzle.NotFoundError{Kind: puzzle.KindCollection, Collection: "x"}, ExitNotFound},
		{"catalog missing", ErrCatalogMissing, ExitNotFound},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"write pdf", pdfwriter.ErrWritePDF, ExitIO},
		{"cover text", ErrReadCoverText, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"unknown command", ErrUnknownCommand, ExitUsage},
		{"unsupported shell", ErrUnsupportedShell, ExitUsage},
		{"no collection", ErrNoCollection, ExitUsage},
		{"numbers", ErrInvalidNumbers, ExitUsage},
		{"workers", ErrInvalidWorkerCount, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"config value", config.ErrInvalidValue, ExitUsage},
		{"timestamp format", naming.ErrInvalidFormat, ExitUsage},
		{"placement", layout.ErrInvalidPlacement, ExitUsage},
		{"signature count", impose.ErrInvalidSignatureCount, ExitUsage},
		{"invalid collection", puzzle.ErrInvalidCollection, ExitUsage},
		{"page too small", tsumegopdf.ErrPageTooSmall, ExitUsage},
		{"color to play", tsumegopdf.ErrInvalidColorToPlay, ExitUsage},

		// Everything else (exit 1)
		{"unknown error", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Error("exit codes must follow Unix conventions")
	}
	for _, c := range []int{ExitIO, ExitNotFound, ExitRender} {
		if c <= ExitUsage || c >= 126 {
			t.Errorf("custom exit code %d out of range", c)
		}
	}
}
