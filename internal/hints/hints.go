// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
)

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and the per-user config path among those searched.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "tsumego-pdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForCatalogMissing returns a hint when the puzzle catalog has no data.
func ForCatalogMissing(path string) string {
	return format("import collections first: tsumego-pdf import --catalog " + path + " <dir>")
}

// ForNotFound lists what can be chosen instead of a missing collection or
// section.
func ForNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForSignatures explains the signature count constraint.
func ForSignatures() string {
	return format("each signature needs at least one sheet (4 pages); lower --signatures")
}

// ForRender suggests lowering concurrency when rendering fails.
func ForRender() string {
	return format("retry with --workers 1 for a clearer error")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
