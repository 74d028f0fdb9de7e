// Package naming builds timestamped default output names.
package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidFormat indicates an invalid timestamp format string.
var ErrInvalidFormat = errors.New("invalid timestamp format")

// MaxFormatLength limits format string length to prevent abuse.
const MaxFormatLength = 50

// DefaultFormat is used when "auto" is specified without a format.
const DefaultFormat = "YYYY-MM-DD HH-mm-ss"

// Document identifies which output a name is for.
type Document int

const (
	Problems Document = iota
	Solutions
)

// Suffix returns the fixed part of the document's default name.
func (d Document) Suffix() string {
	if d == Solutions {
		return "tsumego solutions.pdf"
	}
	return "tsumego problems.pdf"
}

// timeTokens maps user-friendly tokens to Go time format components.
// Ordered by length descending for greedy matching; matching is
// case-sensitive so MM is the month and mm the minute.
var timeTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
}

// Presets provides named shortcuts for common formats.
var Presets = map[string]string{
	"default": DefaultFormat,
	"iso":     "YYYY-MM-DD",
	"compact": "YYYYMMDD-HHmmss",
	"long":    "MMMM D, YYYY",
}

// ParseFormat converts a user-friendly format string to Go's time format.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, HH, mm, ss.
// Use brackets to escape literal text: [set] preserves "set" literally.
func ParseFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidFormat)
	}
	if len(format) > MaxFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidFormat, MaxFormatLength)
	}

	var result strings.Builder
	result.Grow(len(format) + 10)

	i := 0
	for i < len(format) {
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidFormat, i)
			}
			result.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range timeTokens {
			if strings.HasPrefix(format[i:], t.token) {
				result.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			result.WriteByte(format[i])
			i++
		}
	}

	return result.String(), nil
}

// Timestamp formats t for "auto" and "auto:FORMAT" values, where FORMAT may
// name a preset. ok is false for any other value.
func Timestamp(value string, t time.Time) (stamp string, ok bool, err error) {
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, "auto") {
		return "", false, nil
	}

	format := DefaultFormat
	if lower != "auto" {
		if !strings.HasPrefix(lower, "auto:") {
			return "", true, fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidFormat, value)
		}
		format = value[len("auto:"):]
		if format == "" {
			return "", true, fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidFormat)
		}
		if preset, found := Presets[strings.ToLower(format)]; found {
			format = preset
		}
	}

	goFmt, err := ParseFormat(format)
	if err != nil {
		return "", true, err
	}
	return t.Format(goFmt), true, nil
}

// Output resolves an output path. Empty and "auto" values become
// "<timestamp> tsumego problems.pdf" (or solutions) inside dir; other values
// are used as given, with a .pdf extension added when missing.
func Output(value, dir string, doc Document, t time.Time) (string, error) {
	if value == "" {
		value = "auto"
	}
	stamp, ok, err := Timestamp(value, t)
	if err != nil {
		return "", err
	}
	if ok {
		return filepath.Join(dir, stamp+" "+doc.Suffix()), nil
	}
	if !strings.EqualFold(filepath.Ext(value), ".pdf") {
		value += ".pdf"
	}
	return value, nil
}
