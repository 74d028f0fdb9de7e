package naming

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var fixed = time.Date(2026, time.March, 7, 9, 5, 3, 0, time.UTC)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr error
	}{
		{name: "YYYY converts to Go year format", format: "YYYY", want: "2006"},
		{name: "MM is the month", format: "MM", want: "01"},
		{name: "mm is the minute", format: "mm", want: "04"},
		{name: "HH converts to 24-hour clock", format: "HH", want: "15"},
		{name: "ss converts to seconds", format: "ss", want: "05"},
		{name: "default format", format: DefaultFormat, want: "2006-01-02 15-04-05"},
		{name: "compact format", format: "YYYYMMDD-HHmmss", want: "20060102-150405"},
		{name: "long format with full month name", format: "MMMM D, YYYY", want: "January 2, 2006"},
		{name: "brackets escape literal text", format: "[set] YYYY", want: "set 2006"},
		{name: "literal characters preserved", format: "YYYY_MM", want: "2006_01"},
		{name: "empty format", format: "", wantErr: ErrInvalidFormat},
		{name: "unclosed bracket", format: "[set YYYY", wantErr: ErrInvalidFormat},
		{name: "too long", format: strings.Repeat("Y", MaxFormatLength+1), wantErr: ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFormat(tt.format)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseFormat(%q) error = %v, want %v", tt.format, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    string
		wantOK  bool
		wantErr error
	}{
		{name: "auto", value: "auto", want: "2026-03-07 09-05-03", wantOK: true},
		{name: "AUTO is case-insensitive", value: "AUTO", want: "2026-03-07 09-05-03", wantOK: true},
		{name: "custom format", value: "auto:DD.MM.YY", want: "07.03.26", wantOK: true},
		{name: "preset", value: "auto:compact", want: "20260307-090503", wantOK: true},
		{name: "passthrough", value: "drills.pdf", wantOK: false},
		{name: "bad syntax", value: "automatic", wantOK: true, wantErr: ErrInvalidFormat},
		{name: "empty after colon", value: "auto:", wantOK: true, wantErr: ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok, err := Timestamp(tt.value, fixed)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Timestamp(%q) error = %v, want %v", tt.value, err, tt.wantErr)
			}
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Timestamp(%q) = %q, %v; want %q, %v", tt.value, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		doc   Document
		want  string
	}{
		{"default problems", "", Problems, filepath.Join("out", "2026-03-07 09-05-03 tsumego problems.pdf")},
		{"default solutions", "auto", Solutions, filepath.Join("out", "2026-03-07 09-05-03 tsumego solutions.pdf")},
		{"iso preset", "auto:iso", Problems, filepath.Join("out", "2026-03-07 tsumego problems.pdf")},
		{"explicit path", "book/drills.pdf", Problems, "book/drills.pdf"},
		{"extension added", "drills", Solutions, "drills.pdf"},
		{"uppercase extension kept", "DRILLS.PDF", Problems, "DRILLS.PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Output(tt.value, "out", tt.doc, fixed)
			if err != nil {
				t.Fatalf("Output() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Output(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
