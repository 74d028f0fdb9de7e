package tsumegopdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-tsumego-pdf/internal/render"
)

func TestProgressBar_Line(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		done    int
		elapsed time.Duration
		want    string
		wantETA string
	}{
		{"empty", 0, 0, "\rrendering |" + strings.Repeat("-", barLength) + "| 0.0%", ""},
		{"half", 2, 4 * time.Second, "\rrendering |" + strings.Repeat(barFill, 25) + strings.Repeat("-", 25) + "| 50.0%", " eta 4s"},
		{"done", 4, 8 * time.Second, "\rrendering |" + strings.Repeat(barFill, barLength) + "| 100.0%", ""},
		{"overshoot clamps", 9, time.Second, "\rrendering |" + strings.Repeat(barFill, barLength) + "| 100.0%", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bar := &progressBar{prefix: "rendering", total: 4}
			if got := bar.line(tt.done, tt.elapsed); got != tt.want+tt.wantETA {
				t.Errorf("line() = %q, want %q", got, tt.want+tt.wantETA)
			}
		})
	}
}

func TestStartProgress(t *testing.T) {
	t.Parallel()

	t.Run("nil writer is silent", func(t *testing.T) {
		t.Parallel()
		stop := startProgress(nil, "rendering", 3, &render.Counter{})
		stop(true)
	})

	t.Run("success ends full", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		counter := &render.Counter{}
		stop := startProgress(&buf, "rendering", 3, counter)
		counter.Add(1)
		stop(true)
		if !strings.HasSuffix(buf.String(), "| 100.0%\n") {
			t.Errorf("final line = %q, want a full bar", buf.String())
		}
	})

	t.Run("failure keeps the count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		counter := &render.Counter{}
		stop := startProgress(&buf, "rendering", 4, counter)
		counter.Add(1)
		stop(false)
		if !strings.Contains(buf.String(), "| 25.0%") {
			t.Errorf("final line = %q, want 25%%", buf.String())
		}
	})
}
