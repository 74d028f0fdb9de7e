package tsumegopdf

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alnah/go-tsumego-pdf/internal/render"
)

const (
	barLength      = 50
	barFill        = "█"
	progressPeriod = 100 * time.Millisecond
)

// progressBar redraws one terminal line in place.
type progressBar struct {
	w      io.Writer
	prefix string
	total  int
	start  time.Time
}

// line formats the bar for done of total items, with an estimate of the
// remaining time once something is done.
func (p *progressBar) line(done int, elapsed time.Duration) string {
	done = min(done, p.total)
	frac := 1.0
	if p.total > 0 {
		frac = float64(done) / float64(p.total)
	}
	filled := int(frac * barLength)
	bar := strings.Repeat(barFill, filled) + strings.Repeat("-", barLength-filled)

	s := fmt.Sprintf("\r%s |%s| %.1f%%", p.prefix, bar, frac*100)
	if done > 0 && done < p.total {
		eta := time.Duration(float64(elapsed) / float64(done) * float64(p.total-done))
		s += " eta " + eta.Round(time.Second).String()
	}
	return s
}

func (p *progressBar) draw(done int) {
	fmt.Fprint(p.w, p.line(done, time.Since(p.start)))
}

// startProgress polls counter until the returned stop function is called.
// Stop draws a final line, full when ok, and ends it. A nil writer
// disables the display.
func startProgress(w io.Writer, prefix string, total int, counter *render.Counter) (stop func(ok bool)) {
	if w == nil {
		return func(bool) {}
	}
	bar := &progressBar{w: w, prefix: prefix, total: total, start: time.Now()}
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(progressPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				bar.draw(int(counter.Load()))
			}
		}
	}()

	return func(ok bool) {
		close(done)
		<-finished
		n := int(counter.Load())
		if ok {
			n = total
		}
		bar.draw(n)
		fmt.Fprintln(w)
	}
}
