package render

import (
	"context"
	"errors"
	"image"
	"runtime"
	"sync"

	"github.com/gogpu/gg/text"

	"github.com/alnah/go-tsumego-pdf/internal/diagram"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent page canvases; a letter page at 300 DPI
	// holds about 34MB of pixels.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for the second document's pool.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("render: pool closed")

// DiagramRenderer draws diagrams. Implementations need not be safe for
// concurrent use; the pool hands each one to a single worker at a time.
type DiagramRenderer interface {
	Render(req diagram.Request) (image.Image, error)
	Face(px float64) text.Face
	Close() error
}

// Factory creates a DiagramRenderer.
type Factory func() (DiagramRenderer, error)

// Pool manages DiagramRenderer instances for parallel page rendering.
// Renderers are created lazily on first acquire.
type Pool struct {
	size      int
	factory   Factory
	renderers []DiagramRenderer
	sem       chan DiagramRenderer
	mu        sync.Mutex
	created   int
	closed    bool
}

// NewPool creates a pool with capacity for n renderers.
func NewPool(n int, factory Factory) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{
		size:      n,
		factory:   factory,
		renderers: make([]DiagramRenderer, 0, n),
		sem:       make(chan DiagramRenderer, n),
	}
}

// NewDiagramPool creates a pool of diagram.Renderer sharing one style.
func NewDiagramPool(n int, style diagram.Style) *Pool {
	return NewPool(n, func() (DiagramRenderer, error) {
		r, err := diagram.NewRenderer(style)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
}

// Acquire gets a renderer from the pool, creating one if needed.
// Blocks until one is released or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (DiagramRenderer, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}

	select {
	case r, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return r, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock
		r, err := p.factory()
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		p.renderers = append(p.renderers, r)
		p.mu.Unlock()
		return r, nil
	}
	p.mu.Unlock()

	select {
	case r, ok := <-p.sem:
		if !ok {
			return nil, ErrPoolClosed
		}
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a renderer to the pool. The channel holds every created
// renderer, so the send under the lock never blocks.
func (p *Pool) Release(r DiagramRenderer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- r
}

// Close releases all renderers.
// Returns an aggregated error if several fail to close.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	renderers := p.renderers
	p.mu.Unlock()

	var errs []error
	for _, r := range renderers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return p.size
}

// ResolvePoolSize determines the worker count.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
