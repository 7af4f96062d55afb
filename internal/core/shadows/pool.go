package shadows

import "sync"

// GridPool lends scratch grids keyed by radius. Checkout removes the entry, so
// each radius behaves as a single permit: a second caller at the same radius
// gets a freshly allocated grid instead of waiting. Checkout and Checkin are
// each atomic but the span between them is not, which is accepted; the worst
// case is an extra allocation, never a shared grid.
type GridPool struct {
	mu    sync.Mutex
	grids map[int]*Grid
}

// NewGridPool creates an empty pool
func NewGridPool() *GridPool {
	return &GridPool{grids: make(map[int]*Grid)}
}

// Checkout takes the grid for radius out of the pool, allocating one if none is free
func (p *GridPool) Checkout(radius int) *Grid {
	p.mu.Lock()
	g, ok := p.grids[radius]
	if ok {
		delete(p.grids, radius)
	}
	p.mu.Unlock()

	if !ok {
		g = NewGrid()
	}
	return g
}

// Checkin returns a grid to the pool. It is not cleared; the next Init does that.
func (p *GridPool) Checkin(radius int, g *Grid) {
	if g == nil {
		return
	}
	p.mu.Lock()
	p.grids[radius] = g
	p.mu.Unlock()
}

// Len returns the number of idle grids
func (p *GridPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.grids)
}
