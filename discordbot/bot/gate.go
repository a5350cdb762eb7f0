package bot

import (
	"context"
	"sync"
)

// Gate is a broadcast flag, every waiter resumes once it opens
type Gate struct {
	m    sync.Mutex
	ch   chan struct{}
	open bool
}

// NewGate returns closed gate
func NewGate() *Gate {
	return &Gate{
		ch: make(chan struct{}),
	}
}

// Open releases all current and future waiters until Close
func (g *Gate) Open() {
	g.m.Lock()
	defer g.m.Unlock()

	if g.open {
		return
	}

	g.open = true
	close(g.ch)
}

// Close makes subsequent waiters block until next Open
func (g *Gate) Close() {
	g.m.Lock()
	defer g.m.Unlock()

	if !g.open {
		return
	}

	g.open = false
	g.ch = make(chan struct{})
}

// IsOpen returns current gate state
func (g *Gate) IsOpen() bool {
	g.m.Lock()
	defer g.m.Unlock()

	return g.open
}

// Wait blocks until gate is open or ctx is done
func (g *Gate) Wait(ctx context.Context) error {
	g.m.Lock()
	ch := g.ch
	g.m.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
