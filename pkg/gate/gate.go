// Package gate bounds the number of simultaneous outbound calls.
package gate

import "context"

// DefaultSize is the number of concurrent NCBI calls allowed by default.
const DefaultSize = 3

// Gate is a counting semaphore. The zero value is not usable; call New.
type Gate struct {
	slots chan struct{}
}

// New returns a Gate admitting at most n holders. n <= 0 uses DefaultSize.
func New(n int) *Gate {
	if n <= 0 {
		n = DefaultSize
	}
	return &Gate{slots: make(chan struct{}, n)}
}

// Acquire blocks until a slot is free or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (g *Gate) Release() {
	<-g.slots
}

// Do runs fn while holding a slot.
func (g *Gate) Do(ctx context.Context, fn func() error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn()
}

// Size returns the number of slots.
func (g *Gate) Size() int {
	return cap(g.slots)
}
