package services

import "sync"

// RunGuard is a single-slot coordinator for the update pipeline. At most one
// run may hold the slot at a time; a second trigger gets a conflict instead
// of queueing.
type RunGuard struct {
	mu   sync.Mutex
	held bool
}

// NewRunGuard creates a new run guard
func NewRunGuard() *RunGuard {
	return &RunGuard{}
}

// TryAcquire attempts to take the slot. It returns false without blocking if
// a run is already in progress.
func (g *RunGuard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held {
		return false
	}
	g.held = true
	return true
}

// Release frees the slot. Releasing an unheld guard is a no-op.
func (g *RunGuard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = false
}

// IsHeld reports whether a run currently holds the slot.
func (g *RunGuard) IsHeld() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}
