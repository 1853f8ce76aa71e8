package memento

import "sync/atomic"

// inFlight is the disabled-control guard of a component: at most one remote
// call may be outstanding per instance.
type inFlight struct {
	busy atomic.Bool
}

func (g *inFlight) acquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *inFlight) release() {
	g.busy.Store(false)
}

// Busy reports whether a call is outstanding.
func (g *inFlight) Busy() bool {
	return g.busy.Load()
}
