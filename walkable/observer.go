package walkable

import "time"

// Observer receives timing and outcome reports from the walkable subsystem.
// Implementations must be cheap; they are called on every query.
type Observer interface {
	// PathQuery is reported once per FindPath call. cached is true when the
	// previous result was reused.
	PathQuery(strategy string, cached, reachable bool, elapsed time.Duration)
	// ReachableGrid is reported after each sampler run with the number of
	// cells tried and kept.
	ReachableGrid(sampled, kept int, elapsed time.Duration)
	// Obstacles is reported whenever the obstacle count changes.
	Obstacles(walls, blockers int)
}

type nopObserver struct{}

func (nopObserver) PathQuery(string, bool, bool, time.Duration) {}
func (nopObserver) ReachableGrid(int, int, time.Duration) {}
func (nopObserver) Obstacles(int, int) {}
