package catalog

import (
	"context"
	"sync/atomic"
)

// Resolution tracks the two fetches started by one SelectDetail call.
type Resolution struct {
	id         int
	done       chan struct{}
	superseded atomic.Bool
}

func newResolution(id int) *Resolution {
	return &Resolution{id: id, done: make(chan struct{})}
}

// ID returns the movie id the resolution was started for.
func (r *Resolution) ID() int { return r.id }

// Done is closed once both fetches have finished, applied or discarded.
func (r *Resolution) Done() <-chan struct{} { return r.done }

// Wait blocks until the resolution finishes or ctx ends. It returns
// ErrSuperseded if any result was discarded as stale. Fetch failures are
// not returned here; they are recorded on the State.
func (r *Resolution) Wait(ctx context.Context) error {
	select {
	case <-r.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if r.superseded.Load() {
		return ErrSuperseded
	}
	return nil
}
