package hooks

import (
	"context"
)

// Pending is an awaitable started by Async. Returning one from an effect
// body breaks the effect contract.
type Pending struct {
	done chan struct{}
	err  error
}

// Done is closed when the work has finished.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the work finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Async runs fn on its own goroutine. The context is cancelled when the
// instance unmounts. An error returned by fn that nobody handles is logged
// to the console as an uncaught rejection.
func (h *Hooks) Async(fn func(ctx context.Context) error) *Pending {
	i := h.inst
	p := &Pending{done: make(chan struct{})}
	i.async.Add(1)
	go func() {
		defer i.async.Add(-1)
		defer close(p.done)
		p.err = fn(i.ctx)
		if p.err != nil {
			i.console.Error("Uncaught (in promise)", p.err)
		}
	}()
	return p
}
