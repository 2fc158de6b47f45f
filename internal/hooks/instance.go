package hooks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// maxUpdateDepth bounds the renders a single flush may perform before the
// runtime gives up on a component that keeps scheduling updates from its
// own effects.
const maxUpdateDepth = 50

var (
	// ErrMaxUpdateDepth is returned when a flush exceeds maxUpdateDepth.
	ErrMaxUpdateDepth = errors.New("hooks: maximum update depth exceeded")
	// ErrUnmounted is returned by operations on an unmounted instance.
	ErrUnmounted = errors.New("hooks: instance is unmounted")
)

const (
	asyncEffectWarning = "Warning: useEffect must not return anything besides a function, which is used for clean-up. " +
		"It looks like you wrote useEffect(async () => ...) or returned a Promise. " +
		"Instead, write the async function inside your effect and call it immediately."
	returnValueWarning = "Warning: An effect function must not return anything besides a function, which is used for clean-up. You returned: %v"
	maxDepthError      = "Error: Maximum update depth exceeded. This can happen when a component calls setState inside useEffect, " +
		"but useEffect either doesn't have a dependency array, or one of the dependencies changes on every render."
)

// Observer receives lifecycle counts, typically for metrics.
type Observer interface {
	EffectRun()
	EffectCleanup()
	ContractViolation()
}

type noopObserver struct{}

func (noopObserver) EffectRun()         {}
func (noopObserver) EffectCleanup()     {}
func (noopObserver) ContractViolation() {}

// Options configures an Instance.
type Options struct {
	// Name identifies the instance in panics and log lines.
	Name      string
	Console   Console
	Scheduler Scheduler
	Observer  Observer
	Props     any
}

// Stats is a snapshot of an instance's lifecycle counters.
type Stats struct {
	Renders    int `json:"renders"`
	EffectRuns int `json:"effect_runs"`
	Cleanups   int `json:"cleanups"`
	Violations int `json:"violations"`
}

// Document is the per-instance stand-in for the page document.
type Document struct {
	mu    sync.Mutex
	title string
}

// SetTitle sets the document title.
func (d *Document) SetTitle(t string) {
	d.mu.Lock()
	d.title = t
	d.mu.Unlock()
}

// Title returns the document title.
func (d *Document) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title
}

// Instance is one mounted component.
type Instance struct {
	name     string
	render   RenderFunc
	console  Console
	sched    Scheduler
	observer Observer
	doc      Document

	// Owned by the instance goroutine.
	slots       []any
	effects     []*effect
	props       any
	needsRender bool

	mu      sync.Mutex
	jobs    []func()
	updates []func() bool
	timers  map[TimerID]struct{}
	view    any
	stats   Stats
	closed  bool

	async  atomic.Int64
	wake   chan struct{}
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// Mount creates an instance, renders it and commits its first effects. The
// returned instance is mounted even when err is non-nil: err reports a flush
// failure such as ErrMaxUpdateDepth.
func Mount(render RenderFunc, opts Options) (*Instance, error) {
	if opts.Console == nil {
		opts.Console = Discard
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewTickerScheduler(0)
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	i := &Instance{
		name:     opts.Name,
		render:   render,
		console:  opts.Console,
		sched:    opts.Scheduler,
		observer: opts.Observer,
		props:    opts.Props,
		timers:   make(map[TimerID]struct{}),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	go i.run()
	err := i.Act(func() { i.needsRender = true })
	return i, err
}

// Name returns the instance name.
func (i *Instance) Name() string { return i.name }

// Act runs fn on the instance goroutine and returns once the resulting
// updates have been rendered and committed. It must not be called from the
// instance goroutine itself.
func (i *Instance) Act(fn func()) error {
	errc := make(chan error, 1)
	if !i.post(func() {
		fn()
		errc <- i.flush()
	}) {
		return ErrUnmounted
	}
	select {
	case err := <-errc:
		return err
	case <-i.done:
		return ErrUnmounted
	}
}

// SetProps replaces the props and re-renders.
func (i *Instance) SetProps(p any) error {
	return i.Act(func() {
		i.props = p
		i.needsRender = true
	})
}

// View returns the view produced by the latest render.
func (i *Instance) View() any {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.view
}

// Title returns the document title set by the component's effects.
func (i *Instance) Title() string { return i.doc.Title() }

// Stats returns the lifecycle counters.
func (i *Instance) Stats() Stats {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stats
}

// Busy reports whether an async helper started by this instance is still
// running.
func (i *Instance) Busy() bool { return i.async.Load() > 0 }

// LiveTimers reports the timers started by this instance that are still
// scheduled, including timers leaked past unmount.
func (i *Instance) LiveTimers() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.timers)
}

// Settle waits until the instance has no queued work and no async helper is
// still running.
func (i *Instance) Settle(ctx context.Context) error {
	poll := time.NewTicker(2 * time.Millisecond)
	defer poll.Stop()
	for {
		if err := i.Act(func() {}); err != nil {
			if errors.Is(err, ErrUnmounted) {
				return nil
			}
			return err
		}
		if i.idle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-poll.C:
		}
	}
}

// Unmount runs every stored teardown and stops the instance goroutine.
// Timers without a teardown keep running on the scheduler.
func (i *Instance) Unmount() {
	err := i.Act(func() {
		for _, e := range i.effects {
			i.runCleanup(e)
		}
	})
	if errors.Is(err, ErrUnmounted) {
		return
	}
	i.mu.Lock()
	i.closed = true
	i.jobs = nil
	i.updates = nil
	i.mu.Unlock()
	i.cancel()
	<-i.done
}

func (i *Instance) idle() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.jobs) == 0 && len(i.updates) == 0 && i.async.Load() == 0
}

func (i *Instance) run() {
	defer close(i.done)
	for {
		select {
		case <-i.ctx.Done():
			return
		case <-i.wake:
			i.drain()
		}
	}
}

func (i *Instance) drain() {
	for {
		i.mu.Lock()
		jobs := i.jobs
		i.jobs = nil
		i.mu.Unlock()

		for _, job := range jobs {
			job()
		}
		_ = i.flush()

		i.mu.Lock()
		empty := len(i.jobs) == 0 && len(i.updates) == 0
		i.mu.Unlock()
		if empty {
			return
		}
	}
}

func (i *Instance) signal() {
	select {
	case i.wake <- struct{}{}:
	default:
	}
}

// post queues fn for the instance goroutine. It reports false once the
// instance is unmounted.
func (i *Instance) post(fn func()) bool {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return false
	}
	i.jobs = append(i.jobs, fn)
	i.mu.Unlock()
	i.signal()
	return true
}

func (i *Instance) enqueue(u func() bool) {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return
	}
	i.updates = append(i.updates, u)
	i.mu.Unlock()
	i.signal()
}

func (i *Instance) applyUpdates() bool {
	i.mu.Lock()
	updates := i.updates
	i.updates = nil
	i.mu.Unlock()

	dirty := false
	for _, u := range updates {
		if u() {
			dirty = true
		}
	}
	return dirty
}

// flush applies queued updates and re-renders until the component is stable.
func (i *Instance) flush() error {
	for depth := 0; ; depth++ {
		if i.applyUpdates() {
			i.needsRender = true
		}
		if !i.needsRender {
			return nil
		}
		if depth >= maxUpdateDepth {
			i.needsRender = false
			i.mu.Lock()
			i.updates = nil
			i.mu.Unlock()
			i.console.Error(maxDepthError)
			return fmt.Errorf("%s: %w", i.name, ErrMaxUpdateDepth)
		}
		i.needsRender = false
		i.renderOnce()
		i.commit()
	}
}

func (i *Instance) renderOnce() {
	h := &Hooks{inst: i}
	v := i.render(h)
	i.mu.Lock()
	i.view = v
	i.stats.Renders++
	i.mu.Unlock()
}

// commit runs the teardowns of every due effect, then the due effect bodies.
func (i *Instance) commit() {
	var due []*effect
	for _, e := range i.effects {
		if e.due {
			due = append(due, e)
		}
	}
	for _, e := range due {
		i.runCleanup(e)
	}
	for _, e := range due {
		e.due = false
		e.ran = true
		i.runEffect(e)
	}
}

func (i *Instance) runCleanup(e *effect) {
	if e.cleanup == nil {
		return
	}
	c := e.cleanup
	e.cleanup = nil
	c()
	i.mu.Lock()
	i.stats.Cleanups++
	i.mu.Unlock()
	i.observer.EffectCleanup()
}

func (i *Instance) runEffect(e *effect) {
	ret := e.fn()
	i.mu.Lock()
	i.stats.EffectRuns++
	i.mu.Unlock()
	i.observer.EffectRun()

	switch r := ret.(type) {
	case nil:
	case Cleanup:
		e.cleanup = r
	case func():
		e.cleanup = r
	case *Pending:
		i.violation(asyncEffectWarning)
	default:
		i.violation(fmt.Sprintf(returnValueWarning, r))
	}
}

func (i *Instance) violation(msg string) {
	i.mu.Lock()
	i.stats.Violations++
	i.mu.Unlock()
	i.observer.ContractViolation()
	i.console.Warn(msg)
}

func (i *Instance) startTimer(d time.Duration, fn func(), repeat bool) TimerID {
	i.mu.Lock()
	defer i.mu.Unlock()

	var id TimerID
	deliver := func() {
		if !repeat {
			i.mu.Lock()
			delete(i.timers, id)
			i.mu.Unlock()
		}
		if !i.post(fn) {
			fn()
		}
	}

	var err error
	if repeat {
		id, err = i.sched.Every(d, deliver)
	} else {
		id, err = i.sched.After(d, deliver)
	}
	if err != nil {
		i.console.Error("Error: could not start timer:", err)
		return 0
	}
	i.timers[id] = struct{}{}
	return id
}

func (i *Instance) stopTimer(id TimerID) {
	if id == 0 {
		return
	}
	i.sched.Clear(id)
	i.mu.Lock()
	delete(i.timers, id)
	i.mu.Unlock()
}
