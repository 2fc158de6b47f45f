package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/vesaa/effectlab/internal/hooks"
	"github.com/vesaa/effectlab/internal/mistakes"
)

// Window is one visitor's browser tab: a timer scheduler and at most one
// mounted demo page.
type Window struct {
	ID string

	store *Store
	sched *hooks.TickerScheduler

	mu       sync.Mutex
	page     *mistakes.Page
	lastSeen time.Time
	closed   bool
}

// Visit returns the mounted page for m, mounting it when the window shows a
// different route. The previous page is unmounted; timers it leaked keep
// running on the window's scheduler.
func (w *Window) Visit(m *mistakes.Mistake) (*mistakes.Page, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, fmt.Errorf("window %s: %w", w.ID, hooks.ErrUnmounted)
	}
	if w.page != nil && w.page.Mistake.ID == m.ID {
		return w.page, nil
	}
	w.leaveLocked()

	page, err := mistakes.Mount(m, w.store.cfg.Env, w.options)
	if err != nil {
		return nil, err
	}
	w.page = page
	return page, nil
}

// Page returns the mounted page when it is m, or nil.
func (w *Window) Page(m *mistakes.Mistake) *mistakes.Page {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.page != nil && w.page.Mistake.ID == m.ID {
		return w.page
	}
	return nil
}

// Leave unmounts the current page, as navigating to a non-demo route does.
func (w *Window) Leave() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.leaveLocked()
}

// LiveTimers counts the window's scheduled timers, leaked ones included.
func (w *Window) LiveTimers() int { return w.sched.Live() }

func (w *Window) leaveLocked() {
	if w.page != nil {
		w.page.Unmount()
		w.page = nil
	}
}

func (w *Window) options(m *mistakes.Mistake, v mistakes.Variant) hooks.Options {
	cfg := w.store.cfg
	return hooks.Options{
		Console:   cfg.Console(w.ID, m.Slug(), string(v)),
		Scheduler: w.sched,
		Observer:  cfg.Observer(m.Slug(), string(v)),
	}
}

func (w *Window) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Window) idleSince(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return now.Sub(w.lastSeen)
}

// close unmounts the page and stops every timer, leaked ones included.
func (w *Window) close() {
	w.mu.Lock()
	w.closed = true
	w.leaveLocked()
	w.mu.Unlock()
	w.sched.Close()
}
