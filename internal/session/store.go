package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vesaa/effectlab/internal/hooks"
	"github.com/vesaa/effectlab/internal/mistakes"
)

// Config wires a Store to the rest of the server.
type Config struct {
	TTL       time.Duration
	MaxTimers int
	// MaxWindows caps open windows; opening one more closes the least
	// recently seen. Zero means no cap.
	MaxWindows int
	Env        mistakes.Env

	// Console and Observer are called once per mounted variant.
	Console  func(sessionID, route, variant string) hooks.Console
	Observer func(route, variant string) hooks.Observer
	// OnClose runs after a window has been closed, e.g. to purge its journal.
	OnClose func(sessionID string)

	Log *zap.Logger
}

// Store holds every open window.
type Store struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	windows map[string]*Window
}

// NewStore creates an empty store.
func NewStore(cfg Config) *Store {
	if cfg.Console == nil {
		cfg.Console = func(string, string, string) hooks.Console { return hooks.Discard }
	}
	if cfg.Observer == nil {
		cfg.Observer = func(string, string) hooks.Observer { return nil }
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	return &Store{cfg: cfg, now: time.Now, windows: make(map[string]*Window)}
}

// Open returns the window for sid, creating a new one (with a new id) when
// sid is empty or unknown.
func (s *Store) Open(sid string) *Window {
	now := s.now()
	var evicted *Window
	s.mu.Lock()
	w, ok := s.windows[sid]
	if !ok {
		if s.cfg.MaxWindows > 0 && len(s.windows) >= s.cfg.MaxWindows {
			evicted = s.oldestLocked(now)
			delete(s.windows, evicted.ID)
		}
		w = &Window{
			ID:    uuid.NewString(),
			store: s,
			sched: hooks.NewTickerScheduler(s.cfg.MaxTimers),
		}
		s.windows[w.ID] = w
	}
	s.mu.Unlock()

	if evicted != nil {
		s.closeWindow(evicted, "evicted")
	}
	if !ok {
		s.cfg.Log.Debug("window opened", zap.String("session", w.ID))
	}
	w.touch(now)
	return w
}

// oldestLocked returns the least recently seen window. s.mu must be held
// and the map must not be empty.
func (s *Store) oldestLocked(now time.Time) *Window {
	var oldest *Window
	var idle time.Duration
	for _, w := range s.windows {
		if d := w.idleSince(now); oldest == nil || d > idle {
			oldest, idle = w, d
		}
	}
	return oldest
}

// Get returns an open window without creating one.
func (s *Store) Get(sid string) (*Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[sid]
	return w, ok
}

// Close closes one window.
func (s *Store) Close(sid string) bool {
	s.mu.Lock()
	w, ok := s.windows[sid]
	delete(s.windows, sid)
	s.mu.Unlock()
	if ok {
		s.closeWindow(w, "closed")
	}
	return ok
}

// Sweep closes windows idle for longer than the TTL and reports how many.
func (s *Store) Sweep() int {
	now := s.now()
	var idle []*Window
	s.mu.Lock()
	for id, w := range s.windows {
		if w.idleSince(now) > s.cfg.TTL {
			idle = append(idle, w)
			delete(s.windows, id)
		}
	}
	s.mu.Unlock()

	for _, w := range idle {
		s.closeWindow(w, "expired")
	}
	return len(idle)
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.cfg.Log.Info("swept idle windows", zap.Int("count", n))
			}
		}
	}
}

// Count returns the number of open windows.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// LiveTimers sums scheduled timers across every window.
func (s *Store) LiveTimers() int {
	s.mu.Lock()
	windows := make([]*Window, 0, len(s.windows))
	for _, w := range s.windows {
		windows = append(windows, w)
	}
	s.mu.Unlock()

	total := 0
	for _, w := range windows {
		total += w.LiveTimers()
	}
	return total
}

// Shutdown closes every window.
func (s *Store) Shutdown() {
	s.mu.Lock()
	windows := s.windows
	s.windows = make(map[string]*Window)
	s.mu.Unlock()
	for _, w := range windows {
		s.closeWindow(w, "shutdown")
	}
}

func (s *Store) closeWindow(w *Window, reason string) {
	w.close()
	if s.cfg.OnClose != nil {
		s.cfg.OnClose(w.ID)
	}
	s.cfg.Log.Debug("window closed", zap.String("session", w.ID), zap.String("reason", reason))
}
