package hooks

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// TimerID identifies a scheduled timer. Zero is never a valid id.
type TimerID uint64

var (
	// ErrTooManyTimers is returned when a scheduler is at its live timer cap.
	ErrTooManyTimers = errors.New("hooks: too many live timers")
	// ErrSchedulerClosed is returned after Close.
	ErrSchedulerClosed = errors.New("hooks: scheduler closed")
)

// Scheduler owns the timers of one window. Every instance mounted in the
// window shares it, and timers outlive the instances that started them
// until they are cleared or the scheduler is closed.
type Scheduler interface {
	Every(d time.Duration, fn func()) (TimerID, error)
	After(d time.Duration, fn func()) (TimerID, error)
	Clear(id TimerID) bool
	Live() int
	Close()
}

// minInterval is the shortest delay a TickerScheduler honours.
const minInterval = time.Millisecond

// TickerScheduler runs each timer on its own goroutine.
type TickerScheduler struct {
	mu     sync.Mutex
	next   TimerID
	timers map[TimerID]chan struct{}
	max    int
	closed bool
	wg     sync.WaitGroup
}

// NewTickerScheduler returns a scheduler allowing at most max live timers;
// max <= 0 means no cap.
func NewTickerScheduler(max int) *TickerScheduler {
	return &TickerScheduler{
		timers: make(map[TimerID]chan struct{}),
		max:    max,
	}
}

func (s *TickerScheduler) register() (TimerID, chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, nil, ErrSchedulerClosed
	}
	if s.max > 0 && len(s.timers) >= s.max {
		return 0, nil, ErrTooManyTimers
	}
	s.next++
	stop := make(chan struct{})
	s.timers[s.next] = stop
	s.wg.Add(1)
	return s.next, stop, nil
}

// Every calls fn every d until the timer is cleared.
func (s *TickerScheduler) Every(d time.Duration, fn func()) (TimerID, error) {
	id, stop, err := s.register()
	if err != nil {
		return 0, err
	}
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(max(d, minInterval))
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				fn()
			}
		}
	}()
	return id, nil
}

// After calls fn once after d unless the timer is cleared first.
func (s *TickerScheduler) After(d time.Duration, fn func()) (TimerID, error) {
	id, stop, err := s.register()
	if err != nil {
		return 0, err
	}
	go func() {
		defer s.wg.Done()
		t := time.NewTimer(max(d, minInterval))
		defer t.Stop()
		select {
		case <-stop:
		case <-t.C:
			s.mu.Lock()
			_, live := s.timers[id]
			delete(s.timers, id)
			s.mu.Unlock()
			if live {
				fn()
			}
		}
	}()
	return id, nil
}

// Clear stops a timer. It reports whether the timer was still live.
func (s *TickerScheduler) Clear(id TimerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	stop, ok := s.timers[id]
	if !ok {
		return false
	}
	delete(s.timers, id)
	close(stop)
	return true
}

// Live returns the number of live timers.
func (s *TickerScheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close stops every timer and waits for their goroutines to exit.
func (s *TickerScheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, stop := range s.timers {
		close(stop)
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// ManualScheduler is a Scheduler driven by Advance instead of the wall
// clock. Callbacks run synchronously inside Advance.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	next   TimerID
	timers map[TimerID]*manualTimer
	max    int
	closed bool
}

type manualTimer struct {
	id    TimerID
	at    time.Duration
	every time.Duration
	fn    func()
}

// NewManualScheduler returns a ManualScheduler at time zero.
func NewManualScheduler(max int) *ManualScheduler {
	return &ManualScheduler{timers: make(map[TimerID]*manualTimer), max: max}
}

func (s *ManualScheduler) add(d, every time.Duration, fn func()) (TimerID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSchedulerClosed
	}
	if s.max > 0 && len(s.timers) >= s.max {
		return 0, ErrTooManyTimers
	}
	s.next++
	s.timers[s.next] = &manualTimer{id: s.next, at: s.now + max(d, minInterval), every: every, fn: fn}
	return s.next, nil
}

func (s *ManualScheduler) Every(d time.Duration, fn func()) (TimerID, error) {
	return s.add(d, max(d, minInterval), fn)
}

func (s *ManualScheduler) After(d time.Duration, fn func()) (TimerID, error) {
	return s.add(d, 0, fn)
}

func (s *ManualScheduler) Clear(id TimerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	delete(s.timers, id)
	return ok
}

func (s *ManualScheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *ManualScheduler) Close() {
	s.mu.Lock()
	s.closed = true
	clear(s.timers)
	s.mu.Unlock()
}

// Now returns the scheduler's virtual time.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance moves virtual time forward by d, firing due timers in order.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		t := s.earliest(target)
		if t == nil {
			break
		}
		s.now = t.at
		if t.every > 0 {
			t.at += t.every
		} else {
			delete(s.timers, t.id)
		}
		s.mu.Unlock()
		t.fn()
		s.mu.Lock()
	}
	s.now = target
	s.mu.Unlock()
}

func (s *ManualScheduler) earliest(limit time.Duration) *manualTimer {
	due := make([]*manualTimer, 0, len(s.timers))
	for _, t := range s.timers {
		if t.at <= limit {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(a, b int) bool {
		if due[a].at != due[b].at {
			return due[a].at < due[b].at
		}
		return due[a].id < due[b].id
	})
	return due[0]
}
