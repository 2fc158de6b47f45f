// Package hooks is a small server-side component runtime modelled on the
// side-effect hook of declarative UI frameworks. A component is a render
// function that declares state with UseState and side effects with
// UseEffect; an Instance owns one mounted component and runs all of its
// renders, state updates and effect commits on a single goroutine.
//
// Dependency lists follow the usual convention:
//
//	h.UseEffect(fn, nil)          // runs after every commit
//	h.UseEffect(fn, hooks.Once)   // runs once after mount
//	h.UseEffect(fn, hooks.Deps{x}) // runs when x changes
package hooks

import (
	"fmt"
	"reflect"
	"time"
)

// Deps is an effect's dependency list. A nil Deps re-runs the effect after
// every commit; an empty, non-nil Deps runs it once.
type Deps []any

// Once is the empty dependency list.
var Once = Deps{}

// Cleanup is the teardown an effect may return.
type Cleanup func()

// EffectFunc is an effect body. Its return value must be nil or a teardown
// (Cleanup or func()); anything else breaks the effect contract and is
// reported as a warning.
type EffectFunc func() any

// RenderFunc renders a component and returns its view.
type RenderFunc func(h *Hooks) any

// Hooks is handed to a RenderFunc. Hook calls must happen in the same order
// on every render.
type Hooks struct {
	inst   *Instance
	cursor int
}

func slot[S any](h *Hooks, create func() *S) *S {
	i := h.inst
	if h.cursor < len(i.slots) {
		s, ok := i.slots[h.cursor].(*S)
		if !ok {
			panic(fmt.Sprintf("hooks: %s: hook order changed between renders (slot %d)", i.name, h.cursor))
		}
		h.cursor++
		return s
	}
	s := create()
	i.slots = append(i.slots, s)
	h.cursor++
	return s
}

type stateSlot[T comparable] struct {
	value T
}

// Setter updates one piece of state. Updates are queued and applied on the
// instance goroutine before the next render; setting an equal value does not
// re-render. A Setter may be called from any goroutine.
type Setter[T comparable] struct {
	inst *Instance
	s    *stateSlot[T]
}

// Set replaces the state value.
func (s Setter[T]) Set(v T) {
	s.Update(func(T) T { return v })
}

// Update applies fn to the value current at the time the update is applied,
// not the value captured by the render that created the setter.
func (s Setter[T]) Update(fn func(prev T) T) {
	st := s.s
	s.inst.enqueue(func() bool {
		next := fn(st.value)
		if next == st.value {
			return false
		}
		st.value = next
		return true
	})
}

// UseState declares a state value, initialised on the first render.
func UseState[T comparable](h *Hooks, initial T) (T, Setter[T]) {
	s := slot(h, func() *stateSlot[T] { return &stateSlot[T]{value: initial} })
	return s.value, Setter[T]{inst: h.inst, s: s}
}

// Props returns the instance props as T, or T's zero value.
func Props[T any](h *Hooks) T {
	p, _ := h.inst.props.(T)
	return p
}

type effect struct {
	fn      EffectFunc
	deps    Deps
	due     bool
	ran     bool
	cleanup Cleanup
}

// UseEffect declares a side effect that runs after the render is committed.
func (h *Hooks) UseEffect(fn EffectFunc, deps Deps) {
	e := slot(h, func() *effect {
		ef := &effect{}
		h.inst.effects = append(h.inst.effects, ef)
		return ef
	})
	e.due = !e.ran || deps == nil || depsChanged(e.deps, deps)
	e.fn = fn
	e.deps = deps
}

// Console returns the instance console.
func (h *Hooks) Console() Console { return h.inst.console }

// Document returns the instance's document side channel.
func (h *Hooks) Document() *Document { return &h.inst.doc }

// SetInterval starts a repeating timer whose callback runs on the instance
// goroutine. The timer lives until ClearInterval or until the scheduler is
// closed; unmounting the instance does not stop it.
func (h *Hooks) SetInterval(d time.Duration, fn func()) TimerID {
	return h.inst.startTimer(d, fn, true)
}

// ClearInterval stops a timer started by SetInterval.
func (h *Hooks) ClearInterval(id TimerID) { h.inst.stopTimer(id) }

// SetTimeout schedules fn to run once after d.
func (h *Hooks) SetTimeout(d time.Duration, fn func()) TimerID {
	return h.inst.startTimer(d, fn, false)
}

// ClearTimeout cancels a timeout that has not fired yet.
func (h *Hooks) ClearTimeout(id TimerID) { h.inst.stopTimer(id) }

func depsChanged(prev, next Deps) bool {
	if len(prev) != len(next) {
		return true
	}
	for k := range next {
		if !same(prev[k], next[k]) {
			return true
		}
	}
	return false
}

// same compares dependency values with ==. Values of non-comparable types
// never compare equal.
func same(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
