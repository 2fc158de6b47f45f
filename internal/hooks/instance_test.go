package hooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func settle(t *testing.T, i *Instance) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, i.Settle(ctx))
}

func TestEffectDependencyModes(t *testing.T) {
	var every, once, keyed int
	render := func(h *Hooks) any {
		count, setCount := UseState(h, 0)
		other, setOther := UseState(h, 0)
		h.UseEffect(func() any { every++; return nil }, nil)
		h.UseEffect(func() any { once++; return nil }, Once)
		h.UseEffect(func() any { keyed++; return nil }, Deps{other})
		_ = count
		return map[string]func(){
			"count": func() { setCount.Update(func(c int) int { return c + 1 }) },
			"other": func() { setOther.Update(func(c int) int { return c + 1 }) },
		}
	}
	inst, err := Mount(render, Options{Name: "modes"})
	require.NoError(t, err)
	defer inst.Unmount()

	click := func(name string) {
		require.NoError(t, inst.Act(func() { inst.View().(map[string]func())[name]() }))
	}
	for range 3 {
		click("count")
	}
	click("other")

	assert.Equal(t, 5, every)
	assert.Equal(t, 1, once)
	assert.Equal(t, 2, keyed)
	assert.Equal(t, 5, inst.Stats().Renders)
}

func TestSettingEqualStateDoesNotRender(t *testing.T) {
	render := func(h *Hooks) any {
		v, set := UseState(h, "a")
		return func() { set.Set(v) }
	}
	inst, err := Mount(render, Options{})
	require.NoError(t, err)
	defer inst.Unmount()

	require.NoError(t, inst.Act(func() { inst.View().(func())() }))
	assert.Equal(t, 1, inst.Stats().Renders)
}

func TestCleanupsRunBeforeNextEffects(t *testing.T) {
	var order []string
	render := func(h *Hooks) any {
		n, set := UseState(h, 0)
		h.UseEffect(func() any {
			order = append(order, "a-run")
			return Cleanup(func() { order = append(order, "a-cleanup") })
		}, Deps{n})
		h.UseEffect(func() any {
			order = append(order, "b-run")
			return func() { order = append(order, "b-cleanup") }
		}, Deps{n})
		return set
	}
	inst, err := Mount(render, Options{})
	require.NoError(t, err)

	require.NoError(t, inst.Act(func() { inst.View().(Setter[int]).Set(1) }))
	inst.Unmount()

	assert.Equal(t, []string{
		"a-run", "b-run",
		"a-cleanup", "b-cleanup", "a-run", "b-run",
		"a-cleanup", "b-cleanup",
	}, order)
	assert.Equal(t, 4, inst.Stats().Cleanups)
}

func TestEffectReturnContract(t *testing.T) {
	console := NewMemoryConsole()
	render := func(h *Hooks) any {
		h.UseEffect(func() any { return nil }, Once)
		h.UseEffect(func() any { return Cleanup(func() {}) }, Once)
		h.UseEffect(func() any {
			return h.Async(func(context.Context) error { return nil })
		}, Once)
		h.UseEffect(func() any { return 42 }, Once)
		return nil
	}
	inst, err := Mount(render, Options{Console: console})
	require.NoError(t, err)
	settle(t, inst)
	inst.Unmount()

	assert.Equal(t, 2, inst.Stats().Violations)
	assert.Equal(t, 1, console.Count("useEffect(async () => ...)"))
	assert.Equal(t, 1, console.Count("You returned: 42"))
	assert.Equal(t, 2, console.CountLevel(LevelWarn))
}

func TestUnhandledAsyncErrorIsLogged(t *testing.T) {
	console := NewMemoryConsole()
	boom := errors.New("boom")
	render := func(h *Hooks) any {
		h.UseEffect(func() any {
			h.Async(func(context.Context) error { return boom })
			return nil
		}, Once)
		return nil
	}
	inst, err := Mount(render, Options{Console: console})
	require.NoError(t, err)
	settle(t, inst)
	inst.Unmount()

	assert.Equal(t, 1, console.Count("Uncaught (in promise) boom"))
}

func TestMaxUpdateDepth(t *testing.T) {
	console := NewMemoryConsole()
	render := func(h *Hooks) any {
		count, setCount := UseState(h, 0)
		h.UseEffect(func() any { setCount.Set(count + 1); return nil }, Deps{count})
		return count
	}
	inst, err := Mount(render, Options{Name: "loop", Console: console})
	require.ErrorIs(t, err, ErrMaxUpdateDepth)
	defer inst.Unmount()

	assert.Equal(t, maxUpdateDepth, inst.Stats().Renders)
	assert.Equal(t, maxUpdateDepth-1, inst.View())
	assert.Equal(t, 1, console.Count("Maximum update depth exceeded"))

	// The runtime stays usable after aborting the loop.
	require.NoError(t, inst.Act(func() {}))
}

func TestHookOrderChangePanics(t *testing.T) {
	inst := &Instance{name: "order", slots: []any{&stateSlot[int]{}}}
	assert.Panics(t, func() {
		slot(&Hooks{inst: inst}, func() *effect { return &effect{} })
	})
}

func TestPropsRerender(t *testing.T) {
	render := func(h *Hooks) any { return Props[string](h) }
	inst, err := Mount(render, Options{Props: "v1"})
	require.NoError(t, err)
	defer inst.Unmount()

	assert.Equal(t, "v1", inst.View())
	require.NoError(t, inst.SetProps("v2"))
	assert.Equal(t, "v2", inst.View())
}

func TestIntervalLeaksPastUnmount(t *testing.T) {
	sched := NewManualScheduler(0)
	console := NewMemoryConsole()
	render := func(h *Hooks) any {
		h.UseEffect(func() any {
			h.SetInterval(time.Second, func() { console.Log("tick") })
			return nil
		}, Once)
		return nil
	}
	inst, err := Mount(render, Options{Scheduler: sched, Console: console})
	require.NoError(t, err)
	inst.Unmount()

	sched.Advance(3 * time.Second)
	assert.Equal(t, 3, console.Count("tick"))
	assert.Equal(t, 1, inst.LiveTimers())
	assert.Equal(t, 1, sched.Live())

	sched.Close()
	assert.Equal(t, 0, sched.Live())
}

func TestTimeoutFiresOnInstanceGoroutine(t *testing.T) {
	sched := NewManualScheduler(0)
	render := func(h *Hooks) any {
		n, set := UseState(h, 0)
		h.UseEffect(func() any {
			id := h.SetTimeout(time.Second, func() { set.Update(func(c int) int { return c + 1 }) })
			return Cleanup(func() { h.ClearTimeout(id) })
		}, Once)
		return n
	}
	inst, err := Mount(render, Options{Scheduler: sched})
	require.NoError(t, err)
	defer inst.Unmount()

	assert.Equal(t, 1, inst.LiveTimers())
	sched.Advance(5 * time.Second)
	settle(t, inst)

	assert.Equal(t, 1, inst.View())
	assert.Equal(t, 0, inst.LiveTimers())
}

func TestActAfterUnmount(t *testing.T) {
	inst, err := Mount(func(*Hooks) any { return nil }, Options{})
	require.NoError(t, err)
	inst.Unmount()
	inst.Unmount()

	assert.ErrorIs(t, inst.Act(func() {}), ErrUnmounted)
	assert.ErrorIs(t, inst.SetProps(1), ErrUnmounted)
}

func TestDepsChanged(t *testing.T) {
	assert.False(t, depsChanged(Deps{1, "a"}, Deps{1, "a"}))
	assert.True(t, depsChanged(Deps{1}, Deps{2}))
	assert.True(t, depsChanged(Deps{1}, Deps{1, 2}))
	assert.True(t, depsChanged(Deps{[]int{1}}, Deps{[]int{1}}))
	assert.True(t, depsChanged(Deps{int64(1)}, Deps{1}))
	assert.False(t, depsChanged(Deps{nil}, Deps{nil}))
}
