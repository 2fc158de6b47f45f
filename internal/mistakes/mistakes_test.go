package mistakes

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vesaa/effectlab/internal/hooks"
	"github.com/vesaa/effectlab/internal/quote"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	t        *testing.T
	page     *Page
	sched    *hooks.ManualScheduler
	consoles map[Variant]*hooks.MemoryConsole
}

func mountPage(t *testing.T, id int, env Env) *harness {
	t.Helper()
	m, ok := ByID(id)
	require.True(t, ok)

	h := &harness{
		t:     t,
		sched: hooks.NewManualScheduler(0),
		consoles: map[Variant]*hooks.MemoryConsole{
			Wrong:   hooks.NewMemoryConsole(),
			Correct: hooks.NewMemoryConsole(),
		},
	}
	page, err := Mount(m, env, func(_ *Mistake, v Variant) hooks.Options {
		return hooks.Options{Console: h.consoles[v], Scheduler: h.sched}
	})
	require.NoError(t, err)
	h.page = page
	t.Cleanup(func() {
		page.Unmount()
		h.sched.Close()
	})
	return h
}

func (h *harness) settle() {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(h.t, h.page.Settle(ctx))
}

func (h *harness) do(v Variant, action string, times int) {
	h.t.Helper()
	for range times {
		require.NoError(h.t, h.page.Dispatch(v, action))
	}
}

func TestCatalog(t *testing.T) {
	require.Len(t, All(), 6)
	for i, m := range All() {
		assert.Equal(t, i+1, m.ID)
		assert.NotEmpty(t, m.Title)
		assert.NotEmpty(t, m.Takeaway)
		assert.NotEmpty(t, m.Wrong.Code)
		assert.NotEmpty(t, m.Correct.Code)
	}
	m, ok := ByID(3)
	require.True(t, ok)
	assert.Equal(t, "/mistake-3", m.Path())
	_, ok = ByID(7)
	assert.False(t, ok)

	_, err := ParseVariant("sideways")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestMissingDependencyLogsEveryRender(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		h := mountPage(t, 1, Env{})
		h.do(Wrong, "rerender", n)
		h.do(Correct, "rerender", n)

		assert.Equal(t, n+1, h.consoles[Wrong].Count("Component rendered!"))
		assert.Equal(t, 1, h.consoles[Correct].Count("Runs only once on mount"))
		assert.Equal(t, n, h.page.View(Correct).State["renderCount"])
	}
}

func TestMixedConcernsFetchCount(t *testing.T) {
	quotes := &quote.Counting{Source: quote.Static("Half measures are as bad as nothing at all.")}
	h := mountPage(t, 2, Env{Quotes: quotes})
	h.settle()
	require.Equal(t, 2, quotes.Calls())

	const n = 4
	h.do(Wrong, "increment", n)
	h.do(Correct, "increment", n)
	h.settle()

	assert.Equal(t, n+1, h.page.View(Wrong).State["fetches"])
	assert.Equal(t, 1, h.page.View(Correct).State["fetches"])
	assert.Equal(t, n+2, quotes.Calls())

	for _, v := range []Variant{Wrong, Correct} {
		assert.Equal(t, "Count: 4", h.page.Instance(v).Title())
		assert.Equal(t, "Half measures are as bad as nothing at all.", h.page.View(v).State["data"])
		assert.Equal(t, n+1, h.consoles[v].Count("Count is"))
	}
}

func TestLeakedTimerCycles(t *testing.T) {
	const k = 3
	h := mountPage(t, 3, Env{Tick: time.Second})

	for _, v := range []Variant{Wrong, Correct} {
		for range k {
			h.do(v, "start", 1)
			h.sched.Advance(time.Second)
			h.settle()
			h.do(v, "stop", 1)
		}
	}
	assert.Equal(t, k, h.page.Instance(Wrong).LiveTimers())
	assert.Equal(t, 0, h.page.Instance(Correct).LiveTimers())
	assert.Equal(t, k, h.consoles[Correct].Count("Interval cleared!"))

	// Stopped, yet every leaked interval keeps ticking.
	before := h.page.View(Wrong).State["count"].(int)
	h.sched.Advance(time.Second)
	h.settle()
	assert.Equal(t, before+k, h.page.View(Wrong).State["count"])
	assert.Equal(t, k, h.page.View(Correct).State["count"])
	assert.False(t, h.page.Running())
}

func TestLeakedTimerInvariantWhileRunning(t *testing.T) {
	h := mountPage(t, 3, Env{Tick: time.Second})

	prev := 0
	for range 4 {
		h.do(Wrong, "start", 2)
		h.do(Correct, "start", 2)
		assert.Equal(t, 1, h.page.Instance(Correct).LiveTimers())
		assert.True(t, h.page.Running())

		h.do(Wrong, "stop", 1)
		h.do(Correct, "stop", 1)
		live := h.page.Instance(Wrong).LiveTimers()
		assert.GreaterOrEqual(t, live, prev)
		prev = live
		assert.Equal(t, 0, h.page.Instance(Correct).LiveTimers())
	}
}

func TestLeakedTimerOutlivesUnmount(t *testing.T) {
	h := mountPage(t, 3, Env{Tick: time.Second})
	h.do(Wrong, "start", 1)
	h.do(Correct, "start", 1)

	h.page.Unmount()
	assert.Equal(t, 1, h.page.Instance(Wrong).LiveTimers())
	assert.Equal(t, 0, h.page.Instance(Correct).LiveTimers())
	assert.Equal(t, 1, h.sched.Live())

	h.sched.Advance(2 * time.Second)
	assert.Equal(t, 2, h.consoles[Wrong].Count("tick (NOT cleaned up)"))
	assert.Equal(t, 0, h.consoles[Correct].Count("tick (with cleanup)"))
}

func TestAsyncEffectContract(t *testing.T) {
	h := mountPage(t, 4, Env{Quotes: quote.Static("Speak like a human.")})
	h.settle()

	wrong, correct := h.page.Instance(Wrong), h.page.Instance(Correct)
	assert.Equal(t, 1, wrong.Stats().Violations)
	assert.Equal(t, 0, correct.Stats().Violations)
	assert.Equal(t, 1, h.consoles[Wrong].CountLevel(hooks.LevelWarn))
	assert.Equal(t, 0, h.consoles[Correct].CountLevel(hooks.LevelWarn))

	assert.Equal(t, "Speak like a human.", h.page.View(Wrong).State["data"])
	assert.Equal(t, "Speak like a human.", h.page.View(Correct).State["data"])
	assert.Equal(t, false, h.page.View(Correct).State["loading"])
}

func TestAsyncEffectFailureIsHandledLocally(t *testing.T) {
	h := mountPage(t, 4, Env{Quotes: quote.Failing{Err: errors.New("network down")}})
	h.settle()

	assert.Equal(t, 1, h.consoles[Correct].Count("Error: network down"))
	assert.Equal(t, 0, h.consoles[Correct].Count("Uncaught"))
	assert.Equal(t, false, h.page.View(Correct).State["loading"])
	assert.Equal(t, []string{"Status: Loaded", "Data: Loading..."}, h.page.View(Correct).Lines)

	assert.Equal(t, 1, h.consoles[Wrong].Count("Uncaught (in promise) network down"))
}

func TestSelfTriggeringWrongHitsDepthGuard(t *testing.T) {
	m, _ := ByID(5)
	console := hooks.NewMemoryConsole()
	inst, err := m.Wrong.Mount(Env{}, hooks.Options{Console: console})
	defer inst.Unmount()

	require.ErrorIs(t, err, hooks.ErrMaxUpdateDepth)
	assert.Equal(t, 1, console.CountLevel(hooks.LevelError))
}

func TestSelfTriggeringCorrectUpdatesOnce(t *testing.T) {
	h := mountPage(t, 5, Env{Delay: time.Second})
	assert.Nil(t, h.page.Instance(Wrong))
	assert.Nil(t, h.page.View(Wrong))
	assert.ErrorIs(t, h.page.Dispatch(Wrong, "anything"), ErrDisabled)

	correct := h.page.Instance(Correct)
	assert.Equal(t, 0, h.page.View(Correct).State["count"])
	for range 5 {
		h.sched.Advance(time.Second)
		h.settle()
	}
	assert.Equal(t, 1, h.page.View(Correct).State["count"])
	assert.Equal(t, 0, correct.LiveTimers())
	assert.Equal(t, 1, correct.Stats().EffectRuns)
}

func TestSelfTriggeringTimeoutClearedOnUnmount(t *testing.T) {
	h := mountPage(t, 5, Env{Delay: time.Second})
	h.page.Unmount()
	assert.Equal(t, 0, h.sched.Live())
}

func TestDerivedStateStaleness(t *testing.T) {
	h := mountPage(t, 6, Env{})
	h.settle()
	assert.Equal(t, "John Doe", h.page.View(Wrong).State["displayName"])
	assert.Equal(t, "John Doe", h.page.View(Correct).State["displayName"])

	require.NoError(t, h.page.SetName("Jane Smith"))
	assert.Equal(t, "Jane Smith", h.page.Name())
	assert.Equal(t, "John Doe", h.page.View(Wrong).State["displayName"])
	assert.Equal(t, "Jane Smith", h.page.View(Correct).State["displayName"])
	assert.Equal(t, "JANE SMITH", h.page.View(Correct).State["derived"])
	assert.Equal(t, 0, h.page.Instance(Correct).Stats().EffectRuns)

	assert.ErrorIs(t, h.page.SetName("Mallory"), ErrUnknownName)
}

func TestDispatchUnknownAction(t *testing.T) {
	h := mountPage(t, 1, Env{})
	assert.ErrorIs(t, h.page.Dispatch(Wrong, "explode"), ErrUnknownAction)
}

func TestSnapshot(t *testing.T) {
	h := mountPage(t, 5, Env{})
	snap := h.page.Snapshot()
	assert.True(t, snap[Wrong].Disabled)
	assert.False(t, snap[Correct].Disabled)
	assert.Equal(t, 1, snap[Correct].LiveTimers)
}

func TestWalkthroughs(t *testing.T) {
	for _, m := range All() {
		t.Run(m.Slug(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Walkthrough(context.Background(), m, Env{}, &buf))
			assert.Contains(t, buf.String(), m.Heading)
			assert.Contains(t, buf.String(), "-- correct view")
		})
	}
}
