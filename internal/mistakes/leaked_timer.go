package mistakes

import (
	"fmt"

	"github.com/vesaa/effectlab/internal/hooks"
)

func leakedTimer() *Mistake {
	return &Mistake{
		ID:          3,
		Title:       "Not Cleaning up Subscriptions / Timers",
		Description: "Interval never cleared → memory leaks",
		Heading:     "Mistake #3: Not Cleaning up Subscriptions / Timers",
		Subtitle:    "Always clean up to prevent memory leaks",
		Takeaway: "Return a cleanup function from useEffect whenever you set up timers, intervals, subscriptions, or event listeners. " +
			"This prevents memory leaks and unexpected behavior.",
		Wrong: Example{
			Code: `function Timer() {
  useEffect(() => {
    const interval = setInterval(() => {
      console.log('tick');
    }, 1000);
    // ❌ No cleanup function
  }, []);

  return <h1>Timer</h1>;
}`,
			Blurb: "Interval never cleared → memory leak, continues running even after component unmounts. " +
				"Click start/stop multiple times and check console!",
			Note: "Warning: Each start creates a new interval without cleaning the old one!",
			Buttons: []Button{
				{Action: "start", Label: "Start Timer"},
				{Action: "stop", Label: "Stop (Doesn't Actually Stop!)"},
			},
			component: intervalTimer(false),
		},
		Correct: Example{
			Code: `function Timer() {
  useEffect(() => {
    const interval = setInterval(() => {
      console.log('tick');
    }, 1000);

    return () => clearInterval(interval); // ✅ Cleanup
  }, []);

  return <h1>Timer</h1>;
}`,
			Blurb: "Always return a cleanup function for timers, subscriptions, listeners. " +
				"Now the interval is properly cleared!",
			Note: "✓ Interval is properly cleaned up when stopped!",
			Buttons: []Button{
				{Action: "start", Label: "Start Timer"},
				{Action: "stop", Label: "Stop Timer"},
			},
			component: intervalTimer(true),
		},
	}
}

// intervalTimer starts a repeating timer while running is true. Only with
// cleanup set does the effect hand back a teardown that clears it.
func intervalTimer(cleanup bool) func(Env) hooks.RenderFunc {
	return func(env Env) hooks.RenderFunc {
		return func(h *hooks.Hooks) any {
			count, setCount := hooks.UseState(h, 0)
			running, setRunning := hooks.UseState(h, false)

			h.UseEffect(func() any {
				if !running {
					return nil
				}
				if !cleanup {
					h.SetInterval(env.Tick, func() {
						setCount.Update(increment)
						h.Console().Log("tick (NOT cleaned up)")
					})
					return nil
				}
				interval := h.SetInterval(env.Tick, func() {
					setCount.Update(increment)
					h.Console().Log("tick (with cleanup)")
				})
				return hooks.Cleanup(func() {
					h.ClearInterval(interval)
					h.Console().Log("Interval cleared!")
				})
			}, hooks.Deps{running})

			status := "Stopped"
			if running {
				status = "Running"
			}
			return &View{
				Lines:   []string{fmt.Sprintf("Count: %d | Status: %s", count, status)},
				State:   map[string]any{"count": count, "running": running},
				Running: running,
				handlers: map[string]func(){
					"start": func() { setRunning.Set(true) },
					"stop":  func() { setRunning.Set(false) },
				},
			}
		}
	}
}
