package mistakes

import (
	"fmt"

	"github.com/vesaa/effectlab/internal/hooks"
)

func selfTriggering() *Mistake {
	return &Mistake{
		ID:          5,
		Title:       "Incorrect Dependency Array → Infinite Loop",
		Description: "Updating state in dependency → infinite re-render",
		Heading:     "Mistake #5: Incorrect Dependency Array → Infinite Loop",
		Subtitle:    "Avoid infinite re-renders by managing dependencies carefully",
		Takeaway: "Be careful when including state in dependencies and updating that same state in the effect. " +
			"Use functional updates (setState(prev => ...)) to avoid needing the current state in dependencies.",
		Wrong: Example{
			Code: `function App() {
  const [count, setCount] = useState(0);

  useEffect(() => {
    setCount(count + 1); // ❌ Updates count
  }, [count]); // ❌ count is in dependency

  return <h1>{count}</h1>;
}

// Flow: count changes → useEffect runs →
// setCount called → count changes →
// useEffect runs → INFINITE LOOP! 🔄`,
			Blurb:    "Adding count as dependency and updating it inside → infinite re-render. React will crash your browser!",
			Disabled: true,
			DisabledNote: []string{
				"⚠️ This code is disabled to prevent infinite loop!",
				"If enabled, your browser would freeze from constant re-renders.",
			},
			component: selfFeedingEffect,
		},
		Correct: Example{
			Code: `function App() {
  const [count, setCount] = useState(0);

  useEffect(() => {
    const timer = setTimeout(() => {
      setCount(c => c + 1); // ✅ Functional update
    }, 1000);

    return () => clearTimeout(timer);
  }, []); // ✅ Only runs once

  return <h1>{count}</h1>;
}`,
			Blurb: "Avoid updating state directly in dependency → use functional updates or restructure. " +
				"Now it runs once and updates safely!",
			Note:      "✓ Using functional update (c => c + 1) allows us to update state without adding it to dependencies",
			component: oneShotIncrement,
		},
	}
}

// selfFeedingEffect depends on count and always sets it, so every commit
// schedules another. Only the runtime's update depth guard stops it.
func selfFeedingEffect(Env) hooks.RenderFunc {
	return func(h *hooks.Hooks) any {
		count, setCount := hooks.UseState(h, 0)

		h.UseEffect(func() any {
			setCount.Set(count + 1)
			return nil
		}, hooks.Deps{count})

		return &View{
			Lines: []string{fmt.Sprintf("Count: %d", count)},
			State: map[string]any{"count": count},
		}
	}
}

// oneShotIncrement schedules a single timeout on mount; the timeout reads
// the previous count through a functional update.
func oneShotIncrement(env Env) hooks.RenderFunc {
	return func(h *hooks.Hooks) any {
		count, setCount := hooks.UseState(h, 0)

		h.UseEffect(func() any {
			timer := h.SetTimeout(env.Delay, func() {
				setCount.Update(increment)
			})
			return hooks.Cleanup(func() { h.ClearTimeout(timer) })
		}, hooks.Once)

		return &View{
			Lines: []string{fmt.Sprintf("Count: %d (increments once per second)", count)},
			State: map[string]any{"count": count},
		}
	}
}
