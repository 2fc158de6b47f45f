package mistakes

import (
	"context"
	"fmt"

	"github.com/vesaa/effectlab/internal/hooks"
)

func asyncEffect() *Mistake {
	return &Mistake{
		ID:          4,
		Title:       "Async Function Directly in useEffect",
		Description: "useEffect cannot be async → React warns",
		Heading:     "Mistake #4: Async Function Directly in useEffect",
		Subtitle:    "Learn the correct way to handle async operations in useEffect",
		Takeaway: "Never make the useEffect callback async directly. Instead, define an async function inside the effect and call it. " +
			"This ensures useEffect returns the correct value (undefined or a cleanup function).",
		Wrong: Example{
			Code: `function App() {
  useEffect(async () => {  // ❌ async directly
    const res = await fetch('/api/data');
    const data = await res.json();
    console.log(data);
  }, []);
}`,
			Blurb: "useEffect cannot be async → returns a promise instead of undefined or cleanup function → React warns. " +
				"Check console for warning!",
			Note:      "⚠️ Check console: You'll see a React warning about useEffect return value",
			component: asyncCallback,
		},
		Correct: Example{
			Code: `function App() {
  useEffect(() => {
    // ✅ Define async function inside
    const fetchData = async () => {
      const res = await fetch('/api/data');
      const data = await res.json();
      console.log(data);
    };

    fetchData(); // ✅ Call it
  }, []);
}`,
			Blurb:     "Define async function inside effect, then call it. This way useEffect returns undefined or a cleanup function.",
			Note:      "✓ No warnings! Clean implementation with error handling",
			component: innerAsyncHelper,
		},
	}
}

// asyncCallback makes the effect body itself asynchronous, so it hands the
// runtime a pending operation instead of nothing or a teardown.
func asyncCallback(env Env) hooks.RenderFunc {
	return func(h *hooks.Hooks) any {
		data, setData := hooks.UseState(h, "")

		h.UseEffect(func() any {
			return h.Async(func(ctx context.Context) error {
				text, err := env.Quotes.Fetch(ctx)
				if err != nil {
					return err
				}
				setData.Set(text)
				h.Console().Log("Wrong: async directly in useEffect")
				return nil
			})
		}, hooks.Once)

		return &View{
			Lines: []string{fmt.Sprintf("Data: %s", orLoading(data))},
			State: map[string]any{"data": data},
		}
	}
}

// innerAsyncHelper keeps the effect body synchronous and runs the fetch in
// a helper that handles its own failure.
func innerAsyncHelper(env Env) hooks.RenderFunc {
	return func(h *hooks.Hooks) any {
		data, setData := hooks.UseState(h, "")
		loading, setLoading := hooks.UseState(h, false)

		h.UseEffect(func() any {
			fetchData := func(ctx context.Context) error {
				setLoading.Set(true)
				defer setLoading.Set(false)

				text, err := env.Quotes.Fetch(ctx)
				if err != nil {
					h.Console().Error("Error:", err)
					return nil
				}
				setData.Set(text)
				h.Console().Log("Correct: async function defined inside")
				return nil
			}

			h.Async(fetchData)
			return nil
		}, hooks.Once)

		status := "Loaded"
		if loading {
			status = "Loading..."
		}
		return &View{
			Lines: []string{
				fmt.Sprintf("Status: %s", status),
				fmt.Sprintf("Data: %s", orLoading(data)),
			},
			State: map[string]any{"data": data, "loading": loading},
		}
	}
}
