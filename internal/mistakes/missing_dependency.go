package mistakes

import (
	"fmt"

	"github.com/vesaa/effectlab/internal/hooks"
)

func missingDependency() *Mistake {
	return &Mistake{
		ID:          1,
		Title:       "Missing Dependency Array",
		Description: "useEffect runs on every render → unnecessary re-renders",
		Heading:     "Mistake #1: Missing Dependency Array",
		Subtitle:    "Learn why you should always include a dependency array in useEffect",
		Takeaway: "Always include a dependency array in useEffect. Use an empty array [] if you want it to run only once on mount, " +
			"or include specific dependencies if you want it to run when those values change.",
		Wrong: Example{
			Code: `function App() {
  useEffect(() => {
    console.log('Component rendered!');
  }); // ❌ No dependency array

  return <h1>Hello World</h1>;
}`,
			Blurb:     "Without a dependency array, useEffect runs on every render → unnecessary re-renders, performance issues.",
			Buttons:   []Button{{Action: "rerender", Label: "Trigger Re-render (Check Console)"}},
			component: rerenderLogger(false),
		},
		Correct: Example{
			Code: `function App() {
  useEffect(() => {
    console.log('Runs only once on mount');
  }, []); // ✅ Empty array → runs once

  return <h1>Hello World</h1>;
}`,
			Blurb:     "Add [] to run only once (componentDidMount behavior).",
			Buttons:   []Button{{Action: "rerender", Label: "Trigger Re-render (Check Console)"}},
			component: rerenderLogger(true),
		},
	}
}

// rerenderLogger logs from an effect. With once set the effect declares an
// empty dependency list; otherwise it declares none and runs every commit.
func rerenderLogger(once bool) func(Env) hooks.RenderFunc {
	return func(Env) hooks.RenderFunc {
		return func(h *hooks.Hooks) any {
			renderCount, setRenderCount := hooks.UseState(h, 0)

			note := "useEffect runs every time!"
			if once {
				h.UseEffect(func() any {
					h.Console().Log("Runs only once on mount")
					return nil
				}, hooks.Once)
				note = "useEffect runs only once!"
			} else {
				h.UseEffect(func() any {
					h.Console().Log("Component rendered!")
					return nil
				}, nil)
			}

			return &View{
				Lines: []string{fmt.Sprintf("Render count: %d (Check console - %s)", renderCount, note)},
				State: map[string]any{"renderCount": renderCount},
				handlers: map[string]func(){
					"rerender": func() { setRenderCount.Update(increment) },
				},
			}
		}
	}
}
