package mistakes

import (
	"context"
	"fmt"

	"github.com/vesaa/effectlab/internal/hooks"
)

func mixedConcerns() *Mistake {
	return &Mistake{
		ID:          2,
		Title:       "Doing Too Much in One useEffect",
		Description: "Multiple concerns in one effect → harder to debug",
		Heading:     "Mistake #2: Doing Too Much in One useEffect",
		Subtitle:    "Separate concerns for better debugging and maintainability",
		Takeaway: "Each useEffect should handle a single concern. This makes your code easier to understand, debug, and maintain. " +
			"Don't be afraid to use multiple useEffect hooks!",
		Wrong: Example{
			Code: `function App() {
  const [data, setData] = useState(null);
  const [count, setCount] = useState(0);

  useEffect(() => {
    // ❌ Multiple concerns in one effect
    fetch('/api/data')
      .then(res => res.json())
      .then(setData);
    console.log('Count is', count);
    document.title = ` + "`Count: ${count}`" + `;
  }, [count]);

  return <div>{data}</div>;
}`,
			Blurb: "One useEffect handles multiple concerns → harder to debug, increases risk of bugs. " +
				"The fetch runs every time count changes!",
			Buttons:   []Button{{Action: "increment", Label: "Increment Count"}},
			component: tangledEffect,
		},
		Correct: Example{
			Code: `function App() {
  const [data, setData] = useState(null);
  const [count, setCount] = useState(0);

  // ✅ Separate effect for fetching
  useEffect(() => {
    fetch('/api/data')
      .then(res => res.json())
      .then(setData);
  }, []);

  // ✅ Separate effect for count
  useEffect(() => {
    console.log('Count is', count);
    document.title = ` + "`Count: ${count}`" + `;
  }, [count]);

  return <div>{data}</div>;
}`,
			Blurb: "Split into multiple useEffects → each handles a single concern. " +
				"Now fetch only runs once, and count logic runs only when count changes.",
			Buttons:   []Button{{Action: "increment", Label: "Increment Count"}},
			component: splitEffects,
		},
	}
}

func countDataView(count int, data string, fetches int, setCount hooks.Setter[int]) *View {
	return &View{
		Lines: []string{fmt.Sprintf("Count: %d | Data: %s", count, orLoading(data))},
		State: map[string]any{"count": count, "data": data, "fetches": fetches},
		handlers: map[string]func(){
			"increment": func() { setCount.Update(increment) },
		},
	}
}

// fetchInto starts a fetch whose result lands in setData. Like a promise
// chain without a catch, a failure surfaces only as an uncaught rejection.
func fetchInto(h *hooks.Hooks, env Env, setData hooks.Setter[string], setFetches hooks.Setter[int]) {
	setFetches.Update(increment)
	h.Async(func(ctx context.Context) error {
		text, err := env.Quotes.Fetch(ctx)
		if err != nil {
			return err
		}
		setData.Set(text)
		return nil
	})
}

func tangledEffect(env Env) hooks.RenderFunc {
	return func(h *hooks.Hooks) any {
		data, setData := hooks.UseState(h, "")
		count, setCount := hooks.UseState(h, 0)
		fetches, setFetches := hooks.UseState(h, 0)

		h.UseEffect(func() any {
			fetchInto(h, env, setData, setFetches)
			h.Console().Log("Count is", count)
			h.Document().SetTitle(fmt.Sprintf("Count: %d", count))
			return nil
		}, hooks.Deps{count})

		return countDataView(count, data, fetches, setCount)
	}
}

func splitEffects(env Env) hooks.RenderFunc {
	return func(h *hooks.Hooks) any {
		data, setData := hooks.UseState(h, "")
		count, setCount := hooks.UseState(h, 0)
		fetches, setFetches := hooks.UseState(h, 0)

		h.UseEffect(func() any {
			fetchInto(h, env, setData, setFetches)
			return nil
		}, hooks.Once)

		h.UseEffect(func() any {
			h.Console().Log("Count is", count)
			h.Document().SetTitle(fmt.Sprintf("Count: %d", count))
			return nil
		}, hooks.Deps{count})

		return countDataView(count, data, fetches, setCount)
	}
}
