package mistakes

import (
	"fmt"
	"strings"

	"github.com/vesaa/effectlab/internal/hooks"
)

func derivedState() *Mistake {
	return &Mistake{
		ID:          6,
		Title:       "Over-reliance on useEffect",
		Description: "Using useEffect instead of state/props → stale values",
		Heading:     "Mistake #6: Over-reliance on useEffect",
		Subtitle:    "Don't use useEffect when you can just use props or derived state",
		Takeaway: "Don't reach for useEffect by default. If you can derive data from props or existing state, do that instead. " +
			"useEffect should be used for side effects (API calls, subscriptions, DOM manipulation), " +
			"not for synchronizing state that can be computed directly.",
		Names:       []string{"John Doe", "Jane Smith", "Bob Johnson", "Alice Williams"},
		DefaultName: "John Doe",
		Wrong: Example{
			Code: `function App({ name }) {
  const [displayName, setDisplayName] = useState('');

  useEffect(() => {
    setDisplayName(name);
  }, []); // ❌ name not in dependency

  return <h1>{displayName}</h1>;
}`,
			Blurb: "useEffect runs only once → displayName never updates when name prop changes. " +
				"Over-reliance on useEffect instead of just using props directly!",
			Note:      "The displayName is stuck with the initial value and won't update!",
			component: copiedProp,
		},
		Correct: Example{
			Code: `function App({ name }) {
  // ✅ No need for useEffect!
  return <h1>{name}</h1>;
}

// Or if you need to transform it:
function App({ name }) {
  const displayName = name.toUpperCase();
  return <h1>{displayName}</h1>;
}`,
			Blurb:     "Use state only when necessary; props can often be used directly → cleaner code. No useEffect needed!",
			Note:      "✓ Updates automatically whenever the prop changes!",
			component: derivedProp,
		},
	}
}

// copiedProp copies the name prop into local state once, on mount.
func copiedProp(Env) hooks.RenderFunc {
	return func(h *hooks.Hooks) any {
		name := hooks.Props[string](h)
		displayName, setDisplayName := hooks.UseState(h, "")

		h.UseEffect(func() any {
			setDisplayName.Set(name)
			return nil
		}, hooks.Once)

		shown := displayName
		if shown == "" {
			shown = "(empty - not updated!)"
		}
		return &View{
			Lines: []string{fmt.Sprintf("Display Name: %s", shown)},
			State: map[string]any{"displayName": displayName, "prop": name},
		}
	}
}

// derivedProp reads the prop directly and derives the uppercase form inline.
func derivedProp(Env) hooks.RenderFunc {
	return func(h *hooks.Hooks) any {
		name := hooks.Props[string](h)
		upper := strings.ToUpper(name)
		return &View{
			Lines: []string{
				fmt.Sprintf("Display Name: %s", name),
				fmt.Sprintf("Derived: %s", upper),
			},
			State: map[string]any{"displayName": name, "derived": upper},
		}
	}
}
