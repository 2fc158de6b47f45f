// Package mistakes holds the six useEffect mistake demos. Each mistake pairs
// a Wrong and a Correct component running on the hooks runtime, together
// with the copy shown around them.
package mistakes

import (
	"errors"
	"fmt"
	"time"

	"github.com/vesaa/effectlab/internal/hooks"
	"github.com/vesaa/effectlab/internal/quote"
)

var (
	ErrUnknownVariant = errors.New("mistakes: unknown variant")
	ErrUnknownAction  = errors.New("mistakes: unknown action")
	ErrUnknownName    = errors.New("mistakes: unknown name")
	ErrDisabled       = errors.New("mistakes: variant is disabled")
)

// Variant selects the Wrong or Correct half of a demo.
type Variant string

const (
	Wrong   Variant = "wrong"
	Correct Variant = "correct"
)

// ParseVariant validates a variant from a URL.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(s); v {
	case Wrong, Correct:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Env carries what the demo components need from their host.
type Env struct {
	Quotes quote.Source
	// Tick is the repeating timer period of the leaked-timer demo.
	Tick time.Duration
	// Delay is the one-shot timeout of the self-triggering demo.
	Delay time.Duration
}

func (e Env) withDefaults() Env {
	if e.Quotes == nil {
		e.Quotes = quote.Static("Design for failure.")
	}
	if e.Tick <= 0 {
		e.Tick = time.Second
	}
	if e.Delay <= 0 {
		e.Delay = time.Second
	}
	return e
}

// Button is an action a visitor can trigger on a variant.
type Button struct {
	Action string
	Label  string
}

// Example is one half of a demo.
type Example struct {
	Code    string
	Blurb   string
	Note    string
	Buttons []Button
	// Disabled examples are described on the page but never mounted there.
	Disabled     bool
	DisabledNote []string

	component func(env Env) hooks.RenderFunc
}

// Mount mounts the example's component. Disabled examples can still be
// mounted directly; the page just never does it.
func (e *Example) Mount(env Env, opts hooks.Options) (*hooks.Instance, error) {
	return hooks.Mount(e.component(env.withDefaults()), opts)
}

// Mistake is one tutorial topic.
type Mistake struct {
	ID          int
	Title       string
	Description string
	Heading     string
	Subtitle    string
	Takeaway    string
	Wrong       Example
	Correct     Example

	// Names, when set, are the values the page passes to both variants as
	// props; DefaultName is the initial one.
	Names       []string
	DefaultName string
}

// Slug is the route segment, e.g. "mistake-3".
func (m *Mistake) Slug() string { return fmt.Sprintf("mistake-%d", m.ID) }

// Path is the page route.
func (m *Mistake) Path() string { return "/" + m.Slug() }

// Example returns the half selected by v.
func (m *Mistake) Example(v Variant) *Example {
	if v == Wrong {
		return &m.Wrong
	}
	return &m.Correct
}

var catalog = []*Mistake{
	missingDependency(),
	mixedConcerns(),
	leakedTimer(),
	asyncEffect(),
	selfTriggering(),
	derivedState(),
}

// All returns the mistakes in order.
func All() []*Mistake { return catalog }

// ByID returns mistake id (1-based).
func ByID(id int) (*Mistake, bool) {
	if id < 1 || id > len(catalog) {
		return nil, false
	}
	return catalog[id-1], true
}

// View is what a demo component renders: the status lines shown under its
// buttons plus a machine-readable snapshot for the JSON API.
type View struct {
	Lines   []string
	State   map[string]any
	Running bool

	handlers map[string]func()
}

func increment(c int) int { return c + 1 }

func orLoading(s string) string {
	if s == "" {
		return "Loading..."
	}
	return s
}
