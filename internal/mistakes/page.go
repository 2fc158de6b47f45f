package mistakes

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vesaa/effectlab/internal/hooks"
)

// OptionsFunc supplies the hooks options for one variant of a page.
type OptionsFunc func(m *Mistake, v Variant) hooks.Options

// Page is a mounted mistake: its enabled variants plus page-level state.
type Page struct {
	Mistake *Mistake

	wrong   *hooks.Instance
	correct *hooks.Instance

	mu   sync.Mutex
	name string
}

// Mount mounts every enabled variant of m.
func Mount(m *Mistake, env Env, opts OptionsFunc) (*Page, error) {
	p := &Page{Mistake: m, name: m.DefaultName}
	for _, v := range []Variant{Wrong, Correct} {
		ex := m.Example(v)
		if ex.Disabled {
			continue
		}
		o := opts(m, v)
		if o.Name == "" {
			o.Name = fmt.Sprintf("%s/%s", m.Slug(), v)
		}
		if m.Names != nil {
			o.Props = m.DefaultName
		}
		inst, err := ex.Mount(env, o)
		if err != nil {
			inst.Unmount()
			p.Unmount()
			return nil, fmt.Errorf("mounting %s: %w", o.Name, err)
		}
		if v == Wrong {
			p.wrong = inst
		} else {
			p.correct = inst
		}
	}
	return p, nil
}

// Instance returns the mounted variant, or nil when it is disabled.
func (p *Page) Instance(v Variant) *hooks.Instance {
	if v == Wrong {
		return p.wrong
	}
	return p.correct
}

// Dispatch triggers a button action on a variant and waits for the result
// to be rendered.
func (p *Page) Dispatch(v Variant, action string) error {
	inst := p.Instance(v)
	if inst == nil {
		return fmt.Errorf("%s/%s: %w", p.Mistake.Slug(), v, ErrDisabled)
	}
	found := false
	err := inst.Act(func() {
		view, _ := inst.View().(*View)
		if view == nil {
			return
		}
		if fn, ok := view.handlers[action]; ok {
			found = true
			fn()
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %q on %s/%s", ErrUnknownAction, action, p.Mistake.Slug(), v)
	}
	return nil
}

// Name returns the current page-level name.
func (p *Page) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

// SetName changes the page-level name and passes it to both variants.
func (p *Page) SetName(name string) error {
	if !slices.Contains(p.Mistake.Names, name) {
		return fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	p.mu.Lock()
	p.name = name
	p.mu.Unlock()
	for _, inst := range p.instances() {
		if err := inst.SetProps(name); err != nil {
			return err
		}
	}
	return nil
}

// View returns the latest view of a variant, or nil when it is disabled.
func (p *Page) View(v Variant) *View {
	inst := p.Instance(v)
	if inst == nil {
		return nil
	}
	view, _ := inst.View().(*View)
	return view
}

// Running reports whether any variant has a timer it wants to show ticking.
func (p *Page) Running() bool {
	for _, v := range []Variant{Wrong, Correct} {
		if view := p.View(v); view != nil && view.Running {
			return true
		}
	}
	return false
}

// Busy reports whether any variant is still waiting on async work, such as
// a fetch that outlasted the request.
func (p *Page) Busy() bool {
	for _, inst := range p.instances() {
		if inst.Busy() {
			return true
		}
	}
	return false
}

// Settle waits for both variants to finish pending work.
func (p *Page) Settle(ctx context.Context) error {
	for _, inst := range p.instances() {
		if err := inst.Settle(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Unmount unmounts both variants. Timers they leaked keep running.
func (p *Page) Unmount() {
	for _, inst := range p.instances() {
		inst.Unmount()
	}
}

func (p *Page) instances() []*hooks.Instance {
	var out []*hooks.Instance
	for _, inst := range []*hooks.Instance{p.wrong, p.correct} {
		if inst != nil {
			out = append(out, inst)
		}
	}
	return out
}

// VariantState is the JSON form of a mounted variant.
type VariantState struct {
	Disabled   bool           `json:"disabled"`
	Lines      []string       `json:"lines,omitempty"`
	State      map[string]any `json:"state,omitempty"`
	Title      string         `json:"title,omitempty"`
	LiveTimers int            `json:"live_timers"`
	Stats      hooks.Stats    `json:"stats"`
}

// Snapshot reports both variants for the JSON API.
func (p *Page) Snapshot() map[Variant]VariantState {
	out := make(map[Variant]VariantState, 2)
	for _, v := range []Variant{Wrong, Correct} {
		inst := p.Instance(v)
		if inst == nil {
			out[v] = VariantState{Disabled: true}
			continue
		}
		s := VariantState{
			Title:      inst.Title(),
			LiveTimers: inst.LiveTimers(),
			Stats:      inst.Stats(),
		}
		if view, ok := inst.View().(*View); ok {
			s.Lines = view.Lines
			s.State = view.State
		}
		out[v] = s
	}
	return out
}
