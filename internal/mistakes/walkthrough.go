package mistakes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vesaa/effectlab/internal/hooks"
)

// Walkthrough mounts both variants of m on a manual clock, plays a short
// script of visitor actions against them and writes the console transcript
// and final views to w.
func Walkthrough(ctx context.Context, m *Mistake, env Env, w io.Writer) error {
	env = env.withDefaults()
	sched := hooks.NewManualScheduler(0)
	defer sched.Close()

	consoles := map[Variant]*hooks.MemoryConsole{
		Wrong:   hooks.NewMemoryConsole(),
		Correct: hooks.NewMemoryConsole(),
	}
	opts := func(_ *Mistake, v Variant) hooks.Options {
		return hooks.Options{Console: consoles[v], Scheduler: sched}
	}

	fmt.Fprintf(w, "== %s\n", m.Heading)

	page, err := Mount(m, env, opts)
	if err != nil {
		return err
	}
	defer page.Unmount()

	step := func(v Variant, action string) error {
		fmt.Fprintf(w, "> %s: %s\n", v, action)
		return page.Dispatch(v, action)
	}
	advance := func(n int, d time.Duration) {
		fmt.Fprintf(w, "> advance %d × %s\n", n, d)
	}

	switch m.ID {
	case 1, 2:
		action := "rerender"
		if m.ID == 2 {
			action = "increment"
		}
		for _, v := range []Variant{Wrong, Correct} {
			for range 3 {
				if err := step(v, action); err != nil {
					return err
				}
			}
		}
	case 3:
		for _, v := range []Variant{Wrong, Correct} {
			for range 3 {
				if err := step(v, "start"); err != nil {
					return err
				}
				advance(2, env.Tick)
				sched.Advance(2 * env.Tick)
				if err := page.Settle(ctx); err != nil {
					return err
				}
				if err := step(v, "stop"); err != nil {
					return err
				}
			}
		}
	case 5:
		fmt.Fprintln(w, "> wrong: mounting under the update depth guard")
		wrong, err := m.Wrong.Mount(env, hooks.Options{Console: consoles[Wrong], Scheduler: sched})
		defer wrong.Unmount()
		if !errors.Is(err, hooks.ErrMaxUpdateDepth) {
			return fmt.Errorf("expected %v from the self-triggering effect, got %v", hooks.ErrMaxUpdateDepth, err)
		}
		fmt.Fprintf(w, "  aborted: %v\n", err)
		advance(3, env.Delay)
		sched.Advance(3 * env.Delay)
	case 6:
		for _, name := range m.Names[1:] {
			fmt.Fprintf(w, "> name: %s\n", name)
			if err := page.SetName(name); err != nil {
				return err
			}
		}
	}

	if err := page.Settle(ctx); err != nil {
		return err
	}

	for _, v := range []Variant{Wrong, Correct} {
		fmt.Fprintf(w, "-- %s console\n", v)
		for _, e := range consoles[v].Entries() {
			fmt.Fprintf(w, "  %s\n", e)
		}
		view := page.View(v)
		if view == nil {
			fmt.Fprintf(w, "-- %s view: disabled\n", v)
			continue
		}
		fmt.Fprintf(w, "-- %s view\n", v)
		for _, line := range view.Lines {
			fmt.Fprintf(w, "  %s\n", line)
		}
		inst := page.Instance(v)
		if title := inst.Title(); title != "" {
			fmt.Fprintf(w, "  title: %s\n", title)
		}
		fmt.Fprintf(w, "  live timers: %d\n", inst.LiveTimers())
	}
	return nil
}
