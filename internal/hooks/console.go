package hooks

import (
	"fmt"
	"strings"
	"sync"
)

// Level is a console severity.
type Level string

const (
	LevelLog   Level = "log"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Console is where components write their diagnostic output.
type Console interface {
	Log(args ...any)
	Warn(args ...any)
	Error(args ...any)
}

// Format joins console arguments the way a browser console prints them.
func Format(args ...any) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}

// Discard is a Console that drops everything.
var Discard Console = discard{}

type discard struct{}

func (discard) Log(...any)   {}
func (discard) Warn(...any)  {}
func (discard) Error(...any) {}

// Entry is one recorded console line.
type Entry struct {
	Level   Level
	Message string
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s", e.Level, e.Message)
}

// MemoryConsole records console output in memory.
type MemoryConsole struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryConsole returns an empty MemoryConsole.
func NewMemoryConsole() *MemoryConsole {
	return &MemoryConsole{}
}

func (c *MemoryConsole) Log(args ...any)   { c.add(LevelLog, args) }
func (c *MemoryConsole) Warn(args ...any)  { c.add(LevelWarn, args) }
func (c *MemoryConsole) Error(args ...any) { c.add(LevelError, args) }

func (c *MemoryConsole) add(l Level, args []any) {
	c.mu.Lock()
	c.entries = append(c.entries, Entry{Level: l, Message: Format(args...)})
	c.mu.Unlock()
}

// Entries returns a copy of everything recorded so far.
func (c *MemoryConsole) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Count returns how many entries contain substr.
func (c *MemoryConsole) Count(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if strings.Contains(e.Message, substr) {
			n++
		}
	}
	return n
}

// CountLevel returns how many entries have level l.
func (c *MemoryConsole) CountLevel(l Level) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.Level == l {
			n++
		}
	}
	return n
}
