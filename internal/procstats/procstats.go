// Package procstats samples the lab process with gopsutil so the pages can
// show what leaked timers cost the server.
package procstats

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Snapshot holds a single sample.
type Snapshot struct {
	Hostname       string    `json:"hostname"`
	OS             string    `json:"os"`
	Goroutines     int       `json:"goroutines"`
	Threads        int32     `json:"threads"`
	RSSBytes       uint64    `json:"rss_bytes"`
	CPUPercent     float64   `json:"cpu_percent"`
	HostMemPercent float64   `json:"host_mem_percent"`
	CollectedAt    time.Time `json:"collected_at"`
}

// RSS formats the resident set size for display.
func (s *Snapshot) RSS() string {
	const mib = 1 << 20
	return fmt.Sprintf("%.1f MiB", float64(s.RSSBytes)/mib)
}

// Collector samples the current process. Samples younger than maxAge are
// served from cache.
type Collector struct {
	mu     sync.Mutex
	proc   *process.Process
	os     string
	host   string
	maxAge time.Duration
	last   *Snapshot
}

// NewCollector creates a ready-to-use Collector for this process.
func NewCollector(maxAge time.Duration) (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("procstats: %w", err)
	}
	c := &Collector{proc: proc, os: detailedOS(), maxAge: maxAge}
	if h, err := os.Hostname(); err == nil {
		c.host = h
	}
	return c, nil
}

// Collect returns the current snapshot. Fields gopsutil cannot read on this
// platform are left zero.
func (c *Collector) Collect() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last != nil && time.Since(c.last.CollectedAt) < c.maxAge {
		return c.last
	}

	snap := &Snapshot{
		Hostname:    c.host,
		OS:          c.os,
		Goroutines:  runtime.NumGoroutine(),
		CollectedAt: time.Now(),
	}

	// Memory
	if mi, err := c.proc.MemoryInfo(); err == nil {
		snap.RSSBytes = mi.RSS
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.HostMemPercent = vm.UsedPercent
	}

	// Threads + CPU
	if n, err := c.proc.NumThreads(); err == nil {
		snap.Threads = n
	}
	if pct, err := c.proc.CPUPercent(); err == nil {
		snap.CPUPercent = pct
	}

	c.last = snap
	return snap
}

// detailedOS returns a descriptive OS version string, or runtime.GOOS as fallback.
func detailedOS() string {
	info, err := host.Info()
	if err == nil && info.Platform != "" {
		if info.PlatformVersion != "" {
			return fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
		}
		return info.Platform
	}
	return runtime.GOOS
}
