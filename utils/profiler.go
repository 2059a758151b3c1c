package utils

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/pkg/profile"
)

// Profiler accumulates wall time and call counts per named region. It is
// safe for concurrent use; regions may be entered from many goroutines.
type Profiler struct {
	mu      sync.Mutex
	regions map[string]*regionStats
}

type regionStats struct {
	calls   int64
	elapsed time.Duration
}

var ErrPerfUnsupported = errors.New("hardware performance counters unavailable")

// DefaultProfiler collects the regions entered through Region.
var DefaultProfiler = NewProfiler()

func NewProfiler() *Profiler {
	return &Profiler{regions: make(map[string]*regionStats)}
}

// Region starts timing name and returns the function that stops it:
//
//	defer utils.Region("FerroX::InitData")()
func Region(name string) func() {
	return DefaultProfiler.Region(name)
}

func (p *Profiler) Region(name string) func() {
	start := time.Now()
	return func() {
		el := time.Since(start)
		p.mu.Lock()
		rs, ok := p.regions[name]
		if !ok {
			rs = &regionStats{}
			p.regions[name] = rs
		}
		rs.calls++
		rs.elapsed += el
		p.mu.Unlock()
	}
}

// Calls returns the number of completed entries into region name.
func (p *Profiler) Calls(name string) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rs, ok := p.regions[name]; ok {
		return rs.calls
	}
	return 0
}

func (p *Profiler) Reset() {
	p.mu.Lock()
	p.regions = make(map[string]*regionStats)
	p.mu.Unlock()
}

// Print writes one line per region, longest total time first.
func (p *Profiler) Print(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.regions))
	for name := range p.regions {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return p.regions[names[i]].elapsed > p.regions[names[j]].elapsed
	})
	fmt.Fprintf(w, "%-40s %10s %14s\n", "Region", "NCalls", "Time")
	for _, name := range names {
		rs := p.regions[name]
		fmt.Fprintf(w, "%-40s %10d %14s\n", name, rs.calls, rs.elapsed)
	}
}

// StartCPUProfile writes a pprof CPU profile into dir until the returned
// stop function is called.
func StartCPUProfile(dir string) (stop func()) {
	return profile.Start(profile.CPUProfile, profile.ProfilePath(dir),
		profile.NoShutdownHook, profile.Quiet).Stop
}
