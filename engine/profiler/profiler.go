package profiler

import (
	"log"
	"runtime"
	"time"

	"github.com/hako/durafmt"
)

const mb = 1 << 20

// Profiler counts frames and logs frame rate, heap, allocation rate, GC pauses and uptime once
// per interval. It is not safe for concurrent use; tick it from the frame loop.
type Profiler struct {
	interval time.Duration
	now      func() time.Time
	logf     func(format string, args ...any)

	started   time.Time
	lastLog   time.Time
	frames    int
	mem       runtime.MemStats
	prevGC    uint32
	prevAlloc uint64
}

// NewProfiler creates a Profiler that logs every second through log.Printf.
//
// Parameters:
//   - options: ProfilerOption functions applied in order
//
// Returns:
//   - *Profiler: the profiler
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		interval: time.Second,
		now:      time.Now,
		logf:     log.Printf,
	}
	for _, opt := range options {
		opt(p)
	}
	p.started = p.now()
	p.lastLog = p.started
	return p
}

// Uptime is the time since NewProfiler in words, e.g. "2 minutes 5 seconds".
func (p *Profiler) Uptime() string {
	return humanize(p.now().Sub(p.started))
}

// humanize formats d to whole seconds.
func humanize(d time.Duration) string {
	if d = d.Truncate(time.Second); d <= 0 {
		return "0 seconds"
	}
	return durafmt.Parse(d).String()
}

// Tick counts a frame and logs one stat line once the interval has passed since the last one.
//
// Returns:
//   - bool: true when a line was logged
func (p *Profiler) Tick() bool {
	p.frames++
	now := p.now()
	window := now.Sub(p.lastLog)
	if window < p.interval {
		return false
	}
	secs := window.Seconds()

	runtime.ReadMemStats(&p.mem)
	lastPause, maxPause := p.gcPauses()
	p.logf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB | Uptime: %s",
		float64(p.frames)/secs,
		float64(p.mem.Alloc)/mb,
		float64(p.mem.TotalAlloc-p.prevAlloc)/mb/secs,
		p.mem.NumGC, lastPause, maxPause,
		float64(p.mem.Sys)/mb,
		humanize(now.Sub(p.started)),
	)

	p.frames = 0
	p.lastLog = now
	p.prevGC = p.mem.NumGC
	p.prevAlloc = p.mem.TotalAlloc
	return true
}

// gcPauses returns the latest pause and the longest pause since the previous log line, in
// microseconds. PauseNs is a ring of the last 256 pauses.
func (p *Profiler) gcPauses() (last, longest uint64) {
	n := p.mem.NumGC
	if n == 0 {
		return 0, 0
	}
	last = p.mem.PauseNs[(n-1)%256] / 1000
	from := p.prevGC
	if n-from > 256 {
		from = n - 256
	}
	for i := from; i < n; i++ {
		longest = max(longest, p.mem.PauseNs[i%256]/1000)
	}
	return last, longest
}
