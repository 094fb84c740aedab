package profiler

import "time"

// ProfilerOption configures a Profiler in NewProfiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often Tick logs. Non-positive values keep the 1 second default.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithNow replaces time.Now, so frame timing can follow a fake clock.
//
// Parameters:
//   - now: the time source
//
// Returns:
//   - ProfilerOption: the option
func WithNow(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogf replaces log.Printf as the sink for stat lines.
func WithLogf(logf func(format string, args ...any)) ProfilerOption {
	return func(p *Profiler) {
		if logf != nil {
			p.logf = logf
		}
	}
}
