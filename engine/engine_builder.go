package engine

import (
	"github.com/Carmen-Shannon/oxy-tabletop/engine/profiler"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/scene"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/window"
)

// EngineBuilderOption configures an Engine in NewEngine.
type EngineBuilderOption func(*engine)

// WithProfiling turns the per-frame profiler tick on or off.
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) { e.profilingEnabled = enabled }
}

// WithProfiler replaces the profiler ticked while profiling is enabled.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) { e.profiler = p }
}

// WithWindow sets the window whose message loop drives Run. Without one, frames only advance
// through Step.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - EngineBuilderOption: the option
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) { e.window = w }
}

// WithClock replaces the wall clock frame deltas are measured with. nil is ignored.
func WithClock(c Clock) EngineBuilderOption {
	return func(e *engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithMaxDelta caps how far one frame may advance, in seconds. Values <= 0 keep DefaultMaxDelta.
func WithMaxDelta(seconds float32) EngineBuilderOption {
	return func(e *engine) {
		if seconds > 0 {
			e.maxDelta = seconds
		}
	}
}

// WithScene registers s at z-index key. Lower keys update and draw first.
//
// Parameters:
//   - key: the z-index
//   - s: the scene
//
// Returns:
//   - EngineBuilderOption: the option
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) { e.scenes[key] = s }
}
