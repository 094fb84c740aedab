package engine

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/camera"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/profiler"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/scene"
	"github.com/Carmen-Shannon/oxy-tabletop/engine/window"
)

// DefaultMaxDelta is the largest frame delta, in seconds, a single Step will advance by.
const DefaultMaxDelta float32 = 0.1

// Clock supplies the time source for frame deltas.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// engine implements the Engine interface.
// Every frame runs on the window's thread, after that iteration's window events were dispatched.
type engine struct {
	mu *sync.Mutex

	window window.Window
	clock  Clock

	profiler         *profiler.Profiler
	profilingEnabled bool

	maxDelta  float32
	lastFrame time.Time
	elapsed   float32

	tickCallback func(deltaTime, elapsed float32)

	queue []func()

	scenes map[int]scene.Scene
}

// Engine is the main entry point for the engine.
// It owns the frame loop: each window update runs queued work, the tick callback, camera controllers,
// scene updates and one render pass over every registered scene.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance (nil for headless engines)
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickCallback registers the function called once per frame before the cameras advance.
	// Use this for game logic and input-driven state changes.
	//
	// Parameters:
	//   - callback: function receiving the clamped frame delta and the accumulated elapsed time, in seconds
	SetTickCallback(callback func(deltaTime, elapsed float32))

	// Post queues fn to run on the frame thread at the start of the next Step.
	// Safe to call from any goroutine.
	//
	// Parameters:
	//   - fn: the work to run
	Post(fn func())

	// AddScene registers a scene at the given z-index key.
	// Scenes are updated and drawn in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Elapsed returns the accumulated clamped frame time in seconds.
	//
	// Returns:
	//   - float32: seconds advanced since the first frame
	Elapsed() float32

	// Step runs exactly one frame. A panic raised inside the frame is recovered and logged.
	//
	// Returns:
	//   - float32: the clamped delta the frame advanced by
	Step() float32

	// Run drives Step from the window's message loop and blocks until the window closes.
	Run()

	// Quit asks the window to close, ending Run after the current iteration.
	// Safe to call multiple times.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// When a window is supplied its resize, wheel and pointer events are forwarded to every scene's camera controller
// and its renderer.
//
// Parameters:
//   - options: functional options for engine configuration (window, clock, scenes, profiling, delta cap)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:       &sync.Mutex{},
		clock:    systemClock{},
		maxDelta: DefaultMaxDelta,
		scenes:   make(map[int]scene.Scene),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithNow(e.clock.Now))
	}

	if e.window != nil {
		e.bindWindow()
	}

	return e
}

// bindWindow forwards window events to every scene's controller. Events are dispatched on the window thread
// before the update callback, so each handler lands before the frame that reads it.
func (e *engine) bindWindow() {
	e.window.SetResizeCallback(func(width, height int) {
		for _, s := range e.sortedScenes() {
			if r := s.Renderer(); r != nil {
				r.Resize(width, height)
			}
			e.withController(s, func(c camera.CameraController) { c.HandleResize(width, height) })
		}
	})
	e.window.SetScrollCallback(func(deltaY float32) {
		e.forEachController(func(c camera.CameraController) { c.HandleWheel(deltaY) })
	})
	e.window.SetPointerDownCallback(func(button common.MouseButton, x, y float32) {
		e.forEachController(func(c camera.CameraController) { c.HandlePointerDown(button, x, y) })
	})
	e.window.SetPointerMoveCallback(func(x, y float32) {
		e.forEachController(func(c camera.CameraController) { c.HandlePointerMove(x, y) })
	})
	e.window.SetPointerUpCallback(func(button common.MouseButton, _, _ float32) {
		e.forEachController(func(c camera.CameraController) { c.HandlePointerUp(button) })
	})
	e.window.SetPointerLeaveCallback(func() {
		e.forEachController(func(c camera.CameraController) { c.HandlePointerLeave() })
	})
}

func (e *engine) forEachController(fn func(c camera.CameraController)) {
	for _, s := range e.sortedScenes() {
		e.withController(s, fn)
	}
}

func (e *engine) withController(s scene.Scene, fn func(c camera.CameraController)) {
	cam := s.Camera()
	if cam == nil {
		return
	}
	if c := cam.Controller(); c != nil {
		fn(c)
	}
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetTickCallback(callback func(deltaTime, elapsed float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) Post(fn func()) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = append(e.queue, fn)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

func (e *engine) Elapsed() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elapsed
}

// sortedScenes returns the registered scenes in ascending z-index order.
func (e *engine) sortedScenes() []scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.scenes[k])
	}
	return out
}

func (e *engine) Step() (dt float32) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] frame recovered from panic: %v", r)
		}
	}()

	e.mu.Lock()
	now := e.clock.Now()
	if !e.lastFrame.IsZero() {
		dt = common.Clamp(float32(now.Sub(e.lastFrame).Seconds()), 0, e.maxDelta)
	}
	e.lastFrame = now
	e.elapsed += dt
	elapsed := e.elapsed
	queued := e.queue
	e.queue = nil
	tick := e.tickCallback
	profiling := e.profilingEnabled
	e.mu.Unlock()

	for _, fn := range queued {
		fn()
	}

	if tick != nil {
		tick(dt, elapsed)
	}

	scenes := e.sortedScenes()
	for _, s := range scenes {
		e.withController(s, func(c camera.CameraController) { c.Tick(dt) })
		s.Update(dt, elapsed)
	}

	e.render(scenes)

	if profiling {
		e.profiler.Tick()
	}
	return dt
}

// render draws every scene inside one frame of the first scene's renderer, so layered scenes composite in key order.
func (e *engine) render(scenes []scene.Scene) {
	if len(scenes) == 0 {
		return
	}
	frameRenderer := scenes[0].Renderer()
	if frameRenderer == nil {
		return
	}

	if err := frameRenderer.BeginFrame(); err != nil {
		log.Printf("[Engine] failed to begin frame: %v", err)
		return
	}
	for _, s := range scenes {
		if err := s.DrawCalls(); err != nil {
			log.Printf("[Engine] %v", err)
		}
	}
	frameRenderer.EndFrame()
	frameRenderer.Present()
}

func (e *engine) Run() {
	if e.window == nil {
		log.Println("[Engine] Run called without a window")
		return
	}
	e.mu.Lock()
	e.lastFrame = e.clock.Now()
	e.mu.Unlock()

	e.window.SetUpdateCallback(func() { e.Step() })
	e.window.ProcessMessages()
}

func (e *engine) Quit() {
	if e.window != nil {
		e.window.RequestClose()
	}
}
