package window

import (
	"runtime"

	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is a native window that feeds input events to registered callbacks and drives the frame
// loop. Callbacks run on the thread that calls ProcessMessages.
type Window interface {
	// SetUpdateCallback sets the function run once per loop iteration, after pending events were
	// dispatched.
	SetUpdateCallback(callback func())

	// SetResizeCallback receives the new framebuffer size in pixels.
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback receives the vertical wheel delta. Positive is scrolling down (toward the user),
	// negative is scrolling up.
	SetScrollCallback(callback func(deltaY float32))

	// SetKeyDownCallback receives the key code on press and on key repeat. Codes match common.Key*.
	SetKeyDownCallback(callback func(keyCode uint32))

	SetKeyUpCallback(callback func(keyCode uint32))

	// SetPointerDownCallback receives the pressed button and the cursor position in pixels.
	SetPointerDownCallback(callback func(button common.MouseButton, x, y float32))

	// SetPointerUpCallback receives the released button and the cursor position in pixels.
	SetPointerUpCallback(callback func(button common.MouseButton, x, y float32))

	SetPointerMoveCallback(callback func(x, y float32))

	// SetPointerLeaveCallback runs when the cursor leaves the client area.
	SetPointerLeaveCallback(callback func())

	// SurfaceDescriptor describes the native window for WebGPU surface creation.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform descriptor, nil once the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// ProcessMessages polls events and runs the update callback until the window closes.
	ProcessMessages()

	// RequestClose makes ProcessMessages return after the current iteration.
	RequestClose()

	// IsRunning reports whether the window is open and no close was requested.
	IsRunning() bool

	// Close destroys the native window.
	//
	// Returns:
	//   - error: errWindowClosed when the window was already closed
	Close() error

	// Width and Height are the framebuffer size in pixels, which differs from the window size on
	// high-DPI displays.
	Width() int
	Height() int
}

// platform is the native side of a window.
type platform interface {
	pollEvents()
	shouldClose() bool
	requestClose()
	destroy() error
	surfaceDescriptor() *wgpu.SurfaceDescriptor
}

// handlers are the callbacks a window dispatches to. Nil handlers are skipped.
type handlers struct {
	update       func()
	resize       func(width, height int)
	scroll       func(deltaY float32)
	keyDown      func(keyCode uint32)
	keyUp        func(keyCode uint32)
	pointerDown  func(button common.MouseButton, x, y float32)
	pointerUp    func(button common.MouseButton, x, y float32)
	pointerMove  func(x, y float32)
	pointerLeave func()
}

type window struct {
	cfg    windowConfig
	width  int
	height int
	on     handlers
	native platform
}

var _ Window = &window{}

// NewWindow opens a native window.
//
// Parameters:
//   - options: window options
//
// Returns:
//   - Window: the open window
//   - error: if the windowing system could not be initialized or the window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	cfg := defaultWindowConfig()
	for _, opt := range options {
		opt(&cfg)
	}
	cfg.normalize()

	w := &window{cfg: cfg, width: cfg.width, height: cfg.height}
	native, err := openGLFWWindow(w)
	if err != nil {
		return nil, err
	}
	w.native = native
	return w, nil
}

func (w *window) SetUpdateCallback(callback func())                  { w.on.update = callback }
func (w *window) SetResizeCallback(callback func(width, height int)) { w.on.resize = callback }
func (w *window) SetScrollCallback(callback func(deltaY float32))    { w.on.scroll = callback }
func (w *window) SetKeyDownCallback(callback func(keyCode uint32))   { w.on.keyDown = callback }
func (w *window) SetKeyUpCallback(callback func(keyCode uint32))     { w.on.keyUp = callback }
func (w *window) SetPointerMoveCallback(callback func(x, y float32)) { w.on.pointerMove = callback }
func (w *window) SetPointerLeaveCallback(callback func())            { w.on.pointerLeave = callback }

func (w *window) SetPointerDownCallback(callback func(button common.MouseButton, x, y float32)) {
	w.on.pointerDown = callback
}

func (w *window) SetPointerUpCallback(callback func(button common.MouseButton, x, y float32)) {
	w.on.pointerUp = callback
}

func (w *window) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.native == nil {
		return nil
	}
	return w.native.surfaceDescriptor()
}

func (w *window) IsRunning() bool {
	return w.native != nil && !w.native.shouldClose()
}

func (w *window) RequestClose() {
	if w.native != nil {
		w.native.requestClose()
	}
}

func (w *window) Close() error {
	if w.native == nil {
		return errWindowClosed
	}
	err := w.native.destroy()
	w.native = nil
	return err
}

func (w *window) ProcessMessages() {
	for w.IsRunning() {
		w.native.pollEvents()
		if !w.IsRunning() {
			return
		}
		if w.on.update != nil {
			w.on.update()
		}
		runtime.Gosched()
	}
}

func (w *window) Width() int  { return w.width }
func (w *window) Height() int { return w.height }

// The methods below translate native events into handler calls.

func (w *window) keyEvent(code uint32, pressed bool) {
	if pressed && w.on.keyDown != nil {
		w.on.keyDown(code)
	}
	if !pressed && w.on.keyUp != nil {
		w.on.keyUp(code)
	}
}

// scrollEvent takes the native convention where positive means scrolling up and flips it.
func (w *window) scrollEvent(up float64) {
	if up == 0 || w.on.scroll == nil {
		return
	}
	w.on.scroll(float32(-up))
}

func (w *window) buttonEvent(button common.MouseButton, pressed bool, x, y float64) {
	if pressed && w.on.pointerDown != nil {
		w.on.pointerDown(button, float32(x), float32(y))
	}
	if !pressed && w.on.pointerUp != nil {
		w.on.pointerUp(button, float32(x), float32(y))
	}
}

func (w *window) cursorEvent(x, y float64) {
	if w.on.pointerMove != nil {
		w.on.pointerMove(float32(x), float32(y))
	}
}

func (w *window) leaveEvent() {
	if w.on.pointerLeave != nil {
		w.on.pointerLeave()
	}
}

func (w *window) resizeEvent(width, height int) {
	w.width, w.height = width, height
	if w.on.resize != nil {
		w.on.resize(width, height)
	}
}
