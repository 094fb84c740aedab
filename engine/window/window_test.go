package window

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/cogentcore/webgpu/wgpu"
)

type fakePlatform struct {
	closed    bool
	polls     int
	destroyed bool
	onPoll    func()
}

func (p *fakePlatform) pollEvents() {
	p.polls++
	if p.onPoll != nil {
		p.onPoll()
	}
}
func (p *fakePlatform) shouldClose() bool                          { return p.closed }
func (p *fakePlatform) requestClose()                              { p.closed = true }
func (p *fakePlatform) destroy() error                             { p.destroyed = true; return nil }
func (p *fakePlatform) surfaceDescriptor() *wgpu.SurfaceDescriptor { return &wgpu.SurfaceDescriptor{} }

func newTestWindow() (*window, *fakePlatform) {
	fp := &fakePlatform{}
	return &window{cfg: defaultWindowConfig(), width: 1280, height: 720, native: fp}, fp
}

func TestConfigNormalize(t *testing.T) {
	cfg := defaultWindowConfig()
	for _, opt := range []WindowBuilderOption{WithWidth(1920), WithHeight(100), WithTitle("die tray")} {
		opt(&cfg)
	}
	cfg.normalize()

	if cfg.maxWidth != 1920 || cfg.minHeight != 100 {
		t.Errorf("limits = max %d min %d, want 1920 and 100", cfg.maxWidth, cfg.minHeight)
	}
	if cfg.title != "die tray" {
		t.Errorf("title = %q", cfg.title)
	}

	WithMaxSize(800, 600)(&cfg)
	WithMinSize(10, 10)(&cfg)
	cfg.normalize()
	if cfg.maxWidth != 1920 || cfg.maxHeight != 600 || cfg.minWidth != 10 {
		t.Errorf("limits after override = %+v", cfg)
	}
}

func TestProcessMessagesDispatchesBeforeUpdate(t *testing.T) {
	w, fp := newTestWindow()

	var order []string
	w.SetPointerMoveCallback(func(x, y float32) { order = append(order, "move") })
	w.SetUpdateCallback(func() {
		order = append(order, "update")
		if len(order) >= 4 {
			w.RequestClose()
		}
	})
	fp.onPoll = func() { w.cursorEvent(10, 20) }

	w.ProcessMessages()

	want := []string{"move", "update", "move", "update"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if w.IsRunning() {
		t.Error("window still running after RequestClose")
	}
}

func TestProcessMessagesSkipsUpdateWhenClosedDuringPoll(t *testing.T) {
	w, fp := newTestWindow()
	updates := 0
	w.SetUpdateCallback(func() { updates++ })
	fp.onPoll = func() { fp.closed = true }

	w.ProcessMessages()
	if updates != 0 {
		t.Errorf("updates = %d, want 0", updates)
	}
}

func TestInputTranslation(t *testing.T) {
	w, _ := newTestWindow()

	var scroll float32
	var down, up common.MouseButton = -1, -1
	var pos [2]float32
	var keys []uint32
	left := false
	w.SetScrollCallback(func(d float32) { scroll = d })
	w.SetPointerDownCallback(func(b common.MouseButton, x, y float32) { down, pos = b, [2]float32{x, y} })
	w.SetPointerUpCallback(func(b common.MouseButton, _, _ float32) { up = b })
	w.SetPointerLeaveCallback(func() { left = true })
	w.SetKeyDownCallback(func(k uint32) { keys = append(keys, k) })
	w.SetKeyUpCallback(func(k uint32) { keys = append(keys, k+1000) })

	w.scrollEvent(1)
	if scroll != -1 {
		t.Errorf("scroll up delivered as %v, want -1", scroll)
	}
	w.scrollEvent(0)
	if scroll != -1 {
		t.Error("zero scroll was delivered")
	}

	w.buttonEvent(common.MouseButtonSecondary, true, 3, 4)
	w.buttonEvent(common.MouseButtonPrimary, false, 0, 0)
	if down != common.MouseButtonSecondary || pos != [2]float32{3, 4} || up != common.MouseButtonPrimary {
		t.Errorf("buttons = down %v at %v, up %v", down, pos, up)
	}

	w.keyEvent(common.KeyR, true)
	w.keyEvent(common.KeyR, false)
	if len(keys) != 2 || keys[0] != common.KeyR || keys[1] != common.KeyR+1000 {
		t.Errorf("keys = %v", keys)
	}

	w.leaveEvent()
	if !left {
		t.Error("leave not delivered")
	}
}

func TestResizeEventUpdatesSize(t *testing.T) {
	w, _ := newTestWindow()
	var got [2]int
	w.SetResizeCallback(func(width, height int) { got = [2]int{width, height} })

	w.resizeEvent(800, 600)
	if w.Width() != 800 || w.Height() != 600 || got != [2]int{800, 600} {
		t.Errorf("size = %dx%d, callback %v", w.Width(), w.Height(), got)
	}
}

func TestClose(t *testing.T) {
	w, fp := newTestWindow()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if !fp.destroyed {
		t.Error("platform window not destroyed")
	}
	if w.SurfaceDescriptor() != nil || w.IsRunning() {
		t.Error("closed window still exposes a surface")
	}
	if err := w.Close(); !errors.Is(err, errWindowClosed) {
		t.Errorf("second Close = %v, want errWindowClosed", err)
	}
}
