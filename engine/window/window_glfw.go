package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-tabletop/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type glfwPlatform struct {
	win *glfw.Window
}

var _ platform = &glfwPlatform{}

// openGLFWWindow creates a window without a client API context, since WebGPU brings its own, and
// routes its callbacks into w. The stored size is replaced with the framebuffer size.
func openGLFWWindow(w *window) (*glfwPlatform, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.cfg.width, w.cfg.height, w.cfg.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw create window: %w", err)
	}
	win.SetSizeLimits(w.cfg.minWidth, w.cfg.minHeight, w.cfg.maxWidth, w.cfg.maxHeight)

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
			return
		}
		w.keyEvent(uint32(key), action != glfw.Release)
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		w.scrollEvent(yoff)
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		x, y := win.GetCursorPos()
		w.buttonEvent(common.MouseButton(button), action == glfw.Press, x, y)
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.cursorEvent(x, y)
	})
	win.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		if !entered {
			w.leaveEvent()
		}
	})
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resizeEvent(width, height)
	})

	w.width, w.height = win.GetFramebufferSize()
	return &glfwPlatform{win: win}, nil
}

func (p *glfwPlatform) pollEvents() {
	glfw.PollEvents()
}

func (p *glfwPlatform) shouldClose() bool {
	return p.win.ShouldClose()
}

func (p *glfwPlatform) requestClose() {
	p.win.SetShouldClose(true)
}

func (p *glfwPlatform) destroy() error {
	p.win.Destroy()
	glfw.Terminate()
	return nil
}

func (p *glfwPlatform) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(p.win)
}
