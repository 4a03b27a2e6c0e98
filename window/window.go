// Package window opens the GLFW window the viewer draws into and turns its
// callbacks into input events.
package window

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/Mehdi-Antoine/vulkanitos/input"
)

func init() {
	runtime.LockOSThread()
}

// Window is a Vulkan capable GLFW window. Its methods must be called from
// the main goroutine.
type Window struct {
	GLFW   *glfw.Window
	events *input.Queue
}

// Open initializes GLFW and the Vulkan loader, then creates a window of
// width x height pixels. Callbacks push into events.
func Open(title string, width, height int, events *input.Queue) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "initialize glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("vulkan is not supported by glfw")
	}

	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "initialize vulkan")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	gw, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "create window")
	}

	w := &Window{GLFW: gw, events: events}
	gw.SetFramebufferSizeCallback(w.framebufferSizeChange)
	gw.SetMouseButtonCallback(w.mouseButtonChange)
	gw.SetCursorPosCallback(w.cursorPosChange)
	gw.SetScrollCallback(w.mouseScrollChange)
	gw.SetKeyCallback(w.keyChange)
	gw.SetCloseCallback(w.closeRequest)
	return w, nil
}

func (w *Window) framebufferSizeChange(_ *glfw.Window, width, height int) {
	w.events.Push(input.Event{Kind: input.EventResize, Width: width, Height: height})
}

func (w *Window) mouseButtonChange(_ *glfw.Window, raw glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if ev, ok := buttonEvent(raw, action); ok {
		w.events.Push(ev)
	}
}

func (w *Window) cursorPosChange(_ *glfw.Window, x, y float64) {
	w.events.Push(input.Event{Kind: input.EventCursorMove, X: x, Y: y})
}

func (w *Window) mouseScrollChange(_ *glfw.Window, x, y float64) {
	w.events.Push(input.Event{Kind: input.EventScroll, X: x, Y: y})
}

func (w *Window) keyChange(gw *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		gw.SetShouldClose(true)
		w.events.Push(input.Event{Kind: input.EventClose})
	}
}

func (w *Window) closeRequest(_ *glfw.Window) {
	w.events.Push(input.Event{Kind: input.EventClose})
}

// buttonEvent maps a GLFW button change. Repeats and unknown buttons are
// dropped.
func buttonEvent(raw glfw.MouseButton, action glfw.Action) (input.Event, bool) {
	var b input.Button
	switch raw {
	case glfw.MouseButtonLeft:
		b = input.ButtonLeft
	case glfw.MouseButtonRight:
		b = input.ButtonRight
	case glfw.MouseButtonMiddle:
		b = input.ButtonMiddle
	default:
		return input.Event{}, false
	}
	switch action {
	case glfw.Press:
		return input.Event{Kind: input.EventMouseButton, Button: b, Pressed: true}, true
	case glfw.Release:
		return input.Event{Kind: input.EventMouseButton, Button: b, Pressed: false}, true
	}
	return input.Event{}, false
}

func (w *Window) RequiredInstanceExtensions() []string {
	return w.GLFW.GetRequiredInstanceExtensions()
}

// CreateSurface creates a presentation surface for the window.
func (w *Window) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := w.GLFW.CreateWindowSurface(instance, nil)
	if err != nil {
		var none vk.Surface
		return none, errors.Wrap(err, "create window surface")
	}
	return vk.SurfaceFromPointer(ptr), nil
}

// FramebufferSize is zero while the window is minimized.
func (w *Window) FramebufferSize() (int, int) {
	return w.GLFW.GetFramebufferSize()
}

func (w *Window) WaitEvents() {
	glfw.WaitEvents()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) ShouldClose() bool {
	return w.GLFW.ShouldClose()
}

// Destroy closes the window and terminates GLFW.
func (w *Window) Destroy() {
	w.GLFW.Destroy()
	glfw.Terminate()
}
