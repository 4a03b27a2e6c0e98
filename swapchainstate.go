package vulkanitos

import (
	"fmt"

	"github.com/pkg/errors"
)

// SwapchainStatus is the state of the swapchain dependent resources.
type SwapchainStatus int

const (
	SwapchainUninitialized SwapchainStatus = iota
	SwapchainReady
	SwapchainPendingRecreate
)

func (s SwapchainStatus) String() string {
	switch s {
	case SwapchainUninitialized:
		return "uninitialized"
	case SwapchainReady:
		return "ready"
	case SwapchainPendingRecreate:
		return "pending-recreate"
	}
	return fmt.Sprintf("SwapchainStatus(%d)", int(s))
}

// FramebufferSource reports the window framebuffer size and can block
// until the window system has something to say.
type FramebufferSource interface {
	FramebufferSize() (width, height int)
	WaitEvents()
}

// SwapchainBuilder creates and destroys everything that depends on the
// swapchain, as a unit.
type SwapchainBuilder interface {
	WaitIdle() error
	DestroySwapchainUnit()
	CreateSwapchainUnit(width, height int) error
}

// SwapchainManager drives the swapchain through its lifecycle:
// Uninitialized → Create → Ready → Invalidate → PendingRecreate → Recreate → Ready.
type SwapchainManager struct {
	status  SwapchainStatus
	window  FramebufferSource
	builder SwapchainBuilder

	// Recreations counts completed recreations.
	Recreations int
}

// NewSwapchainManager returns a manager in the Uninitialized state.
func NewSwapchainManager(window FramebufferSource, builder SwapchainBuilder) *SwapchainManager {
	return &SwapchainManager{window: window, builder: builder}
}

// Status returns the current state.
func (m *SwapchainManager) Status() SwapchainStatus {
	return m.status
}

// waitForSize blocks on window events while the framebuffer is empty, as
// happens while the window is minimized.
func (m *SwapchainManager) waitForSize() (int, int) {
	w, h := m.window.FramebufferSize()
	for w == 0 || h == 0 {
		m.window.WaitEvents()
		w, h = m.window.FramebufferSize()
	}
	return w, h
}

// Create builds the swapchain unit for the first time.
func (m *SwapchainManager) Create() error {
	if m.status != SwapchainUninitialized {
		return errors.Errorf("swapchain already created (%s)", m.status)
	}
	w, h := m.waitForSize()
	if err := m.builder.CreateSwapchainUnit(w, h); err != nil {
		return errors.Wrap(err, "create swapchain")
	}
	m.status = SwapchainReady
	return nil
}

// Invalidate marks the swapchain as stale. It is safe to call in any state;
// an uninitialized swapchain stays uninitialized.
func (m *SwapchainManager) Invalidate() {
	if m.status == SwapchainReady {
		m.status = SwapchainPendingRecreate
	}
}

// Recreate waits for the device to go idle, destroys the swapchain unit and
// builds a new one at the current framebuffer size.
func (m *SwapchainManager) Recreate() error {
	if m.status == SwapchainUninitialized {
		return m.Create()
	}
	w, h := m.waitForSize()
	if err := m.builder.WaitIdle(); err != nil {
		return err
	}
	m.builder.DestroySwapchainUnit()
	if err := m.builder.CreateSwapchainUnit(w, h); err != nil {
		return errors.Wrap(err, "recreate swapchain")
	}
	m.status = SwapchainReady
	m.Recreations++
	return nil
}

// RecreateIfPending recreates when the swapchain was invalidated and
// reports whether it did.
func (m *SwapchainManager) RecreateIfPending() (bool, error) {
	if m.status != SwapchainPendingRecreate {
		return false, nil
	}
	return true, m.Recreate()
}
