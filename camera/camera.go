// Package camera implements the trackball camera driven by pointer input.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Mehdi-Antoine/vulkanitos/config"
	"github.com/Mehdi-Antoine/vulkanitos/input"
)

// TrackBall orbits a target point at a given distance.
type TrackBall struct {
	Target   mgl32.Vec3
	Distance float32
	// XAngle and YAngle are radians around the X and Y axes
	XAngle float32
	YAngle float32
	FovY   float32 // degrees
	Near   float32
	Far    float32

	MinDistance float32
	MaxDistance float32
	RotateScale float32
	ZoomScale   float32

	pressed          bool
	cursorX, cursorY float64
	xOnPress         float32
	yOnPress         float32
}

// New returns a camera configured from c.
func New(c config.Camera) *TrackBall {
	return &TrackBall{
		Distance:    c.Distance,
		FovY:        c.FovY,
		Near:        c.Near,
		Far:         c.Far,
		MinDistance: c.MinDistance,
		MaxDistance: c.MaxDistance,
		RotateScale: c.RotateScale,
		ZoomScale:   c.ZoomScale,
	}
}

// View returns translate(target) * translate(0,0,-distance) * rotX * rotY.
func (t *TrackBall) View() mgl32.Mat4 {
	trans := mgl32.Translate3D(t.Target.X(), t.Target.Y(), t.Target.Z()).
		Mul4(mgl32.Translate3D(0, 0, -t.Distance))
	return trans.Mul4(mgl32.HomogRotate3DX(t.XAngle)).Mul4(mgl32.HomogRotate3DY(t.YAngle))
}

// Projection returns a perspective matrix for the given aspect ratio with
// the Y axis flipped for Vulkan clip space.
func (t *TrackBall) Projection(aspect float32) mgl32.Mat4 {
	p := mgl32.Perspective(mgl32.DegToRad(t.FovY), aspect, t.Near, t.Far)
	p.Set(1, 1, -p.At(1, 1))
	return p
}

// Zoom moves the camera along its view axis, clamped to [MinDistance, MaxDistance].
func (t *TrackBall) Zoom(dx, dy float64) {
	t.Distance -= float32(dy) * t.ZoomScale
	t.Distance -= float32(dx) * t.ZoomScale
	t.Distance = mgl32.Clamp(t.Distance, t.MinDistance, t.MaxDistance)
}

// Press starts or ends a drag.
func (t *TrackBall) Press(down bool) {
	t.pressed = down
	if down {
		t.xOnPress = t.XAngle
		t.yOnPress = t.YAngle
	}
}

// Move applies a cursor position. While dragging, the angles follow the
// offset from the position recorded before the press.
func (t *TrackBall) Move(x, y float64) {
	if !t.pressed {
		t.cursorX = x
		t.cursorY = y
		return
	}
	t.YAngle = t.yOnPress + float32((x-t.cursorX)*float64(t.RotateScale))
	t.XAngle = t.xOnPress + float32((y-t.cursorY)*float64(t.RotateScale))
}

// Handle applies an input event. It reports whether the event was consumed.
func (t *TrackBall) Handle(ev input.Event) bool {
	switch ev.Kind {
	case input.EventMouseButton:
		if ev.Button != input.ButtonLeft {
			return false
		}
		t.Press(ev.Pressed)
	case input.EventCursorMove:
		t.Move(ev.X, ev.Y)
	case input.EventScroll:
		t.Zoom(ev.X, ev.Y)
	default:
		return false
	}
	return true
}
