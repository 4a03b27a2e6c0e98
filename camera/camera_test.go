package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/Mehdi-Antoine/vulkanitos/config"
	"github.com/Mehdi-Antoine/vulkanitos/input"
)

func newCamera() *TrackBall {
	return New(config.Default().Camera)
}

func TestZoomClamps(t *testing.T) {
	c := newCamera()
	// the configured default starts outside the zoom range; the first
	// scroll pulls it back in
	c.Zoom(0, 1)
	assert.Equal(t, float32(10), c.Distance)

	c.Zoom(0, 1)
	assert.InDelta(t, 9.7, c.Distance, 1e-5)

	c.Zoom(0, 1000)
	assert.Equal(t, float32(0.5), c.Distance)

	c.Zoom(-1000, 0)
	assert.Equal(t, float32(10), c.Distance)
}

func TestZoomSumsBothAxes(t *testing.T) {
	c := newCamera()
	c.Distance = 5
	c.Zoom(1, 1)
	assert.InDelta(t, 4.4, c.Distance, 1e-5)
}

func TestDragRotatesRelativeToPress(t *testing.T) {
	c := newCamera()
	c.Move(100, 100)
	c.Press(true)
	c.Move(150, 80)
	assert.InDelta(t, 0.5, c.YAngle, 1e-6)
	assert.InDelta(t, -0.2, c.XAngle, 1e-6)

	// further motion is measured from the press position, not the last sample
	c.Move(110, 100)
	assert.InDelta(t, 0.1, c.YAngle, 1e-6)
	assert.InDelta(t, 0, c.XAngle, 1e-6)

	c.Press(false)
	c.Move(500, 500)
	assert.InDelta(t, 0.1, c.YAngle, 1e-6)
}

func TestSecondDragStartsFromCurrentAngles(t *testing.T) {
	c := newCamera()
	c.Move(0, 0)
	c.Press(true)
	c.Move(100, 0)
	c.Press(false)

	c.Move(0, 0)
	c.Press(true)
	c.Move(100, 0)
	assert.InDelta(t, 2.0, c.YAngle, 1e-6)
}

func TestHandleIgnoresOtherButtons(t *testing.T) {
	c := newCamera()
	assert.False(t, c.Handle(input.Event{Kind: input.EventMouseButton, Button: input.ButtonRight, Pressed: true}))
	c.Handle(input.Event{Kind: input.EventCursorMove, X: 50})
	assert.Zero(t, c.YAngle)

	assert.True(t, c.Handle(input.Event{Kind: input.EventMouseButton, Button: input.ButtonLeft, Pressed: true}))
	c.Handle(input.Event{Kind: input.EventCursorMove, X: 60})
	assert.InDelta(t, 0.1, c.YAngle, 1e-6)

	assert.False(t, c.Handle(input.Event{Kind: input.EventResize}))
}

func TestProjectionFlipsY(t *testing.T) {
	c := newCamera()
	p := c.Projection(4.0 / 3.0)
	ref := mgl32.Perspective(mgl32.DegToRad(c.FovY), 4.0/3.0, c.Near, c.Far)
	assert.Equal(t, -ref.At(1, 1), p.At(1, 1))
	assert.Less(t, p.At(1, 1), float32(0))
	assert.Equal(t, ref.At(0, 0), p.At(0, 0))
}

func TestViewPlacesTargetInFront(t *testing.T) {
	c := newCamera()
	c.Distance = 3
	v := c.View()
	eye := v.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -3, eye.Z(), 1e-6)

	c.YAngle = mgl32.DegToRad(90)
	p := c.View().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 0, p.X(), 1e-5)
	assert.InDelta(t, -4, p.Z(), 1e-5)
}
