package vulkanitos

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/Mehdi-Antoine/vulkanitos/camera"
	"github.com/Mehdi-Antoine/vulkanitos/config"
	"github.com/Mehdi-Antoine/vulkanitos/input"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	frames      int
	invalidated int
	failAt      int
}

func (f *fakeRenderer) InitializeDevice() error { return nil }
func (f *fakeRenderer) BuildFrameGraph() error  { return nil }
func (f *fakeRenderer) Teardown() error         { return nil }

func (f *fakeRenderer) SubmitFrame() error {
	f.frames++
	if f.failAt > 0 && f.frames == f.failAt {
		return errors.New("device lost")
	}
	return nil
}

func (f *fakeRenderer) InvalidateSwapchain() {
	f.invalidated++
}

// scriptedWindow pushes one batch of events per poll and asks to close
// once the script runs out.
type scriptedWindow struct {
	queue  *input.Queue
	script [][]input.Event
	polls  int
}

func (w *scriptedWindow) PollEvents() {
	if w.polls < len(w.script) {
		for _, ev := range w.script[w.polls] {
			w.queue.Push(ev)
		}
	}
	w.polls++
}

func (w *scriptedWindow) ShouldClose() bool {
	return w.polls > len(w.script)
}

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{}, "", 0)
}

func TestRunLoopUntilClose(t *testing.T) {
	q := input.NewQueue(16)
	win := &scriptedWindow{queue: q, script: [][]input.Event{
		nil,
		{{Kind: input.EventResize, Width: 10, Height: 10}},
		{{Kind: input.EventShaderChanged, Path: "shader.frag.spv"}},
		nil,
	}}
	r := &fakeRenderer{}

	stats, err := RunLoop(r, win, q, nil, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Frames)
	assert.Equal(t, 4, r.frames)
	assert.Equal(t, 2, r.invalidated)
}

func TestRunLoopCloseEventStopsBeforeDrawing(t *testing.T) {
	q := input.NewQueue(16)
	win := &scriptedWindow{queue: q, script: [][]input.Event{
		nil,
		{{Kind: input.EventClose}},
		nil,
	}}
	r := &fakeRenderer{}

	stats, err := RunLoop(r, win, q, nil, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Frames)
}

func TestRunLoopFeedsCamera(t *testing.T) {
	q := input.NewQueue(16)
	cam := camera.New(config.Default().Camera)
	before := cam.Distance
	win := &scriptedWindow{queue: q, script: [][]input.Event{
		{{Kind: input.EventScroll, X: 0, Y: -1}},
	}}

	_, err := RunLoop(&fakeRenderer{}, win, q, cam, quietLogger())
	require.NoError(t, err)
	assert.NotEqual(t, before, cam.Distance)
}

func TestRunLoopStopsOnFrameError(t *testing.T) {
	q := input.NewQueue(16)
	win := &scriptedWindow{queue: q, script: make([][]input.Event, 10)}
	r := &fakeRenderer{failAt: 3}

	stats, err := RunLoop(r, win, q, nil, quietLogger())
	assert.EqualError(t, err, "device lost")
	assert.Equal(t, 2, stats.Frames)
}

func TestFrameStats(t *testing.T) {
	assert.Zero(t, FrameStats{}.AverageFrameTime())
	assert.Zero(t, FrameStats{}.FPS())

	s := FrameStats{Frames: 120, Elapsed: 2 * time.Second}
	assert.Equal(t, time.Second/60, s.AverageFrameTime())
	assert.InDelta(t, 60, s.FPS(), 1e-9)
}
