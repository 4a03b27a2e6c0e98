package vulkanitos

import (
	"log"
	"time"

	"github.com/Mehdi-Antoine/vulkanitos/camera"
	"github.com/Mehdi-Antoine/vulkanitos/input"
)

// EventSource is the window side of the main loop.
type EventSource interface {
	PollEvents()
	ShouldClose() bool
}

// invalidator is implemented by renderers that rebuild their swapchain on
// demand.
type invalidator interface {
	InvalidateSwapchain()
}

// FrameStats summarizes a run of the main loop.
type FrameStats struct {
	Frames  int
	Elapsed time.Duration
}

// AverageFrameTime is zero when no frame was drawn.
func (s FrameStats) AverageFrameTime() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Frames)
}

func (s FrameStats) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

// RunLoop polls src, feeds pending events to cam and submits a frame per
// iteration until the window closes or a frame fails. The renderer is not
// torn down.
func RunLoop(r Renderer, src EventSource, events *input.Queue, cam *camera.TrackBall, logger *log.Logger) (FrameStats, error) {
	if logger == nil {
		logger = log.Default()
	}
	inv, _ := r.(invalidator)

	var stats FrameStats
	start := time.Now()
	closing := false
	for !closing {
		src.PollEvents()
		events.Drain(func(ev input.Event) {
			switch ev.Kind {
			case input.EventClose:
				closing = true
			case input.EventResize, input.EventShaderChanged:
				if ev.Kind == input.EventShaderChanged {
					logger.Printf("shader %s changed, rebuilding pipelines", ev.Path)
				}
				if inv != nil {
					inv.InvalidateSwapchain()
				}
			default:
				if cam != nil {
					cam.Handle(ev)
				}
			}
		})
		if closing || src.ShouldClose() {
			break
		}
		if err := r.SubmitFrame(); err != nil {
			stats.Elapsed = time.Since(start)
			return stats, err
		}
		stats.Frames++
	}
	stats.Elapsed = time.Since(start)
	logger.Printf("%d frames in %s, %s per frame (%.1f fps)",
		stats.Frames, stats.Elapsed.Round(time.Millisecond), stats.AverageFrameTime(), stats.FPS())
	return stats, nil
}
