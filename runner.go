package forward

import (
	"log/slog"

	"honnef.co/go/forward/gmath"
	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/graph"
	"honnef.co/go/forward/profiler"
)

// SetLogger configures logging for the module. See [graph.SetLogger].
func SetLogger(l *slog.Logger) {
	graph.SetLogger(l)
}

// Runner drives a built task frame by frame. It owns the GPU context
// whose arena backs batch recording, so batches from one frame are
// invalid once the next frame starts.
type Runner struct {
	task *graph.Task
	ctx  *gpu.Context

	// Profiler, when non-nil, receives one span per executed job.
	Profiler profiler.ProfilerGroup
}

func NewRunner(task *graph.Task, dev gpu.Device) *Runner {
	return &Runner{
		task: task,
		ctx:  gpu.NewContext(dev),
	}
}

// RenderFrame runs the task once and returns the frame's committed
// batches in execution order, ready for a backend. On error the frame
// is abandoned with no partial output; the caller decides whether to
// simply try again next frame.
func (r *Runner) RenderFrame(viewport gmath.Viewport, frustum gmath.Frustum, stereo bool, output *gpu.Framebuffer) ([]*gpu.Batch, error) {
	r.ctx.BeginFrame()
	fc := &graph.FrameContext{
		Viewport: viewport,
		Frustum:  frustum,
		Stereo:   stereo,
		GPU:      r.ctx,
		Output:   output,
		Profiler: r.Profiler,
	}
	if err := r.task.Run(fc); err != nil {
		return nil, err
	}
	return r.ctx.Frame(), nil
}

// Teardown releases the task's device resources. The runner must not
// render afterwards.
func (r *Runner) Teardown() {
	r.task.Teardown(r.ctx.Device())
}
