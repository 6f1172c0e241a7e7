package graph

import (
	"honnef.co/go/forward/gmath"
	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/profiler"
)

// FrameContext is the shared per-frame state every job reads. The
// frame driver fills it in before Task.Run and discards it after; no
// job writes to it.
type FrameContext struct {
	Viewport gmath.Viewport
	Frustum  gmath.Frustum
	// Stereo reports whether the frame renders in stereo. Full-screen
	// passes disable stereo on their batch regardless.
	Stereo bool

	// GPU collects the frame's committed batches.
	GPU *gpu.Context

	// Output is the blit destination. nil means the backend's surface.
	Output *gpu.Framebuffer

	// Profiler receives one span per executed job. nil disables
	// profiling.
	Profiler profiler.ProfilerGroup
}

func (fc *FrameContext) profiler() profiler.ProfilerGroup {
	if fc.Profiler == nil {
		return profiler.Nop{}
	}
	return fc.Profiler
}
