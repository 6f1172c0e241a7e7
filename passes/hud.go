package passes

import (
	"honnef.co/go/forward/gmath"
	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/graph"
)

// HUDOperator records the 2D UI overlay into the batch. It comes from
// the UI layer; the graph only provides the batch and the viewport.
type HUDOperator func(b *gpu.Batch, viewport gmath.Viewport)

// CompositeHUD overlays the 2D UI onto the framebuffer after all 3D
// passes. Terminal apart from the blit: nothing in the graph consumes
// its output.
type CompositeHUD struct {
	framebuffer *graph.Varying[*gpu.Framebuffer]
	operator    HUDOperator
}

func NewCompositeHUD(framebuffer *graph.Varying[*gpu.Framebuffer], operator HUDOperator) *CompositeHUD {
	return &CompositeHUD{framebuffer: framebuffer, operator: operator}
}

func (j *CompositeHUD) Run(fc *graph.FrameContext) error {
	fb, ok := j.framebuffer.Get()
	if !ok {
		return &graph.WiringError{Job: "HUD", Slot: j.framebuffer.Name(), Reason: "input not produced"}
	}

	gpu.DoInBatch(fc.GPU, "hud", func(b *gpu.Batch) {
		b.EnableStereo(false)
		b.SetFramebuffer(fb)
		b.SetViewportTransform(fc.Viewport)
		if j.operator != nil {
			j.operator(b, fc.Viewport)
		}
	})
	return nil
}
