package passes

import (
	"honnef.co/go/forward/gmath"
	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/graph"
)

// Blit presents the finished framebuffer to the frame's output
// target, leaving the source untouched. Terminal job: no further
// state change happens after it.
type Blit struct {
	framebuffer *graph.Varying[*gpu.Framebuffer]
}

func NewBlit(framebuffer *graph.Varying[*gpu.Framebuffer]) *Blit {
	return &Blit{framebuffer: framebuffer}
}

func (j *Blit) Run(fc *graph.FrameContext) error {
	fb, ok := j.framebuffer.Get()
	if !ok {
		return &graph.WiringError{Job: "Blit", Slot: j.framebuffer.Name(), Reason: "input not produced"}
	}

	width, height := fb.Size()
	srcRect := gmath.Viewport{Width: int32(width), Height: int32(height)}
	dstRect := srcRect
	if fc.Output != nil {
		dw, dh := fc.Output.Size()
		dstRect = gmath.Viewport{Width: int32(dw), Height: int32(dh)}
	}

	gpu.DoInBatch(fc.GPU, "blit", func(b *gpu.Batch) {
		b.BlitFramebuffer(fb, srcRect, fc.Output, dstRect)
	})
	return nil
}
