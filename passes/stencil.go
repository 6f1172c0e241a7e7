package passes

import (
	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/graph"
)

// PrepareStencil marks the background-eligible regions of the
// framebuffer in the stencil buffer, so the background pass can
// restrict itself to pixels no opaque geometry claimed. It touches
// neither color nor depth.
type PrepareStencil struct {
	framebuffer     *graph.Varying[*gpu.Framebuffer]
	stencilPipeline *gpu.Pipeline
}

func NewPrepareStencil(framebuffer *graph.Varying[*gpu.Framebuffer]) *PrepareStencil {
	return &PrepareStencil{framebuffer: framebuffer}
}

func (j *PrepareStencil) Run(fc *graph.FrameContext) error {
	if _, ok := j.framebuffer.Get(); !ok {
		return &graph.WiringError{Job: "PrepareStencil", Slot: j.framebuffer.Name(), Reason: "input not produced"}
	}
	j.stencilPipeline = ensureStencilPipeline(j.stencilPipeline)

	gpu.DoInBatch(fc.GPU, "prepareStencil", func(b *gpu.Batch) {
		b.EnableStereo(false)
		b.SetViewportTransform(fc.Viewport)
		b.SetStateScissorRect(fc.Viewport)

		b.SetPipeline(j.stencilPipeline)
		b.Draw(gpu.TriangleStrip, 4)
	})
	return nil
}

// ensureStencilPipeline lazily builds the mask pipeline: a
// full-screen-quad vertex stage, a no-output fragment stage, depth
// test at less-or-equal so only untouched far depth passes, and the
// background mark written to the stencil buffer.
func ensureStencilPipeline(cached *gpu.Pipeline) *gpu.Pipeline {
	if cached != nil {
		return cached
	}
	program := gpu.NewShaderProgram(gpu.DrawUnitQuadTexcoordVS(), gpu.NopFS())
	state := gpu.NewState()
	state.SetDepthTest(true, false, gpu.LessEqual)
	gpu.DrawBackgroundMask(&state)
	return gpu.NewPipeline(program, state)
}
