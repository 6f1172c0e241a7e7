package passes

import (
	"honnef.co/go/safeish"

	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/graph"
	"honnef.co/go/forward/plumber"
	"honnef.co/go/forward/scene"
)

// DrawBackground renders the resolved background (skybox or
// environment) under the lighting model, limited by the stencil mask
// to pixels no opaque geometry claimed. Which background items exist
// is decided upstream; this job only renders what it is given.
type DrawBackground struct {
	items         scene.Bucket
	lightingModel *graph.Varying[*LightingModel]
}

func NewDrawBackground(items scene.Bucket, lightingModel *graph.Varying[*LightingModel]) *DrawBackground {
	return &DrawBackground{items: items, lightingModel: lightingModel}
}

func (j *DrawBackground) Run(fc *graph.FrameContext) error {
	lm, ok := j.lightingModel.Get()
	if !ok {
		return &graph.WiringError{Job: "DrawBackground", Slot: j.lightingModel.Name(), Reason: "input not produced"}
	}

	gpu.DoInBatch(fc.GPU, "drawBackground", func(b *gpu.Batch) {
		b.EnableSkybox(true)
		b.SetViewportTransform(fc.Viewport)
		b.SetStateScissorRect(fc.Viewport)

		b.SetProjectionTransform(fc.Frustum.EvalProjectionMatrix())
		b.SetViewTransform(fc.Frustum.EvalViewTransform())

		if !lm.BackgroundEnabled {
			return
		}
		u := lm.uniforms()
		b.SetUniform(LightingSlot, safeish.AsBytes(&u))
		plumber.RenderItems(b, j.items)
	})
	return nil
}
