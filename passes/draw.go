package passes

import (
	"github.com/go-gl/mathgl/mgl32"

	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/graph"
	"honnef.co/go/forward/plumber"
	"honnef.co/go/forward/scene"
)

// Draw renders one item bucket in forward shading: a single pass over
// the bucket through the shared shape pipeline registry. The same job
// type serves the opaque and transparent stages; the bucket arrives
// pre-sorted and is drawn in its natural order.
type Draw struct {
	name         string
	items        scene.Bucket
	shapePlumber *plumber.ShapePlumber
}

func NewDraw(name string, items scene.Bucket, shapePlumber *plumber.ShapePlumber) *Draw {
	return &Draw{name: name, items: items, shapePlumber: shapePlumber}
}

func (j *Draw) Run(fc *graph.FrameContext) error {
	gpu.DoInBatch(fc.GPU, j.name, func(b *gpu.Batch) {
		b.SetProjectionTransform(fc.Frustum.EvalProjectionMatrix())
		b.SetViewTransform(fc.Frustum.EvalViewTransform())
		b.SetModelTransform(mgl32.Ident4())

		// -1: the bucket's order is final (front-to-back for opaque,
		// back-to-front for transparent).
		plumber.RenderStateSortShapes(b, j.shapePlumber, j.items, -1)
	})
	return nil
}
