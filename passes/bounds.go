package passes

import (
	"structs"

	"honnef.co/go/color"
	"honnef.co/go/safeish"

	"honnef.co/go/forward/gfx"
	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/graph"
	"honnef.co/go/forward/scene"
)

const (
	boundsColorSlot  uint32 = 0
	boundsObjectSlot uint32 = 1
)

// A wireframe unit cube drawn as line segments; the vertex stage
// stretches it to the item's bounding box.
const boundsVertexCount = 24

const boundsVS = `
	struct Bound {
		minPos: vec4<f32>,
		maxPos: vec4<f32>,
	}

	@group(0) @binding(1)
	var<uniform> bound: Bound;

	struct Transforms {
		projection: mat4x4<f32>,
		view: mat4x4<f32>,
		model: mat4x4<f32>,
		flags: vec4<u32>,
	}

	@group(1) @binding(0)
	var<uniform> transforms: Transforms;

	@vertex
	fn vs_main(@builtin(vertex_index) ix: u32) -> @builtin(position) vec4<f32> {
		// 12 edges, 2 vertices each; corner bits select min or max
		// per axis.
		let edges = array<vec2<u32>, 12>(
			vec2(0u, 1u), vec2(1u, 3u), vec2(3u, 2u), vec2(2u, 0u),
			vec2(4u, 5u), vec2(5u, 7u), vec2(7u, 6u), vec2(6u, 4u),
			vec2(0u, 4u), vec2(1u, 5u), vec2(2u, 6u), vec2(3u, 7u),
		);
		let edge = edges[ix / 2u];
		var corner: u32;
		if (ix % 2u) == 0u {
			corner = edge.x;
		} else {
			corner = edge.y;
		}
		let pos = vec3(
			select(bound.minPos.x, bound.maxPos.x, (corner & 1u) != 0u),
			select(bound.minPos.y, bound.maxPos.y, (corner & 2u) != 0u),
			select(bound.minPos.z, bound.maxPos.z, (corner & 4u) != 0u),
		);
		return transforms.projection * transforms.view * transforms.model * vec4(pos, 1.0);
	}`

type boundUniforms struct {
	_ structs.HostLayout

	MinPos [4]float32
	MaxPos [4]float32
}

// DrawBounds overlays the bounding boxes of one bucket against the
// existing depth buffer. Diagnostic only: it reads the bucket and
// never affects later jobs' inputs.
type DrawBounds struct {
	name  string
	items func() (scene.Bucket, bool)
	color *color.Color

	pipeline *gpu.Pipeline
}

// NewDrawBounds visualizes a bucket fixed at graph-build time.
func NewDrawBounds(name string, items scene.Bucket, c *color.Color) *DrawBounds {
	return &DrawBounds{
		name:  name,
		items: func() (scene.Bucket, bool) { return items, true },
		color: c,
	}
}

// NewDrawBoundsVarying visualizes a bucket produced per frame by an
// upstream job, like the extracted zones.
func NewDrawBoundsVarying(name string, items *graph.Varying[scene.Bucket], c *color.Color) *DrawBounds {
	return &DrawBounds{
		name:  name,
		items: items.Get,
		color: c,
	}
}

func (j *DrawBounds) Run(fc *graph.FrameContext) error {
	items, ok := j.items()
	if !ok {
		return &graph.WiringError{Job: j.name, Reason: "bounds input not produced"}
	}
	if len(items) == 0 {
		return nil
	}
	j.pipeline = ensureBoundsPipeline(j.pipeline)

	gpu.DoInBatch(fc.GPU, j.name, func(b *gpu.Batch) {
		b.SetProjectionTransform(fc.Frustum.EvalProjectionMatrix())
		b.SetViewTransform(fc.Frustum.EvalViewTransform())

		b.SetPipeline(j.pipeline)
		tint := gfx.Premul32(j.color)
		b.SetUniform(boundsColorSlot, safeish.AsBytes(&tint))
		for _, it := range items {
			u := boundUniforms{
				MinPos: [4]float32{it.Bound.Min[0], it.Bound.Min[1], it.Bound.Min[2], 1},
				MaxPos: [4]float32{it.Bound.Max[0], it.Bound.Max[1], it.Bound.Max[2], 1},
			}
			b.SetUniform(boundsObjectSlot, safeish.AsBytes(&u))
			b.Draw(gpu.Lines, boundsVertexCount)
		}
	})
	return nil
}

func ensureBoundsPipeline(cached *gpu.Pipeline) *gpu.Pipeline {
	if cached != nil {
		return cached
	}
	program := gpu.NewShaderProgram(
		gpu.Shader{Name: "drawBounds", Source: boundsVS},
		gpu.DrawColorFS(),
	)
	state := gpu.NewState()
	state.SetDepthTest(true, false, gpu.LessEqual)
	state.Fill = gpu.FillWireframe
	return gpu.NewPipeline(program, state)
}
