package wgpu_engine

import (
	"fmt"

	"honnef.co/go/wgpu"

	"honnef.co/go/forward/gpu"
)

const blitWGSL = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) tex_coords: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) ix: u32) -> VertexOutput {
    // Full-screen quad as two triangles.
    var vertex = vec2(-1.0, 1.0);
    switch ix {
        case 1u: {
            vertex = vec2(-1.0, -1.0);
        }
        case 2u, 4u: {
            vertex = vec2(1.0, -1.0);
        }
        case 5u: {
            vertex = vec2(1.0, 1.0);
        }
        default: {}
    }
    var out: VertexOutput;
    out.position = vec4(vertex, 0.0, 1.0);
    out.tex_coords = vertex * vec2(0.5, -0.5) + vec2(0.5);
    return out;
}

@group(0) @binding(0)
var src: texture_2d<f32>;
@group(0) @binding(1)
var src_sampler: sampler;

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(src, src_sampler, in.tex_coords);
}
`

// blitPipeline copies a framebuffer's color attachment to another
// target. wgpu has no framebuffer blit, so this is a sampled
// full-screen draw; pipelines are cached per destination format.
type blitPipeline struct {
	shader    *wgpu.ShaderModule
	layout    *wgpu.BindGroupLayout
	point     *wgpu.Sampler
	linear    *wgpu.Sampler
	pipelines map[wgpu.TextureFormat]*wgpu.RenderPipeline
}

func newBlitPipeline(dev *wgpu.Device, surfaceFormat wgpu.TextureFormat) *blitPipeline {
	shader := dev.CreateShaderModule(wgpu.ShaderModuleDescriptor{
		Label:  "blit",
		Source: wgpu.ShaderSourceWGSL(blitWGSL),
	})
	layout := dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "blit",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: &wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: &wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	b := &blitPipeline{
		shader: shader,
		layout: layout,
		point: dev.CreateSampler(&wgpu.SamplerDescriptor{
			Label:     "blit point",
			MagFilter: wgpu.FilterModeNearest,
			MinFilter: wgpu.FilterModeNearest,
		}),
		linear: dev.CreateSampler(&wgpu.SamplerDescriptor{
			Label:     "blit linear",
			MagFilter: wgpu.FilterModeLinear,
			MinFilter: wgpu.FilterModeLinear,
		}),
		pipelines: make(map[wgpu.TextureFormat]*wgpu.RenderPipeline),
	}
	// The surface is the common destination; build its pipeline up
	// front so the first frame doesn't stall on it.
	b.pipelineFor(dev, surfaceFormat)
	return b
}

func (b *blitPipeline) pipelineFor(dev *wgpu.Device, format wgpu.TextureFormat) *wgpu.RenderPipeline {
	if rp, ok := b.pipelines[format]; ok {
		return rp
	}
	rp := dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "blit",
		Layout: dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
			BindGroupLayouts: []*wgpu.BindGroupLayout{b.layout},
		}),
		Vertex: &wgpu.VertexState{
			Module:     b.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     b.shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: &wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: &wgpu.MultisampleState{
			Count:                  1,
			Mask:                   ^uint32(0),
			AlphaToCoverageEnabled: false,
		},
	})
	b.pipelines[format] = rp
	return rp
}

func (b *blitPipeline) sampler(s gpu.Sampler) *wgpu.Sampler {
	if s == gpu.FilterLinear {
		return b.linear
	}
	return b.point
}

// blitFramebuffer replays a recorded blit. The whole source color
// attachment is sampled over the destination rect; sub-rect sources
// aren't needed by the forward graph and aren't supported.
func (eng *Engine) blitFramebuffer(encoder *wgpu.CommandEncoder, cmd *gpu.BlitFramebuffer, surface *wgpu.SurfaceTexture) error {
	srcTex := cmd.Src.RenderBuffer(0)
	srcView, err := eng.view(srcTex)
	if err != nil {
		return err
	}

	var dstView *wgpu.TextureView
	var dstFormat wgpu.TextureFormat
	if cmd.Dst != nil {
		dstView, err = eng.view(cmd.Dst.RenderBuffer(0))
		if err != nil {
			return err
		}
		dstFormat = textureFormatToWGPU(cmd.Dst.RenderBuffer(0).Format)
	} else {
		if surface == nil {
			return fmt.Errorf("wgpu_engine: blit to surface but no surface texture for this frame")
		}
		dstView = surface.Texture.CreateView(nil)
		defer dstView.Release()
		dstFormat = eng.options.SurfaceFormat
	}

	bg := eng.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "blit",
		Layout: eng.blit.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: srcView},
			{Binding: 1, Sampler: eng.blit.sampler(srcTex.Sampler)},
		},
	})
	defer bg.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "blit",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    dstView,
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			},
		},
	})
	pass.SetPipeline(eng.blit.pipelineFor(eng.Device, dstFormat))
	pass.SetBindGroup(0, bg, nil)
	setViewport(pass, cmd.DstRect)
	setScissor(pass, cmd.DstRect)
	pass.Draw(6, 1, 0, 0)
	pass.End()
	pass.Release()
	return nil
}
