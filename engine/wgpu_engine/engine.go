// Package wgpu_engine executes recorded command batches on a wgpu
// device. It implements gpu.Device for resource creation and replays
// a frame's batches as render passes; GPU state set by one batch is
// visible to later batches in the same frame, matching the recording
// model.
package wgpu_engine

import (
	"fmt"

	"honnef.co/go/wgpu"

	"honnef.co/go/forward/gmath"
	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/graph"
	"honnef.co/go/forward/scene"
)

type Options struct {
	// SurfaceFormat is the swap chain format blits target when a
	// frame has no explicit output framebuffer.
	SurfaceFormat wgpu.TextureFormat
}

// MeshProvider resolves recorded item draws into actual geometry.
// The scene/mesh storage behind it is outside this module.
type MeshProvider interface {
	// Draw encodes one item's geometry into the render pass. Unknown
	// items must be ignored.
	Draw(pass *wgpu.RenderPassEncoder, item scene.ItemID)
}

type deviceTexture struct {
	handle  *gpu.Texture
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

type pipelineKey struct {
	id       gpu.PipelineID
	topology wgpu.PrimitiveTopology
	depth    bool
}

type Engine struct {
	Device  *wgpu.Device
	options Options
	meshes  MeshProvider

	textures  map[gpu.ResourceID]*deviceTexture
	pipelines map[pipelineKey]*wgpu.RenderPipeline
	shaders   map[string]*wgpu.ShaderModule
	blit      *blitPipeline
}

func New(dev *wgpu.Device, meshes MeshProvider, options Options) *Engine {
	return &Engine{
		Device:    dev,
		options:   options,
		meshes:    meshes,
		textures:  make(map[gpu.ResourceID]*deviceTexture),
		pipelines: make(map[pipelineKey]*wgpu.RenderPipeline),
		shaders:   make(map[string]*wgpu.ShaderModule),
		blit:      newBlitPipeline(dev, options.SurfaceFormat),
	}
}

func textureFormatToWGPU(f gpu.Format) wgpu.TextureFormat {
	switch f {
	case gpu.SRGBA8:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case gpu.RGBA8:
		return wgpu.TextureFormatRGBA8Unorm
	case gpu.Depth24Stencil8:
		return wgpu.TextureFormatDepth24PlusStencil8
	default:
		panic(fmt.Sprintf("unhandled format %s", f))
	}
}

// CreateRenderBuffer implements gpu.Device.
func (eng *Engine) CreateRenderBuffer(format gpu.Format, width, height uint32, sampler gpu.Sampler) (*gpu.Texture, error) {
	usage := wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding
	tex := eng.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "render buffer",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Usage:         usage,
		Format:        textureFormatToWGPU(format),
	})
	if tex == nil {
		return nil, fmt.Errorf("wgpu_engine: creating %s render buffer %dx%d failed", format, width, height)
	}
	handle := gpu.NewTextureHandle(format, width, height, sampler)
	eng.textures[handle.ID] = &deviceTexture{
		handle:  handle,
		texture: tex,
		view:    tex.CreateView(nil),
	}
	graph.Logger().Debug("created render buffer",
		"id", uint64(handle.ID), "format", format.String(), "width", width, "height", height)
	return handle, nil
}

// ReleaseTexture implements gpu.Device.
func (eng *Engine) ReleaseTexture(t *gpu.Texture) {
	if t == nil {
		return
	}
	dt, ok := eng.textures[t.ID]
	if !ok {
		return
	}
	dt.view.Release()
	dt.texture.Release()
	delete(eng.textures, t.ID)
}

func (eng *Engine) view(t *gpu.Texture) (*wgpu.TextureView, error) {
	if t == nil {
		return nil, fmt.Errorf("wgpu_engine: nil texture")
	}
	dt, ok := eng.textures[t.ID]
	if !ok {
		return nil, fmt.Errorf("wgpu_engine: unknown texture %d", t.ID)
	}
	return dt.view, nil
}

func (eng *Engine) shader(s gpu.Shader) *wgpu.ShaderModule {
	if m, ok := eng.shaders[s.Name]; ok {
		return m
	}
	m := eng.Device.CreateShaderModule(wgpu.ShaderModuleDescriptor{
		Label:  s.Name,
		Source: wgpu.ShaderSourceWGSL(s.Source),
	})
	eng.shaders[s.Name] = m
	return m
}

func compareToWGPU(f gpu.ComparisonFunc) wgpu.CompareFunction {
	switch f {
	case gpu.Never:
		return wgpu.CompareFunctionNever
	case gpu.Less:
		return wgpu.CompareFunctionLess
	case gpu.Equal:
		return wgpu.CompareFunctionEqual
	case gpu.LessEqual:
		return wgpu.CompareFunctionLessEqual
	case gpu.Greater:
		return wgpu.CompareFunctionGreater
	case gpu.NotEqual:
		return wgpu.CompareFunctionNotEqual
	case gpu.GreaterEqual:
		return wgpu.CompareFunctionGreaterEqual
	case gpu.Always:
		return wgpu.CompareFunctionAlways
	default:
		panic(fmt.Sprintf("unhandled comparison func %d", f))
	}
}

func stencilOpToWGPU(op gpu.StencilOp) wgpu.StencilOperation {
	switch op {
	case gpu.StencilKeep:
		return wgpu.StencilOperationKeep
	case gpu.StencilZero:
		return wgpu.StencilOperationZero
	case gpu.StencilReplace:
		return wgpu.StencilOperationReplace
	case gpu.StencilIncrement:
		return wgpu.StencilOperationIncrementClamp
	case gpu.StencilDecrement:
		return wgpu.StencilOperationDecrementClamp
	case gpu.StencilInvert:
		return wgpu.StencilOperationInvert
	default:
		panic(fmt.Sprintf("unhandled stencil op %d", op))
	}
}

func primitiveToWGPU(p gpu.Primitive) wgpu.PrimitiveTopology {
	switch p {
	case gpu.Points:
		return wgpu.PrimitiveTopologyPointList
	case gpu.Lines:
		return wgpu.PrimitiveTopologyLineList
	case gpu.LineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case gpu.Triangles:
		return wgpu.PrimitiveTopologyTriangleList
	case gpu.TriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	default:
		panic(fmt.Sprintf("unhandled primitive %d", p))
	}
}

// pipeline returns the wgpu pipeline for a recorded pipeline, built
// lazily per (pipeline, topology, depth target) combination; wgpu
// bakes both into the pipeline object.
func (eng *Engine) pipeline(p *gpu.Pipeline, topology wgpu.PrimitiveTopology, colorFormat wgpu.TextureFormat, hasDepth bool) *wgpu.RenderPipeline {
	key := pipelineKey{id: p.ID, topology: topology, depth: hasDepth}
	if rp, ok := eng.pipelines[key]; ok {
		return rp
	}

	var fragment *wgpu.FragmentState
	if p.Program.Fragment.Source != "" {
		var targets []wgpu.ColorTargetState
		if p.State.ColorWriteMask != gpu.ColorMaskNone {
			target := wgpu.ColorTargetState{
				Format:    colorFormat,
				WriteMask: wgpu.ColorWriteMask(p.State.ColorWriteMask),
			}
			if p.State.BlendEnabled {
				// Premultiplied alpha over.
				target.Blend = &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
				}
			}
			targets = []wgpu.ColorTargetState{target}
		}
		fragment = &wgpu.FragmentState{
			Module:     eng.shader(p.Program.Fragment),
			EntryPoint: "fs_main",
			Targets:    targets,
		}
	}

	var depthStencil *wgpu.DepthStencilState
	if hasDepth {
		ds := &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24PlusStencil8,
			DepthWriteEnabled: p.State.Depth.WriteMask,
			DepthCompare:      wgpu.CompareFunctionAlways,
		}
		if p.State.Depth.Enabled {
			ds.DepthCompare = compareToWGPU(p.State.Depth.Func)
		}
		face := wgpu.StencilFaceState{
			Compare:     wgpu.CompareFunctionAlways,
			FailOp:      wgpu.StencilOperationKeep,
			DepthFailOp: wgpu.StencilOperationKeep,
			PassOp:      wgpu.StencilOperationKeep,
		}
		if st := p.State.Stencil; st.Enabled {
			face = wgpu.StencilFaceState{
				Compare:     compareToWGPU(st.Func),
				FailOp:      stencilOpToWGPU(st.FailOp),
				DepthFailOp: stencilOpToWGPU(st.DepthFailOp),
				PassOp:      stencilOpToWGPU(st.PassOp),
			}
			ds.StencilReadMask = uint32(st.ReadMask)
			ds.StencilWriteMask = uint32(st.WriteMask)
		}
		ds.StencilFront = face
		ds.StencilBack = face
		depthStencil = ds
	}

	rp := eng.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: p.Program.Vertex.Name,
		Vertex: &wgpu.VertexState{
			Module:     eng.shader(p.Program.Vertex),
			EntryPoint: "vs_main",
		},
		Fragment:     fragment,
		DepthStencil: depthStencil,
		Primitive: &wgpu.PrimitiveState{
			Topology:  topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: &wgpu.MultisampleState{
			Count:                  1,
			Mask:                   ^uint32(0),
			AlphaToCoverageEnabled: false,
		},
	})
	eng.pipelines[key] = rp
	return rp
}

func setViewport(pass *wgpu.RenderPassEncoder, vp gmath.Viewport) {
	if vp.Empty() {
		return
	}
	pass.SetViewport(float32(vp.X), float32(vp.Y), float32(vp.Width), float32(vp.Height), 0, 1)
}

func setScissor(pass *wgpu.RenderPassEncoder, vp gmath.Viewport) {
	if vp.Empty() {
		return
	}
	pass.SetScissorRect(uint32(vp.X), uint32(vp.Y), uint32(vp.Width), uint32(vp.Height))
}
