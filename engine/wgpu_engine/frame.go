package wgpu_engine

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"honnef.co/go/safeish"
	"honnef.co/go/wgpu"

	"honnef.co/go/forward/gmath"
	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/graph"
)

// transforms is the per-draw transform block, bound at group(1).
type transforms struct {
	Projection mgl32.Mat4
	View       mgl32.Mat4
	Model      mgl32.Mat4
	Flags      [4]uint32
}

const (
	transformFlagStereo = 1 << iota
	transformFlagSkybox
)

type frameState struct {
	fb         *gpu.Framebuffer
	pipeline   *gpu.Pipeline
	viewport   gmath.Viewport
	scissor    gmath.Viewport
	transforms transforms
	uniforms   map[uint32][]byte
}

// RunFrame replays a frame's batches on the device and submits the
// resulting command buffer. surface receives blits whose destination
// framebuffer is nil.
func (eng *Engine) RunFrame(queue *wgpu.Queue, batches []*gpu.Batch, surface *wgpu.SurfaceTexture) error {
	encoder := eng.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "frame"})
	defer encoder.Release()

	state := frameState{
		uniforms: make(map[uint32][]byte),
	}
	state.transforms.Projection = mgl32.Ident4()
	state.transforms.View = mgl32.Ident4()
	state.transforms.Model = mgl32.Ident4()

	// Transient buffers and bind groups live until the submit.
	var transient []interface{ Release() }
	defer func() {
		for _, r := range transient {
			r.Release()
		}
	}()

	var pass *wgpu.RenderPassEncoder
	endPass := func() {
		if pass != nil {
			pass.End()
			pass.Release()
			pass = nil
		}
	}

	beginPass := func(clear *gpu.ClearFramebuffer) error {
		endPass()
		if state.fb == nil {
			return fmt.Errorf("wgpu_engine: draw without a bound framebuffer")
		}
		colorView, err := eng.view(state.fb.RenderBuffer(0))
		if err != nil {
			return err
		}
		colorAttachment := wgpu.RenderPassColorAttachment{
			View:   colorView,
			LoadOp: wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}
		var depthAttachment *wgpu.RenderPassDepthStencilAttachment
		if ds := state.fb.DepthStencilBuffer(); ds != nil {
			dsView, err := eng.view(ds)
			if err != nil {
				return err
			}
			depthAttachment = &wgpu.RenderPassDepthStencilAttachment{
				View:            dsView,
				DepthLoadOp:     wgpu.LoadOpLoad,
				DepthStoreOp:    wgpu.StoreOpStore,
				StencilLoadOp:   wgpu.LoadOpLoad,
				StencilStoreOp:  wgpu.StoreOpStore,
			}
		}
		if clear != nil {
			if clear.Mask&gpu.BufferColor0 != 0 {
				colorAttachment.LoadOp = wgpu.LoadOpClear
				colorAttachment.ClearValue = wgpu.Color{
					R: float64(clear.Color[0]),
					G: float64(clear.Color[1]),
					B: float64(clear.Color[2]),
					A: float64(clear.Color[3]),
				}
			}
			if depthAttachment != nil {
				if clear.Mask&gpu.BufferDepth != 0 {
					depthAttachment.DepthLoadOp = wgpu.LoadOpClear
					depthAttachment.DepthClearValue = clear.Depth
				}
				if clear.Mask&gpu.BufferStencil != 0 {
					depthAttachment.StencilLoadOp = wgpu.LoadOpClear
					depthAttachment.StencilClearValue = uint32(clear.Stencil)
				}
			}
		}
		pass = encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments:       []wgpu.RenderPassColorAttachment{colorAttachment},
			DepthStencilAttachment: depthAttachment,
		})
		setViewport(pass, state.viewport)
		setScissor(pass, state.scissor)
		return nil
	}

	prepareDraw := func(topology wgpu.PrimitiveTopology) error {
		if pass == nil {
			if err := beginPass(nil); err != nil {
				return err
			}
		}
		if state.pipeline == nil {
			return fmt.Errorf("wgpu_engine: draw without a bound pipeline")
		}
		colorFormat := textureFormatToWGPU(state.fb.RenderBuffer(0).Format)
		hasDepth := state.fb.DepthStencilBuffer() != nil
		rp := eng.pipeline(state.pipeline, topology, colorFormat, hasDepth)
		pass.SetPipeline(rp)
		if state.pipeline.State.Stencil.Enabled {
			pass.SetStencilReference(uint32(state.pipeline.State.Stencil.Reference))
		}
		transient = append(transient, eng.bindUniforms(queue, pass, rp, &state)...)
		return nil
	}

	for _, batch := range batches {
		for _, cmd := range batch.Commands {
			switch cmd := cmd.(type) {
			case *gpu.EnableStereo:
				if cmd.Enabled {
					state.transforms.Flags[0] |= transformFlagStereo
				} else {
					state.transforms.Flags[0] &^= transformFlagStereo
				}
			case *gpu.EnableSkybox:
				if cmd.Enabled {
					state.transforms.Flags[0] |= transformFlagSkybox
				} else {
					state.transforms.Flags[0] &^= transformFlagSkybox
				}
			case *gpu.SetViewportTransform:
				state.viewport = cmd.Viewport
				if pass != nil {
					setViewport(pass, state.viewport)
				}
			case *gpu.SetStateScissorRect:
				state.scissor = cmd.Rect
				if pass != nil {
					setScissor(pass, state.scissor)
				}
			case *gpu.SetFramebuffer:
				if state.fb != cmd.Framebuffer {
					endPass()
					state.fb = cmd.Framebuffer
				}
			case *gpu.ClearFramebuffer:
				if err := beginPass(cmd); err != nil {
					return err
				}
			case *gpu.SetPipeline:
				state.pipeline = cmd.Pipeline
			case *gpu.SetProjectionTransform:
				state.transforms.Projection = cmd.Matrix
			case *gpu.SetViewTransform:
				state.transforms.View = cmd.Matrix
			case *gpu.SetModelTransform:
				state.transforms.Model = cmd.Matrix
			case *gpu.SetUniform:
				state.uniforms[cmd.Slot] = cmd.Data
			case *gpu.Draw:
				if err := prepareDraw(primitiveToWGPU(cmd.Primitive)); err != nil {
					return err
				}
				pass.Draw(cmd.VertexCount, 1, 0, 0)
			case *gpu.DrawItem:
				if eng.meshes == nil {
					graph.Logger().Debug("no mesh provider, dropping item draw", "item", uint64(cmd.Item))
					continue
				}
				if err := prepareDraw(wgpu.PrimitiveTopologyTriangleList); err != nil {
					return err
				}
				eng.meshes.Draw(pass, cmd.Item)
			case *gpu.BlitFramebuffer:
				endPass()
				if err := eng.blitFramebuffer(encoder, cmd, surface); err != nil {
					return err
				}
			default:
				panic(fmt.Sprintf("unhandled command %T", cmd))
			}
		}
	}
	endPass()

	cmdBuf := encoder.Finish(nil)
	defer cmdBuf.Release()
	queue.Submit(cmdBuf)
	return nil
}

// bindUniforms uploads the transform block and any user uniforms the
// bound shaders reference, and attaches the bind groups. Binding use
// is derived from the WGSL source; a proper reflection step would
// replace the string scan.
func (eng *Engine) bindUniforms(queue *wgpu.Queue, pass *wgpu.RenderPassEncoder, rp *wgpu.RenderPipeline, state *frameState) []interface{ Release() } {
	var transient []interface{ Release() }
	src := state.pipeline.Program.Vertex.Source + state.pipeline.Program.Fragment.Source

	upload := func(data []byte) *wgpu.Buffer {
		buf := eng.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Size:  uint64(len(data)),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		queue.WriteBuffer(buf, 0, data)
		transient = append(transient, buf)
		return buf
	}

	if strings.Contains(src, "@group(0)") {
		var entries []wgpu.BindGroupEntry
		for slot, data := range state.uniforms {
			if !strings.Contains(src, fmt.Sprintf("@binding(%d)", slot)) {
				continue
			}
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: slot,
				Buffer:  upload(data),
			})
		}
		if len(entries) > 0 {
			bg := eng.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
				Layout:  rp.BindGroupLayout(0),
				Entries: entries,
			})
			transient = append(transient, bg)
			pass.SetBindGroup(0, bg, nil)
		}
	}
	if strings.Contains(src, "@group(1)") {
		bg := eng.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Layout: rp.BindGroupLayout(1),
			Entries: []wgpu.BindGroupEntry{
				{
					Binding: 0,
					Buffer:  upload(safeish.AsBytes(&state.transforms)),
				},
			},
		})
		transient = append(transient, bg)
		pass.SetBindGroup(1, bg, nil)
	}
	return transient
}
