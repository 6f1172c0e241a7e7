// Package passes contains the concrete stages of the forward render
// task: framebuffer preparation, stencil masking, the shape draws,
// background, debug bounds, HUD composite and the final blit.
package passes

import (
	"fmt"

	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/graph"
)

// PrepareFramebuffer supplies the frame's render target: sRGB color
// plus combined depth/stencil, point filtered, sized to the viewport.
// The framebuffer persists across frames and is recreated only when
// the viewport size changes.
type PrepareFramebuffer struct {
	out         *graph.Varying[*gpu.Framebuffer]
	framebuffer *gpu.Framebuffer
}

func NewPrepareFramebuffer(out *graph.Varying[*gpu.Framebuffer]) *PrepareFramebuffer {
	return &PrepareFramebuffer{out: out}
}

func (j *PrepareFramebuffer) Run(fc *graph.FrameContext) error {
	width, height := fc.Viewport.Size()
	fb, err := ensureFramebuffer(fc.GPU.Device(), j.framebuffer, width, height)
	if err != nil {
		// Fatal for this frame: no partial framebuffer is published,
		// so downstream draw jobs never see a half-built target.
		j.framebuffer = nil
		return fmt.Errorf("prepare framebuffer: %w", err)
	}
	j.framebuffer = fb

	gpu.DoInBatch(fc.GPU, "prepareFramebuffer", func(b *gpu.Batch) {
		b.EnableStereo(false)
		b.SetViewportTransform(fc.Viewport)
		b.SetStateScissorRect(fc.Viewport)

		b.SetFramebuffer(fb)
		b.ClearFramebuffer(
			gpu.BufferColor0|gpu.BufferDepth|gpu.BufferStencil,
			[4]float32{0, 0, 0, 1}, 1.0, 0, true)
	})

	j.out.Set(fb)
	return nil
}

// Release frees the cached framebuffer. Called at task teardown.
func (j *PrepareFramebuffer) Release(dev gpu.Device) {
	if j.framebuffer != nil {
		j.framebuffer.Release(dev)
		j.framebuffer = nil
	}
}

// ensureFramebuffer returns a complete framebuffer of exactly the
// requested size, reusing cached when it already matches. Effects are
// visible only through the returned value and the device, which keeps
// the resource lifecycle testable against a host device.
func ensureFramebuffer(dev gpu.Device, cached *gpu.Framebuffer, width, height uint32) (*gpu.Framebuffer, error) {
	if cached != nil {
		cw, ch := cached.Size()
		if cw == width && ch == height {
			return cached, nil
		}
		// Resizing attachments in place races with previously
		// recorded frames still in flight; replace the whole target.
		graph.Logger().Debug("framebuffer size changed, recreating",
			"old", [2]uint32{cw, ch}, "new", [2]uint32{width, height})
		cached.Release(dev)
	}

	fb := gpu.NewFramebuffer("forward")
	color, err := dev.CreateRenderBuffer(gpu.SRGBA8, width, height, gpu.FilterPoint)
	if err != nil {
		return nil, fmt.Errorf("color attachment: %w", err)
	}
	depthStencil, err := dev.CreateRenderBuffer(gpu.Depth24Stencil8, width, height, gpu.FilterPoint)
	if err != nil {
		dev.ReleaseTexture(color)
		return nil, fmt.Errorf("depth/stencil attachment: %w", err)
	}
	fb.SetRenderBuffer(0, color)
	fb.SetDepthStencilBuffer(depthStencil)
	return fb, nil
}
