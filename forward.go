// Package forward assembles the per-frame forward render task: an
// ordered graph of jobs that turns the upstream item buckets into
// pixels in a shared framebuffer, in a fixed draw order (stencil,
// opaque, background, transparent, debug overlays, HUD, blit).
//
// The graph topology is built once per task lifetime; only job
// execution happens per frame. Culling, sorting, pipeline authoring
// and the device itself live outside this module.
package forward

import (
	"fmt"

	"honnef.co/go/forward/gfx"
	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/graph"
	"honnef.co/go/forward/passes"
	"honnef.co/go/forward/plumber"
	"honnef.co/go/forward/scene"
)

// Options configures graph construction. The zero value builds a
// graph with an empty pipeline registry, default lighting and debug
// bounds disabled.
type Options struct {
	// Pipelines registers the forward shape pipelines. It receives
	// the fade effect's batch- and item-setters so faded materials
	// get correct uniforms.
	Pipelines plumber.Initializer

	Lighting passes.LightingOptions

	// HUD records the 2D overlay; nil leaves the HUD stage as a bare
	// composite.
	HUD passes.HUDOperator

	// DebugBounds enables the bounding-box overlay for the meta,
	// opaque, transparent and zone buckets. When false the nodes are
	// still present, disabled, so the graph shape stays inspectable.
	DebugBounds bool
}

// Build constructs the forward render task over one frame's item
// buckets. Buckets must already be partitioned and sorted upstream.
// All wiring errors surface here, at construction time; a task that
// builds cleanly cannot hit a missing input at draw time.
func Build(items *scene.Buckets, fade *plumber.FadeEffect, opts Options) (*graph.Task, error) {
	if fade == nil {
		fade = plumber.NewFadeEffect()
	}

	// Prepare the shape pipelines. The registry lives on this task
	// instance and is reused across frames without rebuilding.
	shapePlumber := plumber.New()
	if opts.Pipelines != nil {
		if err := opts.Pipelines(shapePlumber, fade.BatchSetter(), fade.ItemUniformSetter()); err != nil {
			return nil, fmt.Errorf("forward: registering shape pipelines: %w", err)
		}
	}

	opaques := items.Get(scene.OpaqueShape)
	transparents := items.Get(scene.TransparentShape)
	lights := items.Get(scene.Light)
	metas := items.Get(scene.Meta)
	overlayOpaques := items.Get(scene.OverlayOpaqueShape)
	overlayTransparents := items.Get(scene.OverlayTransparentShape)
	background := items.Get(scene.Background)
	spatialSelection := items.Get(scene.SpatialSelection)

	t := graph.NewTask("forward")
	var err error
	add := func(name string, job graph.Job, jobOpts ...graph.JobOption) {
		if err == nil {
			err = t.AddJob(name, job, jobOpts...)
		}
	}

	if err := fade.Build(t, opaques); err != nil {
		return nil, err
	}

	// Objects shared by several jobs.
	lightingModel := graph.NewVarying[*passes.LightingModel]("lightingModel")
	add("LightingModel", passes.NewMakeLightingModel(lightingModel, opts.Lighting),
		graph.Emits(lightingModel))

	// Filter zones from the general metas bucket.
	zones := graph.NewVarying[scene.Bucket]("zones")
	add("ZoneRenderer", passes.NewExtractZones(metas, zones),
		graph.Emits(zones))

	// GPU jobs: start preparing the main framebuffer.
	framebuffer := graph.NewVarying[*gpu.Framebuffer]("framebuffer")
	add("PrepareFramebuffer", passes.NewPrepareFramebuffer(framebuffer),
		graph.Emits(framebuffer))

	// Mark the hidden regions of the framebuffer in the stencil
	// buffer.
	add("PrepareStencil", passes.NewPrepareStencil(framebuffer),
		graph.Needs(framebuffer))

	// Draw opaques forward.
	add("DrawOpaques", passes.NewDraw("drawOpaques", opaques, shapePlumber))

	// The background stage was resolved for the frame upstream; here
	// it only gets rendered, under the lighting model.
	add("DrawBackground", passes.NewDrawBackground(background, lightingModel),
		graph.Needs(lightingModel))

	// Draw transparent objects forward.
	add("DrawTransparents", passes.NewDraw("drawTransparents", transparents, shapePlumber))

	{ // Debug the bounds of the rendered items, still against the zbuffer.
		enabled := func() []graph.JobOption {
			if opts.DebugBounds {
				return nil
			}
			return []graph.JobOption{graph.Disabled()}
		}
		add("DrawMetaBounds", passes.NewDrawBounds("drawMetaBounds", metas, gfx.NewSRGB(1, 1, 1, 1)), enabled()...)
		add("DrawBounds", passes.NewDrawBounds("drawBounds", opaques, gfx.NewSRGB(0, 1, 1, 1)), enabled()...)
		add("DrawTransparentBounds", passes.NewDrawBounds("drawTransparentBounds", transparents, gfx.NewSRGB(1, 0, 1, 1)), enabled()...)
		add("DrawZones", passes.NewDrawBoundsVarying("drawZones", zones, gfx.NewSRGB(1, 1, 0, 1)),
			append(enabled(), graph.Needs(zones))...)
	}

	// Wired but inactive stages, kept so the graph shape matches the
	// full scene layout.
	add("DrawLightBounds", passes.NewDrawBounds("drawLightBounds", lights, gfx.NewSRGB(1, 0.5, 0, 1)),
		graph.Disabled())
	add("DrawOverlayOpaques", passes.NewDraw("drawOverlayOpaques", overlayOpaques, shapePlumber),
		graph.Disabled())
	add("DrawOverlayTransparents", passes.NewDraw("drawOverlayTransparents", overlayTransparents, shapePlumber),
		graph.Disabled())
	add("DrawSelectionBounds", passes.NewDrawBounds("drawSelectionBounds", spatialSelection, gfx.NewSRGB(0, 1, 0, 1)),
		graph.Disabled())

	// Composite the HUD and HUD overlays.
	add("HUD", passes.NewCompositeHUD(framebuffer, opts.HUD),
		graph.Needs(framebuffer))

	// Blit!
	add("Blit", passes.NewBlit(framebuffer),
		graph.Needs(framebuffer))

	if err != nil {
		return nil, err
	}
	return t, nil
}
