package forward

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honnef.co/go/forward/gmath"
	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/plumber"
	"honnef.co/go/forward/profiler"
	"honnef.co/go/forward/scene"
)

func testFrustum() gmath.Frustum {
	return gmath.PerspectiveFrustum(mgl32.DegToRad(60), 4.0/3.0, 0.1, 100,
		mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
}

func TestBuildGraphShape(t *testing.T) {
	var items scene.Buckets
	task, err := Build(&items, nil, Options{})
	require.NoError(t, err)

	var names []string
	enabled := make(map[string]bool)
	for _, n := range task.Nodes() {
		names = append(names, n.Name)
		enabled[n.Name] = n.Enabled
	}
	assert.Equal(t, []string{
		"FadeUpdate",
		"LightingModel",
		"ZoneRenderer",
		"PrepareFramebuffer",
		"PrepareStencil",
		"DrawOpaques",
		"DrawBackground",
		"DrawTransparents",
		"DrawMetaBounds",
		"DrawBounds",
		"DrawTransparentBounds",
		"DrawZones",
		"DrawLightBounds",
		"DrawOverlayOpaques",
		"DrawOverlayTransparents",
		"DrawSelectionBounds",
		"HUD",
		"Blit",
	}, names)

	// Debug and overlay stages are wired but inactive by default.
	assert.False(t, enabled["DrawMetaBounds"])
	assert.False(t, enabled["DrawZones"])
	assert.False(t, enabled["DrawLightBounds"])
	assert.False(t, enabled["DrawOverlayOpaques"])
	assert.True(t, enabled["DrawOpaques"])
	assert.True(t, enabled["Blit"])
}

func TestBuildDebugBounds(t *testing.T) {
	var items scene.Buckets
	task, err := Build(&items, nil, Options{DebugBounds: true})
	require.NoError(t, err)

	enabled := make(map[string]bool)
	for _, n := range task.Nodes() {
		enabled[n.Name] = n.Enabled
	}
	assert.True(t, enabled["DrawMetaBounds"])
	assert.True(t, enabled["DrawBounds"])
	assert.True(t, enabled["DrawTransparentBounds"])
	assert.True(t, enabled["DrawZones"])
	// The light and selection overlays stay off either way.
	assert.False(t, enabled["DrawLightBounds"])
	assert.False(t, enabled["DrawSelectionBounds"])
}

func TestBuildPipelineInitError(t *testing.T) {
	boom := errors.New("shader compile failed")
	var items scene.Buckets
	_, err := Build(&items, nil, Options{
		Pipelines: func(p *plumber.ShapePlumber, batchSetter plumber.BatchSetter, itemSetter plumber.ItemSetter) error {
			return boom
		},
	})
	require.ErrorIs(t, err, boom)
}

func TestRenderFrameBatchOrder(t *testing.T) {
	var items scene.Buckets
	items[scene.OpaqueShape] = scene.Bucket{{ID: 1, Key: 1}}
	items[scene.Background] = scene.Bucket{{ID: 2}}

	task, err := Build(&items, nil, Options{
		Pipelines: func(p *plumber.ShapePlumber, batchSetter plumber.BatchSetter, itemSetter plumber.ItemSetter) error {
			pipe := gpu.NewPipeline(gpu.NewShaderProgram(gpu.DrawUnitQuadTexcoordVS(), gpu.NopFS()), gpu.NewState())
			return p.AddPipeline([]scene.ShapeKey{1}, pipe, batchSetter, itemSetter)
		},
	})
	require.NoError(t, err)

	r := NewRunner(task, gpu.NewHostDevice())
	batches, err := r.RenderFrame(gmath.Viewport{Width: 800, Height: 600}, testFrustum(), false, nil)
	require.NoError(t, err)

	var names []string
	for _, b := range batches {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{
		"prepareFramebuffer",
		"prepareStencil",
		"drawOpaques",
		"drawBackground",
		"drawTransparents",
		"hud",
		"blit",
	}, names)
}

func TestRenderFrameReusesFramebuffer(t *testing.T) {
	var items scene.Buckets
	task, err := Build(&items, nil, Options{})
	require.NoError(t, err)

	dev := gpu.NewHostDevice()
	r := NewRunner(task, dev)
	vp := gmath.Viewport{Width: 800, Height: 600}

	_, err = r.RenderFrame(vp, testFrustum(), false, nil)
	require.NoError(t, err)
	require.Equal(t, 2, dev.Live())

	// Same viewport: no allocation churn.
	_, err = r.RenderFrame(vp, testFrustum(), false, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, dev.Live())

	// Resize: the target is replaced, never grown in place.
	_, err = r.RenderFrame(gmath.Viewport{Width: 1920, Height: 1080}, testFrustum(), false, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, dev.Live())

	r.Teardown()
	assert.Equal(t, 0, dev.Live())
}

func TestRenderFrameAllocationFailure(t *testing.T) {
	var items scene.Buckets
	task, err := Build(&items, nil, Options{})
	require.NoError(t, err)

	dev := gpu.NewHostDevice()
	dev.CreateErr = errors.New("out of memory")
	r := NewRunner(task, dev)

	_, err = r.RenderFrame(gmath.Viewport{Width: 800, Height: 600}, testFrustum(), false, nil)
	require.Error(t, err)

	// The device recovers, so does the next frame.
	dev.CreateErr = nil
	batches, err := r.RenderFrame(gmath.Viewport{Width: 800, Height: 600}, testFrustum(), false, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, batches)
}

func TestRenderFrameHUDOperator(t *testing.T) {
	var items scene.Buckets
	var hudRan bool
	task, err := Build(&items, nil, Options{
		HUD: func(b *gpu.Batch, viewport gmath.Viewport) {
			hudRan = true
			b.Draw(gpu.Triangles, 3)
		},
	})
	require.NoError(t, err)

	r := NewRunner(task, gpu.NewHostDevice())
	batches, err := r.RenderFrame(gmath.Viewport{Width: 800, Height: 600}, testFrustum(), false, nil)
	require.NoError(t, err)
	require.True(t, hudRan)

	var hud *gpu.Batch
	for _, b := range batches {
		if b.Name == "hud" {
			hud = b
		}
	}
	require.NotNil(t, hud)
	assert.Equal(t, &gpu.Draw{Primitive: gpu.Triangles, VertexCount: 3}, hud.Commands[len(hud.Commands)-1])
}

func TestRenderFrameDeterministic(t *testing.T) {
	var items scene.Buckets
	items[scene.OpaqueShape] = scene.Bucket{
		{ID: 1, Key: 1},
		{ID: 2, Key: 2},
		{ID: 3, Key: 1},
	}
	task, err := Build(&items, nil, Options{
		Pipelines: func(p *plumber.ShapePlumber, batchSetter plumber.BatchSetter, itemSetter plumber.ItemSetter) error {
			for _, key := range []scene.ShapeKey{1, 2} {
				pipe := gpu.NewPipeline(gpu.NewShaderProgram(gpu.DrawUnitQuadTexcoordVS(), gpu.NopFS()), gpu.NewState())
				if err := p.AddPipeline([]scene.ShapeKey{key}, pipe, batchSetter, itemSetter); err != nil {
					return err
				}
			}
			return nil
		},
	})
	require.NoError(t, err)

	r := NewRunner(task, gpu.NewHostDevice())
	vp := gmath.Viewport{Width: 800, Height: 600}

	drawOrder := func() []scene.ItemID {
		batches, err := r.RenderFrame(vp, testFrustum(), false, nil)
		require.NoError(t, err)
		var order []scene.ItemID
		for _, b := range batches {
			if b.Name != "drawOpaques" {
				continue
			}
			for _, cmd := range b.Commands {
				if cmd, ok := cmd.(*gpu.DrawItem); ok {
					order = append(order, cmd.Item)
				}
			}
		}
		return order
	}

	first := drawOrder()
	assert.Equal(t, []scene.ItemID{1, 3, 2}, first)
	assert.Equal(t, first, drawOrder())
}

func TestRenderFrameProfiler(t *testing.T) {
	var items scene.Buckets
	task, err := Build(&items, nil, Options{})
	require.NoError(t, err)

	r := NewRunner(task, gpu.NewHostDevice())
	rec := profiler.NewRecorder()
	r.Profiler = rec

	_, err = r.RenderFrame(gmath.Viewport{Width: 800, Height: 600}, testFrustum(), false, nil)
	require.NoError(t, err)

	labels := make(map[string]bool)
	for _, s := range rec.Spans() {
		labels[s.Label] = true
	}
	assert.True(t, labels["forward/DrawOpaques"])
	assert.True(t, labels["forward/Blit"])
	// Disabled stages never get a span.
	assert.False(t, labels["forward/DrawLightBounds"])
}
