package gmath

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestViewportSize(t *testing.T) {
	v := Viewport{X: 10, Y: 20, Width: 800, Height: 600}
	w, h := v.Size()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), h)

	// Degenerate rectangles clamp to zero instead of wrapping.
	w, h = Viewport{Width: -5, Height: -5}.Size()
	assert.Equal(t, uint32(0), w)
	assert.Equal(t, uint32(0), h)
}

func TestViewportEmpty(t *testing.T) {
	assert.True(t, Viewport{}.Empty())
	assert.True(t, Viewport{Width: 100}.Empty())
	assert.False(t, Viewport{Width: 1, Height: 1}.Empty())
}

func TestViewportIntersect(t *testing.T) {
	v := Viewport{Width: 100, Height: 100}

	inside := v.Intersect(Viewport{X: 10, Y: 10, Width: 20, Height: 20})
	assert.Equal(t, Viewport{X: 10, Y: 10, Width: 20, Height: 20}, inside)

	overhang := v.Intersect(Viewport{X: 90, Y: 90, Width: 50, Height: 50})
	assert.Equal(t, Viewport{X: 90, Y: 90, Width: 10, Height: 10}, overhang)

	outside := v.Intersect(Viewport{X: 200, Y: 200, Width: 10, Height: 10})
	assert.True(t, outside.Empty())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(5, 0, 10))
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(99, 0, 10))
	assert.Equal(t, 1.5, Clamp(1.5, 1.0, 2.0))
}

func TestFrustumTransforms(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 16.0/9.0, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	f := NewFrustum(proj, view)

	assert.Equal(t, proj, f.EvalProjectionMatrix())
	assert.Equal(t, view, f.EvalViewTransform())

	pf := PerspectiveFrustum(mgl32.DegToRad(60), 16.0/9.0, 0.1, 100,
		mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assert.Equal(t, proj, pf.EvalProjectionMatrix())
	assert.Equal(t, view, pf.EvalViewTransform())
}

func TestBox3(t *testing.T) {
	b := Box3{Min: mgl32.Vec3{-1, -2, -3}, Max: mgl32.Vec3{1, 2, 3}}
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, b.Center())
	assert.Equal(t, mgl32.Vec3{2, 4, 6}, b.Size())

	u := b.Union(Box3{Min: mgl32.Vec3{0, -5, 0}, Max: mgl32.Vec3{4, 0, 0}})
	assert.Equal(t, mgl32.Vec3{-1, -5, -3}, u.Min)
	assert.Equal(t, mgl32.Vec3{4, 2, 3}, u.Max)
}
