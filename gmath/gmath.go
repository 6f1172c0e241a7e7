// Package gmath has the small amount of geometry the render graph
// needs: integer viewport rectangles, a camera frustum that can
// evaluate its projection and view transforms, and axis-aligned
// bounding boxes for debug visualization.
package gmath

import (
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

// Viewport is a rectangle in framebuffer pixels. X and Y are the
// lower-left corner.
type Viewport struct {
	X, Y          int32
	Width, Height int32
}

func (v Viewport) Size() (width, height uint32) {
	return uint32(max(v.Width, 0)), uint32(max(v.Height, 0))
}

func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Intersect clamps o to v. Used to keep scissor rectangles inside the
// render target.
func (v Viewport) Intersect(o Viewport) Viewport {
	x0 := Clamp(o.X, v.X, v.X+v.Width)
	y0 := Clamp(o.Y, v.Y, v.Y+v.Height)
	x1 := Clamp(o.X+o.Width, v.X, v.X+v.Width)
	y1 := Clamp(o.Y+o.Height, v.Y, v.Y+v.Height)
	return Viewport{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Frustum is the active camera for a frame. The graph only ever reads
// it; the frame driver owns it.
type Frustum struct {
	projection mgl32.Mat4
	view       mgl32.Mat4
}

func NewFrustum(projection, view mgl32.Mat4) Frustum {
	return Frustum{projection: projection, view: view}
}

// PerspectiveFrustum builds a frustum from a perspective projection
// and a look-at view transform.
func PerspectiveFrustum(fovy, aspect, near, far float32, eye, center, up mgl32.Vec3) Frustum {
	return Frustum{
		projection: mgl32.Perspective(fovy, aspect, near, far),
		view:       mgl32.LookAtV(eye, center, up),
	}
}

// EvalProjectionMatrix returns the projection transform.
func (f *Frustum) EvalProjectionMatrix() mgl32.Mat4 {
	return f.projection
}

// EvalViewTransform returns the world-to-camera transform.
func (f *Frustum) EvalViewTransform() mgl32.Mat4 {
	return f.view
}

// Box3 is an axis-aligned bounding box.
type Box3 struct {
	Min, Max mgl32.Vec3
}

func (b Box3) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Box3) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b Box3) Union(o Box3) Box3 {
	return Box3{
		Min: mgl32.Vec3{
			min(b.Min[0], o.Min[0]),
			min(b.Min[1], o.Min[1]),
			min(b.Min[2], o.Min[2]),
		},
		Max: mgl32.Vec3{
			max(b.Max[0], o.Max[0]),
			max(b.Max[1], o.Max[1]),
			max(b.Max[2], o.Max[2]),
		},
	}
}
