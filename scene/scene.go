// Package scene defines the read-only per-frame inputs of the render
// graph: items and the named buckets they arrive in. Culling and
// sorting happen upstream; by the time a bucket reaches the graph its
// order is final.
package scene

import (
	"honnef.co/go/forward/gmath"
)

// ItemID is an opaque handle to a drawable scene element. The graph
// never dereferences it; the engine resolves it when a recorded draw
// is executed.
type ItemID uint64

type ItemFlags uint8

const (
	// ItemZone marks meta items that describe a zone volume rather
	// than drawable geometry.
	ItemZone ItemFlags = 1 << iota
)

// ShapeKey is an item's material/shading signature. Draw jobs use it
// to look up the shape pipeline; items whose key has no registered
// pipeline are skipped.
type ShapeKey uint32

const InvalidShapeKey ShapeKey = 0

// Item is one drawable element as delivered by the upstream
// fetch/cull/sort stage.
type Item struct {
	ID      ItemID
	Bound   gmath.Box3
	Key     ShapeKey
	SortKey float32
	Flags   ItemFlags
}

// Bucket is an ordered, read-only sequence of items of one category.
// Jobs must not mutate it; several jobs may read the same bucket in
// one frame.
type Bucket []Item

// BucketID names the buckets the upstream stage delivers. The order
// of the constants is wire-stable; it mirrors the upstream fetch
// output layout.
type BucketID int

const (
	OpaqueShape BucketID = iota
	TransparentShape
	Light
	Meta
	OverlayOpaqueShape
	OverlayTransparentShape
	Background
	Zone
	SpatialSelection

	NumBuckets
)

var bucketNames = [NumBuckets]string{
	"opaque",
	"transparent",
	"light",
	"meta",
	"overlayOpaque",
	"overlayTransparent",
	"background",
	"zone",
	"spatialSelection",
}

func (id BucketID) String() string {
	if id < 0 || id >= NumBuckets {
		return "invalid"
	}
	return bucketNames[id]
}

// Buckets is the full per-frame input set, indexed by BucketID.
type Buckets [NumBuckets]Bucket

func (b *Buckets) Get(id BucketID) Bucket {
	return b[id]
}
