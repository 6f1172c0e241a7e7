// Package plumber is the shape pipeline registry: it maps an item's
// material signature to the concrete pipeline that draws it, together
// with the hooks that apply extra per-batch and per-item uniforms.
// Draw jobs look pipelines up per draw call; they never author them.
package plumber

import (
	"fmt"

	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/scene"
)

// BatchSetter applies extra per-batch uniforms right after a shape
// pipeline is bound.
type BatchSetter func(b *gpu.Batch)

// ItemSetter applies extra per-item uniforms right before an item is
// drawn.
type ItemSetter func(b *gpu.Batch, item scene.Item)

// ShapePipeline is one registry entry: the pipeline plus its uniform
// hooks. Entries are immutable after registration.
type ShapePipeline struct {
	Pipeline    *gpu.Pipeline
	BatchSetter BatchSetter
	ItemSetter  ItemSetter
}

// Initializer registers the pipeline set for one rendering mode. The
// setters come from the fade-effect collaborator so faded materials
// get correct uniforms.
type Initializer func(p *ShapePlumber, batchSetter BatchSetter, itemSetter ItemSetter) error

// ShapePlumber holds the registered shape pipelines of one task
// instance. It is built once and read per draw call; there is no
// process-wide registry, so independent graphs and tests coexist.
type ShapePlumber struct {
	pipelines map[scene.ShapeKey]*ShapePipeline
}

func New() *ShapePlumber {
	return &ShapePlumber{
		pipelines: make(map[scene.ShapeKey]*ShapePipeline),
	}
}

// AddPipeline registers pipeline for the given keys.
func (p *ShapePlumber) AddPipeline(keys []scene.ShapeKey, pipeline *gpu.Pipeline, batchSetter BatchSetter, itemSetter ItemSetter) error {
	for _, key := range keys {
		if key == scene.InvalidShapeKey {
			return fmt.Errorf("plumber: cannot register the invalid shape key")
		}
		if _, ok := p.pipelines[key]; ok {
			return fmt.Errorf("plumber: shape key %d registered twice", key)
		}
		p.pipelines[key] = &ShapePipeline{
			Pipeline:    pipeline,
			BatchSetter: batchSetter,
			ItemSetter:  itemSetter,
		}
	}
	return nil
}

// Pick resolves the pipeline for a material signature.
func (p *ShapePlumber) Pick(key scene.ShapeKey) (*ShapePipeline, bool) {
	sp, ok := p.pipelines[key]
	return sp, ok
}

func (p *ShapePlumber) Len() int {
	return len(p.pipelines)
}
