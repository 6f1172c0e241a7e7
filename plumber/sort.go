package plumber

import (
	"slices"

	"honnef.co/go/forward/graph"
	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/scene"
)

// RenderStateSortShapes draws a bucket through the registry, grouping
// items by shape pipeline to minimize state changes. Within a group,
// items keep their bucket order. sortKey >= 0 re-sorts the bucket by
// item sort key first; -1 keeps the bucket's natural order, which is
// what draw jobs want — opaque buckets arrive front-to-back and
// transparent buckets back-to-front from the upstream sort.
//
// Items whose signature has no registered pipeline are skipped. That
// is a recoverable rendering gap, not a frame failure.
func RenderStateSortShapes(b *gpu.Batch, p *ShapePlumber, items scene.Bucket, sortKey int) {
	if len(items) == 0 {
		return
	}

	in := items
	if sortKey >= 0 {
		sorted := slices.Clone([]scene.Item(items))
		slices.SortStableFunc(sorted, func(a, b scene.Item) int {
			switch {
			case a.SortKey < b.SortKey:
				return -1
			case a.SortKey > b.SortKey:
				return 1
			default:
				return 0
			}
		})
		in = sorted
	}

	// Group in first-seen key order so the overall submission order
	// stays deterministic for identical inputs.
	groups := make(map[scene.ShapeKey][]scene.Item)
	var keys []scene.ShapeKey
	for _, it := range in {
		if _, ok := groups[it.Key]; !ok {
			keys = append(keys, it.Key)
		}
		groups[it.Key] = append(groups[it.Key], it)
	}

	for _, key := range keys {
		group := groups[key]
		sp, ok := p.Pick(key)
		if !ok {
			graph.Logger().Warn("no shape pipeline registered, skipping items",
				"key", uint32(key), "items", len(group))
			continue
		}
		b.SetPipeline(sp.Pipeline)
		if sp.BatchSetter != nil {
			sp.BatchSetter(b)
		}
		for _, it := range group {
			if sp.ItemSetter != nil {
				sp.ItemSetter(b, it)
			}
			b.DrawItem(it.ID)
		}
	}
}

// RenderItems draws a bucket in order without registry lookups; each
// item is drawn with whatever pipeline it resolves to engine-side.
// Used by stages whose items carry their own pipelines, like the
// background.
func RenderItems(b *gpu.Batch, items scene.Bucket) {
	for _, it := range items {
		b.DrawItem(it.ID)
	}
}
