package passes

import (
	"honnef.co/go/forward/graph"
	"honnef.co/go/forward/scene"
)

// ExtractZones filters zone volumes out of the general meta bucket so
// downstream diagnostics can address them as their own bucket. The
// meta bucket itself is untouched.
type ExtractZones struct {
	metas scene.Bucket
	out   *graph.Varying[scene.Bucket]
}

func NewExtractZones(metas scene.Bucket, out *graph.Varying[scene.Bucket]) *ExtractZones {
	return &ExtractZones{metas: metas, out: out}
}

func (j *ExtractZones) Run(fc *graph.FrameContext) error {
	var zones scene.Bucket
	for _, it := range j.metas {
		if it.Flags&scene.ItemZone != 0 {
			zones = append(zones, it)
		}
	}
	j.out.Set(zones)
	return nil
}
