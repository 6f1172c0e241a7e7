package plumber

import (
	"structs"
	"time"

	"honnef.co/go/safeish"

	"honnef.co/go/forward/graph"
	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/scene"
)

// Uniform binding slots reserved for the fade effect by the forward
// shading model.
const (
	FadeParamsSlot uint32 = 6
	FadeObjectSlot uint32 = 7
)

type fadeParams struct {
	_ structs.HostLayout

	NoiseScale [4]float32
	BaseLevel  float32
	_          [3]float32
}

type fadeObject struct {
	_ structs.HostLayout

	Threshold float32
	_         [3]float32
}

// FadeEffect drives dissolve-in transitions for newly visible items.
// It supplies the batch- and item-setters the shape pipelines are
// registered with, and owns a per-frame job that advances fade
// timers. Progress 1 means fully faded in; items without an entry are
// treated as fully visible and cost nothing per draw.
type FadeEffect struct {
	duration   time.Duration
	noiseScale [4]float32
	progress   map[scene.ItemID]float32
	last       time.Time
}

func NewFadeEffect() *FadeEffect {
	return &FadeEffect{
		duration:   time.Second,
		noiseScale: [4]float32{1, 1, 1, 0},
		progress:   make(map[scene.ItemID]float32),
	}
}

// StartFade begins a dissolve-in for an item, restarting any fade
// already in flight.
func (f *FadeEffect) StartFade(id scene.ItemID) {
	f.progress[id] = 0
}

// Progress returns an item's fade progress in [0, 1].
func (f *FadeEffect) Progress(id scene.ItemID) float32 {
	if p, ok := f.progress[id]; ok {
		return p
	}
	return 1
}

// BatchSetter returns the hook that uploads the global fade uniforms
// once per pipeline bind.
func (f *FadeEffect) BatchSetter() BatchSetter {
	return func(b *gpu.Batch) {
		u := fadeParams{
			NoiseScale: f.noiseScale,
			BaseLevel:  1,
		}
		b.SetUniform(FadeParamsSlot, safeish.AsBytes(&u))
	}
}

// ItemUniformSetter returns the hook that uploads the per-item fade
// threshold. Items not fading are skipped entirely.
func (f *FadeEffect) ItemUniformSetter() ItemSetter {
	return func(b *gpu.Batch, item scene.Item) {
		p, ok := f.progress[item.ID]
		if !ok {
			return
		}
		u := fadeObject{Threshold: 1 - p}
		b.SetUniform(FadeObjectSlot, safeish.AsBytes(&u))
	}
}

// Build adds the fade bookkeeping job to the task. It runs before any
// draw job: it advances fade timers by wall-clock time and drops
// entries for items that finished fading or left the visible set.
func (f *FadeEffect) Build(t *graph.Task, opaques scene.Bucket) error {
	return t.AddJob("FadeUpdate", graph.JobFunc(func(fc *graph.FrameContext) error {
		now := time.Now()
		var dt time.Duration
		if !f.last.IsZero() {
			dt = now.Sub(f.last)
		}
		f.last = now

		step := float32(dt.Seconds() / f.duration.Seconds())
		visible := make(map[scene.ItemID]bool, len(opaques))
		for _, it := range opaques {
			visible[it.ID] = true
		}
		for id, p := range f.progress {
			if !visible[id] {
				delete(f.progress, id)
				continue
			}
			p += step
			if p >= 1 {
				delete(f.progress, id)
				continue
			}
			f.progress[id] = p
		}
		return nil
	}))
}
