package plumber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/graph"
	"honnef.co/go/forward/scene"
)

func TestFadeProgressDefaultsToVisible(t *testing.T) {
	f := NewFadeEffect()
	assert.Equal(t, float32(1), f.Progress(1))
}

func TestStartFade(t *testing.T) {
	f := NewFadeEffect()
	f.StartFade(1)
	assert.Equal(t, float32(0), f.Progress(1))
	// Restarting resets progress.
	f.progress[1] = 0.5
	f.StartFade(1)
	assert.Equal(t, float32(0), f.Progress(1))
}

func TestFadeBatchSetter(t *testing.T) {
	f := NewFadeEffect()
	b := recordBatch(f.BatchSetter())

	require.Len(t, b.Commands, 1)
	cmd := b.Commands[0].(*gpu.SetUniform)
	assert.Equal(t, FadeParamsSlot, cmd.Slot)
	assert.NotEmpty(t, cmd.Data)
}

func TestFadeItemSetterSkipsNonFading(t *testing.T) {
	f := NewFadeEffect()
	f.StartFade(1)
	setter := f.ItemUniformSetter()

	b := recordBatch(func(b *gpu.Batch) {
		setter(b, scene.Item{ID: 1})
		setter(b, scene.Item{ID: 2})
	})

	// Only the fading item uploads a threshold.
	require.Len(t, b.Commands, 1)
	cmd := b.Commands[0].(*gpu.SetUniform)
	assert.Equal(t, FadeObjectSlot, cmd.Slot)
}

func TestFadeUpdateAdvancesAndPrunes(t *testing.T) {
	f := NewFadeEffect()
	opaques := scene.Bucket{{ID: 1}, {ID: 2}}
	task := graph.NewTask("t")
	require.NoError(t, f.Build(task, opaques))

	f.StartFade(1) // visible, keeps fading
	f.StartFade(3) // not in the bucket anymore
	fc := &graph.FrameContext{GPU: gpu.NewContext(gpu.NewHostDevice())}
	require.NoError(t, task.Run(fc))

	_, fading := f.progress[1]
	assert.True(t, fading)
	_, gone := f.progress[3]
	assert.False(t, gone)

	// A finished fade is dropped; the item renders fully visible.
	f.progress[1] = 0.9999
	f.last = f.last.Add(-f.duration)
	require.NoError(t, task.Run(fc))
	assert.Equal(t, float32(1), f.Progress(1))
}
