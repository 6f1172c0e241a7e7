package graph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honnef.co/go/forward/gpu"
	"honnef.co/go/forward/profiler"
)

func newFrameContext() *FrameContext {
	return &FrameContext{
		GPU: gpu.NewContext(gpu.NewHostDevice()),
	}
}

func TestAddJobDuplicateName(t *testing.T) {
	task := NewTask("t")
	require.NoError(t, task.AddJob("a", JobFunc(func(*FrameContext) error { return nil })))
	err := task.AddJob("a", JobFunc(func(*FrameContext) error { return nil }))
	var werr *WiringError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "a", werr.Job)
}

func TestAddJobNeedsWithoutProducer(t *testing.T) {
	task := NewTask("t")
	v := NewVarying[int]("value")
	err := task.AddJob("consumer", JobFunc(func(*FrameContext) error { return nil }),
		Needs(v))
	var werr *WiringError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "value", werr.Slot)
}

func TestAddJobNeedsDisabledProducer(t *testing.T) {
	task := NewTask("t")
	v := NewVarying[int]("value")
	require.NoError(t, task.AddJob("producer", JobFunc(func(*FrameContext) error {
		v.Set(1)
		return nil
	}), Emits(v), Disabled()))

	err := task.AddJob("consumer", JobFunc(func(*FrameContext) error { return nil }),
		Needs(v))
	var werr *WiringError
	require.ErrorAs(t, err, &werr)

	// A disabled consumer of a disabled producer is fine.
	require.NoError(t, task.AddJob("consumer2", JobFunc(func(*FrameContext) error { return nil }),
		Needs(v), Disabled()))
}

func TestAddJobDoubleProducer(t *testing.T) {
	task := NewTask("t")
	v := NewVarying[int]("value")
	nop := JobFunc(func(*FrameContext) error { return nil })
	require.NoError(t, task.AddJob("p1", JobFunc(func(*FrameContext) error {
		v.Set(1)
		return nil
	}), Emits(v)))
	err := task.AddJob("p2", nop, Emits(v))
	var werr *WiringError
	require.ErrorAs(t, err, &werr)
	assert.Contains(t, werr.Reason, "p1")
}

func TestRunOrder(t *testing.T) {
	task := NewTask("t")
	var order []string
	job := func(name string) Job {
		return JobFunc(func(*FrameContext) error {
			order = append(order, name)
			return nil
		})
	}
	require.NoError(t, task.AddJob("a", job("a")))
	require.NoError(t, task.AddJob("b", job("b")))
	require.NoError(t, task.AddJob("skipped", job("skipped"), Disabled()))
	require.NoError(t, task.AddJob("c", job("c")))

	require.NoError(t, task.Run(newFrameContext()))
	assert.Equal(t, []string{"a", "b", "c"}, order)

	// Identical runs execute the identical sequence.
	order = nil
	require.NoError(t, task.Run(newFrameContext()))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRunVaryingFlow(t *testing.T) {
	task := NewTask("t")
	v := NewVarying[int]("value")
	var got int
	require.NoError(t, task.AddJob("producer", JobFunc(func(*FrameContext) error {
		v.Set(42)
		return nil
	}), Emits(v)))
	require.NoError(t, task.AddJob("consumer", JobFunc(func(*FrameContext) error {
		value, ok := v.Get()
		if !ok {
			return errors.New("value not produced")
		}
		got = value
		return nil
	}), Needs(v)))

	require.NoError(t, task.Run(newFrameContext()))
	assert.Equal(t, 42, got)

	// Values do not leak between frames: the producer writes again and
	// the consumer still sees exactly one fresh value.
	require.NoError(t, task.Run(newFrameContext()))
	assert.Equal(t, 42, got)
}

func TestRunErrorAbandonsFrame(t *testing.T) {
	task := NewTask("t")
	boom := errors.New("boom")
	var ran []string
	require.NoError(t, task.AddJob("a", JobFunc(func(*FrameContext) error {
		ran = append(ran, "a")
		return nil
	})))
	require.NoError(t, task.AddJob("b", JobFunc(func(*FrameContext) error {
		return boom
	})))
	require.NoError(t, task.AddJob("c", JobFunc(func(*FrameContext) error {
		ran = append(ran, "c")
		return nil
	})))

	err := task.Run(newFrameContext())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `job "b"`)
	assert.Equal(t, []string{"a"}, ran)
}

func TestRunMissingEmit(t *testing.T) {
	task := NewTask("t")
	v := NewVarying[int]("value")
	require.NoError(t, task.AddJob("producer", JobFunc(func(*FrameContext) error {
		// Declared Emits but never calls Set.
		return nil
	}), Emits(v)))

	err := task.Run(newFrameContext())
	var werr *WiringError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "producer", werr.Job)
}

func TestVaryingSetTwicePanics(t *testing.T) {
	v := NewVarying[int]("value")
	v.Set(1)
	assert.Panics(t, func() { v.Set(2) })
}

func TestVaryingReset(t *testing.T) {
	v := NewVarying[string]("value")
	v.Set("x")
	v.reset()
	got, ok := v.Get()
	assert.False(t, ok)
	assert.Equal(t, "", got)
}

func TestRunProfilerSpans(t *testing.T) {
	task := NewTask("frame")
	require.NoError(t, task.AddJob("a", JobFunc(func(*FrameContext) error { return nil })))
	require.NoError(t, task.AddJob("b", JobFunc(func(*FrameContext) error { return nil })))

	rec := profiler.NewRecorder()
	fc := newFrameContext()
	fc.Profiler = rec
	require.NoError(t, task.Run(fc))

	var labels []string
	for _, s := range rec.Spans() {
		labels = append(labels, s.Label)
	}
	assert.Equal(t, []string{"frame/a", "frame/b"}, labels)
}

func TestTeardown(t *testing.T) {
	task := NewTask("t")
	j := &releaserJob{}
	require.NoError(t, task.AddJob("owner", j))
	require.NoError(t, task.AddJob("plain", JobFunc(func(*FrameContext) error { return nil })))

	task.Teardown(gpu.NewHostDevice())
	assert.Equal(t, 1, j.released)
}

type releaserJob struct {
	released int
}

func (j *releaserJob) Run(*FrameContext) error { return nil }

func (j *releaserJob) Release(gpu.Device) { j.released++ }

func TestWiringErrorMessage(t *testing.T) {
	err := &WiringError{Task: "forward", Job: "DrawZones", Slot: "zones", Reason: "input has no upstream producer"}
	assert.Equal(t, fmt.Sprintf("graph %q: job %q, slot %q: input has no upstream producer", "forward", "DrawZones", "zones"), err.Error())
}
