package graph

import "fmt"

// Slot is the untyped view of a varying, used by the task builder for
// wiring validation. The typed half lives in Varying.
type Slot interface {
	Name() string
	// Producer returns the name of the job bound to write this slot,
	// or "" if none is bound yet.
	Producer() string

	bindProducer(job string)
	reset()
	valid() bool
}

// Varying is a typed, single-producer value threaded from one job's
// output to later jobs' inputs. The binding is established once at
// graph-build time; per frame the producing job writes the value
// exactly once and consumers read it.
type Varying[T any] struct {
	name     string
	producer string
	value    T
	set      bool
}

func NewVarying[T any](name string) *Varying[T] {
	return &Varying[T]{name: name}
}

func (v *Varying[T]) Name() string {
	return v.name
}

func (v *Varying[T]) Producer() string {
	return v.producer
}

// Set publishes the frame's value. A varying is single-writer: setting
// it twice in one frame is a defect in the producing job, not a
// recoverable condition.
func (v *Varying[T]) Set(value T) {
	if v.set {
		panic(fmt.Sprintf("graph: varying %q set twice in one frame", v.name))
	}
	v.value = value
	v.set = true
}

// Get returns the frame's value. ok is false if the producing job has
// not run yet this frame; with a validated graph that only happens
// when a job reads a slot it never declared via Needs.
func (v *Varying[T]) Get() (T, bool) {
	return v.value, v.set
}

func (v *Varying[T]) bindProducer(job string) {
	v.producer = job
}

func (v *Varying[T]) reset() {
	var zero T
	v.value = zero
	v.set = false
}

func (v *Varying[T]) valid() bool {
	return v.set
}

// WiringError reports a build-time defect in the job graph: an input
// with no upstream producer, a slot with two producers, or an enabled
// job depending on a disabled one.
type WiringError struct {
	Task   string
	Job    string
	Slot   string
	Reason string
}

func (e *WiringError) Error() string {
	return fmt.Sprintf("graph %q: job %q, slot %q: %s", e.Task, e.Job, e.Slot, e.Reason)
}
