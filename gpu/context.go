package gpu

import (
	"honnef.co/go/forward/mem"
)

// Context collects the batches committed during one frame. The frame
// driver hands the committed batches to a backend for execution and
// calls BeginFrame before the next frame, which also resets the frame
// arena.
type Context struct {
	dev     Device
	arena   *mem.Arena
	batches []*Batch
}

func NewContext(dev Device) *Context {
	return &Context{
		dev:   dev,
		arena: mem.NewArena(),
	}
}

func (ctx *Context) Device() Device {
	return ctx.dev
}

// BeginFrame discards the previous frame's batches and recycles their
// command storage. Callers must not hold on to batches across frames.
func (ctx *Context) BeginFrame() {
	ctx.batches = ctx.batches[:0]
	ctx.arena.Reset()
}

// Frame returns the batches committed so far this frame, in commit
// order.
func (ctx *Context) Frame() []*Batch {
	return ctx.batches
}

func (ctx *Context) commit(b *Batch) {
	ctx.batches = append(ctx.batches, b)
}

// DoInBatch opens a scoped recording region, runs fn with it, and
// commits the batch atomically when fn returns. Partial batches are
// never observed: if fn panics, nothing is committed.
func DoInBatch(ctx *Context, name string, fn func(*Batch)) {
	b := &Batch{Name: name, arena: ctx.arena}
	fn(b)
	ctx.commit(b)
}
