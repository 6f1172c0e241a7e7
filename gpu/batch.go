package gpu

import (
	"github.com/go-gl/mathgl/mgl32"

	"honnef.co/go/forward/gmath"
	"honnef.co/go/forward/mem"
	"honnef.co/go/forward/scene"
)

// Batch is one scoped recording of GPU state changes and draws. A job
// records into exactly one batch per frame; the batch becomes visible
// to the device only when the recording scope ends (see DoInBatch).
//
// Command storage lives in the frame arena, so recording does not
// allocate once the arena's slabs are warm.
type Batch struct {
	Name     string
	Commands []Command

	arena *mem.Arena
}

func (b *Batch) push(cmd Command) {
	b.Commands = mem.Append(b.arena, b.Commands, cmd)
}

// EnableStereo toggles stereo instancing for subsequent draws.
func (b *Batch) EnableStereo(enabled bool) {
	b.push(mem.Make(b.arena, EnableStereo{Enabled: enabled}))
}

// EnableSkybox switches subsequent draws to skybox mode: view
// translation is dropped so geometry stays at infinity.
func (b *Batch) EnableSkybox(enabled bool) {
	b.push(mem.Make(b.arena, EnableSkybox{Enabled: enabled}))
}

func (b *Batch) SetViewportTransform(vp gmath.Viewport) {
	b.push(mem.Make(b.arena, SetViewportTransform{Viewport: vp}))
}

func (b *Batch) SetStateScissorRect(rect gmath.Viewport) {
	b.push(mem.Make(b.arena, SetStateScissorRect{Rect: rect}))
}

func (b *Batch) SetFramebuffer(fb *Framebuffer) {
	b.push(mem.Make(b.arena, SetFramebuffer{Framebuffer: fb}))
}

func (b *Batch) ClearFramebuffer(mask ClearMask, color [4]float32, depth float32, stencil uint8, enableScissor bool) {
	b.push(mem.Make(b.arena, ClearFramebuffer{
		Mask:          mask,
		Color:         color,
		Depth:         depth,
		Stencil:       stencil,
		EnableScissor: enableScissor,
	}))
}

func (b *Batch) SetPipeline(p *Pipeline) {
	b.push(mem.Make(b.arena, SetPipeline{Pipeline: p}))
}

func (b *Batch) SetProjectionTransform(m mgl32.Mat4) {
	b.push(mem.Make(b.arena, SetProjectionTransform{Matrix: m}))
}

func (b *Batch) SetViewTransform(m mgl32.Mat4) {
	b.push(mem.Make(b.arena, SetViewTransform{Matrix: m}))
}

func (b *Batch) SetModelTransform(m mgl32.Mat4) {
	b.push(mem.Make(b.arena, SetModelTransform{Matrix: m}))
}

// SetUniform uploads raw uniform bytes to a binding slot. Data is
// copied into the frame arena; callers may reuse their buffer.
func (b *Batch) SetUniform(slot uint32, data []byte) {
	b.push(mem.Make(b.arena, SetUniform{Slot: slot, Data: mem.MakeSlice(b.arena, data)}))
}

// Draw issues a non-indexed draw of count vertices generated by the
// bound pipeline's vertex stage.
func (b *Batch) Draw(primitive Primitive, count uint32) {
	b.push(mem.Make(b.arena, Draw{Primitive: primitive, VertexCount: count}))
}

// DrawItem draws one scene item with the bound pipeline. The engine
// resolves the item's geometry at execution time.
func (b *Batch) DrawItem(id scene.ItemID) {
	b.push(mem.Make(b.arena, DrawItem{Item: id}))
}

// BlitFramebuffer copies src to dst. A nil dst means the frame's
// final output target (swap chain surface).
func (b *Batch) BlitFramebuffer(src *Framebuffer, srcRect gmath.Viewport, dst *Framebuffer, dstRect gmath.Viewport) {
	b.push(mem.Make(b.arena, BlitFramebuffer{
		Src:     src,
		SrcRect: srcRect,
		Dst:     dst,
		DstRect: dstRect,
	}))
}

type Primitive int

const (
	Points Primitive = iota
	Lines
	LineStrip
	Triangles
	TriangleStrip
)

type ClearMask uint8

const (
	BufferColor0 ClearMask = 1 << iota
	BufferDepth
	BufferStencil
)

// Command is one recorded batch entry. The concrete types mirror the
// Batch methods; backends switch over them at execution time and
// tests inspect them directly.
type Command interface {
	isCommand()
}

func (*EnableStereo) isCommand()           {}
func (*EnableSkybox) isCommand()           {}
func (*SetViewportTransform) isCommand()   {}
func (*SetStateScissorRect) isCommand()    {}
func (*SetFramebuffer) isCommand()         {}
func (*ClearFramebuffer) isCommand()       {}
func (*SetPipeline) isCommand()            {}
func (*SetProjectionTransform) isCommand() {}
func (*SetViewTransform) isCommand()       {}
func (*SetModelTransform) isCommand()      {}
func (*SetUniform) isCommand()             {}
func (*Draw) isCommand()                   {}
func (*DrawItem) isCommand()               {}
func (*BlitFramebuffer) isCommand()        {}

type EnableStereo struct {
	Enabled bool
}

type EnableSkybox struct {
	Enabled bool
}

type SetViewportTransform struct {
	Viewport gmath.Viewport
}

type SetStateScissorRect struct {
	Rect gmath.Viewport
}

type SetFramebuffer struct {
	Framebuffer *Framebuffer
}

type ClearFramebuffer struct {
	Mask          ClearMask
	Color         [4]float32
	Depth         float32
	Stencil       uint8
	EnableScissor bool
}

type SetPipeline struct {
	Pipeline *Pipeline
}

type SetProjectionTransform struct {
	Matrix mgl32.Mat4
}

type SetViewTransform struct {
	Matrix mgl32.Mat4
}

type SetModelTransform struct {
	Matrix mgl32.Mat4
}

type SetUniform struct {
	Slot uint32
	Data []byte
}

type Draw struct {
	Primitive   Primitive
	VertexCount uint32
}

type DrawItem struct {
	Item scene.ItemID
}

type BlitFramebuffer struct {
	Src     *Framebuffer
	SrcRect gmath.Viewport
	Dst     *Framebuffer
	DstRect gmath.Viewport
}
