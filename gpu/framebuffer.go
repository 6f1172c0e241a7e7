package gpu

// Framebuffer bundles one color render buffer and one combined
// depth/stencil render buffer. Its size is fixed at attachment time;
// a framebuffer is never resized in place, only replaced, because
// resizing races with previously recorded frames still in flight.
type Framebuffer struct {
	ID   ResourceID
	Name string

	color        *Texture
	depthStencil *Texture
}

func NewFramebuffer(name string) *Framebuffer {
	return &Framebuffer{
		ID:   nextResourceID(),
		Name: name,
	}
}

// SetRenderBuffer attaches a color buffer. Only attachment slot 0 is
// supported by the forward graph.
func (fb *Framebuffer) SetRenderBuffer(slot int, t *Texture) {
	if slot != 0 {
		panic("gpu: only color attachment 0 is supported")
	}
	fb.color = t
}

func (fb *Framebuffer) SetDepthStencilBuffer(t *Texture) {
	fb.depthStencil = t
}

func (fb *Framebuffer) RenderBuffer(slot int) *Texture {
	if slot != 0 {
		return nil
	}
	return fb.color
}

func (fb *Framebuffer) DepthStencilBuffer() *Texture {
	return fb.depthStencil
}

// Size returns the attachment size. Both attachments always agree; the
// color buffer is authoritative.
func (fb *Framebuffer) Size() (width, height uint32) {
	if fb.color == nil {
		return 0, 0
	}
	return fb.color.Width, fb.color.Height
}

// Complete reports whether both attachments are present.
func (fb *Framebuffer) Complete() bool {
	return fb.color != nil && fb.depthStencil != nil
}

// Release returns the attachments to the device. The framebuffer must
// not be used afterwards.
func (fb *Framebuffer) Release(dev Device) {
	dev.ReleaseTexture(fb.color)
	dev.ReleaseTexture(fb.depthStencil)
	fb.color = nil
	fb.depthStencil = nil
}
