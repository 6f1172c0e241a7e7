package gpu

import (
	"fmt"
	"sync/atomic"
)

var resourceID atomic.Uint64

func nextResourceID() ResourceID {
	return ResourceID(resourceID.Add(1))
}

// ResourceID identifies one host-side GPU resource. IDs are unique for
// the lifetime of the process; backends key their device objects by it.
type ResourceID uint64

// Format is the texel format of a render buffer.
type Format int

const (
	// SRGBA8 is 8-bit-per-channel sRGB color with alpha.
	SRGBA8 Format = iota + 1
	// RGBA8 is 8-bit-per-channel linear color with alpha.
	RGBA8
	// Depth24Stencil8 is a combined 24-bit depth, 8-bit stencil buffer.
	Depth24Stencil8
)

func (f Format) String() string {
	switch f {
	case SRGBA8:
		return "SRGBA8"
	case RGBA8:
		return "RGBA8"
	case Depth24Stencil8:
		return "Depth24Stencil8"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Sampler selects the filtering used when a render buffer is read back
// as a texture.
type Sampler int

const (
	FilterPoint Sampler = iota
	FilterLinear
)

// Texture is a host-side handle for one render buffer. The device
// object behind it is owned by whatever Device created it.
type Texture struct {
	ID      ResourceID
	Format  Format
	Width   uint32
	Height  uint32
	Sampler Sampler
}

// NewTextureHandle mints the host-side handle for a render buffer.
// Device implementations outside this package use it to pair a fresh
// ResourceID with their device object.
func NewTextureHandle(format Format, width, height uint32, sampler Sampler) *Texture {
	return &Texture{
		ID:      nextResourceID(),
		Format:  format,
		Width:   width,
		Height:  height,
		Sampler: sampler,
	}
}

// Device creates and releases render buffers. The wgpu engine
// implements it against a real adapter; HostDevice implements it
// host-only for tests and headless graph runs.
type Device interface {
	// CreateRenderBuffer allocates a texture usable as a framebuffer
	// attachment. A non-nil error means the allocation failed and no
	// resource was created.
	CreateRenderBuffer(format Format, width, height uint32, sampler Sampler) (*Texture, error)
	// ReleaseTexture frees a texture previously returned by
	// CreateRenderBuffer. Releasing nil is a no-op.
	ReleaseTexture(*Texture)
}

// HostDevice is a Device that never talks to hardware. It tracks live
// textures so resource-lifecycle behavior stays observable.
type HostDevice struct {
	// CreateErr, when non-nil, is returned by every CreateRenderBuffer
	// call. Used to exercise allocation-failure paths.
	CreateErr error

	live map[ResourceID]*Texture
}

func NewHostDevice() *HostDevice {
	return &HostDevice{live: make(map[ResourceID]*Texture)}
}

func (d *HostDevice) CreateRenderBuffer(format Format, width, height uint32, sampler Sampler) (*Texture, error) {
	if d.CreateErr != nil {
		return nil, d.CreateErr
	}
	t := &Texture{
		ID:      nextResourceID(),
		Format:  format,
		Width:   width,
		Height:  height,
		Sampler: sampler,
	}
	d.live[t.ID] = t
	return t, nil
}

func (d *HostDevice) ReleaseTexture(t *Texture) {
	if t == nil {
		return
	}
	delete(d.live, t.ID)
}

// Live reports the number of textures created and not yet released.
func (d *HostDevice) Live() int {
	return len(d.live)
}
