package passes

import (
	"structs"

	"honnef.co/go/color"

	"honnef.co/go/forward/gfx"
	"honnef.co/go/forward/graph"
)

// LightingSlot is the uniform binding the forward shading model reads
// global lighting from.
const LightingSlot uint32 = 5

// LightingModel is the per-frame lighting configuration shared by the
// background and transparent stages. It is produced once per frame by
// MakeLightingModel and immutable afterwards; consumers hold it by
// reference only.
type LightingModel struct {
	AmbientEnabled    bool
	BackgroundEnabled bool
	AmbientColor      *color.Color
	AmbientIntensity  float32
}

// lightingUniforms is the GPU layout of the model.
type lightingUniforms struct {
	_ structs.HostLayout

	Ambient   [4]float32
	Intensity float32
	Flags     uint32
	_         [2]uint32
}

const (
	lightingFlagAmbient = 1 << iota
	lightingFlagBackground
)

func (m *LightingModel) uniforms() lightingUniforms {
	u := lightingUniforms{
		Ambient:   gfx.Premul32(m.AmbientColor),
		Intensity: m.AmbientIntensity,
	}
	if m.AmbientEnabled {
		u.Flags |= lightingFlagAmbient
	}
	if m.BackgroundEnabled {
		u.Flags |= lightingFlagBackground
	}
	return u
}

// LightingOptions configures the model the task produces. The zero
// value enables everything with a neutral ambient term.
type LightingOptions struct {
	DisableAmbient    bool
	DisableBackground bool
	// AmbientColor defaults to white.
	AmbientColor *color.Color
	// AmbientIntensity defaults to 1.
	AmbientIntensity float32
}

// MakeLightingModel produces the frame's lighting-model singleton.
type MakeLightingModel struct {
	out  *graph.Varying[*LightingModel]
	opts LightingOptions
}

func NewMakeLightingModel(out *graph.Varying[*LightingModel], opts LightingOptions) *MakeLightingModel {
	if opts.AmbientColor == nil {
		opts.AmbientColor = gfx.NewSRGB(1, 1, 1, 1)
	}
	if opts.AmbientIntensity == 0 {
		opts.AmbientIntensity = 1
	}
	return &MakeLightingModel{out: out, opts: opts}
}

func (j *MakeLightingModel) Run(fc *graph.FrameContext) error {
	j.out.Set(&LightingModel{
		AmbientEnabled:    !j.opts.DisableAmbient,
		BackgroundEnabled: !j.opts.DisableBackground,
		AmbientColor:      j.opts.AmbientColor,
		AmbientIntensity:  j.opts.AmbientIntensity,
	})
	return nil
}
