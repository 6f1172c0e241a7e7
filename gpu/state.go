package gpu

import "sync/atomic"

type ComparisonFunc int

const (
	Never ComparisonFunc = iota
	Less
	Equal
	LessEqual
	Greater
	NotEqual
	GreaterEqual
	Always
)

type StencilOp int

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrement
	StencilDecrement
	StencilInvert
)

type DepthTest struct {
	Enabled   bool
	WriteMask bool
	Func      ComparisonFunc
}

type StencilTest struct {
	Enabled     bool
	Reference   uint8
	ReadMask    uint8
	WriteMask   uint8
	Func        ComparisonFunc
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
}

type FillMode int

const (
	FillSolid FillMode = iota
	FillWireframe
)

type ColorMask uint8

const (
	ColorMaskRed ColorMask = 1 << iota
	ColorMaskGreen
	ColorMaskBlue
	ColorMaskAlpha

	ColorMaskAll  = ColorMaskRed | ColorMaskGreen | ColorMaskBlue | ColorMaskAlpha
	ColorMaskNone ColorMask = 0
)

// State is the fixed-function half of a pipeline.
type State struct {
	Depth          DepthTest
	Stencil        StencilTest
	Fill           FillMode
	ColorWriteMask ColorMask
	BlendEnabled   bool
}

func NewState() State {
	return State{ColorWriteMask: ColorMaskAll}
}

func (s *State) SetDepthTest(enabled, write bool, fn ComparisonFunc) {
	s.Depth = DepthTest{Enabled: enabled, WriteMask: write, Func: fn}
}

// Stencil buffer layout. The background bit marks pixels no opaque
// geometry has claimed; the background pass restricts itself to them.
const (
	StencilMaskBackground uint8 = 1 << 0
	StencilMaskScene      uint8 = 1 << 1
)

// DrawBackgroundMask configures s to write the background mark into
// the stencil buffer. Color and depth writes stay off.
func DrawBackgroundMask(s *State) {
	s.Stencil = StencilTest{
		Enabled:     true,
		Reference:   StencilMaskBackground,
		ReadMask:    0xff,
		WriteMask:   0xff,
		Func:        Always,
		FailOp:      StencilKeep,
		DepthFailOp: StencilKeep,
		PassOp:      StencilReplace,
	}
	s.ColorWriteMask = ColorMaskNone
}

// TestBackgroundMask configures s to pass only where the background
// mark was written.
func TestBackgroundMask(s *State) {
	s.Stencil = StencilTest{
		Enabled:     true,
		Reference:   StencilMaskBackground,
		ReadMask:    StencilMaskBackground,
		WriteMask:   0,
		Func:        Equal,
		FailOp:      StencilKeep,
		DepthFailOp: StencilKeep,
		PassOp:      StencilKeep,
	}
}

// Shader is a single stage of a program, carried as WGSL source. The
// engine compiles it on first use.
type Shader struct {
	Name   string
	Source string
}

type ShaderProgram struct {
	Vertex   Shader
	Fragment Shader
}

func NewShaderProgram(vs, fs Shader) ShaderProgram {
	return ShaderProgram{Vertex: vs, Fragment: fs}
}

var pipelineID atomic.Uint64

// PipelineID identifies one pipeline for the lifetime of the process.
type PipelineID uint64

// Pipeline is a shader program plus fixed-function state. Pipelines
// are immutable once created and shared freely between jobs.
type Pipeline struct {
	ID      PipelineID
	Program ShaderProgram
	State   State
}

func NewPipeline(program ShaderProgram, state State) *Pipeline {
	return &Pipeline{
		ID:      PipelineID(pipelineID.Add(1)),
		Program: program,
		State:   state,
	}
}
