package core

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/rhi"
)

// Tokens maps portable enums to a backend's native constants.
// Tables indexed by gputypes enums use the gputypes numbering, so index 0
// is the Undefined value.
type Tokens struct {
	Compare      [9]uint32 // gputypes.CompareFunction
	BlendFactor  [14]uint32
	BlendOp      [6]uint32
	StencilOp    [9]uint32
	CullMode     [3]uint32
	FrontFace    [2]uint32
	Filter       [3]uint32
	FillMode     [2]uint32 // rhi.FillMode
	AddressMode  [5]uint32 // rhi.AddressMode
	Topology     [6]uint32 // rhi.PrimitiveTopology
	TopologyType [4]uint32 // rhi.TopologyType
	IndexFormat  [2]uint32 // rhi.IndexFormat
}

func lookup[E ~uint8 | ~uint32, T any](table []T, e E) T {
	if int(e) < len(table) {
		return table[e]
	}
	var zero T
	return zero
}

// CompareFunc returns the native comparison token.
func (t *Tokens) CompareFunc(f gputypes.CompareFunction) uint32 { return lookup(t.Compare[:], f) }

// Blend returns the native blend factor token.
func (t *Tokens) Blend(f gputypes.BlendFactor) uint32 { return lookup(t.BlendFactor[:], f) }

// BlendOperation returns the native blend operation token.
func (t *Tokens) BlendOperation(op gputypes.BlendOperation) uint32 { return lookup(t.BlendOp[:], op) }

// Stencil returns the native stencil operation token.
func (t *Tokens) Stencil(op gputypes.StencilOperation) uint32 { return lookup(t.StencilOp[:], op) }

// Cull returns the native cull mode token.
func (t *Tokens) Cull(m gputypes.CullMode) uint32 { return lookup(t.CullMode[:], m) }

// Winding returns the native front face token.
func (t *Tokens) Winding(f gputypes.FrontFace) uint32 { return lookup(t.FrontFace[:], f) }

// FilterMode returns the native filter token.
func (t *Tokens) FilterMode(f gputypes.FilterMode) uint32 { return lookup(t.Filter[:], f) }

// Fill returns the native fill mode token.
func (t *Tokens) Fill(m rhi.FillMode) uint32 { return lookup(t.FillMode[:], m) }

// Address returns the native texture address token.
func (t *Tokens) Address(m rhi.AddressMode) uint32 { return lookup(t.AddressMode[:], m) }

// Primitive returns the native topology token.
func (t *Tokens) Primitive(p rhi.PrimitiveTopology) uint32 { return lookup(t.Topology[:], p) }

// PrimitiveType returns the native topology class token.
func (t *Tokens) PrimitiveType(p rhi.TopologyType) uint32 { return lookup(t.TopologyType[:], p) }

// Index returns the native index format token.
func (t *Tokens) Index(f rhi.IndexFormat) uint32 { return lookup(t.IndexFormat[:], f) }

// TranslateFunc turns a validated module into backend source or binary for
// the entry point of one stage.
type TranslateFunc func(m *ir.Module, stage rhi.ShaderStage, entryPoint string) ([]byte, error)

// Calls names the native entry points traced by the draw path.
// Empty names are not traced.
type Calls struct {
	Draw                string
	DrawIndexed         string
	DrawIndirect        string
	DrawIndexedIndirect string
	Viewport            string
	Scissor             string
	Clear               string
	Marker              string
	BeginEvent          string
	EndEvent            string
	Label               string
	Present             string
	// Pipeline is traced when a pipeline state is created, with the
	// topology class token.
	Pipeline string
}

// Profile describes one backend.
type Profile struct {
	// Name is the registry name, for example rhi.BackendOpenGL.
	Name string
	// Variants are the hal backends tried in order when no device is injected.
	Variants []gputypes.Backend

	// Language names the shader language, for example "GLSL".
	Language     string
	ShaderFormat rhi.ShaderFormat
	// Translate is nil when the backend consumes WGSL directly.
	Translate TranslateFunc

	Caps   rhi.Capabilities
	Tokens Tokens
	Calls  Calls

	// Bind hooks emit the native calls that apply a translated state block.
	// A nil hook means the state is baked into the pipeline object.
	BindRasterizer   func(t rhi.Tracer, n *NativeRasterizer)
	BindBlend        func(t rhi.Tracer, n *NativeBlend)
	BindDepthStencil func(t rhi.Tracer, n *NativeDepthStencil)
	BindSampler      func(t rhi.Tracer, unit uint32, n *NativeSampler)
	BindTopology     func(t rhi.Tracer, topology uint32)

	// SamplerFilter composes the three filters into one token, as
	// D3D11_FILTER does. Nil keeps them separate.
	SamplerFilter func(d rhi.SamplerDescriptor) uint32
	// CullToken overrides the cull token for APIs whose cull mode depends
	// on the winding.
	CullToken func(d rhi.RasterizerDescriptor, t *Tokens) uint32
}

func (p *Profile) validate() error {
	if p.Name == "" {
		return fmt.Errorf("core: profile without name")
	}
	if len(p.Variants) == 0 {
		return fmt.Errorf("core: profile %s has no hal variants", p.Name)
	}
	return nil
}

// accepts reports whether source of format f is used without translation.
func (p *Profile) accepts(f rhi.ShaderFormat) bool {
	return f == p.ShaderFormat
}
