package rhi

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
)

// FillMode selects how polygons are rasterized.
type FillMode uint8

const (
	FillModeSolid FillMode = iota
	FillModeWireframe
)

// String returns the fill mode name.
func (m FillMode) String() string {
	switch m {
	case FillModeSolid:
		return "Solid"
	case FillModeWireframe:
		return "Wireframe"
	default:
		return fmt.Sprintf("FillMode(%d)", uint8(m))
	}
}

// AddressMode selects how texture coordinates outside [0, 1] are resolved.
type AddressMode uint8

const (
	AddressModeWrap AddressMode = iota
	AddressModeMirror
	AddressModeClamp
	AddressModeBorder
	AddressModeMirrorOnce
)

var addressModeNames = [...]string{"Wrap", "Mirror", "Clamp", "Border", "MirrorOnce"}

// String returns the address mode name.
func (m AddressMode) String() string {
	if int(m) < len(addressModeNames) {
		return addressModeNames[m]
	}
	return fmt.Sprintf("AddressMode(%d)", uint8(m))
}

// PrimitiveTopology describes how vertices are assembled into primitives.
type PrimitiveTopology uint8

const (
	PrimitiveTopologyPointList PrimitiveTopology = iota
	PrimitiveTopologyLineList
	PrimitiveTopologyLineStrip
	PrimitiveTopologyTriangleList
	PrimitiveTopologyTriangleStrip
	PrimitiveTopologyPatchList
)

var topologyNames = [...]string{"PointList", "LineList", "LineStrip", "TriangleList", "TriangleStrip", "PatchList"}

// String returns the topology name.
func (t PrimitiveTopology) String() string {
	if int(t) < len(topologyNames) {
		return topologyNames[t]
	}
	return fmt.Sprintf("PrimitiveTopology(%d)", uint8(t))
}

// TopologyType is the coarse primitive class a pipeline state is built for.
type TopologyType uint8

const (
	TopologyTypePoint TopologyType = iota
	TopologyTypeLine
	TopologyTypeTriangle
	TopologyTypePatch
)

// Type returns the primitive class of t.
func (t PrimitiveTopology) Type() TopologyType {
	switch t {
	case PrimitiveTopologyPointList:
		return TopologyTypePoint
	case PrimitiveTopologyLineList, PrimitiveTopologyLineStrip:
		return TopologyTypeLine
	case PrimitiveTopologyPatchList:
		return TopologyTypePatch
	default:
		return TopologyTypeTriangle
	}
}

// MaxRenderTargets is the number of simultaneous color targets a blend
// descriptor describes.
const MaxRenderTargets = 8

// RasterizerDescriptor describes rasterizer state.
type RasterizerDescriptor struct {
	FillMode                  FillMode
	CullMode                  gputypes.CullMode
	FrontFace                 gputypes.FrontFace
	DepthBias                 int32
	DepthBiasClamp            float32
	SlopeScaledDepthBias      float32
	DepthClipEnable           bool
	MultisampleEnable         bool
	AntialiasedLineEnable     bool
	ScissorEnable             bool
	ConservativeRasterization bool
}

// DefaultRasterizer returns solid fill, back-face culling and clockwise
// front faces with depth clipping on.
func DefaultRasterizer() RasterizerDescriptor {
	return RasterizerDescriptor{
		FillMode:        FillModeSolid,
		CullMode:        gputypes.CullModeBack,
		FrontFace:       gputypes.FrontFaceCW,
		DepthClipEnable: true,
	}
}

// Validate reports out-of-range fields.
func (d RasterizerDescriptor) Validate() error {
	if d.FillMode > FillModeWireframe {
		return fmt.Errorf("%w: rasterizer fill mode %d", ErrInvalidDescriptor, d.FillMode)
	}
	if d.CullMode > gputypes.CullModeBack {
		return fmt.Errorf("%w: rasterizer cull mode %d", ErrInvalidDescriptor, d.CullMode)
	}
	if d.FrontFace > gputypes.FrontFaceCW {
		return fmt.Errorf("%w: rasterizer front face %d", ErrInvalidDescriptor, d.FrontFace)
	}
	return nil
}

// RenderTargetBlend describes blending for a single color target.
type RenderTargetBlend struct {
	BlendEnable   bool
	SrcBlend      gputypes.BlendFactor
	DstBlend      gputypes.BlendFactor
	BlendOp       gputypes.BlendOperation
	SrcBlendAlpha gputypes.BlendFactor
	DstBlendAlpha gputypes.BlendFactor
	BlendOpAlpha  gputypes.BlendOperation
	WriteMask     gputypes.ColorWriteMask
}

// BlendDescriptor describes output merger blend state.
// With IndependentBlendEnable false only RenderTargets[0] is used.
type BlendDescriptor struct {
	AlphaToCoverageEnable  bool
	IndependentBlendEnable bool
	RenderTargets          [MaxRenderTargets]RenderTargetBlend
}

// DefaultRenderTargetBlend returns disabled blending with one/zero/add
// factors and all channels written.
func DefaultRenderTargetBlend() RenderTargetBlend {
	return RenderTargetBlend{
		SrcBlend:      gputypes.BlendFactorOne,
		DstBlend:      gputypes.BlendFactorZero,
		BlendOp:       gputypes.BlendOperationAdd,
		SrcBlendAlpha: gputypes.BlendFactorOne,
		DstBlendAlpha: gputypes.BlendFactorZero,
		BlendOpAlpha:  gputypes.BlendOperationAdd,
		WriteMask:     gputypes.ColorWriteMaskAll,
	}
}

// DefaultBlend returns blending disabled on every render target.
func DefaultBlend() BlendDescriptor {
	var d BlendDescriptor
	for i := range d.RenderTargets {
		d.RenderTargets[i] = DefaultRenderTargetBlend()
	}
	return d
}

// Target returns the blend description that applies to color target i.
func (d BlendDescriptor) Target(i int) RenderTargetBlend {
	if !d.IndependentBlendEnable || i < 0 || i >= MaxRenderTargets {
		return d.RenderTargets[0]
	}
	return d.RenderTargets[i]
}

// Validate reports out-of-range fields.
func (d BlendDescriptor) Validate() error {
	for i, rt := range d.RenderTargets {
		for _, f := range [...]gputypes.BlendFactor{rt.SrcBlend, rt.DstBlend, rt.SrcBlendAlpha, rt.DstBlendAlpha} {
			if f == gputypes.BlendFactorUndefined || f > gputypes.BlendFactorOneMinusConstant {
				return fmt.Errorf("%w: render target %d blend factor %d", ErrInvalidDescriptor, i, f)
			}
		}
		for _, op := range [...]gputypes.BlendOperation{rt.BlendOp, rt.BlendOpAlpha} {
			if op == gputypes.BlendOperationUndefined || op > gputypes.BlendOperationMax {
				return fmt.Errorf("%w: render target %d blend op %d", ErrInvalidDescriptor, i, op)
			}
		}
		if rt.WriteMask > gputypes.ColorWriteMaskAll {
			return fmt.Errorf("%w: render target %d write mask %#x", ErrInvalidDescriptor, i, rt.WriteMask)
		}
	}
	return nil
}

// StencilFaceDescriptor describes stencil operations for one face.
type StencilFaceDescriptor struct {
	FailOp      gputypes.StencilOperation
	DepthFailOp gputypes.StencilOperation
	PassOp      gputypes.StencilOperation
	Func        gputypes.CompareFunction
}

// DepthStencilDescriptor describes depth and stencil test state.
type DepthStencilDescriptor struct {
	DepthEnable      bool
	DepthWriteEnable bool
	DepthFunc        gputypes.CompareFunction
	StencilEnable    bool
	StencilReadMask  uint8
	StencilWriteMask uint8
	FrontFace        StencilFaceDescriptor
	BackFace         StencilFaceDescriptor
}

// DefaultStencilFace returns keep operations and an always-passing test.
func DefaultStencilFace() StencilFaceDescriptor {
	return StencilFaceDescriptor{
		FailOp:      gputypes.StencilOperationKeep,
		DepthFailOp: gputypes.StencilOperationKeep,
		PassOp:      gputypes.StencilOperationKeep,
		Func:        gputypes.CompareFunctionAlways,
	}
}

// DefaultDepthStencil returns depth testing with less and depth writes on,
// stencil off.
func DefaultDepthStencil() DepthStencilDescriptor {
	return DepthStencilDescriptor{
		DepthEnable:      true,
		DepthWriteEnable: true,
		DepthFunc:        gputypes.CompareFunctionLess,
		StencilReadMask:  0xff,
		StencilWriteMask: 0xff,
		FrontFace:        DefaultStencilFace(),
		BackFace:         DefaultStencilFace(),
	}
}

func validCompare(f gputypes.CompareFunction) bool {
	return f >= gputypes.CompareFunctionNever && f <= gputypes.CompareFunctionAlways
}

func validStencilOp(op gputypes.StencilOperation) bool {
	return op >= gputypes.StencilOperationKeep && op <= gputypes.StencilOperationDecrementWrap
}

// Validate reports out-of-range fields.
func (d DepthStencilDescriptor) Validate() error {
	if !validCompare(d.DepthFunc) {
		return fmt.Errorf("%w: depth func %d", ErrInvalidDescriptor, d.DepthFunc)
	}
	faces := [...]struct {
		name string
		face StencilFaceDescriptor
	}{{"front", d.FrontFace}, {"back", d.BackFace}}
	for _, f := range faces {
		if !validCompare(f.face.Func) {
			return fmt.Errorf("%w: %s stencil func %d", ErrInvalidDescriptor, f.name, f.face.Func)
		}
		if !validStencilOp(f.face.FailOp) || !validStencilOp(f.face.DepthFailOp) || !validStencilOp(f.face.PassOp) {
			return fmt.Errorf("%w: %s stencil op", ErrInvalidDescriptor, f.name)
		}
	}
	return nil
}

// SamplerDescriptor describes texture sampling state.
type SamplerDescriptor struct {
	MinFilter     gputypes.FilterMode
	MagFilter     gputypes.FilterMode
	MipFilter     gputypes.FilterMode
	MaxAnisotropy uint16
	AddressU      AddressMode
	AddressV      AddressMode
	AddressW      AddressMode
	MipLODBias    float32
	// Compare enables comparison sampling when not CompareFunctionNever.
	Compare     gputypes.CompareFunction
	BorderColor [4]float32
	MinLOD      float32
	MaxLOD      float32
}

// DefaultSampler returns trilinear filtering, clamped addressing and
// anisotropy 16 with an unbounded LOD range.
func DefaultSampler() SamplerDescriptor {
	return SamplerDescriptor{
		MinFilter:     gputypes.FilterModeLinear,
		MagFilter:     gputypes.FilterModeLinear,
		MipFilter:     gputypes.FilterModeLinear,
		MaxAnisotropy: 16,
		AddressU:      AddressModeClamp,
		AddressV:      AddressModeClamp,
		AddressW:      AddressModeClamp,
		Compare:       gputypes.CompareFunctionNever,
		MinLOD:        -math.MaxFloat32,
		MaxLOD:        math.MaxFloat32,
	}
}

// IsComparison reports whether the sampler performs depth comparison.
func (d SamplerDescriptor) IsComparison() bool {
	return d.Compare != gputypes.CompareFunctionNever && d.Compare != gputypes.CompareFunctionUndefined
}

// Anisotropic reports whether anisotropic filtering is requested.
func (d SamplerDescriptor) Anisotropic() bool {
	return d.MaxAnisotropy > 1
}

// Validate reports out-of-range fields.
func (d SamplerDescriptor) Validate() error {
	for _, f := range [...]gputypes.FilterMode{d.MinFilter, d.MagFilter, d.MipFilter} {
		if f != gputypes.FilterModeNearest && f != gputypes.FilterModeLinear {
			return fmt.Errorf("%w: sampler filter %d", ErrInvalidDescriptor, f)
		}
	}
	for _, m := range [...]AddressMode{d.AddressU, d.AddressV, d.AddressW} {
		if m > AddressModeMirrorOnce {
			return fmt.Errorf("%w: sampler address mode %d", ErrInvalidDescriptor, m)
		}
	}
	if !validCompare(d.Compare) {
		return fmt.Errorf("%w: sampler compare %d", ErrInvalidDescriptor, d.Compare)
	}
	if d.MaxAnisotropy > 16 {
		return fmt.Errorf("%w: sampler anisotropy %d", ErrInvalidDescriptor, d.MaxAnisotropy)
	}
	if d.MinLOD > d.MaxLOD {
		return fmt.Errorf("%w: sampler LOD range [%g, %g]", ErrInvalidDescriptor, d.MinLOD, d.MaxLOD)
	}
	return nil
}
