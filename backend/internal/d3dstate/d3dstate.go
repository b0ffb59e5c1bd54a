// Package d3dstate holds the Direct3D enum values shared by the Direct3D
// 9, 11 and 12 profiles. D3D9 render states and the D3D11/12 state
// descriptions number comparison, blend, stencil and address values
// identically.
package d3dstate

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/internal/core"
)

// Comparison functions (D3DCMPFUNC, D3D11_COMPARISON_FUNC).
const (
	CmpNever        = 1
	CmpLess         = 2
	CmpEqual        = 3
	CmpLessEqual    = 4
	CmpGreater      = 5
	CmpNotEqual     = 6
	CmpGreaterEqual = 7
	CmpAlways       = 8
)

// Blend factors (D3DBLEND, D3D11_BLEND).
const (
	BlendZero           = 1
	BlendOne            = 2
	BlendSrcColor       = 3
	BlendInvSrcColor    = 4
	BlendSrcAlpha       = 5
	BlendInvSrcAlpha    = 6
	BlendDestAlpha      = 7
	BlendInvDestAlpha   = 8
	BlendDestColor      = 9
	BlendInvDestColor   = 10
	BlendSrcAlphaSat    = 11
	BlendBlendFactor    = 14
	BlendInvBlendFactor = 15
)

// Blend operations (D3DBLENDOP, D3D11_BLEND_OP).
const (
	BlendOpAdd         = 1
	BlendOpSubtract    = 2
	BlendOpRevSubtract = 3
	BlendOpMin         = 4
	BlendOpMax         = 5
)

// Stencil operations (D3DSTENCILOP, D3D11_STENCIL_OP).
const (
	StencilKeep    = 1
	StencilZero    = 2
	StencilReplace = 3
	StencilIncrSat = 4
	StencilDecrSat = 5
	StencilInvert  = 6
	StencilIncr    = 7
	StencilDecr    = 8
)

// Texture address modes (D3DTEXTUREADDRESS, D3D11_TEXTURE_ADDRESS_MODE).
const (
	AddressWrap       = 1
	AddressMirror     = 2
	AddressClamp      = 3
	AddressBorder     = 4
	AddressMirrorOnce = 5
)

// Fill modes (D3DFILLMODE, D3D11_FILL_MODE).
const (
	FillWireframe = 2
	FillSolid     = 3
)

// Primitive topologies (D3DPRIMITIVETYPE, D3D_PRIMITIVE_TOPOLOGY).
const (
	PointList     = 1
	LineList      = 2
	LineStrip     = 3
	TriangleList  = 4
	TriangleStrip = 5
	// Patch3 is D3D_PRIMITIVE_TOPOLOGY_3_CONTROL_POINT_PATCHLIST.
	Patch3 = 35
)

// Tokens returns the tables common to every Direct3D version. Cull mode,
// winding, filters and index formats differ per version and are left to
// the caller.
func Tokens() core.Tokens {
	return core.Tokens{
		Compare: [9]uint32{CmpAlways, CmpNever, CmpLess, CmpEqual, CmpLessEqual, CmpGreater, CmpNotEqual, CmpGreaterEqual, CmpAlways},
		BlendFactor: [14]uint32{
			BlendZero, BlendZero, BlendOne, BlendSrcColor, BlendInvSrcColor, BlendSrcAlpha, BlendInvSrcAlpha,
			BlendDestColor, BlendInvDestColor, BlendDestAlpha, BlendInvDestAlpha, BlendSrcAlphaSat,
			BlendBlendFactor, BlendInvBlendFactor,
		},
		BlendOp: [6]uint32{BlendOpAdd, BlendOpAdd, BlendOpSubtract, BlendOpRevSubtract, BlendOpMin, BlendOpMax},
		StencilOp: [9]uint32{
			StencilKeep, StencilKeep, StencilZero, StencilReplace, StencilInvert,
			StencilIncrSat, StencilDecrSat, StencilIncr, StencilDecr,
		},
		FillMode:    [2]uint32{FillSolid, FillWireframe},
		AddressMode: [5]uint32{AddressWrap, AddressMirror, AddressClamp, AddressBorder, AddressMirrorOnce},
		Topology:    [6]uint32{PointList, LineList, LineStrip, TriangleList, TriangleStrip, Patch3},
	}
}

// D3D11/12 cull modes, D3D12_PRIMITIVE_TOPOLOGY_TYPE values and the DXGI
// index formats.
const (
	CullNone  = 1
	CullFront = 2
	CullBack  = 3

	TopologyTypePoint    = 1
	TopologyTypeLine     = 2
	TopologyTypeTriangle = 3
	TopologyTypePatch    = 4

	FormatR16Uint = 57
	FormatR32Uint = 42
)

// ModernTokens returns the complete tables of Direct3D 11 and 12. Front
// face tokens are FrontCounterClockwise values and filters are
// D3D11_FILTER_TYPE values.
func ModernTokens() core.Tokens {
	t := Tokens()
	t.CullMode = [3]uint32{CullNone, CullFront, CullBack}
	t.FrontFace = [2]uint32{1, 0}
	t.Filter = [3]uint32{0, 0, 1}
	t.TopologyType = [4]uint32{TopologyTypePoint, TopologyTypeLine, TopologyTypeTriangle, TopologyTypePatch}
	t.IndexFormat = [2]uint32{FormatR16Uint, FormatR32Uint}
	return t
}

// D3D11_FILTER bits.
const (
	filterMipLinear   = 0x01
	filterMagLinear   = 0x04
	filterMinLinear   = 0x10
	FilterAnisotropic = 0x55
	filterComparison  = 0x80
)

// Filter composes a D3D11_FILTER value.
func Filter(d rhi.SamplerDescriptor) uint32 {
	var f uint32
	if d.Anisotropic() {
		f = FilterAnisotropic
	} else {
		if d.MinFilter == gputypes.FilterModeLinear {
			f |= filterMinLinear
		}
		if d.MagFilter == gputypes.FilterModeLinear {
			f |= filterMagLinear
		}
		if d.MipFilter == gputypes.FilterModeLinear {
			f |= filterMipLinear
		}
	}
	if d.IsComparison() {
		f |= filterComparison
	}
	return f
}

// Translate returns a translator to HLSL for the given shader model.
func Translate(model hlsl.ShaderModel) core.TranslateFunc {
	return func(m *ir.Module, _ rhi.ShaderStage, entryPoint string) ([]byte, error) {
		opts := hlsl.DefaultOptions()
		opts.ShaderModel = model
		opts.EntryPoint = entryPoint
		src, _, err := hlsl.Compile(m, opts)
		if err != nil {
			return nil, err
		}
		return []byte(src), nil
	}
}
