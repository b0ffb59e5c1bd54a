// Package direct3d9 provides the Direct3D 9 backend.
//
//	import _ "github.com/gogpu/rhi/backend/direct3d9"
//
// States are applied as SetRenderState and SetSamplerState calls. Direct3D
// 9 culls by winding rather than by face, so the cull token is derived
// from the cull mode and the front face together. There are no uniform
// buffers, no debug labels and no geometry or tessellation stages.
// Shader stage text is HLSL Shader Model 5.0.
package direct3d9

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/hlsl"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/internal/core"
	"github.com/gogpu/rhi/backend/internal/d3dstate"
)

func init() {
	rhi.Register(rhi.BackendDirect3D9, func(opts ...rhi.Option) (rhi.Renderer, error) {
		return New(opts...)
	})
}

// New creates a Direct3D 9 renderer.
func New(opts ...rhi.Option) (rhi.Renderer, error) {
	return core.New(profile(), opts...)
}

// D3DCULL values.
const (
	cullNone = 1
	cullCW   = 2
	cullCCW  = 3
)

// D3DTEXTUREFILTERTYPE values.
const (
	texfNone        = 0
	texfPoint       = 1
	texfLinear      = 2
	texfAnisotropic = 3
)

// D3DFMT_INDEX16 and D3DFMT_INDEX32.
const (
	fmtIndex16 = 101
	fmtIndex32 = 102
)

// D3DRENDERSTATETYPE values.
const (
	rsZEnable                  = 7
	rsFillMode                 = 8
	rsZWriteEnable             = 14
	rsSrcBlend                 = 19
	rsDestBlend                = 20
	rsCullMode                 = 22
	rsZFunc                    = 23
	rsAlphaBlendEnable         = 27
	rsStencilEnable            = 52
	rsStencilFail              = 53
	rsStencilZFail             = 54
	rsStencilPass              = 55
	rsStencilFunc              = 56
	rsStencilMask              = 58
	rsStencilWriteMask         = 59
	rsMultisampleAntialias     = 161
	rsColorWriteEnable         = 168
	rsBlendOp                  = 171
	rsScissorTestEnable        = 174
	rsSlopeScaleDepthBias      = 175
	rsAntialiasedLineEnable    = 176
	rsTwoSidedStencilMode      = 185
	rsCCWStencilFail           = 186
	rsCCWStencilZFail          = 187
	rsCCWStencilPass           = 188
	rsCCWStencilFunc           = 189
	rsColorWriteEnable1        = 190
	rsDepthBias                = 195
	rsSeparateAlphaBlendEnable = 206
	rsSrcBlendAlpha            = 207
	rsDestBlendAlpha           = 208
	rsBlendOpAlpha             = 209
)

// D3DSAMPLERSTATETYPE values.
const (
	sampAddressU      = 1
	sampAddressV      = 2
	sampAddressW      = 3
	sampBorderColor   = 4
	sampMagFilter     = 5
	sampMinFilter     = 6
	sampMipFilter     = 7
	sampMipMapLODBias = 8
	sampMaxAnisotropy = 10
)

func profile() *core.Profile {
	tokens := d3dstate.Tokens()
	tokens.CullMode = [3]uint32{cullNone, cullCCW, cullCW}
	// Front face tokens name the D3DCULL value that culls that winding.
	tokens.FrontFace = [2]uint32{cullCCW, cullCW}
	tokens.Filter = [3]uint32{texfNone, texfPoint, texfLinear}
	// No tessellator.
	tokens.Topology[rhi.PrimitiveTopologyPatchList] = 0
	tokens.TopologyType = [4]uint32{d3dstate.PointList, d3dstate.LineList, d3dstate.TriangleList, 0}
	tokens.IndexFormat = [2]uint32{fmtIndex16, fmtIndex32}

	return &core.Profile{
		Name: rhi.BackendDirect3D9,
		// Direct3D 9 has no hal device of its own; the profile runs on
		// whichever modern device is present.
		Variants:     []gputypes.Backend{gputypes.BackendDX12, gputypes.BackendVulkan, gputypes.BackendGL},
		Language:     "HLSL",
		ShaderFormat: rhi.ShaderFormatHLSL,
		Translate:    d3dstate.Translate(hlsl.ShaderModel5_0),
		Caps: rhi.Capabilities{
			MaxRenderTargets:      4,
			MaxTextureDimension:   4096,
			MaxViewports:          1,
			Wireframe:             true,
			BorderAddressing:      true,
			InstancedArrays:       true,
			BaseVertex:            true,
			PreferredShaderFormat: rhi.ShaderFormatHLSL,
			UpperLeftOrigin:       true,
			ZeroToOneClipZ:        true,
		},
		Tokens: tokens,
		Calls: core.Calls{
			Draw:        "DrawPrimitive",
			DrawIndexed: "DrawIndexedPrimitive",
			Viewport:    "SetViewport",
			Scissor:     "SetScissorRect",
			Clear:       "Clear",
			Present:     "Present",
		},
		CullToken:        cullToken,
		BindRasterizer:   bindRasterizer,
		BindBlend:        bindBlend,
		BindDepthStencil: bindDepthStencil,
		BindSampler:      bindSampler,
	}
}

// cullToken returns the D3DCULL value for a face cull mode. Culling back
// faces culls the winding opposite to the front face.
func cullToken(d rhi.RasterizerDescriptor, t *core.Tokens) uint32 {
	switch d.CullMode {
	case gputypes.CullModeFront:
		return t.Winding(d.FrontFace)
	case gputypes.CullModeBack:
		if d.FrontFace == gputypes.FrontFaceCW {
			return cullCCW
		}
		return cullCW
	default:
		return cullNone
	}
}

func renderState(t rhi.Tracer, state, value uint64) {
	t.Call("SetRenderState", state, value)
}

func bindRasterizer(t rhi.Tracer, n *core.NativeRasterizer) {
	renderState(t, rsFillMode, uint64(n.FillMode))
	renderState(t, rsCullMode, uint64(n.CullMode))
	renderState(t, rsDepthBias, core.F32(float32(n.DepthBias)))
	renderState(t, rsSlopeScaleDepthBias, core.F32(n.SlopeScaledDepthBias))
	renderState(t, rsScissorTestEnable, core.B(n.Scissor))
	renderState(t, rsMultisampleAntialias, core.B(n.Multisample))
	renderState(t, rsAntialiasedLineEnable, core.B(n.AntialiasedLine))
}

func bindBlend(t rhi.Tracer, n *core.NativeBlend) {
	rt := n.Targets[0]
	renderState(t, rsAlphaBlendEnable, core.B(rt.Enable))
	renderState(t, rsSrcBlend, uint64(rt.Src))
	renderState(t, rsDestBlend, uint64(rt.Dst))
	renderState(t, rsBlendOp, uint64(rt.Op))
	separate := rt.SrcAlpha != rt.Src || rt.DstAlpha != rt.Dst || rt.OpAlpha != rt.Op
	renderState(t, rsSeparateAlphaBlendEnable, core.B(separate))
	if separate {
		renderState(t, rsSrcBlendAlpha, uint64(rt.SrcAlpha))
		renderState(t, rsDestBlendAlpha, uint64(rt.DstAlpha))
		renderState(t, rsBlendOpAlpha, uint64(rt.OpAlpha))
	}
	renderState(t, rsColorWriteEnable, uint64(rt.WriteMask))
	// Render targets 1 to 3 only have their own write masks.
	for i := 1; i < 4; i++ {
		renderState(t, uint64(rsColorWriteEnable1+i-1), uint64(n.Targets[i].WriteMask))
	}
}

func bindDepthStencil(t rhi.Tracer, n *core.NativeDepthStencil) {
	renderState(t, rsZEnable, core.B(n.DepthEnable))
	renderState(t, rsZWriteEnable, core.B(n.DepthWrite))
	renderState(t, rsZFunc, uint64(n.DepthFunc))
	renderState(t, rsStencilEnable, core.B(n.StencilEnable))
	if !n.StencilEnable {
		return
	}
	renderState(t, rsStencilFail, uint64(n.Front.Fail))
	renderState(t, rsStencilZFail, uint64(n.Front.DepthFail))
	renderState(t, rsStencilPass, uint64(n.Front.Pass))
	renderState(t, rsStencilFunc, uint64(n.Front.Func))
	renderState(t, rsStencilMask, uint64(n.ReadMask))
	renderState(t, rsStencilWriteMask, uint64(n.WriteMask))
	twoSided := n.Front != n.Back
	renderState(t, rsTwoSidedStencilMode, core.B(twoSided))
	if twoSided {
		renderState(t, rsCCWStencilFail, uint64(n.Back.Fail))
		renderState(t, rsCCWStencilZFail, uint64(n.Back.DepthFail))
		renderState(t, rsCCWStencilPass, uint64(n.Back.Pass))
		renderState(t, rsCCWStencilFunc, uint64(n.Back.Func))
	}
}

// d3dColor packs a color as D3DCOLOR (A8R8G8B8).
func d3dColor(c [4]float32) uint64 {
	ch := func(v float32) uint64 { return uint64(min(max(v, 0), 1)*255 + 0.5) }
	return ch(c[3])<<24 | ch(c[0])<<16 | ch(c[1])<<8 | ch(c[2])
}

func bindSampler(t rhi.Tracer, unit uint32, n *core.NativeSampler) {
	s := func(state, value uint64) { t.Call("SetSamplerState", uint64(unit), state, value) }
	minf, magf := uint64(n.Min), uint64(n.Mag)
	if n.MaxAnisotropy > 1 {
		minf, magf = texfAnisotropic, texfAnisotropic
	}
	s(sampAddressU, uint64(n.AddressU))
	s(sampAddressV, uint64(n.AddressV))
	s(sampAddressW, uint64(n.AddressW))
	s(sampBorderColor, d3dColor(n.Border))
	s(sampMagFilter, magf)
	s(sampMinFilter, minf)
	s(sampMipFilter, uint64(n.Mip))
	s(sampMipMapLODBias, core.F32(n.LODBias))
	s(sampMaxAnisotropy, uint64(n.MaxAnisotropy))
}
