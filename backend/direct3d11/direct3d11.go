// Package direct3d11 provides the Direct3D 11 backend.
//
//	import _ "github.com/gogpu/rhi/backend/direct3d11"
//
// State objects are bound with RSSetState, OMSetBlendState,
// OMSetDepthStencilState and PSSetSamplers, and the topology is set on the
// input assembler at draw time. Samplers carry one composite D3D11_FILTER.
// Shaders are translated to HLSL Shader Model 5.0.
package direct3d11

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/hlsl"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/internal/core"
	"github.com/gogpu/rhi/backend/internal/d3dstate"
)

func init() {
	rhi.Register(rhi.BackendDirect3D11, func(opts ...rhi.Option) (rhi.Renderer, error) {
		return New(opts...)
	})
}

// New creates a Direct3D 11 renderer.
func New(opts ...rhi.Option) (rhi.Renderer, error) {
	return core.New(profile(), opts...)
}

func profile() *core.Profile {
	return &core.Profile{
		Name:         rhi.BackendDirect3D11,
		Variants:     []gputypes.Backend{gputypes.BackendDX12, gputypes.BackendVulkan, gputypes.BackendGL},
		Language:     "HLSL",
		ShaderFormat: rhi.ShaderFormatHLSL,
		Translate:    d3dstate.Translate(hlsl.ShaderModel5_0),
		Caps: rhi.Capabilities{
			MaxRenderTargets:          8,
			MaxTextureDimension:       16384,
			MaxViewports:              16,
			UniformBuffers:            true,
			GeometryShaders:           true,
			TessellationShaders:       true,
			Wireframe:                 true,
			BorderAddressing:          true,
			DebugLabels:               true,
			InstancedArrays:           true,
			DrawIndirect:              true,
			BaseVertex:                true,
			NativeMultiThreading:      true,
			MaxIndirectDrawsPerSubmit: 1,
			PreferredShaderFormat:     rhi.ShaderFormatHLSL,
			UpperLeftOrigin:           true,
			ZeroToOneClipZ:            true,
		},
		Tokens: d3dstate.ModernTokens(),
		Calls: core.Calls{
			Draw:                "DrawInstanced",
			DrawIndexed:         "DrawIndexedInstanced",
			DrawIndirect:        "DrawInstancedIndirect",
			DrawIndexedIndirect: "DrawIndexedInstancedIndirect",
			Viewport:            "RSSetViewports",
			Scissor:             "RSSetScissorRects",
			Clear:               "ClearRenderTargetView",
			Marker:              "SetMarker",
			BeginEvent:          "BeginEvent",
			EndEvent:            "EndEvent",
			Label:               "SetPrivateData",
			Present:             "Present",
		},
		SamplerFilter:    d3dstate.Filter,
		BindRasterizer:   bindRasterizer,
		BindBlend:        bindBlend,
		BindDepthStencil: bindDepthStencil,
		BindSampler:      bindSampler,
		BindTopology: func(t rhi.Tracer, topology uint32) {
			t.Call("IASetPrimitiveTopology", uint64(topology))
		},
	}
}

func bindRasterizer(t rhi.Tracer, n *core.NativeRasterizer) {
	t.Call("RSSetState",
		uint64(n.FillMode), uint64(n.CullMode), uint64(n.FrontFace),
		uint64(uint32(n.DepthBias)), core.F32(n.DepthBiasClamp), core.F32(n.SlopeScaledDepthBias),
		core.B(n.DepthClip), core.B(n.Scissor), core.B(n.Multisample), core.B(n.AntialiasedLine))
}

func bindBlend(t rhi.Tracer, n *core.NativeBlend) {
	targets := 1
	if n.Independent {
		targets = len(n.Targets)
	}
	args := []uint64{core.B(n.AlphaToCoverage), core.B(n.Independent)}
	for _, rt := range n.Targets[:targets] {
		args = append(args, core.B(rt.Enable),
			uint64(rt.Src), uint64(rt.Dst), uint64(rt.Op),
			uint64(rt.SrcAlpha), uint64(rt.DstAlpha), uint64(rt.OpAlpha),
			uint64(rt.WriteMask))
	}
	t.Call("OMSetBlendState", args...)
}

// D3D11_DEPTH_WRITE_MASK values.
const (
	depthWriteMaskZero = 0
	depthWriteMaskAll  = 1
)

func bindDepthStencil(t rhi.Tracer, n *core.NativeDepthStencil) {
	writeMask := uint64(depthWriteMaskZero)
	if n.DepthWrite {
		writeMask = depthWriteMaskAll
	}
	t.Call("OMSetDepthStencilState",
		core.B(n.DepthEnable), writeMask, uint64(n.DepthFunc),
		core.B(n.StencilEnable), uint64(n.ReadMask), uint64(n.WriteMask),
		uint64(n.Front.Fail), uint64(n.Front.DepthFail), uint64(n.Front.Pass), uint64(n.Front.Func),
		uint64(n.Back.Fail), uint64(n.Back.DepthFail), uint64(n.Back.Pass), uint64(n.Back.Func))
}

func bindSampler(t rhi.Tracer, unit uint32, n *core.NativeSampler) {
	t.Call("PSSetSamplers", uint64(unit),
		uint64(n.Filter), uint64(n.AddressU), uint64(n.AddressV), uint64(n.AddressW),
		core.F32(n.LODBias), uint64(n.MaxAnisotropy), uint64(n.Compare),
		core.F32(n.MinLOD), core.F32(n.MaxLOD))
}
