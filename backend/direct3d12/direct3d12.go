// Package direct3d12 provides the Direct3D 12 backend.
//
//	import _ "github.com/gogpu/rhi/backend/direct3d12"
//
// Rasterizer, blend and depth-stencil states are baked into the pipeline
// state object, so binding them emits nothing; only the primitive topology
// is set on the command list. Indirect draws go through ExecuteIndirect
// and shaders are translated to HLSL Shader Model 5.1.
package direct3d12

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/hlsl"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/internal/core"
	"github.com/gogpu/rhi/backend/internal/d3dstate"
)

func init() {
	rhi.Register(rhi.BackendDirect3D12, func(opts ...rhi.Option) (rhi.Renderer, error) {
		return New(opts...)
	})
}

// New creates a Direct3D 12 renderer.
func New(opts ...rhi.Option) (rhi.Renderer, error) {
	return core.New(profile(), opts...)
}

// maxExecuteIndirect bounds the argument count of one ExecuteIndirect.
const maxExecuteIndirect = 4096

func profile() *core.Profile {
	return &core.Profile{
		Name:         rhi.BackendDirect3D12,
		Variants:     []gputypes.Backend{gputypes.BackendDX12},
		Language:     "HLSL",
		ShaderFormat: rhi.ShaderFormatHLSL,
		Translate:    d3dstate.Translate(hlsl.ShaderModel5_1),
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
			MaxIndirectDrawsPerSubmit: maxExecuteIndirect,
			PreferredShaderFormat:     rhi.ShaderFormatHLSL,
			UpperLeftOrigin:           true,
			ZeroToOneClipZ:            true,
		},
		Tokens: d3dstate.ModernTokens(),
		Calls: core.Calls{
			Draw:                "DrawInstanced",
			DrawIndexed:         "DrawIndexedInstanced",
			DrawIndirect:        "ExecuteIndirect",
			DrawIndexedIndirect: "ExecuteIndirect",
			Viewport:            "RSSetViewports",
			Scissor:             "RSSetScissorRects",
			Clear:               "ClearRenderTargetView",
			Marker:              "SetMarker",
			BeginEvent:          "BeginEvent",
			EndEvent:            "EndEvent",
			Label:               "SetName",
			Present:             "Present",
			Pipeline:            "CreateGraphicsPipelineState",
		},
		SamplerFilter: d3dstate.Filter,
		BindTopology: func(t rhi.Tracer, topology uint32) {
			t.Call("IASetPrimitiveTopology", uint64(topology))
		},
	}
}
