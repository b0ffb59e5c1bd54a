// Package vulkan provides the Vulkan backend.
//
//	import _ "github.com/gogpu/rhi/backend/vulkan"
//
// Every fixed-function state is part of the graphics pipeline, so state
// binding emits no commands. Shaders are translated to SPIR-V 1.3 with
// naga and SPIR-V binaries are accepted as they are.
package vulkan

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/internal/core"
)

func init() {
	rhi.Register(rhi.BackendVulkan, func(opts ...rhi.Option) (rhi.Renderer, error) {
		return New(opts...)
	})
}

// New creates a Vulkan renderer.
func New(opts ...rhi.Option) (rhi.Renderer, error) {
	return core.New(profile(), opts...)
}

// Tokens returns the Vulkan enum values. Undefined entries fall back to the
// pipeline defaults.
func Tokens() core.Tokens {
	return core.Tokens{
		// VkCompareOp
		Compare: [9]uint32{7, 0, 1, 2, 3, 4, 5, 6, 7},
		// VkBlendFactor
		BlendFactor: [14]uint32{0, 0, 1, 2, 3, 6, 7, 4, 5, 8, 9, 14, 10, 11},
		// VkBlendOp
		BlendOp: [6]uint32{0, 0, 1, 2, 3, 4},
		// VkStencilOp
		StencilOp: [9]uint32{0, 0, 1, 2, 5, 3, 4, 6, 7},
		// VkCullModeFlags
		CullMode: [3]uint32{0, 1, 2},
		// VkFrontFace
		FrontFace: [2]uint32{0, 1},
		// VkFilter
		Filter: [3]uint32{0, 0, 1},
		// VkPolygonMode
		FillMode: [2]uint32{0, 1},
		// VkSamplerAddressMode
		AddressMode: [5]uint32{0, 1, 2, 3, 4},
		// VkPrimitiveTopology
		Topology: [6]uint32{0, 1, 2, 3, 4, 10},
		// First topology of each class.
		TopologyType: [4]uint32{0, 1, 3, 10},
		// VkIndexType
		IndexFormat: [2]uint32{0, 1},
	}
}

func translate(m *ir.Module, _ rhi.ShaderStage, _ string) ([]byte, error) {
	opts := spirv.DefaultOptions()
	opts.Version = spirv.Version1_3
	return spirv.NewBackend(opts).Compile(m)
}

func profile() *core.Profile {
	return &core.Profile{
		Name:         rhi.BackendVulkan,
		Variants:     []gputypes.Backend{gputypes.BackendVulkan},
		Language:     "SPIR-V",
		ShaderFormat: rhi.ShaderFormatSPIRV,
		Translate:    translate,
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
			MaxIndirectDrawsPerSubmit: 1 << 16,
			PreferredShaderFormat:     rhi.ShaderFormatSPIRV,
			UpperLeftOrigin:           true,
			ZeroToOneClipZ:            true,
		},
		Tokens: Tokens(),
		Calls: core.Calls{
			Draw:                "vkCmdDraw",
			DrawIndexed:         "vkCmdDrawIndexed",
			DrawIndirect:        "vkCmdDrawIndirect",
			DrawIndexedIndirect: "vkCmdDrawIndexedIndirect",
			Viewport:            "vkCmdSetViewport",
			Scissor:             "vkCmdSetScissor",
			Clear:               "vkCmdClearAttachments",
			Marker:              "vkCmdInsertDebugUtilsLabelEXT",
			BeginEvent:          "vkCmdBeginDebugUtilsLabelEXT",
			EndEvent:            "vkCmdEndDebugUtilsLabelEXT",
			Label:               "vkSetDebugUtilsObjectNameEXT",
			Present:             "vkQueuePresentKHR",
			Pipeline:            "vkCreateGraphicsPipelines",
		},
	}
}
