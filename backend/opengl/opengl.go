// Package opengl provides the OpenGL 3.3+ backend.
//
// Importing the package registers it under rhi.BackendOpenGL:
//
//	import _ "github.com/gogpu/rhi/backend/opengl"
//
// WGSL shaders are translated to GLSL 3.30. Rasterizer, blend,
// depth-stencil and sampler states are applied with the classic
// glEnable/glBlendFunc/glSamplerParameter call sequences at bind time.
// Without an injected device the renderer opens the hal GL backend, which
// is registered by importing github.com/gogpu/wgpu/hal/allbackends.
package opengl

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/glsl"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/internal/core"
	"github.com/gogpu/rhi/backend/internal/glstate"
)

func init() {
	rhi.Register(rhi.BackendOpenGL, func(opts ...rhi.Option) (rhi.Renderer, error) {
		return New(opts...)
	})
}

// New creates an OpenGL renderer.
func New(opts ...rhi.Option) (rhi.Renderer, error) {
	return core.New(profile(), opts...)
}

func profile() *core.Profile {
	return &core.Profile{
		Name:         rhi.BackendOpenGL,
		Variants:     []gputypes.Backend{gputypes.BackendGL},
		Language:     "GLSL",
		ShaderFormat: rhi.ShaderFormatGLSL,
		Translate:    glstate.Translate(glsl.Version330),
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
			MaxIndirectDrawsPerSubmit: 1,
			PreferredShaderFormat:     rhi.ShaderFormatGLSL,
		},
		Tokens: glstate.Tokens(),
		Calls: core.Calls{
			Draw:                "glDrawArraysInstancedBaseInstance",
			DrawIndexed:         "glDrawElementsInstancedBaseVertexBaseInstance",
			DrawIndirect:        "glDrawArraysIndirect",
			DrawIndexedIndirect: "glDrawElementsIndirect",
			Viewport:            "glViewportIndexedf",
			Scissor:             "glScissorIndexed",
			Clear:               "glClear",
			Marker:              "glDebugMessageInsert",
			BeginEvent:          "glPushDebugGroup",
			EndEvent:            "glPopDebugGroup",
			Label:               "glObjectLabel",
			Present:             "SwapBuffers",
		},
		BindRasterizer:   glstate.BindRasterizer(true),
		BindBlend:        glstate.BindBlend(true),
		BindDepthStencil: glstate.BindDepthStencil,
		BindSampler:      glstate.BindSampler(true),
	}
}
