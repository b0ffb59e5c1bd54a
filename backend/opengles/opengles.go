// Package opengles provides the OpenGL ES 3.0 backend.
//
//	import _ "github.com/gogpu/rhi/backend/opengles"
//
// OpenGL ES 3.0 has no polygon mode, no border addressing, no base vertex
// draws and no indirect draws. Wireframe falls back to solid fill, border
// addressing to clamp, and indirect draws are replayed from the host copy
// of the indirect buffer.
package opengles

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/glsl"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/internal/core"
	"github.com/gogpu/rhi/backend/internal/glstate"
)

func init() {
	rhi.Register(rhi.BackendOpenGLES, func(opts ...rhi.Option) (rhi.Renderer, error) {
		return New(opts...)
	})
}

// New creates an OpenGL ES renderer.
func New(opts ...rhi.Option) (rhi.Renderer, error) {
	return core.New(profile(), opts...)
}

func profile() *core.Profile {
	tokens := glstate.Tokens()
	// GL_MIRROR_CLAMP_TO_EDGE is an extension on ES.
	tokens.AddressMode[rhi.AddressModeMirrorOnce] = tokens.AddressMode[rhi.AddressModeMirror]
	return &core.Profile{
		Name:         rhi.BackendOpenGLES,
		Variants:     []gputypes.Backend{gputypes.BackendGL},
		Language:     "GLSL ES",
		ShaderFormat: rhi.ShaderFormatESSL,
		Translate:    glstate.Translate(glsl.VersionES300),
		Caps: rhi.Capabilities{
			MaxRenderTargets:      4,
			MaxTextureDimension:   2048,
			MaxViewports:          1,
			UniformBuffers:        true,
			InstancedArrays:       true,
			PreferredShaderFormat: rhi.ShaderFormatESSL,
		},
		Tokens: tokens,
		Calls: core.Calls{
			Draw:        "glDrawArraysInstanced",
			DrawIndexed: "glDrawElementsInstanced",
			Viewport:    "glViewport",
			Scissor:     "glScissor",
			Clear:       "glClear",
			Present:     "eglSwapBuffers",
		},
		BindRasterizer:   glstate.BindRasterizer(false),
		BindBlend:        glstate.BindBlend(false),
		BindDepthStencil: glstate.BindDepthStencil,
		BindSampler:      glstate.BindSampler(false),
	}
}
