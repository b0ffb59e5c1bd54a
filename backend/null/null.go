// Package null provides a renderer that accepts every call and draws
// nothing.
//
//	import _ "github.com/gogpu/rhi/backend/null"
//
// It runs on the hal noop device unless another device is injected, which
// makes it the backend for headless tools and tests. Tokens are the
// portable enum values themselves and no native calls are traced.
package null

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/internal/core"
)

func init() {
	rhi.Register(rhi.BackendNull, func(opts ...rhi.Option) (rhi.Renderer, error) {
		return New(opts...)
	})
}

// New creates a null renderer. Options given later override the noop
// device.
func New(opts ...rhi.Option) (rhi.Renderer, error) {
	opts = append([]rhi.Option{rhi.WithDevice(&noop.Device{}, &noop.Queue{})}, opts...)
	return core.New(profile(), opts...)
}

func identity(table []uint32) {
	for i := range table {
		table[i] = uint32(i)
	}
}

func tokens() core.Tokens {
	var t core.Tokens
	for _, table := range [][]uint32{
		t.Compare[:], t.BlendFactor[:], t.BlendOp[:], t.StencilOp[:],
		t.CullMode[:], t.FrontFace[:], t.Filter[:], t.FillMode[:],
		t.AddressMode[:], t.Topology[:], t.TopologyType[:], t.IndexFormat[:],
	} {
		identity(table)
	}
	return t
}

func profile() *core.Profile {
	return &core.Profile{
		Name:         rhi.BackendNull,
		Variants:     []gputypes.Backend{gputypes.BackendEmpty},
		Language:     "WGSL",
		ShaderFormat: rhi.ShaderFormatWGSL,
		Caps: rhi.Capabilities{
			MaxRenderTargets:          rhi.MaxRenderTargets,
			MaxTextureDimension:       16384,
			MaxViewports:              16,
			UniformBuffers:            true,
			GeometryShaders:           true,
			TessellationShaders:       true,
			Wireframe:                 true,
			BorderAddressing:          true,
			InstancedArrays:           true,
			DrawIndirect:              true,
			BaseVertex:                true,
			NativeMultiThreading:      true,
			MaxIndirectDrawsPerSubmit: 1 << 16,
			PreferredShaderFormat:     rhi.ShaderFormatWGSL,
		},
		Tokens: tokens(),
	}
}
