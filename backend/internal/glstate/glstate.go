// Package glstate holds the OpenGL enum values and state call sequences shared
// by the OpenGL and OpenGL ES profiles.
package glstate

import (
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/wgpu/hal/gles/gl"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/internal/core"
)

// Enum values the hal GL bindings do not define.
//
//nolint:revive
const (
	CLAMP_TO_BORDER          = 0x812D
	MIRROR_CLAMP_TO_EDGE     = 0x8743
	PATCHES                  = 0x000E
	LINE                     = 0x1B01
	FILL                     = 0x1B02
	LINE_SMOOTH              = 0x0B20
	POLYGON_OFFSET_FILL      = 0x8037
	MULTISAMPLE              = 0x809D
	SAMPLE_ALPHA_TO_COVERAGE = 0x809E
	DEPTH_CLAMP              = 0x864F
	TEXTURE_BORDER_COLOR     = 0x1004
	NONE                     = 0
)

// Tokens returns the OpenGL token tables.
func Tokens() core.Tokens {
	return core.Tokens{
		Compare: [9]uint32{gl.ALWAYS, gl.NEVER, gl.LESS, gl.EQUAL, gl.LEQUAL, gl.GREATER, gl.NOTEQUAL, gl.GEQUAL, gl.ALWAYS},
		BlendFactor: [14]uint32{
			gl.ZERO, gl.ZERO, gl.ONE, gl.SRC_COLOR, gl.ONE_MINUS_SRC_COLOR, gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA,
			gl.DST_COLOR, gl.ONE_MINUS_DST_COLOR, gl.DST_ALPHA, gl.ONE_MINUS_DST_ALPHA, gl.SRC_ALPHA_SATURATE,
			gl.CONSTANT_COLOR, gl.ONE_MINUS_CONSTANT_COLOR,
		},
		BlendOp:      [6]uint32{gl.FUNC_ADD, gl.FUNC_ADD, gl.FUNC_SUBTRACT, gl.FUNC_REVERSE_SUBTRACT, gl.MIN, gl.MAX},
		StencilOp:    [9]uint32{gl.KEEP, gl.KEEP, gl.ZERO, gl.REPLACE, gl.INVERT, gl.INCR, gl.DECR, gl.INCR_WRAP, gl.DECR_WRAP},
		CullMode:     [3]uint32{NONE, gl.FRONT, gl.BACK},
		FrontFace:    [2]uint32{gl.CCW, gl.CW},
		Filter:       [3]uint32{gl.NEAREST, gl.NEAREST, gl.LINEAR},
		FillMode:     [2]uint32{FILL, LINE},
		AddressMode:  [5]uint32{gl.REPEAT, gl.MIRRORED_REPEAT, gl.CLAMP_TO_EDGE, CLAMP_TO_BORDER, MIRROR_CLAMP_TO_EDGE},
		Topology:     [6]uint32{gl.POINTS, gl.LINES, gl.LINE_STRIP, gl.TRIANGLES, gl.TRIANGLE_STRIP, PATCHES},
		TopologyType: [4]uint32{gl.POINTS, gl.LINES, gl.TRIANGLES, PATCHES},
		IndexFormat:  [2]uint32{gl.UNSIGNED_SHORT, gl.UNSIGNED_INT},
	}
}

// MinFilter folds the mip filter into the minification filter, as
// GL_TEXTURE_MIN_FILTER expects.
func MinFilter(n *core.NativeSampler) uint32 {
	linearMip := n.Mip == gl.LINEAR
	if n.Min == gl.LINEAR {
		if linearMip {
			return gl.LINEAR_MIPMAP_LINEAR
		}
		return gl.LINEAR_MIPMAP_NEAREST
	}
	if linearMip {
		return gl.NEAREST_MIPMAP_LINEAR
	}
	return gl.NEAREST_MIPMAP_NEAREST
}

func enable(t rhi.Tracer, c uint32, on bool) {
	if on {
		t.Call("glEnable", uint64(c))
	} else {
		t.Call("glDisable", uint64(c))
	}
}

// BindRasterizer returns the rasterizer call sequence. polygonMode is
// false on OpenGL ES, which has no glPolygonMode and no depth clamp.
func BindRasterizer(polygonMode bool) func(rhi.Tracer, *core.NativeRasterizer) {
	return func(t rhi.Tracer, n *core.NativeRasterizer) {
		if polygonMode {
			t.Call("glPolygonMode", gl.FRONT_AND_BACK, uint64(n.FillMode))
		}
		enable(t, gl.CULL_FACE, n.CullEnable)
		if n.CullEnable {
			t.Call("glCullFace", uint64(n.CullMode))
		}
		t.Call("glFrontFace", uint64(n.FrontFace))
		biased := n.DepthBias != 0 || n.SlopeScaledDepthBias != 0
		enable(t, POLYGON_OFFSET_FILL, biased)
		if biased {
			t.Call("glPolygonOffset", core.F32(n.SlopeScaledDepthBias), core.F32(float32(n.DepthBias)))
		}
		if polygonMode {
			enable(t, DEPTH_CLAMP, !n.DepthClip)
			enable(t, MULTISAMPLE, n.Multisample)
			enable(t, LINE_SMOOTH, n.AntialiasedLine)
		}
		enable(t, gl.SCISSOR_TEST, n.Scissor)
	}
}

// BindBlend returns the blend call sequence. indexed selects the
// per-draw-buffer entry points for independent blending.
func BindBlend(indexed bool) func(rhi.Tracer, *core.NativeBlend) {
	return func(t rhi.Tracer, n *core.NativeBlend) {
		enable(t, SAMPLE_ALPHA_TO_COVERAGE, n.AlphaToCoverage)
		if n.Independent && indexed {
			for i, rt := range n.Targets {
				if rt.Enable {
					t.Call("glEnablei", gl.BLEND, uint64(i))
				} else {
					t.Call("glDisablei", gl.BLEND, uint64(i))
				}
				t.Call("glBlendFuncSeparatei", uint64(i), uint64(rt.Src), uint64(rt.Dst), uint64(rt.SrcAlpha), uint64(rt.DstAlpha))
				t.Call("glBlendEquationSeparatei", uint64(i), uint64(rt.Op), uint64(rt.OpAlpha))
				t.Call("glColorMaski", uint64(i), mask(rt.WriteMask, 0), mask(rt.WriteMask, 1), mask(rt.WriteMask, 2), mask(rt.WriteMask, 3))
			}
			return
		}
		rt := n.Targets[0]
		enable(t, gl.BLEND, rt.Enable)
		t.Call("glBlendFuncSeparate", uint64(rt.Src), uint64(rt.Dst), uint64(rt.SrcAlpha), uint64(rt.DstAlpha))
		t.Call("glBlendEquationSeparate", uint64(rt.Op), uint64(rt.OpAlpha))
		t.Call("glColorMask", mask(rt.WriteMask, 0), mask(rt.WriteMask, 1), mask(rt.WriteMask, 2), mask(rt.WriteMask, 3))
	}
}

func mask(m uint32, bit uint) uint64 {
	return uint64(m >> bit & 1)
}

// BindDepthStencil emits the depth and stencil calls.
func BindDepthStencil(t rhi.Tracer, n *core.NativeDepthStencil) {
	enable(t, gl.DEPTH_TEST, n.DepthEnable)
	t.Call("glDepthMask", core.B(n.DepthWrite))
	t.Call("glDepthFunc", uint64(n.DepthFunc))
	enable(t, gl.STENCIL_TEST, n.StencilEnable)
	if !n.StencilEnable {
		return
	}
	for _, f := range []struct {
		face uint64
		s    core.NativeStencilFace
	}{{gl.FRONT, n.Front}, {gl.BACK, n.Back}} {
		t.Call("glStencilFuncSeparate", f.face, uint64(f.s.Func), 0, uint64(n.ReadMask))
		t.Call("glStencilOpSeparate", f.face, uint64(f.s.Fail), uint64(f.s.DepthFail), uint64(f.s.Pass))
	}
	t.Call("glStencilMask", uint64(n.WriteMask))
}

// BindSampler returns the sampler parameter calls. border is false on
// OpenGL ES 3.0, which has no border color.
func BindSampler(border bool) func(rhi.Tracer, uint32, *core.NativeSampler) {
	return func(t rhi.Tracer, unit uint32, n *core.NativeSampler) {
		t.Call("glBindSampler", uint64(unit))
		t.Call("glSamplerParameteri", gl.TEXTURE_MIN_FILTER, uint64(MinFilter(n)))
		t.Call("glSamplerParameteri", gl.TEXTURE_MAG_FILTER, uint64(n.Mag))
		t.Call("glSamplerParameteri", gl.TEXTURE_WRAP_S, uint64(n.AddressU))
		t.Call("glSamplerParameteri", gl.TEXTURE_WRAP_T, uint64(n.AddressV))
		t.Call("glSamplerParameteri", gl.TEXTURE_WRAP_R, uint64(n.AddressW))
		t.Call("glSamplerParameterf", gl.TEXTURE_MIN_LOD, core.F32(n.MinLOD))
		t.Call("glSamplerParameterf", gl.TEXTURE_MAX_LOD, core.F32(n.MaxLOD))
		if n.MaxAnisotropy > 1 {
			t.Call("glSamplerParameterf", gl.TEXTURE_MAX_ANISOTROPY, core.F32(float32(n.MaxAnisotropy)))
		}
		if n.CompareEnable {
			t.Call("glSamplerParameteri", gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
			t.Call("glSamplerParameteri", gl.TEXTURE_COMPARE_FUNC, uint64(n.Compare))
		} else {
			t.Call("glSamplerParameteri", gl.TEXTURE_COMPARE_MODE, NONE)
		}
		if border {
			t.Call("glSamplerParameterfv", TEXTURE_BORDER_COLOR,
				core.F32(n.Border[0]), core.F32(n.Border[1]), core.F32(n.Border[2]), core.F32(n.Border[3]))
		}
	}
}

// Translate returns a translator to GLSL of the given version.
func Translate(version glsl.Version) core.TranslateFunc {
	return func(m *ir.Module, _ rhi.ShaderStage, entryPoint string) ([]byte, error) {
		opts := glsl.DefaultOptions()
		opts.LangVersion = version
		opts.EntryPoint = entryPoint
		src, _, err := glsl.Compile(m, opts)
		if err != nil {
			return nil, err
		}
		return []byte(src), nil
	}
}
