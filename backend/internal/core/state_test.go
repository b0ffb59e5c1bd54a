package core

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rhi"
)

func TestTranslateDepthStencil(t *testing.T) {
	env := newTestEnv(t, nil)
	d := rhi.DefaultDepthStencil()
	d.StencilEnable = true
	d.FrontFace.PassOp = gputypes.StencilOperationReplace
	d.BackFace.Func = gputypes.CompareFunctionNotEqual

	n := env.r.translateDepthStencil(d)
	if n.DepthFunc != 0x202 {
		t.Errorf("DepthFunc = %#x, want less token 0x202", n.DepthFunc)
	}
	if n.Front.Pass != 0x500+uint32(gputypes.StencilOperationReplace) {
		t.Errorf("Front.Pass = %#x", n.Front.Pass)
	}
	if n.Front.Fail != 0x500+uint32(gputypes.StencilOperationKeep) {
		t.Errorf("Front.Fail = %#x, want keep", n.Front.Fail)
	}
	if n.Back.Func != 0x206 {
		t.Errorf("Back.Func = %#x, want not-equal token 0x206", n.Back.Func)
	}
	if !n.StencilEnable || n.ReadMask != 0xff || n.WriteMask != 0xff {
		t.Errorf("stencil fields = %+v", n)
	}
}

func TestTranslateBlend(t *testing.T) {
	env := newTestEnv(t, nil)
	d := rhi.DefaultBlend()
	d.RenderTargets[0].BlendEnable = true
	d.RenderTargets[0].SrcBlend = gputypes.BlendFactorSrcAlpha
	d.RenderTargets[0].DstBlend = gputypes.BlendFactorOneMinusSrcAlpha
	d.RenderTargets[1].SrcBlend = gputypes.BlendFactorZero

	n := env.r.translateBlend(d)
	if n.Targets[0].Src != 0x305 || n.Targets[0].Dst != 0x306 {
		t.Errorf("target 0 factors = %#x/%#x", n.Targets[0].Src, n.Targets[0].Dst)
	}
	// Without independent blending every target repeats target 0.
	if n.Targets[1] != n.Targets[0] {
		t.Errorf("target 1 = %+v, want copy of target 0", n.Targets[1])
	}

	d.IndependentBlendEnable = true
	n = env.r.translateBlend(d)
	if n.Targets[1].Enable || n.Targets[1].Src != 0x301 {
		t.Errorf("independent target 1 = %+v", n.Targets[1])
	}
}

func TestTranslateRasterizerFallbacks(t *testing.T) {
	env := newTestEnv(t, func(p *Profile) { p.Caps.Wireframe = false })
	d := rhi.DefaultRasterizer()
	d.FillMode = rhi.FillModeWireframe

	n := env.r.translateRasterizer(d)
	if n.FillMode != env.r.profile.Tokens.Fill(rhi.FillModeSolid) {
		t.Errorf("FillMode = %#x, want solid fallback", n.FillMode)
	}
	if n.CullMode != 0x405 || !n.CullEnable {
		t.Errorf("cull = %#x enabled %v, want back face", n.CullMode, n.CullEnable)
	}
	env.r.translateRasterizer(d)
	if got := len(env.log.Lines()); got != 1 {
		t.Errorf("log lines = %d, want one wireframe warning", got)
	}
}

func TestCullTokenOverride(t *testing.T) {
	calls := 0
	env := newTestEnv(t, func(p *Profile) {
		p.CullToken = func(d rhi.RasterizerDescriptor, _ *Tokens) uint32 {
			calls++
			if d.FrontFace == gputypes.FrontFaceCW {
				return 2
			}
			return 3
		}
	})
	desc := rhi.DefaultPipelineState()
	desc.Program = env.program(t, triangleAttributes())
	ps, err := env.r.CreatePipelineState(desc)
	if err != nil {
		t.Fatal(err)
	}
	rs := ps.RasterizerState().(*rasterizerState)
	if rs.Native().CullMode != 2 {
		t.Errorf("CullMode = %d, want override", rs.Native().CullMode)
	}
	// Binding replays the translated block without translating again.
	if err := env.r.BeginScene(); err != nil {
		t.Fatal(err)
	}
	env.r.SetPipelineState(ps)
	env.r.SetPipelineState(ps)
	env.r.EndScene()
	if calls != 1 {
		t.Errorf("CullToken called %d times, want 1", calls)
	}
}

func TestSamplerState(t *testing.T) {
	env := newTestEnv(t, func(p *Profile) {
		p.Caps.BorderAddressing = false
		p.SamplerFilter = func(d rhi.SamplerDescriptor) uint32 {
			if d.Anisotropic() {
				return 0x55
			}
			return 0x15
		}
	})
	d := rhi.DefaultSampler()
	d.AddressU = rhi.AddressModeBorder
	d.Compare = gputypes.CompareFunctionLessEqual

	s, err := env.r.CreateSamplerState(d)
	if err != nil {
		t.Fatalf("CreateSamplerState() error = %v", err)
	}
	n := s.(*samplerState).Native()
	if n.AddressU != env.r.profile.Tokens.Address(rhi.AddressModeClamp) {
		t.Errorf("AddressU = %#x, want clamp fallback", n.AddressU)
	}
	if n.Filter != 0x55 {
		t.Errorf("Filter = %#x, want composite anisotropic filter", n.Filter)
	}
	if !n.CompareEnable || n.Compare != 0x204 {
		t.Errorf("compare = %v %#x", n.CompareEnable, n.Compare)
	}
	if n.MaxAnisotropy != 16 {
		t.Errorf("MaxAnisotropy = %d", n.MaxAnisotropy)
	}
	if !env.log.Contains("border addressing") {
		t.Errorf("no border fallback warning in %q", env.log.Lines())
	}
	if s.Descriptor() != d {
		t.Error("Descriptor() does not round-trip")
	}
}

func TestSamplerStateRejectsBadDescriptor(t *testing.T) {
	env := newTestEnv(t, nil)
	d := rhi.DefaultSampler()
	d.MinFilter = gputypes.FilterModeUndefined
	if _, err := env.r.CreateSamplerState(d); err == nil {
		t.Fatal("undefined filter accepted")
	}
	if live(env.r, rhi.ResourceTypeSamplerState) != 0 {
		t.Fatal("rejected sampler left a live object")
	}
}
