package core

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// NativeRasterizer is a rasterizer descriptor in backend tokens.
type NativeRasterizer struct {
	FillMode             uint32
	CullMode             uint32
	FrontFace            uint32
	CullEnable           bool
	DepthBias            int32
	DepthBiasClamp       float32
	SlopeScaledDepthBias float32
	DepthClip            bool
	Multisample          bool
	AntialiasedLine      bool
	Scissor              bool
}

// NativeTargetBlend is the blend state of one render target.
type NativeTargetBlend struct {
	Enable    bool
	Src       uint32
	Dst       uint32
	Op        uint32
	SrcAlpha  uint32
	DstAlpha  uint32
	OpAlpha   uint32
	WriteMask uint32
}

// NativeBlend is a blend descriptor in backend tokens.
type NativeBlend struct {
	AlphaToCoverage bool
	Independent     bool
	Targets         [rhi.MaxRenderTargets]NativeTargetBlend
}

// NativeStencilFace is one face of the stencil test.
type NativeStencilFace struct {
	Fail      uint32
	DepthFail uint32
	Pass      uint32
	Func      uint32
}

// NativeDepthStencil is a depth-stencil descriptor in backend tokens.
type NativeDepthStencil struct {
	DepthEnable   bool
	DepthWrite    bool
	DepthFunc     uint32
	StencilEnable bool
	ReadMask      uint32
	WriteMask     uint32
	Front         NativeStencilFace
	Back          NativeStencilFace
}

// NativeSampler is a sampler descriptor in backend tokens. Filter holds
// the composite filter when the profile builds one; otherwise Min, Mag
// and Mip hold the separate filters.
type NativeSampler struct {
	Filter        uint32
	Min           uint32
	Mag           uint32
	Mip           uint32
	AddressU      uint32
	AddressV      uint32
	AddressW      uint32
	MaxAnisotropy uint32
	LODBias       float32
	MinLOD        float32
	MaxLOD        float32
	CompareEnable bool
	Compare       uint32
	Border        [4]float32
}

// F32 packs a float argument for a trace call.
func F32(v float32) uint64 { return uint64(math.Float32bits(v)) }

// B packs a bool argument for a trace call.
func B(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func (r *Renderer) translateRasterizer(d rhi.RasterizerDescriptor) NativeRasterizer {
	t := &r.profile.Tokens
	fill := d.FillMode
	if fill == rhi.FillModeWireframe && !r.profile.Caps.Wireframe {
		r.warnOnce("wireframe", "wireframe fill is not supported, using solid")
		fill = rhi.FillModeSolid
	}
	n := NativeRasterizer{
		FillMode:             t.Fill(fill),
		CullMode:             t.Cull(d.CullMode),
		FrontFace:            t.Winding(d.FrontFace),
		CullEnable:           d.CullMode != gputypes.CullModeNone,
		DepthBias:            d.DepthBias,
		DepthBiasClamp:       d.DepthBiasClamp,
		SlopeScaledDepthBias: d.SlopeScaledDepthBias,
		DepthClip:            d.DepthClipEnable,
		Multisample:          d.MultisampleEnable,
		AntialiasedLine:      d.AntialiasedLineEnable,
		Scissor:              d.ScissorEnable,
	}
	if r.profile.CullToken != nil {
		n.CullMode = r.profile.CullToken(d, t)
	}
	return n
}

func (r *Renderer) translateBlend(d rhi.BlendDescriptor) NativeBlend {
	t := &r.profile.Tokens
	n := NativeBlend{
		AlphaToCoverage: d.AlphaToCoverageEnable,
		Independent:     d.IndependentBlendEnable,
	}
	for i := range n.Targets {
		rt := d.Target(i)
		n.Targets[i] = NativeTargetBlend{
			Enable:    rt.BlendEnable,
			Src:       t.Blend(rt.SrcBlend),
			Dst:       t.Blend(rt.DstBlend),
			Op:        t.BlendOperation(rt.BlendOp),
			SrcAlpha:  t.Blend(rt.SrcBlendAlpha),
			DstAlpha:  t.Blend(rt.DstBlendAlpha),
			OpAlpha:   t.BlendOperation(rt.BlendOpAlpha),
			WriteMask: uint32(rt.WriteMask),
		}
	}
	return n
}

func (r *Renderer) translateDepthStencil(d rhi.DepthStencilDescriptor) NativeDepthStencil {
	t := &r.profile.Tokens
	face := func(f rhi.StencilFaceDescriptor) NativeStencilFace {
		return NativeStencilFace{
			Fail:      t.Stencil(f.FailOp),
			DepthFail: t.Stencil(f.DepthFailOp),
			Pass:      t.Stencil(f.PassOp),
			Func:      t.CompareFunc(f.Func),
		}
	}
	return NativeDepthStencil{
		DepthEnable:   d.DepthEnable,
		DepthWrite:    d.DepthWriteEnable,
		DepthFunc:     t.CompareFunc(d.DepthFunc),
		StencilEnable: d.StencilEnable,
		ReadMask:      uint32(d.StencilReadMask),
		WriteMask:     uint32(d.StencilWriteMask),
		Front:         face(d.FrontFace),
		Back:          face(d.BackFace),
	}
}

func (r *Renderer) translateSampler(d rhi.SamplerDescriptor) NativeSampler {
	t := &r.profile.Tokens
	address := func(m rhi.AddressMode) uint32 {
		if m == rhi.AddressModeBorder && !r.profile.Caps.BorderAddressing {
			r.warnOnce("border", "border addressing is not supported, using clamp")
			m = rhi.AddressModeClamp
		}
		return t.Address(m)
	}
	n := NativeSampler{
		Min:           t.FilterMode(d.MinFilter),
		Mag:           t.FilterMode(d.MagFilter),
		Mip:           t.FilterMode(d.MipFilter),
		AddressU:      address(d.AddressU),
		AddressV:      address(d.AddressV),
		AddressW:      address(d.AddressW),
		MaxAnisotropy: uint32(max(d.MaxAnisotropy, 1)),
		LODBias:       d.MipLODBias,
		MinLOD:        d.MinLOD,
		MaxLOD:        d.MaxLOD,
		CompareEnable: d.IsComparison(),
		Compare:       t.CompareFunc(d.Compare),
		Border:        d.BorderColor,
	}
	if r.profile.SamplerFilter != nil {
		n.Filter = r.profile.SamplerFilter(d)
	}
	return n
}

// rasterizerState, blendState and depthStencilState are owned by the
// pipeline state that created them.
type rasterizerState struct {
	resource
	desc   rhi.RasterizerDescriptor
	native NativeRasterizer
}

// Descriptor implements rhi.RasterizerState.
func (s *rasterizerState) Descriptor() rhi.RasterizerDescriptor { return s.desc }

// Native returns the translated token block.
func (s *rasterizerState) Native() NativeRasterizer { return s.native }

func (s *rasterizerState) bind() {
	if fn := s.r.profile.BindRasterizer; fn != nil {
		fn(s.r.tracer, &s.native)
	}
}

type blendState struct {
	resource
	desc   rhi.BlendDescriptor
	native NativeBlend
}

// Descriptor implements rhi.BlendState.
func (s *blendState) Descriptor() rhi.BlendDescriptor { return s.desc }

// Native returns the translated token block.
func (s *blendState) Native() NativeBlend { return s.native }

func (s *blendState) bind() {
	if fn := s.r.profile.BindBlend; fn != nil {
		fn(s.r.tracer, &s.native)
	}
}

type depthStencilState struct {
	resource
	desc   rhi.DepthStencilDescriptor
	native NativeDepthStencil
}

// Descriptor implements rhi.DepthStencilState.
func (s *depthStencilState) Descriptor() rhi.DepthStencilDescriptor { return s.desc }

// Native returns the translated token block.
func (s *depthStencilState) Native() NativeDepthStencil { return s.native }

func (s *depthStencilState) bind() {
	if fn := s.r.profile.BindDepthStencil; fn != nil {
		fn(s.r.tracer, &s.native)
	}
}

func (r *Renderer) newRasterizerState(d rhi.RasterizerDescriptor) *rasterizerState {
	s := &rasterizerState{desc: d, native: r.translateRasterizer(d)}
	s.init(r, rhi.ResourceTypeRasterizerState, nil)
	return s
}

func (r *Renderer) newBlendState(d rhi.BlendDescriptor) *blendState {
	s := &blendState{desc: d, native: r.translateBlend(d)}
	s.init(r, rhi.ResourceTypeBlendState, nil)
	return s
}

func (r *Renderer) newDepthStencilState(d rhi.DepthStencilDescriptor) *depthStencilState {
	s := &depthStencilState{desc: d, native: r.translateDepthStencil(d)}
	s.init(r, rhi.ResourceTypeDepthStencilState, nil)
	return s
}

type samplerState struct {
	resource
	desc    rhi.SamplerDescriptor
	native  NativeSampler
	sampler hal.Sampler
}

// Descriptor implements rhi.SamplerState.
func (s *samplerState) Descriptor() rhi.SamplerDescriptor { return s.desc }

// Native returns the translated token block.
func (s *samplerState) Native() NativeSampler { return s.native }

func (s *samplerState) bind(unit uint32) {
	if fn := s.r.profile.BindSampler; fn != nil {
		fn(s.r.tracer, unit, &s.native)
	}
}

var halAddressModes = [...]gputypes.AddressMode{
	rhi.AddressModeWrap:       gputypes.AddressModeRepeat,
	rhi.AddressModeMirror:     gputypes.AddressModeMirrorRepeat,
	rhi.AddressModeClamp:      gputypes.AddressModeClampToEdge,
	rhi.AddressModeBorder:     gputypes.AddressModeClampToEdge,
	rhi.AddressModeMirrorOnce: gputypes.AddressModeMirrorRepeat,
}

func clampLOD(v float32) float32 {
	return min(max(v, 0), 32)
}

// CreateSamplerState implements rhi.Renderer.
func (r *Renderer) CreateSamplerState(desc rhi.SamplerDescriptor) (rhi.SamplerState, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	s := &samplerState{desc: desc, native: r.translateSampler(desc)}

	hd := &hal.SamplerDescriptor{
		Label:        "SamplerState",
		AddressModeU: halAddressModes[desc.AddressU],
		AddressModeV: halAddressModes[desc.AddressV],
		AddressModeW: halAddressModes[desc.AddressW],
		MagFilter:    desc.MagFilter,
		MinFilter:    desc.MinFilter,
		MipmapFilter: desc.MipFilter,
		LodMinClamp:  clampLOD(desc.MinLOD),
		LodMaxClamp:  clampLOD(desc.MaxLOD),
		Anisotropy:   max(desc.MaxAnisotropy, 1),
	}
	if desc.IsComparison() {
		hd.Compare = desc.Compare
	}
	// Anisotropic filtering requires linear filters on every axis.
	if desc.MinFilter != gputypes.FilterModeLinear || desc.MagFilter != gputypes.FilterModeLinear ||
		desc.MipFilter != gputypes.FilterModeLinear {
		hd.Anisotropy = 1
	}
	sampler, err := create(r.dev, func(d hal.Device) (hal.Sampler, error) { return d.CreateSampler(hd) })
	if err != nil {
		return nil, fmt.Errorf("rhi: create sampler: %w", err)
	}
	s.sampler = sampler
	s.init(r, rhi.ResourceTypeSamplerState, func() { r.dev.releaseSampler(&s.sampler) })
	return s, nil
}
