package core

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

type pipelineState struct {
	resource
	rootSig    *rootSignature
	program    *program
	attrs      rhi.VertexAttributes
	topology   rhi.PrimitiveTopology
	rasterizer *rasterizerState
	depth      *depthStencilState
	blend      *blendState
	native     hal.RenderPipeline
}

// RootSignature implements rhi.PipelineState.
func (ps *pipelineState) RootSignature() rhi.RootSignature {
	if ps.rootSig == nil {
		return nil
	}
	return ps.rootSig
}

// Program implements rhi.PipelineState.
func (ps *pipelineState) Program() rhi.Program { return ps.program }

// VertexAttributes implements rhi.PipelineState.
func (ps *pipelineState) VertexAttributes() rhi.VertexAttributes { return ps.attrs }

// Topology implements rhi.PipelineState.
func (ps *pipelineState) Topology() rhi.PrimitiveTopology { return ps.topology }

// RasterizerState implements rhi.PipelineState.
func (ps *pipelineState) RasterizerState() rhi.RasterizerState { return ps.rasterizer }

// DepthStencilState implements rhi.PipelineState.
func (ps *pipelineState) DepthStencilState() rhi.DepthStencilState { return ps.depth }

// BlendState implements rhi.PipelineState.
func (ps *pipelineState) BlendState() rhi.BlendState { return ps.blend }

// bind applies the fixed-function state through the profile hooks.
func (ps *pipelineState) bind() {
	ps.rasterizer.bind()
	ps.depth.bind()
	ps.blend.bind()
	if fn := ps.r.profile.BindTopology; fn != nil {
		fn(ps.r.tracer, ps.r.profile.Tokens.Primitive(ps.topology))
	}
}

var halTopologies = [...]gputypes.PrimitiveTopology{
	rhi.PrimitiveTopologyPointList:     gputypes.PrimitiveTopologyPointList,
	rhi.PrimitiveTopologyLineList:      gputypes.PrimitiveTopologyLineList,
	rhi.PrimitiveTopologyLineStrip:     gputypes.PrimitiveTopologyLineStrip,
	rhi.PrimitiveTopologyTriangleList:  gputypes.PrimitiveTopologyTriangleList,
	rhi.PrimitiveTopologyTriangleStrip: gputypes.PrimitiveTopologyTriangleStrip,
	// Patches are expanded by the tessellator before rasterization.
	rhi.PrimitiveTopologyPatchList: gputypes.PrimitiveTopologyTriangleList,
}

// halStencilOp converts the gputypes numbering, which starts at Undefined,
// to the hal one, which starts at Keep.
func halStencilOp(op gputypes.StencilOperation) hal.StencilOperation {
	if op == gputypes.StencilOperationUndefined {
		return hal.StencilOperationKeep
	}
	return hal.StencilOperation(op - 1) // #nosec G115 -- validated range
}

func halStencilFace(f rhi.StencilFaceDescriptor) hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     f.Func,
		FailOp:      halStencilOp(f.FailOp),
		DepthFailOp: halStencilOp(f.DepthFailOp),
		PassOp:      halStencilOp(f.PassOp),
	}
}

func halDepthStencil(desc rhi.PipelineStateDescriptor) *hal.DepthStencilState {
	if desc.DepthStencilFormat == gputypes.TextureFormatUndefined {
		return nil
	}
	ds := desc.DepthStencil
	out := &hal.DepthStencilState{
		Format:              desc.DepthStencilFormat,
		DepthWriteEnabled:   ds.DepthEnable && ds.DepthWriteEnable,
		DepthCompare:        gputypes.CompareFunctionAlways,
		StencilFront:        halStencilFace(rhi.DefaultStencilFace()),
		StencilBack:         halStencilFace(rhi.DefaultStencilFace()),
		DepthBias:           desc.Rasterizer.DepthBias,
		DepthBiasSlopeScale: desc.Rasterizer.SlopeScaledDepthBias,
		DepthBiasClamp:      desc.Rasterizer.DepthBiasClamp,
	}
	if ds.DepthEnable {
		out.DepthCompare = ds.DepthFunc
	}
	if ds.StencilEnable {
		out.StencilFront = halStencilFace(ds.FrontFace)
		out.StencilBack = halStencilFace(ds.BackFace)
		out.StencilReadMask = uint32(ds.StencilReadMask)
		out.StencilWriteMask = uint32(ds.StencilWriteMask)
	}
	return out
}

func halTargets(desc rhi.PipelineStateDescriptor) []gputypes.ColorTargetState {
	targets := make([]gputypes.ColorTargetState, len(desc.ColorFormats))
	for i, f := range desc.ColorFormats {
		rt := desc.Blend.Target(i)
		targets[i] = gputypes.ColorTargetState{Format: f, WriteMask: rt.WriteMask}
		if rt.BlendEnable {
			targets[i].Blend = &gputypes.BlendState{
				Color: gputypes.BlendComponent{SrcFactor: rt.SrcBlend, DstFactor: rt.DstBlend, Operation: rt.BlendOp},
				Alpha: gputypes.BlendComponent{SrcFactor: rt.SrcBlendAlpha, DstFactor: rt.DstBlendAlpha, Operation: rt.BlendOpAlpha},
			}
		}
	}
	return targets
}

// CreatePipelineState implements rhi.Renderer. The program must be linked.
func (r *Renderer) CreatePipelineState(desc rhi.PipelineStateDescriptor) (rhi.PipelineState, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if desc.Program.Renderer() != rhi.Renderer(r) {
		rhi.CheckOwner(r, desc.Program, "CreatePipelineState")
		return nil, fmt.Errorf("%w: pipeline program", rhi.ErrWrongRenderer)
	}
	prog := r.asProgram(desc.Program, "CreatePipelineState")
	if prog == nil {
		return nil, fmt.Errorf("%w: foreign program implementation", rhi.ErrInvalidDescriptor)
	}
	if !prog.linked {
		return nil, fmt.Errorf("%w: program is not linked: %s", rhi.ErrNotReady, prog.log)
	}
	if desc.Topology == rhi.PrimitiveTopologyPatchList && !r.profile.Caps.TessellationShaders {
		return nil, fmt.Errorf("%w: patch topology on %s", rhi.ErrUnsupported, r.profile.Name)
	}

	var rs *rootSignature
	if desc.RootSignature != nil && r.owns(desc.RootSignature, "CreatePipelineState") {
		crs, ok := desc.RootSignature.(*rootSignature)
		if !ok {
			return nil, fmt.Errorf("%w: foreign root signature implementation", rhi.ErrInvalidDescriptor)
		}
		rs = crs
	}
	attrs := desc.VertexAttributes
	if attrs == nil {
		attrs = prog.attrs
	}

	ps := &pipelineState{
		rootSig:    rs,
		program:    prog,
		attrs:      attrs,
		topology:   desc.Topology,
		rasterizer: r.newRasterizerState(desc.Rasterizer),
		depth:      r.newDepthStencilState(desc.DepthStencil),
		blend:      r.newBlendState(desc.Blend),
	}
	ps.init(r, rhi.ResourceTypePipelineState, func() { r.dev.releasePipeline(&ps.native) })
	ps.hold(ps.rasterizer, ps.depth, ps.blend, prog)
	if rs != nil {
		ps.hold(rs)
	}
	if call := r.profile.Calls.Pipeline; call != "" {
		r.tracer.Call(call, uint64(r.profile.Tokens.PrimitiveType(desc.Topology.Type())), uint64(len(desc.ColorFormats)))
	}

	vs := prog.stages[rhi.ShaderStageVertex]
	if vs == nil || vs.native == nil {
		// Native-source programs are driven through the trace path only.
		return ps, nil
	}
	hd := &hal.RenderPipelineDescriptor{
		Label: ps.label(),
		Vertex: hal.VertexState{
			Module:     vs.native,
			EntryPoint: vs.entryPoint,
			Buffers:    attrs.BufferLayouts(),
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  halTopologies[desc.Topology],
			FrontFace: desc.Rasterizer.FrontFace,
			CullMode:  desc.Rasterizer.CullMode,
		},
		DepthStencil: halDepthStencil(desc),
		Multisample: gputypes.MultisampleState{
			Count:                  max(desc.SampleCount, 1),
			Mask:                   ^uint64(0),
			AlphaToCoverageEnabled: desc.Blend.AlphaToCoverageEnable,
		},
	}
	if rs != nil {
		hd.Layout = rs.layout
	}
	if fs := prog.stages[rhi.ShaderStageFragment]; fs != nil && fs.native != nil {
		hd.Fragment = &hal.FragmentState{
			Module:     fs.native,
			EntryPoint: fs.entryPoint,
			Targets:    halTargets(desc),
		}
	}
	native, err := create(r.dev, func(d hal.Device) (hal.RenderPipeline, error) {
		return d.CreateRenderPipeline(hd)
	})
	if err != nil {
		ps.discard()
		return nil, fmt.Errorf("rhi: create pipeline state: %w", err)
	}
	ps.native = native
	return ps, nil
}
