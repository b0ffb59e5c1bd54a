package core

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

func TestPipelineStateAccessors(t *testing.T) {
	env := newTestEnv(t, nil)
	desc := rhi.DefaultPipelineState()
	desc.Program = env.program(t, triangleAttributes())
	desc.Topology = rhi.PrimitiveTopologyLineStrip
	desc.Rasterizer.CullMode = gputypes.CullModeFront
	desc.DepthStencil.DepthFunc = gputypes.CompareFunctionGreater

	ps, err := env.r.CreatePipelineState(desc)
	if err != nil {
		t.Fatalf("CreatePipelineState() error = %v", err)
	}
	if ps.Program() != desc.Program || ps.RootSignature() != nil {
		t.Error("program or root signature not kept")
	}
	if ps.Topology() != rhi.PrimitiveTopologyLineStrip {
		t.Errorf("Topology() = %v", ps.Topology())
	}
	if !ps.VertexAttributes().Equal(triangleAttributes()) {
		t.Error("vertex attributes not taken from the program")
	}
	if ps.RasterizerState().Descriptor() != desc.Rasterizer {
		t.Error("rasterizer descriptor does not round-trip")
	}
	if ps.DepthStencilState().Descriptor() != desc.DepthStencil {
		t.Error("depth-stencil descriptor does not round-trip")
	}
	if ps.BlendState().Descriptor() != desc.Blend {
		t.Error("blend descriptor does not round-trip")
	}
	if ps.(*pipelineState).native == nil {
		t.Error("no hal pipeline for a WGSL program")
	}
	if got := env.tracer.names(); len(got) != 1 || got[0] != "Pipeline" {
		t.Errorf("trace = %v, want one Pipeline call", got)
	}
}

func TestPipelineStateLifetime(t *testing.T) {
	env := newTestEnv(t, nil)
	ps := env.pipeline(t)
	// Program, two shaders, pipeline and its three state objects.
	if got := env.r.Statistics().LiveTotal(); got != 7 {
		t.Fatalf("live objects = %d, want 7", got)
	}
	if ps.Program().RefCount() != 1 {
		t.Fatalf("program RefCount = %d, want 1 held by the pipeline", ps.Program().RefCount())
	}
	ps.AddReference()
	ps.ReleaseReference()
	if got := env.r.Statistics().LiveTotal(); got != 0 {
		t.Fatalf("live objects after release = %d, want 0", got)
	}
	if env.dev.destroyedCount("pipeline") != 1 {
		t.Fatal("hal pipeline not destroyed")
	}
}

func TestPipelineStateErrors(t *testing.T) {
	env := newTestEnv(t, func(p *Profile) { p.Caps.TessellationShaders = false })
	lang := env.r.ShaderLanguage()
	vs, _ := lang.CreateVertexShader(rhi.WGSL(triangleWGSL, "vs_main"))
	stray, _ := lang.CreateFragmentShader(rhi.WGSL(strayFragmentWGSL, ""))
	unlinked, _ := lang.CreateProgram(rhi.ProgramDescriptor{Vertex: vs, Fragment: stray})

	desc := rhi.DefaultPipelineState()
	if _, err := env.r.CreatePipelineState(desc); !errors.Is(err, rhi.ErrInvalidDescriptor) {
		t.Errorf("no program: error = %v", err)
	}
	desc.Program = unlinked
	if _, err := env.r.CreatePipelineState(desc); !errors.Is(err, rhi.ErrNotReady) {
		t.Errorf("unlinked program: error = %v, want ErrNotReady", err)
	}
	desc.Program = env.program(t, triangleAttributes())
	desc.Topology = rhi.PrimitiveTopologyPatchList
	if _, err := env.r.CreatePipelineState(desc); !errors.Is(err, rhi.ErrUnsupported) {
		t.Errorf("patch list: error = %v, want ErrUnsupported", err)
	}
	desc.Topology = rhi.PrimitiveTopologyTriangleList
	desc.Blend.RenderTargets[0].SrcBlend = gputypes.BlendFactorUndefined
	if _, err := env.r.CreatePipelineState(desc); !errors.Is(err, rhi.ErrInvalidDescriptor) {
		t.Errorf("bad blend: error = %v", err)
	}
	if live(env.r, rhi.ResourceTypePipelineState) != 0 {
		t.Fatal("failed pipelines left live objects")
	}
}

func TestPipelineStateForeignProgram(t *testing.T) {
	a := newTestEnv(t, nil)
	b := newTestEnv(t, nil)
	desc := rhi.DefaultPipelineState()
	desc.Program = b.program(t, triangleAttributes())
	if _, err := a.r.CreatePipelineState(desc); !errors.Is(err, rhi.ErrWrongRenderer) {
		t.Fatalf("error = %v, want ErrWrongRenderer", err)
	}
	if !a.log.Contains("belongs to another renderer") {
		t.Errorf("owner mismatch not logged: %q", a.log.Lines())
	}
}

func TestHalConversions(t *testing.T) {
	if got := halStencilOp(gputypes.StencilOperationKeep); got != hal.StencilOperationKeep {
		t.Errorf("Keep = %v", got)
	}
	if got := halStencilOp(gputypes.StencilOperationUndefined); got != hal.StencilOperationKeep {
		t.Errorf("Undefined = %v, want Keep", got)
	}
	if got := halStencilOp(gputypes.StencilOperationReplace); got != hal.StencilOperationReplace {
		t.Errorf("Replace = %v", got)
	}

	desc := rhi.DefaultPipelineState()
	desc.DepthStencil.DepthEnable = false
	ds := halDepthStencil(desc)
	if ds.DepthCompare != gputypes.CompareFunctionAlways || ds.DepthWriteEnabled {
		t.Errorf("disabled depth test = %+v", ds)
	}
	desc.DepthStencilFormat = gputypes.TextureFormatUndefined
	if halDepthStencil(desc) != nil {
		t.Error("depth state without depth format")
	}

	desc.Blend.RenderTargets[0].BlendEnable = true
	desc.ColorFormats = append(desc.ColorFormats, gputypes.TextureFormatRGBA16Float)
	targets := halTargets(desc)
	if len(targets) != 2 || targets[1].Blend == nil || targets[1].Format != gputypes.TextureFormatRGBA16Float {
		t.Errorf("targets = %+v", targets)
	}
}
