package core

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rhi"
)

const triangleWGSL = `
struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(@location(0) pos: vec2<f32>, @location(1) color: vec4<f32>) -> VertexOut {
    var out: VertexOut;
    out.position = vec4<f32>(pos, 0.0, 1.0);
    out.color = color;
    return out;
}

@fragment
fn fs_main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`

// strayFragmentWGSL reads a location no vertex stage above writes.
const strayFragmentWGSL = `
@fragment
fn fs_main(@location(3) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return vec4<f32>(uv, 0.0, 1.0);
}
`

// recordTracer keeps every traced call as "fn(a,b,...)".
type recordTracer struct {
	mu    sync.Mutex
	calls []string
}

func (t *recordTracer) Call(fn string, args ...uint64) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%#x", a)
	}
	t.mu.Lock()
	t.calls = append(t.calls, fn+"("+strings.Join(parts, ",")+")")
	t.mu.Unlock()
}

func (t *recordTracer) names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.calls))
	for i, c := range t.calls {
		out[i] = c[:strings.IndexByte(c, '(')]
	}
	return out
}

func (t *recordTracer) count(fn string) int {
	n := 0
	for _, name := range t.names() {
		if name == fn {
			n++
		}
	}
	return n
}

func (t *recordTracer) reset() {
	t.mu.Lock()
	t.calls = nil
	t.mu.Unlock()
}

// countingDevice counts hal objects destroyed through it.
type countingDevice struct {
	hal.Device

	mu        sync.Mutex
	destroyed map[string]int
	failView  bool
}

func newCountingDevice() *countingDevice {
	return &countingDevice{Device: &noop.Device{}, destroyed: make(map[string]int)}
}

func (d *countingDevice) count(kind string) {
	d.mu.Lock()
	d.destroyed[kind]++
	d.mu.Unlock()
}

func (d *countingDevice) destroyedCount(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destroyed[kind]
}

func (d *countingDevice) CreateTextureView(t hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	if d.failView {
		return nil, fmt.Errorf("view creation disabled")
	}
	return d.Device.CreateTextureView(t, desc)
}

func (d *countingDevice) DestroyBuffer(b hal.Buffer)   { d.count("buffer"); d.Device.DestroyBuffer(b) }
func (d *countingDevice) DestroyTexture(t hal.Texture) { d.count("texture"); d.Device.DestroyTexture(t) }
func (d *countingDevice) DestroyTextureView(v hal.TextureView) {
	d.count("view")
	d.Device.DestroyTextureView(v)
}
func (d *countingDevice) DestroySampler(s hal.Sampler) { d.count("sampler"); d.Device.DestroySampler(s) }
func (d *countingDevice) DestroyShaderModule(m hal.ShaderModule) {
	d.count("shader")
	d.Device.DestroyShaderModule(m)
}
func (d *countingDevice) DestroyBindGroup(g hal.BindGroup) {
	d.count("bindgroup")
	d.Device.DestroyBindGroup(g)
}
func (d *countingDevice) DestroyBindGroupLayout(l hal.BindGroupLayout) {
	d.count("bindgrouplayout")
	d.Device.DestroyBindGroupLayout(l)
}
func (d *countingDevice) DestroyPipelineLayout(l hal.PipelineLayout) {
	d.count("pipelinelayout")
	d.Device.DestroyPipelineLayout(l)
}
func (d *countingDevice) DestroyRenderPipeline(p hal.RenderPipeline) {
	d.count("pipeline")
	d.Device.DestroyRenderPipeline(p)
}
func (d *countingDevice) Destroy() { d.count("device") }

func testTokens() Tokens {
	var t Tokens
	for i := range t.Compare {
		t.Compare[i] = 0x200 + uint32(i)
	}
	for i := range t.BlendFactor {
		t.BlendFactor[i] = 0x300 + uint32(i)
	}
	for i := range t.BlendOp {
		t.BlendOp[i] = 0x400 + uint32(i)
	}
	for i := range t.StencilOp {
		t.StencilOp[i] = 0x500 + uint32(i)
	}
	t.CullMode = [3]uint32{0, 0x404, 0x405}
	t.FrontFace = [2]uint32{0x901, 0x900}
	t.Filter = [3]uint32{0, 0x2600, 0x2601}
	t.FillMode = [2]uint32{0x1B02, 0x1B01}
	t.AddressMode = [5]uint32{0x2901, 0x8370, 0x812F, 0x812D, 0x8743}
	t.Topology = [6]uint32{0, 1, 3, 4, 5, 0xE}
	t.TopologyType = [4]uint32{1, 2, 3, 4}
	t.IndexFormat = [2]uint32{0x1403, 0x1405}
	return t
}

func testProfile() *Profile {
	return &Profile{
		Name:         "test",
		Variants:     []gputypes.Backend{gputypes.BackendEmpty},
		Language:     "WGSL",
		ShaderFormat: rhi.ShaderFormatWGSL,
		Caps: rhi.Capabilities{
			MaxRenderTargets:    8,
			MaxTextureDimension: 4096,
			MaxViewports:        16,
			UniformBuffers:      true,
			GeometryShaders:     true,
			TessellationShaders: true,
			Wireframe:           true,
			BorderAddressing:    true,
			DebugLabels:         true,
			InstancedArrays:     true,
			DrawIndirect:        true,
			BaseVertex:          true,
		},
		Tokens: testTokens(),
		Calls: Calls{
			Draw:                "Draw",
			DrawIndexed:         "DrawIndexed",
			DrawIndirect:        "DrawIndirect",
			DrawIndexedIndirect: "DrawIndexedIndirect",
			Viewport:            "Viewport",
			Scissor:             "Scissor",
			Clear:               "Clear",
			Marker:              "Marker",
			BeginEvent:          "BeginEvent",
			EndEvent:            "EndEvent",
			Label:               "Label",
			Present:             "Present",
			Pipeline:            "Pipeline",
		},
		BindRasterizer: func(t rhi.Tracer, n *NativeRasterizer) {
			t.Call("PolygonMode", uint64(n.FillMode))
			t.Call("CullFace", uint64(n.CullMode))
		},
		BindBlend: func(t rhi.Tracer, n *NativeBlend) {
			t.Call("BlendFunc", uint64(n.Targets[0].Src), uint64(n.Targets[0].Dst))
		},
		BindDepthStencil: func(t rhi.Tracer, n *NativeDepthStencil) {
			t.Call("DepthFunc", uint64(n.DepthFunc))
		},
		BindSampler: func(t rhi.Tracer, unit uint32, n *NativeSampler) {
			t.Call("BindSampler", uint64(unit), uint64(n.Min))
		},
		BindTopology: func(t rhi.Tracer, topology uint32) {
			t.Call("Topology", uint64(topology))
		},
	}
}

type testEnv struct {
	r      *Renderer
	dev    *countingDevice
	log    *rhi.BufferLog
	tracer *recordTracer
}

func newTestEnv(t *testing.T, mutate func(*Profile), opts ...rhi.Option) *testEnv {
	t.Helper()
	p := testProfile()
	if mutate != nil {
		mutate(p)
	}
	env := &testEnv{dev: newCountingDevice(), log: &rhi.BufferLog{}, tracer: &recordTracer{}}
	opts = append([]rhi.Option{
		rhi.WithDevice(env.dev, &noop.Queue{}),
		rhi.WithLog(env.log),
		rhi.WithTracer(env.tracer),
	}, opts...)
	r, err := New(p, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	env.r = r
	t.Cleanup(func() { _ = r.Close() })
	return env
}

func (e *testEnv) program(t *testing.T, attrs rhi.VertexAttributes) rhi.Program {
	t.Helper()
	lang := e.r.ShaderLanguage()
	vs, err := lang.CreateVertexShader(rhi.WGSL(triangleWGSL, "vs_main"))
	if err != nil {
		t.Fatalf("CreateVertexShader() error = %v", err)
	}
	fs, err := lang.CreateFragmentShader(rhi.WGSL(triangleWGSL, "fs_main"))
	if err != nil {
		t.Fatalf("CreateFragmentShader() error = %v", err)
	}
	if !vs.IsCompiled() || !fs.IsCompiled() {
		t.Fatalf("compile failed: vs %q fs %q", vs.CompileLog(), fs.CompileLog())
	}
	p, err := lang.CreateProgram(rhi.ProgramDescriptor{VertexAttributes: attrs, Vertex: vs, Fragment: fs})
	if err != nil {
		t.Fatalf("CreateProgram() error = %v", err)
	}
	if !p.IsLinked() {
		t.Fatalf("program not linked: %s", p.LinkLog())
	}
	return p
}

func triangleAttributes() rhi.VertexAttributes {
	return rhi.VertexAttributes{
		{Name: "Position", Format: gputypes.VertexFormatFloat32x2, Offset: 0, Stride: 24},
		{Name: "Color", Format: gputypes.VertexFormatFloat32x4, Offset: 8, Stride: 24},
	}
}

func (e *testEnv) pipeline(t *testing.T) rhi.PipelineState {
	t.Helper()
	desc := rhi.DefaultPipelineState()
	desc.Program = e.program(t, triangleAttributes())
	ps, err := e.r.CreatePipelineState(desc)
	if err != nil {
		t.Fatalf("CreatePipelineState() error = %v", err)
	}
	return ps
}

func (e *testEnv) swapChain(t *testing.T) rhi.SwapChain {
	t.Helper()
	sc, err := e.r.CreateSwapChain(&testWindow{NullWindowProvider: gpucontext.NullWindowProvider{W: 320, H: 240}},
		rhi.SwapChainDescriptor{DepthStencilFormat: gputypes.TextureFormatDepth32Float})
	if err != nil {
		t.Fatalf("CreateSwapChain() error = %v", err)
	}
	return sc
}

// testWindow counts redraw requests.
type testWindow struct {
	gpucontext.NullWindowProvider
	redraws int
}

func (w *testWindow) RequestRedraw() { w.redraws++ }

// live returns the number of live objects of kind.
func live(r rhi.Renderer, kind rhi.ResourceType) int64 {
	return r.Statistics().Live[kind]
}
