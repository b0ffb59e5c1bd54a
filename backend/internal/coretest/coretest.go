// Package coretest drives backend renderers through a small frame so
// profile packages can check the native calls they trace.
package coretest

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rhi"
)

// TriangleWGSL is a colored triangle with both stages.
const TriangleWGSL = `
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

// Tracer records calls as "fn(0x1,0x2)".
type Tracer struct {
	mu    sync.Mutex
	calls []string
}

// Call implements rhi.Tracer.
func (t *Tracer) Call(fn string, args ...uint64) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%#x", a)
	}
	t.mu.Lock()
	t.calls = append(t.calls, fn+"("+strings.Join(parts, ",")+")")
	t.mu.Unlock()
}

// Calls returns the recorded calls.
func (t *Tracer) Calls() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.calls...)
}

// Names returns the recorded function names.
func (t *Tracer) Names() []string {
	calls := t.Calls()
	for i, c := range calls {
		calls[i] = c[:strings.IndexByte(c, '(')]
	}
	return calls
}

// Count returns how often fn was called.
func (t *Tracer) Count(fn string) int {
	n := 0
	for _, name := range t.Names() {
		if name == fn {
			n++
		}
	}
	return n
}

// Has reports whether the exact call was recorded.
func (t *Tracer) Has(call string) bool {
	for _, c := range t.Calls() {
		if c == call {
			return true
		}
	}
	return false
}

// Reset drops the recorded calls.
func (t *Tracer) Reset() {
	t.mu.Lock()
	t.calls = nil
	t.mu.Unlock()
}

// Env is a renderer on the noop device with a recording tracer.
type Env struct {
	R      rhi.Renderer
	Tracer *Tracer
	Log    *rhi.BufferLog
}

// New creates a renderer through factory on the noop device.
func New(t testing.TB, factory rhi.Factory, opts ...rhi.Option) *Env {
	t.Helper()
	env := &Env{Tracer: &Tracer{}, Log: &rhi.BufferLog{}}
	opts = append([]rhi.Option{
		rhi.WithDevice(&noop.Device{}, &noop.Queue{}),
		rhi.WithLog(env.Log),
		rhi.WithTracer(env.Tracer),
	}, opts...)
	r, err := factory(opts...)
	if err != nil {
		t.Fatalf("factory() error = %v", err)
	}
	env.R = r
	t.Cleanup(func() { _ = r.Close() })
	return env
}

// Attributes matches the inputs of TriangleWGSL.
func Attributes() rhi.VertexAttributes {
	return rhi.VertexAttributes{
		{Name: "Position", Format: gputypes.VertexFormatFloat32x2, Offset: 0, Stride: 24},
		{Name: "Color", Format: gputypes.VertexFormatFloat32x4, Offset: 8, Stride: 24},
	}
}

// Program compiles and links TriangleWGSL.
func (e *Env) Program(t testing.TB) rhi.Program {
	t.Helper()
	lang := e.R.ShaderLanguage()
	vs, err := lang.CreateVertexShader(rhi.WGSL(TriangleWGSL, "vs_main"))
	if err != nil {
		t.Fatal(err)
	}
	fs, err := lang.CreateFragmentShader(rhi.WGSL(TriangleWGSL, "fs_main"))
	if err != nil {
		t.Fatal(err)
	}
	if !vs.IsCompiled() || !fs.IsCompiled() {
		t.Fatalf("compile failed: vs %q fs %q", vs.CompileLog(), fs.CompileLog())
	}
	p, err := lang.CreateProgram(rhi.ProgramDescriptor{VertexAttributes: Attributes(), Vertex: vs, Fragment: fs})
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsLinked() {
		t.Fatalf("link failed: %s", p.LinkLog())
	}
	return p
}

// Frame holds the objects bound by Begin. Each carries a caller reference.
type Frame struct {
	SwapChain rhi.SwapChain
	Pipeline  rhi.PipelineState
	Vertices  rhi.VertexArray
}

// Begin creates a pipeline from desc with the triangle program, begins a
// scene and binds it with a swap chain and a vertex array. The tracer is
// reset before binding.
func (e *Env) Begin(t testing.TB, desc rhi.PipelineStateDescriptor) Frame {
	t.Helper()
	var f Frame
	var err error
	win := gpucontext.NullWindowProvider{W: 64, H: 64}
	if f.SwapChain, err = e.R.CreateSwapChain(win, rhi.SwapChainDescriptor{DepthStencilFormat: desc.DepthStencilFormat}); err != nil {
		t.Fatalf("CreateSwapChain() error = %v", err)
	}
	desc.Program = e.Program(t)
	if f.Pipeline, err = e.R.CreatePipelineState(desc); err != nil {
		t.Fatalf("CreatePipelineState() error = %v", err)
	}
	vb, err := e.R.CreateVertexBuffer(rhi.BufferDescriptor{Size: 3 * 24})
	if err != nil {
		t.Fatal(err)
	}
	if f.Vertices, err = e.R.CreateVertexArray(Attributes(), []rhi.VertexArrayBuffer{{Buffer: vb}}, nil); err != nil {
		t.Fatal(err)
	}
	for _, res := range []rhi.Resource{f.SwapChain, f.Pipeline, f.Vertices} {
		res.AddReference()
	}
	e.Tracer.Reset()
	if err := e.R.BeginScene(); err != nil {
		t.Fatal(err)
	}
	e.R.SetRenderTarget(f.SwapChain)
	e.R.SetPipelineState(f.Pipeline)
	e.R.SetVertexArray(f.Vertices)
	return f
}
