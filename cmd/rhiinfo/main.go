// Command rhiinfo lists the registered backends, prints the capabilities
// of one of them and renders a few frames of a triangle through a command
// bucket.
//
// The backend comes from -backend, then from the RHI_BACKEND environment
// variable (a .env file is honored), then from the default priority.
package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/gobuffalo/envy"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rhi"
	_ "github.com/gogpu/rhi/backend/all"
	"github.com/gogpu/rhi/command"
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

func main() {
	var (
		backend = flag.String("backend", envy.Get("RHI_BACKEND", ""), "backend to use (default: best available)")
		list    = flag.Bool("list", false, "list registered backends and exit")
		frames  = flag.Int("frames", 3, "frames to render")
		verbose = flag.Bool("v", false, "log native calls and renderer events")
	)
	flag.Parse()

	if *verbose {
		rhi.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if *list {
		for _, name := range rhi.Backends() {
			fmt.Println(name)
		}
		return
	}

	var (
		r   rhi.Renderer
		err error
	)
	if *backend == "" {
		r, err = rhi.Default()
	} else {
		r, err = rhi.NewRenderer(*backend)
	}
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Printf("Close: %v", err)
		}
	}()

	printCapabilities(r)
	if err := smoke(r, *frames); err != nil {
		log.Fatalf("Smoke frame failed: %v", err)
	}
	stats := r.Statistics()
	fmt.Printf("frames %d, draws %d, resources created %d\n", stats.Frames, stats.DrawCalls, stats.Created)
}

func printCapabilities(r rhi.Renderer) {
	c := r.Capabilities()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "backend\t%s\n", r.Name())
	fmt.Fprintf(w, "shader language\t%s (%s)\n", r.ShaderLanguage().Name(), r.ShaderLanguage().Format())
	fmt.Fprintf(w, "render targets\t%d\n", c.MaxRenderTargets)
	fmt.Fprintf(w, "texture dimension\t%d\n", c.MaxTextureDimension)
	fmt.Fprintf(w, "viewports\t%d\n", c.MaxViewports)
	features := []struct {
		name string
		on   bool
	}{
		{"uniform buffers", c.UniformBuffers},
		{"geometry shaders", c.GeometryShaders},
		{"tessellation", c.TessellationShaders},
		{"wireframe", c.Wireframe},
		{"border addressing", c.BorderAddressing},
		{"debug labels", c.DebugLabels},
		{"draw indirect", c.DrawIndirect},
		{"base vertex", c.BaseVertex},
		{"native multithreading", c.NativeMultiThreading},
	}
	var on, off []string
	for _, f := range features {
		if f.on {
			on = append(on, f.name)
		} else {
			off = append(off, f.name)
		}
	}
	fmt.Fprintf(w, "supported\t%s\n", strings.Join(on, ", "))
	fmt.Fprintf(w, "missing\t%s\n", strings.Join(off, ", "))
	_ = w.Flush()
}

// triangle returns interleaved position and color for three vertices.
func triangle() []byte {
	verts := []float32{
		0, 0.5, 1, 0, 0, 1,
		-0.5, -0.5, 0, 1, 0, 1,
		0.5, -0.5, 0, 0, 1, 1,
	}
	b := make([]byte, 4*len(verts))
	for i, v := range verts {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

func smoke(r rhi.Renderer, frames int) error {
	lang := r.ShaderLanguage()
	vs, err := lang.CreateVertexShader(rhi.WGSL(triangleWGSL, "vs_main"))
	if err != nil {
		return err
	}
	fs, err := lang.CreateFragmentShader(rhi.WGSL(triangleWGSL, "fs_main"))
	if err != nil {
		return err
	}
	attrs := rhi.VertexAttributes{
		{Name: "Position", Format: gputypes.VertexFormatFloat32x2, Offset: 0, Stride: 24},
		{Name: "Color", Format: gputypes.VertexFormatFloat32x4, Offset: 8, Stride: 24},
	}
	program, err := lang.CreateProgram(rhi.ProgramDescriptor{VertexAttributes: attrs, Vertex: vs, Fragment: fs})
	if err != nil {
		return err
	}
	if !program.IsLinked() {
		return fmt.Errorf("link: %s", program.LinkLog())
	}

	sc, err := r.CreateSwapChain(gpucontext.NullWindowProvider{W: 640, H: 480}, rhi.SwapChainDescriptor{})
	if err != nil {
		return err
	}
	desc := rhi.DefaultPipelineState()
	desc.Program = program
	desc.ColorFormats = sc.ColorFormats()
	desc.DepthStencilFormat = sc.DepthStencilFormat()
	desc.DepthStencil.DepthEnable = false
	ps, err := r.CreatePipelineState(desc)
	if err != nil {
		return err
	}
	vb, err := r.CreateVertexBuffer(rhi.BufferDescriptor{Size: 3 * 24})
	if err != nil {
		return err
	}
	if err := vb.CopyDataFrom(triangle()); err != nil {
		return err
	}
	va, err := r.CreateVertexArray(attrs, []rhi.VertexArrayBuffer{{Buffer: vb}}, nil)
	if err != nil {
		return err
	}

	bucket := command.NewBucket(r.Allocator())
	defer bucket.Reset()
	if err := errors.Join(
		bucket.SetRenderTarget(sc),
		bucket.SetViewports(rhi.Viewport{Width: float32(sc.Width()), Height: float32(sc.Height()), MaxDepth: 1}),
		bucket.Clear(rhi.ClearColor, [4]float32{0.1, 0.1, 0.1, 1}, 1, 0),
		bucket.BeginDebugEvent("triangle"),
		bucket.SetPipelineState(ps),
		bucket.SetVertexArray(va),
		bucket.Draw(rhi.DrawArguments{VertexCountPerInstance: 3, InstanceCount: 1}),
		bucket.EndDebugEvent(),
	); err != nil {
		return err
	}

	for i := range frames {
		if err := r.BeginScene(); err != nil {
			return err
		}
		if err := bucket.Submit(r); err != nil {
			r.EndScene()
			return err
		}
		if err := sc.Present(); err != nil {
			return err
		}
		r.Log().PrintProgress(i+1, frames)
	}
	return nil
}
