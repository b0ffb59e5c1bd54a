package opengl

import (
	"strings"
	"testing"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/internal/coretest"
)

func TestRegistered(t *testing.T) {
	if !rhi.IsRegistered(rhi.BackendOpenGL) {
		t.Fatal("opengl not registered")
	}
}

func TestFrameTrace(t *testing.T) {
	env := coretest.New(t, New)
	if env.R.Name() != rhi.BackendOpenGL {
		t.Fatalf("Name() = %q", env.R.Name())
	}
	env.Begin(t, rhi.DefaultPipelineState())
	env.R.Clear(rhi.ClearColor, [4]float32{}, 1, 0)
	env.R.Draw(rhi.DrawArguments{VertexCountPerInstance: 3, InstanceCount: 1})
	env.R.EndScene()

	for _, call := range []string{
		"glPolygonMode(0x408,0x1b02)",
		"glEnable(0xb44)",
		"glCullFace(0x405)",
		"glFrontFace(0x900)",
		"glEnable(0xb71)",
		"glDepthFunc(0x201)",
		"glDisable(0xbe2)",
		"glBlendFuncSeparate(0x1,0x0,0x1,0x0)",
		"glDrawArraysInstancedBaseInstance(0x3,0x1,0x0,0x0)",
	} {
		if !env.Tracer.Has(call) {
			t.Errorf("trace lacks %s", call)
		}
	}
	if env.Tracer.Count("glClear") != 1 {
		t.Errorf("trace = %v", env.Tracer.Names())
	}
}

func TestShaderTranslation(t *testing.T) {
	env := coretest.New(t, New)
	if env.R.ShaderLanguage().Name() != "GLSL" {
		t.Errorf("language = %q", env.R.ShaderLanguage().Name())
	}
	vs, err := env.R.ShaderLanguage().CreateVertexShader(rhi.WGSL(coretest.TriangleWGSL, "vs_main"))
	if err != nil {
		t.Fatal(err)
	}
	if !vs.IsCompiled() {
		t.Fatalf("not compiled: %s", vs.CompileLog())
	}
	if vs.Format() != rhi.ShaderFormatGLSL || !strings.HasPrefix(string(vs.Translated()), "#version 330") {
		t.Fatalf("Translated() = %.40q", vs.Translated())
	}
}

func TestCapabilities(t *testing.T) {
	caps := profile().Caps
	if !caps.DrawIndirect || !caps.BaseVertex || caps.MaxRenderTargets != 8 {
		t.Errorf("caps = %+v", caps)
	}
	if caps.UpperLeftOrigin || caps.ZeroToOneClipZ {
		t.Error("OpenGL uses lower-left origin and [-1,1] clip depth")
	}
}
