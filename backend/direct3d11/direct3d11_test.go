package direct3d11

import (
	"testing"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/internal/core"
	"github.com/gogpu/rhi/backend/internal/coretest"
)

func TestRegistered(t *testing.T) {
	if !rhi.IsRegistered(rhi.BackendDirect3D11) {
		t.Fatal("direct3d11 not registered")
	}
}

func TestFrameTrace(t *testing.T) {
	env := coretest.New(t, New)
	env.Begin(t, rhi.DefaultPipelineState())
	env.R.SetDebugMarker("triangle")
	env.R.Draw(rhi.DrawArguments{VertexCountPerInstance: 3, InstanceCount: 1})
	env.R.EndScene()

	want := []string{
		"RSSetState(0x3,0x3,0x0,0x0,0x0,0x0,0x1,0x0,0x0,0x0)",
		"IASetPrimitiveTopology(0x4)",
		"SetMarker(0x8)",
		"DrawInstanced(0x3,0x1,0x0,0x0)",
	}
	for _, call := range want {
		if !env.Tracer.Has(call) {
			t.Errorf("trace lacks %s: %v", call, env.Tracer.Calls())
		}
	}
	if env.Tracer.Count("OMSetBlendState") != 1 || env.Tracer.Count("OMSetDepthStencilState") != 1 {
		t.Errorf("trace = %v", env.Tracer.Names())
	}
}

func TestBlendTargets(t *testing.T) {
	tr := &coretest.Tracer{}
	bindBlend(tr, &core.NativeBlend{})
	if got := len(tr.Calls()[0]); got == 0 {
		t.Fatal("no call")
	}
	single := tr.Calls()[0]
	tr.Reset()
	bindBlend(tr, &core.NativeBlend{Independent: true})
	if len(tr.Calls()[0]) <= len(single) {
		t.Error("independent blending did not describe every target")
	}
}

func TestShaderTranslation(t *testing.T) {
	env := coretest.New(t, New)
	fs, err := env.R.ShaderLanguage().CreateFragmentShader(rhi.WGSL(coretest.TriangleWGSL, "fs_main"))
	if err != nil {
		t.Fatal(err)
	}
	if !fs.IsCompiled() || fs.Format() != rhi.ShaderFormatHLSL || len(fs.Translated()) == 0 {
		t.Fatalf("compiled %v format %v log %q", fs.IsCompiled(), fs.Format(), fs.CompileLog())
	}
}
