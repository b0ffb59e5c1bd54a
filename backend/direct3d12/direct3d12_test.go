package direct3d12

import (
	"testing"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/internal/coretest"
)

func TestRegistered(t *testing.T) {
	if !rhi.IsRegistered(rhi.BackendDirect3D12) {
		t.Fatal("direct3d12 not registered")
	}
}

func TestPipelineCreationTraced(t *testing.T) {
	env := coretest.New(t, New)
	desc := rhi.DefaultPipelineState()
	desc.Program = env.Program(t)
	if _, err := env.R.CreatePipelineState(desc); err != nil {
		t.Fatal(err)
	}
	if !env.Tracer.Has("CreateGraphicsPipelineState(0x3,0x1)") {
		t.Fatalf("trace = %v", env.Tracer.Calls())
	}
}

func TestStatesBakedIntoPipeline(t *testing.T) {
	env := coretest.New(t, New)
	env.Begin(t, rhi.DefaultPipelineState())
	env.R.Draw(rhi.DrawArguments{VertexCountPerInstance: 3, InstanceCount: 1})
	env.R.EndScene()

	want := []string{"IASetPrimitiveTopology", "DrawInstanced"}
	got := env.Tracer.Names()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("trace = %v, want %v", got, want)
	}
}

func TestIndirectLimit(t *testing.T) {
	if got := profile().Caps.MaxIndirectDrawsPerSubmit; got != maxExecuteIndirect {
		t.Errorf("MaxIndirectDrawsPerSubmit = %d", got)
	}
}
