package command

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/rhi"
)

// callRenderer records the immediate calls a bucket submits.
type callRenderer struct {
	rhi.Renderer
	calls    []string
	uniforms [][]byte
	failCopy error
}

func (r *callRenderer) SetGraphicsRootSignature(rhi.RootSignature) {
	r.calls = append(r.calls, "SetGraphicsRootSignature")
}
func (r *callRenderer) SetPipelineState(rhi.PipelineState) {
	r.calls = append(r.calls, "SetPipelineState")
}
func (r *callRenderer) SetResourceGroup(int, rhi.ResourceGroup) {
	r.calls = append(r.calls, "SetResourceGroup")
}
func (r *callRenderer) SetVertexArray(rhi.VertexArray) { r.calls = append(r.calls, "SetVertexArray") }
func (r *callRenderer) SetViewports(v []rhi.Viewport)  { r.calls = append(r.calls, "SetViewports") }
func (r *callRenderer) SetScissorRectangles([]rhi.ScissorRectangle) {
	r.calls = append(r.calls, "SetScissorRectangles")
}
func (r *callRenderer) SetRenderTarget(rhi.RenderTarget) { r.calls = append(r.calls, "SetRenderTarget") }
func (r *callRenderer) Clear(rhi.ClearFlags, [4]float32, float32, uint32) {
	r.calls = append(r.calls, "Clear")
}
func (r *callRenderer) Draw(a rhi.DrawArguments) { r.calls = append(r.calls, "Draw") }
func (r *callRenderer) DrawIndexed(rhi.DrawIndexedArguments) {
	r.calls = append(r.calls, "DrawIndexed")
}
func (r *callRenderer) DrawIndirect(rhi.IndirectBuffer, uint64, int, bool) {
	r.calls = append(r.calls, "DrawIndirect")
}
func (r *callRenderer) CopyUniformBufferData(_ rhi.UniformBuffer, data []byte) error {
	r.calls = append(r.calls, "CopyUniformBufferData")
	r.uniforms = append(r.uniforms, slices.Clone(data))
	return r.failCopy
}
func (r *callRenderer) SetDebugMarker(string)  { r.calls = append(r.calls, "SetDebugMarker") }
func (r *callRenderer) BeginDebugEvent(string) { r.calls = append(r.calls, "BeginDebugEvent") }
func (r *callRenderer) EndDebugEvent()         { r.calls = append(r.calls, "EndDebugEvent") }

// The interface wrappers sit one level deeper than RefCounted so the real
// counting methods win over the nil interface ones.
type (
	pipelineIface      struct{ rhi.PipelineState }
	rootSignatureIface struct{ rhi.RootSignature }
	uniformIface       struct{ rhi.UniformBuffer }
	vertexArrayIface   struct{ rhi.VertexArray }
)

type fakePipeline struct {
	rhi.RefCounted
	pipelineIface
}

type fakeRootSignature struct {
	rhi.RefCounted
	rootSignatureIface
}

type fakeUniform struct {
	rhi.RefCounted
	uniformIface
}

type fakeVertexArray struct {
	rhi.RefCounted
	vertexArrayIface
}

func TestKindString(t *testing.T) {
	if KindDrawIndexed.String() != "DrawIndexed" {
		t.Errorf("KindDrawIndexed = %q", KindDrawIndexed.String())
	}
	if numKinds.String() != "Unknown" {
		t.Errorf("numKinds = %q", numKinds.String())
	}
	for k := range numKinds {
		if Dispatcher(k) == nil {
			t.Errorf("no dispatch function for %v", k)
		}
	}
	if Dispatcher(numKinds) != nil {
		t.Error("dispatch function for unknown kind")
	}
}

func TestSubmitFIFO(t *testing.T) {
	b := NewBucket(nil)
	b.SetDebugMarker("frame")
	b.Clear(rhi.ClearAll, [4]float32{0, 0, 0, 1}, 1, 0)
	b.Draw(rhi.DrawArguments{VertexCountPerInstance: 3, InstanceCount: 1})
	b.SetViewports(rhi.Viewport{Width: 640, Height: 480, MaxDepth: 1})
	b.Draw(rhi.DrawArguments{VertexCountPerInstance: 6, InstanceCount: 1})
	b.BeginDebugEvent("pass")
	b.DrawIndexed(rhi.DrawIndexedArguments{IndexCountPerInstance: 3, InstanceCount: 1})
	b.EndDebugEvent()

	want := []string{
		"SetDebugMarker", "Clear", "Draw", "SetViewports",
		"Draw", "BeginDebugEvent", "DrawIndexed", "EndDebugEvent",
	}
	for range 2 {
		r := &callRenderer{}
		if err := b.Submit(r); err != nil {
			t.Fatalf("Submit() = %v", err)
		}
		if !slices.Equal(r.calls, want) {
			t.Fatalf("calls = %v, want %v", r.calls, want)
		}
	}

	kinds := make([]string, 0, b.Len())
	for _, c := range b.Commands() {
		kinds = append(kinds, c.Kind().String())
	}
	if !slices.Equal(kinds, want) {
		t.Errorf("Commands() = %v", kinds)
	}
}

func TestRecordHoldsReferences(t *testing.T) {
	rs := &fakeRootSignature{}
	ps := &fakePipeline{}
	va := &fakeVertexArray{}
	for _, r := range []rhi.Resource{rs, ps, va} {
		r.AddReference()
	}

	b := NewBucket(nil)
	b.SetGraphicsRootSignature(rs)
	b.SetPipelineState(ps)
	b.SetVertexArray(va)
	b.SetVertexArray(va)
	b.SetVertexArray(nil)

	if rs.RefCount() != 2 || ps.RefCount() != 2 || va.RefCount() != 3 {
		t.Fatalf("refs after record = %d %d %d, want 2 2 3", rs.RefCount(), ps.RefCount(), va.RefCount())
	}

	// The caller lets go; the bucket keeps the objects alive.
	for _, r := range []rhi.Resource{rs, ps, va} {
		r.ReleaseReference()
	}
	if rs.IsDestroyed() || ps.IsDestroyed() || va.IsDestroyed() {
		t.Fatal("resource destroyed while a recorded command names it")
	}
	if err := b.Submit(&callRenderer{}); err != nil {
		t.Fatal(err)
	}

	b.Reset()
	if !rs.IsDestroyed() || !ps.IsDestroyed() || !va.IsDestroyed() {
		t.Error("Reset did not release the last references")
	}
	if b.Len() != 0 {
		t.Errorf("Len() after Reset = %d", b.Len())
	}
}

func TestUniformPayloadCopied(t *testing.T) {
	var alloc rhi.HeapAllocator
	ub := &fakeUniform{}
	ub.AddReference()
	t.Cleanup(func() { ub.ReleaseReference() })

	b := NewBucket(&alloc)
	data := []byte{1, 2, 3, 4}
	b.CopyUniformBufferData(ub, data)
	data[0] = 99

	if s := alloc.Stats(); s.Allocations != 1 || s.LiveBytes != 4 {
		t.Errorf("allocator stats = %+v", s)
	}

	r := &callRenderer{}
	if err := b.Submit(r); err != nil {
		t.Fatal(err)
	}
	if len(r.uniforms) != 1 || !slices.Equal(r.uniforms[0], []byte{1, 2, 3, 4}) {
		t.Errorf("submitted payload = %v", r.uniforms)
	}

	b.Reset()
	if s := alloc.Stats(); s.Frees != 1 || s.LiveBytes != 0 {
		t.Errorf("after Reset stats = %+v", s)
	}
}

func TestViewportsCopied(t *testing.T) {
	b := NewBucket(nil)
	vps := []rhi.Viewport{{Width: 10}}
	b.SetViewports(vps...)
	vps[0].Width = 20
	c := b.Commands()[0].(SetViewports)
	if c.Viewports[0].Width != 10 {
		t.Errorf("recorded viewport changed with caller slice: %v", c.Viewports[0].Width)
	}
}

func TestSubmitJoinsErrors(t *testing.T) {
	errUpload := errors.New("upload failed")
	b := NewBucket(nil)
	b.CopyUniformBufferData(nil, []byte{1})
	b.Draw(rhi.DrawArguments{})
	b.CopyUniformBufferData(nil, []byte{2})

	r := &callRenderer{failCopy: errUpload}
	err := b.Submit(r)
	if !errors.Is(err, errUpload) {
		t.Fatalf("Submit() = %v, want upload error", err)
	}
	if len(r.calls) != 3 {
		t.Errorf("submission stopped early: %v", r.calls)
	}
}

type bogus struct{}

func (bogus) Kind() Kind { return numKinds + 3 }

func TestRecordUnknown(t *testing.T) {
	b := NewBucket(nil)
	if err := b.Record(bogus{}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Record(bogus) = %v", err)
	}
	if err := b.Record(nil); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Record(nil) = %v", err)
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d", b.Len())
	}
}

// impostor claims the Draw kind without being a Draw.
type impostor struct{}

func (impostor) Kind() Kind { return KindDraw }

func TestRecordRejectsPointerCommands(t *testing.T) {
	ub := &fakeUniform{}
	ps := &fakePipeline{}
	b := NewBucket(nil)
	for _, cmd := range []Command{
		&Draw{},
		&SetPipelineState{PipelineState: ps},
		&CopyUniformBufferData{Buffer: ub, Data: []byte{1, 2}},
		impostor{},
	} {
		if err := b.Record(cmd); !errors.Is(err, ErrUnknownCommand) {
			t.Errorf("Record(%T) = %v, want ErrUnknownCommand", cmd, err)
		}
	}
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", b.Len())
	}
	if ps.RefCount() != 0 || ub.RefCount() != 0 {
		t.Fatalf("rejected commands took references: pipeline %d uniform %d", ps.RefCount(), ub.RefCount())
	}
	if err := b.Submit(&callRenderer{}); err != nil {
		t.Fatalf("Submit() = %v", err)
	}
}

func TestDispatchChecksCommandType(t *testing.T) {
	r := &callRenderer{}
	for k := range numKinds {
		if err := Dispatcher(k)(r, impostor{}); !errors.Is(err, ErrUnknownCommand) {
			t.Errorf("%v dispatch of a foreign command = %v", k, err)
		}
	}
	if len(r.calls) != 0 {
		t.Fatalf("calls = %v, want none", r.calls)
	}
}

func TestRecordersReturnErrors(t *testing.T) {
	b := NewBucket(nil)
	if err := b.Draw(rhi.DrawArguments{VertexCountPerInstance: 3, InstanceCount: 1}); err != nil {
		t.Fatalf("Draw() = %v", err)
	}
	if err := b.CopyUniformBufferData(&fakeUniform{}, []byte{1}); err != nil {
		t.Fatalf("CopyUniformBufferData() = %v", err)
	}
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}
	b.Reset()
}

func TestAppend(t *testing.T) {
	ps := &fakePipeline{}
	ps.AddReference()

	a, other := NewBucket(nil), NewBucket(nil)
	a.Draw(rhi.DrawArguments{})
	other.SetPipelineState(ps)
	other.DrawIndexed(rhi.DrawIndexedArguments{})

	if err := a.Append(other); err != nil {
		t.Fatal(err)
	}
	if ps.RefCount() != 3 {
		t.Errorf("RefCount() = %d, want 3", ps.RefCount())
	}
	r := &callRenderer{}
	if err := a.Submit(r); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(r.calls, []string{"Draw", "SetPipelineState", "DrawIndexed"}) {
		t.Errorf("calls = %v", r.calls)
	}
	other.Reset()
	a.Reset()
	if ps.RefCount() != 1 {
		t.Errorf("RefCount() after resets = %d", ps.RefCount())
	}
}
