package rhi

import "testing"

// stubRenderer implements the parts of Renderer the root package uses.
// Calling any other method panics on the nil embedded interface.
type stubRenderer struct {
	Renderer
	name   string
	log    *BufferLog
	policy OwnerPolicy
}

func newStubRenderer(name string) *stubRenderer {
	return &stubRenderer{name: name, log: &BufferLog{}}
}

func (r *stubRenderer) Name() string             { return r.name }
func (r *stubRenderer) Log() Log                 { return r.log }
func (r *stubRenderer) OwnerPolicy() OwnerPolicy { return r.policy }

// fakeResource is a minimal Resource counting self-destruct calls.
type fakeResource struct {
	RefCounted
	owner     Renderer
	name      string
	destructs int
}

func newFakeResource(owner Renderer) *fakeResource {
	f := &fakeResource{owner: owner}
	f.InitRefCount(func() { f.destructs++ })
	return f
}

func (f *fakeResource) ResourceType() ResourceType { return ResourceTypeTexture2D }
func (f *fakeResource) Renderer() Renderer         { return f.owner }
func (f *fakeResource) SetDebugName(name string)   { f.name = name }
func (f *fakeResource) DebugName() string          { return f.name }

// mustPanic fails the test unless fn panics.
func mustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	fn()
}
