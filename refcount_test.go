package rhi

import (
	"sync"
	"testing"
)

func TestRefCountLifecycle(t *testing.T) {
	r := newFakeResource(nil)
	if got := r.RefCount(); got != 0 {
		t.Fatalf("new resource RefCount() = %d, want 0", got)
	}
	if got := r.AddReference(); got != 1 {
		t.Errorf("AddReference() = %d, want 1", got)
	}
	if got := r.AddReference(); got != 2 {
		t.Errorf("AddReference() = %d, want 2", got)
	}
	if got := r.ReleaseReference(); got != 1 {
		t.Errorf("ReleaseReference() = %d, want 1", got)
	}
	if r.IsDestroyed() || r.destructs != 0 {
		t.Fatal("resource destroyed while referenced")
	}
	if got := r.ReleaseReference(); got != 0 {
		t.Errorf("ReleaseReference() = %d, want 0", got)
	}
	if !r.IsDestroyed() {
		t.Error("IsDestroyed() = false after last release")
	}
	if r.destructs != 1 {
		t.Errorf("self-destruct ran %d times, want 1", r.destructs)
	}
}

func TestRefCountReleaseAtZeroPanics(t *testing.T) {
	r := newFakeResource(nil)
	mustPanic(t, func() { r.ReleaseReference() })
	if got := r.RefCount(); got != 0 {
		t.Errorf("RefCount() after failed release = %d, want 0", got)
	}
	if r.destructs != 0 {
		t.Error("failed release ran self-destruct")
	}
}

func TestRefCountNoResurrection(t *testing.T) {
	r := newFakeResource(nil)
	r.AddReference()
	r.ReleaseReference()
	mustPanic(t, func() { r.AddReference() })
}

func TestRefCountBalance(t *testing.T) {
	r := newFakeResource(nil)
	r.AddReference() // keep alive through the run
	ops := []bool{true, true, false, true, false, false, true, true, true, false}
	adds, releases := 1, 0
	for i, add := range ops {
		if add {
			r.AddReference()
			adds++
		} else {
			r.ReleaseReference()
			releases++
		}
		if got, want := int(r.RefCount()), adds-releases; got != want {
			t.Fatalf("step %d: RefCount() = %d, want %d", i, got, want)
		}
	}
}

func TestRefCountConcurrent(t *testing.T) {
	r := newFakeResource(nil)
	r.AddReference()

	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				r.AddReference()
				r.ReleaseReference()
			}
		}()
	}
	wg.Wait()

	if got := r.RefCount(); got != 1 {
		t.Fatalf("RefCount() = %d, want 1", got)
	}
	r.ReleaseReference()
	if r.destructs != 1 {
		t.Errorf("self-destruct ran %d times, want 1", r.destructs)
	}
}

func TestHandle(t *testing.T) {
	a := newFakeResource(nil)
	b := newFakeResource(nil)

	h := NewHandle[Resource](a)
	if !h.Valid() || h.Get() != Resource(a) {
		t.Fatal("NewHandle did not hold the resource")
	}
	if a.RefCount() != 1 {
		t.Errorf("a.RefCount() = %d, want 1", a.RefCount())
	}

	c := h.Clone()
	if a.RefCount() != 2 {
		t.Errorf("after Clone a.RefCount() = %d, want 2", a.RefCount())
	}

	h.Set(b)
	if a.RefCount() != 1 || b.RefCount() != 1 {
		t.Errorf("after Set refs = (%d, %d), want (1, 1)", a.RefCount(), b.RefCount())
	}

	// Assigning the held resource again must not destroy it.
	h.Set(b)
	if b.IsDestroyed() || b.RefCount() != 1 {
		t.Errorf("self-assignment: destroyed=%v refs=%d", b.IsDestroyed(), b.RefCount())
	}

	h.Reset()
	c.Reset()
	if !a.IsDestroyed() || !b.IsDestroyed() {
		t.Error("resources should be destroyed after every handle reset")
	}
	if h.Valid() {
		t.Error("Valid() = true after Reset")
	}
	h.Reset() // no-op on empty handle
}

func TestHandleNil(t *testing.T) {
	var r Resource
	h := NewHandle(r)
	if h.Valid() {
		t.Error("handle of nil resource is valid")
	}
	if c := h.Clone(); c.Valid() {
		t.Error("clone of empty handle is valid")
	}

	var typed *fakeResource
	th := NewHandle[Resource](typed)
	if th.Valid() {
		t.Error("handle of nil pointer is valid")
	}
	held := NewHandle[Resource](newFakeResource(nil))
	held.Set(typed)
	if held.Valid() {
		t.Error("Set(nil pointer) left the handle valid")
	}
}
