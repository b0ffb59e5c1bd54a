package rhi

import (
	"reflect"
	"sync/atomic"
)

// noCopy may be embedded into structs which must not be copied after first use.
// go vet's copylocks check reports copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// RefCounter is the reference counting contract shared by every resource.
type RefCounter interface {
	// AddReference increments the reference count and returns the new value.
	// Panics if the object was already destroyed.
	AddReference() uint32

	// ReleaseReference decrements the reference count and returns the new value.
	// The transition from one to zero destroys the object.
	// Panics if the count is already zero.
	ReleaseReference() uint32

	// RefCount returns the current reference count.
	RefCount() uint32

	// IsDestroyed reports whether the last reference was released.
	IsDestroyed() bool
}

// RefCounted is the intrusive reference counter embedded by every resource.
//
// A new object starts at zero references. When ReleaseReference drops the
// count from one to zero the self-destruct hook installed with
// InitRefCount runs exactly once. Backends route the hook through their
// renderer so host memory goes back to the renderer's Allocator.
//
// RefCounted must not be copied after first use.
type RefCounted struct {
	_         noCopy
	refs      atomic.Int32
	destroyed atomic.Bool
	hook      func()
}

// InitRefCount installs the self-destruct hook.
// Backends call it once while constructing the object.
func (c *RefCounted) InitRefCount(selfDestruct func()) {
	c.hook = selfDestruct
}

// AddReference implements RefCounter.
func (c *RefCounted) AddReference() uint32 {
	if c.destroyed.Load() {
		panic("rhi: AddReference on destroyed resource")
	}
	// #nosec G115 -- the counter is never negative here
	return uint32(c.refs.Add(1))
}

// ReleaseReference implements RefCounter.
func (c *RefCounted) ReleaseReference() uint32 {
	n := c.refs.Add(-1)
	if n < 0 {
		c.refs.Add(1)
		panic("rhi: ReleaseReference on resource without references")
	}
	if n == 0 && c.destroyed.CompareAndSwap(false, true) && c.hook != nil {
		c.hook()
	}
	// #nosec G115 -- n >= 0
	return uint32(n)
}

// RefCount implements RefCounter.
func (c *RefCounted) RefCount() uint32 {
	n := c.refs.Load()
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// IsDestroyed implements RefCounter.
func (c *RefCounted) IsDestroyed() bool {
	return c.destroyed.Load()
}

// Handle is a smart reference to a resource. Setting a resource adds a
// reference; Reset or replacing it releases the previous one.
//
// Handles are values. Use Clone to duplicate a handle: a plain struct
// copy shares the reference without counting it.
//
//	tex := rhi.NewHandle[rhi.Texture2D](t)
//	defer tex.Reset()
type Handle[T Resource] struct {
	res T
	ok  bool
}

// NewHandle returns a handle holding a reference to r.
// A nil r, including a nil pointer of a resource type, yields an empty
// handle.
func NewHandle[T Resource](r T) Handle[T] {
	var h Handle[T]
	h.Set(r)
	return h
}

// Set replaces the held resource with r. The new reference is taken before
// the old one is released, so assigning the held resource again is safe.
func (h *Handle[T]) Set(r T) {
	valid := !isNil(r)
	if valid {
		r.AddReference()
	}
	h.Reset()
	if valid {
		h.res, h.ok = r, true
	}
}

// Reset releases the held reference, leaving the handle empty.
func (h *Handle[T]) Reset() {
	if !h.ok {
		return
	}
	old := h.res
	var zero T
	h.res, h.ok = zero, false
	old.ReleaseReference()
}

// Get returns the held resource, or the zero value when empty.
func (h Handle[T]) Get() T {
	return h.res
}

// Valid reports whether the handle holds a resource.
func (h Handle[T]) Valid() bool {
	return h.ok
}

// Clone returns a new handle with its own reference to the same resource.
func (h Handle[T]) Clone() Handle[T] {
	if !h.ok {
		return Handle[T]{}
	}
	return NewHandle(h.res)
}

// isNil reports whether r is nil or a nil pointer behind a non-nil
// interface.
func isNil(r any) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
