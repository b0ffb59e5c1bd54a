package core

import (
	"github.com/gogpu/rhi"
)

// resource is the part every object shares: the reference count, the
// owning renderer and the references the object holds on others.
type resource struct {
	rhi.RefCounted

	r    *Renderer
	kind rhi.ResourceType
	name string

	// refs are released after free when the object is destroyed.
	refs []rhi.Resource
	// free releases hal objects and host memory. It must be idempotent:
	// Close calls it for live objects that are destroyed later.
	free func()
}

// init registers the object with its renderer. free may be nil.
func (res *resource) init(r *Renderer, kind rhi.ResourceType, free func()) {
	res.r = r
	res.kind = kind
	res.free = free
	res.InitRefCount(res.selfDestruct)
	r.track(res)
}

// hold takes a reference to every non-nil resource until destruction.
func (res *resource) hold(children ...rhi.Resource) {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.AddReference()
		res.refs = append(res.refs, c)
	}
}

// discard destroys an object whose construction failed before it was
// handed out.
func (res *resource) discard() {
	res.AddReference()
	res.ReleaseReference()
}

func (res *resource) selfDestruct() {
	res.r.untrack(res)
	if res.free != nil {
		res.free()
	}
	refs := res.refs
	res.refs = nil
	for _, c := range refs {
		c.ReleaseReference()
	}
}

// ResourceType implements rhi.Resource.
func (res *resource) ResourceType() rhi.ResourceType { return res.kind }

// Renderer implements rhi.Resource.
func (res *resource) Renderer() rhi.Renderer { return res.r }

// DebugName implements rhi.Resource.
func (res *resource) DebugName() string { return res.name }

// SetDebugName implements rhi.Resource. Backends without object labels
// keep the name for diagnostics only.
func (res *resource) SetDebugName(name string) {
	res.name = name
	if !res.r.profile.Caps.DebugLabels {
		res.r.warnOnce("labels", "debug names are not supported, kept for diagnostics")
		return
	}
	if call := res.r.profile.Calls.Label; call != "" {
		res.r.tracer.Call(call, uint64(res.kind), uint64(len(name)))
	}
}

// label returns the hal debug label.
func (res *resource) label() string {
	if res.name != "" {
		return res.name
	}
	return res.kind.String()
}
