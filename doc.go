// Package rhi is a renderer hardware interface: one set of Go interfaces
// describing GPU resources, state objects and draw commands, implemented by
// several native graphics backends.
//
// # Overview
//
// Client code selects a backend by name and receives a [Renderer]. The
// renderer is the factory for every GPU resource and also accepts immediate
// commands. Deferred work is recorded into a command bucket (package
// command) and replayed later against any renderer.
//
//	import (
//	    "github.com/gogpu/rhi"
//	    _ "github.com/gogpu/rhi/backend/vulkan"
//	)
//
//	r, err := rhi.NewRenderer("vulkan")
//	if err != nil {
//	    // backend missing or device unavailable
//	}
//	defer r.Close()
//
//	vb, err := r.CreateVertexBuffer(rhi.BufferDescriptor{Data: vertices, Usage: rhi.BufferUsageStaticDraw})
//
// # Backends
//
// Backends register themselves in init(), following the database/sql
// driver pattern:
//   - null       (no native API, used for tests and tooling)
//   - opengl     (OpenGL 3.3+)
//   - opengles   (OpenGL ES 3.0)
//   - direct3d9  (Direct3D 9)
//   - direct3d11 (Direct3D 11)
//   - direct3d12 (Direct3D 12)
//   - vulkan     (Vulkan 1.0+)
//
// Import github.com/gogpu/rhi/backend/all to register all of them.
//
// # Resource lifetime
//
// Every resource is intrusively reference counted. A freshly created
// resource has zero references; the first owner calls AddReference (or
// wraps it in a [Handle]). When the last reference is released the
// resource destroys its native objects and returns host memory through
// the renderer's [Allocator]. Aggregates such as pipeline states, resource
// groups, vertex arrays and framebuffers hold references to their members.
//
// # Threading
//
// A renderer is single-threaded: resource creation, immediate commands and
// command bucket submission must not run concurrently unless the caller
// serializes them. Reference counts are atomic, so resources may be shared
// with loader goroutines.
//
// # Logging
//
// rhi logs nothing by default. Call [SetLogger] to route diagnostics to a
// slog.Logger, and pass [WithLog] to give a renderer its own [Log] sink.
package rhi
