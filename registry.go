package rhi

import (
	"fmt"
	"sort"

	"github.com/gogpu/gpucontext"
)

// Backend names.
const (
	BackendNull       = "null"
	BackendOpenGL     = "opengl"
	BackendOpenGLES   = "opengles"
	BackendDirect3D9  = "direct3d9"
	BackendDirect3D11 = "direct3d11"
	BackendDirect3D12 = "direct3d12"
	BackendVulkan     = "vulkan"
)

// defaultPriority is the order Default tries backends in.
// Modern explicit APIs first, Null last.
var defaultPriority = []string{
	BackendVulkan,
	BackendDirect3D12,
	BackendDirect3D11,
	BackendOpenGL,
	BackendOpenGLES,
	BackendDirect3D9,
	BackendNull,
}

// Factory creates a renderer for one backend.
type Factory func(opts ...Option) (Renderer, error)

var registry = gpucontext.NewRegistry[Factory](gpucontext.WithPriority(defaultPriority...))

// Register makes a backend available by name.
// Backend packages call it from init. Registering a name again replaces
// the previous factory.
func Register(name string, factory Factory) {
	if factory == nil {
		panic("rhi: Register factory is nil")
	}
	registry.Register(name, func() Factory { return factory })
}

// Unregister removes a backend. It is mainly useful in tests.
func Unregister(name string) {
	registry.Unregister(name)
}

// IsRegistered reports whether a backend with the given name is registered.
func IsRegistered(name string) bool {
	return registry.Has(name)
}

// Backends returns the sorted names of the registered backends.
func Backends() []string {
	names := registry.Available()
	sort.Strings(names)
	return names
}

// NewRenderer creates a renderer for the named backend.
func NewRenderer(name string, opts ...Option) (Renderer, error) {
	factory := registry.Get(name)
	if factory == nil {
		return nil, fmt.Errorf("%w: unknown backend %q (forgotten import?)", ErrBackendNotAvailable, name)
	}
	r, err := factory(opts...)
	if err != nil {
		return nil, fmt.Errorf("rhi: create %s renderer: %w", name, err)
	}
	BackendLogger(name).Info("rhi: renderer created")
	return r, nil
}

// Default creates a renderer for the best registered backend that can
// open a device. Backends are tried in priority order: vulkan,
// direct3d12, direct3d11, opengl, opengles, direct3d9, null. Backends
// outside that list are tried last, by name.
func Default(opts ...Option) (Renderer, error) {
	var lastErr error
	for _, name := range candidates() {
		r, err := NewRenderer(name, opts...)
		if err == nil {
			return r, nil
		}
		BackendLogger(name).Debug("rhi: backend unavailable", "err", err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no backend registered", ErrBackendNotAvailable)
	}
	return nil, lastErr
}

// DefaultName returns the name Default tries first, or "" when no backend
// is registered.
func DefaultName() string {
	return registry.BestName()
}

func candidates() []string {
	var names []string
	listed := make(map[string]bool, len(defaultPriority))
	for _, name := range defaultPriority {
		listed[name] = true
		if registry.Has(name) {
			names = append(names, name)
		}
	}
	for _, name := range Backends() {
		if !listed[name] {
			names = append(names, name)
		}
	}
	return names
}
