package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rhi"
)

type counters struct {
	live      [rhi.NumResourceTypes]atomic.Int64
	created   atomic.Int64
	destroyed atomic.Int64
	draws     atomic.Int64
	frames    atomic.Int64
}

// Renderer implements rhi.Renderer for one Profile.
//
// Creation, binding and drawing happen on the goroutine that drives the
// renderer. Objects may release their last reference on any goroutine.
type Renderer struct {
	profile *Profile
	cfg     rhi.Config
	dev     *Device
	tracer  rhi.Tracer
	lang    *shaderLanguage

	mu     sync.Mutex
	live   map[*resource]struct{}
	warned map[string]bool
	stats  counters

	frame  frame
	closed bool
}

var _ rhi.Renderer = (*Renderer)(nil)

// New creates a renderer for profile p. The device comes from
// rhi.WithDevice when given, otherwise it is opened from the hal backend
// registry.
func New(p *Profile, opts ...rhi.Option) (*Renderer, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	cfg := rhi.NewConfig(opts...)

	var dev *Device
	switch {
	case cfg.Device != nil && cfg.Queue == nil:
		return nil, fmt.Errorf("%w: device without queue", rhi.ErrNoDevice)
	case cfg.Device != nil:
		dev = NewDevice(cfg.Device, cfg.Queue)
	default:
		d, err := OpenDevice(p.Variants)
		if err != nil {
			return nil, err
		}
		dev = d
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = slogTracer{backend: p.Name}
	}
	r := &Renderer{
		profile: p,
		cfg:     cfg,
		dev:     dev,
		tracer:  tracer,
		live:    make(map[*resource]struct{}),
		warned:  make(map[string]bool),
	}
	r.lang = &shaderLanguage{r: r}
	rhi.BackendLogger(p.Name).Debug("rhi: renderer created", "adapter", dev.AdapterName())
	return r, nil
}

// slogTracer writes native calls to the package logger at debug level.
type slogTracer struct {
	backend string
}

func (t slogTracer) Call(fn string, args ...uint64) {
	if !rhi.Logger().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	rhi.BackendLogger(t.backend).Debug("rhi: native call", "fn", fn, "args", args)
}

// Name implements rhi.Renderer.
func (r *Renderer) Name() string { return r.profile.Name }

// Capabilities implements rhi.Renderer.
func (r *Renderer) Capabilities() rhi.Capabilities { return r.profile.Caps }

// Log implements rhi.Renderer.
func (r *Renderer) Log() rhi.Log { return r.cfg.Log }

// Allocator implements rhi.Renderer.
func (r *Renderer) Allocator() rhi.Allocator { return r.cfg.Allocator }

// OwnerPolicy implements rhi.Renderer.
func (r *Renderer) OwnerPolicy() rhi.OwnerPolicy { return r.cfg.OwnerPolicy }

// ShaderLanguage implements rhi.Renderer.
func (r *Renderer) ShaderLanguage() rhi.ShaderLanguage { return r.lang }

// Device returns the device wrapper.
func (r *Renderer) Device() *Device { return r.dev }

// Statistics implements rhi.Renderer.
func (r *Renderer) Statistics() rhi.Statistics {
	var s rhi.Statistics
	for i := range s.Live {
		s.Live[i] = r.stats.live[i].Load()
	}
	s.Created = r.stats.created.Load()
	s.Destroyed = r.stats.destroyed.Load()
	s.DrawCalls = r.stats.draws.Load()
	s.Frames = r.stats.frames.Load()
	return s
}

func (r *Renderer) track(res *resource) {
	r.mu.Lock()
	r.live[res] = struct{}{}
	r.mu.Unlock()
	r.stats.live[res.kind].Add(1)
	r.stats.created.Add(1)
}

func (r *Renderer) untrack(res *resource) {
	r.mu.Lock()
	delete(r.live, res)
	r.mu.Unlock()
	r.stats.live[res.kind].Add(-1)
	r.stats.destroyed.Add(1)
}

func (r *Renderer) checkOpen() error {
	if r.closed {
		return rhi.ErrRendererClosed
	}
	return nil
}

// warn reports a recoverable problem through the Log and the package logger.
func (r *Renderer) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.cfg.Log.PrintLine("rhi: %s: %s", r.profile.Name, msg)
	rhi.BackendLogger(r.profile.Name).Warn("rhi: " + msg)
}

// warnOnce is warn limited to the first occurrence of key.
func (r *Renderer) warnOnce(key, format string, args ...any) {
	r.mu.Lock()
	seen := r.warned[key]
	r.warned[key] = true
	r.mu.Unlock()
	if !seen {
		r.warn(format, args...)
	}
}

// owns applies the owner policy to res.
func (r *Renderer) owns(res rhi.Resource, where string) bool {
	return rhi.CheckOwner(r, res, where)
}

// Close implements rhi.Renderer. Work in flight is finished, live objects
// are reported and their hal objects freed, then the device is released.
// Objects released after Close only drop their host memory.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	if r.frame.encoder != nil {
		r.EndScene()
	}
	r.Finish()
	r.frame.unbind()

	if report := r.Statistics().LeakReport(); report != "" {
		r.cfg.Log.PrintLine("rhi: %s: live resources at close: %s", r.profile.Name, report)
		rhi.BackendLogger(r.profile.Name).Warn("rhi: live resources at close", "resources", report)
	}

	r.mu.Lock()
	live := make([]*resource, 0, len(r.live))
	for res := range r.live {
		live = append(live, res)
	}
	r.mu.Unlock()
	for _, res := range live {
		if res.free != nil {
			res.free()
		}
	}

	r.dev.Destroy()
	r.closed = true
	return nil
}
