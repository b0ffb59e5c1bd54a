package rhi

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// Tracer receives the native state calls a backend issues when binding
// state objects and drawing, for example Call("glDepthFunc", 0x0201).
// Calls are issued on the goroutine driving the renderer.
type Tracer interface {
	Call(fn string, args ...uint64)
}

// Option configures a renderer during creation.
//
// Example:
//
//	r, err := rhi.NewRenderer(rhi.BackendVulkan,
//	    rhi.WithLog(myLog),
//	    rhi.WithOwnerPolicy(rhi.OwnerPolicyPanic),
//	)
type Option func(*Config)

// Config is the resolved renderer configuration. Backends obtain it with
// NewConfig.
type Config struct {
	// Device and Queue are used instead of opening a device when set.
	Device hal.Device
	Queue  hal.Queue

	Allocator   Allocator
	Log         Log
	OwnerPolicy OwnerPolicy
	// Tracer is nil unless WithTracer is given; backends then trace through
	// the package logger at debug level.
	Tracer Tracer
}

// NewConfig applies opts over the defaults.
func NewConfig(opts ...Option) Config {
	c := Config{
		Allocator:   DefaultAllocator(),
		Log:         DefaultLog(),
		OwnerPolicy: OwnerPolicyLog,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDevice makes the renderer use an already opened device.
// The renderer does not destroy an injected device on Close.
func WithDevice(device hal.Device, queue hal.Queue) Option {
	return func(c *Config) {
		c.Device = device
		c.Queue = queue
	}
}

// WithDeviceProvider takes the device from a host application.
// Providers whose device is not a hal device are ignored.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(c *Config) {
		if p == nil {
			return
		}
		d, ok := p.Device().(hal.Device)
		if !ok {
			return
		}
		q, ok := p.Queue().(hal.Queue)
		if !ok {
			return
		}
		c.Device, c.Queue = d, q
	}
}

// WithAllocator sets the allocator for host memory of renderer objects.
func WithAllocator(a Allocator) Option {
	return func(c *Config) {
		if a != nil {
			c.Allocator = a
		}
	}
}

// WithLog sets the progress and warning sink.
func WithLog(l Log) Option {
	return func(c *Config) {
		if l != nil {
			c.Log = l
		}
	}
}

// WithOwnerPolicy sets how resources of another renderer are treated.
func WithOwnerPolicy(p OwnerPolicy) Option {
	return func(c *Config) {
		c.OwnerPolicy = p
	}
}

// WithTracer receives native state calls.
func WithTracer(t Tracer) Option {
	return func(c *Config) {
		c.Tracer = t
	}
}
