package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// ErrDeviceLost is returned by operations on a device that was destroyed.
var ErrDeviceLost = errors.New("core: device destroyed")

// Device wraps a hal device and queue.
//
// Thread Safety: Device is safe for concurrent use. Resources may drop
// their last reference on any goroutine, so every hal call that creates
// or destroys an object goes through the mutex.
type Device struct {
	mu       sync.Mutex
	device   hal.Device
	queue    hal.Queue
	instance hal.Instance
	info     gputypes.AdapterInfo

	// owned devices were opened here and are destroyed by Destroy.
	owned bool
}

// NewDevice wraps an already opened device. Destroy leaves it open.
func NewDevice(device hal.Device, queue hal.Queue) *Device {
	return &Device{device: device, queue: queue}
}

// OpenDevice opens the first available hal backend among variants,
// preferring discrete and integrated GPUs.
func OpenDevice(variants []gputypes.Backend) (*Device, error) {
	var errs []error
	for _, v := range variants {
		d, err := openVariant(v)
		if err == nil {
			return d, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, rhi.ErrBackendNotAvailable
	}
	return nil, fmt.Errorf("%w: %w", rhi.ErrBackendNotAvailable, errors.Join(errs...))
}

func openVariant(v gputypes.Backend) (*Device, error) {
	backend, ok := hal.GetBackend(v)
	if !ok {
		return nil, fmt.Errorf("hal backend %s not registered", v)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create %s instance: %w", v, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("no %s adapters found", v)
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open %s device: %w", v, err)
	}
	rhi.BackendLogger(v.String()).Info("rhi: device opened", "adapter", selected.Info.Name)
	return &Device{
		device:   open.Device,
		queue:    open.Queue,
		instance: instance,
		info:     selected.Info,
		owned:    true,
	}, nil
}

// AdapterName returns the adapter name, or "" for injected devices.
func (d *Device) AdapterName() string {
	return d.info.Name
}

// HAL returns the wrapped device and queue, or nils after Destroy.
func (d *Device) HAL() (hal.Device, hal.Queue) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.device, d.queue
}

// with runs fn with the device under the lock.
func (d *Device) with(fn func(hal.Device) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device == nil {
		return ErrDeviceLost
	}
	return fn(d.device)
}

func create[T any](d *Device, fn func(hal.Device) (T, error)) (T, error) {
	var out T
	err := d.with(func(hd hal.Device) error {
		var err error
		out, err = fn(hd)
		return err
	})
	return out, err
}

// release destroys *obj once and clears it. It is a no-op for nil
// handles and after the device is gone.
func release[T any](d *Device, obj *T, destroy func(hal.Device, T)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if any(*obj) == nil {
		return
	}
	if d.device != nil {
		destroy(d.device, *obj)
	}
	var zero T
	*obj = zero
}

func (d *Device) releaseBuffer(b *hal.Buffer) { release(d, b, hal.Device.DestroyBuffer) }
func (d *Device) releaseTexture(t *hal.Texture) { release(d, t, hal.Device.DestroyTexture) }
func (d *Device) releaseView(v *hal.TextureView) { release(d, v, hal.Device.DestroyTextureView) }
func (d *Device) releaseSampler(s *hal.Sampler) { release(d, s, hal.Device.DestroySampler) }
func (d *Device) releaseShader(m *hal.ShaderModule) { release(d, m, hal.Device.DestroyShaderModule) }
func (d *Device) releaseBindGroup(g *hal.BindGroup) { release(d, g, hal.Device.DestroyBindGroup) }
func (d *Device) releasePipeline(p *hal.RenderPipeline) { release(d, p, hal.Device.DestroyRenderPipeline) }

func (d *Device) releaseBindGroupLayout(l *hal.BindGroupLayout) {
	release(d, l, hal.Device.DestroyBindGroupLayout)
}

func (d *Device) releasePipelineLayout(l *hal.PipelineLayout) {
	release(d, l, hal.Device.DestroyPipelineLayout)
}

// writeBuffer uploads data through the queue.
func (d *Device) writeBuffer(b hal.Buffer, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.queue == nil {
		return ErrDeviceLost
	}
	return d.queue.WriteBuffer(b, offset, data)
}

// writeTexture uploads one region of one mip level.
func (d *Device) writeTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.queue == nil {
		return ErrDeviceLost
	}
	return d.queue.WriteTexture(dst, data, layout, size)
}

// submit submits one command buffer and returns its submission index.
func (d *Device) submit(cb hal.CommandBuffer) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.queue == nil {
		return 0, ErrDeviceLost
	}
	return d.queue.Submit([]hal.CommandBuffer{cb})
}

// completed returns the last finished submission index.
func (d *Device) completed() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.queue == nil {
		return ^uint64(0)
	}
	return d.queue.PollCompleted()
}

func (d *Device) freeCommandBuffer(cb hal.CommandBuffer) {
	_ = d.with(func(hd hal.Device) error {
		hd.FreeCommandBuffer(cb)
		return nil
	})
}

func (d *Device) waitIdle() error {
	return d.with(func(hd hal.Device) error { return hd.WaitIdle() })
}

// Destroy releases the device if it was opened by OpenDevice. Injected
// devices stay open. Later releases of hal objects become no-ops.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device == nil {
		return
	}
	if d.owned {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device, d.queue, d.instance = nil, nil, nil
}
