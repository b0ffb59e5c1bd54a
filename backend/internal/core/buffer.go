package core

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// copyAlignment is the size granularity of queue buffer writes.
const copyAlignment = 4

func alignUp(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

// buffer implements every buffer interface; kind tells them apart.
//
// shadow is a host copy of the contents in allocator memory. Uploads are
// staged through it and indirect draws read it on backends without
// native indirect drawing.
type buffer struct {
	resource
	native      hal.Buffer
	size        int
	usage       rhi.BufferUsage
	indexFormat rhi.IndexFormat
	shadow      []byte
}

var (
	_ rhi.VertexBuffer   = (*buffer)(nil)
	_ rhi.IndexBuffer    = (*buffer)(nil)
	_ rhi.UniformBuffer  = (*buffer)(nil)
	_ rhi.IndirectBuffer = (*buffer)(nil)
)

// Size implements rhi.Buffer.
func (b *buffer) Size() int { return b.size }

// Usage implements rhi.Buffer.
func (b *buffer) Usage() rhi.BufferUsage { return b.usage }

// IndexFormat implements rhi.IndexBuffer.
func (b *buffer) IndexFormat() rhi.IndexFormat { return b.indexFormat }

// CopyDataFrom implements rhi.Buffer. The data lands at offset zero.
func (b *buffer) CopyDataFrom(data []byte) error {
	if b.IsDestroyed() || b.native == nil {
		return rhi.ErrResourceDestroyed
	}
	if len(data) > b.size {
		return fmt.Errorf("%w: %d bytes into %s of %d bytes", rhi.ErrBufferOverflow, len(data), b.kind, b.size)
	}
	if len(data) == 0 {
		return nil
	}
	n := copy(b.shadow, data)
	if err := b.r.dev.writeBuffer(b.native, 0, b.shadow[:alignUp(n, copyAlignment)]); err != nil {
		return fmt.Errorf("rhi: write %s: %w", b.kind, err)
	}
	return nil
}

func (b *buffer) release() {
	b.r.dev.releaseBuffer(&b.native)
	if b.shadow != nil {
		b.r.cfg.Allocator.Reallocate(b.shadow, 0, 0)
		b.shadow = nil
	}
}

var halBufferUsage = map[rhi.ResourceType]gputypes.BufferUsage{
	rhi.ResourceTypeVertexBuffer:   gputypes.BufferUsageVertex,
	rhi.ResourceTypeIndexBuffer:    gputypes.BufferUsageIndex,
	rhi.ResourceTypeUniformBuffer:  gputypes.BufferUsageUniform,
	rhi.ResourceTypeIndirectBuffer: gputypes.BufferUsageIndirect,
}

func (r *Renderer) createBuffer(kind rhi.ResourceType, desc rhi.BufferDescriptor) (*buffer, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	capacity := desc.Capacity()
	padded := alignUp(capacity, copyAlignment)

	native, err := create(r.dev, func(d hal.Device) (hal.Buffer, error) {
		return d.CreateBuffer(&hal.BufferDescriptor{
			Label: kind.String(),
			Size:  uint64(padded),
			Usage: halBufferUsage[kind] | gputypes.BufferUsageCopyDst,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("rhi: create %s: %w", kind, err)
	}

	b := &buffer{
		native:      native,
		size:        capacity,
		usage:       desc.Usage,
		indexFormat: desc.IndexFormat,
		shadow:      r.cfg.Allocator.Reallocate(nil, padded, copyAlignment),
	}
	clear(b.shadow)
	b.init(r, kind, b.release)
	if len(desc.Data) > 0 {
		if err := b.CopyDataFrom(desc.Data); err != nil {
			b.discard()
			return nil, err
		}
	}
	return b, nil
}

// CreateVertexBuffer implements rhi.Renderer.
func (r *Renderer) CreateVertexBuffer(desc rhi.BufferDescriptor) (rhi.VertexBuffer, error) {
	return r.createBuffer(rhi.ResourceTypeVertexBuffer, desc)
}

// CreateIndexBuffer implements rhi.Renderer.
func (r *Renderer) CreateIndexBuffer(desc rhi.BufferDescriptor) (rhi.IndexBuffer, error) {
	if desc.IndexFormat > rhi.IndexFormatUint32 {
		return nil, fmt.Errorf("%w: index format %d", rhi.ErrInvalidDescriptor, desc.IndexFormat)
	}
	return r.createBuffer(rhi.ResourceTypeIndexBuffer, desc)
}

// CreateUniformBuffer implements rhi.Renderer. Backends without uniform
// buffers return rhi.ErrUnsupported.
func (r *Renderer) CreateUniformBuffer(desc rhi.BufferDescriptor) (rhi.UniformBuffer, error) {
	if !r.profile.Caps.UniformBuffers {
		return nil, fmt.Errorf("%w: %s has no uniform buffers", rhi.ErrUnsupported, r.profile.Name)
	}
	return r.createBuffer(rhi.ResourceTypeUniformBuffer, desc)
}

// CreateIndirectBuffer implements rhi.Renderer.
func (r *Renderer) CreateIndirectBuffer(desc rhi.BufferDescriptor) (rhi.IndirectBuffer, error) {
	return r.createBuffer(rhi.ResourceTypeIndirectBuffer, desc)
}

// asBuffer returns the core buffer behind b when r owns it.
func (r *Renderer) asBuffer(b rhi.Buffer, kind rhi.ResourceType, where string) (*buffer, bool) {
	if b == nil || !r.owns(b, where) {
		return nil, false
	}
	cb, ok := b.(*buffer)
	if !ok || cb.kind != kind {
		r.warn("%s: expected %s, got %s", where, kind, b.ResourceType())
		return nil, false
	}
	return cb, true
}
