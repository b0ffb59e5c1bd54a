package core

import (
	"fmt"

	"github.com/gogpu/rhi"
)

type vertexArray struct {
	resource
	attrs   rhi.VertexAttributes
	buffers []rhi.VertexArrayBuffer
	index   *buffer
}

// VertexAttributes implements rhi.VertexArray.
func (va *vertexArray) VertexAttributes() rhi.VertexAttributes { return va.attrs }

// VertexBuffers implements rhi.VertexArray.
func (va *vertexArray) VertexBuffers() []rhi.VertexArrayBuffer { return va.buffers }

// IndexBuffer implements rhi.VertexArray.
func (va *vertexArray) IndexBuffer() rhi.IndexBuffer {
	if va.index == nil {
		return nil
	}
	return va.index
}

// CreateVertexArray implements rhi.Renderer. Buffers owned by another
// renderer leave their slot empty under OwnerPolicyLog.
func (r *Renderer) CreateVertexArray(attrs rhi.VertexAttributes, buffers []rhi.VertexArrayBuffer, index rhi.IndexBuffer) (rhi.VertexArray, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if len(buffers) < attrs.Slots() {
		return nil, fmt.Errorf("%w: layout reads %d vertex buffers, %d given", rhi.ErrInvalidDescriptor, attrs.Slots(), len(buffers))
	}
	va := &vertexArray{
		attrs:   append(rhi.VertexAttributes(nil), attrs...),
		buffers: make([]rhi.VertexArrayBuffer, len(buffers)),
	}
	for i, vb := range buffers {
		if vb.Buffer == nil {
			continue
		}
		b, ok := r.asBuffer(vb.Buffer, rhi.ResourceTypeVertexBuffer, "CreateVertexArray")
		if !ok {
			continue
		}
		va.buffers[i] = rhi.VertexArrayBuffer{Buffer: b, Offset: vb.Offset}
	}
	if index != nil {
		if b, ok := r.asBuffer(index, rhi.ResourceTypeIndexBuffer, "CreateVertexArray"); ok {
			va.index = b
		}
	}

	va.init(r, rhi.ResourceTypeVertexArray, nil)
	for _, vb := range va.buffers {
		if vb.Buffer != nil {
			va.hold(vb.Buffer)
		}
	}
	if va.index != nil {
		va.hold(va.index)
	}
	return va, nil
}
