package rhi

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
)

// BufferUsage is a hint about how often buffer contents change.
type BufferUsage uint8

const (
	// BufferUsageStaticDraw is written once and drawn many times.
	BufferUsageStaticDraw BufferUsage = iota
	// BufferUsageDynamicDraw is rewritten occasionally.
	BufferUsageDynamicDraw
	// BufferUsageStreamDraw is rewritten every frame.
	BufferUsageStreamDraw
)

// String returns the usage name.
func (u BufferUsage) String() string {
	switch u {
	case BufferUsageStaticDraw:
		return "StaticDraw"
	case BufferUsageDynamicDraw:
		return "DynamicDraw"
	case BufferUsageStreamDraw:
		return "StreamDraw"
	default:
		return fmt.Sprintf("BufferUsage(%d)", uint8(u))
	}
}

// IndexFormat is the element type of an index buffer.
type IndexFormat uint8

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

// Size returns the size of one index in bytes.
func (f IndexFormat) Size() int {
	if f == IndexFormatUint32 {
		return 4
	}
	return 2
}

// GPU returns the equivalent gputypes index format.
func (f IndexFormat) GPU() gputypes.IndexFormat {
	if f == IndexFormatUint32 {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}

// String returns the format name.
func (f IndexFormat) String() string {
	if f == IndexFormatUint32 {
		return "Uint32"
	}
	return "Uint16"
}

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	// Size is the capacity in bytes. Zero means len(Data).
	Size int
	// Data is the optional initial content.
	Data  []byte
	Usage BufferUsage
	// IndexFormat applies to index buffers only.
	IndexFormat IndexFormat
}

// Capacity returns the buffer size the descriptor asks for.
func (d BufferDescriptor) Capacity() int {
	if d.Size == 0 {
		return len(d.Data)
	}
	return d.Size
}

// Validate reports an unusable descriptor.
func (d BufferDescriptor) Validate() error {
	if d.Size < 0 || d.Capacity() == 0 {
		return fmt.Errorf("%w: buffer size %d", ErrInvalidSize, d.Size)
	}
	if len(d.Data) > d.Capacity() {
		return fmt.Errorf("%w: %d bytes of initial data for %d byte buffer", ErrBufferOverflow, len(d.Data), d.Capacity())
	}
	return nil
}

// Buffer is the common part of every buffer resource.
type Buffer interface {
	Resource

	// Size returns the capacity in bytes.
	Size() int

	// Usage returns the usage hint the buffer was created with.
	Usage() BufferUsage

	// CopyDataFrom uploads data at the start of the buffer.
	// It returns ErrBufferOverflow when len(data) exceeds Size.
	// No barrier is inserted: the caller must not overwrite a buffer an
	// unfinished frame still reads.
	CopyDataFrom(data []byte) error
}

// VertexBuffer holds per-vertex or per-instance attribute data.
type VertexBuffer interface {
	Buffer
}

// IndexBuffer holds vertex indices.
type IndexBuffer interface {
	Buffer

	// IndexFormat returns the index element type.
	IndexFormat() IndexFormat
}

// UniformBuffer holds shader constants.
type UniformBuffer interface {
	Buffer
}

// IndirectBuffer holds draw arguments consumed by DrawIndirect.
type IndirectBuffer interface {
	Buffer
}

// DrawArguments are the arguments of a non-indexed draw.
// The binary layout produced by Bytes matches what indirect buffers hold.
type DrawArguments struct {
	VertexCountPerInstance uint32
	InstanceCount          uint32
	StartVertexLocation    uint32
	StartInstanceLocation  uint32
}

// DrawArgumentsSize is the encoded size of DrawArguments.
const DrawArgumentsSize = 16

// Bytes encodes a as little-endian indirect draw arguments.
func (a DrawArguments) Bytes() []byte {
	b := make([]byte, DrawArgumentsSize)
	binary.LittleEndian.PutUint32(b[0:], a.VertexCountPerInstance)
	binary.LittleEndian.PutUint32(b[4:], a.InstanceCount)
	binary.LittleEndian.PutUint32(b[8:], a.StartVertexLocation)
	binary.LittleEndian.PutUint32(b[12:], a.StartInstanceLocation)
	return b
}

// DrawIndexedArguments are the arguments of an indexed draw.
type DrawIndexedArguments struct {
	IndexCountPerInstance uint32
	InstanceCount         uint32
	StartIndexLocation    uint32
	BaseVertexLocation    int32
	StartInstanceLocation uint32
}

// DrawIndexedArgumentsSize is the encoded size of DrawIndexedArguments.
const DrawIndexedArgumentsSize = 20

// Bytes encodes a as little-endian indirect indexed draw arguments.
func (a DrawIndexedArguments) Bytes() []byte {
	b := make([]byte, DrawIndexedArgumentsSize)
	binary.LittleEndian.PutUint32(b[0:], a.IndexCountPerInstance)
	binary.LittleEndian.PutUint32(b[4:], a.InstanceCount)
	binary.LittleEndian.PutUint32(b[8:], a.StartIndexLocation)
	binary.LittleEndian.PutUint32(b[12:], uint32(a.BaseVertexLocation)) // #nosec G115 -- two's complement layout
	binary.LittleEndian.PutUint32(b[16:], a.StartInstanceLocation)
	return b
}

// VertexAttribute describes one vertex shader input.
type VertexAttribute struct {
	// Name is the semantic or attribute name used by GLSL and HLSL sources.
	Name   string
	Format gputypes.VertexFormat
	// InputSlot is the vertex array buffer index the attribute reads from.
	InputSlot uint32
	// Offset is the byte offset inside one vertex.
	Offset uint64
	// Stride is the distance in bytes between two vertices of the slot.
	Stride uint64
	// InstancesPerElement selects per-instance data when non-zero.
	InstancesPerElement uint32
}

// VertexAttributes is an ordered vertex input layout. The position of an
// attribute is its shader location.
type VertexAttributes []VertexAttribute

// Slots returns the number of vertex buffers the layout reads from.
func (a VertexAttributes) Slots() int {
	n := 0
	for _, attr := range a {
		if int(attr.InputSlot)+1 > n {
			n = int(attr.InputSlot) + 1
		}
	}
	return n
}

// BufferLayouts groups attributes by input slot.
func (a VertexAttributes) BufferLayouts() []gputypes.VertexBufferLayout {
	layouts := make([]gputypes.VertexBufferLayout, a.Slots())
	for i := range layouts {
		layouts[i].StepMode = gputypes.VertexStepModeVertex
	}
	for loc, attr := range a {
		l := &layouts[attr.InputSlot]
		if attr.Stride > l.ArrayStride {
			l.ArrayStride = attr.Stride
		}
		if attr.InstancesPerElement > 0 {
			l.StepMode = gputypes.VertexStepModeInstance
		}
		l.Attributes = append(l.Attributes, gputypes.VertexAttribute{
			Format:         attr.Format,
			Offset:         attr.Offset,
			ShaderLocation: uint32(loc), // #nosec G115 -- attribute count is small
		})
	}
	return layouts
}

// Equal reports whether a and b describe the same layout.
func (a VertexAttributes) Equal(b VertexAttributes) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// VertexArrayBuffer attaches a vertex buffer to one input slot.
type VertexArrayBuffer struct {
	Buffer VertexBuffer
	Offset uint64
}

// VertexArray binds a set of vertex buffers and an optional index buffer
// to a vertex layout. It holds a reference to every attached buffer.
type VertexArray interface {
	Resource

	VertexAttributes() VertexAttributes
	VertexBuffers() []VertexArrayBuffer
	// IndexBuffer returns nil when the array draws non-indexed only.
	IndexBuffer() IndexBuffer
}
