package rhi

import (
	"fmt"
	"strings"

	"github.com/gogpu/gpucontext"
)

// ClearFlags select which buffers Clear affects.
type ClearFlags uint8

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
	ClearStencil

	ClearColorDepth = ClearColor | ClearDepth
	ClearAll        = ClearColor | ClearDepth | ClearStencil
)

// Viewport is a rasterizer viewport in pixels.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// ScissorRectangle is a scissor rectangle in pixels.
type ScissorRectangle struct {
	X, Y          int32
	Width, Height int32
}

// Capabilities describe what a backend supports.
type Capabilities struct {
	MaxRenderTargets          int
	MaxTextureDimension       int
	MaxViewports              int
	UniformBuffers            bool
	GeometryShaders           bool
	TessellationShaders       bool
	Wireframe                 bool
	BorderAddressing          bool
	DebugLabels               bool
	InstancedArrays           bool
	DrawIndirect              bool
	BaseVertex                bool
	NativeMultiThreading      bool
	MaxIndirectDrawsPerSubmit int
	PreferredShaderFormat     ShaderFormat
	UpperLeftOrigin           bool
	ZeroToOneClipZ            bool
}

// Statistics count renderer activity. Live holds the number of resources
// of each type that are created and not yet destroyed.
type Statistics struct {
	Live      [NumResourceTypes]int64
	Created   int64
	Destroyed int64
	DrawCalls int64
	Frames    int64
}

// LiveTotal returns the number of live resources of every type.
func (s Statistics) LiveTotal() int64 {
	var n int64
	for _, v := range s.Live {
		n += v
	}
	return n
}

// LeakReport describes live resources, or returns "" when there are none.
func (s Statistics) LeakReport() string {
	var b strings.Builder
	for t, n := range s.Live {
		if n == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d %s", n, ResourceType(t))
	}
	return b.String()
}

// Renderer is a rendering context bound to one backend and one device.
//
// A renderer is not safe for concurrent use: record, create and draw from
// one goroutine, or serialize access. Reference counting and the
// allocator are safe to use from any goroutine.
type Renderer interface {
	// Name returns the backend name, for example "vulkan".
	Name() string
	Capabilities() Capabilities
	Statistics() Statistics
	Log() Log
	Allocator() Allocator
	OwnerPolicy() OwnerPolicy

	ShaderLanguage() ShaderLanguage

	CreateSwapChain(window gpucontext.WindowProvider, desc SwapChainDescriptor) (SwapChain, error)
	CreateFramebuffer(color []Texture2D, depthStencil Texture2D) (Framebuffer, error)
	CreateVertexBuffer(desc BufferDescriptor) (VertexBuffer, error)
	CreateIndexBuffer(desc BufferDescriptor) (IndexBuffer, error)
	CreateUniformBuffer(desc BufferDescriptor) (UniformBuffer, error)
	CreateIndirectBuffer(desc BufferDescriptor) (IndirectBuffer, error)
	CreateVertexArray(attrs VertexAttributes, buffers []VertexArrayBuffer, index IndexBuffer) (VertexArray, error)
	CreateTexture1D(desc TextureDescriptor) (Texture1D, error)
	CreateTexture2D(desc TextureDescriptor) (Texture2D, error)
	CreateTexture3D(desc TextureDescriptor) (Texture3D, error)
	CreateTextureCube(desc TextureDescriptor) (TextureCube, error)
	CreateSamplerState(desc SamplerDescriptor) (SamplerState, error)
	CreateRootSignature(desc RootSignatureDescriptor) (RootSignature, error)
	CreatePipelineState(desc PipelineStateDescriptor) (PipelineState, error)

	// BeginScene starts recording a frame. Every command below except
	// CopyUniformBufferData, Flush and Finish must happen inside a scene.
	BeginScene() error
	// EndScene submits the frame to the device.
	EndScene()

	SetGraphicsRootSignature(rs RootSignature)
	SetPipelineState(ps PipelineState)
	SetResourceGroup(index int, group ResourceGroup)
	SetVertexArray(va VertexArray)
	SetViewports(viewports []Viewport)
	SetScissorRectangles(rects []ScissorRectangle)
	SetRenderTarget(rt RenderTarget)
	Clear(flags ClearFlags, color [4]float32, depth float32, stencil uint32)
	Draw(args DrawArguments)
	DrawIndexed(args DrawIndexedArguments)
	// DrawIndirect issues draws whose arguments live in buf. With indexed
	// set each record is DrawIndexedArguments, otherwise DrawArguments.
	DrawIndirect(buf IndirectBuffer, offset uint64, count int, indexed bool)
	CopyUniformBufferData(buf UniformBuffer, data []byte) error

	SetDebugMarker(name string)
	BeginDebugEvent(name string)
	EndDebugEvent()

	// Flush submits recorded work without waiting.
	Flush()
	// Finish submits recorded work and waits for the device to go idle.
	Finish()
	// Close releases the device. Resources still alive are reported through
	// the log and their native objects are freed.
	Close() error
}
