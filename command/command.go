package command

import "github.com/gogpu/rhi"

// Kind identifies the type of a command.
type Kind uint8

const (
	KindSetGraphicsRootSignature Kind = iota
	KindSetPipelineState
	KindSetResourceGroup
	KindSetVertexArray
	KindSetViewports
	KindSetScissorRectangles
	KindSetRenderTarget
	KindClear
	KindDraw
	KindDrawIndexed
	KindDrawIndirect
	KindCopyUniformBufferData
	KindSetDebugMarker
	KindBeginDebugEvent
	KindEndDebugEvent

	numKinds
)

var kindNames = [...]string{
	KindSetGraphicsRootSignature: "SetGraphicsRootSignature",
	KindSetPipelineState:         "SetPipelineState",
	KindSetResourceGroup:         "SetResourceGroup",
	KindSetVertexArray:           "SetVertexArray",
	KindSetViewports:             "SetViewports",
	KindSetScissorRectangles:     "SetScissorRectangles",
	KindSetRenderTarget:          "SetRenderTarget",
	KindClear:                    "Clear",
	KindDraw:                     "Draw",
	KindDrawIndexed:              "DrawIndexed",
	KindDrawIndirect:             "DrawIndirect",
	KindCopyUniformBufferData:    "CopyUniformBufferData",
	KindSetDebugMarker:           "SetDebugMarker",
	KindBeginDebugEvent:          "BeginDebugEvent",
	KindEndDebugEvent:            "EndDebugEvent",
}

// String returns the command name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Command is implemented by every command type.
type Command interface {
	Kind() Kind
}

// kindOf returns the kind of the command types of this package. Pointers
// to commands are not commands of this package.
func kindOf(cmd Command) (Kind, bool) {
	switch cmd.(type) {
	case SetGraphicsRootSignature:
		return KindSetGraphicsRootSignature, true
	case SetPipelineState:
		return KindSetPipelineState, true
	case SetResourceGroup:
		return KindSetResourceGroup, true
	case SetVertexArray:
		return KindSetVertexArray, true
	case SetViewports:
		return KindSetViewports, true
	case SetScissorRectangles:
		return KindSetScissorRectangles, true
	case SetRenderTarget:
		return KindSetRenderTarget, true
	case Clear:
		return KindClear, true
	case Draw:
		return KindDraw, true
	case DrawIndexed:
		return KindDrawIndexed, true
	case DrawIndirect:
		return KindDrawIndirect, true
	case CopyUniformBufferData:
		return KindCopyUniformBufferData, true
	case SetDebugMarker:
		return KindSetDebugMarker, true
	case BeginDebugEvent:
		return KindBeginDebugEvent, true
	case EndDebugEvent:
		return KindEndDebugEvent, true
	}
	return 0, false
}

// referrer is implemented by commands naming resources.
type referrer interface {
	resources() []rhi.Resource
}

// SetGraphicsRootSignature selects the root signature.
type SetGraphicsRootSignature struct {
	RootSignature rhi.RootSignature
}

// Kind implements Command.
func (SetGraphicsRootSignature) Kind() Kind { return KindSetGraphicsRootSignature }

func (c SetGraphicsRootSignature) resources() []rhi.Resource {
	return []rhi.Resource{c.RootSignature}
}

// SetPipelineState selects the pipeline state.
type SetPipelineState struct {
	PipelineState rhi.PipelineState
}

// Kind implements Command.
func (SetPipelineState) Kind() Kind { return KindSetPipelineState }

func (c SetPipelineState) resources() []rhi.Resource {
	return []rhi.Resource{c.PipelineState}
}

// SetResourceGroup binds a resource group to a root parameter.
type SetResourceGroup struct {
	Index int
	Group rhi.ResourceGroup
}

// Kind implements Command.
func (SetResourceGroup) Kind() Kind { return KindSetResourceGroup }

func (c SetResourceGroup) resources() []rhi.Resource {
	return []rhi.Resource{c.Group}
}

// SetVertexArray selects the vertex input.
type SetVertexArray struct {
	VertexArray rhi.VertexArray
}

// Kind implements Command.
func (SetVertexArray) Kind() Kind { return KindSetVertexArray }

func (c SetVertexArray) resources() []rhi.Resource {
	return []rhi.Resource{c.VertexArray}
}

// SetViewports sets the rasterizer viewports.
type SetViewports struct {
	Viewports []rhi.Viewport
}

// Kind implements Command.
func (SetViewports) Kind() Kind { return KindSetViewports }

// SetScissorRectangles sets the scissor rectangles.
type SetScissorRectangles struct {
	Rectangles []rhi.ScissorRectangle
}

// Kind implements Command.
func (SetScissorRectangles) Kind() Kind { return KindSetScissorRectangles }

// SetRenderTarget selects the render target.
type SetRenderTarget struct {
	Target rhi.RenderTarget
}

// Kind implements Command.
func (SetRenderTarget) Kind() Kind { return KindSetRenderTarget }

func (c SetRenderTarget) resources() []rhi.Resource {
	return []rhi.Resource{c.Target}
}

// Clear clears the selected buffers of the render target.
type Clear struct {
	Flags   rhi.ClearFlags
	Color   [4]float32
	Depth   float32
	Stencil uint32
}

// Kind implements Command.
func (Clear) Kind() Kind { return KindClear }

// Draw issues a non-indexed draw.
type Draw struct {
	Arguments rhi.DrawArguments
}

// Kind implements Command.
func (Draw) Kind() Kind { return KindDraw }

// DrawIndexed issues an indexed draw.
type DrawIndexed struct {
	Arguments rhi.DrawIndexedArguments
}

// Kind implements Command.
func (DrawIndexed) Kind() Kind { return KindDrawIndexed }

// DrawIndirect issues draws whose arguments live in a buffer.
type DrawIndirect struct {
	Buffer  rhi.IndirectBuffer
	Offset  uint64
	Count   int
	Indexed bool
}

// Kind implements Command.
func (DrawIndirect) Kind() Kind { return KindDrawIndirect }

func (c DrawIndirect) resources() []rhi.Resource {
	return []rhi.Resource{c.Buffer}
}

// CopyUniformBufferData uploads shader constants when submitted.
// The bucket copies Data when the command is recorded.
type CopyUniformBufferData struct {
	Buffer rhi.UniformBuffer
	Data   []byte
}

// Kind implements Command.
func (CopyUniformBufferData) Kind() Kind { return KindCopyUniformBufferData }

func (c CopyUniformBufferData) resources() []rhi.Resource {
	return []rhi.Resource{c.Buffer}
}

// SetDebugMarker inserts a named marker.
type SetDebugMarker struct {
	Name string
}

// Kind implements Command.
func (SetDebugMarker) Kind() Kind { return KindSetDebugMarker }

// BeginDebugEvent opens a named event scope.
type BeginDebugEvent struct {
	Name string
}

// Kind implements Command.
func (BeginDebugEvent) Kind() Kind { return KindBeginDebugEvent }

// EndDebugEvent closes the innermost event scope.
type EndDebugEvent struct{}

// Kind implements Command.
func (EndDebugEvent) Kind() Kind { return KindEndDebugEvent }
