package command

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/rhi"
)

// ErrUnknownCommand is returned for a command that is not one of the
// command types of this package, including pointers to them.
var ErrUnknownCommand = errors.New("command: unknown command kind")

// payloadAlignment is the alignment of copied uniform payloads.
const payloadAlignment = 16

type entry struct {
	cmd      Command
	dispatch DispatchFunc
	refs     []rhi.Resource
	payload  []byte
}

// Bucket is an ordered list of recorded commands.
//
// A Bucket is not safe for concurrent use. Record and Submit must not run
// at the same time; a recorded bucket may be submitted any number of times
// until Reset.
type Bucket struct {
	entries []entry
	alloc   rhi.Allocator
}

// NewBucket returns an empty bucket copying uniform payloads with alloc.
// A nil alloc uses rhi.DefaultAllocator.
func NewBucket(alloc rhi.Allocator) *Bucket {
	if alloc == nil {
		alloc = rhi.DefaultAllocator()
	}
	return &Bucket{entries: make([]entry, 0, 64), alloc: alloc}
}

// Record appends cmd. The dispatch function is selected now from the
// command's kind, every resource the command names gets a reference and
// uniform payloads are copied.
func (b *Bucket) Record(cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("%w: nil", ErrUnknownCommand)
	}
	if k, ok := kindOf(cmd); !ok || k != cmd.Kind() {
		return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
	dispatch := Dispatcher(cmd.Kind())

	e := entry{dispatch: dispatch}
	switch c := cmd.(type) {
	case CopyUniformBufferData:
		if len(c.Data) > 0 {
			e.payload = b.alloc.Reallocate(nil, len(c.Data), payloadAlignment)
			copy(e.payload, c.Data)
			c.Data = e.payload
		}
		cmd = c
	case SetViewports:
		c.Viewports = slices.Clone(c.Viewports)
		cmd = c
	case SetScissorRectangles:
		c.Rectangles = slices.Clone(c.Rectangles)
		cmd = c
	}
	e.cmd = cmd

	if rc, ok := cmd.(referrer); ok {
		for _, res := range rc.resources() {
			if res == nil {
				continue
			}
			res.AddReference()
			e.refs = append(e.refs, res)
		}
	}
	b.entries = append(b.entries, e)
	return nil
}

// Submit dispatches every recorded command to r in recorded order.
// A failing command does not stop submission; the errors of all failing
// commands are joined.
func (b *Bucket) Submit(r rhi.Renderer) error {
	var errs []error
	for i := range b.entries {
		e := &b.entries[i]
		if err := e.dispatch(r, e.cmd); err != nil {
			errs = append(errs, fmt.Errorf("command %d (%s): %w", i, e.cmd.Kind(), err))
		}
	}
	return errors.Join(errs...)
}

// Reset discards every command, releasing the references and payloads
// they hold.
func (b *Bucket) Reset() {
	for i := range b.entries {
		e := &b.entries[i]
		for _, res := range e.refs {
			res.ReleaseReference()
		}
		if e.payload != nil {
			b.alloc.Reallocate(e.payload, 0, payloadAlignment)
		}
		b.entries[i] = entry{}
	}
	b.entries = b.entries[:0]
}

// Len returns the number of recorded commands.
func (b *Bucket) Len() int {
	return len(b.entries)
}

// Commands returns the recorded commands in order.
func (b *Bucket) Commands() []Command {
	cmds := make([]Command, len(b.entries))
	for i, e := range b.entries {
		cmds[i] = e.cmd
	}
	return cmds
}

// Append records every command of other after the commands of b, in
// order. It lets callers sort independently recorded buckets by key and
// merge them before one submission.
func (b *Bucket) Append(other *Bucket) error {
	for _, e := range other.entries {
		if err := b.Record(e.cmd); err != nil {
			return err
		}
	}
	return nil
}

// SetGraphicsRootSignature records a SetGraphicsRootSignature command.
func (b *Bucket) SetGraphicsRootSignature(rs rhi.RootSignature) error {
	return b.Record(SetGraphicsRootSignature{RootSignature: rs})
}

// SetPipelineState records a SetPipelineState command.
func (b *Bucket) SetPipelineState(ps rhi.PipelineState) error {
	return b.Record(SetPipelineState{PipelineState: ps})
}

// SetResourceGroup records a SetResourceGroup command.
func (b *Bucket) SetResourceGroup(index int, group rhi.ResourceGroup) error {
	return b.Record(SetResourceGroup{Index: index, Group: group})
}

// SetVertexArray records a SetVertexArray command.
func (b *Bucket) SetVertexArray(va rhi.VertexArray) error {
	return b.Record(SetVertexArray{VertexArray: va})
}

// SetViewports records a SetViewports command.
func (b *Bucket) SetViewports(viewports ...rhi.Viewport) error {
	return b.Record(SetViewports{Viewports: viewports})
}

// SetScissorRectangles records a SetScissorRectangles command.
func (b *Bucket) SetScissorRectangles(rects ...rhi.ScissorRectangle) error {
	return b.Record(SetScissorRectangles{Rectangles: rects})
}

// SetRenderTarget records a SetRenderTarget command.
func (b *Bucket) SetRenderTarget(rt rhi.RenderTarget) error {
	return b.Record(SetRenderTarget{Target: rt})
}

// Clear records a Clear command.
func (b *Bucket) Clear(flags rhi.ClearFlags, color [4]float32, depth float32, stencil uint32) error {
	return b.Record(Clear{Flags: flags, Color: color, Depth: depth, Stencil: stencil})
}

// Draw records a Draw command.
func (b *Bucket) Draw(args rhi.DrawArguments) error {
	return b.Record(Draw{Arguments: args})
}

// DrawIndexed records a DrawIndexed command.
func (b *Bucket) DrawIndexed(args rhi.DrawIndexedArguments) error {
	return b.Record(DrawIndexed{Arguments: args})
}

// DrawIndirect records a DrawIndirect command.
func (b *Bucket) DrawIndirect(buf rhi.IndirectBuffer, offset uint64, count int, indexed bool) error {
	return b.Record(DrawIndirect{Buffer: buf, Offset: offset, Count: count, Indexed: indexed})
}

// CopyUniformBufferData records a CopyUniformBufferData command.
// data is copied; the caller may reuse it immediately.
func (b *Bucket) CopyUniformBufferData(buf rhi.UniformBuffer, data []byte) error {
	return b.Record(CopyUniformBufferData{Buffer: buf, Data: data})
}

// SetDebugMarker records a SetDebugMarker command.
func (b *Bucket) SetDebugMarker(name string) error {
	return b.Record(SetDebugMarker{Name: name})
}

// BeginDebugEvent records a BeginDebugEvent command.
func (b *Bucket) BeginDebugEvent(name string) error {
	return b.Record(BeginDebugEvent{Name: name})
}

// EndDebugEvent records an EndDebugEvent command.
func (b *Bucket) EndDebugEvent() error {
	return b.Record(EndDebugEvent{})
}
