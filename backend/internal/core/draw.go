package core

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// ErrSceneActive is returned by BeginScene inside a scene.
var ErrSceneActive = errors.New("core: scene already begun")

type submission struct {
	index uint64
	cb    hal.CommandBuffer
}

// frame is the recording state between BeginScene and EndScene. Bound
// objects are held through handles so they outlive the caller's
// references while bound.
type frame struct {
	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder

	target      rhi.Handle[rhi.RenderTarget]
	rootSig     rhi.Handle[rhi.RootSignature]
	pipeline    rhi.Handle[rhi.PipelineState]
	groups      []rhi.Handle[rhi.ResourceGroup]
	vertexArray rhi.Handle[rhi.VertexArray]
	viewports   []rhi.Viewport
	scissors    []rhi.ScissorRectangle

	events  int
	pending []submission
}

func (f *frame) endPass() {
	if f.pass != nil {
		f.pass.End()
		f.pass = nil
	}
}

func (f *frame) unbindGroups() {
	for i := range f.groups {
		f.groups[i].Reset()
	}
	f.groups = f.groups[:0]
}

// unbind drops every bound object.
func (f *frame) unbind() {
	f.target.Reset()
	f.rootSig.Reset()
	f.pipeline.Reset()
	f.vertexArray.Reset()
	f.unbindGroups()
	f.viewports = nil
	f.scissors = nil
}

func (r *Renderer) trace(fn string, args ...uint64) {
	if fn != "" {
		r.tracer.Call(fn, args...)
	}
}

func (r *Renderer) beginEncoder() error {
	enc, err := create(r.dev, func(d hal.Device) (hal.CommandEncoder, error) {
		return d.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "Scene"})
	})
	if err != nil {
		return fmt.Errorf("rhi: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("Scene"); err != nil {
		return fmt.Errorf("rhi: begin encoding: %w", err)
	}
	r.frame.encoder = enc
	return nil
}

// BeginScene implements rhi.Renderer.
func (r *Renderer) BeginScene() error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	if r.frame.encoder != nil {
		return ErrSceneActive
	}
	r.reclaim()
	return r.beginEncoder()
}

// submitEncoder ends the encoder and queues its command buffer.
func (r *Renderer) submitEncoder() {
	f := &r.frame
	f.endPass()
	enc := f.encoder
	f.encoder = nil
	cb, err := enc.EndEncoding()
	if err != nil {
		r.warn("end encoding: %v", err)
		enc.DiscardEncoding()
		return
	}
	idx, err := r.dev.submit(cb)
	if err != nil {
		r.warn("submit: %v", err)
		r.dev.freeCommandBuffer(cb)
		return
	}
	f.pending = append(f.pending, submission{index: idx, cb: cb})
}

// EndScene implements rhi.Renderer. Bindings do not carry over to the
// next scene.
func (r *Renderer) EndScene() {
	f := &r.frame
	if f.encoder == nil {
		r.warn("EndScene without BeginScene")
		return
	}
	if f.events > 0 {
		r.warn("%d debug events still open at EndScene", f.events)
		for ; f.events > 0; f.events-- {
			r.trace(r.profile.Calls.EndEvent)
		}
	}
	r.submitEncoder()
	f.unbind()
	r.reclaim()
	r.stats.frames.Add(1)
}

// reclaim frees command buffers of finished submissions.
func (r *Renderer) reclaim() {
	f := &r.frame
	if len(f.pending) == 0 {
		return
	}
	done := r.dev.completed()
	kept := f.pending[:0]
	for _, s := range f.pending {
		if s.index <= done {
			r.dev.freeCommandBuffer(s.cb)
			continue
		}
		kept = append(kept, s)
	}
	f.pending = kept
}

// Flush implements rhi.Renderer. Inside a scene the recorded commands are
// submitted and recording continues with a fresh encoder; bindings stay.
func (r *Renderer) Flush() {
	if r.frame.encoder == nil {
		r.reclaim()
		return
	}
	r.submitEncoder()
	r.reclaim()
	if err := r.beginEncoder(); err != nil {
		r.warn("flush: %v", err)
	}
}

// Finish implements rhi.Renderer.
func (r *Renderer) Finish() {
	r.Flush()
	if err := r.dev.waitIdle(); err != nil && !errors.Is(err, ErrDeviceLost) {
		r.warn("wait idle: %v", err)
	}
	for _, s := range r.frame.pending {
		r.dev.freeCommandBuffer(s.cb)
	}
	r.frame.pending = nil
}

// inScene reports whether a scene is being recorded, warning once per
// command otherwise.
func (r *Renderer) inScene(cmd string) bool {
	if r.frame.encoder != nil {
		return true
	}
	r.warnOnce("outside:"+cmd, "%s outside BeginScene/EndScene ignored", cmd)
	return false
}

func loadOp(clear bool) gputypes.LoadOp {
	if clear {
		return gputypes.LoadOpClear
	}
	return gputypes.LoadOpLoad
}

type clearValues struct {
	flags   rhi.ClearFlags
	color   [4]float32
	depth   float32
	stencil uint32
}

// beginPass starts a render pass on the bound target and re-applies the
// bindings, which do not survive a pass boundary.
func (r *Renderer) beginPass(c clearValues) bool {
	f := &r.frame
	rt, ok := f.target.Get().(target)
	if !f.target.Valid() || !ok {
		r.warnOnce("no-target", "no render target bound, commands skipped")
		return false
	}
	colors, depth := rt.attachments()
	desc := &hal.RenderPassDescriptor{Label: "Scene"}
	for _, v := range colors {
		desc.ColorAttachments = append(desc.ColorAttachments, hal.RenderPassColorAttachment{
			View:    v,
			LoadOp:  loadOp(c.flags&rhi.ClearColor != 0),
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(c.color[0]), G: float64(c.color[1]),
				B: float64(c.color[2]), A: float64(c.color[3]),
			},
		})
	}
	if depth != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              depth,
			DepthLoadOp:       loadOp(c.flags&rhi.ClearDepth != 0),
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   c.depth,
			StencilLoadOp:     loadOp(c.flags&rhi.ClearStencil != 0),
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: c.stencil,
		}
	}
	f.pass = f.encoder.BeginRenderPass(desc)

	if len(f.viewports) > 0 {
		r.applyViewport(f.viewports[0])
	} else {
		r.applyViewport(rhi.Viewport{Width: float32(rt.Width()), Height: float32(rt.Height()), MaxDepth: 1})
	}
	if len(f.scissors) > 0 {
		r.applyScissor(f.scissors[0])
	}
	if ps, ok := f.pipeline.Get().(*pipelineState); ok && ps.native != nil {
		f.pass.SetPipeline(ps.native)
	}
	for i := range f.groups {
		if g, ok := f.groups[i].Get().(*resourceGroup); ok && g.group != nil {
			f.pass.SetBindGroup(uint32(i), g.group, nil) // #nosec G115 -- small index
		}
	}
	if va, ok := f.vertexArray.Get().(*vertexArray); ok {
		r.applyVertexArray(va)
	}
	return true
}

// pass reports whether a render pass is open, starting one when needed.
func (r *Renderer) pass(cmd string) bool {
	if !r.inScene(cmd) {
		return false
	}
	if r.frame.pass != nil {
		return true
	}
	return r.beginPass(clearValues{})
}

func (r *Renderer) applyViewport(v rhi.Viewport) {
	if r.frame.pass != nil {
		r.frame.pass.SetViewport(v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth)
	}
}

func (r *Renderer) applyScissor(s rhi.ScissorRectangle) {
	if r.frame.pass != nil {
		// #nosec G115 -- clamped to non-negative
		r.frame.pass.SetScissorRect(uint32(max(s.X, 0)), uint32(max(s.Y, 0)), uint32(max(s.Width, 0)), uint32(max(s.Height, 0)))
	}
}

func (r *Renderer) applyVertexArray(va *vertexArray) {
	p := r.frame.pass
	if p == nil {
		return
	}
	for i, vb := range va.buffers {
		if b, ok := vb.Buffer.(*buffer); ok && b.native != nil {
			p.SetVertexBuffer(uint32(i), b.native, vb.Offset) // #nosec G115 -- small index
		}
	}
	if va.index != nil && va.index.native != nil {
		p.SetIndexBuffer(va.index.native, va.index.indexFormat.GPU(), 0)
	}
}

// SetGraphicsRootSignature implements rhi.Renderer. Changing the root
// signature unbinds every resource group.
func (r *Renderer) SetGraphicsRootSignature(rs rhi.RootSignature) {
	if !r.inScene("SetGraphicsRootSignature") || !r.owns(rs, "SetGraphicsRootSignature") {
		return
	}
	f := &r.frame
	if f.rootSig.Valid() && f.rootSig.Get() == rs {
		return
	}
	f.unbindGroups()
	if rs == nil {
		f.rootSig.Reset()
		return
	}
	f.rootSig.Set(rs)
}

// SetPipelineState implements rhi.Renderer.
func (r *Renderer) SetPipelineState(ps rhi.PipelineState) {
	if !r.inScene("SetPipelineState") || !r.owns(ps, "SetPipelineState") {
		return
	}
	f := &r.frame
	if ps == nil {
		f.pipeline.Reset()
		return
	}
	cps, ok := ps.(*pipelineState)
	if !ok {
		r.warn("SetPipelineState: foreign pipeline state implementation")
		return
	}
	f.pipeline.Set(ps)
	cps.bind()
	if f.pass != nil && cps.native != nil {
		f.pass.SetPipeline(cps.native)
	}
}

// SetResourceGroup implements rhi.Renderer. The group must have been
// created from the bound root signature.
func (r *Renderer) SetResourceGroup(index int, group rhi.ResourceGroup) {
	if !r.inScene("SetResourceGroup") || !r.owns(group, "SetResourceGroup") {
		return
	}
	f := &r.frame
	if index < 0 {
		r.warn("SetResourceGroup: negative index %d", index)
		return
	}
	var g *resourceGroup
	if group != nil {
		cg, ok := group.(*resourceGroup)
		if !ok {
			r.warn("SetResourceGroup: foreign resource group implementation")
			return
		}
		if !f.rootSig.Valid() || f.rootSig.Get() != rhi.RootSignature(cg.rootSig) {
			r.warn("SetResourceGroup: group %d was not created from the bound root signature", index)
			return
		}
		if cg.index != index {
			r.warn("SetResourceGroup: group of root parameter %d bound at %d", cg.index, index)
			return
		}
		g = cg
	}
	for len(f.groups) <= index {
		f.groups = append(f.groups, rhi.Handle[rhi.ResourceGroup]{})
	}
	if g == nil {
		f.groups[index].Reset()
		return
	}
	f.groups[index].Set(group)
	g.bindSamplers()
	if f.pass != nil && g.group != nil {
		f.pass.SetBindGroup(uint32(index), g.group, nil) // #nosec G115 -- checked above
	}
}

// SetVertexArray implements rhi.Renderer.
func (r *Renderer) SetVertexArray(va rhi.VertexArray) {
	if !r.inScene("SetVertexArray") || !r.owns(va, "SetVertexArray") {
		return
	}
	if va == nil {
		r.frame.vertexArray.Reset()
		return
	}
	cva, ok := va.(*vertexArray)
	if !ok {
		r.warn("SetVertexArray: foreign vertex array implementation")
		return
	}
	r.frame.vertexArray.Set(va)
	r.applyVertexArray(cva)
}

// SetViewports implements rhi.Renderer. Viewports beyond the backend
// limit are dropped with a warning.
func (r *Renderer) SetViewports(viewports []rhi.Viewport) {
	if !r.inScene("SetViewports") {
		return
	}
	if limit := max(r.profile.Caps.MaxViewports, 1); len(viewports) > limit {
		r.warnOnce("viewports", "%d viewports requested, %s supports %d", len(viewports), r.profile.Name, limit)
		viewports = viewports[:limit]
	}
	r.frame.viewports = append(r.frame.viewports[:0], viewports...)
	for _, v := range viewports {
		r.trace(r.profile.Calls.Viewport, F32(v.X), F32(v.Y), F32(v.Width), F32(v.Height), F32(v.MinDepth), F32(v.MaxDepth))
	}
	if len(viewports) > 0 {
		r.applyViewport(viewports[0])
	}
}

// SetScissorRectangles implements rhi.Renderer.
func (r *Renderer) SetScissorRectangles(rects []rhi.ScissorRectangle) {
	if !r.inScene("SetScissorRectangles") {
		return
	}
	if limit := max(r.profile.Caps.MaxViewports, 1); len(rects) > limit {
		r.warnOnce("scissors", "%d scissor rectangles requested, %s supports %d", len(rects), r.profile.Name, limit)
		rects = rects[:limit]
	}
	r.frame.scissors = append(r.frame.scissors[:0], rects...)
	for _, s := range rects {
		// #nosec G115 -- sign is kept in the trace
		r.trace(r.profile.Calls.Scissor, uint64(uint32(s.X)), uint64(uint32(s.Y)), uint64(uint32(s.Width)), uint64(uint32(s.Height)))
	}
	if len(rects) > 0 {
		r.applyScissor(rects[0])
	}
}

// SetRenderTarget implements rhi.Renderer. The next draw or clear starts
// a render pass on it.
func (r *Renderer) SetRenderTarget(rt rhi.RenderTarget) {
	if !r.inScene("SetRenderTarget") || !r.owns(rt, "SetRenderTarget") {
		return
	}
	f := &r.frame
	f.endPass()
	if rt == nil {
		f.target.Reset()
		return
	}
	if _, ok := rt.(target); !ok {
		r.warn("SetRenderTarget: foreign render target implementation")
		return
	}
	f.target.Set(rt)
}

// Clear implements rhi.Renderer. It restarts the render pass on the bound
// target with clearing load operations.
func (r *Renderer) Clear(flags rhi.ClearFlags, color [4]float32, depth float32, stencil uint32) {
	if !r.inScene("Clear") {
		return
	}
	r.frame.endPass()
	if !r.beginPass(clearValues{flags: flags, color: color, depth: depth, stencil: stencil}) {
		return
	}
	r.trace(r.profile.Calls.Clear, uint64(flags),
		F32(color[0]), F32(color[1]), F32(color[2]), F32(color[3]), F32(depth), uint64(stencil))
}

func (r *Renderer) readyToDraw(cmd string) bool {
	if !r.pass(cmd) {
		return false
	}
	if !r.frame.pipeline.Valid() {
		r.warnOnce("no-pipeline", "no pipeline state bound, draws skipped")
		return false
	}
	return true
}

// Draw implements rhi.Renderer.
func (r *Renderer) Draw(args rhi.DrawArguments) {
	if !r.readyToDraw("Draw") {
		return
	}
	r.trace(r.profile.Calls.Draw, uint64(args.VertexCountPerInstance), uint64(args.InstanceCount),
		uint64(args.StartVertexLocation), uint64(args.StartInstanceLocation))
	r.frame.pass.Draw(args.VertexCountPerInstance, args.InstanceCount, args.StartVertexLocation, args.StartInstanceLocation)
	r.stats.draws.Add(1)
}

func (r *Renderer) indexBound() bool {
	va, ok := r.frame.vertexArray.Get().(*vertexArray)
	if !ok || va.index == nil {
		r.warnOnce("no-index", "indexed draw without an index buffer skipped")
		return false
	}
	return true
}

// DrawIndexed implements rhi.Renderer.
func (r *Renderer) DrawIndexed(args rhi.DrawIndexedArguments) {
	if !r.readyToDraw("DrawIndexed") || !r.indexBound() {
		return
	}
	if args.BaseVertexLocation != 0 && !r.profile.Caps.BaseVertex {
		r.warnOnce("base-vertex", "base vertex is not supported, draw skipped")
		return
	}
	// #nosec G115 -- two's complement in the trace
	r.trace(r.profile.Calls.DrawIndexed, uint64(args.IndexCountPerInstance), uint64(args.InstanceCount),
		uint64(args.StartIndexLocation), uint64(uint32(args.BaseVertexLocation)), uint64(args.StartInstanceLocation))
	r.frame.pass.DrawIndexed(args.IndexCountPerInstance, args.InstanceCount, args.StartIndexLocation,
		args.BaseVertexLocation, args.StartInstanceLocation)
	r.stats.draws.Add(1)
}

func decodeDraw(b []byte) rhi.DrawArguments {
	return rhi.DrawArguments{
		VertexCountPerInstance: binary.LittleEndian.Uint32(b[0:]),
		InstanceCount:          binary.LittleEndian.Uint32(b[4:]),
		StartVertexLocation:    binary.LittleEndian.Uint32(b[8:]),
		StartInstanceLocation:  binary.LittleEndian.Uint32(b[12:]),
	}
}

func decodeDrawIndexed(b []byte) rhi.DrawIndexedArguments {
	return rhi.DrawIndexedArguments{
		IndexCountPerInstance: binary.LittleEndian.Uint32(b[0:]),
		InstanceCount:         binary.LittleEndian.Uint32(b[4:]),
		StartIndexLocation:    binary.LittleEndian.Uint32(b[8:]),
		BaseVertexLocation:    int32(binary.LittleEndian.Uint32(b[12:])), // #nosec G115 -- two's complement layout
		StartInstanceLocation: binary.LittleEndian.Uint32(b[16:]),
	}
}

// DrawIndirect implements rhi.Renderer. Backends without native indirect
// drawing read the records from the buffer's host copy and issue direct
// draws.
func (r *Renderer) DrawIndirect(buf rhi.IndirectBuffer, offset uint64, count int, indexed bool) {
	if count <= 0 {
		return
	}
	b, ok := r.asBuffer(buf, rhi.ResourceTypeIndirectBuffer, "DrawIndirect")
	if !ok {
		return
	}
	stride := uint64(rhi.DrawArgumentsSize)
	if indexed {
		stride = rhi.DrawIndexedArgumentsSize
	}
	if size := uint64(b.size); offset > size || uint64(count) > (size-offset)/stride {
		r.warn("DrawIndirect: %d records at offset %d exceed %d bytes", count, offset, b.size)
		return
	}
	if !r.profile.Caps.DrawIndirect {
		for i := 0; i < count; i++ {
			rec := b.shadow[offset+uint64(i)*stride:]
			if indexed {
				r.DrawIndexed(decodeDrawIndexed(rec))
			} else {
				r.Draw(decodeDraw(rec))
			}
		}
		return
	}
	if !r.readyToDraw("DrawIndirect") || (indexed && !r.indexBound()) {
		return
	}
	call := r.profile.Calls.DrawIndirect
	if indexed {
		call = r.profile.Calls.DrawIndexedIndirect
	}
	for i := 0; i < count; i++ {
		at := offset + uint64(i)*stride
		r.trace(call, at)
		if indexed {
			r.frame.pass.DrawIndexedIndirect(b.native, at)
		} else {
			r.frame.pass.DrawIndirect(b.native, at)
		}
		r.stats.draws.Add(1)
	}
}

// CopyUniformBufferData implements rhi.Renderer.
func (r *Renderer) CopyUniformBufferData(buf rhi.UniformBuffer, data []byte) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	if buf == nil {
		return fmt.Errorf("%w: nil uniform buffer", rhi.ErrInvalidDescriptor)
	}
	if !r.owns(buf, "CopyUniformBufferData") {
		return rhi.ErrWrongRenderer
	}
	b, ok := r.asBuffer(buf, rhi.ResourceTypeUniformBuffer, "CopyUniformBufferData")
	if !ok {
		return fmt.Errorf("%w: not a uniform buffer", rhi.ErrInvalidDescriptor)
	}
	return b.CopyDataFrom(data)
}

func (r *Renderer) debugLabels() bool {
	if !r.profile.Caps.DebugLabels {
		r.warnOnce("markers", "debug markers are not supported, ignored")
		return false
	}
	return true
}

// SetDebugMarker implements rhi.Renderer.
func (r *Renderer) SetDebugMarker(name string) {
	if !r.inScene("SetDebugMarker") || !r.debugLabels() {
		return
	}
	r.trace(r.profile.Calls.Marker, uint64(len(name)))
}

// BeginDebugEvent implements rhi.Renderer.
func (r *Renderer) BeginDebugEvent(name string) {
	if !r.inScene("BeginDebugEvent") || !r.debugLabels() {
		return
	}
	r.frame.events++
	r.trace(r.profile.Calls.BeginEvent, uint64(len(name)))
}

// EndDebugEvent implements rhi.Renderer.
func (r *Renderer) EndDebugEvent() {
	if !r.inScene("EndDebugEvent") || !r.debugLabels() {
		return
	}
	if r.frame.events == 0 {
		r.warn("EndDebugEvent without BeginDebugEvent")
		return
	}
	r.frame.events--
	r.trace(r.profile.Calls.EndEvent)
}
