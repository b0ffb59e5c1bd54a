package core

import (
	"fmt"
	"math"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// target is implemented by swap chains and framebuffers.
type target interface {
	rhi.RenderTarget
	attachments() (colors []hal.TextureView, depth hal.TextureView)
}

// backbuffer is one hal texture with its view.
type backbuffer struct {
	tex  hal.Texture
	view hal.TextureView
}

func (r *Renderer) newBackbuffer(label string, w, h int, format gputypes.TextureFormat) (backbuffer, error) {
	var bb backbuffer
	// #nosec G115 -- window sizes are small positive values
	tex, err := create(r.dev, func(d hal.Device) (hal.Texture, error) {
		return d.CreateTexture(&hal.TextureDescriptor{
			Label:         label,
			Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        format,
			Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
		})
	})
	if err != nil {
		return bb, err
	}
	bb.tex = tex
	view, err := create(r.dev, func(d hal.Device) (hal.TextureView, error) {
		return d.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label:     label,
			Format:    format,
			Dimension: gputypes.TextureViewDimension2D,
			Aspect:    gputypes.TextureAspectAll,
		})
	})
	if err != nil {
		r.dev.releaseTexture(&bb.tex)
		return bb, err
	}
	bb.view = view
	return bb, nil
}

func (r *Renderer) releaseBackbuffer(bb *backbuffer) {
	r.dev.releaseView(&bb.view)
	r.dev.releaseTexture(&bb.tex)
}

type swapChain struct {
	resource
	window   gpucontext.WindowProvider
	format   gputypes.TextureFormat
	dsFormat gputypes.TextureFormat
	width    int
	height   int
	color    backbuffer
	depth    backbuffer
	frames   uint64
}

var _ rhi.SwapChain = (*swapChain)(nil)

// physicalSize converts the window size from logical points to pixels.
func physicalSize(w gpucontext.WindowProvider) (int, int) {
	lw, lh := w.Size()
	sf := w.ScaleFactor()
	if sf <= 0 {
		sf = 1
	}
	return max(int(math.Round(float64(lw)*sf)), 1), max(int(math.Round(float64(lh)*sf)), 1)
}

// Window implements rhi.SwapChain.
func (sc *swapChain) Window() gpucontext.WindowProvider { return sc.window }

// Width implements rhi.RenderTarget.
func (sc *swapChain) Width() int { return sc.width }

// Height implements rhi.RenderTarget.
func (sc *swapChain) Height() int { return sc.height }

// ColorFormats implements rhi.RenderTarget.
func (sc *swapChain) ColorFormats() []gputypes.TextureFormat {
	return []gputypes.TextureFormat{sc.format}
}

// DepthStencilFormat implements rhi.RenderTarget.
func (sc *swapChain) DepthStencilFormat() gputypes.TextureFormat { return sc.dsFormat }

// Frames implements rhi.SwapChain.
func (sc *swapChain) Frames() uint64 { return sc.frames }

func (sc *swapChain) attachments() ([]hal.TextureView, hal.TextureView) {
	return []hal.TextureView{sc.color.view}, sc.depth.view
}

func (sc *swapChain) release() {
	sc.r.releaseBackbuffer(&sc.color)
	sc.r.releaseBackbuffer(&sc.depth)
}

func (sc *swapChain) allocate(w, h int) error {
	color, err := sc.r.newBackbuffer("SwapChain", w, h, sc.format)
	if err != nil {
		return fmt.Errorf("rhi: create backbuffer: %w", err)
	}
	var depth backbuffer
	if sc.dsFormat != gputypes.TextureFormatUndefined {
		depth, err = sc.r.newBackbuffer("SwapChainDepth", w, h, sc.dsFormat)
		if err != nil {
			sc.r.releaseBackbuffer(&color)
			return fmt.Errorf("rhi: create depth backbuffer: %w", err)
		}
	}
	sc.release()
	sc.color, sc.depth = color, depth
	sc.width, sc.height = w, h
	return nil
}

// Resize implements rhi.SwapChain. A bound swap chain ends the current
// render pass before its backbuffers are replaced.
func (sc *swapChain) Resize() error {
	if sc.IsDestroyed() {
		return rhi.ErrResourceDestroyed
	}
	w, h := physicalSize(sc.window)
	if w == sc.width && h == sc.height {
		return nil
	}
	if sc.r.frame.target.Get() == rhi.RenderTarget(sc) {
		sc.r.frame.endPass()
	}
	if err := sc.allocate(w, h); err != nil {
		return err
	}
	rhi.BackendLogger(sc.r.profile.Name).Debug("rhi: swap chain resized", "width", w, "height", h)
	return nil
}

// Present implements rhi.SwapChain. An open scene is ended first.
func (sc *swapChain) Present() error {
	if sc.IsDestroyed() {
		return rhi.ErrResourceDestroyed
	}
	r := sc.r
	if r.frame.encoder != nil {
		r.EndScene()
	}
	if call := r.profile.Calls.Present; call != "" {
		r.tracer.Call(call, sc.frames)
	}
	sc.frames++
	sc.window.RequestRedraw()
	return nil
}

// CreateSwapChain implements rhi.Renderer.
func (r *Renderer) CreateSwapChain(window gpucontext.WindowProvider, desc rhi.SwapChainDescriptor) (rhi.SwapChain, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if window == nil {
		return nil, fmt.Errorf("%w: swap chain without window", rhi.ErrInvalidDescriptor)
	}
	if desc.Format == gputypes.TextureFormatUndefined {
		desc.Format = gputypes.TextureFormatBGRA8Unorm
	}
	if desc.Format.IsDepthStencil() {
		return nil, fmt.Errorf("%w: swap chain color format %s", rhi.ErrInvalidDescriptor, desc.Format)
	}
	if desc.DepthStencilFormat != gputypes.TextureFormatUndefined && !desc.DepthStencilFormat.IsDepthStencil() {
		return nil, fmt.Errorf("%w: swap chain depth format %s", rhi.ErrInvalidDescriptor, desc.DepthStencilFormat)
	}
	sc := &swapChain{window: window, format: desc.Format, dsFormat: desc.DepthStencilFormat}
	if err := sc.allocate(physicalSize(window)); err != nil {
		return nil, err
	}
	sc.init(r, rhi.ResourceTypeSwapChain, sc.release)
	return sc, nil
}

type framebuffer struct {
	resource
	colors []*texture2D
	depth  *texture2D
	width  int
	height int
}

var _ rhi.Framebuffer = (*framebuffer)(nil)

// Width implements rhi.RenderTarget.
func (fb *framebuffer) Width() int { return fb.width }

// Height implements rhi.RenderTarget.
func (fb *framebuffer) Height() int { return fb.height }

// ColorFormats implements rhi.RenderTarget.
func (fb *framebuffer) ColorFormats() []gputypes.TextureFormat {
	formats := make([]gputypes.TextureFormat, len(fb.colors))
	for i, t := range fb.colors {
		formats[i] = t.format
	}
	return formats
}

// DepthStencilFormat implements rhi.RenderTarget.
func (fb *framebuffer) DepthStencilFormat() gputypes.TextureFormat {
	if fb.depth == nil {
		return gputypes.TextureFormatUndefined
	}
	return fb.depth.format
}

// ColorTextures implements rhi.Framebuffer.
func (fb *framebuffer) ColorTextures() []rhi.Texture2D {
	out := make([]rhi.Texture2D, len(fb.colors))
	for i, t := range fb.colors {
		out[i] = t
	}
	return out
}

// DepthStencilTexture implements rhi.Framebuffer.
func (fb *framebuffer) DepthStencilTexture() rhi.Texture2D {
	if fb.depth == nil {
		return nil
	}
	return fb.depth
}

func (fb *framebuffer) attachments() ([]hal.TextureView, hal.TextureView) {
	views := make([]hal.TextureView, len(fb.colors))
	for i, t := range fb.colors {
		views[i] = t.view
	}
	var depth hal.TextureView
	if fb.depth != nil {
		depth = fb.depth.view
	}
	return views, depth
}

// attachment checks that t can be rendered to and matches the size so far.
func (fb *framebuffer) attachment(t rhi.Texture2D, depth bool) (*texture2D, error) {
	ct, ok := t.(*texture2D)
	if !ok {
		return nil, fmt.Errorf("%w: foreign texture implementation", rhi.ErrInvalidDescriptor)
	}
	if depth != ct.format.IsDepthStencil() {
		return nil, fmt.Errorf("%w: attachment format %s", rhi.ErrInvalidDescriptor, ct.format)
	}
	if !depth && !ct.flags.Has(rhi.TextureFlagRenderTarget) {
		return nil, fmt.Errorf("%w: color attachment without TextureFlagRenderTarget", rhi.ErrInvalidDescriptor)
	}
	if fb.width == 0 {
		fb.width, fb.height = ct.width, ct.height
	} else if ct.width != fb.width || ct.height != fb.height {
		return nil, fmt.Errorf("%w: attachment is %dx%d, framebuffer is %dx%d",
			rhi.ErrInvalidSize, ct.width, ct.height, fb.width, fb.height)
	}
	return ct, nil
}

// CreateFramebuffer implements rhi.Renderer. Attachments must share one
// size; color attachments need TextureFlagRenderTarget.
func (r *Renderer) CreateFramebuffer(color []rhi.Texture2D, depthStencil rhi.Texture2D) (rhi.Framebuffer, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if len(color) > r.profile.Caps.MaxRenderTargets {
		return nil, fmt.Errorf("%w: %d color attachments, %s supports %d",
			rhi.ErrUnsupported, len(color), r.profile.Name, r.profile.Caps.MaxRenderTargets)
	}
	fb := &framebuffer{}
	for i, t := range color {
		if t == nil {
			return nil, fmt.Errorf("%w: color attachment %d is nil", rhi.ErrInvalidDescriptor, i)
		}
		if !r.owns(t, "CreateFramebuffer") {
			continue
		}
		ct, err := fb.attachment(t, false)
		if err != nil {
			return nil, err
		}
		fb.colors = append(fb.colors, ct)
	}
	if depthStencil != nil && r.owns(depthStencil, "CreateFramebuffer") {
		ct, err := fb.attachment(depthStencil, true)
		if err != nil {
			return nil, err
		}
		fb.depth = ct
	}
	if len(fb.colors) == 0 && fb.depth == nil {
		return nil, fmt.Errorf("%w: framebuffer without attachments", rhi.ErrInvalidDescriptor)
	}

	fb.init(r, rhi.ResourceTypeFramebuffer, nil)
	for _, t := range fb.colors {
		fb.hold(t)
	}
	if fb.depth != nil {
		fb.hold(fb.depth)
	}
	return fb, nil
}
