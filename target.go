package rhi

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// RenderTarget is anything SetRenderTarget accepts.
type RenderTarget interface {
	Resource

	// Width and Height return the target size in physical pixels.
	Width() int
	Height() int
	ColorFormats() []gputypes.TextureFormat
	// DepthStencilFormat is TextureFormatUndefined without a depth buffer.
	DepthStencilFormat() gputypes.TextureFormat
}

// SwapChainDescriptor describes a swap chain to create.
type SwapChainDescriptor struct {
	// Format defaults to BGRA8Unorm.
	Format gputypes.TextureFormat
	// DepthStencilFormat adds a depth buffer when defined.
	DepthStencilFormat gputypes.TextureFormat
}

// SwapChain is the presentable render target of a window.
// The swap chain renders into backbuffer textures sized to the window's
// physical size; presenting hands the finished frame to the host window.
type SwapChain interface {
	RenderTarget

	Window() gpucontext.WindowProvider
	// Resize re-reads the window size and recreates the backbuffers when
	// it changed.
	Resize() error
	// Present finishes the current frame and asks the host for a redraw.
	Present() error
	// Frames returns the number of presented frames.
	Frames() uint64
}

// Framebuffer is an off-screen render target built from textures.
// It holds a reference to every attachment.
type Framebuffer interface {
	RenderTarget

	ColorTextures() []Texture2D
	DepthStencilTexture() Texture2D
}
