package rhi

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// TextureFlags modify texture creation.
type TextureFlags uint32

const (
	// TextureFlagGenerateMipmaps allocates a full mip chain.
	TextureFlagGenerateMipmaps TextureFlags = 1 << iota
	// TextureFlagDataContainsMipmaps marks initial data holding every mip
	// level, largest first.
	TextureFlagDataContainsMipmaps
	// TextureFlagRenderTarget allows the texture to be a framebuffer attachment.
	TextureFlagRenderTarget
)

// Has reports whether all bits of flag are set.
func (f TextureFlags) Has(flag TextureFlags) bool {
	return f&flag == flag
}

// CubeFace selects one face of a cube texture.
type CubeFace uint8

const (
	CubeFacePositiveX CubeFace = iota
	CubeFaceNegativeX
	CubeFacePositiveY
	CubeFaceNegativeY
	CubeFacePositiveZ
	CubeFaceNegativeZ

	// NumCubeFaces is the number of faces of a cube texture.
	NumCubeFaces = 6
)

// TextureDescriptor describes a texture to create.
// Width is used by every texture type. Height applies to 2D and 3D
// textures and Depth to 3D textures; cube textures use Width for the
// face size.
type TextureDescriptor struct {
	Width  int
	Height int
	Depth  int
	Format gputypes.TextureFormat
	Flags  TextureFlags
	Usage  BufferUsage
	// Data is the optional initial content of mip level 0, or of the whole
	// chain with TextureFlagDataContainsMipmaps. Cube data holds the six
	// faces in CubeFace order.
	Data []byte
}

// MipLevels returns the number of mip levels the descriptor asks for.
func (d TextureDescriptor) MipLevels() int {
	if !d.Flags.Has(TextureFlagGenerateMipmaps) && !d.Flags.Has(TextureFlagDataContainsMipmaps) {
		return 1
	}
	return MipLevelCount(d.Width, d.Height, d.Depth)
}

// Validate reports an unusable descriptor for a texture of dimension dim.
func (d TextureDescriptor) Validate(dim gputypes.TextureDimension) error {
	if d.Width <= 0 {
		return fmt.Errorf("%w: texture width %d", ErrInvalidSize, d.Width)
	}
	if dim != gputypes.TextureDimension1D && d.Height <= 0 {
		return fmt.Errorf("%w: texture height %d", ErrInvalidSize, d.Height)
	}
	if dim == gputypes.TextureDimension3D && d.Depth <= 0 {
		return fmt.Errorf("%w: texture depth %d", ErrInvalidSize, d.Depth)
	}
	if d.Format == gputypes.TextureFormatUndefined {
		return fmt.Errorf("%w: texture format undefined", ErrInvalidDescriptor)
	}
	return nil
}

// MipLevelCount returns the length of a full mip chain for the extent.
func MipLevelCount(width, height, depth int) int {
	m := max(width, height, depth, 1)
	n := 1
	for m > 1 {
		m >>= 1
		n++
	}
	return n
}

// BytesPerPixel returns the texel size of an uncompressed format,
// or 0 for block-compressed and unknown formats.
func BytesPerPixel(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR8Unorm, gputypes.TextureFormatR8Snorm,
		gputypes.TextureFormatR8Uint, gputypes.TextureFormatR8Sint,
		gputypes.TextureFormatStencil8:
		return 1
	case gputypes.TextureFormatR16Unorm, gputypes.TextureFormatR16Snorm,
		gputypes.TextureFormatR16Uint, gputypes.TextureFormatR16Sint,
		gputypes.TextureFormatR16Float, gputypes.TextureFormatRG8Unorm,
		gputypes.TextureFormatRG8Snorm, gputypes.TextureFormatRG8Uint,
		gputypes.TextureFormatRG8Sint, gputypes.TextureFormatDepth16Unorm:
		return 2
	case gputypes.TextureFormatRGBA16Unorm, gputypes.TextureFormatRGBA16Snorm,
		gputypes.TextureFormatRGBA16Uint, gputypes.TextureFormatRGBA16Sint,
		gputypes.TextureFormatRGBA16Float, gputypes.TextureFormatRG32Float,
		gputypes.TextureFormatRG32Uint, gputypes.TextureFormatRG32Sint,
		gputypes.TextureFormatDepth32FloatStencil8:
		return 8
	case gputypes.TextureFormatRGBA32Float, gputypes.TextureFormatRGBA32Uint,
		gputypes.TextureFormatRGBA32Sint:
		return 16
	case gputypes.TextureFormatUndefined:
		return 0
	}
	if f <= gputypes.TextureFormatDepth32Float {
		return 4
	}
	return 0
}

// Texture is the common part of every texture resource.
type Texture interface {
	Resource

	Format() gputypes.TextureFormat
	Flags() TextureFlags
	MipLevels() int
}

// Texture1D is a one-dimensional texture.
type Texture1D interface {
	Texture

	Width() int
	// UpdateData replaces mip level 0.
	UpdateData(data []byte) error
}

// Texture2D is a two-dimensional texture. It can be handed to code that
// consumes gpucontext textures.
type Texture2D interface {
	Texture
	gpucontext.Texture
	gpucontext.TextureUpdater
	gpucontext.TextureRegionUpdater
}

// Texture3D is a volume texture.
type Texture3D interface {
	Texture

	Width() int
	Height() int
	Depth() int
	UpdateData(data []byte) error
}

// TextureCube is a cube map texture.
type TextureCube interface {
	Texture

	// Size returns the width and height of one face.
	Size() int
	// UpdateFace replaces mip level 0 of one face.
	UpdateFace(face CubeFace, data []byte) error
}

var (
	_ gpucontext.Texture              = Texture2D(nil)
	_ gpucontext.TextureUpdater       = Texture2D(nil)
	_ gpucontext.TextureRegionUpdater = Texture2D(nil)
)
