package loader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"os"
	"path/filepath"

	"github.com/gogpu/gputypes"
	_ "golang.org/x/image/bmp" // register BMP
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP

	"github.com/gogpu/rhi"
)

// Loader errors.
var (
	// ErrEmptyData is returned for zero-length input.
	ErrEmptyData = errors.New("loader: empty data")

	// ErrUnsupportedFormat is returned for an unknown image or shader format.
	ErrUnsupportedFormat = errors.New("loader: unsupported format")
)

// DecodeImage decodes data in any registered image format and returns it
// as straight RGBA with its origin at (0, 0), plus the format name.
func DecodeImage(data []byte) (*image.RGBA, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyData
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, "", fmt.Errorf("loader: decode: %w", err)
	}
	return toRGBA(img), format, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Rect, img, b.Min, xdraw.Src)
	return dst
}

// TextureOption configures texture loading.
type TextureOption func(*textureConfig)

type textureConfig struct {
	mipmaps bool
	srgb    bool
	maxSize int
	flags   rhi.TextureFlags
}

// WithMipmaps computes the full mip chain on the CPU and uploads it with
// the texture.
func WithMipmaps() TextureOption {
	return func(c *textureConfig) { c.mipmaps = true }
}

// WithSRGB marks the pixels as sRGB encoded.
func WithSRGB() TextureOption {
	return func(c *textureConfig) { c.srgb = true }
}

// WithMaxSize scales images whose larger side exceeds size down to it,
// keeping the aspect ratio.
func WithMaxSize(size int) TextureOption {
	return func(c *textureConfig) { c.maxSize = size }
}

// WithFlags adds texture creation flags.
func WithFlags(flags rhi.TextureFlags) TextureOption {
	return func(c *textureConfig) { c.flags |= flags }
}

// Texture2D decodes data and creates a 2D texture from it.
func Texture2D(r rhi.Renderer, data []byte, opts ...TextureOption) (rhi.Texture2D, error) {
	img, _, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return ImageTexture2D(r, img, opts...)
}

// TextureFile loads an image file into a 2D texture. The file name becomes
// the texture's debug name.
func TextureFile(r rhi.Renderer, path string, opts ...TextureOption) (rhi.Texture2D, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("loader: read texture: %w", err)
	}
	tex, err := Texture2D(r, data, opts...)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", filepath.Base(path), err)
	}
	tex.SetDebugName(filepath.Base(path))
	return tex, nil
}

// ImageTexture2D creates a 2D texture from a decoded image.
func ImageTexture2D(r rhi.Renderer, img image.Image, opts ...TextureOption) (rhi.Texture2D, error) {
	var cfg textureConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	rgba := toRGBA(img)
	if cfg.maxSize > 0 {
		rgba = fit(rgba, cfg.maxSize)
	}
	desc := rhi.TextureDescriptor{
		Width:  rgba.Rect.Dx(),
		Height: rgba.Rect.Dy(),
		Format: gputypes.TextureFormatRGBA8Unorm,
		Flags:  cfg.flags,
		Data:   rgba.Pix,
	}
	if cfg.srgb {
		desc.Format = gputypes.TextureFormatRGBA8UnormSrgb
	}
	if cfg.mipmaps {
		desc.Flags |= rhi.TextureFlagDataContainsMipmaps
		desc.Data = MipChain(rgba)
	}
	return r.CreateTexture2D(desc)
}

// fit scales img so that neither side exceeds size.
func fit(img *image.RGBA, size int) *image.RGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w <= size && h <= size {
		return img
	}
	if w >= h {
		w, h = size, max(1, h*size/w)
	} else {
		w, h = max(1, w*size/h), size
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Rect, img, img.Rect, xdraw.Src, nil)
	return dst
}
