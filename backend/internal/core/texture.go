package core

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/rhi"
)

// texture is shared by the four texture types. Cube textures are 2D
// textures with six array layers.
type texture struct {
	resource
	native hal.Texture
	view   hal.TextureView
	format gputypes.TextureFormat
	flags  rhi.TextureFlags
	mips   int
	width  int
	height int
	depth  int
	layers int
}

// Format implements rhi.Texture.
func (t *texture) Format() gputypes.TextureFormat { return t.format }

// Flags implements rhi.Texture.
func (t *texture) Flags() rhi.TextureFlags { return t.flags }

// MipLevels implements rhi.Texture.
func (t *texture) MipLevels() int { return t.mips }

// base gives access to the shared texture part of every texture type.
func (t *texture) base() *texture { return t }

type textured interface{ base() *texture }

func (t *texture) release() {
	t.r.dev.releaseView(&t.view)
	t.r.dev.releaseTexture(&t.native)
}

func mipExtent(v, level int) int {
	return max(v>>level, 1)
}

// upload writes a w*h*d region of one mip level starting at (x, y, z).
// For cube textures z selects the face.
func (t *texture) upload(level, x, y, z, w, h, d int, data []byte) error {
	if t.IsDestroyed() || t.native == nil {
		return rhi.ErrResourceDestroyed
	}
	bpp := rhi.BytesPerPixel(t.format)
	if bpp == 0 {
		return fmt.Errorf("%w: upload to %v texture", rhi.ErrUnsupported, t.format)
	}
	if want := w * h * d * bpp; len(data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", rhi.ErrInvalidSize, len(data), want)
	}
	// #nosec G115 -- extents were validated against the texture size
	err := t.r.dev.writeTexture(
		&hal.ImageCopyTexture{
			Texture:  t.native,
			MipLevel: uint32(level),
			Origin:   hal.Origin3D{X: uint32(x), Y: uint32(y), Z: uint32(z)},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{BytesPerRow: uint32(w * bpp), RowsPerImage: uint32(h)},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: uint32(d)},
	)
	if err != nil {
		return fmt.Errorf("rhi: write %s: %w", t.kind, err)
	}
	return nil
}

// levelSize returns the byte size of one layer of a mip level.
func (t *texture) levelSize(level int) int {
	return mipExtent(t.width, level) * mipExtent(t.height, level) * mipExtent(t.depth, level) * rhi.BytesPerPixel(t.format)
}

// fill uploads initial data. With TextureFlagDataContainsMipmaps data
// holds every level, largest first, each level holding all layers.
// Otherwise it holds level 0 and the chain is generated when asked for.
func (t *texture) fill(data []byte) error {
	levels := 1
	if t.flags.Has(rhi.TextureFlagDataContainsMipmaps) {
		levels = t.mips
	}
	off := 0
	for level := range levels {
		n := t.levelSize(level)
		for layer := range t.layers {
			if off+n > len(data) {
				return fmt.Errorf("%w: texture data ends in level %d layer %d", rhi.ErrInvalidSize, level, layer)
			}
			if err := t.uploadLevel(level, layer, data[off:off+n]); err != nil {
				return err
			}
			off += n
		}
	}
	if off != len(data) {
		return fmt.Errorf("%w: %d trailing texture bytes", rhi.ErrInvalidSize, len(data)-off)
	}
	if levels == 1 && t.mips > 1 {
		for layer := range t.layers {
			n := t.levelSize(0)
			if err := t.generateMipmaps(layer, data[layer*n:(layer+1)*n]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *texture) uploadLevel(level, layer int, data []byte) error {
	return t.upload(level, 0, 0, layer,
		mipExtent(t.width, level), mipExtent(t.height, level), mipExtent(t.depth, level), data)
}

func mipmappable(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

// generateMipmaps downsamples level 0 of one layer on the host and
// uploads the chain. Only 8-bit four channel 2D textures are supported;
// others keep undefined lower levels.
func (t *texture) generateMipmaps(layer int, level0 []byte) error {
	if t.depth > 1 || !mipmappable(t.format) {
		t.r.warnOnce("mipgen "+t.format.String(), "mipmap generation is not supported for %v textures", t.format)
		return nil
	}
	var src image.Image = &image.RGBA{Pix: level0, Stride: t.width * 4, Rect: image.Rect(0, 0, t.width, t.height)}
	for level := 1; level < t.mips; level++ {
		dst := image.NewRGBA(image.Rect(0, 0, mipExtent(t.width, level), mipExtent(t.height, level)))
		draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		if err := t.uploadLevel(level, layer, dst.Pix); err != nil {
			return err
		}
		src = dst
	}
	return nil
}

var textureViewDimensions = map[rhi.ResourceType]gputypes.TextureViewDimension{
	rhi.ResourceTypeTexture1D:   gputypes.TextureViewDimension1D,
	rhi.ResourceTypeTexture2D:   gputypes.TextureViewDimension2D,
	rhi.ResourceTypeTexture3D:   gputypes.TextureViewDimension3D,
	rhi.ResourceTypeTextureCube: gputypes.TextureViewDimensionCube,
}

// newTexture creates the hal texture and view behind t.
func (r *Renderer) newTexture(t *texture, kind rhi.ResourceType, dim gputypes.TextureDimension, layers int, desc rhi.TextureDescriptor) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	if err := desc.Validate(dim); err != nil {
		return err
	}
	if limit := r.profile.Caps.MaxTextureDimension; limit > 0 && max(desc.Width, desc.Height, desc.Depth) > limit {
		return fmt.Errorf("%w: texture extent exceeds %d", rhi.ErrInvalidSize, limit)
	}
	t.format = desc.Format
	t.flags = desc.Flags
	t.width = desc.Width
	t.height = max(desc.Height, 1)
	t.depth = max(desc.Depth, 1)
	t.layers = layers
	if dim != gputypes.TextureDimension3D {
		t.depth = 1
	}
	if dim == gputypes.TextureDimension1D {
		t.height = 1
	}
	t.mips = 1
	if desc.Flags.Has(rhi.TextureFlagGenerateMipmaps) || desc.Flags.Has(rhi.TextureFlagDataContainsMipmaps) {
		t.mips = rhi.MipLevelCount(t.width, t.height, t.depth)
	}

	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc
	if desc.Flags.Has(rhi.TextureFlagRenderTarget) || desc.Format.IsDepthStencil() {
		usage |= gputypes.TextureUsageRenderAttachment
	}
	depthOrLayers := t.depth
	if layers > 1 {
		depthOrLayers = layers
	}
	// #nosec G115 -- extents are bounded by MaxTextureDimension
	native, err := create(r.dev, func(d hal.Device) (hal.Texture, error) {
		return d.CreateTexture(&hal.TextureDescriptor{
			Label:         kind.String(),
			Size:          hal.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: uint32(depthOrLayers)},
			MipLevelCount: uint32(t.mips),
			SampleCount:   1,
			Dimension:     dim,
			Format:        desc.Format,
			Usage:         usage,
		})
	})
	if err != nil {
		return fmt.Errorf("rhi: create %s: %w", kind, err)
	}
	t.native = native
	view, err := create(r.dev, func(d hal.Device) (hal.TextureView, error) {
		return d.CreateTextureView(native, &hal.TextureViewDescriptor{
			Label:     kind.String(),
			Format:    desc.Format,
			Dimension: textureViewDimensions[kind],
			Aspect:    gputypes.TextureAspectAll,
		})
	})
	if err != nil {
		r.dev.releaseTexture(&t.native)
		return fmt.Errorf("rhi: create %s view: %w", kind, err)
	}
	t.view = view
	return nil
}

// finish registers t and uploads the initial data.
func (t *texture) finish(r *Renderer, kind rhi.ResourceType, data []byte) error {
	t.init(r, kind, t.release)
	if len(data) == 0 {
		return nil
	}
	if err := t.fill(data); err != nil {
		t.discard()
		return err
	}
	return nil
}

type texture1D struct{ texture }

// Width implements rhi.Texture1D.
func (t *texture1D) Width() int { return t.width }

// UpdateData implements rhi.Texture1D.
func (t *texture1D) UpdateData(data []byte) error {
	return t.uploadLevel(0, 0, data)
}

type texture2D struct{ texture }

// Width implements gpucontext.Texture.
func (t *texture2D) Width() int { return t.width }

// Height implements gpucontext.Texture.
func (t *texture2D) Height() int { return t.height }

// UpdateData implements gpucontext.TextureUpdater. Textures created with
// TextureFlagGenerateMipmaps regenerate their chain.
func (t *texture2D) UpdateData(data []byte) error {
	if err := t.uploadLevel(0, 0, data); err != nil {
		return err
	}
	if t.mips > 1 && t.flags.Has(rhi.TextureFlagGenerateMipmaps) {
		return t.generateMipmaps(0, data)
	}
	return nil
}

// UpdateRegion implements gpucontext.TextureRegionUpdater.
func (t *texture2D) UpdateRegion(x, y, w, h int, data []byte) error {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > t.width || y+h > t.height {
		return fmt.Errorf("%w: region (%d,%d %dx%d) outside %dx%d texture", rhi.ErrInvalidSize, x, y, w, h, t.width, t.height)
	}
	return t.upload(0, x, y, 0, w, h, 1, data)
}

type texture3D struct{ texture }

// Width implements rhi.Texture3D.
func (t *texture3D) Width() int { return t.width }

// Height implements rhi.Texture3D.
func (t *texture3D) Height() int { return t.height }

// Depth implements rhi.Texture3D.
func (t *texture3D) Depth() int { return t.depth }

// UpdateData implements rhi.Texture3D.
func (t *texture3D) UpdateData(data []byte) error {
	return t.uploadLevel(0, 0, data)
}

type textureCube struct{ texture }

// Size implements rhi.TextureCube.
func (t *textureCube) Size() int { return t.width }

// UpdateFace implements rhi.TextureCube.
func (t *textureCube) UpdateFace(face rhi.CubeFace, data []byte) error {
	if face >= rhi.NumCubeFaces {
		return fmt.Errorf("%w: cube face %d", rhi.ErrInvalidDescriptor, face)
	}
	return t.uploadLevel(0, int(face), data)
}

// CreateTexture1D implements rhi.Renderer.
func (r *Renderer) CreateTexture1D(desc rhi.TextureDescriptor) (rhi.Texture1D, error) {
	t := &texture1D{}
	if err := r.newTexture(&t.texture, rhi.ResourceTypeTexture1D, gputypes.TextureDimension1D, 1, desc); err != nil {
		return nil, err
	}
	if err := t.finish(r, rhi.ResourceTypeTexture1D, desc.Data); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTexture2D implements rhi.Renderer.
func (r *Renderer) CreateTexture2D(desc rhi.TextureDescriptor) (rhi.Texture2D, error) {
	t := &texture2D{}
	if err := r.newTexture(&t.texture, rhi.ResourceTypeTexture2D, gputypes.TextureDimension2D, 1, desc); err != nil {
		return nil, err
	}
	if err := t.finish(r, rhi.ResourceTypeTexture2D, desc.Data); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTexture3D implements rhi.Renderer.
func (r *Renderer) CreateTexture3D(desc rhi.TextureDescriptor) (rhi.Texture3D, error) {
	t := &texture3D{}
	if err := r.newTexture(&t.texture, rhi.ResourceTypeTexture3D, gputypes.TextureDimension3D, 1, desc); err != nil {
		return nil, err
	}
	if err := t.finish(r, rhi.ResourceTypeTexture3D, desc.Data); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTextureCube implements rhi.Renderer. Width is the face size.
func (r *Renderer) CreateTextureCube(desc rhi.TextureDescriptor) (rhi.TextureCube, error) {
	desc.Height = desc.Width
	t := &textureCube{}
	if err := r.newTexture(&t.texture, rhi.ResourceTypeTextureCube, gputypes.TextureDimension2D, rhi.NumCubeFaces, desc); err != nil {
		return nil, err
	}
	if err := t.finish(r, rhi.ResourceTypeTextureCube, desc.Data); err != nil {
		return nil, err
	}
	return t, nil
}
