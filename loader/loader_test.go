package loader

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend/null"
)

func newRenderer(t *testing.T) rhi.Renderer {
	t.Helper()
	r, err := null.New(rhi.WithLog(&rhi.BufferLog{}))
	if err != nil {
		t.Fatalf("null.New() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func TestDecodeImage(t *testing.T) {
	src := checker(4, 2)
	encoders := map[string]func(*bytes.Buffer) error{
		"png":  func(b *bytes.Buffer) error { return png.Encode(b, src) },
		"bmp":  func(b *bytes.Buffer) error { return bmp.Encode(b, src) },
		"tiff": func(b *bytes.Buffer) error { return tiff.Encode(b, src, nil) },
	}
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := encode(&buf); err != nil {
				t.Fatal(err)
			}
			img, format, err := DecodeImage(buf.Bytes())
			if err != nil {
				t.Fatalf("DecodeImage() error = %v", err)
			}
			if format != name {
				t.Errorf("format = %q", format)
			}
			if img.Rect.Dx() != 4 || img.Rect.Dy() != 2 {
				t.Fatalf("size = %v", img.Rect)
			}
			if got := img.RGBAAt(1, 0); got != (color.RGBA{B: 255, A: 255}) {
				t.Errorf("pixel (1,0) = %v", got)
			}
		})
	}
}

func TestDecodeImageErrors(t *testing.T) {
	if _, _, err := DecodeImage(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("empty: error = %v", err)
	}
	if _, _, err := DecodeImage([]byte("not an image")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("garbage: error = %v", err)
	}
}

func TestMipChain(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	chain := MipChain(img)
	if len(chain) != 128+32+8+4 {
		t.Fatalf("len = %d, want 172", len(chain))
	}
	for i, v := range chain {
		if v != 200 {
			t.Fatalf("chain[%d] = %d, want uniform 200", i, v)
		}
	}
	if got := len(MipChain(image.NewRGBA(image.Rect(0, 0, 1, 1)))); got != 4 {
		t.Errorf("1x1 chain len = %d", got)
	}
}

func TestDownsampleAverages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(1, 1, color.RGBA{R: 255, A: 255})
	got := downsample(img).RGBAAt(0, 0)
	if got.R != 128 || got.A != 128 {
		t.Errorf("average = %v", got)
	}
}

func TestFit(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	if got := fit(img, 10).Rect; got.Dx() != 10 || got.Dy() != 5 {
		t.Errorf("fit = %v", got)
	}
	if fit(img, 200) != img {
		t.Error("small image rescaled")
	}
}

func TestTexture2D(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer
	if err := png.Encode(&buf, checker(8, 4)); err != nil {
		t.Fatal(err)
	}
	tex, err := Texture2D(r, buf.Bytes(), WithMipmaps(), WithSRGB())
	if err != nil {
		t.Fatalf("Texture2D() error = %v", err)
	}
	if tex.Width() != 8 || tex.Height() != 4 {
		t.Errorf("size = %dx%d", tex.Width(), tex.Height())
	}
	if tex.MipLevels() != 4 || !tex.Flags().Has(rhi.TextureFlagDataContainsMipmaps) {
		t.Errorf("mip levels %d flags %v", tex.MipLevels(), tex.Flags())
	}
	if tex.Format() != gputypes.TextureFormatRGBA8UnormSrgb {
		t.Errorf("format = %v", tex.Format())
	}

	small, err := ImageTexture2D(r, checker(64, 32), WithMaxSize(16))
	if err != nil {
		t.Fatal(err)
	}
	if small.Width() != 16 || small.Height() != 8 || small.MipLevels() != 1 {
		t.Errorf("scaled texture %dx%d levels %d", small.Width(), small.Height(), small.MipLevels())
	}
}

func TestTextureFile(t *testing.T) {
	r := newRenderer(t)
	path := filepath.Join(t.TempDir(), "stone.bmp")
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, checker(2, 2)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	tex, err := TextureFile(r, path)
	if err != nil {
		t.Fatalf("TextureFile() error = %v", err)
	}
	if tex.DebugName() != "stone.bmp" {
		t.Errorf("DebugName() = %q", tex.DebugName())
	}
	if _, err := TextureFile(r, filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("missing file accepted")
	}
}
