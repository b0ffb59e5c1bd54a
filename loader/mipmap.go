package loader

import "image"

// MipChain returns the pixels of img followed by every smaller mip level
// down to 1x1, each half the size of the previous one. Levels are
// computed with a 2x2 box filter; odd edges repeat the last texel.
func MipChain(img *image.RGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	size := 0
	for lw, lh := w, h; ; lw, lh = max(1, lw/2), max(1, lh/2) {
		size += lw * lh * 4
		if lw == 1 && lh == 1 {
			break
		}
	}
	out := make([]byte, 0, size)
	level := img
	for {
		out = appendPixels(out, level)
		if level.Rect.Dx() == 1 && level.Rect.Dy() == 1 {
			return out
		}
		level = downsample(level)
	}
}

func appendPixels(out []byte, img *image.RGBA) []byte {
	row := img.Rect.Dx() * 4
	for y := range img.Rect.Dy() {
		start := y * img.Stride
		out = append(out, img.Pix[start:start+row]...)
	}
	return out
}

// downsample halves img with a box filter.
func downsample(src *image.RGBA) *image.RGBA {
	sw, sh := src.Rect.Dx(), src.Rect.Dy()
	dw, dh := max(1, sw/2), max(1, sh/2)
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for dy := range dh {
		sy0 := dy * 2
		sy1 := min(sy0+1, sh-1)
		for dx := range dw {
			sx0 := dx * 2
			sx1 := min(sx0+1, sw-1)
			p00 := src.PixOffset(sx0, sy0)
			p10 := src.PixOffset(sx1, sy0)
			p01 := src.PixOffset(sx0, sy1)
			p11 := src.PixOffset(sx1, sy1)
			d := dst.PixOffset(dx, dy)
			for c := range 4 {
				sum := uint16(src.Pix[p00+c]) + uint16(src.Pix[p10+c]) + uint16(src.Pix[p01+c]) + uint16(src.Pix[p11+c])
				dst.Pix[d+c] = uint8((sum + 2) / 4)
			}
		}
	}
	return dst
}
