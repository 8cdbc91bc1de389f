// Package postprocess turns supersampled renders into preview images.
package postprocess

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Downsample scales img to fit targetSize×targetSize, filtering in
// premultiplied alpha so transparent edges do not darken.
func Downsample(img *image.NRGBA, targetSize int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= targetSize && b.Dy() <= targetSize {
		return img
	}

	w, h := targetSize, targetSize
	if b.Dx() > b.Dy() {
		h = max(1, b.Dy()*targetSize/b.Dx())
	} else if b.Dy() > b.Dx() {
		w = max(1, b.Dx()*targetSize/b.Dy())
	}

	// image.RGBA is premultiplied; drawing NRGBA into it converts.
	premul := image.NewRGBA(b)
	draw.Draw(premul, b, img, b.Min, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), premul, b, xdraw.Src, nil)
	return unpremultiply(dst)
}

func unpremultiply(src *image.RGBA) *image.NRGBA {
	out := image.NewNRGBA(src.Rect)
	for i := 0; i+3 < len(src.Pix); i += 4 {
		a := src.Pix[i+3]
		out.Pix[i+3] = a
		if a <= 1 {
			continue
		}
		inv := 255.0 / float64(a)
		out.Pix[i] = clamp8(float64(src.Pix[i]) * inv)
		out.Pix[i+1] = clamp8(float64(src.Pix[i+1]) * inv)
		out.Pix[i+2] = clamp8(float64(src.Pix[i+2]) * inv)
	}
	return out
}

// SideBySide places before and after next to each other on one canvas,
// both top aligned.
func SideBySide(before, after *image.NRGBA) *image.NRGBA {
	bb, ab := before.Bounds(), after.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bb.Dx()+ab.Dx(), max(bb.Dy(), ab.Dy())))
	draw.Draw(out, image.Rect(0, 0, bb.Dx(), bb.Dy()), before, bb.Min, draw.Src)
	draw.Draw(out, image.Rect(bb.Dx(), 0, bb.Dx()+ab.Dx(), ab.Dy()), after, ab.Min, draw.Src)
	return out
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
