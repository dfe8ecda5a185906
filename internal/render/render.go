// Package render converts an annealed soft-assignment field and palette
// into a displayable image, mirroring the teacher's CPU renderer pattern
// of rendering a parametric scene into an image.NRGBA.
package render

import (
	"image"
	"image/color"

	"github.com/cwbudde/spatialquant/internal/colorvec"
)

// Indexed renders the hard per-pixel palette assignment in s (taking the
// argmax channel at every pixel) through palette into a fresh image.NRGBA
// at s's own resolution.
func Indexed(s colorvec.Array3D, palette []colorvec.Vec3) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.W, s.H))
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			c := palette[s.ArgMax(x, y)]
			img.SetNRGBA(x, y, toNRGBA(c))
		}
	}
	return img
}

// IndexedScaled renders s through palette as Indexed does, then resamples
// the result to targetW×targetH with nearest-neighbor scaling. This is used
// to preview in-progress annealing state: the working field at a coarse
// pyramid level is smaller than the source image, but a caller polling
// /quantized.png mid-run wants something at a consistent, recognizable
// size rather than a tiny thumbnail.
func IndexedScaled(s colorvec.Array3D, palette []colorvec.Vec3, targetW, targetH int) *image.NRGBA {
	small := Indexed(s, palette)
	if s.W == targetW && s.H == targetH {
		return small
	}
	return nearestNeighborResize(small, targetW, targetH)
}

// FromIndices renders a flat row-major index slice (as produced by
// quant.Result) at width×height through palette.
func FromIndices(indices []int, width, height int, palette []colorvec.Vec3) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := palette[indices[y*width+x]]
			img.SetNRGBA(x, y, toNRGBA(c))
		}
	}
	return img
}

func toNRGBA(c colorvec.Vec3) color.NRGBA {
	clamped := c.Clamp01()
	return color.NRGBA{
		R: toByte(clamped[0]),
		G: toByte(clamped[1]),
		B: toByte(clamped[2]),
		A: 255,
	}
}

func toByte(v float64) uint8 {
	return uint8(v*255 + 0.5)
}

func nearestNeighborResize(src *image.NRGBA, targetW, targetH int) *image.NRGBA {
	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, targetW, targetH))
	for y := 0; y < targetH; y++ {
		sy := y * srcH / targetH
		for x := 0; x < targetW; x++ {
			sx := x * srcW / targetW
			dst.SetNRGBA(x, y, src.NRGBAAt(bounds.Min.X+sx, bounds.Min.Y+sy))
		}
	}
	return dst
}
