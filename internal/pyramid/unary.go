package pyramid

import "github.com/cwbudde/spatialquant/internal/colorvec"

// BuildUnary computes the unary field a from the source image and the
// interaction array b:
//
//	a(i) = -2 Σ_j b_value(i,j) ⊙ image(j)
//
// summed over j in the image with the same radius as b, clamping the lower
// edge to the image boundary rather than skipping it (a pixel at the edge
// still sees its in-bounds neighbors once each).
func BuildUnary(image colorvec.Image, b colorvec.Image) colorvec.Image {
	radiusW := (b.W - 1) / 2
	radiusH := (b.H - 1) / 2
	a := colorvec.NewImage(image.W, image.H)

	for iy := 0; iy < image.H; iy++ {
		for ix := 0; ix < image.W; ix++ {
			var acc colorvec.Vec3

			jy := iy - radiusH
			for jy <= iy+radiusH {
				if jy < 0 {
					jy = 0
				}
				if jy >= image.H {
					break
				}

				jx := ix - radiusW
				for jx <= ix+radiusW {
					if jx < 0 {
						jx = 0
					}
					if jx >= image.W {
						break
					}
					acc = acc.Add(BValue(b, ix, iy, jx, jy).Hadamard(image.At(jx, jy)))
					jx++
				}
				jy++
			}

			a.Set(ix, iy, acc.Scale(-2))
		}
	}
	return a
}
