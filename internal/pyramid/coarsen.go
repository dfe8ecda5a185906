package pyramid

import "github.com/cwbudde/spatialquant/internal/colorvec"

// SumCoarsen halves each dimension of fine (rounding up), summing each 2×2
// block of source pixels into the corresponding coarse pixel. Used to
// coarsen the unary field a down the pyramid.
func SumCoarsen(fine colorvec.Image) colorvec.Image {
	cw := (fine.W + 1) / 2
	ch := (fine.H + 1) / 2
	coarse := colorvec.NewImage(cw, ch)

	for y := 0; y < fine.H; y++ {
		for x := 0; x < fine.W; x++ {
			coarse.AddAt(x/2, y/2, fine.At(x, y))
		}
	}
	return coarse
}

// CoarsenInteraction derives the next-coarser interaction array from the
// current one, summing the 4×4 block of fine b-entries that contribute to
// each coarse entry. The coarse array shrinks by 2 on each side, floored at
// side 3 (the minimal 3×3 self/neighbor support).
func CoarsenInteraction(fine colorvec.Image, r int) colorvec.Image {
	cw := fine.W - 2
	if cw < 3 {
		cw = 3
	}
	ch := fine.H - 2
	if ch < 3 {
		ch = 3
	}
	coarse := colorvec.NewImage(cw, ch)

	for jy := 0; jy < ch; jy++ {
		for jx := 0; jx < cw; jx++ {
			var acc colorvec.Vec3
			for iy := 2 * r; iy <= 2*r+1; iy++ {
				for ix := 2 * r; ix <= 2*r+1; ix++ {
					acc = acc.Add(BValue(fine, ix, iy, 2*jx, 2*jy))
					acc = acc.Add(BValue(fine, ix, iy, 2*jx+1, 2*jy))
					acc = acc.Add(BValue(fine, ix, iy, 2*jx, 2*jy+1))
					acc = acc.Add(BValue(fine, ix, iy, 2*jx+1, 2*jy+1))
				}
			}
			coarse.Set(jx, jy, acc)
		}
	}
	return coarse
}
