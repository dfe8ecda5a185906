package pyramid

import "github.com/cwbudde/spatialquant/internal/colorvec"

// BValue returns the interaction weight between coarse-grid positions
// (ix,iy) and (jx,jy), reading through the zero-padded interaction array b:
// offsets outside b's support carry no interaction.
func BValue(b colorvec.Image, ix, iy, jx, jy int) colorvec.Vec3 {
	radiusX := (b.W - 1) / 2
	radiusY := (b.H - 1) / 2
	kx := jx - ix + radiusX
	ky := jy - iy + radiusY
	if kx < 0 || ky < 0 || kx >= b.W || ky >= b.H {
		return colorvec.Vec3{}
	}
	return b.At(kx, ky)
}
