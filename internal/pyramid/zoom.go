package pyramid

import "github.com/cwbudde/spatialquant/internal/colorvec"

// Zoom refines a coarse-level assignment field into the next-finer level by
// duplicating each coarse cell across its 2×2 block of finer cells, clipped
// to the target. bigW/bigH are the target (finer) level's dimensions; in the
// pyramid these are 2×small or 2×small−1 in each axis, since coarsening
// rounds up. When bigW (bigH) is odd, the last column (row) is then
// overwritten with a copy of the one before it.
func Zoom(small colorvec.Array3D, bigW, bigH int) colorvec.Array3D {
	big := colorvec.NewArray3D(bigW, bigH, small.K)

	for y := 0; y < small.H; y++ {
		for x := 0; x < small.W; x++ {
			for z := 0; z < small.K; z++ {
				v := small.At(x, y, z)
				big.Set(2*x, 2*y, z, v)
				if 2*x+1 < bigW {
					big.Set(2*x+1, 2*y, z, v)
				}
				if 2*y+1 < bigH {
					big.Set(2*x, 2*y+1, z, v)
				}
				if 2*x+1 < bigW && 2*y+1 < bigH {
					big.Set(2*x+1, 2*y+1, z, v)
				}
			}
		}
	}

	if bigW%2 == 1 {
		for y := 0; y < bigH; y++ {
			for z := 0; z < small.K; z++ {
				big.Set(bigW-1, y, z, big.At(bigW-2, y, z))
			}
		}
	}
	if bigH%2 == 1 {
		for x := 0; x < bigW; x++ {
			for z := 0; z < small.K; z++ {
				big.Set(x, bigH-1, z, big.At(x, bigH-2, z))
			}
		}
	}

	return big
}
