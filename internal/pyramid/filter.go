// Package pyramid builds the multiscale coarse-variable pyramid: the
// filter-derived pairwise interaction array b, the per-pixel unary field a,
// the sum-pooling coarsener, and the zoom/refine doubling operator.
package pyramid

import "github.com/cwbudde/spatialquant/internal/colorvec"

// Radius returns the filter radius r for a (2r+1)×(2r+1) square filter.
func Radius(filterSize int) int {
	return (filterSize - 1) / 2
}

// BuildInteraction computes the pairwise interaction array b of side 4r+1
// from a square filter kernel of side 2r+1.
//
//	b[j] = Σ_k F[k] ⊙ F[k + offset - j + r],  offset = r
//
// summed only over k whose shifted index falls inside F. This assumes a
// square filter: both axes share the same radius in the bounds check, which
// is harmless here (the only filter sizes exercised are square) but would
// under-sum a rectangular filter's y-extent — see spec's boundary-symmetry
// open question.
func BuildInteraction(filter colorvec.Image, r int) colorvec.Image {
	side := 4*r + 1
	b := colorvec.NewImage(side, side)
	offset := r

	for jy := 0; jy < side; jy++ {
		for jx := 0; jx < side; jx++ {
			for ky := 0; ky < filter.H; ky++ {
				for kx := 0; kx < filter.W; kx++ {
					if kx+offset < jx-r || kx+offset > jx+r {
						continue
					}
					// Shares r (not a separate height radius) for the
					// y-bound check, matching the original's bounds test.
					if ky+offset < jy-r || ky+offset > jy+r {
						continue
					}
					kx2 := kx + offset - jx + r
					ky2 := ky + offset - jy + r
					b.AddAt(jx, jy, filter.At(kx, ky).Hadamard(filter.At(kx2, ky2)))
				}
			}
		}
	}
	return b
}
