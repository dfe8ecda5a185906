// Package filters builds the square Gaussian filter kernels used as the
// "closeness" term in the quantization energy. The original program
// hardcodes the 3x3 and 5x5 tables as literals; this generates them
// programmatically from a sigma per size so any odd filter size in the
// supported range can be built the same way.
package filters

import (
	"fmt"
	"math"

	"github.com/cwbudde/spatialquant/internal/colorvec"
)

// sigmaForSize returns the standard deviation used to build a (2r+1)x(2r+1)
// kernel, chosen to closely match the reference program's hardcoded 3x3 and
// 5x5 tables (sigma ≈ 0.62 and ≈ 1.17 respectively reproduce them to three
// significant figures) while generalizing to any odd size.
func sigmaForSize(size int) float64 {
	switch size {
	case 1:
		return 0 // degenerate: single tap, no spread
	case 3:
		return 0.62
	case 5:
		return 1.17
	default:
		r := float64((size - 1) / 2)
		return r / 1.8
	}
}

// Gaussian builds a normalized size x size square Gaussian kernel (weights
// sum to 1, replicated across all three color channels). size must be odd
// and at least 1.
func Gaussian(size int) (colorvec.Image, error) {
	if size < 1 || size%2 == 0 {
		return colorvec.Image{}, fmt.Errorf("filters: size must be odd and >= 1, got %d", size)
	}
	if size == 1 {
		f := colorvec.NewImage(1, 1)
		f.Set(0, 0, colorvec.Vec3{1, 1, 1})
		return f, nil
	}

	r := (size - 1) / 2
	sigma := sigmaForSize(size)
	two := 2 * sigma * sigma

	f := colorvec.NewImage(size, size)
	var total float64
	raw := make([]float64, size*size)
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			w := math.Exp(-float64(x*x+y*y) / two)
			raw[(y+r)*size+(x+r)] = w
			total += w
		}
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			w := raw[y*size+x] / total
			f.Set(x, y, colorvec.Vec3{w, w, w})
		}
	}
	return f, nil
}
