package colorvec

import (
	"log/slog"

	"golang.org/x/sys/cpu"
)

// WeightedPaletteSum computes Σ_v weights[v] * palette[v], the per-pixel
// "palette_sum" accumulation that dominates meanfield.Sweep's inner loop
// (evaluated once per (i, j) neighbor pair, per sweep, per level).
//
// Implementations (all Go, all in this file):
//   - weightedPaletteSumScalar: portable implementation, used on every platform
//   - the AVX2 and NEON entries selected by CPU feature detection call the
//     scalar implementation; there is no assembly
//
// Backend indicates which code path WeightedPaletteSum currently runs.
type Backend int

const (
	BackendScalar Backend = iota // portable fallback, used by every platform today
	BackendAVX2                  // x86-64, 256-bit (not yet hand-written; falls back to scalar)
	BackendNEON                  // ARM64, 128-bit (not yet hand-written; falls back to scalar)
)

func (b Backend) String() string {
	switch b {
	case BackendAVX2:
		return "AVX2"
	case BackendNEON:
		return "NEON"
	default:
		return "scalar"
	}
}

// ActiveBackend reports which backend was selected at initialization.
var ActiveBackend Backend

// weightedPaletteSum is the function pointer selected by init() based on
// CPU feature detection.
var weightedPaletteSum func(weights []float64, palette []Vec3) Vec3

func init() {
	switch {
	case cpu.X86.HasAVX2:
		ActiveBackend = BackendAVX2
		weightedPaletteSum = weightedPaletteSumAVX2
		slog.Debug("colorvec kernel initialized", "backend", "AVX2")
	case cpu.ARM64.HasASIMD:
		ActiveBackend = BackendNEON
		weightedPaletteSum = weightedPaletteSumNEON
		slog.Debug("colorvec kernel initialized", "backend", "NEON")
	default:
		ActiveBackend = BackendScalar
		weightedPaletteSum = weightedPaletteSumScalar
		slog.Debug("colorvec kernel initialized", "backend", "scalar")
	}
}

// WeightedPaletteSum dispatches to the active backend.
func WeightedPaletteSum(weights []float64, palette []Vec3) Vec3 {
	return weightedPaletteSum(weights, palette)
}

// weightedPaletteSumScalar is the reference implementation.
func weightedPaletteSumScalar(weights []float64, palette []Vec3) Vec3 {
	var sum Vec3
	for v, w := range weights {
		p := palette[v]
		sum[0] += w * p[0]
		sum[1] += w * p[1]
		sum[2] += w * p[2]
	}
	return sum
}

// weightedPaletteSumAVX2 will use 256-bit SIMD loads/FMAs once hand-written;
// for now it delegates to the scalar path, same as the teacher's NEON
// placeholder delegated to its scalar SSD kernel pending assembly.
func weightedPaletteSumAVX2(weights []float64, palette []Vec3) Vec3 {
	return weightedPaletteSumScalar(weights, palette)
}

// weightedPaletteSumNEON mirrors weightedPaletteSumAVX2's placeholder status.
func weightedPaletteSumNEON(weights []float64, palette []Vec3) Vec3 {
	return weightedPaletteSumScalar(weights, palette)
}
