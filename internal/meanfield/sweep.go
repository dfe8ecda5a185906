// Package meanfield implements one mean-field annealing sweep over a single
// pyramid level: a randomized revisit-queue traversal that updates each
// pixel's soft palette assignment via a softmax of its local field, lazily
// re-enqueueing neighbors whose hard assignment might now change too.
package meanfield

import (
	"errors"
	"math"
	"math/rand"

	"github.com/cwbudde/spatialquant/internal/colorvec"
	"github.com/cwbudde/spatialquant/internal/pyramid"
)

// ErrUnderflow is returned when a pixel's softmax weights all underflow to
// zero, which would make S singular. Should not occur in practice — the
// max-shift below keeps the largest weight near e^100 — but is surfaced
// rather than silently producing NaNs downstream.
var ErrUnderflow = errors.New("meanfield: softmax underflow")

// logShift is subtracted from the maximum per-pixel log-weight before
// exponentiating, so the largest weight lands near e^100 rather than
// overflowing or flushing to zero.
const logShift = 100

// Stats summarizes one sweep for logging and convergence checks.
type Stats struct {
	PixelsChanged int
}

// Sweep performs one randomized pass over every pixel of coarse-variable
// grid s at pyramid level lvl, updating s in place given the current
// palette and temperature. rng drives the pixel visitation order.
func Sweep(lvl pyramid.Level, s colorvec.Array3D, palette []colorvec.Vec3, temperature float64, rng *rand.Rand) (Stats, error) {
	b := lvl.B
	a := lvl.A
	centerX := (b.W - 1) / 2
	centerY := (b.H - 1) / 2
	middleB := pyramid.BValue(b, 0, 0, 0, 0)
	k := len(palette)

	type coord struct{ x, y int }
	queue := make([]coord, 0, s.W*s.H)
	for _, idx := range rng.Perm(s.W * s.H) {
		queue = append(queue, coord{idx % s.W, idx / s.W})
	}

	var stats Stats
	logs := make([]float64, k)

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		ix, iy := c.x, c.y

		pI := colorvec.Vec3{}
		for y := 0; y < b.H; y++ {
			for x := 0; x < b.W; x++ {
				jx := x - centerX + ix
				jy := y - centerY + iy
				if jx == ix && jy == iy {
					continue
				}
				if jx < 0 || jy < 0 || jx >= s.W || jy >= s.H {
					continue
				}
				paletteSum := colorvec.WeightedPaletteSum(s.Row(jx, jy), palette)
				pI = pI.Add(pyramid.BValue(b, ix, iy, jx, jy).Hadamard(paletteSum))
			}
		}
		pI = pI.Scale(2).Add(a.At(ix, iy))

		maxLog := math.Inf(-1)
		for v := 0; v < k; v++ {
			field := pI.Add(middleB.Hadamard(palette[v]))
			logs[v] = -palette[v].Dot(field) / temperature
			if logs[v] > maxLog {
				maxLog = logs[v]
			}
		}
		maxLog -= logShift

		var sum float64
		weights := make([]float64, k)
		for v := 0; v < k; v++ {
			weights[v] = math.Exp(logs[v] - maxLog)
			sum += weights[v]
		}
		if sum == 0 {
			return stats, ErrUnderflow
		}

		oldMax := s.ArgMax(ix, iy)
		for v := 0; v < k; v++ {
			newVal := weights[v] / sum
			if newVal <= 0 {
				newVal = 1e-250
			}
			if newVal >= 1 {
				newVal = 1 - 1e-16
			}
			s.Set(ix, iy, v, newVal)
		}
		newMax := s.ArgMax(ix, iy)

		if oldMax != newMax {
			stats.PixelsChanged++
			for y := 1; y < b.H-1; y++ {
				for x := 1; x < b.W-1; x++ {
					jx := x - centerX + ix
					jy := y - centerY + iy
					if jx < 0 || jy < 0 || jx >= s.W || jy >= s.H {
						continue
					}
					queue = append(queue, coord{jx, jy})
				}
			}
		}
	}

	return stats, nil
}
