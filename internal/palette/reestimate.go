// Package palette re-estimates the K-color palette from the current
// coarse-variable assignment field by solving the closed-form per-channel
// linear system that minimizes the quadratic energy with assignments held
// fixed.
package palette

import (
	"fmt"

	"github.com/cwbudde/spatialquant/internal/colorvec"
	"github.com/cwbudde/spatialquant/internal/linalg"
	"github.com/cwbudde/spatialquant/internal/pyramid"
)

// Reestimate solves for the palette that minimizes the pyramid-level energy
// given the current soft assignments s, returning one Vec3 per palette
// entry. Channels are solved independently since the energy separates by
// channel: P_k = -(2 S_k)^-1 R_k.
func Reestimate(lvl pyramid.Level, s colorvec.Array3D, paletteSize int) ([]colorvec.Vec3, error) {
	b := lvl.B
	a := lvl.A
	centerX := (b.W - 1) / 2
	centerY := (b.H - 1) / 2
	k := paletteSize

	sMat := make([]colorvec.Vec3, k*k) // symmetric upper triangle accumulator
	at := func(v, alpha int) colorvec.Vec3 { return sMat[v*k+alpha] }
	addAt := func(v, alpha int, val colorvec.Vec3) { sMat[v*k+alpha] = sMat[v*k+alpha].Add(val) }
	setAt := func(v, alpha int, val colorvec.Vec3) { sMat[v*k+alpha] = val }

	for iy := 0; iy < s.H; iy++ {
		for ix := 0; ix < s.W; ix++ {
			maxJX := s.W
			if v := ix - centerX + b.W; v < maxJX {
				maxJX = v
			}
			maxJY := s.H
			if v := iy - centerY + b.H; v < maxJY {
				maxJY = v
			}
			minJY := iy - centerY
			if minJY < 0 {
				minJY = 0
			}
			minJX := ix - centerX
			if minJX < 0 {
				minJX = 0
			}

			for jy := minJY; jy < maxJY; jy++ {
				for jx := minJX; jx < maxJX; jx++ {
					if ix == jx && iy == jy {
						continue
					}
					weight := pyramid.BValue(b, ix, iy, jx, jy)
					for v := 0; v < k; v++ {
						for alpha := v; alpha < k; alpha++ {
							term := weight.Scale(s.At(ix, iy, v) * s.At(jx, jy, alpha))
							addAt(v, alpha, term)
						}
					}
				}
			}
		}
	}

	centerB := pyramid.BValue(b, 0, 0, 0, 0)
	for iy := 0; iy < s.H; iy++ {
		for ix := 0; ix < s.W; ix++ {
			for v := 0; v < k; v++ {
				addAt(v, v, centerB.Scale(s.At(ix, iy, v)))
			}
		}
	}
	for v := 0; v < k; v++ {
		for alpha := 0; alpha < v; alpha++ {
			setAt(v, alpha, at(alpha, v))
		}
	}

	r := make([]colorvec.Vec3, k)
	for v := 0; v < k; v++ {
		var acc colorvec.Vec3
		for iy := 0; iy < s.H; iy++ {
			for ix := 0; ix < s.W; ix++ {
				acc = acc.Add(a.At(ix, iy).Scale(s.At(ix, iy, v)))
			}
		}
		r[v] = acc
	}

	out := make([]colorvec.Vec3, k)
	for ch := 0; ch < 3; ch++ {
		sk := linalg.NewMatrix(k)
		for v := 0; v < k; v++ {
			for alpha := 0; alpha < k; alpha++ {
				sk.Set(v, alpha, 2*at(v, alpha)[ch])
			}
		}
		inv, err := sk.Inverse()
		if err != nil {
			return nil, fmt.Errorf("palette: channel %d: %w", ch, err)
		}
		rk := make([]float64, k)
		for v := 0; v < k; v++ {
			rk[v] = r[v][ch]
		}
		solved := inv.MulVec(rk)
		for v := 0; v < k; v++ {
			out[v][ch] = -solved[v]
		}
	}
	return out, nil
}
