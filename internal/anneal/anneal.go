// Package anneal drives the multiscale mean-field annealing schedule: it
// walks the pyramid from coarsest to finest level, alternating mean-field
// sweeps with palette re-estimation, lowering the temperature geometrically
// until it reaches the target final temperature at the finest level.
package anneal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/spatialquant/internal/colorvec"
	"github.com/cwbudde/spatialquant/internal/meanfield"
	"github.com/cwbudde/spatialquant/internal/palette"
	"github.com/cwbudde/spatialquant/internal/pyramid"
)

// IterationsPerLevel is the number of sweep+re-estimate rounds performed at
// each pyramid level before either dropping to the next-finer level or
// (at the finest level) continuing to cool.
const IterationsPerLevel = 3

// Progress reports state after each sweep+re-estimate round, for CLI
// logging, checkpointing, or SSE streaming. s is the working soft-assignment
// field at the current level and palette is the freshly re-estimated
// palette for this round; implementations that need to retain either
// beyond the call must copy them, since the backing storage is reused on
// the next round.
type Progress func(level int, temperature float64, s colorvec.Array3D, palette []colorvec.Vec3, stats meanfield.Stats)

// Config holds the annealing schedule's endpoints.
type Config struct {
	InitialTemperature float64
	FinalTemperature   float64
}

// Result is the annealed state at the finest pyramid level.
type Result struct {
	S       colorvec.Array3D
	Palette []colorvec.Vec3
}

// Run executes the full S_ANNEAL/S_REFINE/S_FINALIZE schedule over pyr,
// starting from a randomly initialized assignment field at the coarsest
// level and paletteInit as the starting palette. rng drives both the
// initial fill and every sweep's visitation order, so a fixed seed
// reproduces a fixed result.
func Run(pyr pyramid.Pyramid, paletteInit []colorvec.Vec3, cfg Config, rng *rand.Rand, progress Progress) (Result, error) {
	maxLevel := pyr.MaxLevel()
	k := len(paletteInit)

	level := maxLevel
	coarsest := pyr.Levels[level].A
	s := colorvec.NewArray3D(coarsest.W, coarsest.H, k)
	fillRandom(s, rng)

	pal := make([]colorvec.Vec3, k)
	copy(pal, paletteInit)

	temperature := cfg.InitialTemperature
	denom := maxLevel * IterationsPerLevel
	var multiplier float64
	if denom == 0 {
		// Single-level pyramid (image already small enough to need no
		// coarsening): reach final temperature directly.
		multiplier = cfg.FinalTemperature / cfg.InitialTemperature
	} else {
		multiplier = math.Pow(cfg.FinalTemperature/cfg.InitialTemperature, 1.0/float64(denom))
	}

	itersAtLevel := 0
	for level >= 0 || temperature > cfg.FinalTemperature {
		lvl := pyr.Levels[level]

		stats, err := meanfield.Sweep(lvl, s, pal, temperature, rng)
		if err != nil {
			return Result{}, fmt.Errorf("anneal: level %d: %w", level, err)
		}

		newPal, err := palette.Reestimate(lvl, s, k)
		if err != nil {
			return Result{}, fmt.Errorf("anneal: level %d: %w", level, err)
		}
		pal = newPal

		if progress != nil {
			progress(level, temperature, s, pal, stats)
		}

		itersAtLevel++
		if (temperature <= cfg.FinalTemperature || level > 0) && itersAtLevel >= IterationsPerLevel {
			level--
			if level < 0 {
				break
			}
			next := pyr.Levels[level].A
			s = pyramid.Zoom(s, next.W, next.H)
			itersAtLevel = 0
		}
		if temperature > cfg.FinalTemperature {
			temperature *= multiplier
		}
	}

	// Safety net mirroring the reference driver: if the loop above exited
	// before reaching level 0 (shouldn't happen given its condition, but
	// cheap to guard), zoom the rest of the way down.
	for level > 0 {
		level--
		next := pyr.Levels[level].A
		s = pyramid.Zoom(s, next.W, next.H)
	}

	for i := range pal {
		pal[i] = pal[i].Clamp01()
	}

	return Result{S: s, Palette: pal}, nil
}

func fillRandom(s colorvec.Array3D, rng *rand.Rand) {
	for i := range s.Data {
		s.Data[i] = rng.Float64()
	}
}
