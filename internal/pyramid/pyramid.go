package pyramid

import "github.com/cwbudde/spatialquant/internal/colorvec"

// MaxPixels bounds the coarsest pyramid level: coarsening stops once the
// image fits within this many pixels.
const MaxPixels = 4000

// MaxCoarseLevel returns the number of coarsening steps (levels above the
// finest) needed to bring a w×h image at or below MaxPixels pixels.
func MaxCoarseLevel(w, h int) int {
	level := 0
	for w*h > MaxPixels {
		w = (w + 1) / 2
		h = (h + 1) / 2
		level++
	}
	return level
}

// Level bundles one pyramid level's unary field and interaction array.
type Level struct {
	A colorvec.Image
	B colorvec.Image
}

// Pyramid is the full stack of levels, finest first (index 0) through
// coarsest last.
type Pyramid struct {
	Levels []Level
}

// Build constructs the full pyramid from the finest-level image and filter
// kernel. r is the filter radius (see Radius).
func Build(image colorvec.Image, filter colorvec.Image, r int) Pyramid {
	b0 := BuildInteraction(filter, r)
	a0 := BuildUnary(image, b0)

	maxLevel := MaxCoarseLevel(image.W, image.H)
	levels := make([]Level, maxLevel+1)
	levels[0] = Level{A: a0, B: b0}

	for lvl := 1; lvl <= maxLevel; lvl++ {
		prev := levels[lvl-1]
		levels[lvl] = Level{
			A: SumCoarsen(prev.A),
			B: CoarsenInteraction(prev.B, r),
		}
	}
	return Pyramid{Levels: levels}
}

// MaxLevel returns the coarsest level index (len(Levels)-1).
func (p Pyramid) MaxLevel() int {
	return len(p.Levels) - 1
}
