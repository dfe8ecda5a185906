package palette

import (
	"math"
	"testing"

	"github.com/cwbudde/spatialquant/internal/colorvec"
	"github.com/cwbudde/spatialquant/internal/pyramid"
)

func TestReestimateSinglePixelMatchesColor(t *testing.T) {
	filter := colorvec.NewImage(1, 1)
	filter.Set(0, 0, colorvec.Vec3{1, 1, 1})
	b := pyramid.BuildInteraction(filter, 0)

	img := colorvec.NewImage(1, 1)
	img.Set(0, 0, colorvec.Vec3{0.2, 0.6, 0.9})
	a := pyramid.BuildUnary(img, b)
	lvl := pyramid.Level{A: a, B: b}

	s := colorvec.NewArray3D(1, 1, 1)
	s.Set(0, 0, 0, 1.0)

	out, err := Reestimate(lvl, s, 1)
	if err != nil {
		t.Fatalf("Reestimate: %v", err)
	}
	want := img.At(0, 0)
	for ch := 0; ch < 3; ch++ {
		if math.Abs(out[0][ch]-want[ch]) > 1e-9 {
			t.Errorf("palette[0][%d] = %v, want %v", ch, out[0][ch], want[ch])
		}
	}
}

func TestReestimateReturnsRequestedSize(t *testing.T) {
	filter := colorvec.NewImage(1, 1)
	filter.Set(0, 0, colorvec.Vec3{1, 1, 1})
	b := pyramid.BuildInteraction(filter, 0)
	img := colorvec.NewImage(2, 2)
	a := pyramid.BuildUnary(img, b)
	lvl := pyramid.Level{A: a, B: b}

	s := colorvec.NewArray3D(2, 2, 4)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			for v := 0; v < 4; v++ {
				s.Set(x, y, v, 0.25)
			}
		}
	}

	out, err := Reestimate(lvl, s, 4)
	if err != nil {
		t.Fatalf("Reestimate: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("len(out) = %d, want 4", len(out))
	}
}
