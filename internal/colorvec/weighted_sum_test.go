package colorvec

import "testing"

func TestWeightedPaletteSum(t *testing.T) {
	palette := []Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	weights := []float64{0.2, 0.3, 0.5}

	got := WeightedPaletteSum(weights, palette)
	want := Vec3{0.2, 0.3, 0.5}
	for i := range want {
		if diff := got[i] - want[i]; diff > 1e-12 || diff < -1e-12 {
			t.Fatalf("WeightedPaletteSum = %v, want %v", got, want)
		}
	}
}

func TestWeightedPaletteSumBackendsAgree(t *testing.T) {
	palette := []Vec3{{0.1, 0.9, 0.4}, {0.7, 0.2, 0.6}}
	weights := []float64{0.6, 0.4}

	scalar := weightedPaletteSumScalar(weights, palette)
	avx2 := weightedPaletteSumAVX2(weights, palette)
	neon := weightedPaletteSumNEON(weights, palette)

	if scalar != avx2 || scalar != neon {
		t.Fatalf("backends disagree: scalar=%v avx2=%v neon=%v", scalar, avx2, neon)
	}
}
