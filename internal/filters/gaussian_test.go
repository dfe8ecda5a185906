package filters

import (
	"math"
	"testing"
)

func TestGaussianNormalizes(t *testing.T) {
	for _, size := range []int{1, 3, 5} {
		f, err := Gaussian(size)
		if err != nil {
			t.Fatalf("Gaussian(%d): %v", size, err)
		}
		var sum float64
		for y := 0; y < f.H; y++ {
			for x := 0; x < f.W; x++ {
				sum += f.At(x, y)[0]
			}
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("Gaussian(%d) sums to %v, want 1", size, sum)
		}
	}
}

func TestGaussianRejectsEvenSize(t *testing.T) {
	if _, err := Gaussian(4); err == nil {
		t.Fatal("expected error for even filter size")
	}
}

func TestGaussianPeaksAtCenter(t *testing.T) {
	f, err := Gaussian(5)
	if err != nil {
		t.Fatalf("Gaussian(5): %v", err)
	}
	center := f.At(2, 2)[0]
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if x == 2 && y == 2 {
				continue
			}
			if f.At(x, y)[0] > center {
				t.Errorf("corner/edge weight at (%d,%d) exceeds center weight", x, y)
			}
		}
	}
}
