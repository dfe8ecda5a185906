package quant

import (
	"testing"

	"github.com/cwbudde/spatialquant/internal/colorvec"
)

func checkerboard(w, h int) colorvec.Image {
	img := colorvec.NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 0.0
			if (x+y)%2 == 0 {
				v = 1.0
			}
			img.Set(x, y, colorvec.Vec3{v, v, v})
		}
	}
	return img
}

func validConfig() Config {
	return Config{
		PaletteSize:        2,
		FilterSize:         3,
		InitialTemperature: 1.0,
		FinalTemperature:   0.1,
		Seed:               7,
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid", validConfig(), true},
		{"palette too small", Config{PaletteSize: 1, FilterSize: 3}, false},
		{"palette too large", Config{PaletteSize: 257, FilterSize: 3}, false},
		{"bad filter size", Config{PaletteSize: 4, FilterSize: 2}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if c.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !c.ok && err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}

func TestQuantizeDegenerate1x1(t *testing.T) {
	img := colorvec.NewImage(1, 1)
	img.Set(0, 0, colorvec.Vec3{0.3, 0.6, 0.9})

	result, err := Quantize(img, validConfig(), nil)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if len(result.Indices) != 1 {
		t.Fatalf("len(Indices) = %d, want 1", len(result.Indices))
	}
	if result.Indices[0] < 0 || result.Indices[0] >= len(result.Palette) {
		t.Fatalf("index %d out of palette range [0,%d)", result.Indices[0], len(result.Palette))
	}
}

func TestQuantizeCheckerboardProducesInRangeIndices(t *testing.T) {
	img := checkerboard(12, 12)
	result, err := Quantize(img, validConfig(), nil)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	if len(result.Indices) != 144 {
		t.Fatalf("len(Indices) = %d, want 144", len(result.Indices))
	}
	for i, idx := range result.Indices {
		if idx < 0 || idx >= len(result.Palette) {
			t.Fatalf("Indices[%d] = %d out of range", i, idx)
		}
	}
	for i, c := range result.Palette {
		for ch := 0; ch < 3; ch++ {
			if c[ch] < 0 || c[ch] > 1 {
				t.Errorf("palette[%d][%d] = %v, want in [0,1]", i, ch, c[ch])
			}
		}
	}
}

func TestQuantizeDeterministicGivenSeed(t *testing.T) {
	img := checkerboard(8, 8)
	cfg := validConfig()

	r1, err := Quantize(img, cfg, nil)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	r2, err := Quantize(img, cfg, nil)
	if err != nil {
		t.Fatalf("Quantize: %v", err)
	}
	for i := range r1.Indices {
		if r1.Indices[i] != r2.Indices[i] {
			t.Fatalf("index %d differs across runs: %d vs %d", i, r1.Indices[i], r2.Indices[i])
		}
	}
}

func TestQuantizeRejectsInvalidConfig(t *testing.T) {
	img := checkerboard(4, 4)
	cfg := validConfig()
	cfg.PaletteSize = 1
	if _, err := Quantize(img, cfg, nil); err == nil {
		t.Fatal("expected error for invalid palette size")
	}
}
