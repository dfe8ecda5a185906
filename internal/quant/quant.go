// Package quant is the public entry point for spatial color quantization:
// it validates a request, builds the filter and pyramid, runs mean-field
// annealing, and renders the result down to a hard per-pixel palette index
// assignment.
package quant

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/cwbudde/spatialquant/internal/anneal"
	"github.com/cwbudde/spatialquant/internal/colorvec"
	"github.com/cwbudde/spatialquant/internal/filters"
	"github.com/cwbudde/spatialquant/internal/pyramid"
)

var (
	// ErrPaletteSize is returned when PaletteSize falls outside [2,256].
	ErrPaletteSize = errors.New("quant: palette size must be between 2 and 256")
	// ErrFilterSize is returned for any filter size other than 1, 3, or 5.
	ErrFilterSize = errors.New("quant: filter size must be 1, 3, or 5")
	// ErrEmptyImage is returned for a non-positive image dimension.
	ErrEmptyImage = errors.New("quant: image width and height must be positive")
)

// Config configures one quantization run.
type Config struct {
	PaletteSize        int
	FilterSize         int
	InitialTemperature float64
	FinalTemperature   float64
	Seed               int64
}

// Validate checks Config against the invariants the algorithm assumes.
func (c Config) Validate() error {
	if c.PaletteSize < 2 || c.PaletteSize > 256 {
		return fmt.Errorf("%w: got %d", ErrPaletteSize, c.PaletteSize)
	}
	switch c.FilterSize {
	case 1, 3, 5:
	default:
		return fmt.Errorf("%w: got %d", ErrFilterSize, c.FilterSize)
	}
	return nil
}

// Result is the outcome of a quantization run.
type Result struct {
	// Indices is a row-major width*height slice of palette indices.
	Indices []int
	Palette []colorvec.Vec3
	Width   int
	Height  int
}

// Quantize runs the full pipeline against image, reporting progress (sweep
// stats per level/temperature) through progress if non-nil.
func Quantize(image colorvec.Image, cfg Config, progress anneal.Progress) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if image.W <= 0 || image.H <= 0 {
		return Result{}, ErrEmptyImage
	}

	filter, err := filters.Gaussian(cfg.FilterSize)
	if err != nil {
		return Result{}, fmt.Errorf("quant: %w", err)
	}
	r := pyramid.Radius(cfg.FilterSize)
	pyr := pyramid.Build(image, filter, r)

	rng := rand.New(rand.NewSource(cfg.Seed))
	paletteInit := make([]colorvec.Vec3, cfg.PaletteSize)
	for i := range paletteInit {
		paletteInit[i] = colorvec.Vec3{rng.Float64(), rng.Float64(), rng.Float64()}
	}

	annealCfg := anneal.Config{
		InitialTemperature: cfg.InitialTemperature,
		FinalTemperature:   cfg.FinalTemperature,
	}
	out, err := anneal.Run(pyr, paletteInit, annealCfg, rng, progress)
	if err != nil {
		return Result{}, err
	}

	indices := make([]int, image.W*image.H)
	for y := 0; y < image.H; y++ {
		for x := 0; x < image.W; x++ {
			indices[y*image.W+x] = out.S.ArgMax(x, y)
		}
	}

	return Result{
		Indices: indices,
		Palette: out.Palette,
		Width:   image.W,
		Height:  image.H,
	}, nil
}
