package main

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/cwbudde/spatialquant/internal/colorvec"
	"github.com/cwbudde/spatialquant/internal/imageio"
	"github.com/cwbudde/spatialquant/internal/meanfield"
	"github.com/cwbudde/spatialquant/internal/quant"
	"github.com/cwbudde/spatialquant/internal/render"
	"github.com/spf13/cobra"
)

var (
	refPath            string
	outPath            string
	paletteSize        int
	filterSize         int
	initialTemperature float64
	finalTemperature   float64
	seed               int64
	cpuProfile         string
	memProfile         string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run single-shot quantization",
	Long:  `Quantizes a reference image down to a small palette and writes the result.`,
	RunE:  runQuantize,
}

func init() {
	runCmd.Flags().StringVar(&refPath, "ref", "", "Reference image path (required)")
	runCmd.Flags().StringVar(&outPath, "out", "out.png", "Output image path")
	runCmd.Flags().IntVar(&paletteSize, "palette", 16, "Number of colors in the output palette")
	runCmd.Flags().IntVar(&filterSize, "filter", 3, "Gaussian filter size (1, 3, or 5)")
	runCmd.Flags().Float64Var(&initialTemperature, "initial-temp", 1.0, "Initial annealing temperature")
	runCmd.Flags().Float64Var(&finalTemperature, "final-temp", 0.001, "Final annealing temperature")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")

	runCmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	runCmd.Flags().StringVar(&memProfile, "memprofile", "", "Write memory profile to file")

	runCmd.MarkFlagRequired("ref")
	rootCmd.AddCommand(runCmd)
}

func runQuantize(cmd *cobra.Command, args []string) error {
	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		slog.Info("CPU profiling enabled", "output", cpuProfile)
	}

	slog.Info("Starting quantization", "palette", paletteSize, "filter", filterSize)

	src, err := imageio.DecodeFile(refPath)
	if err != nil {
		return fmt.Errorf("failed to load reference: %w", err)
	}

	slog.Info("Loaded reference", "width", src.W, "height", src.H)

	cfg := quant.Config{
		PaletteSize:        paletteSize,
		FilterSize:         filterSize,
		InitialTemperature: initialTemperature,
		FinalTemperature:   finalTemperature,
		Seed:               seed,
	}

	iteration := 0
	progress := func(level int, temperature float64, s colorvec.Array3D, palette []colorvec.Vec3, stats meanfield.Stats) {
		iteration++
		slog.Debug("Annealing progress",
			"level", level,
			"temperature", temperature,
			"iteration", iteration,
			"pixels_changed", stats.PixelsChanged,
		)
	}

	start := time.Now()
	out, err := quant.Quantize(src, cfg, progress)
	if err != nil {
		return fmt.Errorf("quantization failed: %w", err)
	}
	elapsed := time.Since(start)

	img := render.FromIndices(out.Indices, out.Width, out.Height, out.Palette)

	outFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer outFile.Close()

	if err := png.Encode(outFile, img); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	slog.Info("Quantization complete",
		"elapsed", elapsed,
		"palette_size", len(out.Palette),
		"iterations", iteration,
	)

	fmt.Printf("Wrote %s (%d colors, %s)\n", outPath, len(out.Palette), elapsed.Round(time.Millisecond))

	if memProfile != "" {
		f, err := os.Create(memProfile)
		if err != nil {
			return fmt.Errorf("failed to create memory profile: %w", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
		slog.Info("Memory profile written", "output", memProfile)
	}

	return nil
}
