package main

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cwbudde/spatialquant/internal/colorvec"
	"github.com/cwbudde/spatialquant/internal/imageio"
	"github.com/cwbudde/spatialquant/internal/meanfield"
	"github.com/cwbudde/spatialquant/internal/quant"
	"github.com/cwbudde/spatialquant/internal/render"
	"github.com/cwbudde/spatialquant/internal/store"
	"github.com/spf13/cobra"
)

var (
	resumeServerURL string
	resumeLocalMode bool
	resumeOutputDir string
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume quantization from a checkpoint",
	Long: `Resume a quantization job from a saved checkpoint.

Supports two modes:
  1. Server mode (default): POST to server's resume endpoint
  2. Local mode (--local): Load checkpoint and run annealing locally

Examples:
  # Resume via server
  spatialquant resume abc123 --server http://localhost:8080

  # Resume locally
  spatialquant resume abc123 --local --output ./results`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeServerURL, "server", "http://localhost:8080", "Server URL for remote resume")
	resumeCmd.Flags().BoolVar(&resumeLocalMode, "local", false, "Run resume locally instead of via server")
	resumeCmd.Flags().StringVar(&resumeOutputDir, "output", "./resumed", "Output directory for local mode")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	if resumeLocalMode {
		return runResumeLocal(jobID)
	}
	return runResumeServer(jobID)
}

// runResumeServer sends a resume request to the server
func runResumeServer(jobID string) error {
	url := fmt.Sprintf("%s/api/v1/jobs/%s/resume", resumeServerURL, jobID)

	slog.Info("Resuming job via server", "job_id", jobID, "url", url)

	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("checkpoint not found for job %s", jobID)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var result struct {
		JobID   string `json:"jobId"`
		State   string `json:"state"`
		Message string `json:"message,omitempty"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("Job resumed successfully\n")
	fmt.Printf("  Job ID: %s\n", result.JobID)
	fmt.Printf("  State: %s\n", result.State)
	if result.Message != "" {
		fmt.Printf("  Message: %s\n", result.Message)
	}
	fmt.Printf("\nUse 'spatialquant status %s' to monitor progress\n", result.JobID)

	return nil
}

// runResumeLocal loads a checkpoint and runs annealing again locally.
//
// The checkpoint only carries the palette and schedule position, not the
// working soft-assignment field (see store.Checkpoint's doc comment), so
// resumption restarts the pyramid walk at the coarsest level from the
// checkpoint's temperature with a freshly seeded field and an initial
// palette drawn from the configured seed. The saved palette is not used as
// the starting point.
func runResumeLocal(jobID string) error {
	slog.Info("Resuming job locally", "job_id", jobID)

	checkpointStore, err := store.NewFSStore("./data")
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("invalid checkpoint: %w", err)
	}

	fmt.Printf("Loaded checkpoint:\n")
	fmt.Printf("  Job ID: %s\n", checkpoint.JobID)
	fmt.Printf("  Level: %d\n", checkpoint.Level)
	fmt.Printf("  Temperature: %f\n", checkpoint.Temperature)
	fmt.Printf("  Iteration: %d\n", checkpoint.Iteration)
	fmt.Printf("  Image: %s\n", checkpoint.Config.ImagePath)
	fmt.Printf("  Checkpoint time: %s\n\n", checkpoint.Timestamp.Format(time.RFC3339))

	src, err := imageio.DecodeFile(checkpoint.Config.ImagePath)
	if err != nil {
		return fmt.Errorf("failed to load reference: %w", err)
	}

	cfg := quant.Config{
		PaletteSize:        checkpoint.Config.PaletteSize,
		FilterSize:         checkpoint.Config.FilterSize,
		InitialTemperature: checkpoint.Temperature,
		FinalTemperature:   checkpoint.Config.FinalTemperature,
		Seed:               checkpoint.Config.Seed,
	}

	fmt.Printf("Resuming annealing from temperature %f...\n", checkpoint.Temperature)
	start := time.Now()

	iteration := checkpoint.Iteration
	progress := func(level int, temperature float64, s colorvec.Array3D, palette []colorvec.Vec3, stats meanfield.Stats) {
		iteration++
		slog.Debug("Resume progress", "level", level, "temperature", temperature, "iteration", iteration)
	}

	out, err := quant.Quantize(src, cfg, progress)
	if err != nil {
		return fmt.Errorf("annealing failed: %w", err)
	}

	elapsed := time.Since(start)

	fmt.Printf("\nResumed optimization completed in %s\n", elapsed)
	fmt.Printf("  Total iterations: %d\n", iteration)

	if err := os.MkdirAll(resumeOutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	img := render.FromIndices(out.Indices, out.Width, out.Height, out.Palette)
	outPath := filepath.Join(resumeOutputDir, fmt.Sprintf("%s_resumed.png", jobID))
	if err := saveImage(img, outPath); err != nil {
		return fmt.Errorf("failed to save output image: %w", err)
	}

	fmt.Printf("\nOutput saved to: %s\n", outPath)

	updatedCheckpoint := store.NewCheckpoint(
		jobID,
		flattenPaletteCLI(out.Palette),
		0,
		cfg.FinalTemperature,
		iteration,
		checkpoint.Config,
	)

	if err := checkpointStore.SaveCheckpoint(jobID, updatedCheckpoint); err != nil {
		slog.Warn("Failed to update checkpoint", "error", err)
	} else {
		fmt.Printf("Checkpoint updated\n")
	}

	return nil
}

func flattenPaletteCLI(palette []colorvec.Vec3) []float64 {
	out := make([]float64, 0, len(palette)*3)
	for _, c := range palette {
		out = append(out, c[0], c[1], c[2])
	}
	return out
}

// saveImage writes img to path as a PNG file.
func saveImage(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
