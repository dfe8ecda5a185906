package server

import (
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/cwbudde/spatialquant/internal/anneal"
	"github.com/cwbudde/spatialquant/internal/colorvec"
	"github.com/cwbudde/spatialquant/internal/filters"
	"github.com/cwbudde/spatialquant/internal/meanfield"
	"github.com/cwbudde/spatialquant/internal/pyramid"
	"github.com/cwbudde/spatialquant/internal/render"
	"github.com/cwbudde/spatialquant/internal/store"
)

// runJob executes a quantization job in the background.
// If checkpointStore is not nil and job has a positive CheckpointInterval,
// periodic checkpoints are saved.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) { j.State = StateRunning }); err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "image", job.Config.ImagePath)

	src, err := loadSourceImage(job.Config.ImagePath)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to load image: %w", err))
		return err
	}

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	filter, err := filters.Gaussian(job.Config.FilterSize)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to build filter: %w", err))
		return err
	}
	radius := pyramid.Radius(job.Config.FilterSize)
	pyr := pyramid.Build(src, filter, radius)

	rng := rand.New(rand.NewSource(job.Config.Seed))
	paletteInit := make([]colorvec.Vec3, job.Config.PaletteSize)
	for i := range paletteInit {
		paletteInit[i] = colorvec.Vec3{rng.Float64(), rng.Float64(), rng.Float64()}
	}

	live := newLiveState()
	registerLiveState(jobID, live)
	completed := false
	defer func() {
		// A completed job keeps its final state so quantized.png can still be
		// rendered; a failed or cancelled job drops it.
		if !completed {
			unregisterLiveState(jobID)
		}
	}()

	var traceWriter *store.TraceWriter
	if checkpointStore != nil {
		tw, err := store.NewTraceWriter("./data", jobID, false)
		if err != nil {
			slog.Warn("Failed to create trace writer", "job_id", jobID, "error", err)
		} else {
			traceWriter = tw
			defer func() {
				if err := traceWriter.Close(); err != nil {
					slog.Warn("Failed to close trace writer", "job_id", jobID, "error", err)
				}
			}()
		}
	}

	lastCheckpoint := time.Now()
	checkpointEnabled := checkpointStore != nil && job.Config.CheckpointInterval > 0
	checkpointInterval := time.Duration(job.Config.CheckpointInterval) * time.Second

	annealCfg := anneal.Config{
		InitialTemperature: job.Config.InitialTemperature,
		FinalTemperature:   job.Config.FinalTemperature,
	}

	start := time.Now()
	iteration := 0

	progress := func(level int, temperature float64, s colorvec.Array3D, palette []colorvec.Vec3, stats meanfield.Stats) {
		iteration++

		paletteCopy := make([]colorvec.Vec3, len(palette))
		copy(paletteCopy, palette)
		live.set(s, paletteCopy)

		jm.UpdateJob(jobID, func(j *Job) {
			j.Level = level
			j.Temperature = temperature
			j.Iterations = iteration
			j.Palette = flattenPalette(paletteCopy)
		})

		jm.broadcaster.Broadcast(ProgressEvent{
			JobID:         jobID,
			State:         StateRunning,
			Level:         level,
			Temperature:   temperature,
			Iterations:    iteration,
			PixelsChanged: stats.PixelsChanged,
			Timestamp:     time.Now(),
		})

		if traceWriter != nil {
			traceWriter.Write(store.TraceEntry{
				Iteration:     iteration,
				Level:         level,
				Temperature:   temperature,
				PixelsChanged: stats.PixelsChanged,
				Timestamp:     time.Now(),
			})
		}

		if checkpointEnabled && time.Since(lastCheckpoint) >= checkpointInterval {
			if err := saveCheckpoint(jm, checkpointStore, jobID, level, temperature, iteration); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
			lastCheckpoint = time.Now()
		}
	}

	result, err := anneal.Run(pyr, paletteInit, annealCfg, rng, progress)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("annealing failed: %w", err))
		return err
	}

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	live.set(result.S, result.Palette)
	endTime := time.Now()
	elapsed := endTime.Sub(start)

	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Palette = flattenPalette(result.Palette)
		j.Level = 0
		j.Iterations = iteration
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}
	completed = true

	slog.Info("Job completed", "job_id", jobID, "elapsed", elapsed, "iterations", iteration)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:      jobID,
		State:      StateCompleted,
		Iterations: iteration,
		Timestamp:  endTime,
	})

	return nil
}

func flattenPalette(palette []colorvec.Vec3) []float64 {
	out := make([]float64, 0, len(palette)*3)
	for _, c := range palette {
		out = append(out, c[0], c[1], c[2])
	}
	return out
}

func unflattenPalette(flat []float64) []colorvec.Vec3 {
	out := make([]colorvec.Vec3, len(flat)/3)
	for i := range out {
		out[i] = colorvec.Vec3{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return out
}

// markJobFailed marks a job as failed with an error message.
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled.
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// saveCheckpoint saves a checkpoint for the given job.
func saveCheckpoint(jm *JobManager, checkpointStore store.Store, jobID string, level int, temperature float64, iteration int) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}
	if len(job.Palette) == 0 {
		slog.Debug("Skipping checkpoint, no palette yet", "job_id", jobID)
		return nil
	}

	checkpoint := store.NewCheckpoint(jobID, job.Palette, level, temperature, iteration, job.Config)
	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved", "job_id", jobID, "level", level, "temperature", temperature, "iteration", iteration)

	if err := saveCheckpointArtifact(jobID, job); err != nil {
		slog.Warn("Failed to save checkpoint artifact", "job_id", jobID, "error", err)
	}

	return nil
}

// saveCheckpointArtifact renders the current working state to
// quantized.png under the checkpoint's job directory.
func saveCheckpointArtifact(jobID string, job *Job) error {
	live := lookupLiveState(jobID)
	if live == nil {
		return nil
	}
	s, palette := live.get()
	if len(palette) == 0 {
		return nil
	}

	// Assumes FSStore's ./data/jobs/<jobID>/ layout, mirroring the
	// teacher's artifact convention; the Store interface only exposes
	// checkpoint metadata operations, not a filesystem path.
	jobDir := filepath.Join("./data", "jobs", jobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}

	path := filepath.Join(jobDir, "quantized.png")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create quantized.png: %w", err)
	}
	defer f.Close()

	img := render.IndexedScaled(s, palette, job.Config.Width, job.Config.Height)
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode quantized.png: %w", err)
	}
	return nil
}
