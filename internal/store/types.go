package store

import (
	"fmt"
	"time"
)

// JobConfig holds configuration for a quantization job (checkpoint copy).
// This avoids import cycles with server package.
type JobConfig struct {
	ImagePath          string  `json:"imagePath"`
	Width              int     `json:"width"`
	Height             int     `json:"height"`
	PaletteSize        int     `json:"paletteSize"`
	FilterSize         int     `json:"filterSize"` // 1, 3, or 5
	InitialTemperature float64 `json:"initialTemperature"`
	FinalTemperature   float64 `json:"finalTemperature"`
	Seed               int64   `json:"seed"`
	CheckpointInterval int     `json:"checkpointInterval,omitempty"` // Checkpoint every N seconds (0 = disabled)
}

// Checkpoint represents a saved annealing state that can be resumed later.
// All fields are serialized to JSON for persistence.
//
// Annealing State Handling:
//
// The checkpoint saves the PALETTE and the coarse-level/temperature
// position in the schedule, but does NOT save the full per-pixel
// soft-assignment array S. This design choice has important implications
// for resumption:
//
// SAVED STATE:
//   - Palette: The K colors estimated so far
//   - Level: Which pyramid level annealing had reached
//   - Temperature: The annealing temperature at checkpoint time
//   - Iteration: How many sweep+re-estimate rounds the job had run in total
//     (the count does not restart at each level)
//   - Config: Job configuration (image, palette size, filter, schedule)
//
// REINITIALIZED ON RESUME:
//   - The soft-assignment array S: re-seeded with a fresh random fill,
//     since S is large (W*H*K floats at the finest level) and
//     reconstructing it exactly would bloat every checkpoint by orders of
//     magnitude more than the palette alone
//   - Sweep visitation order: a new random permutation is drawn
//   - The palette: a fresh initial palette is drawn from Config.Seed
//
// RESUME STRATEGY:
// Resuming does not continue from Level, and the saved palette is not used
// as the initial palette: annealing restarts at the coarsest pyramid level
// with a fresh S. The local CLI resume starts that walk at the saved
// Temperature; the server's resume endpoint starts a new job with the saved
// Config, which anneals from Config.InitialTemperature.
//
// IMPLICATIONS:
//   - Resume is not a continuation: the schedule runs again from the
//     coarsest level, so the result can differ from what the interrupted
//     run would have produced
//   - This keeps checkpoint size bounded by palette size rather than
//     image size
type Checkpoint struct {
	// JobID is the unique identifier for this quantization job
	JobID string `json:"jobId"`

	// Palette contains the K estimated colors (as flat R,G,B float64
	// triples) at checkpoint time
	Palette []float64 `json:"palette"`

	// Level is the pyramid level annealing had reached (0 = finest)
	Level int `json:"level"`

	// Temperature is the annealing temperature at checkpoint time
	Temperature float64 `json:"temperature"`

	// Iteration is the total sweep+re-estimate round count of the job so far
	// (across all levels)
	Iteration int `json:"iteration"`

	// Timestamp records when this checkpoint was created
	Timestamp time.Time `json:"timestamp"`

	// Config holds the job configuration, needed for validation during resume.
	// We ensure that resumed jobs use compatible settings (same image,
	// palette size, etc.)
	Config JobConfig `json:"config"`
}

// CheckpointInfo contains metadata about a checkpoint without the full
// palette data. Used for listing checkpoints efficiently.
type CheckpointInfo struct {
	// JobID is the unique identifier for this checkpoint
	JobID string `json:"jobId"`

	// Level is the pyramid level reached at checkpoint time
	Level int `json:"level"`

	// Temperature is the annealing temperature at checkpoint time
	Temperature float64 `json:"temperature"`

	// Iteration is the sweep+re-estimate round count at checkpoint time
	Iteration int `json:"iteration"`

	// Timestamp records when this checkpoint was created
	Timestamp time.Time `json:"timestamp"`

	// PaletteSize is the number of colors (K) being estimated
	PaletteSize int `json:"paletteSize"`

	// ImagePath is the source image path
	ImagePath string `json:"imagePath"`
}

// NewCheckpoint creates a checkpoint from job state.
// This is a helper for converting runtime job state to a persistable checkpoint.
func NewCheckpoint(jobID string, palette []float64, level int, temperature float64, iteration int, config JobConfig) *Checkpoint {
	return &Checkpoint{
		JobID:       jobID,
		Palette:     palette,
		Level:       level,
		Temperature: temperature,
		Iteration:   iteration,
		Timestamp:   time.Now(),
		Config:      config,
	}
}

// ToInfo converts a full Checkpoint to CheckpointInfo (metadata only).
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:       c.JobID,
		Level:       c.Level,
		Temperature: c.Temperature,
		Iteration:   c.Iteration,
		Timestamp:   c.Timestamp,
		PaletteSize: c.Config.PaletteSize,
		ImagePath:   c.Config.ImagePath,
	}
}

// Validate checks if the checkpoint has valid data.
// Returns an error if any required field is missing or invalid.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if c.Palette == nil {
		return &ValidationError{Field: "Palette", Reason: "cannot be nil"}
	}
	if len(c.Palette) == 0 {
		return &ValidationError{Field: "Palette", Reason: "cannot be empty"}
	}
	// Palette should be a multiple of 3 (R, G, B per color)
	if len(c.Palette)%3 != 0 {
		return &ValidationError{Field: "Palette", Reason: "length must be multiple of 3"}
	}
	if c.Level < 0 {
		return &ValidationError{Field: "Level", Reason: "cannot be negative"}
	}
	if c.Temperature <= 0 {
		return &ValidationError{Field: "Temperature", Reason: "must be positive"}
	}
	if c.Iteration < 0 {
		return &ValidationError{Field: "Iteration", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.ImagePath == "" {
		return &ValidationError{Field: "Config.ImagePath", Reason: "cannot be empty"}
	}
	if c.Config.PaletteSize <= 0 {
		return &ValidationError{Field: "Config.PaletteSize", Reason: "must be positive"}
	}
	if c.Config.Width <= 0 {
		return &ValidationError{Field: "Config.Width", Reason: "must be positive"}
	}
	if c.Config.Height <= 0 {
		return &ValidationError{Field: "Config.Height", Reason: "must be positive"}
	}
	// Verify Palette length matches expected palette size
	expectedLen := c.Config.PaletteSize * 3
	if len(c.Palette) != expectedLen {
		return &ValidationError{
			Field:  "Palette",
			Reason: fmt.Sprintf("length mismatch: expected %d values for palette size %d", expectedLen, c.Config.PaletteSize),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can be resumed with the given config.
// Returns an error if the configs are incompatible.
func (c *Checkpoint) IsCompatible(config JobConfig) error {
	if c.Config.ImagePath != config.ImagePath {
		return &CompatibilityError{
			Field:    "ImagePath",
			Expected: c.Config.ImagePath,
			Actual:   config.ImagePath,
		}
	}
	if c.Config.PaletteSize != config.PaletteSize {
		return &CompatibilityError{
			Field:    "PaletteSize",
			Expected: fmt.Sprintf("%d", c.Config.PaletteSize),
			Actual:   fmt.Sprintf("%d", config.PaletteSize),
		}
	}
	if c.Config.FilterSize != config.FilterSize {
		return &CompatibilityError{
			Field:    "FilterSize",
			Expected: fmt.Sprintf("%d", c.Config.FilterSize),
			Actual:   fmt.Sprintf("%d", config.FilterSize),
		}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
