package store

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCheckpoint_JSONSerialization(t *testing.T) {
	original := &Checkpoint{
		JobID:       "test-job-123",
		Palette:     []float64{0.1, 0.2, 0.3, 0.8, 0.7, 0.6},
		Level:       2,
		Temperature: 0.5621,
		Iteration:   500,
		Timestamp:   time.Date(2025, 10, 23, 10, 30, 0, 0, time.UTC),
		Config: JobConfig{
			ImagePath:          "assets/test.png",
			Width:              64,
			Height:             64,
			PaletteSize:        2,
			FilterSize:         3,
			InitialTemperature: 2.0,
			FinalTemperature:   0.02,
			Seed:               42,
		},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal checkpoint: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshaled JSON is empty")
	}

	var restored Checkpoint
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal checkpoint: %v", err)
	}

	if restored.JobID != original.JobID {
		t.Errorf("JobID mismatch: expected %s, got %s", original.JobID, restored.JobID)
	}
	if restored.Level != original.Level {
		t.Errorf("Level mismatch: expected %d, got %d", original.Level, restored.Level)
	}
	if restored.Temperature != original.Temperature {
		t.Errorf("Temperature mismatch: expected %f, got %f", original.Temperature, restored.Temperature)
	}
	if restored.Iteration != original.Iteration {
		t.Errorf("Iteration mismatch: expected %d, got %d", original.Iteration, restored.Iteration)
	}
	if !restored.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp mismatch: expected %v, got %v", original.Timestamp, restored.Timestamp)
	}
	if len(restored.Palette) != len(original.Palette) {
		t.Fatalf("Palette length mismatch: expected %d, got %d", len(original.Palette), len(restored.Palette))
	}
	for i := range original.Palette {
		if restored.Palette[i] != original.Palette[i] {
			t.Errorf("Palette[%d] mismatch: expected %f, got %f", i, original.Palette[i], restored.Palette[i])
		}
	}
	if restored.Config.ImagePath != original.Config.ImagePath {
		t.Errorf("Config.ImagePath mismatch: expected %s, got %s", original.Config.ImagePath, restored.Config.ImagePath)
	}
	if restored.Config.PaletteSize != original.Config.PaletteSize {
		t.Errorf("Config.PaletteSize mismatch: expected %d, got %d", original.Config.PaletteSize, restored.Config.PaletteSize)
	}
}

func TestCheckpoint_JSONIndented(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:       "test-job",
		Palette:     []float64{1.0, 0.5, 0.25},
		Level:       1,
		Temperature: 0.1,
		Iteration:   100,
		Timestamp:   time.Now(),
		Config: JobConfig{
			ImagePath:   "test.png",
			Width:       16,
			Height:      16,
			PaletteSize: 1,
			FilterSize:  3,
			Seed:        0,
		},
	}

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal with indent: %v", err)
	}

	var restored Checkpoint
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal indented JSON: %v", err)
	}

	if restored.JobID != checkpoint.JobID {
		t.Errorf("JobID mismatch after indented serialization")
	}
}

func TestCheckpoint_Validate_Valid(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:       "valid-job",
		Palette:     []float64{0.1, 0.2, 0.3, 0.8, 0.7, 0.6},
		Level:       0,
		Temperature: 0.1,
		Iteration:   100,
		Timestamp:   time.Now(),
		Config: JobConfig{
			ImagePath:   "test.png",
			Width:       16,
			Height:      16,
			PaletteSize: 2,
			FilterSize:  3,
			Seed:        42,
		},
	}

	err := checkpoint.Validate()
	if err != nil {
		t.Errorf("Valid checkpoint should not have validation error: %v", err)
	}
}

func TestCheckpoint_Validate_EmptyJobID(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:       "",
		Palette:     []float64{1, 2, 3},
		Temperature: 0.1,
		Iteration:   100,
		Timestamp:   time.Now(),
		Config: JobConfig{
			ImagePath:   "test.png",
			Width:       16,
			Height:      16,
			PaletteSize: 1,
		},
	}

	err := checkpoint.Validate()
	if err == nil {
		t.Fatal("Expected validation error for empty JobID")
	}

	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("Expected ValidationError, got %T", err)
	}
}

func TestCheckpoint_Validate_NilPalette(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:       "test",
		Palette:     nil,
		Temperature: 0.1,
		Iteration:   100,
		Timestamp:   time.Now(),
		Config: JobConfig{
			ImagePath:   "test.png",
			Width:       16,
			Height:      16,
			PaletteSize: 1,
		},
	}

	err := checkpoint.Validate()
	if err == nil {
		t.Fatal("Expected validation error for nil Palette")
	}
}

func TestCheckpoint_Validate_EmptyPalette(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:       "test",
		Palette:     []float64{},
		Temperature: 0.1,
		Iteration:   100,
		Timestamp:   time.Now(),
		Config: JobConfig{
			ImagePath:   "test.png",
			Width:       16,
			Height:      16,
			PaletteSize: 1,
		},
	}

	err := checkpoint.Validate()
	if err == nil {
		t.Fatal("Expected validation error for empty Palette")
	}
}

func TestCheckpoint_Validate_InvalidPaletteLength(t *testing.T) {
	testCases := []struct {
		name    string
		palette []float64
	}{
		{"not multiple of 3", []float64{1, 2, 3, 4, 5}},
		{"wrong count for palette size", []float64{1, 2, 3, 4, 5, 6}}, // 6 values = 2 colors, but config says 1
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			checkpoint := &Checkpoint{
				JobID:       "test",
				Palette:     tc.palette,
				Temperature: 0.1,
				Iteration:   100,
				Timestamp:   time.Now(),
				Config: JobConfig{
					ImagePath:   "test.png",
					Width:       16,
					Height:      16,
					PaletteSize: 1, // Expects 3 values
				},
			}

			err := checkpoint.Validate()
			if err == nil {
				t.Fatalf("Expected validation error for %s", tc.name)
			}
		})
	}
}

func TestCheckpoint_Validate_NegativeValues(t *testing.T) {
	testCases := []struct {
		name        string
		level       int
		temperature float64
		iteration   int
	}{
		{"negative level", -1, 0.1, 100},
		{"non-positive temperature", 0, 0, 100},
		{"negative iteration", 0, 0.1, -10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			checkpoint := &Checkpoint{
				JobID:       "test",
				Palette:     []float64{1, 2, 3},
				Level:       tc.level,
				Temperature: tc.temperature,
				Iteration:   tc.iteration,
				Timestamp:   time.Now(),
				Config: JobConfig{
					ImagePath:   "test.png",
					Width:       16,
					Height:      16,
					PaletteSize: 1,
				},
			}

			err := checkpoint.Validate()
			if err == nil {
				t.Fatalf("Expected validation error for %s", tc.name)
			}
		})
	}
}

func TestCheckpoint_Validate_ZeroTimestamp(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:       "test",
		Palette:     []float64{1, 2, 3},
		Temperature: 0.1,
		Iteration:   100,
		Timestamp:   time.Time{}, // Zero value
		Config: JobConfig{
			ImagePath:   "test.png",
			Width:       16,
			Height:      16,
			PaletteSize: 1,
		},
	}

	err := checkpoint.Validate()
	if err == nil {
		t.Fatal("Expected validation error for zero timestamp")
	}
}

func TestCheckpoint_Validate_InvalidConfig(t *testing.T) {
	testCases := []struct {
		name   string
		config JobConfig
	}{
		{"empty imagePath", JobConfig{ImagePath: "", Width: 16, Height: 16, PaletteSize: 1}},
		{"zero width", JobConfig{ImagePath: "test.png", Width: 0, Height: 16, PaletteSize: 1}},
		{"zero height", JobConfig{ImagePath: "test.png", Width: 16, Height: 0, PaletteSize: 1}},
		{"zero paletteSize", JobConfig{ImagePath: "test.png", Width: 16, Height: 16, PaletteSize: 0}},
		{"negative paletteSize", JobConfig{ImagePath: "test.png", Width: 16, Height: 16, PaletteSize: -1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			checkpoint := &Checkpoint{
				JobID:       "test",
				Palette:     []float64{1, 2, 3},
				Temperature: 0.1,
				Iteration:   100,
				Timestamp:   time.Now(),
				Config:      tc.config,
			}

			err := checkpoint.Validate()
			if err == nil {
				t.Fatalf("Expected validation error for %s", tc.name)
			}
		})
	}
}

func TestCheckpoint_IsCompatible_Compatible(t *testing.T) {
	checkpoint := &Checkpoint{
		Config: JobConfig{
			ImagePath:   "test.png",
			PaletteSize: 10,
			FilterSize:  3,
		},
	}

	config := JobConfig{
		ImagePath:   "test.png",
		PaletteSize: 10,
		FilterSize:  3,
	}

	err := checkpoint.IsCompatible(config)
	if err != nil {
		t.Errorf("Compatible configs should not return error: %v", err)
	}
}

func TestCheckpoint_IsCompatible_DifferentImagePath(t *testing.T) {
	checkpoint := &Checkpoint{
		Config: JobConfig{
			ImagePath:   "test1.png",
			PaletteSize: 10,
		},
	}

	config := JobConfig{
		ImagePath:   "test2.png",
		PaletteSize: 10,
	}

	err := checkpoint.IsCompatible(config)
	if err == nil {
		t.Fatal("Expected compatibility error for different ImagePath")
	}

	if _, ok := err.(*CompatibilityError); !ok {
		t.Errorf("Expected CompatibilityError, got %T", err)
	}
}

func TestCheckpoint_IsCompatible_DifferentFilterSize(t *testing.T) {
	checkpoint := &Checkpoint{
		Config: JobConfig{
			ImagePath:   "test.png",
			PaletteSize: 10,
			FilterSize:  3,
		},
	}

	config := JobConfig{
		ImagePath:   "test.png",
		PaletteSize: 10,
		FilterSize:  5,
	}

	err := checkpoint.IsCompatible(config)
	if err == nil {
		t.Fatal("Expected compatibility error for different FilterSize")
	}
}

func TestCheckpoint_IsCompatible_DifferentPaletteSize(t *testing.T) {
	checkpoint := &Checkpoint{
		Config: JobConfig{
			ImagePath:   "test.png",
			PaletteSize: 10,
		},
	}

	config := JobConfig{
		ImagePath:   "test.png",
		PaletteSize: 20,
	}

	err := checkpoint.IsCompatible(config)
	if err == nil {
		t.Fatal("Expected compatibility error for different PaletteSize")
	}
}

func TestCheckpointInfo_FromCheckpoint(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:       "test-job",
		Temperature: 0.123,
		Iteration:   500,
		Timestamp:   time.Now(),
		Config: JobConfig{
			ImagePath:   "test.png",
			PaletteSize: 10,
		},
	}

	info := checkpoint.ToInfo()

	if info.JobID != checkpoint.JobID {
		t.Errorf("JobID mismatch: expected %s, got %s", checkpoint.JobID, info.JobID)
	}
	if info.Temperature != checkpoint.Temperature {
		t.Errorf("Temperature mismatch: expected %f, got %f", checkpoint.Temperature, info.Temperature)
	}
	if info.Iteration != checkpoint.Iteration {
		t.Errorf("Iteration mismatch: expected %d, got %d", checkpoint.Iteration, info.Iteration)
	}
	if !info.Timestamp.Equal(checkpoint.Timestamp) {
		t.Errorf("Timestamp mismatch")
	}
	if info.PaletteSize != checkpoint.Config.PaletteSize {
		t.Errorf("PaletteSize mismatch: expected %d, got %d", checkpoint.Config.PaletteSize, info.PaletteSize)
	}
	if info.ImagePath != checkpoint.Config.ImagePath {
		t.Errorf("ImagePath mismatch: expected %s, got %s", checkpoint.Config.ImagePath, info.ImagePath)
	}
}

func TestNewCheckpoint(t *testing.T) {
	jobID := "test-job"
	palette := []float64{0.1, 0.2, 0.3}
	level := 2
	temperature := 0.123
	iteration := 500
	config := JobConfig{
		ImagePath:   "test.png",
		Width:       16,
		Height:      16,
		PaletteSize: 1,
		FilterSize:  3,
		Seed:        42,
	}

	checkpoint := NewCheckpoint(jobID, palette, level, temperature, iteration, config)

	if checkpoint.JobID != jobID {
		t.Errorf("JobID mismatch: expected %s, got %s", jobID, checkpoint.JobID)
	}
	if checkpoint.Level != level {
		t.Errorf("Level mismatch: expected %d, got %d", level, checkpoint.Level)
	}
	if checkpoint.Temperature != temperature {
		t.Errorf("Temperature mismatch: expected %f, got %f", temperature, checkpoint.Temperature)
	}
	if checkpoint.Iteration != iteration {
		t.Errorf("Iteration mismatch: expected %d, got %d", iteration, checkpoint.Iteration)
	}
	if checkpoint.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if len(checkpoint.Palette) != len(palette) {
		t.Errorf("Palette length mismatch")
	}
}
