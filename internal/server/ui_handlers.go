package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cwbudde/spatialquant/internal/ui"
)

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	jobs := s.jobManager.ListJobs()
	items := make([]ui.JobListItem, len(jobs))
	for i, job := range jobs {
		items[i] = ui.JobListItem{
			ID:          job.ID,
			State:       string(job.State),
			ImagePath:   job.Config.ImagePath,
			PaletteSize: job.Config.PaletteSize,
			FilterSize:  job.Config.FilterSize,
			Level:       job.Level,
			Temperature: job.Temperature,
			Iterations:  job.Iterations,
			StartTime:   job.StartTime,
			EndTime:     job.EndTime,
			Error:       job.Error,
		}
	}

	if err := ui.JobList(w, items); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// handleJobDetail handles GET /jobs/:id
func (s *Server) handleJobDetail(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Path[len("/jobs/"):]

	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ui.JobNotFound(w, jobID); err != nil {
			http.Error(w, "Failed to render page", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var elapsed float64
	if job.EndTime != nil {
		elapsed = job.EndTime.Sub(job.StartTime).Seconds()
	} else {
		elapsed = time.Since(job.StartTime).Seconds()
	}

	detail := ui.JobDetail{
		ID:                 job.ID,
		State:              string(job.State),
		ImagePath:          job.Config.ImagePath,
		PaletteSize:        job.Config.PaletteSize,
		FilterSize:         job.Config.FilterSize,
		InitialTemperature: job.Config.InitialTemperature,
		FinalTemperature:   job.Config.FinalTemperature,
		Level:              job.Level,
		Temperature:        job.Temperature,
		Iterations:         job.Iterations,
		StartTime:          job.StartTime,
		EndTime:            job.EndTime,
		ElapsedSec:         elapsed,
		Error:              job.Error,
	}

	if err := ui.JobDetailPage(w, detail); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// handleCreatePage handles GET /create and POST /create
func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleCreatePageGet(w, r)
	case http.MethodPost:
		s.handleCreatePagePost(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleCreatePageGet renders the job creation form
func (s *Server) handleCreatePageGet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ui.CreateJobPage(w, ""); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// handleCreatePagePost processes the job creation form submission
func (s *Server) handleCreatePagePost(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := r.ParseForm(); err != nil {
		ui.CreateJobPage(w, "Failed to parse form data")
		return
	}

	imagePath := r.FormValue("imagePath")
	paletteSizeStr := r.FormValue("paletteSize")
	filterSizeStr := r.FormValue("filterSize")
	initialTempStr := r.FormValue("initialTemperature")
	finalTempStr := r.FormValue("finalTemperature")
	seedStr := r.FormValue("seed")

	if imagePath == "" {
		ui.CreateJobPage(w, "Image path is required")
		return
	}

	paletteSize, err := strconv.Atoi(paletteSizeStr)
	if err != nil || paletteSize < 2 || paletteSize > 256 {
		ui.CreateJobPage(w, "Palette size must be between 2 and 256")
		return
	}

	filterSize, err := strconv.Atoi(filterSizeStr)
	if err != nil || (filterSize != 1 && filterSize != 3 && filterSize != 5) {
		ui.CreateJobPage(w, "Filter size must be 1, 3, or 5")
		return
	}

	initialTemp, err := strconv.ParseFloat(initialTempStr, 64)
	if err != nil || initialTemp <= 0 {
		ui.CreateJobPage(w, "Initial temperature must be a positive number")
		return
	}

	finalTemp, err := strconv.ParseFloat(finalTempStr, 64)
	if err != nil || finalTemp <= 0 {
		ui.CreateJobPage(w, "Final temperature must be a positive number")
		return
	}

	seed, err := strconv.ParseInt(seedStr, 10, 64)
	if err != nil {
		ui.CreateJobPage(w, "Invalid seed value")
		return
	}

	src, err := loadSourceImage(imagePath)
	if err != nil {
		ui.CreateJobPage(w, "Failed to load image: "+err.Error())
		return
	}

	config := JobConfig{
		ImagePath:          imagePath,
		Width:              src.W,
		Height:             src.H,
		PaletteSize:        paletteSize,
		FilterSize:         filterSize,
		InitialTemperature: initialTemp,
		FinalTemperature:   finalTemp,
		Seed:               seed,
	}

	job := s.jobManager.CreateJob(config)

	go runJob(context.Background(), s.jobManager, s.store, job.ID)

	http.Redirect(w, r, "/jobs/"+job.ID, http.StatusSeeOther)
}
