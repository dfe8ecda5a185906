// Package ui renders the job server's HTML pages. The teacher's equivalent
// package used github.com/a-h/templ, but that UI source never survived
// retrieval into the reference pack, so this is rendered with the standard
// library's html/template instead.
package ui

import (
	"html/template"
	"io"
	"time"
)

// JobListItem summarizes one job for the job list page.
type JobListItem struct {
	ID          string
	State       string
	ImagePath   string
	PaletteSize int
	FilterSize  int
	Level       int
	Temperature float64
	Iterations  int
	StartTime   time.Time
	EndTime     *time.Time
	Error       string
}

// JobDetail holds the full set of fields shown on a job's detail page.
type JobDetail struct {
	ID                 string
	State              string
	ImagePath          string
	PaletteSize        int
	FilterSize         int
	InitialTemperature float64
	FinalTemperature   float64
	Level              int
	Temperature        float64
	Iterations         int
	StartTime          time.Time
	EndTime            *time.Time
	ElapsedSec         float64
	Error              string
}

var (
	jobListTmpl   = template.Must(template.New("jobList").Parse(jobListHTML))
	jobDetailTmpl = template.Must(template.New("jobDetail").Parse(jobDetailHTML))
	notFoundTmpl  = template.Must(template.New("jobNotFound").Parse(jobNotFoundHTML))
	createTmpl    = template.Must(template.New("createJob").Parse(createJobHTML))
)

// JobList renders the list of jobs.
func JobList(w io.Writer, jobs []JobListItem) error {
	return jobListTmpl.Execute(w, jobs)
}

// JobDetailPage renders a single job's detail view.
func JobDetailPage(w io.Writer, job JobDetail) error {
	return jobDetailTmpl.Execute(w, job)
}

// JobNotFound renders a simple "job not found" page.
func JobNotFound(w io.Writer, jobID string) error {
	return notFoundTmpl.Execute(w, jobID)
}

// CreateJobPage renders the job creation form, optionally with an error
// message from a failed prior submission.
func CreateJobPage(w io.Writer, errMsg string) error {
	return createTmpl.Execute(w, errMsg)
}

const pageStyle = `
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #1a1a1a; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 0.4rem 0.8rem; border-bottom: 1px solid #ddd; }
a { color: #0a5; }
.state-running { color: #d80; }
.state-completed { color: #0a5; }
.state-failed { color: #c00; }
form label { display: block; margin-top: 0.6rem; }
input { padding: 0.3rem; }
.error { color: #c00; }
</style>
`

const jobListHTML = pageStyle + `
<h1>Quantization jobs</h1>
<p><a href="/create">New job</a></p>
<table>
<tr><th>ID</th><th>State</th><th>Image</th><th>Palette</th><th>Level</th><th>Temperature</th><th>Iterations</th></tr>
{{range .}}
<tr>
<td><a href="/jobs/{{.ID}}">{{.ID}}</a></td>
<td class="state-{{.State}}">{{.State}}</td>
<td>{{.ImagePath}}</td>
<td>{{.PaletteSize}}</td>
<td>{{.Level}}</td>
<td>{{printf "%.4f" .Temperature}}</td>
<td>{{.Iterations}}</td>
</tr>
{{end}}
</table>
`

const jobDetailHTML = pageStyle + `
<h1>Job {{.ID}}</h1>
<p class="state-{{.State}}">State: {{.State}}</p>
<ul>
<li>Image: {{.ImagePath}}</li>
<li>Palette size: {{.PaletteSize}}</li>
<li>Filter size: {{.FilterSize}}</li>
<li>Temperature schedule: {{.InitialTemperature}} &rarr; {{.FinalTemperature}}</li>
<li>Current level: {{.Level}}</li>
<li>Current temperature: {{printf "%.6f" .Temperature}}</li>
<li>Iterations: {{.Iterations}}</li>
<li>Elapsed: {{printf "%.1f" .ElapsedSec}}s</li>
{{if .Error}}<li class="error">Error: {{.Error}}</li>{{end}}
</ul>
<p><img src="/api/v1/jobs/{{.ID}}/quantized.png" alt="quantized preview" style="max-width: 480px; border: 1px solid #ccc;"></p>
<p><a href="/">Back to job list</a></p>
`

const jobNotFoundHTML = pageStyle + `
<h1>Job not found</h1>
<p>No job with ID {{.}} exists.</p>
<p><a href="/">Back to job list</a></p>
`

const createJobHTML = pageStyle + `
<h1>Create quantization job</h1>
{{if .}}<p class="error">{{.}}</p>{{end}}
<form method="post" action="/create">
<label>Image path <input type="text" name="imagePath" required></label>
<label>Palette size <input type="number" name="paletteSize" value="16" min="2" max="256" required></label>
<label>Filter size (1, 3, or 5) <input type="number" name="filterSize" value="3" required></label>
<label>Initial temperature <input type="text" name="initialTemperature" value="1.0" required></label>
<label>Final temperature <input type="text" name="finalTemperature" value="0.001" required></label>
<label>Seed <input type="number" name="seed" value="0" required></label>
<p><button type="submit">Start</button></p>
</form>
`
