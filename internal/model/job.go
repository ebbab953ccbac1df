package model

import "time"

// Job tracks one document through the processing pipeline.
type Job struct {
	// Path is the location of the source document on disk.
	Path string `json:"path"`

	// Document is the loaded source. Markup is released after extraction.
	Document SourceDocument `json:"-"`

	// Encoding is the character set the document was decoded from.
	Encoding string `json:"encoding,omitempty"`

	// Report is the extraction result.
	Report *ExtractedReport `json:"report,omitempty"`

	// OutputPath is where the JSON report was written.
	OutputPath string `json:"output_path,omitempty"`

	// StartedAt and Elapsed measure the pipeline run.
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`

	// PerformedSteps lists the names of steps that completed.
	PerformedSteps []string `json:"performed_steps"`

	// Error is the first step failure; ErrorMessage is its text for serialization.
	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`

	// Cancelled is set when the context ended before all steps ran.
	Cancelled bool `json:"cancelled"`
}

// NewJob creates a Job for the document at path.
func NewJob(path string) *Job {
	return &Job{
		Path:           path,
		StartedAt:      time.Now(),
		PerformedSteps: make([]string, 0),
	}
}

// Failed reports whether the job ended with an error.
func (j *Job) Failed() bool {
	return j.Error != nil
}
