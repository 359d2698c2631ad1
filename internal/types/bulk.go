package types

import "github.com/google/uuid"

// ImportStatus is the lifecycle state of a bulk import.
type ImportStatus string

const (
	ImportProcessing ImportStatus = "processing"
	ImportPaused     ImportStatus = "paused"
	ImportCompleted  ImportStatus = "completed"
	ImportStopped    ImportStatus = "stopped"
)

// BulkImportRequest asks for a list of job URLs to be scraped and tracked.
type BulkImportRequest struct {
	JobURLs         []string   `json:"job_urls" validate:"required,min=1,dive,url"`
	OptimizeResumes bool       `json:"optimize_resumes"`
	BaseResumeID    *uuid.UUID `json:"base_resume_id,omitempty"`
}

// ImportProgress is a point-in-time snapshot of a bulk import.
type ImportProgress struct {
	Total     int          `json:"total"`
	Processed int          `json:"processed"`
	Pending   int          `json:"pending"`
	Errors    int          `json:"errors"`
	Status    ImportStatus `json:"status"`
}
