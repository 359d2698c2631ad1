// Package types provides the records shared across the career portal: tracked
// jobs, resumes, sessions and bulk import progress.
package types

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the stage a tracked application is in.
type JobStatus string

const (
	StatusSaved        JobStatus = "saved"
	StatusApplied      JobStatus = "applied"
	StatusInterviewing JobStatus = "interviewing"
	StatusOffer        JobStatus = "offer"
	StatusRejected     JobStatus = "rejected"
)

// JobStatuses lists every status in pipeline order.
var JobStatuses = []JobStatus{
	StatusSaved, StatusApplied, StatusInterviewing, StatusOffer, StatusRejected,
}

// Valid reports whether s is a known status.
func (s JobStatus) Valid() bool {
	for _, known := range JobStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// TimelineEntry records one status change of a job.
type TimelineEntry struct {
	Status JobStatus `json:"status"`
	Date   time.Time `json:"date"`
	Note   string    `json:"note,omitempty"`
}

// Job is a tracked job application.
type Job struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Title       string          `json:"title"`
	Company     string          `json:"company"`
	Description string          `json:"description"`
	URL         string          `json:"url,omitempty"`
	Location    string          `json:"location,omitempty"`
	Salary      string          `json:"salary,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Status      JobStatus       `json:"status"`
	DateApplied *time.Time      `json:"date_applied,omitempty"`
	MatchScore  *int            `json:"match_score,omitempty"`
	ResumeID    *uuid.UUID      `json:"resume_id,omitempty"`
	Timeline    []TimelineEntry `json:"timeline,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateJobRequest is the payload for tracking a new job.
type CreateJobRequest struct {
	Title       string     `json:"title" validate:"required,min=1"`
	Company     string     `json:"company" validate:"required,min=1"`
	Description string     `json:"description"`
	URL         string     `json:"url,omitempty" validate:"omitempty,url"`
	Location    string     `json:"location,omitempty"`
	Salary      string     `json:"salary,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Status      JobStatus  `json:"status,omitempty" validate:"omitempty,oneof=saved applied interviewing offer rejected"`
	DateApplied *time.Time `json:"date_applied,omitempty"`
}

// UpdateJobRequest carries a partial update; nil fields are left unchanged.
type UpdateJobRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1"`
	Company     *string    `json:"company,omitempty" validate:"omitempty,min=1"`
	Description *string    `json:"description,omitempty"`
	URL         *string    `json:"url,omitempty" validate:"omitempty,url"`
	Location    *string    `json:"location,omitempty"`
	Salary      *string    `json:"salary,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	DateApplied *time.Time `json:"date_applied,omitempty"`
}

// UpdateStatusRequest moves a job to another status. Any status may follow any
// other.
type UpdateStatusRequest struct {
	Status JobStatus `json:"status" validate:"required,oneof=saved applied interviewing offer rejected"`
	Note   string    `json:"note,omitempty"`
}

// DashboardStats counts jobs per status.
type DashboardStats struct {
	Total        int `json:"total"`
	Saved        int `json:"saved"`
	Applied      int `json:"applied"`
	Interviewing int `json:"interviewing"`
	Offer        int `json:"offer"`
	Rejected     int `json:"rejected"`
}
