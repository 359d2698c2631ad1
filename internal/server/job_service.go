package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/db"
	"github.com/jonathan/career-portal/internal/tracker"
	"github.com/jonathan/career-portal/internal/types"
)

// JobService scopes job tracking to the session's user.
type JobService struct {
	store JobStore
	now   func() time.Time
}

// NewJobService creates a JobService backed by store.
func NewJobService(store JobStore) *JobService {
	return &JobService{store: store, now: time.Now}
}

// List returns the session user's jobs, newest first.
func (s *JobService) List(ctx context.Context, session *types.Session, filter db.JobFilter) ([]types.Job, error) {
	jobs, err := s.store.ListJobs(ctx, session.UserID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// Create starts tracking a job. A job the user already tracks yields
// *ErrDuplicateJob.
func (s *JobService) Create(ctx context.Context, session *types.Session, req *types.CreateJobRequest) (*types.Job, error) {
	now := s.now().UTC()
	job := &types.Job{
		ID:          uuid.New(),
		UserID:      session.UserID,
		Title:       strings.TrimSpace(req.Title),
		Company:     strings.TrimSpace(req.Company),
		Description: req.Description,
		URL:         req.URL,
		Location:    req.Location,
		Salary:      req.Salary,
		Notes:       req.Notes,
		Status:      types.StatusSaved,
		DateApplied: req.DateApplied,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Status != "" {
		job.Status = req.Status
	}
	if job.Status == types.StatusApplied && job.DateApplied == nil {
		job.DateApplied = &now
	}
	job.Timeline = []types.TimelineEntry{{Status: job.Status, Date: now, Note: "Job added"}}

	if err := s.store.CreateJob(ctx, job); err != nil {
		var dup *tracker.DuplicateError
		if errors.As(err, &dup) {
			return nil, &ErrDuplicateJob{Result: dup.Result}
		}
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// Get returns one of the session user's jobs.
func (s *JobService) Get(ctx context.Context, session *types.Session, id uuid.UUID) (*types.Job, error) {
	job, err := s.store.GetJob(ctx, session.UserID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, &ErrJobNotFound{JobID: id}
	}
	return job, nil
}

// Update applies the non-nil fields of req. Status changes go through
// UpdateStatus so they are recorded on the timeline.
func (s *JobService) Update(ctx context.Context, session *types.Session, id uuid.UUID, req *types.UpdateJobRequest) (*types.Job, error) {
	job, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}

	applyString(&job.Title, req.Title)
	applyString(&job.Company, req.Company)
	applyString(&job.Description, req.Description)
	applyString(&job.URL, req.URL)
	applyString(&job.Location, req.Location)
	applyString(&job.Salary, req.Salary)
	applyString(&job.Notes, req.Notes)
	if req.DateApplied != nil {
		job.DateApplied = req.DateApplied
	}
	job.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateJob(ctx, job); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &ErrJobNotFound{JobID: id}
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return job, nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// UpdateStatus moves a job to status and appends a timeline entry. Any status
// may follow any other.
func (s *JobService) UpdateStatus(ctx context.Context, session *types.Session, id uuid.UUID, req *types.UpdateStatusRequest) (*types.Job, error) {
	status, err := tracker.ParseStatus(string(req.Status))
	if err != nil {
		return nil, &ErrValidation{Field: "status", Message: err.Error()}
	}
	job, err := s.store.UpdateJobStatus(ctx, session.UserID, id, status, req.Note)
	if err != nil {
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}
	if job == nil {
		return nil, &ErrJobNotFound{JobID: id}
	}
	return job, nil
}

// Delete stops tracking a job.
func (s *JobService) Delete(ctx context.Context, session *types.Session, id uuid.UUID) error {
	if err := s.store.DeleteJob(ctx, session.UserID, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &ErrJobNotFound{JobID: id}
		}
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// Stats counts the session user's jobs per status.
func (s *JobService) Stats(ctx context.Context, session *types.Session) (types.DashboardStats, error) {
	stats, err := s.store.JobStats(ctx, session.UserID)
	if err != nil {
		return types.DashboardStats{}, fmt.Errorf("failed to get job stats: %w", err)
	}
	return stats, nil
}
