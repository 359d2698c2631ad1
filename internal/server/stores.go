package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/db"
	"github.com/jonathan/career-portal/internal/types"
)

// UserStore persists accounts. *db.DB implements it.
type UserStore interface {
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, firstName, lastName, email, passwordHash string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// JobStore persists tracked jobs. *db.DB implements it.
type JobStore interface {
	CreateJob(ctx context.Context, job *types.Job) error
	GetJob(ctx context.Context, userID, id uuid.UUID) (*types.Job, error)
	ListJobs(ctx context.Context, userID uuid.UUID, filter db.JobFilter) ([]types.Job, error)
	UpdateJob(ctx context.Context, job *types.Job) error
	UpdateJobStatus(ctx context.Context, userID, id uuid.UUID, status types.JobStatus, note string) (*types.Job, error)
	DeleteJob(ctx context.Context, userID, id uuid.UUID) error
	JobStats(ctx context.Context, userID uuid.UUID) (types.DashboardStats, error)
}

// ResumeStore persists base and optimized resumes. *db.DB implements it.
type ResumeStore interface {
	CreateBaseResume(ctx context.Context, r *types.BaseResume) error
	GetBaseResume(ctx context.Context, userID, id uuid.UUID) (*types.BaseResume, error)
	ListBaseResumes(ctx context.Context, userID uuid.UUID) ([]types.BaseResume, error)
	UpdateBaseResume(ctx context.Context, r *types.BaseResume) error
	DeleteBaseResume(ctx context.Context, userID, id uuid.UUID) error

	SaveOptimizedResume(ctx context.Context, r *types.OptimizedResume) error
	GetOptimizedResumeByJob(ctx context.Context, userID, jobID uuid.UUID) (*types.OptimizedResume, error)
	ListOptimizedResumes(ctx context.Context, userID uuid.UUID) ([]types.OptimizedResume, error)
	DeleteOptimizedResume(ctx context.Context, userID, id uuid.UUID) error
}

var (
	_ UserStore   = (*db.DB)(nil)
	_ JobStore    = (*db.DB)(nil)
	_ ResumeStore = (*db.DB)(nil)
)
