package localstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/tracker"
	"github.com/jonathan/career-portal/internal/types"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// UserStore scopes record-level operations to one user's collections.
type UserStore struct {
	store  *Store
	userID string
}

// ForUser returns a UserStore for userID; an empty ID selects the shared
// collections.
func (s *Store) ForUser(userID string) *UserStore {
	return &UserStore{store: s, userID: userID}
}

// CreateJob appends job unless an equivalent job is already tracked, in which
// case a *tracker.DuplicateError is returned.
func (u *UserStore) CreateJob(ctx context.Context, job *types.Job) error {
	var dupErr error
	err := update(ctx, u.store, Key(KeyJobs, u.userID), func(jobs []types.Job) []types.Job {
		if res := tracker.CheckDuplicate(*job, jobs); res.IsDuplicate {
			dupErr = &tracker.DuplicateError{Result: res}
			return jobs
		}
		return append(jobs, *job)
	})
	if err != nil {
		return err
	}
	return dupErr
}

// UpdateJob replaces the stored job with the same ID.
func (u *UserStore) UpdateJob(ctx context.Context, job *types.Job) error {
	found := false
	err := update(ctx, u.store, Key(KeyJobs, u.userID), func(jobs []types.Job) []types.Job {
		for i := range jobs {
			if jobs[i].ID == job.ID {
				jobs[i] = *job
				found = true
			}
		}
		return jobs
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("job %s: %w", job.ID, ErrNotFound)
	}
	return nil
}

// GetJob returns the job with id.
func (u *UserStore) GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	jobs, err := u.store.LoadJobs(ctx, u.userID)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID == id {
			return &jobs[i], nil
		}
	}
	return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
}

// DeleteJob removes the job with id and any resumes tailored to it.
func (u *UserStore) DeleteJob(ctx context.Context, id uuid.UUID) error {
	found := false
	err := update(ctx, u.store, Key(KeyJobs, u.userID), func(jobs []types.Job) []types.Job {
		kept := jobs[:0]
		for _, j := range jobs {
			if j.ID == id {
				found = true
				continue
			}
			kept = append(kept, j)
		}
		return kept
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return update(ctx, u.store, Key(KeyResumes, u.userID), func(resumes []types.OptimizedResume) []types.OptimizedResume {
		kept := resumes[:0]
		for _, r := range resumes {
			if r.JobID != id {
				kept = append(kept, r)
			}
		}
		return kept
	})
}

// SaveOptimizedResume stores resume, replacing an earlier one for the same
// job so the latest optimization wins.
func (u *UserStore) SaveOptimizedResume(ctx context.Context, resume *types.OptimizedResume) error {
	return update(ctx, u.store, Key(KeyResumes, u.userID), func(resumes []types.OptimizedResume) []types.OptimizedResume {
		for i := range resumes {
			if resumes[i].JobID == resume.JobID {
				resumes[i] = *resume
				return resumes
			}
		}
		return append(resumes, *resume)
	})
}

// SaveBaseResume adds or replaces a base resume by ID.
func (u *UserStore) SaveBaseResume(ctx context.Context, resume *types.BaseResume) error {
	return update(ctx, u.store, Key(KeyBaseResumes, u.userID), func(resumes []types.BaseResume) []types.BaseResume {
		for i := range resumes {
			if resumes[i].ID == resume.ID {
				resumes[i] = *resume
				return resumes
			}
		}
		return append(resumes, *resume)
	})
}

// GetBaseResume returns the base resume with id.
func (u *UserStore) GetBaseResume(ctx context.Context, id uuid.UUID) (*types.BaseResume, error) {
	resumes, err := u.store.LoadBaseResumes(ctx, u.userID)
	if err != nil {
		return nil, err
	}
	for i := range resumes {
		if resumes[i].ID == id {
			return &resumes[i], nil
		}
	}
	return nil, fmt.Errorf("base resume %s: %w", id, ErrNotFound)
}
