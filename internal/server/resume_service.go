package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/db"
	"github.com/jonathan/career-portal/internal/optimizer"
	"github.com/jonathan/career-portal/internal/resumetext"
	"github.com/jonathan/career-portal/internal/types"
)

// ResumeService manages base resumes and tailors them to tracked jobs.
type ResumeService struct {
	resumes ResumeStore
	jobs    *JobService
	opts    optimizer.Options
	now     func() time.Time
}

// NewResumeService creates a ResumeService. opts tunes every optimization.
func NewResumeService(resumes ResumeStore, jobs *JobService, opts optimizer.Options) *ResumeService {
	return &ResumeService{resumes: resumes, jobs: jobs, opts: opts, now: time.Now}
}

// ListBase returns the session user's base resumes.
func (s *ResumeService) ListBase(ctx context.Context, session *types.Session) ([]types.BaseResume, error) {
	resumes, err := s.resumes.ListBaseResumes(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list base resumes: %w", err)
	}
	return resumes, nil
}

// GetBase returns one of the session user's base resumes.
func (s *ResumeService) GetBase(ctx context.Context, session *types.Session, id uuid.UUID) (*types.BaseResume, error) {
	r, err := s.resumes.GetBaseResume(ctx, session.UserID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get base resume: %w", err)
	}
	if r == nil {
		return nil, &ErrResumeNotFound{ID: id}
	}
	return r, nil
}

// CreateBase stores a new base resume. Missing sections are parsed from the
// content.
func (s *ResumeService) CreateBase(ctx context.Context, session *types.Session, req *types.BaseResumeRequest) (*types.BaseResume, error) {
	r := baseFromRequest(req)
	r.ID = uuid.New()
	r.UserID = session.UserID
	if err := s.resumes.CreateBaseResume(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to create base resume: %w", err)
	}
	return r, nil
}

// UpdateBase replaces a base resume.
func (s *ResumeService) UpdateBase(ctx context.Context, session *types.Session, id uuid.UUID, req *types.BaseResumeRequest) (*types.BaseResume, error) {
	r := baseFromRequest(req)
	r.ID = id
	r.UserID = session.UserID
	if err := s.resumes.UpdateBaseResume(ctx, r); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &ErrResumeNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to update base resume: %w", err)
	}
	return r, nil
}

// DeleteBase removes a base resume.
func (s *ResumeService) DeleteBase(ctx context.Context, session *types.Session, id uuid.UUID) error {
	if err := s.resumes.DeleteBaseResume(ctx, session.UserID, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &ErrResumeNotFound{ID: id}
		}
		return fmt.Errorf("failed to delete base resume: %w", err)
	}
	return nil
}

func baseFromRequest(req *types.BaseResumeRequest) *types.BaseResume {
	r := &types.BaseResume{
		Name:       strings.TrimSpace(req.Name),
		Content:    req.Content,
		Skills:     req.Skills,
		Experience: req.Experience,
		Education:  req.Education,
	}
	if len(r.Skills) == 0 && len(r.Experience) == 0 && len(r.Education) == 0 {
		parsed := resumetext.Parse(req.Content)
		r.Skills, r.Experience, r.Education = parsed.Skills, parsed.Experience, parsed.Education
	}
	return r
}

// Extract reads the text of an uploaded PDF resume and splits it into
// sections.
func (s *ResumeService) Extract(data []byte) (*resumetext.Parsed, error) {
	text, err := resumetext.ExtractPDF(data)
	if err != nil {
		return nil, err
	}
	parsed := resumetext.Parse(text)
	return &parsed, nil
}

// Optimize tailors resume text to one of the session user's jobs and stores
// the result as the job's optimized resume, replacing any earlier one.
func (s *ResumeService) Optimize(ctx context.Context, session *types.Session, jobID uuid.UUID, req *types.OptimizeRequest) (*optimizer.Result, error) {
	job, err := s.jobs.Get(ctx, session, jobID)
	if err != nil {
		return nil, err
	}

	text := req.ResumeText
	if strings.TrimSpace(text) == "" {
		if req.BaseResumeID == nil {
			return nil, &ErrValidation{Field: "resume_text", Message: "resume text or base resume is required"}
		}
		base, err := s.GetBase(ctx, session, *req.BaseResumeID)
		if err != nil {
			return nil, err
		}
		text = base.Content
	}

	opts := s.opts
	if opts.Now == nil {
		opts.Now = s.now
	}
	result, err := optimizer.Optimize(text, *job, opts)
	if err != nil {
		return nil, err
	}

	if err := s.resumes.SaveOptimizedResume(ctx, &result.Resume); err != nil {
		return nil, fmt.Errorf("failed to save optimized resume: %w", err)
	}

	slog.Info("resume optimized",
		slog.String("job_id", jobID.String()),
		slog.Int("ats_score", result.ATSScore),
		slog.Int("added_keywords", len(result.AddedKeywords)))
	return result, nil
}

// GetOptimized returns the optimized resume of one of the session user's
// jobs.
func (s *ResumeService) GetOptimized(ctx context.Context, session *types.Session, jobID uuid.UUID) (*types.OptimizedResume, error) {
	r, err := s.resumes.GetOptimizedResumeByJob(ctx, session.UserID, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get optimized resume: %w", err)
	}
	if r == nil {
		return nil, &ErrResumeNotFound{}
	}
	return r, nil
}

// ListOptimized returns every optimized resume of the session user.
func (s *ResumeService) ListOptimized(ctx context.Context, session *types.Session) ([]types.OptimizedResume, error) {
	resumes, err := s.resumes.ListOptimizedResumes(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list optimized resumes: %w", err)
	}
	return resumes, nil
}

// DeleteOptimized removes the optimized resume of a job and clears the job's
// match score.
func (s *ResumeService) DeleteOptimized(ctx context.Context, session *types.Session, jobID uuid.UUID) error {
	r, err := s.GetOptimized(ctx, session, jobID)
	if err != nil {
		return err
	}
	if err := s.resumes.DeleteOptimizedResume(ctx, session.UserID, r.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &ErrResumeNotFound{ID: r.ID}
		}
		return fmt.Errorf("failed to delete optimized resume: %w", err)
	}
	return nil
}
