package server

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/bulk"
	"github.com/jonathan/career-portal/internal/scrape"
	"github.com/jonathan/career-portal/internal/types"
)

// ImportView is the API representation of a bulk import.
type ImportView struct {
	ID          uuid.UUID            `json:"id"`
	StartedAt   time.Time            `json:"started_at"`
	Progress    types.ImportProgress `json:"progress"`
	Unsupported []string             `json:"unsupported_urls,omitempty"`
	Errors      []string             `json:"errors,omitempty"`
}

// ImportService runs bulk imports on behalf of session users.
type ImportService struct {
	registry *bulk.Registry
	resumes  *ResumeService
}

// NewImportService creates an ImportService over registry.
func NewImportService(registry *bulk.Registry, resumes *ResumeService) *ImportService {
	return &ImportService{registry: registry, resumes: resumes}
}

// Start begins importing req.JobURLs in the background. URLs of unsupported
// boards are skipped and reported in the view.
func (s *ImportService) Start(ctx context.Context, session *types.Session, req *types.BulkImportRequest) (*ImportView, error) {
	valid, invalid := scrape.PartitionURLs(req.JobURLs)
	if len(valid) == 0 {
		return nil, &ErrValidation{
			Field:   "job_urls",
			Message: "no supported job board URLs: " + strings.Join(invalid, ", "),
		}
	}

	breq := bulk.Request{
		UserID:          session.UserID,
		URLs:            valid,
		OptimizeResumes: req.OptimizeResumes,
	}
	if req.OptimizeResumes {
		if req.BaseResumeID == nil {
			return nil, bulk.ErrNoBaseResume
		}
		base, err := s.resumes.GetBase(ctx, session, *req.BaseResumeID)
		if err != nil {
			return nil, err
		}
		breq.BaseResume = base
	}

	imp, err := s.registry.Start(breq)
	if err != nil {
		return nil, err
	}
	view := viewOf(imp)
	view.Unsupported = invalid
	return view, nil
}

// Get returns one of the session user's imports.
func (s *ImportService) Get(session *types.Session, id uuid.UUID) (*bulk.Import, error) {
	return s.registry.Get(id, session.UserID)
}

// View returns the current state of an import.
func (s *ImportService) View(session *types.Session, id uuid.UUID) (*ImportView, error) {
	imp, err := s.Get(session, id)
	if err != nil {
		return nil, err
	}
	return viewOf(imp), nil
}

// List returns the session user's imports, oldest first.
func (s *ImportService) List(session *types.Session) []*ImportView {
	imports := s.registry.List(session.UserID)
	views := make([]*ImportView, 0, len(imports))
	for _, imp := range imports {
		views = append(views, viewOf(imp))
	}
	return views
}

// Control applies pause, resume or stop to an import.
func (s *ImportService) Control(session *types.Session, id uuid.UUID, action string) (*ImportView, error) {
	imp, err := s.Get(session, id)
	if err != nil {
		return nil, err
	}
	switch action {
	case "pause":
		imp.Pause()
	case "resume":
		imp.Resume()
	case "stop":
		imp.Stop()
	default:
		return nil, &ErrValidation{Field: "action", Message: "must be pause, resume or stop"}
	}
	return viewOf(imp), nil
}

func viewOf(imp *bulk.Import) *ImportView {
	view := &ImportView{ID: imp.ID, StartedAt: imp.StartedAt, Progress: imp.Progress()}
	if out, _ := imp.Outcome(); out != nil {
		view.Errors = out.Errors
	}
	return view
}
