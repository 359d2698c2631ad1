package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/career-portal/internal/schemas"
	"github.com/jonathan/career-portal/internal/types"
	embedded "github.com/jonathan/career-portal/schemas"
)

// Export is the portable snapshot of one user's data.
type Export struct {
	Jobs        []types.Job             `json:"jobs"`
	Resumes     []types.OptimizedResume `json:"resumes"`
	BaseResumes []types.BaseResume      `json:"baseResumes"`
	ExportDate  time.Time               `json:"exportDate"`
	UserID      string                  `json:"userId,omitempty"`
}

// ImportSummary counts the records an import wrote per collection.
type ImportSummary struct {
	Jobs        int `json:"jobs"`
	Resumes     int `json:"resumes"`
	BaseResumes int `json:"base_resumes"`
}

// Export returns userID's data as indented JSON.
func (s *Store) Export(ctx context.Context, userID string) ([]byte, error) {
	jobs, err := s.LoadJobs(ctx, userID)
	if err != nil {
		return nil, err
	}
	resumes, err := s.LoadResumes(ctx, userID)
	if err != nil {
		return nil, err
	}
	base, err := s.LoadBaseResumes(ctx, userID)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(Export{
		Jobs:        jobs,
		Resumes:     resumes,
		BaseResumes: base,
		ExportDate:  s.now().UTC(),
		UserID:      userID,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return data, nil
}

// Import validates data against the export schema and replaces each
// collection present in it. Absent collections are left alone. Nothing is
// written when validation fails.
func (s *Store) Import(ctx context.Context, data []byte, userID string) (*ImportSummary, error) {
	if err := schemas.ValidateBytes(embedded.Export, data); err != nil {
		return nil, err
	}

	var doc struct {
		Jobs        *[]types.Job             `json:"jobs"`
		Resumes     *[]types.OptimizedResume `json:"resumes"`
		BaseResumes *[]types.BaseResume      `json:"baseResumes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode import: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	summary := &ImportSummary{}
	if doc.Jobs != nil {
		if err := s.put(ctx, tx, Key(KeyJobs, userID), nonNil(*doc.Jobs)); err != nil {
			return nil, err
		}
		summary.Jobs = len(*doc.Jobs)
	}
	if doc.Resumes != nil {
		if err := s.put(ctx, tx, Key(KeyResumes, userID), nonNil(*doc.Resumes)); err != nil {
			return nil, err
		}
		summary.Resumes = len(*doc.Resumes)
	}
	if doc.BaseResumes != nil {
		if err := s.put(ctx, tx, Key(KeyBaseResumes, userID), nonNil(*doc.BaseResumes)); err != nil {
			return nil, err
		}
		summary.BaseResumes = len(*doc.BaseResumes)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	return summary, nil
}
