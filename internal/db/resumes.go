package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/career-portal/internal/types"
)

const baseResumeColumns = `id, user_id, name, content, skills, experience, education, created_at, updated_at`

func scanBaseResume(row pgx.Row) (*types.BaseResume, error) {
	var (
		r                 types.BaseResume
		skills, exp, educ []byte
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Name, &r.Content, &skills, &exp, &educ, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if r.Skills, err = unmarshalList(skills); err != nil {
		return nil, fmt.Errorf("failed to decode skills: %w", err)
	}
	if r.Experience, err = unmarshalList(exp); err != nil {
		return nil, fmt.Errorf("failed to decode experience: %w", err)
	}
	if r.Education, err = unmarshalList(educ); err != nil {
		return nil, fmt.Errorf("failed to decode education: %w", err)
	}
	return &r, nil
}

// CreateBaseResume inserts r, assigning an ID when it has none.
func (db *DB) CreateBaseResume(ctx context.Context, r *types.BaseResume) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	lists, err := marshalLists(r.Skills, r.Experience, r.Education)
	if err != nil {
		return fmt.Errorf("failed to marshal base resume: %w", err)
	}
	err = db.pool.QueryRow(ctx,
		`INSERT INTO base_resumes (id, user_id, name, content, skills, experience, education)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		r.ID, r.UserID, r.Name, r.Content, lists[0], lists[1], lists[2],
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create base resume: %w", err)
	}
	return nil
}

// GetBaseResume returns userID's base resume with id, or nil if there is
// none.
func (db *DB) GetBaseResume(ctx context.Context, userID, id uuid.UUID) (*types.BaseResume, error) {
	r, err := scanBaseResume(db.pool.QueryRow(ctx,
		`SELECT `+baseResumeColumns+` FROM base_resumes WHERE id = $1 AND user_id = $2`, id, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get base resume: %w", err)
	}
	return r, nil
}

// ListBaseResumes returns userID's base resumes, most recently updated first.
func (db *DB) ListBaseResumes(ctx context.Context, userID uuid.UUID) ([]types.BaseResume, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+baseResumeColumns+` FROM base_resumes WHERE user_id = $1 ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list base resumes: %w", err)
	}
	defer rows.Close()

	out := []types.BaseResume{}
	for rows.Next() {
		r, err := scanBaseResume(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan base resume: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate base resumes: %w", err)
	}
	return out, nil
}

// UpdateBaseResume replaces the content of userID's base resume r.ID.
func (db *DB) UpdateBaseResume(ctx context.Context, r *types.BaseResume) error {
	lists, err := marshalLists(r.Skills, r.Experience, r.Education)
	if err != nil {
		return fmt.Errorf("failed to marshal base resume: %w", err)
	}
	err = db.pool.QueryRow(ctx,
		`UPDATE base_resumes SET name = $1, content = $2, skills = $3, experience = $4, education = $5, updated_at = NOW()
		 WHERE id = $6 AND user_id = $7
		 RETURNING created_at, updated_at`,
		r.Name, r.Content, lists[0], lists[1], lists[2], r.ID, r.UserID,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("base resume %s: %w", r.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update base resume: %w", err)
	}
	return nil
}

// DeleteBaseResume removes userID's base resume with id.
func (db *DB) DeleteBaseResume(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM base_resumes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete base resume: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("base resume %s: %w", id, ErrNotFound)
	}
	return nil
}

func marshalLists(lists ...[]string) ([][]byte, error) {
	out := make([][]byte, len(lists))
	for i, l := range lists {
		b, err := marshalList(l)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

const optimizedColumns = `id, job_id, user_id, job_title, company_name, content, original_content,
	match_score, suggestions, keywords, created_at, updated_at`

func scanOptimized(row pgx.Row) (*types.OptimizedResume, error) {
	var (
		r                     types.OptimizedResume
		suggestions, keywords []byte
	)
	err := row.Scan(&r.ID, &r.JobID, &r.UserID, &r.JobTitle, &r.CompanyName, &r.Content, &r.OriginalContent,
		&r.MatchScore, &suggestions, &keywords, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if r.Suggestions, err = unmarshalList(suggestions); err != nil {
		return nil, fmt.Errorf("failed to decode suggestions: %w", err)
	}
	if r.Keywords, err = unmarshalList(keywords); err != nil {
		return nil, fmt.Errorf("failed to decode keywords: %w", err)
	}
	return &r, nil
}

// SaveOptimizedResume stores r as the optimized resume of r.JobID and points
// the job at it. An earlier resume for the same job is replaced.
func (db *DB) SaveOptimizedResume(ctx context.Context, r *types.OptimizedResume) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	lists, err := marshalLists(r.Suggestions, r.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal optimized resume: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO optimized_resumes (id, job_id, user_id, job_title, company_name, content, original_content,
		                                match_score, suggestions, keywords, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (job_id) DO UPDATE SET
		     id = EXCLUDED.id,
		     job_title = EXCLUDED.job_title,
		     company_name = EXCLUDED.company_name,
		     content = EXCLUDED.content,
		     original_content = EXCLUDED.original_content,
		     match_score = EXCLUDED.match_score,
		     suggestions = EXCLUDED.suggestions,
		     keywords = EXCLUDED.keywords,
		     updated_at = EXCLUDED.updated_at`,
		r.ID, r.JobID, r.UserID, r.JobTitle, r.CompanyName, r.Content, r.OriginalContent,
		r.MatchScore, lists[0], lists[1], r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save optimized resume: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE jobs SET resume_id = $1, match_score = $2, updated_at = $3 WHERE id = $4 AND user_id = $5`,
		r.ID, r.MatchScore, r.UpdatedAt, r.JobID, r.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to link optimized resume: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit optimized resume: %w", err)
	}
	return nil
}

// GetOptimizedResume returns userID's optimized resume with id, or nil if
// there is none.
func (db *DB) GetOptimizedResume(ctx context.Context, userID, id uuid.UUID) (*types.OptimizedResume, error) {
	r, err := scanOptimized(db.pool.QueryRow(ctx,
		`SELECT `+optimizedColumns+` FROM optimized_resumes WHERE id = $1 AND user_id = $2`, id, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get optimized resume: %w", err)
	}
	return r, nil
}

// GetOptimizedResumeByJob returns the optimized resume of userID's job, or
// nil if the job has none.
func (db *DB) GetOptimizedResumeByJob(ctx context.Context, userID, jobID uuid.UUID) (*types.OptimizedResume, error) {
	r, err := scanOptimized(db.pool.QueryRow(ctx,
		`SELECT `+optimizedColumns+` FROM optimized_resumes WHERE job_id = $1 AND user_id = $2`, jobID, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get optimized resume: %w", err)
	}
	return r, nil
}

// ListOptimizedResumes returns userID's optimized resumes, newest first.
func (db *DB) ListOptimizedResumes(ctx context.Context, userID uuid.UUID) ([]types.OptimizedResume, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+optimizedColumns+` FROM optimized_resumes WHERE user_id = $1 ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list optimized resumes: %w", err)
	}
	defer rows.Close()

	out := []types.OptimizedResume{}
	for rows.Next() {
		r, err := scanOptimized(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan optimized resume: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate optimized resumes: %w", err)
	}
	return out, nil
}

// DeleteOptimizedResume removes userID's optimized resume with id and clears
// the job's link to it.
func (db *DB) DeleteOptimizedResume(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM optimized_resumes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete optimized resume: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("optimized resume %s: %w", id, ErrNotFound)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE jobs SET resume_id = NULL, match_score = NULL WHERE resume_id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("failed to unlink optimized resume: %w", err)
	}
	return tx.Commit(ctx)
}
