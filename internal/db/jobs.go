package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/career-portal/internal/tracker"
	"github.com/jonathan/career-portal/internal/types"
)

// JobFilter narrows ListJobs. Zero values match everything.
type JobFilter struct {
	Status types.JobStatus
	// Query matches title, company or description, case-insensitively.
	Query  string
	Limit  int
	Offset int
}

const jobColumns = `id, user_id, title, company, description, url, location, salary, notes,
	status, date_applied, match_score, resume_id, created_at, updated_at`

func scanJob(row pgx.Row) (*types.Job, error) {
	var (
		j      types.Job
		status string
	)
	err := row.Scan(&j.ID, &j.UserID, &j.Title, &j.Company, &j.Description, &j.URL, &j.Location,
		&j.Salary, &j.Notes, &status, &j.DateApplied, &j.MatchScore, &j.ResumeID, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Status = types.JobStatus(status)
	return &j, nil
}

// CreateJob inserts job for job.UserID. A job matching one the user already
// tracks is rejected with a *tracker.DuplicateError. Timeline entries on job
// are written as its first events; with none, a single event for the current
// status is recorded.
func (db *DB) CreateJob(ctx context.Context, job *types.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = types.StatusSaved
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = job.CreatedAt
	}
	if len(job.Timeline) == 0 {
		job.Timeline = []types.TimelineEntry{{Status: job.Status, Date: job.CreatedAt}}
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// serialize creates per user so the duplicate check sees every row
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, job.UserID.String()); err != nil {
		return fmt.Errorf("failed to lock user jobs: %w", err)
	}

	existing, err := listJobs(ctx, tx, job.UserID, JobFilter{})
	if err != nil {
		return err
	}
	if res := tracker.CheckDuplicate(*job, existing); res.IsDuplicate {
		return &tracker.DuplicateError{Result: res}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO jobs (id, user_id, title, company, description, url, location, salary, notes,
		                   status, date_applied, match_score, resume_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		job.ID, job.UserID, job.Title, job.Company, job.Description, job.URL, job.Location, job.Salary,
		job.Notes, string(job.Status), job.DateApplied, job.MatchScore, job.ResumeID, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	for _, e := range job.Timeline {
		if err := insertEvent(ctx, tx, job.ID, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit job: %w", err)
	}
	return nil
}

func insertEvent(ctx context.Context, tx pgx.Tx, jobID uuid.UUID, e types.TimelineEntry) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO job_events (job_id, status, note, occurred_at) VALUES ($1, $2, $3, $4)`,
		jobID, string(e.Status), e.Note, e.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to record job event: %w", err)
	}
	return nil
}

// GetJob returns userID's job with id and its timeline, or nil if there is
// none.
func (db *DB) GetJob(ctx context.Context, userID, id uuid.UUID) (*types.Job, error) {
	job, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND user_id = $2`, id, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	timelines, err := loadTimelines(ctx, db.pool, []uuid.UUID{job.ID})
	if err != nil {
		return nil, err
	}
	job.Timeline = timelines[job.ID]
	return job, nil
}

// ListJobs returns userID's jobs, newest first, each with its timeline.
func (db *DB) ListJobs(ctx context.Context, userID uuid.UUID, filter JobFilter) ([]types.Job, error) {
	jobs, err := listJobs(ctx, db.pool, userID, filter)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return jobs, nil
	}

	ids := make([]uuid.UUID, len(jobs))
	for i := range jobs {
		ids[i] = jobs[i].ID
	}
	timelines, err := loadTimelines(ctx, db.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		jobs[i].Timeline = timelines[jobs[i].ID]
	}
	return jobs, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listJobs(ctx context.Context, q querier, userID uuid.UUID, filter JobFilter) ([]types.Job, error) {
	query, args := buildListJobsQuery(userID, filter)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []types.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

// buildListJobsQuery renders the filtered job query and its arguments.
func buildListJobsQuery(userID uuid.UUID, filter JobFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + jobColumns + ` FROM jobs WHERE user_id = $1`)
	args := []any{userID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		fmt.Fprintf(&sb, ` AND status = $%d`, len(args))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		fmt.Fprintf(&sb, ` AND (title ILIKE $%d OR company ILIKE $%d OR description ILIKE $%d)`, n, n, n)
	}
	sb.WriteString(` ORDER BY created_at DESC, id`)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, ` OFFSET $%d`, len(args))
	}
	return sb.String(), args
}

// escapeLike escapes the ILIKE wildcards in s.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func loadTimelines(ctx context.Context, q querier, jobIDs []uuid.UUID) (map[uuid.UUID][]types.TimelineEntry, error) {
	rows, err := q.Query(ctx,
		`SELECT job_id, status, note, occurred_at FROM job_events
		 WHERE job_id = ANY($1) ORDER BY occurred_at, id`, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load job events: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]types.TimelineEntry, len(jobIDs))
	for rows.Next() {
		var (
			jobID  uuid.UUID
			status string
			e      types.TimelineEntry
		)
		if err := rows.Scan(&jobID, &status, &e.Note, &e.Date); err != nil {
			return nil, fmt.Errorf("failed to scan job event: %w", err)
		}
		e.Status = types.JobStatus(status)
		out[jobID] = append(out[jobID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job events: %w", err)
	}
	return out, nil
}

// UpdateJob writes the editable fields of job. Status changes go through
// UpdateJobStatus so they are recorded as events.
func (db *DB) UpdateJob(ctx context.Context, job *types.Job) error {
	job.UpdatedAt = time.Now().UTC()
	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET title = $1, company = $2, description = $3, url = $4, location = $5,
		        salary = $6, notes = $7, date_applied = $8, match_score = $9, resume_id = $10, updated_at = $11
		 WHERE id = $12 AND user_id = $13`,
		job.Title, job.Company, job.Description, job.URL, job.Location, job.Salary, job.Notes,
		job.DateApplied, job.MatchScore, job.ResumeID, job.UpdatedAt, job.ID, job.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", job.ID, ErrNotFound)
	}
	return nil
}

// UpdateJobStatus moves userID's job to status and records the change. Any
// status may follow any other. It returns nil if the job does not exist.
func (db *DB) UpdateJobStatus(ctx context.Context, userID, id uuid.UUID, status types.JobStatus, note string) (*types.Job, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	job, err := scanJob(tx.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	tracker.ApplyStatus(job, status, note, time.Now().UTC())
	_, err = tx.Exec(ctx,
		`UPDATE jobs SET status = $1, date_applied = $2, updated_at = $3 WHERE id = $4`,
		string(job.Status), job.DateApplied, job.UpdatedAt, job.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}
	if err := insertEvent(ctx, tx, job.ID, job.Timeline[len(job.Timeline)-1]); err != nil {
		return nil, err
	}

	timelines, err := loadTimelines(ctx, tx, []uuid.UUID{job.ID})
	if err != nil {
		return nil, err
	}
	job.Timeline = timelines[job.ID]

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit job status: %w", err)
	}
	return job, nil
}

// DeleteJob removes userID's job, its events and its optimized resume.
func (db *DB) DeleteJob(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

// JobStats counts userID's jobs per status.
func (db *DB) JobStats(ctx context.Context, userID uuid.UUID) (types.DashboardStats, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM jobs WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return types.DashboardStats{}, fmt.Errorf("failed to count jobs: %w", err)
	}
	defer rows.Close()

	counts := map[types.JobStatus]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return types.DashboardStats{}, fmt.Errorf("failed to scan job count: %w", err)
		}
		counts[types.JobStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return types.DashboardStats{}, fmt.Errorf("failed to iterate job counts: %w", err)
	}
	return foldStats(counts), nil
}

func foldStats(counts map[types.JobStatus]int) types.DashboardStats {
	stats := types.DashboardStats{
		Saved:        counts[types.StatusSaved],
		Applied:      counts[types.StatusApplied],
		Interviewing: counts[types.StatusInterviewing],
		Offer:        counts[types.StatusOffer],
		Rejected:     counts[types.StatusRejected],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats
}
