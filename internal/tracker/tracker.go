// Package tracker holds the job pipeline rules shared by the API and the
// local store: status changes, dashboard counts, duplicate detection and
// search.
package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/career-portal/internal/types"
)

// ParseStatus converts user input into a JobStatus.
func ParseStatus(s string) (types.JobStatus, error) {
	status := types.JobStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown job status %q", s)
	}
	return status, nil
}

// ApplyStatus overwrites the job's status and records the change in its
// timeline. There is no transition table: any status may follow any other.
// Moving to applied for the first time stamps DateApplied.
func ApplyStatus(job *types.Job, status types.JobStatus, note string, at time.Time) {
	job.Status = status
	job.UpdatedAt = at
	if status == types.StatusApplied && job.DateApplied == nil {
		applied := at
		job.DateApplied = &applied
	}
	job.Timeline = append(job.Timeline, types.TimelineEntry{
		Status: status,
		Date:   at,
		Note:   note,
	})
}

// Stats counts jobs per status.
func Stats(jobs []types.Job) types.DashboardStats {
	var stats types.DashboardStats
	for _, job := range jobs {
		stats.Total++
		switch job.Status {
		case types.StatusSaved:
			stats.Saved++
		case types.StatusApplied:
			stats.Applied++
		case types.StatusInterviewing:
			stats.Interviewing++
		case types.StatusOffer:
			stats.Offer++
		case types.StatusRejected:
			stats.Rejected++
		}
	}
	return stats
}

// FilterByStatus returns the jobs in the given status, keeping order.
func FilterByStatus(jobs []types.Job, status types.JobStatus) []types.Job {
	out := make([]types.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.Status == status {
			out = append(out, job)
		}
	}
	return out
}

// Search returns jobs whose title, company or description contains query,
// case-insensitively. An empty query matches everything.
func Search(jobs []types.Job, query string) []types.Job {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return jobs
	}
	out := make([]types.Job, 0, len(jobs))
	for _, job := range jobs {
		if strings.Contains(strings.ToLower(job.Title), q) ||
			strings.Contains(strings.ToLower(job.Company), q) ||
			strings.Contains(strings.ToLower(job.Description), q) {
			out = append(out, job)
		}
	}
	return out
}
