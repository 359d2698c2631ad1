package localstore

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/fetch"
	"github.com/jonathan/career-portal/internal/schemas"
	"github.com/jonathan/career-portal/internal/tracker"
	"github.com/jonathan/career-portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleJob(title string) types.Job {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return types.Job{
		ID:          uuid.New(),
		Title:       title,
		Company:     "Acme",
		Description: "Build " + title + " services with Go and PostgreSQL",
		Status:      types.StatusSaved,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "career-portal-jobs", Key(KeyJobs, ""))
	assert.Equal(t, "career-portal-jobs-u1", Key(KeyJobs, "u1"))
	assert.Equal(t, "career-portal-base-resumes-u1", Key(KeyBaseResumes, "u1"))
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	empty, err := s.LoadJobs(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	jobs := []types.Job{sampleJob("Backend Engineer"), sampleJob("Data Engineer")}
	require.NoError(t, s.SaveJobs(ctx, "u1", jobs))

	got, err := s.LoadJobs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, jobs, got)

	other, err := s.LoadJobs(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other, "keys are scoped per user")

	shared, err := s.LoadJobs(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, shared)
}

func TestStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveBaseResumes(ctx, "", []types.BaseResume{{ID: uuid.New(), Name: "General", Content: "text"}}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	base, err := s.LoadBaseResumes(ctx, "")
	require.NoError(t, err)
	require.Len(t, base, 1)
	assert.Equal(t, "General", base[0].Name)
}

func TestUserStore_CreateJobRejectsDuplicates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := s.ForUser("u1")

	job := sampleJob("Backend Engineer")
	require.NoError(t, u.CreateJob(ctx, &job))

	again := job
	again.ID = uuid.New()
	err := u.CreateJob(ctx, &again)
	var dup *tracker.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, job.ID, dup.Result.Existing.ID)

	jobs, err := s.LoadJobs(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestUserStore_UpdateGetDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := s.ForUser("u1")

	job := sampleJob("Backend Engineer")
	require.NoError(t, u.CreateJob(ctx, &job))
	require.NoError(t, u.SaveOptimizedResume(ctx, &types.OptimizedResume{ID: uuid.New(), JobID: job.ID, Content: "v1"}))

	tracker.ApplyStatus(&job, types.StatusApplied, "", time.Now())
	require.NoError(t, u.UpdateJob(ctx, &job))

	got, err := u.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApplied, got.Status)

	require.NoError(t, u.DeleteJob(ctx, job.ID))
	_, err = u.GetJob(ctx, job.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	resumes, err := s.LoadResumes(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, resumes, "resumes of a deleted job are removed")

	assert.ErrorIs(t, u.DeleteJob(ctx, job.ID), ErrNotFound)
	missing := sampleJob("Ghost")
	assert.ErrorIs(t, u.UpdateJob(ctx, &missing), ErrNotFound)
}

func TestUserStore_LatestOptimizationWins(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := s.ForUser("")
	jobID := uuid.New()

	require.NoError(t, u.SaveOptimizedResume(ctx, &types.OptimizedResume{ID: uuid.New(), JobID: jobID, Content: "first"}))
	require.NoError(t, u.SaveOptimizedResume(ctx, &types.OptimizedResume{ID: uuid.New(), JobID: jobID, Content: "second"}))

	resumes, err := s.LoadResumes(ctx, "")
	require.NoError(t, err)
	require.Len(t, resumes, 1)
	assert.Equal(t, "second", resumes[0].Content)
}

func TestUserStore_BaseResumes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := s.ForUser("u1")

	base := types.BaseResume{ID: uuid.New(), Name: "General", Content: "v1"}
	require.NoError(t, u.SaveBaseResume(ctx, &base))
	base.Content = "v2"
	require.NoError(t, u.SaveBaseResume(ctx, &base))

	got, err := u.GetBaseResume(ctx, base.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)

	_, err = u.GetBaseResume(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ExportImport(t *testing.T) {
	src := openTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	src.now = func() time.Time { return fixed }

	jobs := []types.Job{sampleJob("Backend Engineer")}
	require.NoError(t, src.SaveJobs(ctx, "u1", jobs))
	require.NoError(t, src.SaveBaseResumes(ctx, "u1", []types.BaseResume{{ID: uuid.New(), Name: "General", Content: "text"}}))

	data, err := src.Export(ctx, "u1")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2025-03-02T10:00:00Z", doc["exportDate"])
	assert.Equal(t, "u1", doc["userId"])
	assert.Equal(t, []any{}, doc["resumes"])

	dst := openTestStore(t)
	summary, err := dst.Import(ctx, data, "u9")
	require.NoError(t, err)
	assert.Equal(t, &ImportSummary{Jobs: 1, Resumes: 0, BaseResumes: 1}, summary)

	got, err := dst.LoadJobs(ctx, "u9")
	require.NoError(t, err)
	assert.Equal(t, jobs, got)
}

func TestStore_ImportLeavesAbsentCollections(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveJobs(ctx, "", []types.Job{sampleJob("Backend Engineer")}))

	_, err := s.Import(ctx, []byte(`{"baseResumes": []}`), "")
	require.NoError(t, err)

	jobs, err := s.LoadJobs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestStore_ImportRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveJobs(ctx, "", []types.Job{sampleJob("Backend Engineer")}))

	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"jobs": [`},
		{"bad status", `{"jobs": [{"id": "6f1c7f8e-2c1a-4d8e-9d2b-0c9a1b2c3d4e", "title": "X", "company": "Y", "status": "deleted"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Import(ctx, []byte(tt.data), "")
			require.Error(t, err)

			jobs, err := s.LoadJobs(ctx, "")
			require.NoError(t, err)
			assert.Len(t, jobs, 1, "nothing is written on failure")
		})
	}

	_, err := s.Import(ctx, []byte(`{"jobs": {}}`), "")
	var verr *schemas.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestStore_PageCache(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	var _ fetch.PageCache = s

	page := &fetch.Page{URL: "https://www.indeed.com/viewjob?jk=1", HTML: "<p>x</p>", Text: "x", StatusCode: 200, FetchedAt: now.Add(-2 * time.Hour)}
	require.NoError(t, s.PutPage(ctx, page))

	got, err := s.GetPage(ctx, page.URL, 3*time.Hour)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "x", got.Text)
	assert.True(t, page.FetchedAt.Equal(got.FetchedAt))

	stale, err := s.GetPage(ctx, page.URL, time.Hour)
	require.NoError(t, err)
	assert.Nil(t, stale)

	n, err := s.PrunePages(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	gone, err := s.GetPage(ctx, page.URL, 24*time.Hour)
	require.NoError(t, err)
	assert.Nil(t, gone)

	require.NoError(t, s.DeletePage(ctx, "https://missing.example"))
}
