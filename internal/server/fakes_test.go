package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/bulk"
	"github.com/jonathan/career-portal/internal/config"
	"github.com/jonathan/career-portal/internal/db"
	"github.com/jonathan/career-portal/internal/scrape"
	"github.com/jonathan/career-portal/internal/server/ratelimit"
	"github.com/jonathan/career-portal/internal/tracker"
	"github.com/jonathan/career-portal/internal/types"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory UserStore, JobStore and ResumeStore.
type memStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*db.User
	jobs      map[uuid.UUID]*types.Job
	bases     map[uuid.UUID]*types.BaseResume
	optimized map[uuid.UUID]*types.OptimizedResume // keyed by job ID
	pingErr   error
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[uuid.UUID]*db.User),
		jobs:      make(map[uuid.UUID]*types.Job),
		bases:     make(map[uuid.UUID]*types.BaseResume),
		optimized: make(map[uuid.UUID]*types.OptimizedResume),
	}
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) CheckEmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateUser(_ context.Context, first, last, email, hash string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	u := &db.User{ID: uuid.New(), FirstName: first, LastName: last, Email: email,
		PasswordHash: hash, PasswordSet: hash != "", CreatedAt: now, UpdatedAt: now}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return db.ErrNotFound
	}
	u.PasswordHash, u.PasswordSet = hash, true
	return nil
}

func (m *memStore) userJobs(userID uuid.UUID) []types.Job {
	var out []types.Job
	for _, j := range m.jobs {
		if j.UserID == userID {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out
}

func (m *memStore) CreateJob(_ context.Context, job *types.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if dup := tracker.CheckDuplicate(*job, m.userJobs(job.UserID)); dup.IsDuplicate {
		return &tracker.DuplicateError{Result: dup}
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = types.StatusSaved
	}
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memStore) GetJob(_ context.Context, userID, id uuid.UUID) (*types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok && j.UserID == userID {
		cp := *j
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) ListJobs(_ context.Context, userID uuid.UUID, filter db.JobFilter) ([]types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := m.userJobs(userID)
	if filter.Status != "" {
		jobs = tracker.FilterByStatus(jobs, filter.Status)
	}
	jobs = tracker.Search(jobs, filter.Query)
	if jobs == nil {
		jobs = []types.Job{}
	}
	return jobs, nil
}

func (m *memStore) UpdateJob(_ context.Context, job *types.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.jobs[job.ID]
	if !ok || existing.UserID != job.UserID {
		return fmt.Errorf("job %s: %w", job.ID, db.ErrNotFound)
	}
	cp := *job
	cp.Status, cp.Timeline = existing.Status, existing.Timeline
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memStore) UpdateJobStatus(_ context.Context, userID, id uuid.UUID, status types.JobStatus, note string) (*types.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.UserID != userID {
		return nil, nil
	}
	tracker.ApplyStatus(j, status, note, time.Now())
	cp := *j
	return &cp, nil
}

func (m *memStore) DeleteJob(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.UserID != userID {
		return fmt.Errorf("job %s: %w", id, db.ErrNotFound)
	}
	delete(m.jobs, id)
	delete(m.optimized, id)
	return nil
}

func (m *memStore) JobStats(_ context.Context, userID uuid.UUID) (types.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return tracker.Stats(m.userJobs(userID)), nil
}

func (m *memStore) CreateBaseResume(_ context.Context, r *types.BaseResume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.bases[r.ID] = &cp
	return nil
}

func (m *memStore) GetBaseResume(_ context.Context, userID, id uuid.UUID) (*types.BaseResume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.bases[id]; ok && r.UserID == userID {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) ListBaseResumes(_ context.Context, userID uuid.UUID) ([]types.BaseResume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.BaseResume{}
	for _, r := range m.bases {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) UpdateBaseResume(_ context.Context, r *types.BaseResume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.bases[r.ID]
	if !ok || existing.UserID != r.UserID {
		return db.ErrNotFound
	}
	cp := *r
	m.bases[r.ID] = &cp
	return nil
}

func (m *memStore) DeleteBaseResume(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.bases[id]
	if !ok || r.UserID != userID {
		return db.ErrNotFound
	}
	delete(m.bases, id)
	return nil
}

func (m *memStore) SaveOptimizedResume(_ context.Context, r *types.OptimizedResume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.optimized[r.JobID] = &cp
	if j, ok := m.jobs[r.JobID]; ok {
		score, id := r.MatchScore, r.ID
		j.MatchScore, j.ResumeID = &score, &id
	}
	return nil
}

func (m *memStore) GetOptimizedResumeByJob(_ context.Context, userID, jobID uuid.UUID) (*types.OptimizedResume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.optimized[jobID]; ok && r.UserID == userID {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) ListOptimizedResumes(_ context.Context, userID uuid.UUID) ([]types.OptimizedResume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []types.OptimizedResume{}
	for _, r := range m.optimized {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) DeleteOptimizedResume(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for jobID, r := range m.optimized {
		if r.ID == id && r.UserID == userID {
			delete(m.optimized, jobID)
			if j, ok := m.jobs[jobID]; ok {
				j.MatchScore, j.ResumeID = nil, nil
			}
			return nil
		}
	}
	return db.ErrNotFound
}

// stubScraper returns a canned posting for every URL containing "ok" and
// fails the rest.
type stubScraper struct{}

func (stubScraper) Scrape(_ context.Context, url string) (*scrape.ScrapedJob, error) {
	if !strings.Contains(url, "ok") {
		return nil, fmt.Errorf("page not found")
	}
	return &scrape.ScrapedJob{
		Title:       "Backend Engineer " + url[strings.LastIndex(url, "/")+1:],
		Company:     "Acme",
		Description: "We need a backend engineer with Go, PostgreSQL, Kubernetes and Docker experience to build APIs. " + url,
		URL:         url,
	}, nil
}

const testSecret = "test-secret-key-0123"

type testServer struct {
	*Server
	store *memStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, &ratelimit.Config{Enabled: false})
}

func newTestServerWith(t *testing.T, limits *ratelimit.Config) *testServer {
	t.Helper()
	store := newMemStore()
	srv := NewWithDeps(Deps{
		Users:     store,
		Jobs:      store,
		Resumes:   store,
		Pinger:    store,
		Scraper:   stubScraper{},
		JWT:       &config.JWTConfig{Secret: testSecret, TTL: time.Hour, Issuer: "career-portal"},
		Password:  &config.PasswordConfig{BcryptCost: 4},
		RateLimit: limits,
		Bulk:      bulk.Config{PollInterval: 5 * time.Millisecond},
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.registry.Shutdown(ctx)
		srv.rateLimiter.Stop()
	})
	return &testServer{Server: srv, store: store}
}

// do sends a request through the full middleware chain.
func (ts *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

// register creates a user and returns its token.
func (ts *testServer) register(t *testing.T, email string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/auth/register", "",
		`{"first_name":"Ada","last_name":"Lovelace","email":"`+email+`","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp types.AuthResponse
	decodeJSON(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}
