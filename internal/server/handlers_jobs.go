package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/career-portal/internal/db"
	"github.com/jonathan/career-portal/internal/tracker"
	"github.com/jonathan/career-portal/internal/types"
)

// maxPageSize caps the limit query parameter of list endpoints.
const maxPageSize = 500

// handleListJobs returns the caller's jobs, optionally filtered by status and
// a search query.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := db.JobFilter{Query: q.Get("q")}
	if raw := q.Get("status"); raw != "" && raw != "all" {
		status, err := tracker.ParseStatus(raw)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = status
	}
	var err error
	if filter.Limit, err = queryInt(q.Get("limit"), 0, maxPageSize); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if filter.Offset, err = queryInt(q.Get("offset"), 0, -1); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid offset")
		return
	}

	jobs, err := s.jobs.List(r.Context(), session, filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// queryInt parses a non-negative integer parameter, capped at ceiling unless
// ceiling is negative.
func queryInt(raw string, def, ceiling int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	if ceiling >= 0 && n > ceiling {
		n = ceiling
	}
	return n, nil
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.CreateJobRequest
	if !s.decode(w, r, &req) {
		return
	}

	job, err := s.jobs.Create(r.Context(), session, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	job, err := s.jobs.Get(r.Context(), session, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req types.UpdateJobRequest
	if !s.decode(w, r, &req) {
		return
	}

	job, err := s.jobs.Update(r.Context(), session, id, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req types.UpdateStatusRequest
	if !s.decode(w, r, &req) {
		return
	}

	job, err := s.jobs.UpdateStatus(r.Context(), session, id, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.jobs.Delete(r.Context(), session, id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleJobStats(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	stats, err := s.jobs.Stats(r.Context(), session)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}
