package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jonathan/career-portal/internal/types"
)

// maxUploadBytes bounds PDF uploads.
const maxUploadBytes = 10 << 20

var pdfMagic = []byte("%PDF-")

func (s *Server) handleListBaseResumes(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	resumes, err := s.resumes.ListBase(r.Context(), session)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"resumes": resumes, "count": len(resumes)})
}

func (s *Server) handleCreateBaseResume(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.BaseResumeRequest
	if !s.decode(w, r, &req) {
		return
	}
	resume, err := s.resumes.CreateBase(r.Context(), session, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resume)
}

func (s *Server) handleGetBaseResume(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	resume, err := s.resumes.GetBase(r.Context(), session, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleUpdateBaseResume(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req types.BaseResumeRequest
	if !s.decode(w, r, &req) {
		return
	}
	resume, err := s.resumes.UpdateBase(r.Context(), session, id, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleDeleteBaseResume(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.resumes.DeleteBase(r.Context(), session, id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExtractResume reads the "file" field of a multipart upload and
// returns the PDF's text split into resume sections.
func (s *Server) handleExtractResume(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.session(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "file exceeds 10MB")
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "expected multipart form with a file field")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") && !bytes.HasPrefix(data, pdfMagic) {
		s.errorResponse(w, http.StatusUnsupportedMediaType, "only PDF files are supported")
		return
	}

	parsed, err := s.resumes.Extract(data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, parsed)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req types.OptimizeRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.resumes.Optimize(r.Context(), session, id, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleGetOptimized(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	resume, err := s.resumes.GetOptimized(r.Context(), session, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleDeleteOptimized(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.resumes.DeleteOptimized(r.Context(), session, id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListOptimized(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	resumes, err := s.resumes.ListOptimized(r.Context(), session)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"resumes": resumes, "count": len(resumes)})
}
