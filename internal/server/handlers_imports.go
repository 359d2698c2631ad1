package server

import (
	"log/slog"
	"net/http"

	"github.com/jonathan/career-portal/internal/types"
)

// handleStartImport starts a bulk import and returns immediately with its ID.
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.BulkImportRequest
	if !s.decode(w, r, &req) {
		return
	}

	view, err := s.imports.Start(r.Context(), session, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, view)
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"imports": s.imports.List(session)})
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	view, err := s.imports.View(session, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

// handleControlImport pauses, resumes or stops an import.
func (s *Server) handleControlImport(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	view, err := s.imports.Control(session, id, r.PathValue("action"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

// handleImportStream streams progress events until the import finishes or the
// client goes away.
func (s *Server) handleImportStream(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	imp, err := s.imports.Get(session, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	stream, err := openImportStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	updates, release := imp.Subscribe()
	defer release()

	if err := stream.progress(imp.Progress()); err != nil {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case progress, open := <-updates:
			if !open {
				<-imp.Done()
				out, runErr := imp.Outcome()
				if runErr != nil {
					_ = stream.fail(runErr.Error())
					return
				}
				var errs []string
				if out != nil {
					errs = out.Errors
				}
				_ = stream.complete(imp.ID.String(), imp.Progress(), errs)
				return
			}
			if err := stream.progress(progress); err != nil {
				slog.Debug("import stream closed", slog.String("import_id", imp.ID.String()), slog.Any("error", err))
				return
			}
		}
	}
}
