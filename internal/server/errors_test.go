package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/bulk"
	"github.com/jonathan/career-portal/internal/db"
	"github.com/jonathan/career-portal/internal/optimizer"
	"github.com/jonathan/career-portal/internal/resumetext"
	"github.com/jonathan/career-portal/internal/tracker"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"email exists", &ErrEmailAlreadyExists{Email: "a@b.c"}, http.StatusConflict},
		{"duplicate job", &ErrDuplicateJob{}, http.StatusConflict},
		{"wrapped tracker duplicate", fmt.Errorf("failed to create job: %w", &tracker.DuplicateError{}), http.StatusConflict},
		{"invalid credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"password mismatch", &ErrPasswordMismatch{}, http.StatusUnauthorized},
		{"user not found", &ErrUserNotFound{UserID: uuid.New()}, http.StatusNotFound},
		{"job not found", &ErrJobNotFound{JobID: uuid.New()}, http.StatusNotFound},
		{"resume not found", &ErrResumeNotFound{}, http.StatusNotFound},
		{"db not found", fmt.Errorf("job x: %w", db.ErrNotFound), http.StatusNotFound},
		{"import not found", bulk.ErrImportNotFound, http.StatusNotFound},
		{"validation", &ErrValidation{Field: "status", Message: "bad"}, http.StatusBadRequest},
		{"input too short", &optimizer.InputValidationError{Field: "resume text", Min: 50, Actual: 3}, http.StatusBadRequest},
		{"no base resume", bulk.ErrNoBaseResume, http.StatusBadRequest},
		{"unreadable pdf", &resumetext.ExtractionError{Message: "no text"}, http.StatusUnprocessableEntity},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	assert.Equal(t, "job not found: "+id.String(), (&ErrJobNotFound{JobID: id}).Error())
	assert.Equal(t, "resume not found", (&ErrResumeNotFound{}).Error())
	assert.Equal(t, "validation error: status - bad", (&ErrValidation{Field: "status", Message: "bad"}).Error())
	assert.Equal(t, "Already applied", (&ErrDuplicateJob{Result: tracker.DuplicateResult{Message: "Already applied"}}).Error())
}
