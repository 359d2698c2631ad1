// Package server provides the HTTP REST API for the career portal.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/bulk"
	"github.com/jonathan/career-portal/internal/db"
	"github.com/jonathan/career-portal/internal/optimizer"
	"github.com/jonathan/career-portal/internal/resumetext"
	"github.com/jonathan/career-portal/internal/tracker"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrJobNotFound indicates the job does not exist or belongs to someone else.
type ErrJobNotFound struct {
	JobID uuid.UUID
}

func (e *ErrJobNotFound) Error() string {
	return fmt.Sprintf("job not found: %s", e.JobID)
}

// ErrResumeNotFound indicates a base or optimized resume was not found.
type ErrResumeNotFound struct {
	ID uuid.UUID
}

func (e *ErrResumeNotFound) Error() string {
	if e.ID == uuid.Nil {
		return "resume not found"
	}
	return fmt.Sprintf("resume not found: %s", e.ID)
}

// ErrDuplicateJob indicates the user already tracks an equivalent job.
type ErrDuplicateJob struct {
	Result tracker.DuplicateResult
}

func (e *ErrDuplicateJob) Error() string {
	return e.Result.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists *ErrEmailAlreadyExists
		invalidCred *ErrInvalidCredentials
		mismatch    *ErrPasswordMismatch
		userMissing *ErrUserNotFound
		jobMissing  *ErrJobNotFound
		resMissing  *ErrResumeNotFound
		duplicate   *ErrDuplicateJob
		trackerDup  *tracker.DuplicateError
		validation  *ErrValidation
		inputErr    *optimizer.InputValidationError
		extractErr  *resumetext.ExtractionError
	)
	switch {
	case errors.As(err, &emailExists), errors.As(err, &duplicate), errors.As(err, &trackerDup):
		return http.StatusConflict
	case errors.As(err, &invalidCred), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &userMissing), errors.As(err, &jobMissing), errors.As(err, &resMissing),
		errors.Is(err, db.ErrNotFound), errors.Is(err, bulk.ErrImportNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &inputErr), errors.Is(err, bulk.ErrNoBaseResume):
		return http.StatusBadRequest
	case errors.As(err, &extractErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
