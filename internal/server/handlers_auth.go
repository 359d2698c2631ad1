package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/career-portal/internal/types"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if !s.decode(w, r, &req) {
		return
	}
	user, err := s.users.Register(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.issueToken(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !s.decode(w, r, &req) {
		return
	}
	user, err := s.users.Login(r.Context(), &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.issueToken(w, http.StatusOK, user)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	user, err := s.users.Me(r.Context(), session)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.UpdatePasswordRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.users.UpdatePassword(r.Context(), session.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// issueToken answers a successful register or login with a fresh session
// token.
func (s *Server) issueToken(w http.ResponseWriter, status int, user *types.User) {
	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		slog.Error("failed to generate token", slog.String("user_id", user.ID.String()), slog.Any("error", err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	s.jsonResponse(w, status, types.AuthResponse{Token: token, User: user})
}

// describeValidation turns validator errors into "validation error: field -
// rule" messages, one per failing field.
func describeValidation(err error) string {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return "validation error: invalid request"
	}
	parts := make([]string, 0, len(fields))
	for _, fe := range fields {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s - %s", fe.Field(), rule))
	}
	return "validation error: " + strings.Join(parts, "; ")
}
