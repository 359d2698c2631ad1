// Package middleware provides HTTP middleware for authentication.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/types"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// sessionKey is the context key for the authenticated session.
const sessionKey ContextKey = "session"

// TokenValidator is an interface for validating JWT tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (UserIDGetter, error)
}

// UserIDGetter is an interface for extracting user ID from token claims.
type UserIDGetter interface {
	GetUserID() uuid.UUID
}

// AuthMiddleware validates the bearer token and stores the caller's session in
// the request context. Requests without a valid token get 401.
func AuthMiddleware(jwtService TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				slog.Debug("rejected token", slog.String("path", r.URL.Path), slog.Any("error", err))
				unauthorized(w, "invalid or expired token")
				return
			}

			userID := claims.GetUserID()
			if userID == uuid.Nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := WithSession(r.Context(), &types.Session{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// unauthorized writes a JSON 401 in the same shape as the API's other
// errors.
func unauthorized(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="career-portal"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized", "reason": reason})
}

// bearerToken extracts the token from an Authorization header. The scheme is
// matched case-insensitively.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// WithSession returns ctx carrying session.
func WithSession(ctx context.Context, session *types.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// GetSession extracts the authenticated session from the request context.
func GetSession(r *http.Request) (*types.Session, error) {
	session, ok := r.Context().Value(sessionKey).(*types.Session)
	if !ok || session == nil {
		return nil, fmt.Errorf("session not found in request context")
	}
	return session, nil
}

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, error) {
	session, err := GetSession(r)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user ID not found in request context")
	}
	return session.UserID, nil
}
