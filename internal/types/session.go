package types

import "github.com/google/uuid"

// Session identifies the caller of an operation. It is built once from the
// bearer token and passed explicitly to every service that needs identity.
type Session struct {
	UserID uuid.UUID `json:"user_id"`
}
