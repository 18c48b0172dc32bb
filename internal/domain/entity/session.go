// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session represents an authenticated user session. Sessions are keyed per
// user and superseded (not accumulated) on a new start. The timeout is
// checked lazily at every access point; an expired session is treated
// identically to "not authenticated" and cleared as a side effect.
type Session struct {
	UserID        uuid.UUID `json:"user_id"`        // The user (or admin identity) this session belongs to.
	Authenticated bool      `json:"authenticated"`  // False once the session has been ended or expired.
	IsAdmin       bool      `json:"is_admin"`       // True for the configured admin identity.
	CreatedAt     time.Time `json:"created_at"`     // Set iff Authenticated is true.
}

// ExpiredAt reports whether the session has outlived the timeout at the
// given instant. An unauthenticated session is never "expired", it is
// simply invalid.
func (s *Session) ExpiredAt(now time.Time, timeout time.Duration) bool {
	if s == nil || !s.Authenticated {
		return false
	}

	return now.Sub(s.CreatedAt) >= timeout
}
