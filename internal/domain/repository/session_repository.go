// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"caseflow/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no session record exists for a user.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists authenticated sessions keyed per user.
// Starting a new session replaces any existing one for the same user.
type SessionRepository interface {
	// Find retrieves the session record for a user.
	Find(ctx context.Context, userID uuid.UUID) (*entity.Session, error)

	// Save creates or replaces the session record for its user key.
	Save(ctx context.Context, session *entity.Session) error

	// Delete removes the session record for a user. Deleting a missing
	// session is not an error; session teardown is idempotent.
	Delete(ctx context.Context, userID uuid.UUID) error
}
