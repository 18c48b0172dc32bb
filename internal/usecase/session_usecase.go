package usecase

import (
	"context"

	"caseflow/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionUsecase is the session guard: it tracks when an authenticated
// session started and enforces the timeout lazily at every access point.
// There is no background expiry timer.
type SessionUsecase interface {
	// Start records a fresh authenticated session for the user, superseding
	// any existing one.
	Start(ctx context.Context, userID uuid.UUID, isAdmin bool) (*entity.Session, error)

	// Validate reports whether the user currently holds a live session.
	// An expired session is cleared as a side effect and reported invalid,
	// indistinguishable from "not authenticated".
	Validate(ctx context.Context, userID uuid.UUID) (*entity.Session, bool, error)

	// End clears the user's session. Idempotent.
	End(ctx context.Context, userID uuid.UUID) error
}
