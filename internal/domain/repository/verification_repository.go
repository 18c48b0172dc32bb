// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"caseflow/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrCodeNotFound is returned when no code record exists for (user, purpose).
var ErrCodeNotFound = errors.New("verification code not found")

// VerificationCodeRepository persists one-time verification codes keyed by
// (user_id, purpose). A save replaces any existing record for the same key:
// codes are superseded, never accumulated.
type VerificationCodeRepository interface {
	// Find retrieves the current code record for (userID, purpose).
	Find(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose) (*entity.VerificationCode, error)

	// Save creates or replaces the code record for its (userID, purpose) key.
	Save(ctx context.Context, code *entity.VerificationCode) error

	// Delete removes the code record for (userID, purpose), if any.
	Delete(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose) error
}
