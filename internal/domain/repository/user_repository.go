// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"caseflow/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is the repository sentinel for a missing user. Use cases
// translate it into the taxonomy error appropriate for their surface (a 404
// on lookup, a generic invalid-credentials on login).
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for account persistence.
// Email is the login identifier and unique across accounts.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address. Signup
	// uses it inside a transaction as the duplicate check.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new account.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing account (verification flag, password
	// hash, last login).
	Update(ctx context.Context, user *entity.User) error
}
