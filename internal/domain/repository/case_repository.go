// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"caseflow/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for case persistence.
var (
	// ErrCaseNotFound is returned when a case is not found.
	ErrCaseNotFound = errors.New("case not found")
	// ErrTaskNumberTaken is returned when a task number is already assigned
	// to another case. Task numbers are unique across all cases once set.
	ErrTaskNumberTaken = errors.New("task number already assigned")
)

// CaseRepository defines the standard operations for case persistence.
// Mutations happen only through the case state machine, which calls these
// inside a transaction; implementations must make Update a conditional
// write against the row read in the same transaction (row lock or
// optimistic check), so a lost update is impossible.
type CaseRepository interface {
	// Create persists a new case entity.
	Create(ctx context.Context, c *entity.Case) error

	// FindByID retrieves a single case by its unique ID.
	// Inside a transaction the row is locked for the transaction's duration.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Case, error)

	// FindByTaskNumber retrieves the case holding the given task number.
	FindByTaskNumber(ctx context.Context, taskNumber string) (*entity.Case, error)

	// ListByOwner retrieves all cases submitted by a user, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Case, error)

	// ListAwaitingReply retrieves cases in awaiting_reply with
	// reminder_sent = false and forwarded_at set: the reminder scan
	// candidates. The business-hours filter is applied by the caller.
	ListAwaitingReply(ctx context.Context) ([]*entity.Case, error)

	// ListPendingApproval retrieves cases waiting for manual sign-off.
	ListPendingApproval(ctx context.Context) ([]*entity.Case, error)

	// Update persists the mutated case read earlier in the same transaction.
	Update(ctx context.Context, c *entity.Case) error
}
