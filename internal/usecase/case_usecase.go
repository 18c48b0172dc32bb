// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"caseflow/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// SubmitCaseInput defines the data required to submit a new support case.
// Language may be empty, in which case it is auto-detected from the query.
type SubmitCaseInput struct {
	OwnerID        uuid.UUID
	Query          string
	Language       string
	ManufacturerID string
}

// RecordReplyInput carries a manufacturer reply matched by task number.
type RecordReplyInput struct {
	TaskNumber string
	Reply      string
}

// CaseUsecase is the case state machine plus the read operations the
// delivery layer needs. Every transition validates its precondition against
// the current status inside a store transaction and fails with
// InvalidTransition (or a more specific taxonomy error) rather than
// reordering state.
type CaseUsecase interface {
	// Submit validates the input, translates the query to English when
	// possible and creates the case in submitted state. A translation
	// outage does not block submission; the case proceeds untranslated.
	Submit(ctx context.Context, input *SubmitCaseInput) (*entity.Case, error)

	// Forward submits the case to its manufacturer, records the issued
	// task number (unique across all cases) and moves the case to
	// awaiting_reply. On manufacturer outage the case stays submitted.
	Forward(ctx context.Context, caseID uuid.UUID) (*entity.Case, error)

	// RecordReply stores the manufacturer reply for the case holding the
	// task number, translates it back to the case language, and applies the
	// approval gate decision: pending_approval or direct approved.
	RecordReply(ctx context.Context, input *RecordReplyInput) (*entity.Case, error)

	// Approve releases a pending_approval case to the user.
	Approve(ctx context.Context, caseID, approverID uuid.UUID) (*entity.Case, error)

	// Close archives an approved case.
	Close(ctx context.Context, caseID uuid.UUID) (*entity.Case, error)

	// MarkReminderSent flips the reminder dispatch lock. A second call on
	// an already-reminded case fails with AlreadyReminded so the scheduler
	// can tell "nothing to do" from a race.
	MarkReminderSent(ctx context.Context, caseID uuid.UUID) (*entity.Case, error)

	// GetCase returns one case, enforcing ownership unless the requester
	// is an admin.
	GetCase(ctx context.Context, requesterID uuid.UUID, isAdmin bool, caseID uuid.UUID) (*entity.Case, error)

	// ListOwn returns the requester's cases, newest first.
	ListOwn(ctx context.Context, ownerID uuid.UUID) ([]*entity.Case, error)

	// ListPendingApprovals returns all cases waiting for manual sign-off.
	ListPendingApprovals(ctx context.Context) ([]*entity.Case, error)
}
