package usecase

import (
	"context"
	"time"

	"caseflow/internal/domain/entity"
)

// ReminderUsecase is the overdue-case scheduler. Invocation is caller-driven
// (the worker polls or an operator triggers a scan); it is safe to call Scan
// repeatedly and concurrently because the reminder_sent flag transition is
// the sole source of truth for "already handled".
type ReminderUsecase interface {
	// Scan walks awaiting_reply cases with no reminder sent yet and, for
	// each one whose forwarded-to-now business hours exceed the threshold,
	// flips the dispatch lock and sends the reminder. It returns the cases
	// reminded by this invocation. One case's failure never aborts the
	// batch.
	Scan(ctx context.Context, now time.Time) ([]*entity.Case, error)
}
