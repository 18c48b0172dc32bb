package usecase

import (
	"context"

	"caseflow/internal/domain/entity"

	"github.com/google/uuid"
)

// VerificationUsecase issues, validates, and expires the one-time codes
// gating account access. At most one active code exists per (user, purpose);
// issuing supersedes the prior code unconditionally.
type VerificationUsecase interface {
	// Issue generates a fresh 6-digit code for (user, purpose), stores it
	// with the configured expiry window, and emits a verification_code
	// notification to the user's email. The code is returned so callers in
	// mock-mail mode can surface it; delivery failure is logged, not fatal.
	Issue(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose) (string, error)

	// Verify checks a submitted code: NoActiveCode when absent or consumed,
	// CodeExpired past the window, CodeMismatch on wrong digits. Success
	// consumes the code; verification is single-use.
	Verify(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose, code string) error

	// Resend reissues the code, explicitly invalidating any unexpired prior
	// code so a stale code can never validate after a resend.
	Resend(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose) (string, error)
}
