package usecase

import (
	"context"

	"caseflow/internal/domain/entity"

	"github.com/google/uuid"
)

// SignupInput defines the data required to create an account.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput defines the data required to begin a password login.
type LoginInput struct {
	Email    string
	Password string
}

// PendingVerification tells the client a verification code was issued and
// must be confirmed before a session exists. MockCode carries the code only
// when the mail transport runs in mock mode, mirroring how the system shows
// the code on screen during development.
type PendingVerification struct {
	UserID   uuid.UUID
	Purpose  entity.CodePurpose
	MockCode string
}

// AuthOutput is the result of a completed verification: a live session and
// its transport credential.
type AuthOutput struct {
	User        *entity.User
	AccessToken string
}

// AuthUsecase covers signup, password login, and the verification-code
// exchange that turns either into an authenticated session.
type AuthUsecase interface {
	// Signup creates an unverified account and issues a signup code.
	Signup(ctx context.Context, input *SignupInput) (*PendingVerification, error)

	// Login checks the password and issues a login code. It does not start
	// a session; VerifyCode does.
	Login(ctx context.Context, input *LoginInput) (*PendingVerification, error)

	// VerifyCode consumes a verification code. On success it marks the user
	// verified (signup), starts their session, and returns an access token.
	VerifyCode(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose, code string) (*AuthOutput, error)

	// ResendCode reissues the code for (user, purpose), invalidating any
	// unexpired prior code.
	ResendCode(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose) (*PendingVerification, error)

	// Logout ends the user's session. Idempotent.
	Logout(ctx context.Context, userID uuid.UUID) error

	// EnsureAdmin creates or refreshes the configured admin identity at
	// startup. A disabled admin config is a no-op.
	EnsureAdmin(ctx context.Context) error
}
