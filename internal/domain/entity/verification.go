// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// CodePurpose identifies what a verification code gates. Together with the
// user ID it forms the identity of a code record: at most one active code
// exists per (user, purpose), and issuing a new one supersedes the prior.
type CodePurpose string

const (
	// CodePurposeSignup gates initial account activation.
	CodePurposeSignup CodePurpose = "signup"
	// CodePurposeLogin gates each password login.
	CodePurposeLogin CodePurpose = "login"
)

// String returns the string representation of the CodePurpose.
func (p CodePurpose) String() string {
	return string(p)
}

// IsValid checks if the CodePurpose is a known value.
func (p CodePurpose) IsValid() bool {
	switch p {
	case CodePurposeSignup, CodePurposeLogin:
		return true
	default:
		return false
	}
}

// VerificationCode is a short-lived one-time numeric credential proving
// email/account access. It is consumed on successful verification, expires
// naturally, and may be explicitly reissued.
type VerificationCode struct {
	UserID    uuid.UUID   `json:"user_id"`    // The user this code was issued to.
	Purpose   CodePurpose `json:"purpose"`    // What the code gates (signup or login).
	Code      string      `json:"-"`          // The 6-digit numeric code. Never serialized.
	CreatedAt time.Time   `json:"created_at"` // Timestamp of issuance.
	ExpiresAt time.Time   `json:"expires_at"` // CreatedAt plus the configured expiry window.
	Consumed  bool        `json:"consumed"`   // True once the code has validated successfully.
}

// Active reports whether the code can still validate at the given instant.
func (c *VerificationCode) Active(now time.Time) bool {
	return c != nil && !c.Consumed && !now.After(c.ExpiresAt)
}
