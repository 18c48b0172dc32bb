// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core account entity. A user owns the cases they submit
// (one-to-many); no case is shared across users. The admin identity is a
// configured user with IsAdmin set, not a separate entity.
type User struct {
	ID           uuid.UUID  `json:"id"`                      // The Global Unique Identifier (GUID) for the user.
	Username     string     `json:"username"`                // Display name, at least three alphanumeric characters.
	Email        string     `json:"email"`                   // Primary contact email, used as the login identifier.
	PasswordHash string     `json:"-"`                       // Bcrypt hash of the password. Never serialized.
	Verified     bool       `json:"verified"`                // True once the signup verification code has been consumed.
	IsAdmin      bool       `json:"is_admin"`                // True for the configured admin identity.
	CreatedAt    time.Time  `json:"created_at"`              // Timestamp of account creation.
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"` // Timestamp of the most recent successful login.
}
