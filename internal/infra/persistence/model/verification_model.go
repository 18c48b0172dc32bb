package model

import (
	"time"

	"github.com/google/uuid"
)

// VerificationCodeModel mirrors the 'verification_codes' table. The composite
// primary key (user_id, purpose) makes a save replace the previous code.
type VerificationCodeModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Purpose   string    `gorm:"type:varchar(16);primaryKey"`
	Code      string    `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Consumed  bool      `gorm:"not null;default:false"`
}

// TableName explicitly sets the table name for GORM.
func (VerificationCodeModel) TableName() string {
	return "verification_codes"
}
