package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel mirrors the 'sessions' table, one row per user at most.
type SessionModel struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Authenticated bool      `gorm:"not null;default:false"`
	IsAdmin       bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}
