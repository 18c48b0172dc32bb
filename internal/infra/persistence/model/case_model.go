package model

import (
	"time"

	"github.com/google/uuid"
)

// CaseModel mirrors the 'cases' table. TaskNumber carries a partial unique
// index: NULLs (not-yet-forwarded cases) do not collide, assigned numbers do.
type CaseModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	OwnerID           uuid.UUID `gorm:"type:uuid;not null;index"`
	OriginalQuery     string    `gorm:"type:text;not null"`
	Language          string    `gorm:"type:varchar(8);not null"`
	ManufacturerID    string    `gorm:"type:varchar(100);not null"`
	TranslatedQuery   string    `gorm:"type:text"`
	TaskNumber        *string   `gorm:"type:varchar(64);uniqueIndex"`
	Status            string    `gorm:"type:varchar(32);not null;index"`
	SubmittedAt       time.Time `gorm:"not null"`
	ForwardedAt       *time.Time
	ReplyReceivedAt   *time.Time
	ReminderSent      bool `gorm:"not null;default:false"`
	ReminderSentAt    *time.Time
	NeedsApproval     bool `gorm:"not null;default:false"`
	Approved          bool `gorm:"not null;default:false"`
	ApprovedAt        *time.Time
	ManufacturerReply string `gorm:"type:text"`
	ReplyTranslated   string `gorm:"type:text"`
	ClosedAt          *time.Time
}

// TableName explicitly sets the table name for GORM.
func (CaseModel) TableName() string {
	return "cases"
}
