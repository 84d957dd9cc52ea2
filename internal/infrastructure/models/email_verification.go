package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailVerification is a single-use token proving ownership of an account's email.
// The column keeps the users table's name for the foreign key.
type EmailVerification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID  uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Token      string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	VerifiedAt *time.Time
	CreatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`

	Account User `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}
