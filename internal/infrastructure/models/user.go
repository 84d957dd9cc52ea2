package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email              string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name               string    `gorm:"type:varchar(100);not null"`
	Phone              *string   `gorm:"type:varchar(32)"`
	PasswordHash       string    `gorm:"type:varchar(255);not null"`
	Role               string    `gorm:"type:varchar(20);not null;default:'USER';index"`
	IsActive           bool      `gorm:"not null;default:true;index"`
	EmailVerified      bool      `gorm:"not null;default:false"`
	VerificationStatus string    `gorm:"type:varchar(20);not null;default:'NOT_STARTED'"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}
