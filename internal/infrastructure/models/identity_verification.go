package models

import (
	"time"

	"github.com/google/uuid"
)

type IdentityVerification struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AccountID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	DocumentType  string     `gorm:"type:varchar(30);not null"`
	DocumentURL   string     `gorm:"type:varchar(1024);not null"`
	Status        string     `gorm:"type:varchar(20);not null;index"`
	ReviewMessage *string    `gorm:"type:text"`
	ReviewedBy    *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Account User `gorm:"foreignKey:AccountID"`
}
