package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index:idx_notification_account_read"`
	Type      string    `gorm:"type:varchar(40);not null"`
	Title     string    `gorm:"type:varchar(200);not null"`
	Message   string    `gorm:"type:text;not null"`
	Priority  string    `gorm:"type:varchar(10);not null"`
	IsRead    bool      `gorm:"not null;default:false;index:idx_notification_account_read"`
	ReadAt    *time.Time
	TontineID *uuid.UUID `gorm:"type:uuid"`
	RoundID   *uuid.UUID `gorm:"type:uuid"`
	PaymentID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time

	Account User `gorm:"foreignKey:AccountID"`
}
