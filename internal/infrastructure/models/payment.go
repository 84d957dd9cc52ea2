package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Payment struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RoundID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	TontineID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ParticipationID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount              decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Status              string          `gorm:"type:varchar(20);not null;index"`
	DueDate             time.Time       `gorm:"not null;index"`
	PaidAt              *time.Time
	Method              *string    `gorm:"type:varchar(50)"`
	TransactionRef      *string    `gorm:"type:varchar(255);index"`
	FailureReason       *string    `gorm:"type:text"`
	Origin              string     `gorm:"type:varchar(20);not null;default:'SCHEDULED'"`
	ReplacesPaymentID   *uuid.UUID `gorm:"type:uuid"`
	ReplacedByPaymentID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Round         Round         `gorm:"foreignKey:RoundID"`
	Participation Participation `gorm:"foreignKey:ParticipationID"`
	Account       User          `gorm:"foreignKey:AccountID"`
}
