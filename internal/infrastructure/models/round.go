package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Round struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TontineID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_round_tontine_number"`
	Number                int             `gorm:"not null;uniqueIndex:idx_round_tontine_number"`
	ExpectedAmount        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	CollectedAmount       decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	DistributedAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	CollectionStartDate   time.Time       `gorm:"not null;index"`
	DueDate               time.Time       `gorm:"not null"`
	CompletedAt           *time.Time
	Status                string    `gorm:"type:varchar(20);not null;index"`
	WinnerParticipationID uuid.UUID `gorm:"type:uuid;not null"`
	ForceCompleted        bool      `gorm:"not null;default:false"`
	CompletionNote        *string   `gorm:"type:text"`
	CreatedAt             time.Time
	UpdatedAt             time.Time

	Tontine Tontine       `gorm:"foreignKey:TontineID"`
	Winner  Participation `gorm:"foreignKey:WinnerParticipationID"`
}
