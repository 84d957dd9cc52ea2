package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Tontine struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name                string          `gorm:"type:varchar(120);not null"`
	Description         string          `gorm:"type:text"`
	AmountPerRound      decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	TotalAmountPerRound decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	Currency            string          `gorm:"type:varchar(3);not null"`
	Frequency           string          `gorm:"type:varchar(10);not null"`
	FrequencyInterval   int             `gorm:"not null;default:1"`
	Status              string          `gorm:"type:varchar(20);not null;index"`
	StartDate           time.Time       `gorm:"not null"`
	EndDate             *time.Time
	MaxParticipants     *int
	AllowMultipleShares bool      `gorm:"not null;default:false"`
	MaxSharesPerUser    int       `gorm:"not null;default:1"`
	InviteCode          string    `gorm:"type:varchar(6);not null;uniqueIndex"`
	OwnerID             uuid.UUID `gorm:"type:uuid;not null;index"`
	IsPrivate           bool      `gorm:"not null;default:false"`
	ParticipantCount    int       `gorm:"not null;default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Owner User `gorm:"foreignKey:OwnerID"`
}

type Participation struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TontineID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_participation_tontine_account"`
	AccountID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_participation_tontine_account;index"`
	Shares         int             `gorm:"not null;default:1"`
	TotalCommitted decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	IsActive       bool            `gorm:"not null;default:true"`
	Position       int             `gorm:"not null"`
	JoinedAt       time.Time       `gorm:"not null"`
	LeftAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Tontine Tontine `gorm:"foreignKey:TontineID"`
	Account User    `gorm:"foreignKey:AccountID"`
}
