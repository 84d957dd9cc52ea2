package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// Participation is the membership of one account in one tontine
type Participation struct {
	ID             uuid.UUID       `json:"id"`
	TontineID      uuid.UUID       `json:"tontineId"`
	AccountID      uuid.UUID       `json:"accountId"`
	Shares         int             `json:"shares"`
	TotalCommitted decimal.Decimal `json:"totalCommitted"`
	IsActive       bool            `json:"isActive"`
	Position       int             `json:"position"`
	JoinedAt       time.Time       `json:"joinedAt"`
	LeftAt         null.Time       `json:"leftAt"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`

	Account *Account `json:"account,omitempty"`
}

// Commitment returns amountPerRound × roundCount × shares
func Commitment(amountPerRound decimal.Decimal, roundCount, shares int) decimal.Decimal {
	return amountPerRound.Mul(decimal.NewFromInt(int64(roundCount))).Mul(decimal.NewFromInt(int64(shares)))
}

// ReorderWinnersInput carries the new order of upcoming winners
type ReorderWinnersInput struct {
	ParticipationIDs []string `json:"participationIds" binding:"required,min=1"`
}
