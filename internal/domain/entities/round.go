package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// RoundStatus represents the collection cycle state
type RoundStatus string

const (
	RoundStatusPending    RoundStatus = "PENDING"
	RoundStatusCollecting RoundStatus = "COLLECTING"
	RoundStatusCompleted  RoundStatus = "COMPLETED"
)

// Round is one scheduled collection and distribution cycle
type Round struct {
	ID                    uuid.UUID       `json:"id"`
	TontineID             uuid.UUID       `json:"tontineId"`
	Number                int             `json:"number"`
	ExpectedAmount        decimal.Decimal `json:"expectedAmount"`
	CollectedAmount       decimal.Decimal `json:"collectedAmount"`
	DistributedAmount     decimal.Decimal `json:"distributedAmount"`
	CollectionStartDate   time.Time       `json:"collectionStartDate"`
	DueDate               time.Time       `json:"dueDate"`
	CompletedAt           null.Time       `json:"completedAt"`
	Status                RoundStatus     `json:"status"`
	WinnerParticipationID uuid.UUID       `json:"winnerParticipationId"`
	ForceCompleted        bool            `json:"forceCompleted"`
	CompletionNote        null.String     `json:"completionNote"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`

	Winner   *Participation `json:"winner,omitempty"`
	Payments []*Payment     `json:"payments,omitempty"`
}

// IsLocked reports whether the winner of this round may no longer change
func (r *Round) IsLocked() bool {
	return r.Status == RoundStatusCollecting || r.Status == RoundStatusCompleted
}

// GenerateRoundsInput optionally overrides the round count
type GenerateRoundsInput struct {
	RoundCount int `json:"roundCount" binding:"omitempty,min=2,max=120"`
}

// ForceCompleteRoundInput records why an admin closed a round
type ForceCompleteRoundInput struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}
