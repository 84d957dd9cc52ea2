package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// TontineStatus represents the lifecycle of a savings group
type TontineStatus string

const (
	TontineStatusDraft     TontineStatus = "DRAFT"
	TontineStatusActive    TontineStatus = "ACTIVE"
	TontineStatusCompleted TontineStatus = "COMPLETED"
	TontineStatusCancelled TontineStatus = "CANCELLED"
)

func (s TontineStatus) Valid() bool {
	switch s {
	case TontineStatusDraft, TontineStatusActive, TontineStatusCompleted, TontineStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s TontineStatus) IsTerminal() bool {
	return s == TontineStatusCompleted || s == TontineStatusCancelled
}

// Frequency is the unit of the contribution schedule
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// AddPeriods returns start shifted by n schedule periods of the given frequency and interval
func AddPeriods(start time.Time, f Frequency, interval, n int) time.Time {
	steps := interval * n
	switch f {
	case FrequencyDaily:
		return start.AddDate(0, 0, steps)
	case FrequencyWeekly:
		return start.AddDate(0, 0, 7*steps)
	case FrequencyMonthly:
		return start.AddDate(0, steps, 0)
	}
	return start
}

// Tontine represents a savings group
type Tontine struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	AmountPerRound      decimal.Decimal `json:"amountPerRound"`
	TotalAmountPerRound decimal.Decimal `json:"totalAmountPerRound"`
	Currency            string          `json:"currency"`
	Frequency           Frequency       `json:"frequency"`
	FrequencyInterval   int             `json:"frequencyInterval"`
	Status              TontineStatus   `json:"status"`
	StartDate           time.Time       `json:"startDate"`
	EndDate             null.Time       `json:"endDate"`
	MaxParticipants     null.Int        `json:"maxParticipants"`
	AllowMultipleShares bool            `json:"allowMultipleShares"`
	MaxSharesPerUser    int             `json:"maxSharesPerUser"`
	InviteCode          string          `json:"inviteCode,omitempty"`
	OwnerID             uuid.UUID       `json:"ownerId"`
	IsPrivate           bool            `json:"isPrivate"`
	ParticipantCount    int             `json:"participantCount"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// RecomputeTotal sets TotalAmountPerRound from the active participation count
func (t *Tontine) RecomputeTotal(activeParticipants int) {
	t.ParticipantCount = activeParticipants
	t.TotalAmountPerRound = t.AmountPerRound.Mul(decimal.NewFromInt(int64(activeParticipants)))
}

// IsFull reports whether the participant cap has been reached
func (t *Tontine) IsFull(activeParticipants int) bool {
	return t.MaxParticipants.Valid && activeParticipants >= t.MaxParticipants.Int
}

// ShareLimit is the maximum number of shares one participation may hold
func (t *Tontine) ShareLimit() int {
	if !t.AllowMultipleShares {
		return 1
	}
	if t.MaxSharesPerUser < 1 {
		return 1
	}
	return t.MaxSharesPerUser
}

// CollectionStart is when round number n starts collecting
func (t *Tontine) CollectionStart(n int) time.Time {
	return AddPeriods(t.StartDate, t.Frequency, t.FrequencyInterval, n-1)
}

// RoundDueDate is when contributions for round number n are due
func (t *Tontine) RoundDueDate(n int) time.Time {
	return AddPeriods(t.StartDate, t.Frequency, t.FrequencyInterval, n)
}

// CreateTontineInput represents input for creating a tontine
type CreateTontineInput struct {
	Name                string     `json:"name" binding:"required,min=3,max=120"`
	Description         string     `json:"description" binding:"max=2000"`
	AmountPerRound      string     `json:"amountPerRound" binding:"required"`
	Currency            string     `json:"currency" binding:"omitempty,len=3"`
	Frequency           Frequency  `json:"frequency" binding:"required"`
	FrequencyInterval   int        `json:"frequencyInterval" binding:"omitempty,min=1,max=12"`
	StartDate           time.Time  `json:"startDate" binding:"required"`
	EndDate             *time.Time `json:"endDate"`
	MaxParticipants     *int       `json:"maxParticipants" binding:"omitempty,min=2"`
	AllowMultipleShares bool       `json:"allowMultipleShares"`
	MaxSharesPerUser    int        `json:"maxSharesPerUser" binding:"omitempty,min=1,max=10"`
	IsPrivate           bool       `json:"isPrivate"`
}

// JoinTontineInput identifies a tontine by invite code or id
type JoinTontineInput struct {
	InviteCode string `json:"inviteCode"`
	TontineID  string `json:"tontineId"`
	Shares     int    `json:"shares" binding:"omitempty,min=1"`
}

// TontineFilter holds list filters
type TontineFilter struct {
	Status        TontineStatus
	Search        string
	PublicOnly    bool
	ParticipantID *uuid.UUID
}

// TontineDetail is a tontine with its active participations
type TontineDetail struct {
	*Tontine
	Participations []*Participation `json:"participations"`
	IsMember       bool             `json:"isMember"`
}

// DeriveTontineStatus computes the lifecycle status implied by the round set
func DeriveTontineStatus(current TontineStatus, rounds []*Round) TontineStatus {
	if current == TontineStatusCancelled {
		return current
	}
	if len(rounds) == 0 {
		return TontineStatusDraft
	}
	for _, r := range rounds {
		if r.Status != RoundStatusCompleted {
			return TontineStatusActive
		}
	}
	return TontineStatusCompleted
}
