package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// PaymentOrigin records how a payment row was created
type PaymentOrigin string

const (
	PaymentOriginScheduled   PaymentOrigin = "SCHEDULED"
	PaymentOriginManual      PaymentOrigin = "MANUAL"
	PaymentOriginReplacement PaymentOrigin = "REPLACEMENT"
)

// ConfirmationSource records who confirmed a payment
type ConfirmationSource string

const (
	ConfirmationProvider ConfirmationSource = "PROVIDER"
	ConfirmationAdmin    ConfirmationSource = "ADMIN"
)

// Payment is one account's contribution obligation for one round
type Payment struct {
	ID                  uuid.UUID       `json:"id"`
	RoundID             uuid.UUID       `json:"roundId"`
	TontineID           uuid.UUID       `json:"tontineId"`
	ParticipationID     uuid.UUID       `json:"participationId"`
	AccountID           uuid.UUID       `json:"accountId"`
	Amount              decimal.Decimal `json:"amount"`
	Status              PaymentStatus   `json:"status"`
	DueDate             time.Time       `json:"dueDate"`
	PaidAt              null.Time       `json:"paidAt"`
	Method              null.String     `json:"method"`
	TransactionRef      null.String     `json:"transactionRef"`
	FailureReason       null.String     `json:"failureReason"`
	Origin              PaymentOrigin   `json:"origin"`
	ReplacesPaymentID   *uuid.UUID      `json:"replacesPaymentId,omitempty"`
	ReplacedByPaymentID *uuid.UUID      `json:"replacedByPaymentId,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// IsEffective reports whether the payment counts towards round completion.
// A failed payment that has been superseded no longer does.
func (p *Payment) IsEffective() bool {
	return !(p.Status == PaymentStatusFailed && p.ReplacedByPaymentID != nil)
}

// ConfirmPaymentInput carries provider or operator confirmation details
type ConfirmPaymentInput struct {
	Method         string             `json:"method" binding:"max=50"`
	TransactionRef string             `json:"transactionRef" binding:"max=255"`
	Source         ConfirmationSource `json:"-"`
}

// FailPaymentInput carries the decline reason
type FailPaymentInput struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ManualPaymentInput is an operator-entered settlement
type ManualPaymentInput struct {
	RoundID         string `json:"roundId" binding:"required"`
	ParticipationID string `json:"participationId" binding:"required"`
	Amount          string `json:"amount"`
	Method          string `json:"method" binding:"required,max=50"`
	TransactionRef  string `json:"transactionRef" binding:"max=255"`
}

// PaymentFilter holds list filters
type PaymentFilter struct {
	Status    PaymentStatus
	AccountID *uuid.UUID
	RoundID   *uuid.UUID
	TontineID *uuid.UUID
	Search    string
}

// PaymentWebhookInput is the payload posted by the payment provider
type PaymentWebhookInput struct {
	Event          string `json:"event" binding:"required"`
	PaymentID      string `json:"paymentId" binding:"required"`
	Method         string `json:"method"`
	TransactionRef string `json:"transactionRef"`
	Reason         string `json:"reason"`
}
