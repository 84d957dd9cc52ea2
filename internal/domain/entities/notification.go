package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// NotificationType enumerates user-visible events
type NotificationType string

const (
	NotificationPaymentDue         NotificationType = "PAYMENT_DUE"
	NotificationPaymentReceived    NotificationType = "PAYMENT_RECEIVED"
	NotificationPaymentFailed      NotificationType = "PAYMENT_FAILED"
	NotificationRoundStarted       NotificationType = "ROUND_STARTED"
	NotificationRoundCompleted     NotificationType = "ROUND_COMPLETED"
	NotificationPayoutReceived     NotificationType = "PAYOUT_RECEIVED"
	NotificationTontineStarted     NotificationType = "TONTINE_STARTED"
	NotificationTontineCompleted   NotificationType = "TONTINE_COMPLETED"
	NotificationTontineCancelled   NotificationType = "TONTINE_CANCELLED"
	NotificationParticipantJoined  NotificationType = "PARTICIPANT_JOINED"
	NotificationIdentityVerified   NotificationType = "IDENTITY_VERIFIED"
	NotificationIdentityRejected   NotificationType = "IDENTITY_REJECTED"
	NotificationAccountSuspended   NotificationType = "ACCOUNT_SUSPENDED"
	NotificationAccountReactivated NotificationType = "ACCOUNT_REACTIVATED"
)

// NotificationPriority orders notifications for display
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "LOW"
	PriorityMedium NotificationPriority = "MEDIUM"
	PriorityHigh   NotificationPriority = "HIGH"
)

// Notification is a derived, user-targeted message about a domain event
type Notification struct {
	ID        uuid.UUID            `json:"id"`
	AccountID uuid.UUID            `json:"accountId"`
	Type      NotificationType     `json:"type"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Priority  NotificationPriority `json:"priority"`
	IsRead    bool                 `json:"isRead"`
	ReadAt    null.Time            `json:"readAt"`
	TontineID *uuid.UUID           `json:"tontineId,omitempty"`
	RoundID   *uuid.UUID           `json:"roundId,omitempty"`
	PaymentID *uuid.UUID           `json:"paymentId,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
}

// PaymentDuePriority scales reminder priority by the time left before the due date.
// Overdue payments fall inside the high window.
func PaymentDuePriority(remaining, highWindow time.Duration) NotificationPriority {
	if remaining <= highWindow {
		return PriorityHigh
	}
	return PriorityMedium
}

// NotificationFilter holds list filters
type NotificationFilter struct {
	UnreadOnly bool
}
