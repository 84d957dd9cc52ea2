package entities

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a domain state transition
type EventType string

const (
	EventPaymentConfirmed     EventType = "payment.confirmed"
	EventPaymentFailed        EventType = "payment.failed"
	EventPaymentDue           EventType = "payment.due"
	EventRoundStarted         EventType = "round.started"
	EventRoundCompleted       EventType = "round.completed"
	EventTontineStarted       EventType = "tontine.started"
	EventTontineCompleted     EventType = "tontine.completed"
	EventTontineCancelled     EventType = "tontine.cancelled"
	EventParticipantJoined    EventType = "participant.joined"
	EventVerificationReviewed EventType = "verification.reviewed"
	EventAccountStatusChanged EventType = "account.status_changed"
)

// DomainEvent is emitted by state transitions and consumed by subscribers.
// Only the fields relevant to Type are set.
type DomainEvent struct {
	Type       EventType
	OccurredAt time.Time

	Tontine       *Tontine
	Round         *Round
	Payment       *Payment
	Participation *Participation

	// Recipients are the accounts to notify; for group events the active participants
	Recipients []uuid.UUID
	// Subject is the account the event is about (payer, winner, reviewed account)
	Subject uuid.UUID

	Approved bool
	// Active is the new account state for EventAccountStatusChanged
	Active   bool
	Message  string
	Priority NotificationPriority
}
