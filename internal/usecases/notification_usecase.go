package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tontine.backend/internal/domain/entities"
	"tontine.backend/internal/domain/repositories"
	"tontine.backend/pkg/logger"
	"tontine.backend/pkg/metrics"
	"tontine.backend/pkg/redis"
	"tontine.backend/pkg/utils"
)

// NotificationFanout pushes stored notifications to connected clients
type NotificationFanout interface {
	PublishNotification(ctx context.Context, n *entities.Notification) error
}

// ReminderSettings controls the payment due sweep
type ReminderSettings struct {
	Window             time.Duration
	HighPriorityWindow time.Duration
}

var (
	claimReminder   = redis.SetNX
	releaseReminder = redis.Del
)

// NotificationUsecase turns domain events into notifications and serves them to accounts
type NotificationUsecase struct {
	notificationRepo repositories.NotificationRepository
	paymentRepo      repositories.PaymentRepository
	fanout           NotificationFanout
	settings         ReminderSettings
}

// NewNotificationUsecase creates a new notification usecase. fanout may be nil.
func NewNotificationUsecase(
	notificationRepo repositories.NotificationRepository,
	paymentRepo repositories.PaymentRepository,
	fanout NotificationFanout,
	settings ReminderSettings,
) *NotificationUsecase {
	if settings.Window <= 0 {
		settings.Window = DefaultReminderWindow
	}
	if settings.HighPriorityWindow <= 0 {
		settings.HighPriorityWindow = DefaultHighPriorityWindow
	}
	return &NotificationUsecase{
		notificationRepo: notificationRepo,
		paymentRepo:      paymentRepo,
		fanout:           fanout,
		settings:         settings,
	}
}

// Handle stores the notifications derived from an event. Fan-out waits for the
// surrounding transaction to commit.
func (u *NotificationUsecase) Handle(ctx context.Context, event entities.DomainEvent) error {
	for _, n := range BuildNotifications(event) {
		if err := u.notificationRepo.Create(ctx, n); err != nil {
			return err
		}
		metrics.NotificationCreated(string(n.Type))
		if u.fanout == nil {
			continue
		}
		repositories.AfterCommit(ctx, func(ctx context.Context) {
			u.publish(ctx, n)
		})
	}
	return nil
}

func (u *NotificationUsecase) publish(ctx context.Context, n *entities.Notification) {
	if err := u.fanout.PublishNotification(ctx, n); err != nil {
		logger.Warn(ctx, "Failed to fan out notification",
			zap.String("notification_id", n.ID.String()),
			zap.Error(err),
		)
	}
}

// BuildNotifications derives the notifications an event produces
func BuildNotifications(event entities.DomainEvent) []*entities.Notification {
	at := event.OccurredAt
	if at.IsZero() {
		at = nowFunc()
	}
	name := ""
	currency := ""
	var tontineID, roundID, paymentID *uuid.UUID
	if event.Tontine != nil {
		name = event.Tontine.Name
		currency = event.Tontine.Currency
		tontineID = uuidPtr(event.Tontine.ID)
	}
	if event.Round != nil {
		roundID = uuidPtr(event.Round.ID)
		if tontineID == nil {
			tontineID = uuidPtr(event.Round.TontineID)
		}
	}
	if event.Payment != nil {
		paymentID = uuidPtr(event.Payment.ID)
		if tontineID == nil {
			tontineID = uuidPtr(event.Payment.TontineID)
		}
		if roundID == nil {
			roundID = uuidPtr(event.Payment.RoundID)
		}
	}

	build := func(to uuid.UUID, typ entities.NotificationType, priority entities.NotificationPriority, title, message string) *entities.Notification {
		return &entities.Notification{
			ID:        utils.GenerateUUIDv7(),
			AccountID: to,
			Type:      typ,
			Title:     title,
			Message:   message,
			Priority:  priority,
			TontineID: tontineID,
			RoundID:   roundID,
			PaymentID: paymentID,
			CreatedAt: at,
		}
	}
	each := func(typ entities.NotificationType, priority entities.NotificationPriority, title, message string) []*entities.Notification {
		out := make([]*entities.Notification, 0, len(event.Recipients))
		for _, to := range event.Recipients {
			out = append(out, build(to, typ, priority, title, message))
		}
		return out
	}

	switch event.Type {
	case entities.EventPaymentConfirmed:
		p := event.Payment
		return []*entities.Notification{build(p.AccountID, entities.NotificationPaymentReceived, entities.PriorityLow,
			"Payment received",
			fmt.Sprintf("Your contribution of %s %s to %s was received.", p.Amount.StringFixed(2), currency, name))}

	case entities.EventPaymentFailed:
		p := event.Payment
		msg := fmt.Sprintf("Your contribution of %s %s to %s could not be processed.", p.Amount.StringFixed(2), currency, name)
		if event.Message != "" {
			msg += " Reason: " + event.Message
		}
		return []*entities.Notification{build(p.AccountID, entities.NotificationPaymentFailed, entities.PriorityHigh, "Payment failed", msg)}

	case entities.EventPaymentDue:
		p := event.Payment
		priority := event.Priority
		if priority == "" {
			priority = entities.PriorityMedium
		}
		return []*entities.Notification{build(p.AccountID, entities.NotificationPaymentDue, priority,
			"Payment due",
			fmt.Sprintf("Your contribution of %s is due on %s.", p.Amount.StringFixed(2), p.DueDate.Format("2006-01-02")))}

	case entities.EventRoundStarted:
		return each(entities.NotificationRoundStarted, entities.PriorityMedium,
			"Round started",
			fmt.Sprintf("Round %d of %s is now collecting contributions until %s.", event.Round.Number, name, event.Round.DueDate.Format("2006-01-02")))

	case entities.EventRoundCompleted:
		r := event.Round
		out := each(entities.NotificationRoundCompleted, entities.PriorityLow,
			"Round completed",
			fmt.Sprintf("Round %d of %s is complete.", r.Number, name))
		if event.Subject != uuid.Nil {
			out = append(out, build(event.Subject, entities.NotificationPayoutReceived, entities.PriorityHigh,
				"Payout received",
				fmt.Sprintf("You received %s %s as the winner of round %d of %s.", r.DistributedAmount.StringFixed(2), currency, r.Number, name)))
		}
		return out

	case entities.EventTontineStarted:
		return each(entities.NotificationTontineStarted, entities.PriorityMedium,
			"Tontine started", fmt.Sprintf("%s has started. The round schedule is available.", name))

	case entities.EventTontineCompleted:
		return each(entities.NotificationTontineCompleted, entities.PriorityLow,
			"Tontine completed", fmt.Sprintf("Every round of %s is complete.", name))

	case entities.EventTontineCancelled:
		return each(entities.NotificationTontineCancelled, entities.PriorityHigh,
			"Tontine cancelled", fmt.Sprintf("%s has been cancelled.", name))

	case entities.EventParticipantJoined:
		return each(entities.NotificationParticipantJoined, entities.PriorityLow,
			"New participant", fmt.Sprintf("A new participant joined %s.", name))

	case entities.EventVerificationReviewed:
		if event.Approved {
			return []*entities.Notification{build(event.Subject, entities.NotificationIdentityVerified, entities.PriorityMedium,
				"Identity verified", "Your identity has been verified.")}
		}
		msg := "Your identity verification was rejected."
		if event.Message != "" {
			msg += " " + event.Message
		}
		return []*entities.Notification{build(event.Subject, entities.NotificationIdentityRejected, entities.PriorityHigh,
			"Identity verification rejected", msg)}

	case entities.EventAccountStatusChanged:
		if event.Active {
			return []*entities.Notification{build(event.Subject, entities.NotificationAccountReactivated, entities.PriorityMedium,
				"Account reactivated", "Your account has been reactivated.")}
		}
		return []*entities.Notification{build(event.Subject, entities.NotificationAccountSuspended, entities.PriorityHigh,
			"Account suspended", "Your account has been suspended. Contact support for details.")}
	}
	return nil
}

// ListNotifications lists the actor's notifications with the unread count
func (u *NotificationUsecase) ListNotifications(ctx context.Context, actor Actor, filter entities.NotificationFilter, page utils.PaginationParams) ([]*entities.Notification, int64, int64, error) {
	items, total, err := u.notificationRepo.List(ctx, actor.AccountID, filter, page)
	if err != nil {
		return nil, 0, 0, err
	}
	unread, err := u.notificationRepo.CountUnread(ctx, actor.AccountID)
	if err != nil {
		return nil, 0, 0, err
	}
	return items, total, unread, nil
}

// MarkRead marks one of the actor's notifications as read
func (u *NotificationUsecase) MarkRead(ctx context.Context, actor Actor, id uuid.UUID) error {
	return u.notificationRepo.MarkRead(ctx, actor.AccountID, id)
}

// MarkAllRead marks every unread notification of the actor as read
func (u *NotificationUsecase) MarkAllRead(ctx context.Context, actor Actor) (int64, error) {
	return u.notificationRepo.MarkAllRead(ctx, actor.AccountID)
}

// SendDueReminders notifies payers of pending contributions due within the reminder
// window, at most once per payment per day
func (u *NotificationUsecase) SendDueReminders(ctx context.Context, now time.Time) (int, error) {
	due, err := u.paymentRepo.ListDueForReminder(ctx, now.Add(u.settings.Window))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, p := range due {
		key := fmt.Sprintf("%s%s:%s", reminderKeyPrefix, p.ID, now.UTC().Format("2006-01-02"))
		claimed, err := claimReminder(ctx, key, 1, reminderDedupeTTL)
		if err != nil {
			logger.Warn(ctx, "Reminder dedupe unavailable", zap.String("payment_id", p.ID.String()), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}
		err = u.Handle(ctx, entities.DomainEvent{
			Type:       entities.EventPaymentDue,
			OccurredAt: now,
			Payment:    p,
			Priority:   entities.PaymentDuePriority(p.DueDate.Sub(now), u.settings.HighPriorityWindow),
		})
		if err != nil {
			logger.Error(ctx, "Failed to send payment reminder", zap.String("payment_id", p.ID.String()), zap.Error(err))
			if err := releaseReminder(ctx, key); err != nil {
				logger.Warn(ctx, "Failed to release reminder claim", zap.String("payment_id", p.ID.String()), zap.Error(err))
			}
			continue
		}
		sent++
	}
	return sent, nil
}
