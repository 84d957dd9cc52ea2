package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tontine.backend/internal/domain/entities"
	"tontine.backend/pkg/redis"
)

const notificationChannelPrefix = "notifications:"

// NotificationChannel is the Redis channel real-time clients of an account subscribe to
func NotificationChannel(accountID uuid.UUID) string {
	return notificationChannelPrefix + accountID.String()
}

// NotificationMessage is the payload pushed to real-time clients
type NotificationMessage struct {
	ID        uuid.UUID                     `json:"id"`
	Type      entities.NotificationType     `json:"type"`
	Priority  entities.NotificationPriority `json:"priority"`
	Title     string                        `json:"title"`
	Message   string                        `json:"message"`
	TontineID *uuid.UUID                    `json:"tontineId,omitempty"`
	RoundID   *uuid.UUID                    `json:"roundId,omitempty"`
	PaymentID *uuid.UUID                    `json:"paymentId,omitempty"`
	CreatedAt time.Time                     `json:"createdAt"`
}

// RedisNotificationPublisher fans stored notifications out over Redis pub/sub
type RedisNotificationPublisher struct {
	publish func(ctx context.Context, channel string, message interface{}) error
}

func NewRedisNotificationPublisher() *RedisNotificationPublisher {
	return &RedisNotificationPublisher{publish: redis.Publish}
}

func (p *RedisNotificationPublisher) PublishNotification(ctx context.Context, n *entities.Notification) error {
	payload, err := json.Marshal(NotificationMessage{
		ID:        n.ID,
		Type:      n.Type,
		Priority:  n.Priority,
		Title:     n.Title,
		Message:   n.Message,
		TontineID: n.TontineID,
		RoundID:   n.RoundID,
		PaymentID: n.PaymentID,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return p.publish(ctx, NotificationChannel(n.AccountID), payload)
}
