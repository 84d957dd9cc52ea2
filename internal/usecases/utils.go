package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tontine.backend/internal/domain/entities"
	"tontine.backend/pkg/logger"
)

// Actor identifies the authenticated account performing an operation
type Actor struct {
	AccountID uuid.UUID
	Role      entities.AccountRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == entities.AccountRoleAdmin
}

// EventPublisher delivers domain events to their subscribers
type EventPublisher interface {
	Publish(ctx context.Context, event entities.DomainEvent) error
}

var nowFunc = time.Now

func publish(ctx context.Context, pub EventPublisher, event entities.DomainEvent) error {
	if pub == nil {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = nowFunc()
	}
	if err := pub.Publish(ctx, event); err != nil {
		logger.Error(ctx, "Failed to publish domain event", zap.String("event", string(event.Type)), zap.Error(err))
		return err
	}
	return nil
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

func accountIDs(parts []*entities.Participation) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		if p.IsActive {
			ids = append(ids, p.AccountID)
		}
	}
	return ids
}

func canManage(actor Actor, t *entities.Tontine) bool {
	return actor.IsAdmin() || t.OwnerID == actor.AccountID
}
