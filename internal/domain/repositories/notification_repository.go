package repositories

import (
	"context"

	"github.com/google/uuid"

	"tontine.backend/internal/domain/entities"
	"tontine.backend/pkg/utils"
)

// NotificationRepository defines notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, n *entities.Notification) error
	List(ctx context.Context, accountID uuid.UUID, filter entities.NotificationFilter, page utils.PaginationParams) ([]*entities.Notification, int64, error)
	CountUnread(ctx context.Context, accountID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, accountID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, accountID uuid.UUID) (int64, error)
}
