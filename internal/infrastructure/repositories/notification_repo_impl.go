package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/infrastructure/models"
	"tontine.backend/pkg/utils"
)

// NotificationRepository implements notification data operations
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = utils.GenerateUUIDv7()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m := &models.Notification{
		ID:        n.ID,
		AccountID: n.AccountID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Priority:  string(n.Priority),
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt.Ptr(),
		TontineID: n.TontineID,
		RoundID:   n.RoundID,
		PaymentID: n.PaymentID,
		CreatedAt: n.CreatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Omit(clause.Associations).Create(m).Error
}

// List returns an account's notifications, newest first
func (r *NotificationRepository) List(ctx context.Context, accountID uuid.UUID, filter entities.NotificationFilter, page utils.PaginationParams) ([]*entities.Notification, int64, error) {
	query := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Notification{}).Where("account_id = ?", accountID)
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Notification
	if err := query.Order("created_at DESC").Order("id DESC").Limit(page.Limit).Offset(page.CalculateOffset()).Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.Notification, 0, len(ms))
	for i := range ms {
		out = append(out, toNotificationEntity(&ms[i]))
	}
	return out, total, nil
}

// CountUnread counts unread notifications of an account
func (r *NotificationRepository) CountUnread(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Notification{}).
		Where("account_id = ? AND is_read = ?", accountID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one notification as read; other accounts' notifications are not found
func (r *NotificationRepository) MarkRead(ctx context.Context, accountID, id uuid.UUID) error {
	var m models.Notification
	db := GetDB(ctx, r.db).WithContext(ctx)
	if err := db.Where("id = ? AND account_id = ?", id, accountID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrNotFound
		}
		return err
	}
	if m.IsRead {
		return nil
	}
	return db.Model(&models.Notification{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()}).Error
}

// MarkAllRead marks every unread notification of an account as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, accountID uuid.UUID) (int64, error) {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Notification{}).
		Where("account_id = ? AND is_read = ?", accountID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	return result.RowsAffected, result.Error
}

func toNotificationEntity(m *models.Notification) *entities.Notification {
	return &entities.Notification{
		ID:        m.ID,
		AccountID: m.AccountID,
		Type:      entities.NotificationType(m.Type),
		Title:     m.Title,
		Message:   m.Message,
		Priority:  entities.NotificationPriority(m.Priority),
		IsRead:    m.IsRead,
		ReadAt:    null.TimeFromPtr(m.ReadAt),
		TontineID: m.TontineID,
		RoundID:   m.RoundID,
		PaymentID: m.PaymentID,
		CreatedAt: m.CreatedAt,
	}
}
