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

// IdentityVerificationRepository implements verification request operations
type IdentityVerificationRepository struct {
	db *gorm.DB
}

// NewIdentityVerificationRepository creates a new identity verification repository
func NewIdentityVerificationRepository(db *gorm.DB) *IdentityVerificationRepository {
	return &IdentityVerificationRepository{db: db}
}

// Create inserts a verification request
func (r *IdentityVerificationRepository) Create(ctx context.Context, v *entities.IdentityVerification) error {
	if v.ID == uuid.Nil {
		v.ID = utils.GenerateUUIDv7()
	}
	m := &models.IdentityVerification{
		ID:            v.ID,
		AccountID:     v.AccountID,
		DocumentType:  string(v.DocumentType),
		DocumentURL:   v.DocumentURL,
		Status:        string(v.Status),
		ReviewMessage: v.ReviewMessage.Ptr(),
		ReviewedBy:    v.ReviewedBy,
		ReviewedAt:    v.ReviewedAt.Ptr(),
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Omit(clause.Associations).Create(m).Error
}

// GetByID gets a verification request with its account
func (r *IdentityVerificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.IdentityVerification, error) {
	var m models.IdentityVerification
	if err := lockedDB(ctx, r.db).Preload("Account").Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toVerificationEntity(&m), nil
}

// GetLatestByAccount gets the most recent request of an account
func (r *IdentityVerificationRepository) GetLatestByAccount(ctx context.Context, accountID uuid.UUID) (*entities.IdentityVerification, error) {
	var m models.IdentityVerification
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").Order("id DESC").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toVerificationEntity(&m), nil
}

// Update persists the review outcome
func (r *IdentityVerificationRepository) Update(ctx context.Context, v *entities.IdentityVerification) error {
	v.UpdatedAt = time.Now()
	updates := map[string]interface{}{
		"status":         string(v.Status),
		"review_message": v.ReviewMessage.Ptr(),
		"reviewed_by":    v.ReviewedBy,
		"reviewed_at":    v.ReviewedAt.Ptr(),
		"updated_at":     v.UpdatedAt,
	}
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.IdentityVerification{}).Where("id = ?", v.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List lists verification requests, oldest first
func (r *IdentityVerificationRepository) List(ctx context.Context, status entities.VerificationStatus, page utils.PaginationParams) ([]*entities.IdentityVerification, int64, error) {
	query := GetDB(ctx, r.db).WithContext(ctx).Model(&models.IdentityVerification{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.IdentityVerification
	if err := query.Preload("Account").Order("created_at ASC").Limit(page.Limit).Offset(page.CalculateOffset()).Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.IdentityVerification, 0, len(ms))
	for i := range ms {
		out = append(out, toVerificationEntity(&ms[i]))
	}
	return out, total, nil
}

// CountByStatus counts requests in a status
func (r *IdentityVerificationRepository) CountByStatus(ctx context.Context, status entities.VerificationStatus) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.IdentityVerification{}).
		Where("status = ?", string(status)).Count(&count).Error
	return count, err
}

func toVerificationEntity(m *models.IdentityVerification) *entities.IdentityVerification {
	v := &entities.IdentityVerification{
		ID:            m.ID,
		AccountID:     m.AccountID,
		DocumentType:  entities.DocumentType(m.DocumentType),
		DocumentURL:   m.DocumentURL,
		Status:        entities.VerificationStatus(m.Status),
		ReviewMessage: null.StringFromPtr(m.ReviewMessage),
		ReviewedBy:    m.ReviewedBy,
		ReviewedAt:    null.TimeFromPtr(m.ReviewedAt),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.Account.ID != uuid.Nil {
		v.Account = toAccountEntity(&m.Account)
	}
	return v
}
