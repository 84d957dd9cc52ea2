package repositories

import (
	"context"
	"errors"
	"strings"
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

// TontineRepository implements tontine data operations
type TontineRepository struct {
	db *gorm.DB
}

// NewTontineRepository creates a new tontine repository
func NewTontineRepository(db *gorm.DB) *TontineRepository {
	return &TontineRepository{db: db}
}

// Create creates a new tontine
func (r *TontineRepository) Create(ctx context.Context, t *entities.Tontine) error {
	if t.ID == uuid.Nil {
		t.ID = utils.GenerateUUIDv7()
	}
	m := toTontineModel(t)
	if err := GetDB(ctx, r.db).WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a tontine by ID, locking the row inside a WithLock context
func (r *TontineRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Tontine, error) {
	var m models.Tontine
	if err := lockedDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toTontineEntity(&m), nil
}

// GetByInviteCode gets a tontine by its invite code
func (r *TontineRepository) GetByInviteCode(ctx context.Context, code string) (*entities.Tontine, error) {
	var m models.Tontine
	if err := lockedDB(ctx, r.db).Where("invite_code = ?", code).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toTontineEntity(&m), nil
}

// InviteCodeExists reports whether a code is already taken
func (r *TontineRepository) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Tontine{}).Where("invite_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update persists the mutable tontine fields
func (r *TontineRepository) Update(ctx context.Context, t *entities.Tontine) error {
	t.UpdatedAt = time.Now()
	updates := map[string]interface{}{
		"name":                   t.Name,
		"description":            t.Description,
		"total_amount_per_round": t.TotalAmountPerRound,
		"status":                 string(t.Status),
		"end_date":               t.EndDate.Ptr(),
		"participant_count":      t.ParticipantCount,
		"is_private":             t.IsPrivate,
		"updated_at":             t.UpdatedAt,
	}

	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Tontine{}).Where("id = ?", t.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List lists tontines matching the filter, newest first
func (r *TontineRepository) List(ctx context.Context, filter entities.TontineFilter, page utils.PaginationParams) ([]*entities.Tontine, int64, error) {
	query := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Tontine{})

	if filter.Status != "" {
		query = query.Where("tontines.status = ?", string(filter.Status))
	}
	if filter.PublicOnly {
		query = query.Where("tontines.is_private = ?", false)
	}
	if filter.ParticipantID != nil {
		query = query.Where(
			"tontines.owner_id = ? OR EXISTS (SELECT 1 FROM participations p WHERE p.tontine_id = tontines.id AND p.account_id = ? AND p.is_active = ?)",
			*filter.ParticipantID, *filter.ParticipantID, true,
		)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(tontines.name) LIKE ? OR LOWER(tontines.description) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Tontine
	if err := query.Order("tontines.created_at DESC").Limit(page.Limit).Offset(page.CalculateOffset()).Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	tontines := make([]*entities.Tontine, 0, len(ms))
	for i := range ms {
		tontines = append(tontines, toTontineEntity(&ms[i]))
	}
	return tontines, total, nil
}

// CountByStatus aggregates tontines per lifecycle status
func (r *TontineRepository) CountByStatus(ctx context.Context) (map[entities.TontineStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Tontine{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := map[entities.TontineStatus]int64{
		entities.TontineStatusDraft:     0,
		entities.TontineStatusActive:    0,
		entities.TontineStatusCompleted: 0,
		entities.TontineStatusCancelled: 0,
	}
	for _, row := range rows {
		out[entities.TontineStatus(row.Status)] = row.Count
	}
	return out, nil
}

func toTontineModel(t *entities.Tontine) *models.Tontine {
	m := &models.Tontine{
		ID:                  t.ID,
		Name:                t.Name,
		Description:         t.Description,
		AmountPerRound:      t.AmountPerRound,
		TotalAmountPerRound: t.TotalAmountPerRound,
		Currency:            t.Currency,
		Frequency:           string(t.Frequency),
		FrequencyInterval:   t.FrequencyInterval,
		Status:              string(t.Status),
		StartDate:           t.StartDate,
		EndDate:             t.EndDate.Ptr(),
		AllowMultipleShares: t.AllowMultipleShares,
		MaxSharesPerUser:    t.MaxSharesPerUser,
		InviteCode:          t.InviteCode,
		OwnerID:             t.OwnerID,
		IsPrivate:           t.IsPrivate,
		ParticipantCount:    t.ParticipantCount,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
	if t.MaxParticipants.Valid {
		v := t.MaxParticipants.Int
		m.MaxParticipants = &v
	}
	return m
}

func toTontineEntity(m *models.Tontine) *entities.Tontine {
	t := &entities.Tontine{
		ID:                  m.ID,
		Name:                m.Name,
		Description:         m.Description,
		AmountPerRound:      m.AmountPerRound,
		TotalAmountPerRound: m.TotalAmountPerRound,
		Currency:            m.Currency,
		Frequency:           entities.Frequency(m.Frequency),
		FrequencyInterval:   m.FrequencyInterval,
		Status:              entities.TontineStatus(m.Status),
		StartDate:           m.StartDate,
		EndDate:             null.TimeFromPtr(m.EndDate),
		AllowMultipleShares: m.AllowMultipleShares,
		MaxSharesPerUser:    m.MaxSharesPerUser,
		InviteCode:          m.InviteCode,
		OwnerID:             m.OwnerID,
		IsPrivate:           m.IsPrivate,
		ParticipantCount:    m.ParticipantCount,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.MaxParticipants != nil {
		t.MaxParticipants = null.IntFrom(*m.MaxParticipants)
	}
	return t
}
