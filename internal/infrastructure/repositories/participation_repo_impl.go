package repositories

import (
	"context"
	"errors"
	"fmt"
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

// ParticipationRepository implements membership data operations
type ParticipationRepository struct {
	db *gorm.DB
}

// NewParticipationRepository creates a new participation repository
func NewParticipationRepository(db *gorm.DB) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// Create creates a new participation
func (r *ParticipationRepository) Create(ctx context.Context, p *entities.Participation) error {
	if p.ID == uuid.Nil {
		p.ID = utils.GenerateUUIDv7()
	}
	m := toParticipationModel(p)
	if err := GetDB(ctx, r.db).WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a participation with its account
func (r *ParticipationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Participation, error) {
	var m models.Participation
	if err := GetDB(ctx, r.db).WithContext(ctx).Preload("Account").Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toParticipationEntity(&m), nil
}

// GetByTontineAndAccount gets the single membership record of an account in a tontine
func (r *ParticipationRepository) GetByTontineAndAccount(ctx context.Context, tontineID, accountID uuid.UUID) (*entities.Participation, error) {
	var m models.Participation
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("tontine_id = ? AND account_id = ?", tontineID, accountID).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toParticipationEntity(&m), nil
}

// ListByTontine returns participations ordered by position then join time
func (r *ParticipationRepository) ListByTontine(ctx context.Context, tontineID uuid.UUID, activeOnly bool) ([]*entities.Participation, error) {
	query := GetDB(ctx, r.db).WithContext(ctx).Preload("Account").Where("tontine_id = ?", tontineID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var ms []models.Participation
	if err := query.Order("position ASC").Order("joined_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}

	out := make([]*entities.Participation, 0, len(ms))
	for i := range ms {
		out = append(out, toParticipationEntity(&ms[i]))
	}
	return out, nil
}

// CountActive counts active participations of a tontine
func (r *ParticipationRepository) CountActive(ctx context.Context, tontineID uuid.UUID) (int, error) {
	var count int64
	if err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Participation{}).
		Where("tontine_id = ? AND is_active = ?", tontineID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// Update persists the mutable participation fields
func (r *ParticipationRepository) Update(ctx context.Context, p *entities.Participation) error {
	p.UpdatedAt = time.Now()
	updates := map[string]interface{}{
		"shares":          p.Shares,
		"total_committed": p.TotalCommitted,
		"is_active":       p.IsActive,
		"position":        p.Position,
		"joined_at":       p.JoinedAt,
		"left_at":         p.LeftAt.Ptr(),
		"updated_at":      p.UpdatedAt,
	}

	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Participation{}).Where("id = ?", p.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdatePositions rewrites the position of many participations in a single statement
func (r *ParticipationRepository) UpdatePositions(ctx context.Context, positions map[uuid.UUID]int) error {
	if len(positions) == 0 {
		return nil
	}

	var (
		sb   strings.Builder
		args = make([]interface{}, 0, len(positions)*3+1)
		ids  = make([]uuid.UUID, 0, len(positions))
	)
	sb.WriteString("CASE id")
	for id, pos := range positions {
		sb.WriteString(" WHEN ? THEN ?")
		args = append(args, id, pos)
		ids = append(ids, id)
	}
	sb.WriteString(" END")

	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Participation{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"position":   gorm.Expr(sb.String(), args...),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if int(result.RowsAffected) != len(positions) {
		return fmt.Errorf("update positions: %w", domainerrors.ErrNotFound)
	}
	return nil
}

func toParticipationModel(p *entities.Participation) *models.Participation {
	return &models.Participation{
		ID:             p.ID,
		TontineID:      p.TontineID,
		AccountID:      p.AccountID,
		Shares:         p.Shares,
		TotalCommitted: p.TotalCommitted,
		IsActive:       p.IsActive,
		Position:       p.Position,
		JoinedAt:       p.JoinedAt,
		LeftAt:         p.LeftAt.Ptr(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toParticipationEntity(m *models.Participation) *entities.Participation {
	p := &entities.Participation{
		ID:             m.ID,
		TontineID:      m.TontineID,
		AccountID:      m.AccountID,
		Shares:         m.Shares,
		TotalCommitted: m.TotalCommitted,
		IsActive:       m.IsActive,
		Position:       m.Position,
		JoinedAt:       m.JoinedAt,
		LeftAt:         null.TimeFromPtr(m.LeftAt),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.Account.ID != uuid.Nil {
		p.Account = toAccountEntity(&m.Account)
	}
	return p
}
