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

// RoundRepository implements round data operations
type RoundRepository struct {
	db *gorm.DB
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(db *gorm.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

// CreateBatch inserts a full round schedule
func (r *RoundRepository) CreateBatch(ctx context.Context, rounds []*entities.Round) error {
	if len(rounds) == 0 {
		return nil
	}
	ms := make([]*models.Round, 0, len(rounds))
	for _, round := range rounds {
		if round.ID == uuid.Nil {
			round.ID = utils.GenerateUUIDv7()
		}
		ms = append(ms, toRoundModel(round))
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Omit(clause.Associations).Create(&ms).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a round by ID
func (r *RoundRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Round, error) {
	var m models.Round
	if err := lockedDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toRoundEntity(&m), nil
}

// ListByTontine returns the schedule of a tontine ordered by round number
func (r *RoundRepository) ListByTontine(ctx context.Context, tontineID uuid.UUID) ([]*entities.Round, error) {
	var ms []models.Round
	if err := lockedDB(ctx, r.db).Where("tontine_id = ?", tontineID).Order("number ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Round, 0, len(ms))
	for i := range ms {
		out = append(out, toRoundEntity(&ms[i]))
	}
	return out, nil
}

// Update persists the mutable round fields
func (r *RoundRepository) Update(ctx context.Context, round *entities.Round) error {
	round.UpdatedAt = time.Now()
	updates := map[string]interface{}{
		"collected_amount":        round.CollectedAmount,
		"distributed_amount":      round.DistributedAmount,
		"completed_at":            round.CompletedAt.Ptr(),
		"status":                  string(round.Status),
		"winner_participation_id": round.WinnerParticipationID,
		"force_completed":         round.ForceCompleted,
		"completion_note":         round.CompletionNote.Ptr(),
		"updated_at":              round.UpdatedAt,
	}

	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Round{}).Where("id = ?", round.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateWinners re-points many rounds to new winners in a single statement
func (r *RoundRepository) UpdateWinners(ctx context.Context, winners map[uuid.UUID]uuid.UUID) error {
	if len(winners) == 0 {
		return nil
	}

	var (
		sb   strings.Builder
		args = make([]interface{}, 0, len(winners)*2)
		ids  = make([]uuid.UUID, 0, len(winners))
	)
	sb.WriteString("CASE id")
	for roundID, participationID := range winners {
		sb.WriteString(" WHEN ? THEN ?")
		args = append(args, roundID, participationID)
		ids = append(ids, roundID)
	}
	sb.WriteString(" END")

	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Round{}).
		Where("id IN ? AND status = ?", ids, string(entities.RoundStatusPending)).
		Updates(map[string]interface{}{
			"winner_participation_id": gorm.Expr(sb.String(), args...),
			"updated_at":              time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if int(result.RowsAffected) != len(winners) {
		return fmt.Errorf("update winners: %w", domainerrors.ErrConflict)
	}
	return nil
}

// ListDueForCollection returns PENDING rounds of ACTIVE tontines whose collection window has opened
func (r *RoundRepository) ListDueForCollection(ctx context.Context, now time.Time) ([]*entities.Round, error) {
	var ms []models.Round
	err := GetDB(ctx, r.db).WithContext(ctx).
		Joins("JOIN tontines t ON t.id = rounds.tontine_id").
		Where("rounds.status = ? AND rounds.collection_start_date <= ? AND t.status = ?",
			string(entities.RoundStatusPending), now, string(entities.TontineStatusActive)).
		Order("rounds.collection_start_date ASC").Order("rounds.number ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Round, 0, len(ms))
	for i := range ms {
		out = append(out, toRoundEntity(&ms[i]))
	}
	return out, nil
}

func toRoundModel(round *entities.Round) *models.Round {
	return &models.Round{
		ID:                    round.ID,
		TontineID:             round.TontineID,
		Number:                round.Number,
		ExpectedAmount:        round.ExpectedAmount,
		CollectedAmount:       round.CollectedAmount,
		DistributedAmount:     round.DistributedAmount,
		CollectionStartDate:   round.CollectionStartDate,
		DueDate:               round.DueDate,
		CompletedAt:           round.CompletedAt.Ptr(),
		Status:                string(round.Status),
		WinnerParticipationID: round.WinnerParticipationID,
		ForceCompleted:        round.ForceCompleted,
		CompletionNote:        round.CompletionNote.Ptr(),
		CreatedAt:             round.CreatedAt,
		UpdatedAt:             round.UpdatedAt,
	}
}

func toRoundEntity(m *models.Round) *entities.Round {
	return &entities.Round{
		ID:                    m.ID,
		TontineID:             m.TontineID,
		Number:                m.Number,
		ExpectedAmount:        m.ExpectedAmount,
		CollectedAmount:       m.CollectedAmount,
		DistributedAmount:     m.DistributedAmount,
		CollectionStartDate:   m.CollectionStartDate,
		DueDate:               m.DueDate,
		CompletedAt:           null.TimeFromPtr(m.CompletedAt),
		Status:                entities.RoundStatus(m.Status),
		WinnerParticipationID: m.WinnerParticipationID,
		ForceCompleted:        m.ForceCompleted,
		CompletionNote:        null.StringFromPtr(m.CompletionNote),
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}
