package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/infrastructure/models"
	"tontine.backend/pkg/utils"
)

// PaymentRepository implements payment data operations
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create creates a new payment
func (r *PaymentRepository) Create(ctx context.Context, payment *entities.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = utils.GenerateUUIDv7()
	}
	return GetDB(ctx, r.db).WithContext(ctx).Omit(clause.Associations).Create(toPaymentModel(payment)).Error
}

// CreateBatch inserts the payments of a round schedule
func (r *PaymentRepository) CreateBatch(ctx context.Context, payments []*entities.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	ms := make([]*models.Payment, 0, len(payments))
	for _, p := range payments {
		if p.ID == uuid.Nil {
			p.ID = utils.GenerateUUIDv7()
		}
		ms = append(ms, toPaymentModel(p))
	}
	return GetDB(ctx, r.db).WithContext(ctx).Omit(clause.Associations).CreateInBatches(&ms, 200).Error
}

// GetByID gets a payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error) {
	var m models.Payment
	if err := lockedDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toPaymentEntity(&m), nil
}

// ListByRound returns every payment row of a round, oldest first
func (r *PaymentRepository) ListByRound(ctx context.Context, roundID uuid.UUID) ([]*entities.Payment, error) {
	var ms []models.Payment
	if err := lockedDB(ctx, r.db).Where("round_id = ?", roundID).Order("created_at ASC").Order("id ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Payment, 0, len(ms))
	for i := range ms {
		out = append(out, toPaymentEntity(&ms[i]))
	}
	return out, nil
}

// Update persists the mutable payment fields. The amount is fixed at creation.
func (r *PaymentRepository) Update(ctx context.Context, payment *entities.Payment) error {
	payment.UpdatedAt = time.Now()
	updates := map[string]interface{}{
		"status":                 string(payment.Status),
		"paid_at":                payment.PaidAt.Ptr(),
		"method":                 payment.Method.Ptr(),
		"transaction_ref":        payment.TransactionRef.Ptr(),
		"failure_reason":         payment.FailureReason.Ptr(),
		"replaced_by_payment_id": payment.ReplacedByPaymentID,
		"updated_at":             payment.UpdatedAt,
	}

	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List lists payments matching the filter, newest due date first
func (r *PaymentRepository) List(ctx context.Context, filter entities.PaymentFilter, page utils.PaginationParams) ([]*entities.Payment, int64, error) {
	query := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Payment{})

	if filter.Status != "" {
		query = query.Where("payments.status = ?", string(filter.Status))
	}
	if filter.AccountID != nil {
		query = query.Where("payments.account_id = ?", *filter.AccountID)
	}
	if filter.RoundID != nil {
		query = query.Where("payments.round_id = ?", *filter.RoundID)
	}
	if filter.TontineID != nil {
		query = query.Where("payments.tontine_id = ?", *filter.TontineID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Joins("JOIN users u ON u.id = payments.account_id").
			Where("LOWER(u.name) LIKE ? OR LOWER(u.email) LIKE ? OR LOWER(COALESCE(payments.transaction_ref, '')) LIKE ?", term, term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Payment
	if err := query.Order("payments.due_date DESC").Order("payments.created_at DESC").
		Limit(page.Limit).Offset(page.CalculateOffset()).Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.Payment, 0, len(ms))
	for i := range ms {
		out = append(out, toPaymentEntity(&ms[i]))
	}
	return out, total, nil
}

// CountByStatus aggregates payments per status
func (r *PaymentRepository) CountByStatus(ctx context.Context) (map[entities.PaymentStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Payment{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := map[entities.PaymentStatus]int64{
		entities.PaymentStatusPending: 0,
		entities.PaymentStatusPaid:    0,
		entities.PaymentStatusFailed:  0,
	}
	for _, row := range rows {
		out[entities.PaymentStatus(row.Status)] = row.Count
	}
	return out, nil
}

// SumPaid totals the amount of every paid payment
func (r *PaymentRepository) SumPaid(ctx context.Context) (decimal.Decimal, error) {
	var row struct {
		Total decimal.NullDecimal
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Payment{}).
		Where("status = ?", string(entities.PaymentStatusPaid)).
		Select("SUM(amount) AS total").Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal, nil
}

// ListDueForReminder returns pending payments of collecting rounds of ACTIVE tontines due before until
func (r *PaymentRepository) ListDueForReminder(ctx context.Context, until time.Time) ([]*entities.Payment, error) {
	var ms []models.Payment
	err := GetDB(ctx, r.db).WithContext(ctx).
		Joins("JOIN rounds r ON r.id = payments.round_id").
		Joins("JOIN tontines t ON t.id = payments.tontine_id").
		Where("payments.status = ? AND r.status = ? AND t.status = ? AND payments.due_date <= ?",
			string(entities.PaymentStatusPending), string(entities.RoundStatusCollecting),
			string(entities.TontineStatusActive), until).
		Order("payments.due_date ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Payment, 0, len(ms))
	for i := range ms {
		out = append(out, toPaymentEntity(&ms[i]))
	}
	return out, nil
}

func toPaymentModel(p *entities.Payment) *models.Payment {
	origin := string(p.Origin)
	if origin == "" {
		origin = string(entities.PaymentOriginScheduled)
	}
	return &models.Payment{
		ID:                  p.ID,
		RoundID:             p.RoundID,
		TontineID:           p.TontineID,
		ParticipationID:     p.ParticipationID,
		AccountID:           p.AccountID,
		Amount:              p.Amount,
		Status:              string(p.Status),
		DueDate:             p.DueDate,
		PaidAt:              p.PaidAt.Ptr(),
		Method:              p.Method.Ptr(),
		TransactionRef:      p.TransactionRef.Ptr(),
		FailureReason:       p.FailureReason.Ptr(),
		Origin:              origin,
		ReplacesPaymentID:   p.ReplacesPaymentID,
		ReplacedByPaymentID: p.ReplacedByPaymentID,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func toPaymentEntity(m *models.Payment) *entities.Payment {
	return &entities.Payment{
		ID:                  m.ID,
		RoundID:             m.RoundID,
		TontineID:           m.TontineID,
		ParticipationID:     m.ParticipationID,
		AccountID:           m.AccountID,
		Amount:              m.Amount,
		Status:              entities.PaymentStatus(m.Status),
		DueDate:             m.DueDate,
		PaidAt:              null.TimeFromPtr(m.PaidAt),
		Method:              null.StringFromPtr(m.Method),
		TransactionRef:      null.StringFromPtr(m.TransactionRef),
		FailureReason:       null.StringFromPtr(m.FailureReason),
		Origin:              entities.PaymentOrigin(m.Origin),
		ReplacesPaymentID:   m.ReplacesPaymentID,
		ReplacedByPaymentID: m.ReplacedByPaymentID,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}
