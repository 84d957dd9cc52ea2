package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tontine.backend/internal/domain/entities"
	"tontine.backend/pkg/utils"
)

// PaymentRepository defines payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *entities.Payment) error
	CreateBatch(ctx context.Context, payments []*entities.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error)
	ListByRound(ctx context.Context, roundID uuid.UUID) ([]*entities.Payment, error)
	Update(ctx context.Context, payment *entities.Payment) error
	List(ctx context.Context, filter entities.PaymentFilter, page utils.PaginationParams) ([]*entities.Payment, int64, error)
	CountByStatus(ctx context.Context) (map[entities.PaymentStatus]int64, error)
	SumPaid(ctx context.Context) (decimal.Decimal, error)
	// ListDueForReminder returns pending payments of collecting rounds due before until
	ListDueForReminder(ctx context.Context, until time.Time) ([]*entities.Payment, error)
}
