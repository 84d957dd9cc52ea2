package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tontine.backend/internal/domain/entities"
	"tontine.backend/pkg/utils"
)

// AccountRepository defines account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error)
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)
	Update(ctx context.Context, account *entities.Account) error
	List(ctx context.Context, filter entities.AccountFilter, page utils.PaginationParams) ([]*entities.Account, int64, error)
	Stats(ctx context.Context) (entities.AccountStats, error)
}

// EmailVerificationRepository defines email verification operations
type EmailVerificationRepository interface {
	Create(ctx context.Context, accountID uuid.UUID, token string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*entities.Account, error)
	MarkVerified(ctx context.Context, token string) error
}
