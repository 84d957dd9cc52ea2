package repositories

import (
	"context"

	"github.com/google/uuid"

	"tontine.backend/internal/domain/entities"
	"tontine.backend/pkg/utils"
)

// IdentityVerificationRepository defines verification request operations
type IdentityVerificationRepository interface {
	Create(ctx context.Context, v *entities.IdentityVerification) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.IdentityVerification, error)
	GetLatestByAccount(ctx context.Context, accountID uuid.UUID) (*entities.IdentityVerification, error)
	Update(ctx context.Context, v *entities.IdentityVerification) error
	List(ctx context.Context, status entities.VerificationStatus, page utils.PaginationParams) ([]*entities.IdentityVerification, int64, error)
	CountByStatus(ctx context.Context, status entities.VerificationStatus) (int64, error)
}
