package repositories

import (
	"context"

	"github.com/google/uuid"

	"tontine.backend/internal/domain/entities"
	"tontine.backend/pkg/utils"
)

// TontineRepository defines tontine data operations.
// GetByID honours UnitOfWork.WithLock and locks the tontine row.
type TontineRepository interface {
	Create(ctx context.Context, tontine *entities.Tontine) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Tontine, error)
	GetByInviteCode(ctx context.Context, code string) (*entities.Tontine, error)
	InviteCodeExists(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, tontine *entities.Tontine) error
	List(ctx context.Context, filter entities.TontineFilter, page utils.PaginationParams) ([]*entities.Tontine, int64, error)
	CountByStatus(ctx context.Context) (map[entities.TontineStatus]int64, error)
}

// ParticipationRepository defines membership data operations
type ParticipationRepository interface {
	Create(ctx context.Context, p *entities.Participation) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Participation, error)
	GetByTontineAndAccount(ctx context.Context, tontineID, accountID uuid.UUID) (*entities.Participation, error)
	// ListByTontine returns participations ordered by position then join time
	ListByTontine(ctx context.Context, tontineID uuid.UUID, activeOnly bool) ([]*entities.Participation, error)
	CountActive(ctx context.Context, tontineID uuid.UUID) (int, error)
	Update(ctx context.Context, p *entities.Participation) error
	UpdatePositions(ctx context.Context, positions map[uuid.UUID]int) error
}
