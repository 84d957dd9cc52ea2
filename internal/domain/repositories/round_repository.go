package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tontine.backend/internal/domain/entities"
)

// RoundRepository defines round data operations
type RoundRepository interface {
	CreateBatch(ctx context.Context, rounds []*entities.Round) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Round, error)
	// ListByTontine returns rounds ordered by number
	ListByTontine(ctx context.Context, tontineID uuid.UUID) ([]*entities.Round, error)
	Update(ctx context.Context, round *entities.Round) error
	UpdateWinners(ctx context.Context, winners map[uuid.UUID]uuid.UUID) error
	// ListDueForCollection returns PENDING rounds of ACTIVE tontines whose collection start is <= now
	ListDueForCollection(ctx context.Context, now time.Time) ([]*entities.Round, error)
}
