package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/interfaces/http/response"
	"tontine.backend/internal/usecases"
)

type RoundService interface {
	GenerateRounds(ctx context.Context, actor usecases.Actor, tontineID uuid.UUID, input *entities.GenerateRoundsInput) ([]*entities.Round, error)
	ListRounds(ctx context.Context, actor usecases.Actor, tontineID uuid.UUID) ([]*entities.Round, error)
	ReorderWinners(ctx context.Context, actor usecases.Actor, tontineID uuid.UUID, input *entities.ReorderWinnersInput) ([]*entities.Round, error)
	ForceCompleteRound(ctx context.Context, actor usecases.Actor, roundID uuid.UUID, input *entities.ForceCompleteRoundInput) (*entities.Round, error)
}

// RoundHandler handles round schedule endpoints
type RoundHandler struct {
	roundUsecase RoundService
}

func NewRoundHandler(roundUsecase RoundService) *RoundHandler {
	return &RoundHandler{roundUsecase: roundUsecase}
}

// GenerateRounds builds the schedule and starts the tontine
// POST /api/v1/tontines/:id/rounds/generate
func (h *RoundHandler) GenerateRounds(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "tontine")
	if !ok {
		return
	}

	var input entities.GenerateRoundsInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			response.Error(c, domainerrors.Validation(err.Error()))
			return
		}
	}

	rounds, err := h.roundUsecase.GenerateRounds(c.Request.Context(), actor, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"rounds": rounds})
}

// ListRounds lists a tontine's rounds in order
// GET /api/v1/tontines/:id/rounds
func (h *RoundHandler) ListRounds(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "tontine")
	if !ok {
		return
	}

	rounds, err := h.roundUsecase.ListRounds(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rounds": rounds})
}

// ReorderWinners reassigns the winners of the rounds that have not started
// PUT /api/v1/tontines/:id/winners/order
func (h *RoundHandler) ReorderWinners(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "tontine")
	if !ok {
		return
	}

	var input entities.ReorderWinnersInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	rounds, err := h.roundUsecase.ReorderWinners(c.Request.Context(), actor, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rounds": rounds})
}

// ForceCompleteRound closes a round regardless of outstanding payments
// POST /api/v1/admin/rounds/:id/force-complete
func (h *RoundHandler) ForceCompleteRound(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "round")
	if !ok {
		return
	}

	var input entities.ForceCompleteRoundInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	round, err := h.roundUsecase.ForceCompleteRound(c.Request.Context(), actor, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"round": round})
}
