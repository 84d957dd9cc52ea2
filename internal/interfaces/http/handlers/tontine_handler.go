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
	"tontine.backend/pkg/utils"
)

type TontineService interface {
	CreateTontine(ctx context.Context, actor usecases.Actor, input *entities.CreateTontineInput) (*entities.TontineDetail, error)
	GetTontine(ctx context.Context, actor usecases.Actor, id uuid.UUID) (*entities.TontineDetail, error)
	ListTontines(ctx context.Context, filter entities.TontineFilter, page utils.PaginationParams) ([]*entities.Tontine, int64, error)
	ListMyTontines(ctx context.Context, actor usecases.Actor, filter entities.TontineFilter, page utils.PaginationParams) ([]*entities.Tontine, int64, error)
	ListParticipants(ctx context.Context, actor usecases.Actor, tontineID uuid.UUID) ([]*entities.Participation, error)
	JoinTontine(ctx context.Context, actor usecases.Actor, input *entities.JoinTontineInput) (*entities.Participation, error)
	LeaveTontine(ctx context.Context, actor usecases.Actor, tontineID uuid.UUID) error
	RemoveParticipant(ctx context.Context, actor usecases.Actor, tontineID, participationID uuid.UUID) error
	CancelTontine(ctx context.Context, actor usecases.Actor, tontineID uuid.UUID) (*entities.Tontine, error)
}

var tontineStatuses = []entities.TontineStatus{
	entities.TontineStatusDraft,
	entities.TontineStatusActive,
	entities.TontineStatusCompleted,
	entities.TontineStatusCancelled,
}

// TontineHandler handles tontine and membership endpoints
type TontineHandler struct {
	tontineUsecase TontineService
}

func NewTontineHandler(tontineUsecase TontineService) *TontineHandler {
	return &TontineHandler{tontineUsecase: tontineUsecase}
}

// CreateTontine creates a tontine owned by the caller
// POST /api/v1/tontines
func (h *TontineHandler) CreateTontine(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input entities.CreateTontineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	detail, err := h.tontineUsecase.CreateTontine(c.Request.Context(), actor, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"tontine": detail})
}

func tontineFilter(c *gin.Context) (entities.TontineFilter, bool) {
	status, ok := enumQuery(c, "status", tontineStatuses...)
	if !ok {
		return entities.TontineFilter{}, false
	}
	return entities.TontineFilter{Status: status, Search: c.Query("search")}, true
}

// ListTontines lists public tontines
// GET /api/v1/tontines
func (h *TontineHandler) ListTontines(c *gin.Context) {
	filter, ok := tontineFilter(c)
	if !ok {
		return
	}
	page := pageParams(c)

	items, total, err := h.tontineUsecase.ListTontines(c.Request.Context(), filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	paginated(c, items, total, page)
}

// ListMyTontines lists the tontines the caller owns or belongs to
// GET /api/v1/tontines/mine
func (h *TontineHandler) ListMyTontines(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	filter, ok := tontineFilter(c)
	if !ok {
		return
	}
	page := pageParams(c)

	items, total, err := h.tontineUsecase.ListMyTontines(c.Request.Context(), actor, filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	paginated(c, items, total, page)
}

// GetTontine returns a tontine with its participants
// GET /api/v1/tontines/:id
func (h *TontineHandler) GetTontine(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "tontine")
	if !ok {
		return
	}

	detail, err := h.tontineUsecase.GetTontine(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tontine": detail})
}

// ListParticipants lists the active participants of a tontine
// GET /api/v1/tontines/:id/participants
func (h *TontineHandler) ListParticipants(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "tontine")
	if !ok {
		return
	}

	parts, err := h.tontineUsecase.ListParticipants(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"participants": parts})
}

// JoinTontine joins a tontine by invite code or id
// POST /api/v1/tontines/join
func (h *TontineHandler) JoinTontine(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input entities.JoinTontineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	part, err := h.tontineUsecase.JoinTontine(c.Request.Context(), actor, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"participation": part})
}

// LeaveTontine removes the caller from a draft tontine
// POST /api/v1/tontines/:id/leave
func (h *TontineHandler) LeaveTontine(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "tontine")
	if !ok {
		return
	}

	if err := h.tontineUsecase.LeaveTontine(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveParticipant lets the owner drop a participant before the schedule exists
// DELETE /api/v1/tontines/:id/participants/:participationId
func (h *TontineHandler) RemoveParticipant(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "tontine")
	if !ok {
		return
	}
	partID, ok := uuidParam(c, "participationId", "participation")
	if !ok {
		return
	}

	if err := h.tontineUsecase.RemoveParticipant(c.Request.Context(), actor, id, partID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CancelTontine cancels a tontine
// POST /api/v1/tontines/:id/cancel
func (h *TontineHandler) CancelTontine(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "tontine")
	if !ok {
		return
	}

	tontine, err := h.tontineUsecase.CancelTontine(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tontine": tontine})
}
