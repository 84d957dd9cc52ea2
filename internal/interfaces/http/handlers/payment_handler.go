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

type PaymentService interface {
	ConfirmPayment(ctx context.Context, paymentID uuid.UUID, input *entities.ConfirmPaymentInput) (*entities.Payment, error)
	FailPayment(ctx context.Context, paymentID uuid.UUID, input *entities.FailPaymentInput) (*entities.Payment, error)
	RecordManualPayment(ctx context.Context, actor usecases.Actor, input *entities.ManualPaymentInput) (*entities.Payment, error)
	ReplaceFailedPayment(ctx context.Context, actor usecases.Actor, paymentID uuid.UUID) (*entities.Payment, error)
	ListMyPayments(ctx context.Context, actor usecases.Actor, status entities.PaymentStatus, page utils.PaginationParams) ([]*entities.Payment, int64, error)
	ListRoundPayments(ctx context.Context, actor usecases.Actor, roundID uuid.UUID) ([]*entities.Payment, error)
	ListPayments(ctx context.Context, filter entities.PaymentFilter, page utils.PaginationParams) ([]*entities.Payment, int64, error)
}

var paymentStatuses = []entities.PaymentStatus{
	entities.PaymentStatusPending,
	entities.PaymentStatusPaid,
	entities.PaymentStatusFailed,
}

// PaymentHandler handles contribution endpoints
type PaymentHandler struct {
	paymentUsecase PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentUsecase PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUsecase: paymentUsecase}
}

// ListMyPayments lists the caller's contributions
// GET /api/v1/payments
func (h *PaymentHandler) ListMyPayments(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	status, ok := enumQuery(c, "status", paymentStatuses...)
	if !ok {
		return
	}
	page := pageParams(c)

	payments, total, err := h.paymentUsecase.ListMyPayments(c.Request.Context(), actor, status, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	paginated(c, payments, total, page)
}

// ListRoundPayments lists the contributions of one round
// GET /api/v1/rounds/:id/payments
func (h *PaymentHandler) ListRoundPayments(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "round")
	if !ok {
		return
	}

	payments, err := h.paymentUsecase.ListRoundPayments(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": payments})
}

// ListPayments lists every payment for administrators
// GET /api/v1/admin/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	status, ok := enumQuery(c, "status", paymentStatuses...)
	if !ok {
		return
	}
	filter := entities.PaymentFilter{Status: status, Search: c.Query("search")}
	for _, q := range []struct {
		name string
		dst  **uuid.UUID
	}{{"tontineId", &filter.TontineID}, {"roundId", &filter.RoundID}, {"accountId", &filter.AccountID}} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, domainerrors.Validation("invalid "+q.name+" filter"))
			return
		}
		*q.dst = &id
	}
	page := pageParams(c)

	payments, total, err := h.paymentUsecase.ListPayments(c.Request.Context(), filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	paginated(c, payments, total, page)
}

// ConfirmPayment marks a pending payment as paid
// POST /api/v1/admin/payments/:id/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	id, ok := uuidParam(c, "id", "payment")
	if !ok {
		return
	}

	var input entities.ConfirmPaymentInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			response.Error(c, domainerrors.Validation(err.Error()))
			return
		}
	}
	input.Source = entities.ConfirmationAdmin

	payment, err := h.paymentUsecase.ConfirmPayment(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": payment})
}

// FailPayment marks a pending payment as failed
// POST /api/v1/admin/payments/:id/fail
func (h *PaymentHandler) FailPayment(c *gin.Context) {
	id, ok := uuidParam(c, "id", "payment")
	if !ok {
		return
	}

	var input entities.FailPaymentInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			response.Error(c, domainerrors.Validation(err.Error()))
			return
		}
	}

	payment, err := h.paymentUsecase.FailPayment(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": payment})
}

// ReplaceFailedPayment opens a new pending payment for a failed one
// POST /api/v1/admin/payments/:id/replace
func (h *PaymentHandler) ReplaceFailedPayment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "payment")
	if !ok {
		return
	}

	payment, err := h.paymentUsecase.ReplaceFailedPayment(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"payment": payment})
}

// RecordManualPayment records a contribution collected outside the provider
// POST /api/v1/admin/payments/manual
func (h *PaymentHandler) RecordManualPayment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input entities.ManualPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	payment, err := h.paymentUsecase.RecordManualPayment(c.Request.Context(), actor, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"payment": payment})
}
