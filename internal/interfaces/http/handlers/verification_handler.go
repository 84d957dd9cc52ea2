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

type VerificationService interface {
	SubmitVerification(ctx context.Context, actor usecases.Actor, input *entities.SubmitVerificationInput) (*entities.IdentityVerification, error)
	ReviewVerification(ctx context.Context, actor usecases.Actor, id uuid.UUID, input *entities.ReviewVerificationInput) (*entities.IdentityVerification, error)
	GetMyVerification(ctx context.Context, actor usecases.Actor) (*entities.IdentityVerification, error)
	ListVerifications(ctx context.Context, status entities.VerificationStatus, page utils.PaginationParams) ([]*entities.IdentityVerification, int64, error)
}

// VerificationHandler handles identity verification endpoints
type VerificationHandler struct {
	verificationUsecase VerificationService
}

func NewVerificationHandler(verificationUsecase VerificationService) *VerificationHandler {
	return &VerificationHandler{verificationUsecase: verificationUsecase}
}

// SubmitVerification files an identity document for review
// POST /api/v1/verifications
func (h *VerificationHandler) SubmitVerification(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input entities.SubmitVerificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	v, err := h.verificationUsecase.SubmitVerification(c.Request.Context(), actor, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"verification": v})
}

// GetMyVerification returns the caller's latest verification request
// GET /api/v1/verifications/me
func (h *VerificationHandler) GetMyVerification(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	v, err := h.verificationUsecase.GetMyVerification(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verification": v})
}

// ListVerifications lists verification requests for review
// GET /api/v1/admin/verifications
func (h *VerificationHandler) ListVerifications(c *gin.Context) {
	status, ok := enumQuery(c, "status",
		entities.VerificationPending,
		entities.VerificationApproved,
		entities.VerificationRejected,
	)
	if !ok {
		return
	}
	page := pageParams(c)

	items, total, err := h.verificationUsecase.ListVerifications(c.Request.Context(), status, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	paginated(c, items, total, page)
}

// ReviewVerification approves or rejects a pending request
// POST /api/v1/admin/verifications/:id/review
func (h *VerificationHandler) ReviewVerification(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "verification")
	if !ok {
		return
	}

	var input entities.ReviewVerificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	v, err := h.verificationUsecase.ReviewVerification(c.Request.Context(), actor, id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verification": v})
}
