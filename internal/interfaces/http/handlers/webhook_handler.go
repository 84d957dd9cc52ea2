package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/interfaces/http/response"
)

// WebhookSecretHeader carries the shared secret configured with the payment provider
const WebhookSecretHeader = "X-Webhook-Secret"

type WebhookService interface {
	ProcessPaymentEvent(ctx context.Context, input *entities.PaymentWebhookInput) error
}

// WebhookHandler handles payment provider callbacks
type WebhookHandler struct {
	webhookUsecase WebhookService
	secret         string
}

// NewWebhookHandler creates a new webhook handler. An empty secret disables the check.
func NewWebhookHandler(webhookUsecase WebhookService, secret string) *WebhookHandler {
	return &WebhookHandler{webhookUsecase: webhookUsecase, secret: secret}
}

// HandlePaymentWebhook applies a provider payment event
// POST /api/v1/webhooks/payments
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	if h.secret != "" && subtle.ConstantTimeCompare([]byte(c.GetHeader(WebhookSecretHeader)), []byte(h.secret)) != 1 {
		response.Error(c, domainerrors.Unauthorized("Invalid webhook secret"))
		return
	}

	var input entities.PaymentWebhookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	if err := h.webhookUsecase.ProcessPaymentEvent(c.Request.Context(), &input); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"received": true})
}
