package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/pkg/logger"
)

// PaymentSettler is the part of PaymentUsecase the provider webhook drives
type PaymentSettler interface {
	ConfirmPayment(ctx context.Context, paymentID uuid.UUID, input *entities.ConfirmPaymentInput) (*entities.Payment, error)
	FailPayment(ctx context.Context, paymentID uuid.UUID, input *entities.FailPaymentInput) (*entities.Payment, error)
}

// WebhookUsecase handles notifications from the payment provider
type WebhookUsecase struct {
	payments PaymentSettler
}

// NewWebhookUsecase creates a new webhook usecase
func NewWebhookUsecase(payments PaymentSettler) *WebhookUsecase {
	return &WebhookUsecase{payments: payments}
}

// ProcessPaymentEvent applies a provider event. Unknown events are acknowledged and ignored.
func (u *WebhookUsecase) ProcessPaymentEvent(ctx context.Context, input *entities.PaymentWebhookInput) error {
	paymentID, err := uuid.Parse(input.PaymentID)
	if err != nil {
		return domainerrors.Validation("paymentId is not a valid id")
	}

	logger.Info(ctx, "Processing payment provider event",
		zap.String("event", input.Event),
		zap.String("payment_id", input.PaymentID),
	)

	switch input.Event {
	case WebhookPaymentSucceeded:
		_, err = u.payments.ConfirmPayment(ctx, paymentID, &entities.ConfirmPaymentInput{
			Method:         input.Method,
			TransactionRef: input.TransactionRef,
			Source:         entities.ConfirmationProvider,
		})
	case WebhookPaymentFailed:
		_, err = u.payments.FailPayment(ctx, paymentID, &entities.FailPaymentInput{Reason: input.Reason})
	default:
		logger.Warn(ctx, "Ignoring unknown payment provider event", zap.String("event", input.Event))
		return nil
	}

	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			logger.Error(ctx, "Error processing payment provider event", zap.String("event", input.Event), zap.Error(err))
		}
		return err
	}
	return nil
}
