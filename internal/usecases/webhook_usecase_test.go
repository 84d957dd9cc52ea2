package usecases_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/usecases"
)

func TestWebhookUsecase_PaymentSucceeded(t *testing.T) {
	settler := new(MockPaymentSettler)
	uc := usecases.NewWebhookUsecase(settler)
	id := uuid.New()

	settler.On("ConfirmPayment", mock.Anything, id, &entities.ConfirmPaymentInput{
		Method:         "mobile_money",
		TransactionRef: "TX-1",
		Source:         entities.ConfirmationProvider,
	}).Return(&entities.Payment{ID: id}, nil).Once()

	err := uc.ProcessPaymentEvent(context.Background(), &entities.PaymentWebhookInput{
		Event:          usecases.WebhookPaymentSucceeded,
		PaymentID:      id.String(),
		Method:         "mobile_money",
		TransactionRef: "TX-1",
	})
	assert.NoError(t, err)
	settler.AssertExpectations(t)
}

func TestWebhookUsecase_PaymentFailed(t *testing.T) {
	settler := new(MockPaymentSettler)
	uc := usecases.NewWebhookUsecase(settler)
	id := uuid.New()

	settler.On("FailPayment", mock.Anything, id, &entities.FailPaymentInput{Reason: "declined"}).
		Return(nil, domainerrors.ErrNotFound).Once()

	err := uc.ProcessPaymentEvent(context.Background(), &entities.PaymentWebhookInput{
		Event:     usecases.WebhookPaymentFailed,
		PaymentID: id.String(),
		Reason:    "declined",
	})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	settler.AssertExpectations(t)
}

func TestWebhookUsecase_PropagatesConflict(t *testing.T) {
	settler := new(MockPaymentSettler)
	uc := usecases.NewWebhookUsecase(settler)
	id := uuid.New()

	settler.On("ConfirmPayment", mock.Anything, id, mock.Anything).
		Return(nil, domainerrors.StateConflict("round is not collecting payments")).Once()

	err := uc.ProcessPaymentEvent(context.Background(), &entities.PaymentWebhookInput{
		Event:     usecases.WebhookPaymentSucceeded,
		PaymentID: id.String(),
	})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestWebhookUsecase_UnknownEventIgnored(t *testing.T) {
	settler := new(MockPaymentSettler)
	uc := usecases.NewWebhookUsecase(settler)

	err := uc.ProcessPaymentEvent(context.Background(), &entities.PaymentWebhookInput{
		Event:     "payment.refunded",
		PaymentID: uuid.NewString(),
	})
	assert.NoError(t, err)
	settler.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything, mock.Anything)
	settler.AssertNotCalled(t, "FailPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookUsecase_InvalidPaymentID(t *testing.T) {
	uc := usecases.NewWebhookUsecase(new(MockPaymentSettler))

	err := uc.ProcessPaymentEvent(context.Background(), &entities.PaymentWebhookInput{
		Event:     usecases.WebhookPaymentSucceeded,
		PaymentID: "not-a-uuid",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestWebhookUsecase_DrivesPaymentUsecase(t *testing.T) {
	env := newTestEnv(t)
	st := env.startTontine(t, 1)
	uc := usecases.NewWebhookUsecase(env.payments)
	payment := env.roundPayments(t, st.rounds[0].ID)[0]

	err := uc.ProcessPaymentEvent(context.Background(), &entities.PaymentWebhookInput{
		Event:     usecases.WebhookPaymentSucceeded,
		PaymentID: payment.ID.String(),
	})
	assert.NoError(t, err)

	stored, err := env.paymentRepo.GetByID(context.Background(), payment.ID)
	assert.NoError(t, err)
	assert.Equal(t, entities.PaymentStatusPaid, stored.Status)
}
