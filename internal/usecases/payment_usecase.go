package usecases

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/domain/repositories"
	"tontine.backend/pkg/logger"
	"tontine.backend/pkg/metrics"
	"tontine.backend/pkg/utils"
)

// PaymentUsecase drives contribution payments through their lifecycle
type PaymentUsecase struct {
	tontineRepo       repositories.TontineRepository
	participationRepo repositories.ParticipationRepository
	roundRepo         repositories.RoundRepository
	paymentRepo       repositories.PaymentRepository
	uow               repositories.UnitOfWork
	events            EventPublisher
	settle            *settlement
}

// NewPaymentUsecase creates a new payment usecase
func NewPaymentUsecase(
	tontineRepo repositories.TontineRepository,
	participationRepo repositories.ParticipationRepository,
	roundRepo repositories.RoundRepository,
	paymentRepo repositories.PaymentRepository,
	uow repositories.UnitOfWork,
	events EventPublisher,
) *PaymentUsecase {
	return &PaymentUsecase{
		tontineRepo:       tontineRepo,
		participationRepo: participationRepo,
		roundRepo:         roundRepo,
		paymentRepo:       paymentRepo,
		uow:               uow,
		events:            events,
		settle: &settlement{
			tontineRepo:       tontineRepo,
			participationRepo: participationRepo,
			roundRepo:         roundRepo,
			events:            events,
		},
	}
}

// ConfirmPayment marks a pending payment as paid. Confirming a paid payment again is a no-op.
func (u *PaymentUsecase) ConfirmPayment(ctx context.Context, paymentID uuid.UUID, input *entities.ConfirmPaymentInput) (*entities.Payment, error) {
	candidate, err := u.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	var payment *entities.Payment
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		tontine, err := u.tontineRepo.GetByID(lockCtx, candidate.TontineID)
		if err != nil {
			return err
		}
		payment, err = u.paymentRepo.GetByID(lockCtx, paymentID)
		if err != nil {
			return err
		}
		return u.confirm(lockCtx, tontine, payment, input)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (u *PaymentUsecase) confirm(ctx context.Context, tontine *entities.Tontine, payment *entities.Payment, input *entities.ConfirmPaymentInput) error {
	if payment.Status == entities.PaymentStatusPaid {
		return nil
	}
	if !CanTransitionPayment(payment.Status, entities.PaymentStatusPaid) {
		return domainerrors.StateConflict("a failed payment cannot be confirmed; record a replacement instead")
	}
	if tontine.Status != entities.TontineStatusActive {
		return domainerrors.StateConflict("tontine is not active")
	}
	round, err := u.roundRepo.GetByID(ctx, payment.RoundID)
	if err != nil {
		return err
	}
	if round.Status != entities.RoundStatusCollecting {
		return domainerrors.StateConflict("round is not collecting payments")
	}

	payment.Status = entities.PaymentStatusPaid
	payment.PaidAt = null.TimeFrom(nowFunc())
	if m := strings.TrimSpace(input.Method); m != "" {
		payment.Method = null.StringFrom(m)
	}
	if ref := strings.TrimSpace(input.TransactionRef); ref != "" {
		payment.TransactionRef = null.StringFrom(ref)
	}
	if err := u.paymentRepo.Update(ctx, payment); err != nil {
		return err
	}

	ApplyPaymentToRound(round, payment)
	if err := u.roundRepo.Update(ctx, round); err != nil {
		return err
	}

	source := input.Source
	if source == "" {
		source = entities.ConfirmationProvider
	}
	metrics.PaymentConfirmed(string(source))
	logger.Info(ctx, "Payment confirmed",
		zap.String("payment_id", payment.ID.String()),
		zap.String("round_id", round.ID.String()),
		zap.String("source", string(source)),
		zap.String("collected", round.CollectedAmount.StringFixed(2)),
	)
	if err := publish(ctx, u.events, entities.DomainEvent{
		Type:       entities.EventPaymentConfirmed,
		Tontine:    tontine,
		Round:      round,
		Payment:    payment,
		Recipients: []uuid.UUID{payment.AccountID},
		Subject:    payment.AccountID,
	}); err != nil {
		return err
	}

	payments, err := u.paymentRepo.ListByRound(ctx, round.ID)
	if err != nil {
		return err
	}
	if !IsRoundSettled(payments) {
		return nil
	}
	return u.settle.completeRound(ctx, tontine, round, false, "")
}

// FailPayment marks a pending payment as failed. Failing a failed payment again is a no-op.
func (u *PaymentUsecase) FailPayment(ctx context.Context, paymentID uuid.UUID, input *entities.FailPaymentInput) (*entities.Payment, error) {
	candidate, err := u.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	var payment *entities.Payment
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		tontine, err := u.tontineRepo.GetByID(lockCtx, candidate.TontineID)
		if err != nil {
			return err
		}
		payment, err = u.paymentRepo.GetByID(lockCtx, paymentID)
		if err != nil {
			return err
		}
		if payment.Status == entities.PaymentStatusFailed {
			return nil
		}
		if !CanTransitionPayment(payment.Status, entities.PaymentStatusFailed) {
			return domainerrors.StateConflict("a paid payment cannot fail")
		}

		payment.Status = entities.PaymentStatusFailed
		if reason := strings.TrimSpace(input.Reason); reason != "" {
			payment.FailureReason = null.StringFrom(reason)
		}
		if err := u.paymentRepo.Update(lockCtx, payment); err != nil {
			return err
		}
		metrics.PaymentFailed()
		return publish(lockCtx, u.events, entities.DomainEvent{
			Type:       entities.EventPaymentFailed,
			Tontine:    tontine,
			Payment:    payment,
			Recipients: []uuid.UUID{payment.AccountID},
			Subject:    payment.AccountID,
			Message:    payment.FailureReason.String,
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Warn(ctx, "Payment failed",
		zap.String("payment_id", paymentID.String()),
		zap.String("reason", input.Reason),
	)
	return payment, nil
}

// RecordManualPayment settles an active participant's contribution for a round on their
// behalf. A pending payment is confirmed at its scheduled amount; a failed one is
// superseded by a new confirmed payment, which may carry an overridden amount.
func (u *PaymentUsecase) RecordManualPayment(ctx context.Context, actor Actor, input *entities.ManualPaymentInput) (*entities.Payment, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("administrator access required")
	}
	roundID, err := uuid.Parse(input.RoundID)
	if err != nil {
		return nil, domainerrors.Validation("roundId is not a valid id")
	}
	participationID, err := uuid.Parse(input.ParticipationID)
	if err != nil {
		return nil, domainerrors.Validation("participationId is not a valid id")
	}
	var override *decimal.Decimal
	if strings.TrimSpace(input.Amount) != "" {
		amount, err := utils.ParsePositiveAmount(input.Amount)
		if err != nil {
			return nil, domainerrors.Validation("amount must be a positive amount")
		}
		override = &amount
	}

	candidate, err := u.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return nil, err
	}

	confirmInput := &entities.ConfirmPaymentInput{
		Method:         input.Method,
		TransactionRef: input.TransactionRef,
		Source:         entities.ConfirmationAdmin,
	}

	var payment *entities.Payment
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		tontine, err := u.tontineRepo.GetByID(lockCtx, candidate.TontineID)
		if err != nil {
			return err
		}
		part, err := u.participationRepo.GetByID(lockCtx, participationID)
		if err != nil {
			return err
		}
		if part.TontineID != tontine.ID {
			return domainerrors.NotFound("participation not found")
		}
		if !part.IsActive {
			return domainerrors.StateConflict("participant has left the tontine")
		}
		payments, err := u.paymentRepo.ListByRound(lockCtx, roundID)
		if err != nil {
			return err
		}

		var current *entities.Payment
		for _, p := range EffectivePayments(payments) {
			if p.ParticipationID == participationID {
				current = p
			}
		}

		switch {
		case current == nil:
			return domainerrors.NotFound("no contribution is scheduled for this participant in the round")
		case current.Status == entities.PaymentStatusPaid:
			return domainerrors.StateConflict("payment is already recorded for this round")
		case current.Status == entities.PaymentStatusPending:
			if override != nil && !override.Equal(current.Amount) {
				return domainerrors.StateConflict("a scheduled payment amount cannot be changed; fail it and record a replacement")
			}
			payment = current
		default:
			amount := current.Amount
			if override != nil {
				amount = *override
			}
			payment = &entities.Payment{
				ID:                utils.GenerateUUIDv7(),
				RoundID:           roundID,
				TontineID:         tontine.ID,
				ParticipationID:   part.ID,
				AccountID:         part.AccountID,
				Amount:            amount,
				Status:            entities.PaymentStatusPending,
				DueDate:           candidate.DueDate,
				Origin:            entities.PaymentOriginManual,
				ReplacesPaymentID: uuidPtr(current.ID),
				CreatedAt:         nowFunc(),
				UpdatedAt:         nowFunc(),
			}
			if err := u.paymentRepo.Create(lockCtx, payment); err != nil {
				return err
			}
			current.ReplacedByPaymentID = uuidPtr(payment.ID)
			if err := u.paymentRepo.Update(lockCtx, current); err != nil {
				return err
			}
		}
		return u.confirm(lockCtx, tontine, payment, confirmInput)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Manual payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("actor_id", actor.AccountID.String()),
	)
	return payment, nil
}

// ReplaceFailedPayment issues a fresh pending payment for the same participant and round
func (u *PaymentUsecase) ReplaceFailedPayment(ctx context.Context, actor Actor, paymentID uuid.UUID) (*entities.Payment, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("administrator access required")
	}
	candidate, err := u.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	var replacement *entities.Payment
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		if _, err := u.tontineRepo.GetByID(lockCtx, candidate.TontineID); err != nil {
			return err
		}
		failed, err := u.paymentRepo.GetByID(lockCtx, paymentID)
		if err != nil {
			return err
		}
		if failed.Status != entities.PaymentStatusFailed {
			return domainerrors.StateConflict("only a failed payment can be replaced")
		}
		if failed.ReplacedByPaymentID != nil {
			return domainerrors.StateConflict("payment has already been replaced")
		}
		round, err := u.roundRepo.GetByID(lockCtx, failed.RoundID)
		if err != nil {
			return err
		}
		if round.Status == entities.RoundStatusCompleted {
			return domainerrors.StateConflict("round is already completed")
		}

		now := nowFunc()
		replacement = &entities.Payment{
			ID:                utils.GenerateUUIDv7(),
			RoundID:           failed.RoundID,
			TontineID:         failed.TontineID,
			ParticipationID:   failed.ParticipationID,
			AccountID:         failed.AccountID,
			Amount:            failed.Amount,
			Status:            entities.PaymentStatusPending,
			DueDate:           failed.DueDate,
			Origin:            entities.PaymentOriginReplacement,
			ReplacesPaymentID: uuidPtr(failed.ID),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := u.paymentRepo.Create(lockCtx, replacement); err != nil {
			return err
		}
		failed.ReplacedByPaymentID = uuidPtr(replacement.ID)
		return u.paymentRepo.Update(lockCtx, failed)
	})
	if err != nil {
		return nil, err
	}
	return replacement, nil
}

// ListMyPayments lists the actor's payments
func (u *PaymentUsecase) ListMyPayments(ctx context.Context, actor Actor, status entities.PaymentStatus, page utils.PaginationParams) ([]*entities.Payment, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, domainerrors.Validation("status must be PENDING, PAID or FAILED")
	}
	return u.paymentRepo.List(ctx, entities.PaymentFilter{Status: status, AccountID: &actor.AccountID}, page)
}

// ListRoundPayments lists the payments of a round for its members and admins
func (u *PaymentUsecase) ListRoundPayments(ctx context.Context, actor Actor, roundID uuid.UUID) ([]*entities.Payment, error) {
	round, err := u.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		tontine, err := u.tontineRepo.GetByID(ctx, round.TontineID)
		if err != nil {
			return nil, err
		}
		parts, err := u.participationRepo.ListByTontine(ctx, tontine.ID, false)
		if err != nil {
			return nil, err
		}
		if !isMember(tontine, parts, actor.AccountID) {
			return nil, domainerrors.NotFound("round not found")
		}
	}
	return u.paymentRepo.ListByRound(ctx, roundID)
}

// ListPayments lists payments across all tontines for administrators
func (u *PaymentUsecase) ListPayments(ctx context.Context, filter entities.PaymentFilter, page utils.PaginationParams) ([]*entities.Payment, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domainerrors.Validation("status must be PENDING, PAID or FAILED")
	}
	return u.paymentRepo.List(ctx, filter, page)
}
