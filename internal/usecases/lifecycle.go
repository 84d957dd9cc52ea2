package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/domain/repositories"
	"tontine.backend/pkg/logger"
	"tontine.backend/pkg/metrics"
)

var paymentTransitions = map[entities.PaymentStatus][]entities.PaymentStatus{
	entities.PaymentStatusPending: {entities.PaymentStatusPaid, entities.PaymentStatusFailed},
}

var roundTransitions = map[entities.RoundStatus][]entities.RoundStatus{
	entities.RoundStatusPending:    {entities.RoundStatusCollecting},
	entities.RoundStatusCollecting: {entities.RoundStatusCompleted},
}

// CanTransitionPayment reports whether a payment may move from one status to another.
// PAID and FAILED are terminal.
func CanTransitionPayment(from, to entities.PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionRound reports whether a round may move from one status to another
func CanTransitionRound(from, to entities.RoundStatus) bool {
	for _, next := range roundTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// EffectivePayments drops failed payments that were superseded by a replacement
func EffectivePayments(payments []*entities.Payment) []*entities.Payment {
	out := make([]*entities.Payment, 0, len(payments))
	for _, p := range payments {
		if p.IsEffective() {
			out = append(out, p)
		}
	}
	return out
}

// IsRoundSettled reports whether every effective payment of a round is paid
func IsRoundSettled(payments []*entities.Payment) bool {
	effective := EffectivePayments(payments)
	if len(effective) == 0 {
		return false
	}
	for _, p := range effective {
		if p.Status != entities.PaymentStatusPaid {
			return false
		}
	}
	return true
}

// ApplyPaymentToRound adds a newly paid payment to the round's collected amount
func ApplyPaymentToRound(round *entities.Round, payment *entities.Payment) {
	round.CollectedAmount = round.CollectedAmount.Add(payment.Amount)
}

// OpenRound moves a pending round into collection
func OpenRound(round *entities.Round, now time.Time) error {
	if !CanTransitionRound(round.Status, entities.RoundStatusCollecting) {
		return fmt.Errorf("open round %d from %s: %w", round.Number, round.Status, domainerrors.ErrInvalidTransition)
	}
	round.Status = entities.RoundStatusCollecting
	round.UpdatedAt = now
	return nil
}

// CompleteRound closes a collecting round and pays the collected amount out to the winner
func CompleteRound(round *entities.Round, now time.Time, forced bool, note string) error {
	if !CanTransitionRound(round.Status, entities.RoundStatusCompleted) {
		return fmt.Errorf("complete round %d from %s: %w", round.Number, round.Status, domainerrors.ErrInvalidTransition)
	}
	round.Status = entities.RoundStatusCompleted
	round.DistributedAmount = round.CollectedAmount
	round.CompletedAt = null.TimeFrom(now)
	round.ForceCompleted = forced
	if note != "" {
		round.CompletionNote = null.StringFrom(note)
	}
	return nil
}

// settlement closes rounds and tontines. It is shared by the payment and round usecases
// and always runs inside a transaction holding the tontine lock.
type settlement struct {
	tontineRepo       repositories.TontineRepository
	participationRepo repositories.ParticipationRepository
	roundRepo         repositories.RoundRepository
	events            EventPublisher
}

func (s *settlement) completeRound(ctx context.Context, t *entities.Tontine, round *entities.Round, forced bool, note string) error {
	now := nowFunc()
	if err := CompleteRound(round, now, forced, note); err != nil {
		return err
	}
	if err := s.roundRepo.Update(ctx, round); err != nil {
		return err
	}
	metrics.RoundCompleted()

	parts, err := s.participationRepo.ListByTontine(ctx, t.ID, true)
	if err != nil {
		return err
	}
	winner, err := s.participationRepo.GetByID(ctx, round.WinnerParticipationID)
	if err != nil {
		return err
	}
	round.Winner = winner

	logger.Info(ctx, "Round completed",
		zap.String("tontine_id", t.ID.String()),
		zap.Int("round", round.Number),
		zap.String("distributed", round.DistributedAmount.StringFixed(2)),
		zap.Bool("forced", forced),
	)
	if err := publish(ctx, s.events, entities.DomainEvent{
		Type:       entities.EventRoundCompleted,
		Tontine:    t,
		Round:      round,
		Recipients: accountIDs(parts),
		Subject:    winner.AccountID,
	}); err != nil {
		return err
	}

	rounds, err := s.roundRepo.ListByTontine(ctx, t.ID)
	if err != nil {
		return err
	}
	if entities.DeriveTontineStatus(t.Status, rounds) != entities.TontineStatusCompleted {
		return nil
	}

	t.Status = entities.TontineStatusCompleted
	if !t.EndDate.Valid {
		t.EndDate = null.TimeFrom(now)
	}
	if err := s.tontineRepo.Update(ctx, t); err != nil {
		return err
	}
	logger.Info(ctx, "Tontine completed", zap.String("tontine_id", t.ID.String()))
	return publish(ctx, s.events, entities.DomainEvent{
		Type:       entities.EventTontineCompleted,
		Tontine:    t,
		Recipients: accountIDs(parts),
	})
}
