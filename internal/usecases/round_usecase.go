package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/domain/repositories"
	"tontine.backend/pkg/logger"
	"tontine.backend/pkg/metrics"
	"tontine.backend/pkg/utils"
)

// RoundUsecase generates and drives the round schedule of tontines
type RoundUsecase struct {
	tontineRepo       repositories.TontineRepository
	participationRepo repositories.ParticipationRepository
	roundRepo         repositories.RoundRepository
	paymentRepo       repositories.PaymentRepository
	uow               repositories.UnitOfWork
	events            EventPublisher
	settle            *settlement
}

// NewRoundUsecase creates a new round usecase
func NewRoundUsecase(
	tontineRepo repositories.TontineRepository,
	participationRepo repositories.ParticipationRepository,
	roundRepo repositories.RoundRepository,
	paymentRepo repositories.PaymentRepository,
	uow repositories.UnitOfWork,
	events EventPublisher,
) *RoundUsecase {
	return &RoundUsecase{
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

// GenerateRounds creates the full schedule of a DRAFT tontine and activates it
func (u *RoundUsecase) GenerateRounds(ctx context.Context, actor Actor, tontineID uuid.UUID, input *entities.GenerateRoundsInput) ([]*entities.Round, error) {
	var rounds []*entities.Round
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		tontine, err := u.tontineRepo.GetByID(lockCtx, tontineID)
		if err != nil {
			return err
		}
		if !canManage(actor, tontine) {
			return domainerrors.Forbidden("only the owner or an administrator can generate rounds")
		}
		if tontine.Status != entities.TontineStatusDraft {
			return domainerrors.StateConflict("rounds can only be generated for a draft tontine")
		}
		existing, err := u.roundRepo.ListByTontine(lockCtx, tontine.ID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return domainerrors.StateConflict("rounds have already been generated")
		}

		parts, err := u.participationRepo.ListByTontine(lockCtx, tontine.ID, true)
		if err != nil {
			return err
		}
		if len(parts) < 2 {
			return domainerrors.StateConflict("at least two active participants are required")
		}
		roundCount := len(parts)
		if input != nil && input.RoundCount > 0 {
			roundCount = input.RoundCount
		}
		if roundCount < 2 || roundCount > MaxRoundCount {
			return domainerrors.Validation(fmt.Sprintf("roundCount must be between 2 and %d", MaxRoundCount))
		}

		positions := make(map[uuid.UUID]int)
		for i, p := range parts {
			if p.Position != i+1 {
				positions[p.ID] = i + 1
				p.Position = i + 1
			}
		}
		if err := u.participationRepo.UpdatePositions(lockCtx, positions); err != nil {
			return err
		}

		now := nowFunc()
		tontine.RecomputeTotal(len(parts))
		var payments []*entities.Payment
		rounds, payments = BuildSchedule(tontine, parts, roundCount, now)
		if err := u.roundRepo.CreateBatch(lockCtx, rounds); err != nil {
			return err
		}
		if err := u.paymentRepo.CreateBatch(lockCtx, payments); err != nil {
			return err
		}

		for _, p := range parts {
			p.TotalCommitted = entities.Commitment(tontine.AmountPerRound, roundCount, p.Shares)
			if err := u.participationRepo.Update(lockCtx, p); err != nil {
				return err
			}
		}

		tontine.Status = entities.TontineStatusActive
		if !tontine.EndDate.Valid {
			tontine.EndDate = null.TimeFrom(rounds[len(rounds)-1].DueDate)
		}
		if err := u.tontineRepo.Update(lockCtx, tontine); err != nil {
			return err
		}
		recipients := accountIDs(parts)
		if err := publish(lockCtx, u.events, entities.DomainEvent{
			Type:       entities.EventTontineStarted,
			Tontine:    tontine,
			Recipients: recipients,
		}); err != nil {
			return err
		}

		opened := 0
		for _, r := range rounds {
			if r.CollectionStartDate.After(now) {
				break
			}
			if err := u.openRound(lockCtx, tontine, r, recipients, now); err != nil {
				return err
			}
			opened++
		}
		metrics.RoundsOpened(opened)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Rounds generated",
		zap.String("tontine_id", tontineID.String()),
		zap.Int("rounds", len(rounds)),
	)
	return rounds, nil
}

func (u *RoundUsecase) openRound(ctx context.Context, tontine *entities.Tontine, round *entities.Round, recipients []uuid.UUID, now time.Time) error {
	if err := OpenRound(round, now); err != nil {
		return err
	}
	if err := u.roundRepo.Update(ctx, round); err != nil {
		return err
	}
	return publish(ctx, u.events, entities.DomainEvent{
		Type:       entities.EventRoundStarted,
		Tontine:    tontine,
		Round:      round,
		Recipients: recipients,
	})
}

// ListRounds returns the schedule of a visible tontine with winners and payments
func (u *RoundUsecase) ListRounds(ctx context.Context, actor Actor, tontineID uuid.UUID) ([]*entities.Round, error) {
	tontine, err := u.tontineRepo.GetByID(ctx, tontineID)
	if err != nil {
		return nil, err
	}
	parts, err := u.participationRepo.ListByTontine(ctx, tontineID, false)
	if err != nil {
		return nil, err
	}
	if tontine.IsPrivate && !isMember(tontine, parts, actor.AccountID) && !actor.IsAdmin() {
		return nil, domainerrors.NotFound("tontine not found")
	}

	rounds, err := u.roundRepo.ListByTontine(ctx, tontineID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entities.Participation, len(parts))
	for _, p := range parts {
		byID[p.ID] = p
	}
	for _, r := range rounds {
		r.Winner = byID[r.WinnerParticipationID]
		payments, err := u.paymentRepo.ListByRound(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		r.Payments = payments
	}
	return rounds, nil
}

// OpenDueRounds starts collection on every pending round whose window has opened
func (u *RoundUsecase) OpenDueRounds(ctx context.Context, now time.Time) (int, error) {
	due, err := u.roundRepo.ListDueForCollection(ctx, now)
	if err != nil {
		return 0, err
	}

	opened := 0
	for _, candidate := range due {
		err := u.uow.Do(ctx, func(txCtx context.Context) error {
			lockCtx := u.uow.WithLock(txCtx)
			tontine, err := u.tontineRepo.GetByID(lockCtx, candidate.TontineID)
			if err != nil {
				return err
			}
			if tontine.Status != entities.TontineStatusActive {
				return nil
			}
			round, err := u.roundRepo.GetByID(lockCtx, candidate.ID)
			if err != nil {
				return err
			}
			if round.Status != entities.RoundStatusPending {
				return nil
			}
			parts, err := u.participationRepo.ListByTontine(lockCtx, tontine.ID, true)
			if err != nil {
				return err
			}
			if err := u.openRound(lockCtx, tontine, round, accountIDs(parts), now); err != nil {
				return err
			}
			opened++
			return nil
		})
		if err != nil {
			logger.Error(ctx, "Failed to open round",
				zap.String("round_id", candidate.ID.String()),
				zap.Error(err),
			)
		}
	}
	metrics.RoundsOpened(opened)
	return opened, nil
}

// ReorderWinners re-assigns the winners of upcoming rounds. Winners of collecting and
// completed rounds and of the next round to complete are locked.
func (u *RoundUsecase) ReorderWinners(ctx context.Context, actor Actor, tontineID uuid.UUID, input *entities.ReorderWinnersInput) ([]*entities.Round, error) {
	ordered, err := utils.ParseUUIDs(input.ParticipationIDs)
	if err != nil {
		return nil, domainerrors.Validation("participationIds must be valid ids")
	}

	var rounds []*entities.Round
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		tontine, err := u.tontineRepo.GetByID(lockCtx, tontineID)
		if err != nil {
			return err
		}
		if !canManage(actor, tontine) {
			return domainerrors.Forbidden("only the owner or an administrator can reorder winners")
		}
		if tontine.Status.IsTerminal() {
			return domainerrors.StateConflict("winners of a finished tontine cannot change")
		}
		rounds, err = u.roundRepo.ListByTontine(lockCtx, tontine.ID)
		if err != nil {
			return err
		}
		if len(rounds) == 0 {
			return domainerrors.StateConflict("rounds have not been generated yet")
		}

		plan, err := PlanReorder(rounds, ordered)
		if err != nil {
			return err
		}
		if err := u.roundRepo.UpdateWinners(lockCtx, plan); err != nil {
			return err
		}

		positions := winnerPositions(rounds, plan)
		parts, err := u.participationRepo.ListByTontine(lockCtx, tontine.ID, false)
		if err != nil {
			return err
		}
		next := len(positions) + 1
		for _, p := range parts {
			if _, ok := positions[p.ID]; !ok {
				positions[p.ID] = next
				next++
			}
		}
		if err := u.participationRepo.UpdatePositions(lockCtx, positions); err != nil {
			return err
		}

		for _, r := range rounds {
			if w, ok := plan[r.ID]; ok {
				r.WinnerParticipationID = w
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Winners reordered",
		zap.String("tontine_id", tontineID.String()),
		zap.Int("upcoming", len(ordered)),
	)
	return rounds, nil
}

// ForceCompleteRound closes a collecting round regardless of outstanding payments. Admin only.
func (u *RoundUsecase) ForceCompleteRound(ctx context.Context, actor Actor, roundID uuid.UUID, input *entities.ForceCompleteRoundInput) (*entities.Round, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("administrator access required")
	}
	candidate, err := u.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return nil, err
	}

	var round *entities.Round
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		tontine, err := u.tontineRepo.GetByID(lockCtx, candidate.TontineID)
		if err != nil {
			return err
		}
		round, err = u.roundRepo.GetByID(lockCtx, roundID)
		if err != nil {
			return err
		}
		if round.Status != entities.RoundStatusCollecting {
			return domainerrors.StateConflict(fmt.Sprintf("only a collecting round can be force-completed, round is %s", round.Status))
		}
		return u.settle.completeRound(lockCtx, tontine, round, true, input.Reason)
	})
	if err != nil {
		return nil, err
	}

	logger.Warn(ctx, "Round force-completed",
		zap.String("round_id", roundID.String()),
		zap.String("actor_id", actor.AccountID.String()),
		zap.String("reason", input.Reason),
	)
	return round, nil
}
