package usecases

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/pkg/utils"
)

// BuildSchedule lays out roundCount rounds over the tontine's calendar. The winner of
// round k is participations[(k-1) mod n]; every active participation owes one payment
// per round.
func BuildSchedule(t *entities.Tontine, participations []*entities.Participation, roundCount int, now time.Time) ([]*entities.Round, []*entities.Payment) {
	n := len(participations)
	if n == 0 || roundCount <= 0 {
		return nil, nil
	}

	rounds := make([]*entities.Round, 0, roundCount)
	payments := make([]*entities.Payment, 0, roundCount*n)
	for k := 1; k <= roundCount; k++ {
		round := &entities.Round{
			ID:                    utils.GenerateUUIDv7(),
			TontineID:             t.ID,
			Number:                k,
			ExpectedAmount:        t.TotalAmountPerRound,
			CollectedAmount:       decimal.Zero,
			DistributedAmount:     decimal.Zero,
			CollectionStartDate:   t.CollectionStart(k),
			DueDate:               t.RoundDueDate(k),
			Status:                entities.RoundStatusPending,
			WinnerParticipationID: participations[(k-1)%n].ID,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		rounds = append(rounds, round)

		for _, p := range participations {
			payments = append(payments, &entities.Payment{
				ID:              utils.GenerateUUIDv7(),
				RoundID:         round.ID,
				TontineID:       t.ID,
				ParticipationID: p.ID,
				AccountID:       p.AccountID,
				Amount:          t.AmountPerRound,
				Status:          entities.PaymentStatusPending,
				DueDate:         round.DueDate,
				Origin:          entities.PaymentOriginScheduled,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
		}
	}
	return rounds, payments
}

// lockedRounds marks every collecting or completed round plus the first round that is
// not completed yet. Winners of those rounds are final.
func lockedRounds(rounds []*entities.Round) map[uuid.UUID]bool {
	locked := make(map[uuid.UUID]bool, len(rounds))
	firstOpen := true
	for _, r := range rounds {
		if r.IsLocked() {
			locked[r.ID] = true
		}
		if firstOpen && r.Status != entities.RoundStatusCompleted {
			locked[r.ID] = true
			firstOpen = false
		}
	}
	return locked
}

// PlanReorder maps every upcoming round, in ascending number order, to the winner at
// the same index of ordered. rounds must be sorted by number.
func PlanReorder(rounds []*entities.Round, ordered []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	locked := lockedRounds(rounds)

	lockedWinners := make(map[uuid.UUID]bool)
	upcomingWinners := make(map[uuid.UUID]int)
	upcoming := make([]*entities.Round, 0, len(rounds))
	for _, r := range rounds {
		if locked[r.ID] {
			lockedWinners[r.WinnerParticipationID] = true
			continue
		}
		upcoming = append(upcoming, r)
		upcomingWinners[r.WinnerParticipationID]++
	}

	if len(upcoming) == 0 {
		return nil, domainerrors.StateConflict("no upcoming rounds are left to reorder")
	}

	for _, id := range ordered {
		if upcomingWinners[id] == 0 && lockedWinners[id] {
			return nil, domainerrors.StateConflict(fmt.Sprintf("participation %s already won a round that can no longer change", id))
		}
	}

	if len(ordered) != len(upcoming) {
		return nil, domainerrors.Validation(fmt.Sprintf("expected %d participations, got %d", len(upcoming), len(ordered)))
	}
	remaining := make(map[uuid.UUID]int, len(upcomingWinners))
	for id, c := range upcomingWinners {
		remaining[id] = c
	}
	for _, id := range ordered {
		if remaining[id] == 0 {
			return nil, domainerrors.Validation("participation list must be a permutation of the upcoming winners")
		}
		remaining[id]--
	}

	plan := make(map[uuid.UUID]uuid.UUID, len(upcoming))
	for i, r := range upcoming {
		plan[r.ID] = ordered[i]
	}
	return plan, nil
}

// winnerPositions numbers participations by the first round they win
func winnerPositions(rounds []*entities.Round, plan map[uuid.UUID]uuid.UUID) map[uuid.UUID]int {
	positions := make(map[uuid.UUID]int)
	next := 1
	for _, r := range rounds {
		winner := r.WinnerParticipationID
		if w, ok := plan[r.ID]; ok {
			winner = w
		}
		if _, seen := positions[winner]; !seen {
			positions[winner] = next
			next++
		}
	}
	return positions
}
