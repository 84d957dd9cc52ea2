package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
)

func TestCanTransitionPayment(t *testing.T) {
	tests := []struct {
		from, to entities.PaymentStatus
		want     bool
	}{
		{entities.PaymentStatusPending, entities.PaymentStatusPaid, true},
		{entities.PaymentStatusPending, entities.PaymentStatusFailed, true},
		{entities.PaymentStatusPaid, entities.PaymentStatusFailed, false},
		{entities.PaymentStatusPaid, entities.PaymentStatusPending, false},
		{entities.PaymentStatusFailed, entities.PaymentStatusPaid, false},
		{entities.PaymentStatusFailed, entities.PaymentStatusPending, false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, CanTransitionPayment(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCanTransitionRound(t *testing.T) {
	require.True(t, CanTransitionRound(entities.RoundStatusPending, entities.RoundStatusCollecting))
	require.True(t, CanTransitionRound(entities.RoundStatusCollecting, entities.RoundStatusCompleted))
	require.False(t, CanTransitionRound(entities.RoundStatusPending, entities.RoundStatusCompleted))
	require.False(t, CanTransitionRound(entities.RoundStatusCompleted, entities.RoundStatusCollecting))
	require.False(t, CanTransitionRound(entities.RoundStatusCollecting, entities.RoundStatusPending))
}

func TestIsRoundSettled(t *testing.T) {
	replacement := uuid.New()
	paid := &entities.Payment{Status: entities.PaymentStatusPaid}
	pending := &entities.Payment{Status: entities.PaymentStatusPending}
	failed := &entities.Payment{Status: entities.PaymentStatusFailed}
	superseded := &entities.Payment{Status: entities.PaymentStatusFailed, ReplacedByPaymentID: &replacement}

	require.False(t, IsRoundSettled(nil))
	require.True(t, IsRoundSettled([]*entities.Payment{paid}))
	require.False(t, IsRoundSettled([]*entities.Payment{paid, pending}))
	require.False(t, IsRoundSettled([]*entities.Payment{paid, failed}))
	require.True(t, IsRoundSettled([]*entities.Payment{paid, superseded}))
	require.False(t, IsRoundSettled([]*entities.Payment{superseded}))
	require.Len(t, EffectivePayments([]*entities.Payment{paid, superseded, failed}), 2)
}

func TestOpenAndCompleteRound(t *testing.T) {
	now := time.Now()
	round := &entities.Round{Number: 1, Status: entities.RoundStatusPending, CollectedAmount: decimal.Zero}

	err := CompleteRound(round, now, false, "")
	require.ErrorIs(t, err, domainerrors.ErrInvalidTransition)

	require.NoError(t, OpenRound(round, now))
	require.Equal(t, entities.RoundStatusCollecting, round.Status)
	require.ErrorIs(t, OpenRound(round, now), domainerrors.ErrInvalidTransition)

	ApplyPaymentToRound(round, &entities.Payment{Amount: decimal.RequireFromString("2500.50")})
	ApplyPaymentToRound(round, &entities.Payment{Amount: decimal.NewFromInt(2500)})

	require.NoError(t, CompleteRound(round, now, true, "settled in cash"))
	require.Equal(t, entities.RoundStatusCompleted, round.Status)
	require.True(t, round.DistributedAmount.Equal(decimal.RequireFromString("5000.50")))
	require.True(t, round.ForceCompleted)
	require.Equal(t, "settled in cash", round.CompletionNote.String)
	require.True(t, round.CompletedAt.Time.Equal(now))
}

func TestBuildSchedule(t *testing.T) {
	start := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
	tontine := &entities.Tontine{
		ID:                uuid.New(),
		AmountPerRound:    decimal.NewFromInt(5000),
		Frequency:         entities.FrequencyMonthly,
		FrequencyInterval: 1,
		StartDate:         start,
	}
	parts := []*entities.Participation{
		{ID: uuid.New(), AccountID: uuid.New(), IsActive: true},
		{ID: uuid.New(), AccountID: uuid.New(), IsActive: true},
		{ID: uuid.New(), AccountID: uuid.New(), IsActive: true},
	}
	tontine.RecomputeTotal(len(parts))

	rounds, payments := BuildSchedule(tontine, parts, 4, start)
	require.Len(t, rounds, 4)
	require.Len(t, payments, 12)

	require.Equal(t, parts[0].ID, rounds[0].WinnerParticipationID)
	require.Equal(t, parts[2].ID, rounds[2].WinnerParticipationID)
	require.Equal(t, parts[0].ID, rounds[3].WinnerParticipationID)
	require.True(t, rounds[0].CollectionStartDate.Equal(start))
	require.True(t, rounds[0].DueDate.Equal(rounds[1].CollectionStartDate))
	require.True(t, rounds[1].ExpectedAmount.Equal(decimal.NewFromInt(15000)))

	for i, p := range payments {
		round := rounds[i/3]
		require.Equal(t, round.ID, p.RoundID)
		require.Equal(t, parts[i%3].ID, p.ParticipationID)
		require.True(t, p.DueDate.Equal(round.DueDate))
		require.True(t, p.Amount.Equal(decimal.NewFromInt(5000)))
		require.Equal(t, entities.PaymentOriginScheduled, p.Origin)
	}

	rounds, payments = BuildSchedule(tontine, nil, 3, start)
	require.Nil(t, rounds)
	require.Nil(t, payments)
}

func scheduled(statuses ...entities.RoundStatus) ([]*entities.Round, []uuid.UUID) {
	rounds := make([]*entities.Round, 0, len(statuses))
	winners := make([]uuid.UUID, 0, len(statuses))
	for i, s := range statuses {
		w := uuid.New()
		winners = append(winners, w)
		rounds = append(rounds, &entities.Round{ID: uuid.New(), Number: i + 1, Status: s, WinnerParticipationID: w})
	}
	return rounds, winners
}

func TestPlanReorder_LocksNextRoundEvenWhenPending(t *testing.T) {
	rounds, w := scheduled(entities.RoundStatusCompleted, entities.RoundStatusPending, entities.RoundStatusPending, entities.RoundStatusPending)

	_, err := PlanReorder(rounds, []uuid.UUID{w[1], w[3], w[2]})
	require.ErrorIs(t, err, domainerrors.ErrConflict)

	plan, err := PlanReorder(rounds, []uuid.UUID{w[3], w[2]})
	require.NoError(t, err)
	require.Equal(t, map[uuid.UUID]uuid.UUID{rounds[2].ID: w[3], rounds[3].ID: w[2]}, plan)

	positions := winnerPositions(rounds, plan)
	require.Equal(t, map[uuid.UUID]int{w[0]: 1, w[1]: 2, w[3]: 3, w[2]: 4}, positions)
}

func TestPlanReorder_NothingUpcoming(t *testing.T) {
	rounds, w := scheduled(entities.RoundStatusCompleted, entities.RoundStatusCollecting)
	_, err := PlanReorder(rounds, []uuid.UUID{w[1]})
	require.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestPlanReorder_RepeatedWinners(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	rounds := []*entities.Round{
		{ID: uuid.New(), Number: 1, Status: entities.RoundStatusCollecting, WinnerParticipationID: a},
		{ID: uuid.New(), Number: 2, Status: entities.RoundStatusPending, WinnerParticipationID: b},
		{ID: uuid.New(), Number: 3, Status: entities.RoundStatusPending, WinnerParticipationID: a},
		{ID: uuid.New(), Number: 4, Status: entities.RoundStatusPending, WinnerParticipationID: b},
	}

	plan, err := PlanReorder(rounds, []uuid.UUID{a, b, b})
	require.NoError(t, err)
	require.Equal(t, a, plan[rounds[1].ID])
	require.Equal(t, b, plan[rounds[2].ID])

	_, err = PlanReorder(rounds, []uuid.UUID{a, a, b})
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestPublishSetsOccurredAt(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	restore := SetNow(func() time.Time { return fixed })
	defer restore()

	pub := &capturePublisher{}
	require.NoError(t, publish(context.Background(), pub, entities.DomainEvent{Type: entities.EventTontineStarted}))
	require.Len(t, pub.events, 1)
	require.True(t, pub.events[0].OccurredAt.Equal(fixed))

	require.NoError(t, publish(context.Background(), nil, entities.DomainEvent{Type: entities.EventTontineStarted}))
}

type capturePublisher struct {
	events []entities.DomainEvent
}

func (p *capturePublisher) Publish(_ context.Context, event entities.DomainEvent) error {
	p.events = append(p.events, event)
	return nil
}
