package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"tontine.backend/internal/domain/entities"
	"tontine.backend/internal/usecases"
	redispkg "tontine.backend/pkg/redis"
	"tontine.backend/pkg/utils"
)

type testEnv struct {
	store *memStore
	uow   *memUnitOfWork
	pub   *recordingPublisher

	accountRepo      *memAccountRepo
	tontineRepo      *memTontineRepo
	partRepo         *memParticipationRepo
	roundRepo        *memRoundRepo
	paymentRepo      *memPaymentRepo
	notificationRepo *memNotificationRepo
	verificationRepo *memVerificationRepo

	tontines      *usecases.TontineUsecase
	rounds        *usecases.RoundUsecase
	payments      *usecases.PaymentUsecase
	notifications *usecases.NotificationUsecase
	verifications *usecases.VerificationUsecase
	admin         *usecases.AdminUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	env := &testEnv{
		store:            store,
		uow:              &memUnitOfWork{store: store},
		pub:              &recordingPublisher{},
		accountRepo:      &memAccountRepo{s: store},
		tontineRepo:      &memTontineRepo{s: store},
		partRepo:         &memParticipationRepo{s: store},
		roundRepo:        &memRoundRepo{s: store},
		paymentRepo:      &memPaymentRepo{s: store},
		notificationRepo: &memNotificationRepo{s: store},
		verificationRepo: &memVerificationRepo{s: store},
	}
	env.tontines = usecases.NewTontineUsecase(env.tontineRepo, env.partRepo, env.uow, env.pub, usecases.TontineSettings{})
	env.rounds = usecases.NewRoundUsecase(env.tontineRepo, env.partRepo, env.roundRepo, env.paymentRepo, env.uow, env.pub)
	env.payments = usecases.NewPaymentUsecase(env.tontineRepo, env.partRepo, env.roundRepo, env.paymentRepo, env.uow, env.pub)
	env.notifications = usecases.NewNotificationUsecase(env.notificationRepo, env.paymentRepo, nil, usecases.ReminderSettings{})
	env.verifications = usecases.NewVerificationUsecase(env.accountRepo, env.verificationRepo, env.uow, env.pub)
	env.admin = usecases.NewAdminUsecase(env.accountRepo, env.tontineRepo, env.paymentRepo, env.verificationRepo, env.uow, env.pub, nil)
	return env
}

func useMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	prev := redispkg.GetClient()
	redispkg.SetClient(client)
	t.Cleanup(func() {
		redispkg.SetClient(prev)
		_ = client.Close()
		mr.Close()
	})
	return mr
}

func (e *testEnv) seedAccount(t *testing.T, email string, role entities.AccountRole) usecases.Actor {
	t.Helper()
	now := time.Now()
	account := &entities.Account{
		ID:                 utils.GenerateUUIDv7(),
		Email:              email,
		Name:               email,
		PasswordHash:       "hash",
		Role:               role,
		IsActive:           true,
		VerificationStatus: entities.VerificationNotStarted,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, e.accountRepo.Create(context.Background(), account))
	return usecases.Actor{AccountID: account.ID, Role: role}
}

func (e *testEnv) seedUser(t *testing.T, email string) usecases.Actor {
	return e.seedAccount(t, email, entities.AccountRoleUser)
}

func tontineInput(name string) *entities.CreateTontineInput {
	return &entities.CreateTontineInput{
		Name:           name,
		AmountPerRound: "10000",
		Frequency:      entities.FrequencyWeekly,
		StartDate:      time.Now().Add(-time.Hour),
	}
}

func (e *testEnv) createTontine(t *testing.T, owner usecases.Actor, input *entities.CreateTontineInput) *entities.Tontine {
	t.Helper()
	detail, err := e.tontines.CreateTontine(context.Background(), owner, input)
	require.NoError(t, err)
	return detail.Tontine
}

func (e *testEnv) join(t *testing.T, actor usecases.Actor, tontineID uuid.UUID) *entities.Participation {
	t.Helper()
	p, err := e.tontines.JoinTontine(context.Background(), actor, &entities.JoinTontineInput{TontineID: tontineID.String()})
	require.NoError(t, err)
	return p
}

type startedTontine struct {
	owner   usecases.Actor
	members []usecases.Actor
	tontine *entities.Tontine
	parts   []*entities.Participation
	rounds  []*entities.Round
}

// startTontine creates a weekly tontine with the owner plus extra members and generates
// its schedule. Round 1 opens immediately.
func (e *testEnv) startTontine(t *testing.T, extraMembers int) *startedTontine {
	t.Helper()
	ctx := context.Background()
	owner := e.seedUser(t, "owner-"+uuid.NewString()[:8]+"@mail.com")
	tontine := e.createTontine(t, owner, tontineInput("Family Savings"))

	st := &startedTontine{owner: owner}
	for i := 0; i < extraMembers; i++ {
		m := e.seedUser(t, "member-"+uuid.NewString()[:8]+"@mail.com")
		e.join(t, m, tontine.ID)
		st.members = append(st.members, m)
	}

	rounds, err := e.rounds.GenerateRounds(ctx, owner, tontine.ID, nil)
	require.NoError(t, err)
	st.rounds = rounds

	st.tontine, err = e.tontineRepo.GetByID(ctx, tontine.ID)
	require.NoError(t, err)
	st.parts, err = e.partRepo.ListByTontine(ctx, tontine.ID, true)
	require.NoError(t, err)
	return st
}

func (e *testEnv) roundPayments(t *testing.T, roundID uuid.UUID) []*entities.Payment {
	t.Helper()
	payments, err := e.paymentRepo.ListByRound(context.Background(), roundID)
	require.NoError(t, err)
	return payments
}

func (e *testEnv) reloadRound(t *testing.T, id uuid.UUID) *entities.Round {
	t.Helper()
	r, err := e.roundRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return r
}

func (e *testEnv) reloadTontine(t *testing.T, id uuid.UUID) *entities.Tontine {
	t.Helper()
	tt, err := e.tontineRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return tt
}

func adminActor() usecases.Actor {
	return usecases.Actor{AccountID: uuid.New(), Role: entities.AccountRoleAdmin}
}
