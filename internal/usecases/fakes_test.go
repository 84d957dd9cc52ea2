package usecases_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/domain/repositories"
	"tontine.backend/pkg/utils"
)

// memStore is an in-memory backing store for every repository. Rows are copied on
// the way in and out so usecases cannot mutate stored state without calling Update.
type memStore struct {
	mu sync.Mutex

	accounts      map[uuid.UUID]entities.Account
	tokens        map[string]memToken
	tontines      map[uuid.UUID]entities.Tontine
	parts         map[uuid.UUID]entities.Participation
	rounds        map[uuid.UUID]entities.Round
	payments      map[uuid.UUID]entities.Payment
	paymentOrder  []uuid.UUID
	notifications []entities.Notification
	verifications map[uuid.UUID]entities.IdentityVerification
}

type memToken struct {
	accountID uuid.UUID
	expiresAt time.Time
	used      bool
}

func newMemStore() *memStore {
	return &memStore{
		accounts:      map[uuid.UUID]entities.Account{},
		tokens:        map[string]memToken{},
		tontines:      map[uuid.UUID]entities.Tontine{},
		parts:         map[uuid.UUID]entities.Participation{},
		rounds:        map[uuid.UUID]entities.Round{},
		payments:      map[uuid.UUID]entities.Payment{},
		verifications: map[uuid.UUID]entities.IdentityVerification{},
	}
}

type memSnapshot struct {
	accounts      map[uuid.UUID]entities.Account
	tokens        map[string]memToken
	tontines      map[uuid.UUID]entities.Tontine
	parts         map[uuid.UUID]entities.Participation
	rounds        map[uuid.UUID]entities.Round
	payments      map[uuid.UUID]entities.Payment
	paymentOrder  []uuid.UUID
	notifications []entities.Notification
	verifications map[uuid.UUID]entities.IdentityVerification
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		accounts:      copyMap(s.accounts),
		tokens:        copyMap(s.tokens),
		tontines:      copyMap(s.tontines),
		parts:         copyMap(s.parts),
		rounds:        copyMap(s.rounds),
		payments:      copyMap(s.payments),
		paymentOrder:  append([]uuid.UUID(nil), s.paymentOrder...),
		notifications: append([]entities.Notification(nil), s.notifications...),
		verifications: copyMap(s.verifications),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = snap.accounts
	s.tokens = snap.tokens
	s.tontines = snap.tontines
	s.parts = snap.parts
	s.rounds = snap.rounds
	s.payments = snap.payments
	s.paymentOrder = snap.paymentOrder
	s.notifications = snap.notifications
	s.verifications = snap.verifications
}

// memUnitOfWork rolls the store back when the transaction function fails
type memUnitOfWork struct {
	store  *memStore
	calls  int
	locked int
}

func (u *memUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	u.calls++
	snap := u.store.snapshot()
	hookCtx, runHooks := repositories.WithCommitHooks(ctx)
	if err := fn(hookCtx); err != nil {
		u.store.restore(snap)
		return err
	}
	runHooks(ctx)
	return nil
}

func (u *memUnitOfWork) WithLock(ctx context.Context) context.Context {
	u.locked++
	return ctx
}

type recordingPublisher struct {
	events []entities.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event entities.DomainEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []entities.EventType {
	out := make([]entities.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) ofType(t entities.EventType) []entities.DomainEvent {
	var out []entities.DomainEvent
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func paginate[T any](items []T, page utils.PaginationParams) []T {
	if page.Limit <= 0 {
		return items
	}
	offset := page.CalculateOffset()
	if offset >= len(items) {
		return nil
	}
	end := offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// Accounts

type memAccountRepo struct{ s *memStore }

func (r *memAccountRepo) Create(_ context.Context, a *entities.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.accounts {
		if existing.Email == a.Email {
			return domainerrors.ErrAlreadyExists
		}
	}
	r.s.accounts[a.ID] = *a
	return nil
}

func (r *memAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &a, nil
}

func (r *memAccountRepo) GetByEmail(_ context.Context, email string) (*entities.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.Email == entities.NormalizeEmail(email) {
			return &a, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memAccountRepo) Update(_ context.Context, a *entities.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[a.ID]; !ok {
		return domainerrors.ErrNotFound
	}
	r.s.accounts[a.ID] = *a
	return nil
}

func (r *memAccountRepo) List(_ context.Context, filter entities.AccountFilter, page utils.PaginationParams) ([]*entities.Account, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Account
	for _, a := range r.s.accounts {
		a := a
		if filter.Role != "" && a.Role != filter.Role {
			continue
		}
		if filter.Active != nil && a.IsActive != *filter.Active {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(a.Name+" "+a.Email), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return paginate(out, page), int64(len(out)), nil
}

func (r *memAccountRepo) Stats(_ context.Context) (entities.AccountStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var stats entities.AccountStats
	for _, a := range r.s.accounts {
		stats.Total++
		if a.IsActive {
			stats.Active++
		} else {
			stats.Suspended++
		}
		if a.IsAdmin() {
			stats.Admins++
		}
	}
	return stats, nil
}

type memEmailVerificationRepo struct{ s *memStore }

func (r *memEmailVerificationRepo) Create(_ context.Context, accountID uuid.UUID, token string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tokens[token] = memToken{accountID: accountID, expiresAt: expiresAt}
	return nil
}

func (r *memEmailVerificationRepo) GetByToken(_ context.Context, token string) (*entities.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tok, ok := r.s.tokens[token]
	if !ok || tok.used || time.Now().After(tok.expiresAt) {
		return nil, domainerrors.ErrNotFound
	}
	a, ok := r.s.accounts[tok.accountID]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &a, nil
}

func (r *memEmailVerificationRepo) MarkVerified(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tok, ok := r.s.tokens[token]
	if !ok || tok.used {
		return domainerrors.ErrNotFound
	}
	tok.used = true
	r.s.tokens[token] = tok
	return nil
}

// Tontines

type memTontineRepo struct{ s *memStore }

func (r *memTontineRepo) Create(_ context.Context, t *entities.Tontine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tontines {
		if existing.InviteCode == t.InviteCode {
			return domainerrors.ErrAlreadyExists
		}
	}
	r.s.tontines[t.ID] = *t
	return nil
}

func (r *memTontineRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Tontine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tontines[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &t, nil
}

func (r *memTontineRepo) GetByInviteCode(_ context.Context, code string) (*entities.Tontine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tontines {
		if t.InviteCode == code {
			return &t, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memTontineRepo) InviteCodeExists(_ context.Context, code string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tontines {
		if t.InviteCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTontineRepo) Update(_ context.Context, t *entities.Tontine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tontines[t.ID]; !ok {
		return domainerrors.ErrNotFound
	}
	r.s.tontines[t.ID] = *t
	return nil
}

func (r *memTontineRepo) List(_ context.Context, filter entities.TontineFilter, page utils.PaginationParams) ([]*entities.Tontine, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Tontine
	for _, t := range r.s.tontines {
		t := t
		if filter.PublicOnly && t.IsPrivate {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.ParticipantID != nil && t.OwnerID != *filter.ParticipantID {
			member := false
			for _, p := range r.s.parts {
				if p.TontineID == t.ID && p.AccountID == *filter.ParticipantID && p.IsActive {
					member = true
				}
			}
			if !member {
				continue
			}
		}
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page), int64(len(out)), nil
}

func (r *memTontineRepo) CountByStatus(_ context.Context) (map[entities.TontineStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[entities.TontineStatus]int64{}
	for _, t := range r.s.tontines {
		out[t.Status]++
	}
	return out, nil
}

type memParticipationRepo struct{ s *memStore }

func (r *memParticipationRepo) Create(_ context.Context, p *entities.Participation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.parts {
		if existing.TontineID == p.TontineID && existing.AccountID == p.AccountID {
			return domainerrors.ErrAlreadyExists
		}
	}
	stored := *p
	stored.Account = nil
	r.s.parts[p.ID] = stored
	return nil
}

func (r *memParticipationRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Participation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.parts[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &p, nil
}

func (r *memParticipationRepo) GetByTontineAndAccount(_ context.Context, tontineID, accountID uuid.UUID) (*entities.Participation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.parts {
		if p.TontineID == tontineID && p.AccountID == accountID {
			return &p, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memParticipationRepo) ListByTontine(_ context.Context, tontineID uuid.UUID, activeOnly bool) ([]*entities.Participation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Participation
	for _, p := range r.s.parts {
		p := p
		if p.TontineID != tontineID || (activeOnly && !p.IsActive) {
			continue
		}
		if a, ok := r.s.accounts[p.AccountID]; ok {
			p.Account = &a
		}
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (r *memParticipationRepo) CountActive(ctx context.Context, tontineID uuid.UUID) (int, error) {
	parts, err := r.ListByTontine(ctx, tontineID, true)
	return len(parts), err
}

func (r *memParticipationRepo) Update(_ context.Context, p *entities.Participation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.parts[p.ID]; !ok {
		return domainerrors.ErrNotFound
	}
	stored := *p
	stored.Account = nil
	r.s.parts[p.ID] = stored
	return nil
}

func (r *memParticipationRepo) UpdatePositions(_ context.Context, positions map[uuid.UUID]int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, pos := range positions {
		p, ok := r.s.parts[id]
		if !ok {
			return domainerrors.ErrNotFound
		}
		p.Position = pos
		r.s.parts[id] = p
	}
	return nil
}

// Rounds

type memRoundRepo struct{ s *memStore }

func storedRound(r *entities.Round) entities.Round {
	stored := *r
	stored.Winner = nil
	stored.Payments = nil
	return stored
}

func (r *memRoundRepo) CreateBatch(_ context.Context, rounds []*entities.Round) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, round := range rounds {
		for _, existing := range r.s.rounds {
			if existing.TontineID == round.TontineID && existing.Number == round.Number {
				return domainerrors.ErrAlreadyExists
			}
		}
		r.s.rounds[round.ID] = storedRound(round)
	}
	return nil
}

func (r *memRoundRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	round, ok := r.s.rounds[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &round, nil
}

func (r *memRoundRepo) ListByTontine(_ context.Context, tontineID uuid.UUID) ([]*entities.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Round
	for _, round := range r.s.rounds {
		round := round
		if round.TontineID == tontineID {
			out = append(out, &round)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *memRoundRepo) Update(_ context.Context, round *entities.Round) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rounds[round.ID]; !ok {
		return domainerrors.ErrNotFound
	}
	r.s.rounds[round.ID] = storedRound(round)
	return nil
}

func (r *memRoundRepo) UpdateWinners(_ context.Context, winners map[uuid.UUID]uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, winner := range winners {
		round, ok := r.s.rounds[id]
		if !ok || round.Status != entities.RoundStatusPending {
			return domainerrors.ErrConflict
		}
		round.WinnerParticipationID = winner
		r.s.rounds[id] = round
	}
	return nil
}

func (r *memRoundRepo) ListDueForCollection(_ context.Context, now time.Time) ([]*entities.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Round
	for _, round := range r.s.rounds {
		round := round
		t, ok := r.s.tontines[round.TontineID]
		if !ok || t.Status != entities.TontineStatusActive {
			continue
		}
		if round.Status == entities.RoundStatusPending && !round.CollectionStartDate.After(now) {
			out = append(out, &round)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// Payments

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) Create(_ context.Context, p *entities.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payments[p.ID]; ok {
		return domainerrors.ErrAlreadyExists
	}
	r.s.payments[p.ID] = *p
	r.s.paymentOrder = append(r.s.paymentOrder, p.ID)
	return nil
}

func (r *memPaymentRepo) CreateBatch(ctx context.Context, payments []*entities.Payment) error {
	for _, p := range payments {
		if err := r.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *memPaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &p, nil
}

func (r *memPaymentRepo) ordered() []*entities.Payment {
	out := make([]*entities.Payment, 0, len(r.s.paymentOrder))
	for _, id := range r.s.paymentOrder {
		if p, ok := r.s.payments[id]; ok {
			out = append(out, &p)
		}
	}
	return out
}

func (r *memPaymentRepo) ListByRound(_ context.Context, roundID uuid.UUID) ([]*entities.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Payment
	for _, p := range r.ordered() {
		if p.RoundID == roundID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) Update(_ context.Context, p *entities.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.payments[p.ID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	updated := *p
	updated.Amount = stored.Amount
	r.s.payments[p.ID] = updated
	return nil
}

func (r *memPaymentRepo) List(_ context.Context, filter entities.PaymentFilter, page utils.PaginationParams) ([]*entities.Payment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Payment
	for _, p := range r.ordered() {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.AccountID != nil && p.AccountID != *filter.AccountID {
			continue
		}
		if filter.RoundID != nil && p.RoundID != *filter.RoundID {
			continue
		}
		if filter.TontineID != nil && p.TontineID != *filter.TontineID {
			continue
		}
		out = append(out, p)
	}
	return paginate(out, page), int64(len(out)), nil
}

func (r *memPaymentRepo) CountByStatus(_ context.Context) (map[entities.PaymentStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[entities.PaymentStatus]int64{}
	for _, p := range r.s.payments {
		out[p.Status]++
	}
	return out, nil
}

func (r *memPaymentRepo) SumPaid(_ context.Context) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, p := range r.s.payments {
		if p.Status == entities.PaymentStatusPaid {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (r *memPaymentRepo) ListDueForReminder(_ context.Context, until time.Time) ([]*entities.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Payment
	for _, p := range r.ordered() {
		round, ok := r.s.rounds[p.RoundID]
		if !ok || round.Status != entities.RoundStatusCollecting {
			continue
		}
		if tontine, ok := r.s.tontines[p.TontineID]; !ok || tontine.Status != entities.TontineStatusActive {
			continue
		}
		if p.Status == entities.PaymentStatusPending && !p.DueDate.After(until) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Notifications

type memNotificationRepo struct{ s *memStore }

func (r *memNotificationRepo) Create(_ context.Context, n *entities.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r *memNotificationRepo) List(_ context.Context, accountID uuid.UUID, filter entities.NotificationFilter, page utils.PaginationParams) ([]*entities.Notification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		n := r.s.notifications[i]
		if n.AccountID != accountID || (filter.UnreadOnly && n.IsRead) {
			continue
		}
		out = append(out, &n)
	}
	return paginate(out, page), int64(len(out)), nil
}

func (r *memNotificationRepo) CountUnread(_ context.Context, accountID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, n := range r.s.notifications {
		if n.AccountID == accountID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, accountID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, n := range r.s.notifications {
		if n.ID == id && n.AccountID == accountID {
			if !n.IsRead {
				n.IsRead = true
				n.ReadAt = null.TimeFrom(time.Now())
				r.s.notifications[i] = n
			}
			return nil
		}
	}
	return domainerrors.ErrNotFound
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, accountID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for i, n := range r.s.notifications {
		if n.AccountID == accountID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = null.TimeFrom(time.Now())
			r.s.notifications[i] = n
			count++
		}
	}
	return count, nil
}

func (s *memStore) notificationsFor(accountID uuid.UUID) []entities.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entities.Notification
	for _, n := range s.notifications {
		if n.AccountID == accountID {
			out = append(out, n)
		}
	}
	return out
}

// Identity verification

type memVerificationRepo struct{ s *memStore }

func (r *memVerificationRepo) Create(_ context.Context, v *entities.IdentityVerification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *v
	stored.Account = nil
	r.s.verifications[v.ID] = stored
	return nil
}

func (r *memVerificationRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.IdentityVerification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.verifications[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return &v, nil
}

func (r *memVerificationRepo) GetLatestByAccount(_ context.Context, accountID uuid.UUID) (*entities.IdentityVerification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *entities.IdentityVerification
	for _, v := range r.s.verifications {
		v := v
		if v.AccountID != accountID {
			continue
		}
		if latest == nil || v.CreatedAt.After(latest.CreatedAt) {
			latest = &v
		}
	}
	if latest == nil {
		return nil, domainerrors.ErrNotFound
	}
	return latest, nil
}

func (r *memVerificationRepo) Update(_ context.Context, v *entities.IdentityVerification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.verifications[v.ID]; !ok {
		return domainerrors.ErrNotFound
	}
	stored := *v
	stored.Account = nil
	r.s.verifications[v.ID] = stored
	return nil
}

func (r *memVerificationRepo) List(_ context.Context, status entities.VerificationStatus, page utils.PaginationParams) ([]*entities.IdentityVerification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.IdentityVerification
	for _, v := range r.s.verifications {
		v := v
		if status != "" && v.Status != status {
			continue
		}
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return paginate(out, page), int64(len(out)), nil
}

func (r *memVerificationRepo) CountByStatus(_ context.Context, status entities.VerificationStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, v := range r.s.verifications {
		if v.Status == status {
			count++
		}
	}
	return count, nil
}
