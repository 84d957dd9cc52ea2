package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/domain/repositories"
	"tontine.backend/pkg/crypto"
	"tontine.backend/pkg/logger"
	"tontine.backend/pkg/utils"
)

var generateInviteCode = crypto.GenerateInviteCode

// TontineSettings carries configurable tontine defaults
type TontineSettings struct {
	DefaultCurrency    string
	InviteCodeAttempts int
}

// TontineUsecase manages tontines and their memberships
type TontineUsecase struct {
	tontineRepo       repositories.TontineRepository
	participationRepo repositories.ParticipationRepository
	uow               repositories.UnitOfWork
	events            EventPublisher
	settings          TontineSettings
}

// NewTontineUsecase creates a new tontine usecase
func NewTontineUsecase(
	tontineRepo repositories.TontineRepository,
	participationRepo repositories.ParticipationRepository,
	uow repositories.UnitOfWork,
	events EventPublisher,
	settings TontineSettings,
) *TontineUsecase {
	if settings.DefaultCurrency == "" {
		settings.DefaultCurrency = DefaultCurrency
	}
	if settings.InviteCodeAttempts <= 0 {
		settings.InviteCodeAttempts = DefaultInviteCodeAttempts
	}
	return &TontineUsecase{
		tontineRepo:       tontineRepo,
		participationRepo: participationRepo,
		uow:               uow,
		events:            events,
		settings:          settings,
	}
}

// CreateTontine creates a DRAFT tontine owned by the actor, who joins at position 1
func (u *TontineUsecase) CreateTontine(ctx context.Context, actor Actor, input *entities.CreateTontineInput) (*entities.TontineDetail, error) {
	amount, err := utils.ParsePositiveAmount(input.AmountPerRound)
	if err != nil {
		return nil, domainerrors.Validation("amountPerRound must be a positive amount")
	}
	if !input.Frequency.Valid() {
		return nil, domainerrors.Validation("frequency must be DAILY, WEEKLY or MONTHLY")
	}
	if input.StartDate.IsZero() {
		return nil, domainerrors.Validation("startDate is required")
	}
	if input.EndDate != nil && !input.EndDate.After(input.StartDate) {
		return nil, domainerrors.Validation("endDate must be after startDate")
	}
	if input.MaxParticipants != nil && *input.MaxParticipants < 2 {
		return nil, domainerrors.Validation("maxParticipants must be at least 2")
	}

	interval := input.FrequencyInterval
	if interval <= 0 {
		interval = 1
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = u.settings.DefaultCurrency
	}
	maxShares := 1
	if input.AllowMultipleShares && input.MaxSharesPerUser > 1 {
		maxShares = input.MaxSharesPerUser
	}

	now := nowFunc()
	tontine := &entities.Tontine{
		ID:                  utils.GenerateUUIDv7(),
		Name:                strings.TrimSpace(input.Name),
		Description:         strings.TrimSpace(input.Description),
		AmountPerRound:      amount,
		Currency:            currency,
		Frequency:           input.Frequency,
		FrequencyInterval:   interval,
		Status:              entities.TontineStatusDraft,
		StartDate:           input.StartDate,
		EndDate:             null.TimeFromPtr(input.EndDate),
		MaxParticipants:     null.IntFromPtr(input.MaxParticipants),
		AllowMultipleShares: input.AllowMultipleShares,
		MaxSharesPerUser:    maxShares,
		OwnerID:             actor.AccountID,
		IsPrivate:           input.IsPrivate,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	tontine.RecomputeTotal(1)

	owner := &entities.Participation{
		ID:             utils.GenerateUUIDv7(),
		TontineID:      tontine.ID,
		AccountID:      actor.AccountID,
		Shares:         1,
		TotalCommitted: entities.Commitment(amount, 1, 1),
		IsActive:       true,
		Position:       1,
		JoinedAt:       now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		code, err := u.allocateInviteCode(txCtx)
		if err != nil {
			return err
		}
		tontine.InviteCode = code
		if err := u.tontineRepo.Create(txCtx, tontine); err != nil {
			return err
		}
		return u.participationRepo.Create(txCtx, owner)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Tontine created",
		zap.String("tontine_id", tontine.ID.String()),
		zap.String("owner_id", actor.AccountID.String()),
	)
	return &entities.TontineDetail{
		Tontine:        tontine,
		Participations: []*entities.Participation{owner},
		IsMember:       true,
	}, nil
}

func (u *TontineUsecase) allocateInviteCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < u.settings.InviteCodeAttempts; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return "", err
		}
		exists, err := u.tontineRepo.InviteCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free invite code after %d attempts: %w", u.settings.InviteCodeAttempts, domainerrors.ErrConflict)
}

// GetTontine returns a tontine with its active participations. Private tontines are
// reported as not found to anyone but members, the owner and admins.
func (u *TontineUsecase) GetTontine(ctx context.Context, actor Actor, id uuid.UUID) (*entities.TontineDetail, error) {
	tontine, err := u.tontineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	parts, err := u.participationRepo.ListByTontine(ctx, id, true)
	if err != nil {
		return nil, err
	}

	member := isMember(tontine, parts, actor.AccountID)
	if tontine.IsPrivate && !member && !actor.IsAdmin() {
		return nil, domainerrors.NotFound("tontine not found")
	}
	if !member && !actor.IsAdmin() {
		masked := *tontine
		masked.InviteCode = ""
		tontine = &masked
	}
	return &entities.TontineDetail{Tontine: tontine, Participations: parts, IsMember: member}, nil
}

// ListTontines lists public tontines
func (u *TontineUsecase) ListTontines(ctx context.Context, filter entities.TontineFilter, page utils.PaginationParams) ([]*entities.Tontine, int64, error) {
	filter.PublicOnly = true
	filter.ParticipantID = nil
	items, total, err := u.tontineRepo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	for i, t := range items {
		masked := *t
		masked.InviteCode = ""
		items[i] = &masked
	}
	return items, total, nil
}

// ListMyTontines lists tontines the actor owns or actively participates in
func (u *TontineUsecase) ListMyTontines(ctx context.Context, actor Actor, filter entities.TontineFilter, page utils.PaginationParams) ([]*entities.Tontine, int64, error) {
	filter.PublicOnly = false
	filter.ParticipantID = &actor.AccountID
	return u.tontineRepo.List(ctx, filter, page)
}

// ListParticipants lists the active participations of a visible tontine
func (u *TontineUsecase) ListParticipants(ctx context.Context, actor Actor, tontineID uuid.UUID) ([]*entities.Participation, error) {
	detail, err := u.GetTontine(ctx, actor, tontineID)
	if err != nil {
		return nil, err
	}
	return detail.Participations, nil
}

// JoinTontine adds the actor to a DRAFT tontine by invite code or id
func (u *TontineUsecase) JoinTontine(ctx context.Context, actor Actor, input *entities.JoinTontineInput) (*entities.Participation, error) {
	shares := input.Shares
	if shares <= 0 {
		shares = 1
	}

	target, err := u.resolveJoinTarget(ctx, input)
	if err != nil {
		return nil, err
	}

	var joined *entities.Participation
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		tontine, err := u.tontineRepo.GetByID(lockCtx, target)
		if err != nil {
			return err
		}
		if tontine.Status != entities.TontineStatusDraft {
			return domainerrors.StateConflict("tontine is no longer accepting participants")
		}
		if shares > tontine.ShareLimit() {
			return domainerrors.Validation(fmt.Sprintf("shares must be between 1 and %d", tontine.ShareLimit()))
		}

		active, err := u.participationRepo.CountActive(lockCtx, tontine.ID)
		if err != nil {
			return err
		}

		existing, err := u.participationRepo.GetByTontineAndAccount(lockCtx, tontine.ID, actor.AccountID)
		switch {
		case err == nil && existing.IsActive:
			if !tontine.AllowMultipleShares {
				return domainerrors.Conflict("already a participant of this tontine")
			}
			if existing.Shares+shares > tontine.ShareLimit() {
				return domainerrors.Validation(fmt.Sprintf("a participant may hold at most %d shares", tontine.ShareLimit()))
			}
			existing.Shares += shares
			if err := u.participationRepo.Update(lockCtx, existing); err != nil {
				return err
			}
			joined = existing
		case err == nil:
			if tontine.IsFull(active) {
				return domainerrors.StateConflict("tontine is full")
			}
			position, err := u.nextPosition(lockCtx, tontine.ID)
			if err != nil {
				return err
			}
			now := nowFunc()
			existing.IsActive = true
			existing.LeftAt = null.Time{}
			existing.Shares = shares
			existing.Position = position
			existing.JoinedAt = now
			if err := u.participationRepo.Update(lockCtx, existing); err != nil {
				return err
			}
			joined = existing
		case errors.Is(err, domainerrors.ErrNotFound):
			if tontine.IsFull(active) {
				return domainerrors.StateConflict("tontine is full")
			}
			position, err := u.nextPosition(lockCtx, tontine.ID)
			if err != nil {
				return err
			}
			now := nowFunc()
			joined = &entities.Participation{
				ID:        utils.GenerateUUIDv7(),
				TontineID: tontine.ID,
				AccountID: actor.AccountID,
				Shares:    shares,
				IsActive:  true,
				Position:  position,
				JoinedAt:  now,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := u.participationRepo.Create(lockCtx, joined); err != nil {
				return err
			}
		default:
			return err
		}

		parts, err := u.refreshTotals(lockCtx, tontine)
		if err != nil {
			return err
		}
		for _, p := range parts {
			if p.ID == joined.ID {
				joined.TotalCommitted = p.TotalCommitted
			}
		}

		if tontine.OwnerID == actor.AccountID {
			return nil
		}
		return publish(lockCtx, u.events, entities.DomainEvent{
			Type:          entities.EventParticipantJoined,
			Tontine:       tontine,
			Participation: joined,
			Recipients:    []uuid.UUID{tontine.OwnerID},
			Subject:       actor.AccountID,
		})
	})
	if err != nil {
		return nil, err
	}
	return joined, nil
}

func (u *TontineUsecase) resolveJoinTarget(ctx context.Context, input *entities.JoinTontineInput) (uuid.UUID, error) {
	if code := strings.ToUpper(strings.TrimSpace(input.InviteCode)); code != "" {
		if !crypto.IsValidInviteCode(code) {
			return uuid.Nil, domainerrors.Validation("inviteCode must be 6 uppercase letters or digits")
		}
		tontine, err := u.tontineRepo.GetByInviteCode(ctx, code)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return uuid.Nil, domainerrors.NotFound("no tontine matches this invite code")
			}
			return uuid.Nil, err
		}
		return tontine.ID, nil
	}

	if input.TontineID == "" {
		return uuid.Nil, domainerrors.Validation("inviteCode or tontineId is required")
	}
	id, err := uuid.Parse(input.TontineID)
	if err != nil {
		return uuid.Nil, domainerrors.Validation("tontineId is not a valid id")
	}
	tontine, err := u.tontineRepo.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if tontine.IsPrivate {
		return uuid.Nil, domainerrors.NotFound("tontine not found")
	}
	return tontine.ID, nil
}

func (u *TontineUsecase) nextPosition(ctx context.Context, tontineID uuid.UUID) (int, error) {
	all, err := u.participationRepo.ListByTontine(ctx, tontineID, false)
	if err != nil {
		return 0, err
	}
	highest := 0
	for _, p := range all {
		if p.Position > highest {
			highest = p.Position
		}
	}
	return highest + 1, nil
}

// refreshTotals recomputes totalAmountPerRound and every active commitment after a membership change
func (u *TontineUsecase) refreshTotals(ctx context.Context, tontine *entities.Tontine) ([]*entities.Participation, error) {
	parts, err := u.participationRepo.ListByTontine(ctx, tontine.ID, true)
	if err != nil {
		return nil, err
	}
	tontine.RecomputeTotal(len(parts))
	if err := u.tontineRepo.Update(ctx, tontine); err != nil {
		return nil, err
	}
	for _, p := range parts {
		committed := entities.Commitment(tontine.AmountPerRound, len(parts), p.Shares)
		if committed.Equal(p.TotalCommitted) {
			continue
		}
		p.TotalCommitted = committed
		if err := u.participationRepo.Update(ctx, p); err != nil {
			return nil, err
		}
	}
	return parts, nil
}

// LeaveTontine deactivates the actor's participation in a DRAFT tontine
func (u *TontineUsecase) LeaveTontine(ctx context.Context, actor Actor, tontineID uuid.UUID) error {
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		tontine, err := u.tontineRepo.GetByID(lockCtx, tontineID)
		if err != nil {
			return err
		}
		part, err := u.participationRepo.GetByTontineAndAccount(lockCtx, tontineID, actor.AccountID)
		if err != nil || !part.IsActive {
			if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
				return err
			}
			return domainerrors.NotFound("not a participant of this tontine")
		}
		if tontine.OwnerID == actor.AccountID {
			return domainerrors.StateConflict("the owner cannot leave; cancel the tontine instead")
		}
		return u.deactivate(lockCtx, tontine, part)
	})
}

// RemoveParticipant deactivates another member's participation. Owner or admin only.
func (u *TontineUsecase) RemoveParticipant(ctx context.Context, actor Actor, tontineID, participationID uuid.UUID) error {
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		tontine, err := u.tontineRepo.GetByID(lockCtx, tontineID)
		if err != nil {
			return err
		}
		if !canManage(actor, tontine) {
			return u.denied(lockCtx, actor, tontine)
		}
		part, err := u.participationRepo.GetByID(lockCtx, participationID)
		if err != nil {
			return err
		}
		if part.TontineID != tontine.ID || !part.IsActive {
			return domainerrors.NotFound("participation not found")
		}
		if part.AccountID == tontine.OwnerID {
			return domainerrors.StateConflict("the owner cannot be removed")
		}
		return u.deactivate(lockCtx, tontine, part)
	})
}

func (u *TontineUsecase) deactivate(ctx context.Context, tontine *entities.Tontine, part *entities.Participation) error {
	if tontine.Status != entities.TontineStatusDraft {
		return domainerrors.StateConflict("participants can only leave before the schedule is generated")
	}
	part.IsActive = false
	part.LeftAt = null.TimeFrom(nowFunc())
	if err := u.participationRepo.Update(ctx, part); err != nil {
		return err
	}
	_, err := u.refreshTotals(ctx, tontine)
	return err
}

// CancelTontine cancels a tontine that has not completed. Owner or admin only.
func (u *TontineUsecase) CancelTontine(ctx context.Context, actor Actor, tontineID uuid.UUID) (*entities.Tontine, error) {
	var tontine *entities.Tontine
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		var err error
		tontine, err = u.tontineRepo.GetByID(lockCtx, tontineID)
		if err != nil {
			return err
		}
		if !canManage(actor, tontine) {
			return u.denied(lockCtx, actor, tontine)
		}
		if tontine.Status.IsTerminal() {
			return domainerrors.StateConflict(fmt.Sprintf("a %s tontine cannot be cancelled", strings.ToLower(string(tontine.Status))))
		}

		tontine.Status = entities.TontineStatusCancelled
		if err := u.tontineRepo.Update(lockCtx, tontine); err != nil {
			return err
		}
		parts, err := u.participationRepo.ListByTontine(lockCtx, tontine.ID, true)
		if err != nil {
			return err
		}
		return publish(lockCtx, u.events, entities.DomainEvent{
			Type:       entities.EventTontineCancelled,
			Tontine:    tontine,
			Recipients: accountIDs(parts),
			Subject:    actor.AccountID,
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Tontine cancelled",
		zap.String("tontine_id", tontineID.String()),
		zap.String("actor_id", actor.AccountID.String()),
	)
	return tontine, nil
}

// denied hides private tontines from non-members and forbids everyone else
func (u *TontineUsecase) denied(ctx context.Context, actor Actor, tontine *entities.Tontine) error {
	if !tontine.IsPrivate {
		return domainerrors.Forbidden("only the owner or an administrator can do this")
	}
	part, err := u.participationRepo.GetByTontineAndAccount(ctx, tontine.ID, actor.AccountID)
	if err != nil || !part.IsActive {
		return domainerrors.NotFound("tontine not found")
	}
	return domainerrors.Forbidden("only the owner or an administrator can do this")
}

func isMember(tontine *entities.Tontine, parts []*entities.Participation, accountID uuid.UUID) bool {
	if tontine.OwnerID == accountID {
		return true
	}
	for _, p := range parts {
		if p.AccountID == accountID && p.IsActive {
			return true
		}
	}
	return false
}
