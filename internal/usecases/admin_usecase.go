package usecases

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/domain/repositories"
	"tontine.backend/pkg/logger"
	"tontine.backend/pkg/utils"
)

// SessionRevoker drops every stored session of an account
type SessionRevoker interface {
	RevokeAccountSessions(ctx context.Context, accountID uuid.UUID) error
}

// AdminUsecase handles moderation and platform statistics
type AdminUsecase struct {
	accountRepo      repositories.AccountRepository
	tontineRepo      repositories.TontineRepository
	paymentRepo      repositories.PaymentRepository
	verificationRepo repositories.IdentityVerificationRepository
	uow              repositories.UnitOfWork
	events           EventPublisher
	sessions         SessionRevoker
}

// NewAdminUsecase creates a new admin usecase. sessions may be nil.
func NewAdminUsecase(
	accountRepo repositories.AccountRepository,
	tontineRepo repositories.TontineRepository,
	paymentRepo repositories.PaymentRepository,
	verificationRepo repositories.IdentityVerificationRepository,
	uow repositories.UnitOfWork,
	events EventPublisher,
	sessions SessionRevoker,
) *AdminUsecase {
	return &AdminUsecase{
		accountRepo:      accountRepo,
		tontineRepo:      tontineRepo,
		paymentRepo:      paymentRepo,
		verificationRepo: verificationRepo,
		uow:              uow,
		events:           events,
		sessions:         sessions,
	}
}

// SuspendAccount deactivates an account and revokes its sessions
func (u *AdminUsecase) SuspendAccount(ctx context.Context, actor Actor, accountID uuid.UUID) (*entities.Account, error) {
	if accountID == actor.AccountID {
		return nil, domainerrors.Validation("administrators cannot suspend themselves")
	}
	account, err := u.setActive(ctx, actor, accountID, false)
	if err != nil {
		return nil, err
	}
	if u.sessions != nil {
		if err := u.sessions.RevokeAccountSessions(ctx, accountID); err != nil {
			logger.Warn(ctx, "Failed to revoke sessions of suspended account",
				zap.String("account_id", accountID.String()),
				zap.Error(err),
			)
		}
	}
	return account, nil
}

// ActivateAccount reactivates a suspended account
func (u *AdminUsecase) ActivateAccount(ctx context.Context, actor Actor, accountID uuid.UUID) (*entities.Account, error) {
	return u.setActive(ctx, actor, accountID, true)
}

func (u *AdminUsecase) setActive(ctx context.Context, actor Actor, accountID uuid.UUID, active bool) (*entities.Account, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("administrator access required")
	}

	var account *entities.Account
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		account, err = u.accountRepo.GetByID(txCtx, accountID)
		if err != nil {
			return err
		}
		if account.IsActive == active {
			return nil
		}
		account.IsActive = active
		if err := u.accountRepo.Update(txCtx, account); err != nil {
			return err
		}
		return publish(txCtx, u.events, entities.DomainEvent{
			Type:    entities.EventAccountStatusChanged,
			Subject: account.ID,
			Active:  active,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Account status changed",
		zap.String("account_id", accountID.String()),
		zap.Bool("active", active),
		zap.String("actor_id", actor.AccountID.String()),
	)
	return account, nil
}

// ListAccounts lists accounts with filters
func (u *AdminUsecase) ListAccounts(ctx context.Context, filter entities.AccountFilter, page utils.PaginationParams) ([]*entities.Account, int64, error) {
	return u.accountRepo.List(ctx, filter, page)
}

// ListTontines lists every tontine, private ones included
func (u *AdminUsecase) ListTontines(ctx context.Context, filter entities.TontineFilter, page utils.PaginationParams) ([]*entities.Tontine, int64, error) {
	filter.PublicOnly = false
	return u.tontineRepo.List(ctx, filter, page)
}

// GetStats builds the dashboard projection
func (u *AdminUsecase) GetStats(ctx context.Context) (*entities.AdminStats, error) {
	accounts, err := u.accountRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	tontines, err := u.tontineRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := u.paymentRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := u.paymentRepo.SumPaid(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := u.verificationRepo.CountByStatus(ctx, entities.VerificationPending)
	if err != nil {
		return nil, err
	}
	return &entities.AdminStats{
		Accounts:             accounts,
		Tontines:             tontines,
		Payments:             payments,
		Revenue:              revenue,
		PendingVerifications: pending,
	}, nil
}
