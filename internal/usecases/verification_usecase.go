package usecases

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/domain/repositories"
	"tontine.backend/pkg/logger"
	"tontine.backend/pkg/utils"
)

// VerificationUsecase handles identity document submission and review
type VerificationUsecase struct {
	accountRepo      repositories.AccountRepository
	verificationRepo repositories.IdentityVerificationRepository
	uow              repositories.UnitOfWork
	events           EventPublisher
}

// NewVerificationUsecase creates a new verification usecase
func NewVerificationUsecase(
	accountRepo repositories.AccountRepository,
	verificationRepo repositories.IdentityVerificationRepository,
	uow repositories.UnitOfWork,
	events EventPublisher,
) *VerificationUsecase {
	return &VerificationUsecase{
		accountRepo:      accountRepo,
		verificationRepo: verificationRepo,
		uow:              uow,
		events:           events,
	}
}

// SubmitVerification files a new request. Allowed before any request or after a rejection.
func (u *VerificationUsecase) SubmitVerification(ctx context.Context, actor Actor, input *entities.SubmitVerificationInput) (*entities.IdentityVerification, error) {
	if !input.DocumentType.Valid() {
		return nil, domainerrors.Validation("documentType must be NATIONAL_ID, PASSPORT, DRIVER_LICENSE or RESIDENCE_PERMIT")
	}
	documentURL := strings.TrimSpace(input.DocumentURL)
	if documentURL == "" {
		return nil, domainerrors.Validation("documentUrl is required")
	}

	var request *entities.IdentityVerification
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		account, err := u.accountRepo.GetByID(txCtx, actor.AccountID)
		if err != nil {
			return err
		}
		if !account.CanSubmitVerification() {
			return domainerrors.StateConflict("identity verification is already pending or approved")
		}

		now := nowFunc()
		request = &entities.IdentityVerification{
			ID:           utils.GenerateUUIDv7(),
			AccountID:    account.ID,
			DocumentType: input.DocumentType,
			DocumentURL:  documentURL,
			Status:       entities.VerificationPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := u.verificationRepo.Create(txCtx, request); err != nil {
			return err
		}
		account.VerificationStatus = entities.VerificationPending
		return u.accountRepo.Update(txCtx, account)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ReviewVerification approves or rejects a pending request. Admin only.
func (u *VerificationUsecase) ReviewVerification(ctx context.Context, actor Actor, id uuid.UUID, input *entities.ReviewVerificationInput) (*entities.IdentityVerification, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("administrator access required")
	}
	if input.Approve == nil {
		return nil, domainerrors.Validation("approve is required")
	}
	approve := *input.Approve
	message := strings.TrimSpace(input.Message)

	var request *entities.IdentityVerification
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)
		var err error
		request, err = u.verificationRepo.GetByID(lockCtx, id)
		if err != nil {
			return err
		}
		if request.Status != entities.VerificationPending {
			return domainerrors.StateConflict("verification has already been reviewed")
		}

		status := entities.VerificationRejected
		if approve {
			status = entities.VerificationApproved
		}
		request.Status = status
		request.ReviewedBy = uuidPtr(actor.AccountID)
		request.ReviewedAt = null.TimeFrom(nowFunc())
		if message != "" {
			request.ReviewMessage = null.StringFrom(message)
		}
		if err := u.verificationRepo.Update(lockCtx, request); err != nil {
			return err
		}

		account, err := u.accountRepo.GetByID(lockCtx, request.AccountID)
		if err != nil {
			return err
		}
		account.VerificationStatus = status
		if err := u.accountRepo.Update(lockCtx, account); err != nil {
			return err
		}
		request.Account = account

		return publish(lockCtx, u.events, entities.DomainEvent{
			Type:     entities.EventVerificationReviewed,
			Subject:  account.ID,
			Approved: approve,
			Message:  message,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Identity verification reviewed",
		zap.String("verification_id", id.String()),
		zap.Bool("approved", approve),
		zap.String("reviewer_id", actor.AccountID.String()),
	)
	return request, nil
}

// GetMyVerification returns the actor's latest request
func (u *VerificationUsecase) GetMyVerification(ctx context.Context, actor Actor) (*entities.IdentityVerification, error) {
	return u.verificationRepo.GetLatestByAccount(ctx, actor.AccountID)
}

// ListVerifications lists requests, optionally by status
func (u *VerificationUsecase) ListVerifications(ctx context.Context, status entities.VerificationStatus, page utils.PaginationParams) ([]*entities.IdentityVerification, int64, error) {
	return u.verificationRepo.List(ctx, status, page)
}
