package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/domain/repositories"
	"tontine.backend/pkg/crypto"
	"tontine.backend/pkg/jwt"
	"tontine.backend/pkg/logger"
	"tontine.backend/pkg/redis"
	"tontine.backend/pkg/utils"
)

// SessionStore keeps opaque login sessions for clients that cannot hold tokens
type SessionStore interface {
	CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
	RevokeAccountSessions(ctx context.Context, accountID uuid.UUID) error
}

var (
	hashPassword         = crypto.HashPassword
	newVerificationToken = crypto.GenerateVerificationToken
	newSessionID         = crypto.GenerateSessionID
)

// AuthUsecase handles authentication business logic
type AuthUsecase struct {
	accountRepo    repositories.AccountRepository
	emailVerifRepo repositories.EmailVerificationRepository
	uow            repositories.UnitOfWork
	jwtService     *jwt.JWTService
	sessions       SessionStore
}

// NewAuthUsecase creates a new auth usecase. sessions may be nil when Redis sessions are disabled.
func NewAuthUsecase(
	accountRepo repositories.AccountRepository,
	emailVerifRepo repositories.EmailVerificationRepository,
	uow repositories.UnitOfWork,
	jwtService *jwt.JWTService,
	sessions SessionStore,
) *AuthUsecase {
	return &AuthUsecase{
		accountRepo:    accountRepo,
		emailVerifRepo: emailVerifRepo,
		uow:            uow,
		jwtService:     jwtService,
		sessions:       sessions,
	}
}

// Register creates an account and its email verification token
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.RegisterResponse, error) {
	email := entities.NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" {
		return nil, domainerrors.Validation("email and name are required")
	}
	if err := crypto.ValidatePassword(input.Password); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	_, err := u.accountRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, domainerrors.ErrAlreadyExists
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	token, err := newVerificationToken()
	if err != nil {
		return nil, err
	}

	now := nowFunc()
	account := &entities.Account{
		ID:                 utils.GenerateUUIDv7(),
		Email:              email,
		Name:               name,
		PasswordHash:       passwordHash,
		Role:               entities.AccountRoleUser,
		IsActive:           true,
		VerificationStatus: entities.VerificationNotStarted,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		account.Phone = null.StringFrom(phone)
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.accountRepo.Create(txCtx, account); err != nil {
			return err
		}
		return u.emailVerifRepo.Create(txCtx, account.ID, token, now.Add(EmailVerificationExpiry))
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Account registered", zap.String("account_id", account.ID.String()))
	return &entities.RegisterResponse{Account: account, VerificationToken: token}, nil
}

// Login authenticates an account and returns tokens, or a session id when requested
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	account, err := u.accountRepo.GetByEmail(ctx, entities.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, account.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, domainerrors.ErrAccountSuspended
	}

	tokenPair, err := u.jwtService.GenerateTokenPair(account.ID, account.Email, string(account.Role))
	if err != nil {
		return nil, err
	}

	if !input.UseSession {
		return &entities.AuthResponse{
			AccessToken:  tokenPair.AccessToken,
			RefreshToken: tokenPair.RefreshToken,
			ExpiresAt:    tokenPair.ExpiresAt,
			Account:      account,
		}, nil
	}

	if u.sessions == nil {
		return nil, domainerrors.BadRequest("sessions are not enabled")
	}
	sessionID, err := newSessionID()
	if err != nil {
		return nil, err
	}
	err = u.sessions.CreateSession(ctx, sessionID, &redis.SessionData{
		AccountID:    account.ID,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
	}, u.jwtService.RefreshExpiry())
	if err != nil {
		return nil, fmt.Errorf("failed to store session in redis: %w", err)
	}

	return &entities.AuthResponse{
		SessionID: sessionID,
		ExpiresAt: nowFunc().Add(u.jwtService.RefreshExpiry()),
		Account:   account,
	}, nil
}

// Logout drops a Redis session. Token-only clients just discard their tokens.
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" || u.sessions == nil {
		return nil
	}
	return u.sessions.DeleteSession(ctx, sessionID)
}

// ResolveSession returns the access token stored behind a session id
func (u *AuthUsecase) ResolveSession(ctx context.Context, sessionID string) (*redis.SessionData, error) {
	if u.sessions == nil {
		return nil, domainerrors.ErrUnauthorized
	}
	data, err := u.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, domainerrors.ErrUnauthorized
	}
	return data, nil
}

// VerifyEmail consumes a verification token and flags the account
func (u *AuthUsecase) VerifyEmail(ctx context.Context, token string) error {
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		account, err := u.emailVerifRepo.GetByToken(txCtx, token)
		if err != nil {
			return err
		}
		if err := u.emailVerifRepo.MarkVerified(txCtx, token); err != nil {
			return err
		}
		account.EmailVerified = true
		return u.accountRepo.Update(txCtx, account)
	})
}

// RefreshToken generates new tokens from a refresh token
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateTokenOfType(refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	account, err := u.ValidateSession(ctx, claims.AccountID)
	if err != nil {
		return nil, err
	}
	return u.jwtService.GenerateTokenPair(account.ID, account.Email, string(account.Role))
}

// ValidateSession re-checks the account behind a token on every request
func (u *AuthUsecase) ValidateSession(ctx context.Context, accountID uuid.UUID) (*entities.Account, error) {
	account, err := u.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrUnauthorized
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, domainerrors.ErrAccountSuspended
	}
	return account, nil
}

// ValidateAccessToken parses an access token
func (u *AuthUsecase) ValidateAccessToken(token string) (*jwt.Claims, error) {
	return u.jwtService.ValidateTokenOfType(token, jwt.TokenTypeAccess)
}

// GetMe gets the authenticated account
func (u *AuthUsecase) GetMe(ctx context.Context, accountID uuid.UUID) (*entities.Account, error) {
	return u.accountRepo.GetByID(ctx, accountID)
}

// UpdateProfile changes name and phone
func (u *AuthUsecase) UpdateProfile(ctx context.Context, accountID uuid.UUID, input *entities.UpdateProfileInput) (*entities.Account, error) {
	account, err := u.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domainerrors.Validation("name cannot be empty")
		}
		account.Name = name
	}
	if input.Phone != nil {
		if phone := strings.TrimSpace(*input.Phone); phone != "" {
			account.Phone = null.StringFrom(phone)
		} else {
			account.Phone = null.String{}
		}
	}

	if err := u.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
