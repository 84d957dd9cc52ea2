package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/interfaces/http/middleware"
	"tontine.backend/internal/interfaces/http/response"
	"tontine.backend/pkg/jwt"
	"tontine.backend/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, input *entities.RegisterInput) (*entities.RegisterResponse, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	Logout(ctx context.Context, sessionID string) error
	VerifyEmail(ctx context.Context, token string) error
	RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
	GetMe(ctx context.Context, accountID uuid.UUID) (*entities.Account, error)
	UpdateProfile(ctx context.Context, accountID uuid.UUID, input *entities.UpdateProfileInput) (*entities.Account, error)
}

const (
	accessCookie  = "token"
	refreshCookie = "refresh_token"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase AuthService) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

// Register handles account registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.authUsecase.Register(c.Request.Context(), &input)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			response.Error(c, domainerrors.Conflict("Email already registered"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message":           "Registration successful. Please check your email for verification.",
		"account":           result.Account,
		"verificationToken": result.VerificationToken,
	})
}

// Login handles account login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	authResponse, err := h.authUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	if authResponse.SessionID == "" {
		c.SetCookie(accessCookie, authResponse.AccessToken, 3600*24, "/", "", false, true)
		c.SetCookie(refreshCookie, authResponse.RefreshToken, 3600*24*7, "/", "", false, true)
	}

	response.Success(c, http.StatusOK, authResponse)
}

// Logout drops the server-side session, if any, and clears auth cookies
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authUsecase.Logout(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.SetCookie(accessCookie, "", -1, "/", "", false, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{"message": "Logged out"})
}

// VerifyEmail handles email verification
// POST /api/v1/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.authUsecase.VerifyEmail(c.Request.Context(), input.Token); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.BadRequest("Invalid or expired verification token"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Email verified successfully"})
}

// RefreshToken handles token refresh. The token comes from the body or the refresh cookie.
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	ctx := c.Request.Context()
	var refreshToken string

	if c.Request.ContentLength > 0 {
		var input struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			logger.Debug(ctx, "Refresh body not bound", zap.Error(err))
		} else {
			refreshToken = input.RefreshToken
		}
	}
	if refreshToken == "" {
		if cookie, err := c.Cookie(refreshCookie); err == nil {
			refreshToken = cookie
		}
	}
	if refreshToken == "" {
		response.Error(c, domainerrors.BadRequest("Refresh token is required"))
		return
	}

	tokenPair, err := h.authUsecase.RefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAccountSuspended) {
			response.Error(c, err)
			return
		}
		response.Error(c, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeUnauthorized, "Invalid or expired refresh token", err))
		return
	}

	c.SetCookie(accessCookie, tokenPair.AccessToken, 3600*24, "/", "", false, true)
	c.SetCookie(refreshCookie, tokenPair.RefreshToken, 3600*24*7, "/", "", false, true)
	response.Success(c, http.StatusOK, tokenPair)
}

// GetMe returns the authenticated account
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	account, err := h.authUsecase.GetMe(c.Request.Context(), actor.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"account": account})
}

// UpdateMe changes the authenticated account's profile
// PUT /api/v1/auth/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input entities.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	account, err := h.authUsecase.UpdateProfile(c.Request.Context(), actor.AccountID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"account": account})
}
