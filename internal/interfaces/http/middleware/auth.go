package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/interfaces/http/response"
	"tontine.backend/internal/usecases"
	"tontine.backend/pkg/jwt"
	"tontine.backend/pkg/logger"
	"tontine.backend/pkg/redis"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// SessionIDHeader carries a server-side session id instead of a bearer token
	SessionIDHeader = "X-Session-Id"
	// AccountIDKey is the context key for the account ID
	AccountIDKey = "accountId"
	// AccountEmailKey is the context key for the account email
	AccountEmailKey = "accountEmail"
	// AccountRoleKey is the context key for the account role
	AccountRoleKey = "accountRole"
	// SessionIDKey is the context key for the session ID, when the request used one
	SessionIDKey = "sessionId"
)

// Authenticator resolves credentials to a live account
type Authenticator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
	ResolveSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	ValidateSession(ctx context.Context, accountID uuid.UUID) (*entities.Account, error)
}

// AuthMiddleware accepts a bearer JWT or a Redis session id and re-checks the
// account on every request, so suspensions apply immediately
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tokenString := ""
		sessionID := c.GetHeader(SessionIDHeader)
		if sessionID != "" {
			session, err := auth.ResolveSession(ctx, sessionID)
			if err != nil {
				logger.Warn(ctx, "Session lookup failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
				abort(c, domainerrors.Unauthorized("Invalid or expired session"))
				return
			}
			tokenString = session.AccessToken
		} else {
			authHeader := c.GetHeader(AuthorizationHeader)
			if authHeader == "" {
				abort(c, domainerrors.Unauthorized("Authorization header is required"))
				return
			}
			if !strings.HasPrefix(authHeader, BearerPrefix) {
				abort(c, domainerrors.Unauthorized("Invalid authorization format. Use: Bearer <token>"))
				return
			}
			tokenString = strings.TrimPrefix(authHeader, BearerPrefix)
		}

		claims, err := auth.ValidateAccessToken(tokenString)
		if err != nil {
			logger.Warn(ctx, "Token validation failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			if errors.Is(err, jwt.ErrExpiredToken) {
				abort(c, domainerrors.Unauthorized("Token has expired"))
				return
			}
			abort(c, domainerrors.Unauthorized("Invalid token"))
			return
		}

		account, err := auth.ValidateSession(ctx, claims.AccountID)
		if err != nil {
			switch {
			case errors.Is(err, domainerrors.ErrAccountSuspended):
				abort(c, domainerrors.AccountSuspended())
			case errors.Is(err, domainerrors.ErrUnauthorized):
				abort(c, domainerrors.Unauthorized("Account not found"))
			default:
				abort(c, err)
			}
			return
		}

		// The stored role wins over the token claim so promotions apply without a new login
		c.Set(AccountIDKey, account.ID)
		c.Set(AccountEmailKey, account.Email)
		c.Set(AccountRoleKey, account.Role)
		if sessionID != "" {
			c.Set(SessionIDKey, sessionID)
		}
		c.Request = c.Request.WithContext(logger.WithAccountID(ctx, account.ID.String()))

		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}

// GetAccountID gets the account ID from context
func GetAccountID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(AccountIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetAccountRole gets the account role from context
func GetAccountRole(c *gin.Context) (entities.AccountRole, bool) {
	v, exists := c.Get(AccountRoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(entities.AccountRole)
	return role, ok
}

// GetSessionID returns the session id the request authenticated with, if any
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

// GetActor builds the usecase actor for the authenticated account
func GetActor(c *gin.Context) (usecases.Actor, bool) {
	id, ok := GetAccountID(c)
	if !ok {
		return usecases.Actor{}, false
	}
	role, _ := GetAccountRole(c)
	return usecases.Actor{AccountID: id, Role: role}, true
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(roles ...entities.AccountRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := GetAccountRole(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    domainerrors.CodeUnauthorized,
				"message": "Account role not found",
			})
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code":    domainerrors.CodeForbidden,
			"message": "Insufficient permissions",
		})
	}
}

// RequireAdmin creates a middleware that requires the admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(entities.AccountRoleAdmin)
}
