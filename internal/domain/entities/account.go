package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// AccountRole represents account roles
type AccountRole string

const (
	AccountRoleUser  AccountRole = "USER"
	AccountRoleAdmin AccountRole = "ADMIN"
)

// VerificationStatus represents the identity verification state of an account
type VerificationStatus string

const (
	VerificationNotStarted VerificationStatus = "NOT_STARTED"
	VerificationPending    VerificationStatus = "PENDING"
	VerificationApproved   VerificationStatus = "APPROVED"
	VerificationRejected   VerificationStatus = "REJECTED"
)

// Account represents a registered person
type Account struct {
	ID                 uuid.UUID          `json:"id"`
	Email              string             `json:"email"`
	Name               string             `json:"name"`
	Phone              null.String        `json:"phone"`
	PasswordHash       string             `json:"-"`
	Role               AccountRole        `json:"role"`
	IsActive           bool               `json:"isActive"`
	EmailVerified      bool               `json:"emailVerified"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

func (a *Account) IsAdmin() bool {
	return a.Role == AccountRoleAdmin
}

// CanSubmitVerification reports whether a new identity document may be submitted
func (a *Account) CanSubmitVerification() bool {
	return a.VerificationStatus == VerificationNotStarted || a.VerificationStatus == VerificationRejected
}

// NormalizeEmail lower-cases and trims an email address for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterInput represents input for creating an account
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
}

// LoginInput represents input for account login
type LoginInput struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	UseSession bool   `json:"useSession"` // If true, store tokens in Redis and return SessionID
}

// UpdateProfileInput represents the editable profile fields
type UpdateProfileInput struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=100"`
	Phone *string `json:"phone" binding:"omitempty,max=32"`
}

// RegisterResponse is returned after registration
type RegisterResponse struct {
	Account           *Account `json:"account"`
	VerificationToken string   `json:"verificationToken,omitempty"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string    `json:"accessToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	SessionID    string    `json:"sessionId,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Account      *Account  `json:"account"`
}

// AccountFilter holds admin list filters
type AccountFilter struct {
	Role   AccountRole
	Active *bool
	Search string
}
