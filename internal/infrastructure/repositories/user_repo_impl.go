package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/infrastructure/models"
	"tontine.backend/pkg/utils"
)

// AccountRepository implements account data operations on the users table
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	m := &models.User{
		ID:                 account.ID,
		Email:              account.Email,
		Name:               account.Name,
		Phone:              account.Phone.Ptr(),
		PasswordHash:       account.PasswordHash,
		Role:               string(account.Role),
		IsActive:           account.IsActive,
		EmailVerified:      account.EmailVerified,
		VerificationStatus: string(account.VerificationStatus),
		CreatedAt:          account.CreatedAt,
		UpdatedAt:          account.UpdatedAt,
	}
	if m.ID == uuid.Nil {
		m.ID = utils.GenerateUUIDv7()
	}

	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	account.ID = m.ID
	return nil
}

// GetByID gets an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAccountEntity(&m), nil
}

// GetByEmail gets an account by its normalized email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("email = ?", entities.NormalizeEmail(email)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAccountEntity(&m), nil
}

// Update persists the mutable account fields
func (r *AccountRepository) Update(ctx context.Context, account *entities.Account) error {
	account.UpdatedAt = time.Now()
	updates := map[string]interface{}{
		"name":                account.Name,
		"phone":               account.Phone.Ptr(),
		"role":                string(account.Role),
		"is_active":           account.IsActive,
		"email_verified":      account.EmailVerified,
		"verification_status": string(account.VerificationStatus),
		"updated_at":          account.UpdatedAt,
	}

	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).Where("id = ?", account.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List lists accounts with optional role, status and search filters
func (r *AccountRepository) List(ctx context.Context, filter entities.AccountFilter, page utils.PaginationParams) ([]*entities.Account, int64, error) {
	query := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", string(filter.Role))
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.User
	if err := query.Order("created_at DESC").Limit(page.Limit).Offset(page.CalculateOffset()).Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	accounts := make([]*entities.Account, 0, len(ms))
	for i := range ms {
		accounts = append(accounts, toAccountEntity(&ms[i]))
	}
	return accounts, total, nil
}

// Stats counts accounts by state
func (r *AccountRepository) Stats(ctx context.Context) (entities.AccountStats, error) {
	var row struct {
		Total  int64
		Active int64
		Admins int64
	}
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).
		Select("COUNT(*) AS total, " +
			"COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) AS active, " +
			"COALESCE(SUM(CASE WHEN role = 'ADMIN' THEN 1 ELSE 0 END), 0) AS admins").
		Scan(&row).Error
	if err != nil {
		return entities.AccountStats{}, err
	}
	return entities.AccountStats{
		Total:     row.Total,
		Active:    row.Active,
		Suspended: row.Total - row.Active,
		Admins:    row.Admins,
	}, nil
}

func toAccountEntity(m *models.User) *entities.Account {
	return &entities.Account{
		ID:                 m.ID,
		Email:              m.Email,
		Name:               m.Name,
		Phone:              null.StringFromPtr(m.Phone),
		PasswordHash:       m.PasswordHash,
		Role:               entities.AccountRole(m.Role),
		IsActive:           m.IsActive,
		EmailVerified:      m.EmailVerified,
		VerificationStatus: entities.VerificationStatus(m.VerificationStatus),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// EmailVerificationRepository implements email verification operations
type EmailVerificationRepository struct {
	db *gorm.DB
}

// NewEmailVerificationRepository creates a new email verification repository
func NewEmailVerificationRepository(db *gorm.DB) *EmailVerificationRepository {
	return &EmailVerificationRepository{db: db}
}

// Create creates a new email verification
func (r *EmailVerificationRepository) Create(ctx context.Context, accountID uuid.UUID, token string, expiresAt time.Time) error {
	m := &models.EmailVerification{
		ID:        utils.GenerateUUIDv7(),
		AccountID: accountID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Omit("Account").Create(m).Error
}

// GetByToken gets the account behind an unexpired, unused verification token
func (r *EmailVerificationRepository) GetByToken(ctx context.Context, token string) (*entities.Account, error) {
	var m models.User
	err := GetDB(ctx, r.db).WithContext(ctx).
		Joins("JOIN email_verifications ev ON ev.user_id = users.id").
		Where("ev.token = ? AND ev.expires_at > ? AND ev.verified_at IS NULL AND ev.deleted_at IS NULL", token, time.Now()).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAccountEntity(&m), nil
}

// MarkVerified marks an email verification as used
func (r *EmailVerificationRepository) MarkVerified(ctx context.Context, token string) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.EmailVerification{}).
		Where("token = ? AND verified_at IS NULL", token).
		Update("verified_at", time.Now())

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// isUniqueViolation recognises unique-constraint errors from postgres and sqlite
// when the dialector does not translate them.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "23505")
}
