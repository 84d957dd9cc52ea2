package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tontine.backend/internal/domain/entities"
	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/interfaces/http/response"
	"tontine.backend/internal/usecases"
	"tontine.backend/pkg/utils"
)

type AdminService interface {
	SuspendAccount(ctx context.Context, actor usecases.Actor, accountID uuid.UUID) (*entities.Account, error)
	ActivateAccount(ctx context.Context, actor usecases.Actor, accountID uuid.UUID) (*entities.Account, error)
	ListAccounts(ctx context.Context, filter entities.AccountFilter, page utils.PaginationParams) ([]*entities.Account, int64, error)
	ListTontines(ctx context.Context, filter entities.TontineFilter, page utils.PaginationParams) ([]*entities.Tontine, int64, error)
	GetStats(ctx context.Context) (*entities.AdminStats, error)
}

// AdminHandler handles admin endpoints
type AdminHandler struct {
	adminUsecase AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminUsecase AdminService) *AdminHandler {
	return &AdminHandler{adminUsecase: adminUsecase}
}

// GetStats returns platform totals
// GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminUsecase.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// ListUsers lists accounts
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	role, ok := enumQuery(c, "role", entities.AccountRoleUser, entities.AccountRoleAdmin)
	if !ok {
		return
	}
	filter := entities.AccountFilter{Role: role, Search: c.Query("search")}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, domainerrors.Validation("invalid active filter"))
			return
		}
		filter.Active = &active
	}
	page := pageParams(c)

	accounts, total, err := h.adminUsecase.ListAccounts(c.Request.Context(), filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	paginated(c, accounts, total, page)
}

// SuspendUser suspends an account
// POST /api/v1/admin/users/:id/suspend
func (h *AdminHandler) SuspendUser(c *gin.Context) {
	h.setActive(c, false)
}

// ActivateUser reactivates an account
// POST /api/v1/admin/users/:id/activate
func (h *AdminHandler) ActivateUser(c *gin.Context) {
	h.setActive(c, true)
}

func (h *AdminHandler) setActive(c *gin.Context, active bool) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "user")
	if !ok {
		return
	}

	var (
		account *entities.Account
		err     error
	)
	if active {
		account, err = h.adminUsecase.ActivateAccount(c.Request.Context(), actor, id)
	} else {
		account, err = h.adminUsecase.SuspendAccount(c.Request.Context(), actor, id)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"account": account})
}

// ListTontines lists every tontine, private ones included
// GET /api/v1/admin/tontines
func (h *AdminHandler) ListTontines(c *gin.Context) {
	filter, ok := tontineFilter(c)
	if !ok {
		return
	}
	page := pageParams(c)

	items, total, err := h.adminUsecase.ListTontines(c.Request.Context(), filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	paginated(c, items, total, page)
}
