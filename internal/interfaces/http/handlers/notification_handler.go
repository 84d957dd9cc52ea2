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

type NotificationService interface {
	ListNotifications(ctx context.Context, actor usecases.Actor, filter entities.NotificationFilter, page utils.PaginationParams) ([]*entities.Notification, int64, int64, error)
	MarkRead(ctx context.Context, actor usecases.Actor, id uuid.UUID) error
	MarkAllRead(ctx context.Context, actor usecases.Actor) (int64, error)
}

type NotificationHandler struct {
	notificationUsecase NotificationService
}

func NewNotificationHandler(notificationUsecase NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationUsecase: notificationUsecase}
}

// ListNotifications lists the caller's notifications, newest first
// GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var filter entities.NotificationFilter
	if raw := c.Query("unreadOnly"); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, domainerrors.Validation("invalid unreadOnly filter"))
			return
		}
		filter.UnreadOnly = unread
	}
	page := pageParams(c)

	items, total, unread, err := h.notificationUsecase.ListNotifications(c.Request.Context(), actor, filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []*entities.Notification{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"items":       items,
		"unreadCount": unread,
		"pagination":  utils.CalculateMeta(total, page.Page, page.Limit),
	})
}

// MarkRead marks one notification as read
// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "notification")
	if !ok {
		return
	}

	if err := h.notificationUsecase.MarkRead(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead marks every unread notification as read
// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	n, err := h.notificationUsecase.MarkAllRead(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": n})
}
