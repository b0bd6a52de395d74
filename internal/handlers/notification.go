package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sprintr-app/sprintr-api/internal/constants"
	"github.com/sprintr-app/sprintr-api/internal/dto"
	apierrors "github.com/sprintr-app/sprintr-api/internal/errors"
	"github.com/sprintr-app/sprintr-api/internal/middleware"
	"github.com/sprintr-app/sprintr-api/internal/repository"
)

// NotificationHandler coordinates notification HTTP handlers.
type NotificationHandler struct {
	notifications repository.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListNotifications returns the caller's notifications, newest first,
// together with the unread total
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	workspaceID := c.Query("workspaceId")

	limit := constants.MaxNotificationPageSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			apierrors.BadRequest(c, "Invalid limit.")
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	notifications, err := h.notifications.ListByUser(userID, workspaceID, limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch notifications.")
		return
	}

	unread, err := h.notifications.CountUnread(userID, workspaceID)
	if err != nil {
		apierrors.InternalError(c, "Failed to count notifications.")
		return
	}

	items := make([]dto.NotificationDTO, len(notifications))
	for i, notification := range notifications {
		items[i] = dto.ToNotificationDTO(notification)
	}

	c.JSON(http.StatusOK, dto.NotificationListResponse{
		Notifications: items,
		UnreadCount:   int(unread),
	})
}

// MarkAllRead marks every unread notification read, optionally scoped to
// a workspace
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	notifications, err := h.notifications.MarkAllRead(userID, c.Query("workspaceId"))
	if err != nil {
		apierrors.InternalError(c, "Failed to mark notifications read.")
		return
	}

	items := make([]dto.NotificationDTO, len(notifications))
	for i, notification := range notifications {
		items[i] = dto.ToNotificationDTO(notification)
	}

	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// MarkRead marks one notification read. Users can only touch their own
// notifications.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	notification, err := h.notifications.MarkRead(c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Notification not found.")
		} else {
			apierrors.InternalError(c, "Failed to mark notification read.")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToNotificationDTO(*notification))
}
