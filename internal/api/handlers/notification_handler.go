package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AndreiCalugar/FertiHub/internal/services"
)

// NotificationHandler handles the in-app notification endpoints.
type NotificationHandler struct {
	notificationService services.INotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService services.INotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /v1/notifications?unread=true&limit=20.
func (h *NotificationHandler) List(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}

	notifications, err := h.notificationService.List(c.Request.Context(), currentUserID(c), unreadOnly, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications})
}

// UnreadCount handles GET /v1/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notificationService.UnreadCount(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

type markReadRequest struct {
	NotificationID string `json:"notification_id"`
	All            bool   `json:"all"`
}

// MarkRead handles POST /v1/notifications/mark-read: one notification by ID,
// or everything unread with {"all": true}.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.All {
		updated, err := h.notificationService.MarkAllRead(c.Request.Context(), currentUserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
		return
	}

	if req.NotificationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "notification_id or all required"})
		return
	}
	err := h.notificationService.MarkRead(c.Request.Context(), currentUserID(c), req.NotificationID)
	if err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
