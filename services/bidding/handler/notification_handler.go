package handler

import (
	"net/http"

	model "auction-engine/internal/models"
	"auction-engine/services/bidding/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=notification_handler.go -destination=mock_inbox.go -package=handler

type InboxInterface interface {
	List(userID string, unreadOnly bool) []model.Notification
	MarkRead(userID, notificationID string) error
	MarkAllRead(userID string) int
}

type NotificationHandler struct {
	inbox InboxInterface
}

func NewNotificationHandler(inbox InboxInterface) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

// ListNotificationsHandler handles GET /users/:user_id/notifications
func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	userID := c.Param("user_id")
	unreadOnly := c.Query("unread") == "true"

	notifications := h.inbox.List(userID, unreadOnly)
	if notifications == nil {
		notifications = []model.Notification{}
	}

	utils.JSONResponse(c, http.StatusOK, notifications, "notifications retrieved successfully")
	helpers.LogSuccess("ListNotificationsHandler", "notifications retrieved successfully", map[string]any{
		"user_id": userID,
		"unread":  unreadOnly,
		"count":   len(notifications),
	})
}

// MarkReadHandler handles POST /users/:user_id/notifications/:notification_id/read
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	userID := c.Param("user_id")
	notificationID := c.Param("notification_id")

	if err := h.inbox.MarkRead(userID, notificationID); err != nil {
		helpers.WriteError(c, "MarkReadHandler", err, map[string]any{
			"user_id":         userID,
			"notification_id": notificationID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"notificationId": notificationID, "read": true}, "notification marked as read")
}

// MarkAllReadHandler handles POST /users/:user_id/notifications/read
func (h *NotificationHandler) MarkAllReadHandler(c *gin.Context) {
	userID := c.Param("user_id")
	changed := h.inbox.MarkAllRead(userID)

	utils.JSONResponse(c, http.StatusOK, gin.H{"updated": changed}, "notifications marked as read")
	helpers.LogSuccess("MarkAllReadHandler", "notifications marked as read", map[string]any{
		"user_id": userID,
		"updated": changed,
	})
}
