package handler

import (
	"net/http"

	"sound-service/configs/middleware"
	"sound-service/internal/service"
	"sound-service/pkg/apperr"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.notificationService.List(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	notificationID, err := parseIDParam(c, "notificationId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification ID format"})
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), notificationID, userID); err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification marked read"})
}

// Register routes
func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.Use(middleware.Auth())
		notifications.GET("", h.List)
		notifications.PATCH("/:notificationId/read", h.MarkRead)
	}
}
