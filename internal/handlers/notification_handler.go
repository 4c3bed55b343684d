package handlers

import (
	"io"
	"net/http"

	"github.com/ArowuTest/raffle-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GetNotifications handles GET /notifications?limit=&offset=
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	page := parsePage(c)
	notifications, total, err := h.notificationService.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         total,
		"limit":         page.Limit,
		"offset":        page.Offset,
	})
}

// Stream handles GET /notifications/stream as server-sent events. Each event
// is named after the notification type.
func (h *NotificationHandler) Stream(c *gin.Context) {
	events := h.notificationService.Subscribe(c.Request.Context())
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		if n, ok := <-events; ok {
			c.SSEvent(n.Type, n)
			return true
		}
		return false
	})
}
