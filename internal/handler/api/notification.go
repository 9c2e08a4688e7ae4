package api

import (
	"net/http"

	resdto "homeserve/internal/handler/dto/response"
	"homeserve/internal/usecase/notifications"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	center *notifications.Center
}

func NewNotificationHandler(center *notifications.Center) *NotificationHandler {
	return &NotificationHandler{center: center}
}

// @Summary List notifications
// @Description List session notifications, most recent first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.NotificationResponse
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, resdto.FromNotifications(h.center.List()))
}

// @Summary Unread count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.UnreadCountResponse
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, resdto.UnreadCountResponse{Count: h.center.UnreadCount()})
}

// @Summary Mark notification read
// @Description Idempotent; unknown ids are ignored
// @Tags notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	h.center.MarkRead(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// @Summary Mark all notifications read
// @Tags notifications
// @Security BearerAuth
// @Success 204
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	h.center.MarkAllRead()
	c.Status(http.StatusNoContent)
}
