package api

import (
	"net/http"

	"homeserve/internal/handler/httperr"
	"homeserve/internal/handler/middleware"
	"homeserve/internal/pkg/errs"
	"homeserve/internal/usecase/watch"

	"github.com/gin-gonic/gin"
)

// WatchHandler manages the session-scoped user watch that feeds the
// notification center. Binding replaces any previous watch; unbinding is
// the logout edge.
type WatchHandler struct {
	hub *watch.Hub
}

func NewWatchHandler(hub *watch.Hub) *WatchHandler {
	return &WatchHandler{hub: hub}
}

// @Summary Bind user watch
// @Description Start observing the authenticated user's bookings for notifications
// @Tags watch
// @Security BearerAuth
// @Success 204
// @Router /watch/bind [post]
func (h *WatchHandler) Bind(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("user identity missing from context"), "Internal server error", nil)
		return
	}

	if err := h.hub.BindUser(c.Request.Context(), &userID); err != nil {
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Failed to start watch", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Unbind user watch
// @Tags watch
// @Security BearerAuth
// @Success 204
// @Router /watch/unbind [post]
func (h *WatchHandler) Unbind(c *gin.Context) {
	if err := h.hub.BindUser(c.Request.Context(), nil); err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
