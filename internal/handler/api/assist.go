package api

import (
	"net/http"

	reqdto "homeserve/internal/handler/dto/request"
	resdto "homeserve/internal/handler/dto/response"
	"homeserve/internal/handler/httperr"
	"homeserve/internal/infra"
	"homeserve/internal/infra/assist"

	"github.com/gin-gonic/gin"
)

type AssistHandler struct {
	client *assist.Client
}

func NewAssistHandler(client *assist.Client) *AssistHandler {
	return &AssistHandler{client: client}
}

// @Summary Assist passthrough
// @Description Relay a prompt to the external assist service
// @Tags assist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.AssistRequest true "Prompt"
// @Success 200 {object} resdto.AssistResponse
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /assist [post]
func (h *AssistHandler) Ask(c *gin.Context) {
	var req reqdto.AssistRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	reply, err := h.client.Send(c.Request.Context(), req.Message, req.Language)
	if err != nil {
		if infra.IsKind(err, infra.KindTransient) {
			httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Assist service unavailable", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusBadGateway, err, "Assist request failed", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.AssistResponse{Reply: reply})
}
