package api

import (
	"errors"
	"net/http"

	reqdto "homeserve/internal/handler/dto/request"
	resdto "homeserve/internal/handler/dto/response"
	"homeserve/internal/handler/httperr"
	"homeserve/internal/handler/middleware"
	"homeserve/internal/pkg/errs"
	"homeserve/internal/usecase/commands"
	"homeserve/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FeedbackHandler struct {
	feedback commands.FeedbackCommands
	queries  queries.FeedbackQueries
}

func NewFeedbackHandler(feedback commands.FeedbackCommands, qs queries.FeedbackQueries) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, queries: qs}
}

// @Summary Submit feedback
// @Description Record service feedback for a booking
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.SubmitFeedbackRequest true "Feedback"
// @Success 201 {object} resdto.SubmitFeedbackResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /bookings/{id}/feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("user identity missing from context"), "Internal server error", nil)
		return
	}

	var req reqdto.SubmitFeedbackRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	id, err := h.feedback.SubmitFeedback(c.Request.Context(), bookingID, userID, req.ProviderID, req.ProviderName, req.ToAnswers())
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrBookingNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
		case errors.Is(err, errs.ErrDomainValidation):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Domain validation failed", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.SubmitFeedbackResponse{ID: id})
}

// @Summary List feedback
// @Description List all feedback submitted for a booking
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {array} resdto.FeedbackResponse
// @Failure 400 {object} map[string]string
// @Router /bookings/{id}/feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}

	views, err := h.queries.ListByBooking(c.Request.Context(), bookingID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromFeedbackViews(views))
}
