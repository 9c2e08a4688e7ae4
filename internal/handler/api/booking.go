package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"homeserve/internal/infra/docstore"

	reqdto "homeserve/internal/handler/dto/request"
	resdto "homeserve/internal/handler/dto/response"
	"homeserve/internal/handler/httperr"
	"homeserve/internal/handler/middleware"
	"homeserve/internal/pkg/errs"
	"homeserve/internal/usecase/commands"
	"homeserve/internal/usecase/queries"
	"homeserve/internal/usecase/watch"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	commands commands.BookingCommands
	queries  queries.BookingQueries
	hub      *watch.Hub
}

func NewBookingHandler(cmds commands.BookingCommands, qs queries.BookingQueries, hub *watch.Hub) *BookingHandler {
	return &BookingHandler{
		commands: cmds,
		queries:  qs,
		hub:      hub,
	}
}

// @Summary Create booking
// @Description Request a new service booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.CreateBookingResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("user identity missing from context"), "Internal server error", nil)
		return
	}

	var req reqdto.CreateBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	id, err := h.commands.RequestBooking(c.Request.Context(), req.ToContact(userID), req.ToDetails())
	if err != nil {
		h.writeCommandError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.CreateBookingResponse{ID: id})
}

// @Summary Get booking
// @Description Get one booking with its derived progress steps
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary List user bookings
// @Description List all bookings of the authenticated user, most recent first
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.BookingResponse
// @Router /bookings [get]
func (h *BookingHandler) ListUserBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("user identity missing from context"), "Internal server error", nil)
		return
	}

	views, err := h.queries.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.writeCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingViews(views))
}

// @Summary List booking queue
// @Description Provider dashboard: all bookings or only those in one status
// @Tags queue
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter (pending, accepted, in-progress, completed, rejected, all)"
// @Success 200 {array} resdto.BookingResponse
// @Failure 422 {object} map[string]string
// @Router /queue [get]
func (h *BookingHandler) ListQueue(c *gin.Context) {
	views, err := h.queries.ListQueue(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.writeCommandError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingViews(views))
}

// @Summary Accept booking
// @Description Assign the authenticated provider to a pending booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/accept [post]
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errs.New("user identity missing from context"), "Internal server error", nil)
		return
	}

	err := h.commands.AcceptBooking(c.Request.Context(), id, providerID, middleware.GetUserName(c))
	if err != nil {
		h.writeCommandError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Reject booking
// @Tags bookings
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/reject [post]
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	h.applyTransition(c, h.commands.RejectBooking)
}

// @Summary Start service
// @Tags bookings
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/start [post]
func (h *BookingHandler) StartService(c *gin.Context) {
	h.applyTransition(c, h.commands.MarkInProgress)
}

// @Summary Complete service
// @Tags bookings
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) CompleteService(c *gin.Context) {
	h.applyTransition(c, h.commands.MarkCompleted)
}

// @Summary Record payment
// @Description Record the payment of a completed booking, at most once
// @Tags bookings
// @Accept json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.RecordPaymentRequest true "Payment"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /bookings/{id}/payment [post]
func (h *BookingHandler) RecordPayment(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req reqdto.RecordPaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	err := h.commands.RecordPayment(c.Request.Context(), id, req.Amount, req.Method)
	if err != nil {
		h.writeCommandError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Stream booking updates
// @Description Server-sent events feed of the booking's live view
// @Tags bookings
// @Produce text/event-stream
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Router /bookings/{id}/stream [get]
func (h *BookingHandler) StreamBooking(c *gin.Context) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	// Slow consumers are skipped rather than allowed to stall the
	// dispatch queue; the next snapshot supersedes the missed one anyway.
	views := make(chan *queries.BookingView, 16)
	unsub, err := h.hub.WatchBooking(c.Request.Context(), id, func(v *queries.BookingView) {
		select {
		case views <- v:
		default:
		}
	})
	if err != nil {
		h.writeCommandError(c, err)
		return
	}
	defer unsub()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(_ io.Writer) bool {
		select {
		case v := <-views:
			c.SSEvent("booking", resdto.FromBookingView(v))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// @Summary Stream pending queue
// @Description Server-sent events feed of the pending bookings queue
// @Tags queue
// @Produce text/event-stream
// @Security BearerAuth
// @Router /queue/stream [get]
func (h *BookingHandler) StreamQueue(c *gin.Context) {
	type queueEvent struct {
		Kind    string                  `json:"kind"`
		Booking *resdto.BookingResponse `json:"booking"`
	}

	events := make(chan queueEvent, 16)
	unsub, err := h.hub.WatchPendingQueue(c.Request.Context(), func(kind docstore.ChangeKind, v *queries.BookingView) {
		select {
		case events <- queueEvent{Kind: string(kind), Booking: resdto.FromBookingView(v)}:
		default:
		}
	})
	if err != nil {
		h.writeCommandError(c, err)
		return
	}
	defer unsub()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(_ io.Writer) bool {
		select {
		case e := <-events:
			c.SSEvent("queue", e)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *BookingHandler) applyTransition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) error) {
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	if err := op(c.Request.Context(), id); err != nil {
		h.writeCommandError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *BookingHandler) writeCommandError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrBookingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
	case errors.Is(err, errs.ErrBookingConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Booking was modified concurrently", nil)
	case errors.Is(err, errs.ErrInvalidTransition):
		httperr.AbortWithError(c, http.StatusConflict, err, "Invalid status transition", nil)
	case errors.Is(err, errs.ErrPaymentPrecondition):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Payment preconditions not met", nil)
	case errors.Is(err, errs.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Domain validation failed", nil)
	case errors.Is(err, errs.ErrStoreTransient):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Service temporarily unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
