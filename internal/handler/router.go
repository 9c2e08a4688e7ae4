package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homeserve/internal/handler/api"
	"homeserve/internal/handler/middleware"
	"homeserve/internal/pkg/config"
	"homeserve/internal/pkg/jwt"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	bookingHandler *api.BookingHandler,
	notificationHandler *api.NotificationHandler,
	feedbackHandler *api.FeedbackHandler,
	assistHandler *api.AssistHandler,
	watchHandler *api.WatchHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, bookingHandler, notificationHandler, feedbackHandler, assistHandler, watchHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	bookingHandler *api.BookingHandler,
	notificationHandler *api.NotificationHandler,
	feedbackHandler *api.FeedbackHandler,
	assistHandler *api.AssistHandler,
	watchHandler *api.WatchHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	customerOnly := authMiddleware.RequireRole(jwt.RoleCustomer)
	providerOnly := authMiddleware.RequireRole(jwt.RoleProvider)

	apiGroup := engine.Group("/api")
	apiGroup.Use(authMiddleware.RequireAuth())
	{
		bookings := apiGroup.Group("/bookings")
		{
			addRoutes(bookings, []route{
				{Method: http.MethodPost, Path: "", Handler: bookingHandler.CreateBooking, Mw: []gin.HandlerFunc{customerOnly}},
				{Method: http.MethodGet, Path: "", Handler: bookingHandler.ListUserBookings},
				{Method: http.MethodGet, Path: "/:id", Handler: bookingHandler.GetBooking},
				{Method: http.MethodGet, Path: "/:id/stream", Handler: bookingHandler.StreamBooking},
				{Method: http.MethodPost, Path: "/:id/accept", Handler: bookingHandler.AcceptBooking, Mw: []gin.HandlerFunc{providerOnly}},
				{Method: http.MethodPost, Path: "/:id/reject", Handler: bookingHandler.RejectBooking, Mw: []gin.HandlerFunc{providerOnly}},
				{Method: http.MethodPost, Path: "/:id/start", Handler: bookingHandler.StartService, Mw: []gin.HandlerFunc{providerOnly}},
				{Method: http.MethodPost, Path: "/:id/complete", Handler: bookingHandler.CompleteService, Mw: []gin.HandlerFunc{providerOnly}},
				{Method: http.MethodPost, Path: "/:id/payment", Handler: bookingHandler.RecordPayment, Mw: []gin.HandlerFunc{customerOnly}},
				{Method: http.MethodPost, Path: "/:id/feedback", Handler: feedbackHandler.Submit, Mw: []gin.HandlerFunc{customerOnly}},
				{Method: http.MethodGet, Path: "/:id/feedback", Handler: feedbackHandler.List},
			})
		}

		queue := apiGroup.Group("/queue")
		queue.Use(providerOnly)
		{
			addRoutes(queue, []route{
				{Method: http.MethodGet, Path: "", Handler: bookingHandler.ListQueue},
				{Method: http.MethodGet, Path: "/stream", Handler: bookingHandler.StreamQueue},
			})
		}

		notificationsGroup := apiGroup.Group("/notifications")
		{
			addRoutes(notificationsGroup, []route{
				{Method: http.MethodGet, Path: "", Handler: notificationHandler.List},
				{Method: http.MethodGet, Path: "/unread-count", Handler: notificationHandler.UnreadCount},
				{Method: http.MethodPost, Path: "/:id/read", Handler: notificationHandler.MarkRead},
				{Method: http.MethodPost, Path: "/read-all", Handler: notificationHandler.MarkAllRead},
			})
		}

		watchGroup := apiGroup.Group("/watch")
		{
			addRoutes(watchGroup, []route{
				{Method: http.MethodPost, Path: "/bind", Handler: watchHandler.Bind},
				{Method: http.MethodPost, Path: "/unbind", Handler: watchHandler.Unbind},
			})
		}

		addRoutes(apiGroup, []route{
			{Method: http.MethodPost, Path: "/assist", Handler: assistHandler.Ask},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
