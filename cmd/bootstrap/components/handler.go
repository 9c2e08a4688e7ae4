package components

import (
	"context"

	"homeserve/internal/handler"
	"homeserve/internal/handler/api"
	"homeserve/internal/handler/middleware"
	"homeserve/internal/infra/assist"
	"homeserve/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewNotificationHandler,
		api.NewFeedbackHandler,
		api.NewAssistHandler,
		api.NewWatchHandler,
		NewAssistClient,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)

func NewAssistClient(cfg config.Config) *assist.Client {
	return assist.NewClient(cfg.Assist)
}

func stopHook(fn func()) fx.Hook {
	return fx.Hook{
		OnStop: func(_ context.Context) error {
			fn()
			return nil
		},
	}
}
