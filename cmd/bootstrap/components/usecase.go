package components

import (
	"log/slog"

	"homeserve/internal/pkg/clock"
	"homeserve/internal/pkg/config"
	"homeserve/internal/usecase/commands"
	"homeserve/internal/usecase/notifications"
	"homeserve/internal/usecase/queries"
	"homeserve/internal/usecase/watch"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
	usecaseWatchModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	notifications.NewCenter,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		NewBookingCommands,
		commands.NewFeedbackUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewFeedbackQueries,
	),
)

var usecaseWatchModule = fx.Module("usecase/watch",
	fx.Provide(
		NewHub,
	),
)

func NewBookingCommands(repo commands.BookingRepository, clk clock.Clock, logger *slog.Logger, cfg config.Config) commands.BookingCommands {
	return commands.NewBookingUseCase(repo, clk, logger, cfg.Store.RetryDelay)
}

func NewHub(lc fx.Lifecycle, source watch.BookingSource, center *notifications.Center, logger *slog.Logger) *watch.Hub {
	hub := watch.NewHub(source, center, logger)
	lc.Append(stopHook(hub.Close))
	return hub
}
