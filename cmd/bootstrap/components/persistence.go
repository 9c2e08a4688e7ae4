package components

import (
	"homeserve/internal/infra/repository"
	"homeserve/internal/usecase/commands"
	"homeserve/internal/usecase/queries"
	"homeserve/internal/usecase/watch"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		// Booking
		fx.Annotate(
			repository.NewBookingRepository,
			fx.As(new(commands.BookingRepository)),
			fx.As(new(queries.BookingReadStore)),
			fx.As(new(watch.BookingSource)),
		),
		// Feedback
		fx.Annotate(
			repository.NewFeedbackRepository,
			fx.As(new(commands.FeedbackRepository)),
			fx.As(new(queries.FeedbackReadStore)),
		),
	),
)
