package commands

import (
	"context"

	"homeserve/internal/domain/booking"
	"homeserve/internal/domain/feedback"

	"github.com/google/uuid"
)

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	// Update applies the entity state guarded by the status the caller
	// observed before mutating.
	Update(ctx context.Context, b *booking.Booking, expectedStatus booking.Status) error
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *feedback.Feedback) error
}
