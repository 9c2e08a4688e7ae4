//go:build unit

package commands_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"homeserve/internal/domain/booking"
	"homeserve/internal/domain/feedback"
	"homeserve/internal/pkg/clock"
	"homeserve/internal/pkg/errs"
	"homeserve/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeedbackRepo struct {
	created []*feedback.Feedback
}

func (r *fakeFeedbackRepo) Create(_ context.Context, f *feedback.Feedback) error {
	r.created = append(r.created, f)
	return nil
}

func TestSubmitFeedback(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	setup := func(t *testing.T) (commands.FeedbackCommands, *fakeBookingRepo, *fakeFeedbackRepo, uuid.UUID) {
		t.Helper()
		bookings := newFakeBookingRepo()
		b, err := booking.NewBooking(validContact(), validDetails(), baseTime)
		require.NoError(t, err)
		require.NoError(t, bookings.Create(ctx, b))

		feedbacks := &fakeFeedbackRepo{}
		uc := commands.NewFeedbackUseCase(bookings, feedbacks, clock.NewMockClock(baseTime), logger)
		return uc, bookings, feedbacks, b.ID()
	}

	answers := feedback.Answers{
		ServiceUsed:       "plumbing",
		ServiceCompletion: "Completed",
		WorkQuality:       5,
		Recommendation:    "Definitely",
	}

	t.Run("accepted regardless of booking status", func(t *testing.T) {
		uc, _, feedbacks, bookingID := setup(t)

		// The booking is still pending; status is deliberately not a
		// precondition for feedback.
		id, err := uc.SubmitFeedback(ctx, bookingID, uuid.New(), uuid.New(), "Jane Smith", answers)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
		require.Len(t, feedbacks.created, 1)
		assert.Equal(t, bookingID, feedbacks.created[0].BookingID())
		assert.Equal(t, baseTime, feedbacks.created[0].CreatedAt())
	})

	t.Run("booking must exist", func(t *testing.T) {
		uc, _, feedbacks, _ := setup(t)
		_, err := uc.SubmitFeedback(ctx, uuid.New(), uuid.New(), uuid.New(), "Jane", answers)
		assert.ErrorIs(t, err, errs.ErrBookingNotFound)
		assert.Empty(t, feedbacks.created)
	})

	t.Run("work quality outside 1-5 is rejected", func(t *testing.T) {
		uc, _, feedbacks, bookingID := setup(t)
		bad := answers
		bad.WorkQuality = 6
		_, err := uc.SubmitFeedback(ctx, bookingID, uuid.New(), uuid.New(), "Jane", bad)
		assert.ErrorIs(t, err, errs.ErrDomainValidation)
		assert.Empty(t, feedbacks.created)
	})

	t.Run("provider name is required", func(t *testing.T) {
		uc, _, _, bookingID := setup(t)
		_, err := uc.SubmitFeedback(ctx, bookingID, uuid.New(), uuid.New(), " ", answers)
		assert.ErrorIs(t, err, errs.ErrDomainValidation)
	})
}
