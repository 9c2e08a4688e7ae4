//go:build unit

package watch_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"homeserve/internal/domain/booking"
	"homeserve/internal/infra/docstore"
	"homeserve/internal/infra/repository"
	"homeserve/internal/pkg/clock"
	"homeserve/internal/pkg/errs"
	"homeserve/internal/usecase/commands"
	"homeserve/internal/usecase/notifications"
	"homeserve/internal/usecase/queries"
	"homeserve/internal/usecase/watch"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Exercises the whole lifecycle through the real wiring: memory store,
// repositories, use cases, hub and notification center.
func TestBookingLifecycle(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	store := docstore.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	repo := repository.NewBookingRepository(store)
	clk := clock.NewMockClock(hubNow)
	cmds := commands.NewBookingUseCase(repo, clk, logger, time.Millisecond)
	qs := queries.NewBookingQueries(repo)
	center := notifications.NewCenter(logger)
	hub := watch.NewHub(repo, center, logger)

	customerID := uuid.New()
	id, err := cmds.RequestBooking(ctx,
		booking.Contact{UserID: customerID, FullName: "John Doe", Email: "john@example.com", Phone: "555-0100"},
		booking.Details{ServiceType: booking.ServiceElectrical, Date: "2024-02-01", TimeSlot: "morning", IsUrgent: true},
	)
	require.NoError(t, err)

	// Customer follows their booking for the rest of the session.
	require.NoError(t, hub.BindUser(ctx, &customerID))
	defer hub.Close()

	view, err := qs.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "pending", view.Status)
	require.Len(t, view.Steps, 4)
	assert.Equal(t, "Service Requested", view.Steps[0].Title)
	assert.True(t, view.Steps[0].Completed)

	// Two providers race; exactly one wins.
	providerA, providerB := uuid.New(), uuid.New()
	require.NoError(t, cmds.AcceptBooking(ctx, id, providerA, "Jane Smith"))
	errB := cmds.AcceptBooking(ctx, id, providerB, "Bob Jones")
	require.Error(t, errB)
	assert.True(t, isAnyErr(errB, errs.ErrInvalidTransition, errs.ErrBookingConflict))

	view, err = qs.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "accepted", view.Status)
	assert.Equal(t, "Jane Smith", view.ProviderName)
	assert.True(t, view.Steps[1].Completed)

	// The acceptance yields exactly one unread notification.
	require.Eventually(t, func() bool {
		return center.UnreadCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	clk.Add(time.Hour)
	require.NoError(t, cmds.MarkInProgress(ctx, id))
	clk.Add(2 * time.Hour)
	require.NoError(t, cmds.MarkCompleted(ctx, id))
	require.NoError(t, cmds.RecordPayment(ctx, id, 25000, "card"))

	view, err = qs.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "completed", view.Status)
	for i, step := range view.Steps {
		assert.True(t, step.Completed, "step %d", i)
	}
	assert.Equal(t, "completed", view.PaymentStatus)
	assert.Equal(t, int64(25000), view.PaymentAmount)

	require.Eventually(t, func() bool {
		return center.UnreadCount() == 3
	}, 2*time.Second, 10*time.Millisecond)

	items := center.List()
	require.Len(t, items, 3)
	// Most recent first.
	assert.Equal(t, notifications.EventCompleted, items[0].Type)
	assert.Equal(t, notifications.EventInProgress, items[1].Type)
	assert.Equal(t, notifications.EventAccepted, items[2].Type)

	center.MarkAllRead()
	assert.Equal(t, 0, center.UnreadCount())
}

func isAnyErr(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
