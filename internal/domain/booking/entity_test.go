//go:build unit

package booking_test

import (
	"testing"
	"time"

	"homeserve/internal/domain/booking"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func validContact() booking.Contact {
	return booking.Contact{
		UserID:   uuid.New(),
		FullName: "A",
		Email:    "a@x.com",
		Phone:    "123",
	}
}

func validDetails() booking.Details {
	return booking.Details{
		ServiceType: booking.ServicePlumbing,
		Date:        "2024-01-01",
		TimeSlot:    "09:00 AM - 11:00 AM",
		Address:     "12 Main St",
	}
}

func newPendingBooking(t *testing.T) *booking.Booking {
	t.Helper()
	b, err := booking.NewBooking(validContact(), validDetails(), testNow)
	require.NoError(t, err)
	return b
}

func TestNewBooking(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		b := newPendingBooking(t)

		assert.NotEqual(t, uuid.Nil, b.ID())
		assert.Equal(t, booking.StatusPending, b.Status())
		assert.Nil(t, b.PreferredProvider())
		assert.Nil(t, b.AcceptedAt())
		assert.Equal(t, testNow, b.CreatedAt())
		assert.Equal(t, b.CreatedAt(), b.UpdatedAt())
	})

	t.Run("validation", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(c *booking.Contact, d *booking.Details)
			errIs  error
		}{
			{
				name:   "missing full name",
				mutate: func(c *booking.Contact, _ *booking.Details) { c.FullName = "  " },
				errIs:  booking.ErrMissingFullName,
			},
			{
				name:   "missing email",
				mutate: func(c *booking.Contact, _ *booking.Details) { c.Email = "" },
				errIs:  booking.ErrMissingEmail,
			},
			{
				name:   "missing phone",
				mutate: func(c *booking.Contact, _ *booking.Details) { c.Phone = "" },
				errIs:  booking.ErrMissingPhone,
			},
			{
				name:   "missing date",
				mutate: func(_ *booking.Contact, d *booking.Details) { d.Date = "" },
				errIs:  booking.ErrMissingDate,
			},
			{
				name:   "unknown service type",
				mutate: func(_ *booking.Contact, d *booking.Details) { d.ServiceType = "exorcism" },
				errIs:  booking.ErrInvalidServiceType,
			},
			{
				name:   "empty service type",
				mutate: func(_ *booking.Contact, d *booking.Details) { d.ServiceType = "" },
				errIs:  booking.ErrInvalidServiceType,
			},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				contact := validContact()
				details := validDetails()
				tc.mutate(&contact, &details)

				_, err := booking.NewBooking(contact, details, testNow)
				assert.ErrorIs(t, err, tc.errIs)
			})
		}
	})
}

func TestAccept(t *testing.T) {
	providerID := uuid.New()

	t.Run("pending booking can be accepted", func(t *testing.T) {
		b := newPendingBooking(t)
		acceptAt := testNow.Add(30 * time.Minute)

		require.NoError(t, b.Accept(providerID, "Jane", acceptAt))

		assert.Equal(t, booking.StatusAccepted, b.Status())
		require.NotNil(t, b.PreferredProvider())
		assert.Equal(t, providerID, *b.PreferredProvider())
		assert.Equal(t, "Jane", b.ProviderName())
		require.NotNil(t, b.AcceptedAt())
		assert.Equal(t, acceptAt, *b.AcceptedAt())
	})

	t.Run("second accept fails and keeps the first provider", func(t *testing.T) {
		b := newPendingBooking(t)
		require.NoError(t, b.Accept(providerID, "Jane", testNow))

		err := b.Accept(uuid.New(), "John", testNow.Add(time.Minute))
		assert.ErrorIs(t, err, booking.ErrProviderAssigned)
		assert.Equal(t, providerID, *b.PreferredProvider())
		assert.Equal(t, "Jane", b.ProviderName())
	})

	t.Run("rejected booking cannot be accepted", func(t *testing.T) {
		b := newPendingBooking(t)
		require.NoError(t, b.Reject(testNow))

		err := b.Accept(providerID, "Jane", testNow)
		assert.ErrorIs(t, err, booking.ErrNotPending)
	})
}

func TestForwardChain(t *testing.T) {
	t.Run("full lifecycle", func(t *testing.T) {
		b := newPendingBooking(t)
		require.NoError(t, b.Accept(uuid.New(), "Jane", testNow))
		require.NoError(t, b.StartService(testNow.Add(time.Hour)))
		require.NoError(t, b.Complete(testNow.Add(2*time.Hour)))

		assert.Equal(t, booking.StatusCompleted, b.Status())
		assert.True(t, b.IsTerminal())
		require.NotNil(t, b.StartedAt())
		require.NotNil(t, b.CompletedAt())
	})

	t.Run("cannot start before acceptance", func(t *testing.T) {
		b := newPendingBooking(t)
		assert.ErrorIs(t, b.StartService(testNow), booking.ErrNotAccepted)
	})

	t.Run("cannot complete before start", func(t *testing.T) {
		b := newPendingBooking(t)
		require.NoError(t, b.Accept(uuid.New(), "Jane", testNow))
		assert.ErrorIs(t, b.Complete(testNow), booking.ErrNotInProgress)
	})

	t.Run("no transition out of completed", func(t *testing.T) {
		b := newPendingBooking(t)
		require.NoError(t, b.Accept(uuid.New(), "Jane", testNow))
		require.NoError(t, b.StartService(testNow))
		require.NoError(t, b.Complete(testNow))

		assert.ErrorIs(t, b.StartService(testNow), booking.ErrNotAccepted)
		assert.ErrorIs(t, b.Reject(testNow), booking.ErrNotPending)
	})

	t.Run("no transition out of rejected", func(t *testing.T) {
		b := newPendingBooking(t)
		require.NoError(t, b.Reject(testNow))

		assert.ErrorIs(t, b.StartService(testNow), booking.ErrNotAccepted)
		assert.ErrorIs(t, b.Complete(testNow), booking.ErrNotInProgress)
	})
}

func TestRecordPayment(t *testing.T) {
	completedBooking := func(t *testing.T) *booking.Booking {
		t.Helper()
		b := newPendingBooking(t)
		require.NoError(t, b.Accept(uuid.New(), "Jane", testNow))
		require.NoError(t, b.StartService(testNow))
		require.NoError(t, b.Complete(testNow))
		return b
	}

	t.Run("payment before completion fails", func(t *testing.T) {
		b := newPendingBooking(t)
		assert.ErrorIs(t, b.RecordPayment(500, "gpay", testNow), booking.ErrNotCompleted)
	})

	t.Run("payment after completion succeeds once", func(t *testing.T) {
		b := completedBooking(t)
		paidAt := testNow.Add(3 * time.Hour)

		require.NoError(t, b.RecordPayment(500, "gpay", paidAt))
		p := b.Payment()
		assert.Equal(t, booking.PaymentStatusCompleted, p.Status)
		assert.Equal(t, int64(500), p.Amount)
		assert.Equal(t, "gpay", p.Method)
		require.NotNil(t, p.RecordedAt)
		assert.Equal(t, paidAt, *p.RecordedAt)

		assert.ErrorIs(t, b.RecordPayment(500, "gpay", paidAt), booking.ErrPaymentRecorded)
	})

	t.Run("payment validation", func(t *testing.T) {
		b := completedBooking(t)
		assert.ErrorIs(t, b.RecordPayment(-1, "gpay", testNow), booking.ErrNegativePayment)
		assert.ErrorIs(t, b.RecordPayment(500, " ", testNow), booking.ErrMissingPaymentMethod)
	})
}

func TestStatusMachine(t *testing.T) {
	cases := []struct {
		from, to booking.Status
		allowed  bool
	}{
		{booking.StatusPending, booking.StatusAccepted, true},
		{booking.StatusPending, booking.StatusRejected, true},
		{booking.StatusAccepted, booking.StatusInProgress, true},
		{booking.StatusInProgress, booking.StatusCompleted, true},
		{booking.StatusPending, booking.StatusInProgress, false},
		{booking.StatusPending, booking.StatusCompleted, false},
		{booking.StatusAccepted, booking.StatusPending, false},
		{booking.StatusAccepted, booking.StatusRejected, false},
		{booking.StatusCompleted, booking.StatusInProgress, false},
		{booking.StatusRejected, booking.StatusAccepted, false},
		{booking.StatusCompleted, booking.StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
