//go:build unit

package booking_test

import (
	"testing"
	"time"

	"homeserve/internal/domain/booking"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveSteps(t *testing.T) {
	t.Run("pending booking completes only the first step", func(t *testing.T) {
		b := newPendingBooking(t)
		steps := booking.DeriveSteps(b)

		require.Len(t, steps, 4)
		assert.Equal(t, booking.StepTitleRequested, steps[0].Title)
		assert.Equal(t, booking.StepTitleAssignment, steps[1].Title)
		assert.Equal(t, booking.StepTitleInitiation, steps[2].Title)
		assert.Equal(t, booking.StepTitleCompletion, steps[3].Title)

		assert.True(t, steps[0].Completed)
		require.NotNil(t, steps[0].Time)
		assert.Equal(t, b.CreatedAt(), *steps[0].Time)
		for _, s := range steps[1:] {
			assert.False(t, s.Completed)
			assert.Nil(t, s.Time)
		}
	})

	t.Run("accepted booking completes the assignment step with acceptedAt", func(t *testing.T) {
		b := newPendingBooking(t)
		acceptAt := testNow.Add(45 * time.Minute)
		require.NoError(t, b.Accept(uuid.New(), "Jane", acceptAt))

		steps := booking.DeriveSteps(b)
		assert.True(t, steps[1].Completed)
		require.NotNil(t, steps[1].Time)
		assert.Equal(t, acceptAt, *steps[1].Time)
		assert.False(t, steps[2].Completed)
		assert.False(t, steps[3].Completed)
	})

	t.Run("initiation step keeps the persisted start time", func(t *testing.T) {
		b := newPendingBooking(t)
		require.NoError(t, b.Accept(uuid.New(), "Jane", testNow))
		startAt := testNow.Add(time.Hour)
		require.NoError(t, b.StartService(startAt))

		steps := booking.DeriveSteps(b)
		assert.True(t, steps[2].Completed)
		require.NotNil(t, steps[2].Time)
		assert.Equal(t, startAt, *steps[2].Time)
	})

	t.Run("status threshold completes the step even without a timestamp", func(t *testing.T) {
		providerID := uuid.New()
		b := booking.Reconstruct(
			uuid.New(), validContact(), validDetails(),
			booking.StatusAccepted, &providerID, "Jane",
			nil, nil, nil,
			booking.Payment{}, testNow, testNow,
		)

		steps := booking.DeriveSteps(b)
		assert.True(t, steps[1].Completed)
		assert.Nil(t, steps[1].Time)
		assert.False(t, steps[2].Completed)
	})

	t.Run("rejected booking never completes later steps", func(t *testing.T) {
		b := newPendingBooking(t)
		require.NoError(t, b.Reject(testNow))

		steps := booking.DeriveSteps(b)
		assert.True(t, steps[0].Completed)
		assert.False(t, steps[1].Completed)
		assert.False(t, steps[2].Completed)
		assert.False(t, steps[3].Completed)
	})

	t.Run("deterministic on the same snapshot", func(t *testing.T) {
		b := newPendingBooking(t)
		require.NoError(t, b.Accept(uuid.New(), "Jane", testNow))
		require.NoError(t, b.StartService(testNow.Add(time.Hour)))

		first := booking.DeriveSteps(b)
		second := booking.DeriveSteps(b)
		assert.Empty(t, cmp.Diff(first, second))
	})

	t.Run("completion is monotonic along the forward chain", func(t *testing.T) {
		b := newPendingBooking(t)
		completed := func() [4]bool {
			var out [4]bool
			for i, s := range booking.DeriveSteps(b) {
				out[i] = s.Completed
			}
			return out
		}

		prev := completed()
		advance := []func() error{
			func() error { return b.Accept(uuid.New(), "Jane", testNow) },
			func() error { return b.StartService(testNow.Add(time.Hour)) },
			func() error { return b.Complete(testNow.Add(2 * time.Hour)) },
		}
		for _, step := range advance {
			require.NoError(t, step())
			cur := completed()
			for i := range cur {
				assert.False(t, prev[i] && !cur[i], "step %d flipped back to incomplete", i)
			}
			prev = cur
		}
		assert.Equal(t, [4]bool{true, true, true, true}, prev)
	})
}
