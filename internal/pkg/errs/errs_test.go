//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"homeserve/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	t.Run("marked sentinel is visible to errors.Is", func(t *testing.T) {
		marked := errs.Mark(errs.New("status guard failed"), errs.ErrBookingConflict)
		assert.True(t, errors.Is(marked, errs.ErrBookingConflict))
	})

	t.Run("original cause stays in the unwrap chain", func(t *testing.T) {
		cause := errors.New("connection reset")
		marked := errs.Mark(errs.Wrap(cause, "update booking"), errs.ErrStoreTransient)
		assert.True(t, errors.Is(marked, errs.ErrStoreTransient))
		assert.True(t, errors.Is(marked, cause))
	})

	t.Run("nil cause yields the sentinel itself", func(t *testing.T) {
		assert.ErrorIs(t, errs.Mark(nil, errs.ErrBookingNotFound), errs.ErrBookingNotFound)
	})

	t.Run("unrelated sentinels do not match", func(t *testing.T) {
		marked := errs.Mark(errs.New("missing"), errs.ErrBookingNotFound)
		assert.False(t, errors.Is(marked, errs.ErrBookingConflict))
	})
}
