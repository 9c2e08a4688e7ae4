package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"homeserve/internal/domain/booking"
	"homeserve/internal/infra"
	"homeserve/internal/pkg/clock"
	"homeserve/internal/pkg/errs"

	"github.com/google/uuid"
)

// BookingCommands is the only surface allowed to change booking status.
// Every mutation is confirmed by the store before it returns; nothing is
// applied optimistically.
type BookingCommands interface {
	RequestBooking(ctx context.Context, customer booking.Contact, details booking.Details) (uuid.UUID, error)
	AcceptBooking(ctx context.Context, bookingID, providerID uuid.UUID, providerName string) error
	RejectBooking(ctx context.Context, bookingID uuid.UUID) error
	MarkInProgress(ctx context.Context, bookingID uuid.UUID) error
	MarkCompleted(ctx context.Context, bookingID uuid.UUID) error
	RecordPayment(ctx context.Context, bookingID uuid.UUID, amount int64, method string) error
}

type bookingUseCaseImpl struct {
	repo       BookingRepository
	clock      clock.Clock
	logger     *slog.Logger
	retryDelay time.Duration
}

func NewBookingUseCase(repo BookingRepository, clk clock.Clock, logger *slog.Logger, retryDelay time.Duration) BookingCommands {
	return &bookingUseCaseImpl{
		repo:       repo,
		clock:      clk,
		logger:     logger,
		retryDelay: retryDelay,
	}
}

func (u *bookingUseCaseImpl) RequestBooking(ctx context.Context, customer booking.Contact, details booking.Details) (uuid.UUID, error) {
	b, err := booking.NewBooking(customer, details, u.clock.Now())
	if err != nil {
		return uuid.Nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	if err := u.withRetry(ctx, func() error { return u.repo.Create(ctx, b) }); err != nil {
		return uuid.Nil, mapStoreErr(err)
	}
	u.logger.Info("booking requested", "booking_id", b.ID(), "service_type", b.Details().ServiceType)
	return b.ID(), nil
}

func (u *bookingUseCaseImpl) AcceptBooking(ctx context.Context, bookingID, providerID uuid.UUID, providerName string) error {
	return u.transition(ctx, bookingID, "accept", func(b *booking.Booking) error {
		return b.Accept(providerID, providerName, u.clock.Now())
	})
}

func (u *bookingUseCaseImpl) RejectBooking(ctx context.Context, bookingID uuid.UUID) error {
	return u.transition(ctx, bookingID, "reject", func(b *booking.Booking) error {
		return b.Reject(u.clock.Now())
	})
}

func (u *bookingUseCaseImpl) MarkInProgress(ctx context.Context, bookingID uuid.UUID) error {
	return u.transition(ctx, bookingID, "start", func(b *booking.Booking) error {
		return b.StartService(u.clock.Now())
	})
}

func (u *bookingUseCaseImpl) MarkCompleted(ctx context.Context, bookingID uuid.UUID) error {
	return u.transition(ctx, bookingID, "complete", func(b *booking.Booking) error {
		return b.Complete(u.clock.Now())
	})
}

func (u *bookingUseCaseImpl) RecordPayment(ctx context.Context, bookingID uuid.UUID, amount int64, method string) error {
	return u.transition(ctx, bookingID, "record payment", func(b *booking.Booking) error {
		return b.RecordPayment(amount, method, u.clock.Now())
	})
}

// transition reads the booking, applies the state change, and writes it
// back guarded by the status it read. The guard turns a lost
// concurrent-write race into ErrBookingConflict instead of a silent
// last-write-wins overwrite.
func (u *bookingUseCaseImpl) transition(ctx context.Context, bookingID uuid.UUID, action string, apply func(*booking.Booking) error) error {
	var b *booking.Booking
	err := u.withRetry(ctx, func() error {
		var findErr error
		b, findErr = u.repo.FindByID(ctx, bookingID)
		return findErr
	})
	if err != nil {
		return mapStoreErr(err)
	}

	observedStatus := b.Status()
	if err := apply(b); err != nil {
		return mapDomainErr(err)
	}

	err = u.withRetry(ctx, func() error { return u.repo.Update(ctx, b, observedStatus) })
	if err != nil {
		return mapStoreErr(err)
	}
	u.logger.Info("booking transition applied",
		"booking_id", bookingID, "action", action, "status", b.Status())
	return nil
}

// withRetry applies the retry-once policy for transient store failures.
func (u *bookingUseCaseImpl) withRetry(ctx context.Context, op func() error) error {
	err := op()
	if err == nil || !infra.IsKind(err, infra.KindTransient) {
		return err
	}

	u.logger.Warn("transient store failure, retrying once", "error", err)
	select {
	case <-time.After(u.retryDelay):
	case <-ctx.Done():
		return err
	}
	return op()
}

func mapStoreErr(err error) error {
	switch {
	case infra.IsKind(err, infra.KindNotFound):
		return errs.Mark(err, errs.ErrBookingNotFound)
	case infra.IsKind(err, infra.KindConflict):
		return errs.Mark(err, errs.ErrBookingConflict)
	case infra.IsKind(err, infra.KindTransient):
		return errs.Mark(err, errs.ErrStoreTransient)
	default:
		return errs.Mark(err, errs.ErrStoreOperationFailed)
	}
}

func mapDomainErr(err error) error {
	switch {
	case errors.Is(err, booking.ErrProviderAssigned):
		return errs.Mark(err, errs.ErrInvalidTransition)
	case errors.Is(err, booking.ErrNotPending),
		errors.Is(err, booking.ErrNotAccepted),
		errors.Is(err, booking.ErrNotInProgress):
		return errs.Mark(err, errs.ErrInvalidTransition)
	case errors.Is(err, booking.ErrNotCompleted),
		errors.Is(err, booking.ErrPaymentRecorded):
		return errs.Mark(err, errs.ErrPaymentPrecondition)
	default:
		return errs.Mark(err, errs.ErrDomainValidation)
	}
}
