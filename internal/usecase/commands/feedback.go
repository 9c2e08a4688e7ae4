package commands

import (
	"context"
	"log/slog"

	"homeserve/internal/domain/feedback"
	"homeserve/internal/pkg/clock"
	"homeserve/internal/pkg/errs"

	"github.com/google/uuid"
)

// FeedbackCommands appends feedback records. The record is independent of
// the booking state machine and is never reconciled with booking status.
type FeedbackCommands interface {
	SubmitFeedback(ctx context.Context, bookingID, userID, providerID uuid.UUID, providerName string, answers feedback.Answers) (uuid.UUID, error)
}

type feedbackUseCaseImpl struct {
	bookings BookingRepository
	repo     FeedbackRepository
	clock    clock.Clock
	logger   *slog.Logger
}

func NewFeedbackUseCase(bookings BookingRepository, repo FeedbackRepository, clk clock.Clock, logger *slog.Logger) FeedbackCommands {
	return &feedbackUseCaseImpl{
		bookings: bookings,
		repo:     repo,
		clock:    clk,
		logger:   logger,
	}
}

func (u *feedbackUseCaseImpl) SubmitFeedback(ctx context.Context, bookingID, userID, providerID uuid.UUID, providerName string, answers feedback.Answers) (uuid.UUID, error) {
	// The booking must exist, but its status is deliberately not checked.
	if _, err := u.bookings.FindByID(ctx, bookingID); err != nil {
		return uuid.Nil, mapStoreErr(err)
	}

	f, err := feedback.NewFeedback(bookingID, userID, providerID, providerName, answers, u.clock.Now())
	if err != nil {
		return uuid.Nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	if err := u.repo.Create(ctx, f); err != nil {
		return uuid.Nil, mapStoreErr(err)
	}
	u.logger.Info("feedback submitted", "booking_id", bookingID, "provider_id", providerID)
	return f.ID(), nil
}
