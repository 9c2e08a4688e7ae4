package queries

import (
	"context"
	"time"

	"homeserve/internal/domain/feedback"
	"homeserve/internal/pkg/errs"

	"github.com/google/uuid"
)

type FeedbackView struct {
	ID                 uuid.UUID `json:"id"`
	BookingID          uuid.UUID `json:"bookingId"`
	UserID             uuid.UUID `json:"userId"`
	ProviderID         uuid.UUID `json:"providerId"`
	ProviderName       string    `json:"providerName"`
	ServiceUsed        string    `json:"serviceUsed,omitempty"`
	ServiceCompletion  string    `json:"serviceCompletion,omitempty"`
	ExperienceRating   string    `json:"experienceRating,omitempty"`
	ProviderOnTime     bool      `json:"providerOnTime"`
	WorkQuality        int       `json:"workQuality"`
	IssueResolution    string    `json:"issueResolution,omitempty"`
	Recommendation     string    `json:"recommendation,omitempty"`
	AdditionalFeedback string    `json:"additionalFeedback,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

type FeedbackReadStore interface {
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*feedback.Feedback, error)
}

type FeedbackQueries interface {
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*FeedbackView, error)
}

type feedbackQueriesImpl struct {
	readStore FeedbackReadStore
}

func NewFeedbackQueries(readStore FeedbackReadStore) FeedbackQueries {
	return &feedbackQueriesImpl{readStore: readStore}
}

func (q *feedbackQueriesImpl) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*FeedbackView, error) {
	records, err := q.readStore.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreOperationFailed)
	}

	out := make([]*FeedbackView, len(records))
	for i, f := range records {
		a := f.Answers()
		out[i] = &FeedbackView{
			ID:                 f.ID(),
			BookingID:          f.BookingID(),
			UserID:             f.UserID(),
			ProviderID:         f.ProviderID(),
			ProviderName:       f.ProviderName(),
			ServiceUsed:        a.ServiceUsed,
			ServiceCompletion:  a.ServiceCompletion,
			ExperienceRating:   a.ExperienceRating,
			ProviderOnTime:     a.ProviderOnTime,
			WorkQuality:        a.WorkQuality,
			IssueResolution:    a.IssueResolution,
			Recommendation:     a.Recommendation,
			AdditionalFeedback: a.AdditionalFeedback,
			CreatedAt:          f.CreatedAt(),
		}
	}
	return out, nil
}
