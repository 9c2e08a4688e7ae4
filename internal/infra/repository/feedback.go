package repository

import (
	"context"
	"encoding/json"
	"time"

	"homeserve/internal/domain/feedback"
	"homeserve/internal/infra"
	"homeserve/internal/infra/docstore"

	"github.com/google/uuid"
)

const feedbackCollection = "feedback"

type feedbackRecord struct {
	ID                 uuid.UUID `json:"id"`
	BookingID          uuid.UUID `json:"bookingId"`
	UserID             uuid.UUID `json:"userId"`
	ProviderID         uuid.UUID `json:"providerId"`
	ProviderName       string    `json:"providerName"`
	ServiceUsed        string    `json:"serviceUsed"`
	ServiceCompletion  string    `json:"serviceCompletion"`
	ExperienceRating   string    `json:"experienceRating"`
	ProviderOnTime     bool      `json:"providerOnTime"`
	WorkQuality        int       `json:"workQuality"`
	IssueResolution    string    `json:"issueResolution"`
	Recommendation     string    `json:"recommendation"`
	AdditionalFeedback string    `json:"additionalFeedback"`
	CreatedAt          time.Time `json:"createdAt"`
}

// FeedbackRepository is write-mostly: records are appended once and listed
// per booking, never updated.
type FeedbackRepository struct {
	store docstore.Store
}

func NewFeedbackRepository(store docstore.Store) *FeedbackRepository {
	return &FeedbackRepository{store: store}
}

func (r *FeedbackRepository) Create(ctx context.Context, f *feedback.Feedback) error {
	answers := f.Answers()
	rec := feedbackRecord{
		ID:                 f.ID(),
		BookingID:          f.BookingID(),
		UserID:             f.UserID(),
		ProviderID:         f.ProviderID(),
		ProviderName:       f.ProviderName(),
		ServiceUsed:        answers.ServiceUsed,
		ServiceCompletion:  answers.ServiceCompletion,
		ExperienceRating:   answers.ExperienceRating,
		ProviderOnTime:     answers.ProviderOnTime,
		WorkQuality:        answers.WorkQuality,
		IssueResolution:    answers.IssueResolution,
		Recommendation:     answers.Recommendation,
		AdditionalFeedback: answers.AdditionalFeedback,
		CreatedAt:          f.CreatedAt(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return infra.WrapRepoErr(infra.KindStoreFailure, "failed to encode feedback", err)
	}
	if err := r.store.Create(ctx, feedbackCollection, f.ID(), data, f.CreatedAt()); err != nil {
		return wrapStoreErr("failed to create feedback", err)
	}
	return nil
}

func (r *FeedbackRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*feedback.Feedback, error) {
	docs, err := r.store.List(ctx, docstore.Query{
		Collection: feedbackCollection,
		Filters:    []docstore.Filter{{Field: "bookingId", Equals: bookingID.String()}},
	})
	if err != nil {
		return nil, wrapStoreErr("failed to list feedback", err)
	}

	out := make([]*feedback.Feedback, 0, len(docs))
	for _, doc := range docs {
		var rec feedbackRecord
		if err := json.Unmarshal(doc.Data, &rec); err != nil {
			return nil, infra.WrapRepoErr(infra.KindStoreFailure, "failed to decode feedback document", err)
		}
		f := feedback.Reconstruct(rec.ID, rec.BookingID, rec.UserID, rec.ProviderID, rec.ProviderName, feedback.Answers{
			ServiceUsed:        rec.ServiceUsed,
			ServiceCompletion:  rec.ServiceCompletion,
			ExperienceRating:   rec.ExperienceRating,
			ProviderOnTime:     rec.ProviderOnTime,
			WorkQuality:        rec.WorkQuality,
			IssueResolution:    rec.IssueResolution,
			Recommendation:     rec.Recommendation,
			AdditionalFeedback: rec.AdditionalFeedback,
		}, rec.CreatedAt)
		out = append(out, f)
	}
	return out, nil
}
