package response

import (
	"time"

	"homeserve/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type SubmitFeedbackResponse struct {
	ID uuid.UUID `json:"id"`
}

type FeedbackResponse struct {
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

func FromFeedbackViews(views []*queries.FeedbackView) []*FeedbackResponse {
	out := make([]*FeedbackResponse, len(views))
	for i, v := range views {
		var resp FeedbackResponse
		_ = copier.Copy(&resp, v)
		out[i] = &resp
	}
	return out
}
