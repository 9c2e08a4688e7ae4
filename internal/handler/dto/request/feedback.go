package request

import (
	"homeserve/internal/domain/feedback"

	"github.com/google/uuid"
)

type SubmitFeedbackRequest struct {
	ProviderID         uuid.UUID `json:"providerId" binding:"required"`
	ProviderName       string    `json:"providerName" binding:"required"`
	ServiceUsed        string    `json:"serviceUsed"`
	ServiceCompletion  string    `json:"serviceCompletion"`
	ExperienceRating   string    `json:"experienceRating"`
	ProviderOnTime     bool      `json:"providerOnTime"`
	WorkQuality        int       `json:"workQuality" binding:"required,min=1,max=5"`
	IssueResolution    string    `json:"issueResolution"`
	Recommendation     string    `json:"recommendation"`
	AdditionalFeedback string    `json:"additionalFeedback"`
}

func (r SubmitFeedbackRequest) ToAnswers() feedback.Answers {
	return feedback.Answers{
		ServiceUsed:        r.ServiceUsed,
		ServiceCompletion:  r.ServiceCompletion,
		ExperienceRating:   r.ExperienceRating,
		ProviderOnTime:     r.ProviderOnTime,
		WorkQuality:        r.WorkQuality,
		IssueResolution:    r.IssueResolution,
		Recommendation:     r.Recommendation,
		AdditionalFeedback: r.AdditionalFeedback,
	}
}
