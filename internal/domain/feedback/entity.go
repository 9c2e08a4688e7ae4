package feedback

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingBooking     = errors.New("booking reference is required")
	ErrMissingProvider    = errors.New("provider reference is required")
	ErrInvalidWorkQuality = errors.New("work quality must be between 1 and 5")
)

// Feedback is an append-only record keyed by (bookingID, providerID). It is
// deliberately independent of the booking state machine: serviceCompletion
// is a free-form answer ("Completed", "Partially Completed", ...) and is
// never reconciled with booking.status.
type Feedback struct {
	id                 uuid.UUID
	bookingID          uuid.UUID
	userID             uuid.UUID
	providerID         uuid.UUID
	providerName       string
	serviceUsed        string
	serviceCompletion  string
	experienceRating   string
	providerOnTime     bool
	workQuality        int
	issueResolution    string
	recommendation     string
	additionalFeedback string
	createdAt          time.Time
}

type Answers struct {
	ServiceUsed        string
	ServiceCompletion  string
	ExperienceRating   string
	ProviderOnTime     bool
	WorkQuality        int
	IssueResolution    string
	Recommendation     string
	AdditionalFeedback string
}

func NewFeedback(bookingID, userID, providerID uuid.UUID, providerName string, answers Answers, now time.Time) (*Feedback, error) {
	if bookingID == uuid.Nil {
		return nil, ErrMissingBooking
	}
	if providerID == uuid.Nil || strings.TrimSpace(providerName) == "" {
		return nil, ErrMissingProvider
	}
	if answers.WorkQuality < 1 || answers.WorkQuality > 5 {
		return nil, ErrInvalidWorkQuality
	}

	return &Feedback{
		id:                 uuid.New(),
		bookingID:          bookingID,
		userID:             userID,
		providerID:         providerID,
		providerName:       providerName,
		serviceUsed:        answers.ServiceUsed,
		serviceCompletion:  answers.ServiceCompletion,
		experienceRating:   answers.ExperienceRating,
		providerOnTime:     answers.ProviderOnTime,
		workQuality:        answers.WorkQuality,
		issueResolution:    answers.IssueResolution,
		recommendation:     answers.Recommendation,
		additionalFeedback: answers.AdditionalFeedback,
		createdAt:          now,
	}, nil
}

func Reconstruct(id, bookingID, userID, providerID uuid.UUID, providerName string, answers Answers, createdAt time.Time) *Feedback {
	return &Feedback{
		id:                 id,
		bookingID:          bookingID,
		userID:             userID,
		providerID:         providerID,
		providerName:       providerName,
		serviceUsed:        answers.ServiceUsed,
		serviceCompletion:  answers.ServiceCompletion,
		experienceRating:   answers.ExperienceRating,
		providerOnTime:     answers.ProviderOnTime,
		workQuality:        answers.WorkQuality,
		issueResolution:    answers.IssueResolution,
		recommendation:     answers.Recommendation,
		additionalFeedback: answers.AdditionalFeedback,
		createdAt:          createdAt,
	}
}

func (f *Feedback) ID() uuid.UUID         { return f.id }
func (f *Feedback) BookingID() uuid.UUID  { return f.bookingID }
func (f *Feedback) UserID() uuid.UUID     { return f.userID }
func (f *Feedback) ProviderID() uuid.UUID { return f.providerID }
func (f *Feedback) ProviderName() string  { return f.providerName }
func (f *Feedback) CreatedAt() time.Time  { return f.createdAt }

func (f *Feedback) Answers() Answers {
	return Answers{
		ServiceUsed:        f.serviceUsed,
		ServiceCompletion:  f.serviceCompletion,
		ExperienceRating:   f.experienceRating,
		ProviderOnTime:     f.providerOnTime,
		WorkQuality:        f.workQuality,
		IssueResolution:    f.issueResolution,
		Recommendation:     f.recommendation,
		AdditionalFeedback: f.additionalFeedback,
	}
}
