package response

import (
	"time"

	"homeserve/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type StepResponse struct {
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	Time      *time.Time `json:"time,omitempty"`
}

type BookingResponse struct {
	ID                uuid.UUID      `json:"id"`
	UserID            uuid.UUID      `json:"userId"`
	FullName          string         `json:"fullName"`
	Email             string         `json:"email"`
	Phone             string         `json:"phone"`
	ServiceType       string         `json:"serviceType"`
	Date              string         `json:"date"`
	TimeSlot          string         `json:"timeSlot"`
	Description       string         `json:"description,omitempty"`
	Address           string         `json:"address,omitempty"`
	IsUrgent          bool           `json:"isUrgent"`
	Status            string         `json:"status"`
	PreferredProvider *uuid.UUID     `json:"preferredProvider,omitempty"`
	ProviderName      string         `json:"providerName,omitempty"`
	AcceptedAt        *time.Time     `json:"acceptedAt,omitempty"`
	Steps             []StepResponse `json:"steps"`
	PaymentStatus     string         `json:"paymentStatus,omitempty"`
	PaymentAmount     int64          `json:"paymentAmount,omitempty"`
	PaymentMethod     string         `json:"paymentMethod,omitempty"`
	PaymentTimestamp  *time.Time     `json:"paymentTimestamp,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	Stale             bool           `json:"stale,omitempty"`
}

type CreateBookingResponse struct {
	ID uuid.UUID `json:"id"`
}

func FromBookingView(view *queries.BookingView) *BookingResponse {
	var resp BookingResponse
	// Field names line up one to one; copier keeps this mapping from
	// drifting when the view grows.
	_ = copier.Copy(&resp, view)
	return &resp
}

func FromBookingViews(views []*queries.BookingView) []*BookingResponse {
	out := make([]*BookingResponse, len(views))
	for i, v := range views {
		out[i] = FromBookingView(v)
	}
	return out
}
