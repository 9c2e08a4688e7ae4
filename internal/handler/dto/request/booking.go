package request

import (
	"strings"

	"homeserve/internal/domain/booking"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone" binding:"required"`
	ServiceType string `json:"serviceType" binding:"required"`
	Date        string `json:"date" binding:"required"`
	TimeSlot    string `json:"timeSlot"`
	Description string `json:"description"`
	Address     string `json:"address"`
	IsUrgent    bool   `json:"isUrgent"`
}

func (r CreateBookingRequest) ToContact(userID uuid.UUID) booking.Contact {
	return booking.Contact{
		UserID:   userID,
		FullName: strings.TrimSpace(r.FullName),
		Email:    strings.TrimSpace(r.Email),
		Phone:    strings.TrimSpace(r.Phone),
	}
}

func (r CreateBookingRequest) ToDetails() booking.Details {
	return booking.Details{
		ServiceType: booking.ServiceType(strings.TrimSpace(r.ServiceType)),
		Date:        strings.TrimSpace(r.Date),
		TimeSlot:    strings.TrimSpace(r.TimeSlot),
		Description: strings.TrimSpace(r.Description),
		Address:     strings.TrimSpace(r.Address),
		IsUrgent:    r.IsUrgent,
	}
}

type RecordPaymentRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Method string `json:"method" binding:"required"`
}
