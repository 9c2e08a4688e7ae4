package queries

import (
	"context"
	"time"

	"homeserve/internal/domain/booking"
	"homeserve/internal/infra"
	"homeserve/internal/pkg/errs"

	"github.com/google/uuid"
)

type StepView struct {
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	Time      *time.Time `json:"time,omitempty"`
}

// BookingView is the UI-facing read model. Steps are always derived from
// the snapshot. Stale marks a view whose live refresh failed; the data is
// the last known good state.
type BookingView struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"userId"`
	FullName          string     `json:"fullName"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	ServiceType       string     `json:"serviceType"`
	Date              string     `json:"date"`
	TimeSlot          string     `json:"timeSlot"`
	Description       string     `json:"description,omitempty"`
	Address           string     `json:"address,omitempty"`
	IsUrgent          bool       `json:"isUrgent"`
	Status            string     `json:"status"`
	PreferredProvider *uuid.UUID `json:"preferredProvider,omitempty"`
	ProviderName      string     `json:"providerName,omitempty"`
	AcceptedAt        *time.Time `json:"acceptedAt,omitempty"`
	Steps             []StepView `json:"steps"`
	PaymentStatus     string     `json:"paymentStatus,omitempty"`
	PaymentAmount     int64      `json:"paymentAmount,omitempty"`
	PaymentMethod     string     `json:"paymentMethod,omitempty"`
	PaymentTimestamp  *time.Time `json:"paymentTimestamp,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	Stale             bool       `json:"stale,omitempty"`
}

func NewBookingView(b *booking.Booking) *BookingView {
	c := b.Customer()
	d := b.Details()
	p := b.Payment()

	steps := booking.DeriveSteps(b)
	stepViews := make([]StepView, len(steps))
	for i, s := range steps {
		stepViews[i] = StepView{Title: s.Title, Completed: s.Completed, Time: s.Time}
	}

	return &BookingView{
		ID:                b.ID(),
		UserID:            c.UserID,
		FullName:          c.FullName,
		Email:             c.Email,
		Phone:             c.Phone,
		ServiceType:       d.ServiceType.String(),
		Date:              d.Date,
		TimeSlot:          d.TimeSlot,
		Description:       d.Description,
		Address:           d.Address,
		IsUrgent:          d.IsUrgent,
		Status:            b.Status().String(),
		PreferredProvider: b.PreferredProvider(),
		ProviderName:      b.ProviderName(),
		AcceptedAt:        b.AcceptedAt(),
		Steps:             stepViews,
		PaymentStatus:     string(p.Status),
		PaymentAmount:     p.Amount,
		PaymentMethod:     p.Method,
		PaymentTimestamp:  p.RecordedAt,
		CreatedAt:         b.CreatedAt(),
		UpdatedAt:         b.UpdatedAt(),
	}
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*booking.Booking, error)
	ListByStatus(ctx context.Context, status booking.Status) ([]*booking.Booking, error)
	ListAll(ctx context.Context) ([]*booking.Booking, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*BookingView, error)
	// ListQueue serves the provider dashboard: all bookings, or only those
	// in the given status, most recent first.
	ListQueue(ctx context.Context, statusFilter string) ([]*BookingView, error)
}

type bookingQueriesImpl struct {
	readStore BookingReadStore
}

func NewBookingQueries(readStore BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{readStore: readStore}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	b, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBookingNotFound)
		}
		return nil, errs.Mark(err, errs.ErrStoreOperationFailed)
	}
	return NewBookingView(b), nil
}

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*BookingView, error) {
	bookings, err := q.readStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreOperationFailed)
	}
	return toViews(bookings), nil
}

func (q *bookingQueriesImpl) ListQueue(ctx context.Context, statusFilter string) ([]*BookingView, error) {
	if statusFilter == "" || statusFilter == "all" {
		bookings, err := q.readStore.ListAll(ctx)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrStoreOperationFailed)
		}
		return toViews(bookings), nil
	}

	status := booking.Status(statusFilter)
	if !status.IsValid() {
		return nil, errs.Mark(errs.New("unknown status filter: "+statusFilter), errs.ErrDomainValidation)
	}
	bookings, err := q.readStore.ListByStatus(ctx, status)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreOperationFailed)
	}
	return toViews(bookings), nil
}

func toViews(bookings []*booking.Booking) []*BookingView {
	out := make([]*BookingView, len(bookings))
	for i, b := range bookings {
		out[i] = NewBookingView(b)
	}
	return out
}
