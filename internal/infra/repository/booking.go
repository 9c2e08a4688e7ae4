package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"homeserve/internal/domain/booking"
	"homeserve/internal/infra"
	"homeserve/internal/infra/docstore"

	"github.com/google/uuid"
)

const bookingsCollection = "bookings"

// bookingRecord is the stored document shape. Step state is intentionally
// absent: it is derived from status and the transition timestamps on read.
type bookingRecord struct {
	ID                uuid.UUID      `json:"id"`
	UserID            uuid.UUID      `json:"userId"`
	UserProfile       contactRecord  `json:"userProfile"`
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
	StartedAt         *time.Time     `json:"startedAt,omitempty"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty"`
	PaymentStatus     string         `json:"paymentStatus,omitempty"`
	PaymentAmount     int64          `json:"paymentAmount,omitempty"`
	PaymentMethod     string         `json:"paymentMethod,omitempty"`
	PaymentTimestamp  *time.Time     `json:"paymentTimestamp,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

type contactRecord struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Change is one live-query delivery mapped to the domain. Err is set when
// the store could not produce a decodable fresh snapshot; Booking then
// holds the last decoded state and the consumer should treat it as stale.
type Change struct {
	Kind      docstore.ChangeKind
	BookingID uuid.UUID
	Booking   *booking.Booking
	Err       error
}

type BookingRepository struct {
	store docstore.Store
}

func NewBookingRepository(store docstore.Store) *BookingRepository {
	return &BookingRepository{store: store}
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	data, err := json.Marshal(toRecord(b))
	if err != nil {
		return infra.WrapRepoErr(infra.KindStoreFailure, "failed to encode booking", err)
	}
	if err := r.store.Create(ctx, bookingsCollection, b.ID(), data, b.CreatedAt()); err != nil {
		return wrapStoreErr("failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	doc, err := r.store.Get(ctx, bookingsCollection, id)
	if err != nil {
		return nil, wrapStoreErr("failed to get booking", err)
	}
	return decodeBooking(doc)
}

// Update writes the entity back, guarded by the status the caller read
// before mutating. A lost race surfaces as KindConflict instead of a
// last-write-wins overwrite.
func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking, expectedStatus booking.Status) error {
	data, err := json.Marshal(toRecord(b))
	if err != nil {
		return infra.WrapRepoErr(infra.KindStoreFailure, "failed to encode booking", err)
	}
	cond := &docstore.Condition{Field: "status", Equals: expectedStatus.String()}
	if err := r.store.Update(ctx, bookingsCollection, b.ID(), data, cond, b.UpdatedAt()); err != nil {
		return wrapStoreErr("failed to update booking", err)
	}
	return nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*booking.Booking, error) {
	return r.list(ctx, docstore.Filter{Field: "userId", Equals: userID.String()})
}

func (r *BookingRepository) ListByStatus(ctx context.Context, status booking.Status) ([]*booking.Booking, error) {
	return r.list(ctx, docstore.Filter{Field: "status", Equals: status.String()})
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]*booking.Booking, error) {
	return r.list(ctx)
}

func (r *BookingRepository) WatchByID(ctx context.Context, id uuid.UUID, fn func(Change)) (docstore.Unsubscribe, error) {
	return r.watch(ctx, fn, docstore.Filter{Field: "id", Equals: id.String()})
}

func (r *BookingRepository) WatchByUser(ctx context.Context, userID uuid.UUID, fn func(Change)) (docstore.Unsubscribe, error) {
	return r.watch(ctx, fn, docstore.Filter{Field: "userId", Equals: userID.String()})
}

func (r *BookingRepository) WatchByStatus(ctx context.Context, status booking.Status, fn func(Change)) (docstore.Unsubscribe, error) {
	return r.watch(ctx, fn, docstore.Filter{Field: "status", Equals: status.String()})
}

func (r *BookingRepository) list(ctx context.Context, filters ...docstore.Filter) ([]*booking.Booking, error) {
	docs, err := r.store.List(ctx, docstore.Query{Collection: bookingsCollection, Filters: filters})
	if err != nil {
		return nil, wrapStoreErr("failed to list bookings", err)
	}
	out := make([]*booking.Booking, 0, len(docs))
	for _, doc := range docs {
		b, decodeErr := decodeBooking(doc)
		if decodeErr != nil {
			return nil, decodeErr
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *BookingRepository) watch(ctx context.Context, fn func(Change), filters ...docstore.Filter) (docstore.Unsubscribe, error) {
	query := docstore.Query{Collection: bookingsCollection, Filters: filters}
	unsub, err := r.store.Watch(ctx, query, func(c docstore.Change) {
		out := Change{Kind: c.Kind, BookingID: c.Doc.ID, Err: c.Err}
		if c.Err == nil {
			b, decodeErr := decodeBooking(c.Doc)
			if decodeErr != nil {
				out.Err = decodeErr
			} else {
				out.Booking = b
			}
		}
		fn(out)
	})
	if err != nil {
		return nil, wrapStoreErr("failed to watch bookings", err)
	}
	return unsub, nil
}

func toRecord(b *booking.Booking) bookingRecord {
	c := b.Customer()
	d := b.Details()
	p := b.Payment()
	return bookingRecord{
		ID:     b.ID(),
		UserID: c.UserID,
		UserProfile: contactRecord{
			FullName: c.FullName,
			Email:    c.Email,
			Phone:    c.Phone,
		},
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
		StartedAt:         b.StartedAt(),
		CompletedAt:       b.CompletedAt(),
		PaymentStatus:     string(p.Status),
		PaymentAmount:     p.Amount,
		PaymentMethod:     p.Method,
		PaymentTimestamp:  p.RecordedAt,
		CreatedAt:         b.CreatedAt(),
		UpdatedAt:         b.UpdatedAt(),
	}
}

func decodeBooking(doc docstore.Document) (*booking.Booking, error) {
	var rec bookingRecord
	if err := json.Unmarshal(doc.Data, &rec); err != nil {
		return nil, infra.WrapRepoErr(infra.KindStoreFailure, "failed to decode booking document", err)
	}
	return booking.Reconstruct(
		rec.ID,
		booking.Contact{
			UserID:   rec.UserID,
			FullName: rec.UserProfile.FullName,
			Email:    rec.UserProfile.Email,
			Phone:    rec.UserProfile.Phone,
		},
		booking.Details{
			ServiceType: booking.ServiceType(rec.ServiceType),
			Date:        rec.Date,
			TimeSlot:    rec.TimeSlot,
			Description: rec.Description,
			Address:     rec.Address,
			IsUrgent:    rec.IsUrgent,
		},
		booking.Status(rec.Status),
		rec.PreferredProvider,
		rec.ProviderName,
		rec.AcceptedAt,
		rec.StartedAt,
		rec.CompletedAt,
		booking.Payment{
			Status:     booking.PaymentStatus(rec.PaymentStatus),
			Amount:     rec.PaymentAmount,
			Method:     rec.PaymentMethod,
			RecordedAt: rec.PaymentTimestamp,
		},
		rec.CreatedAt,
		rec.UpdatedAt,
	), nil
}

func wrapStoreErr(msg string, err error) error {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return infra.WrapRepoErr(infra.KindNotFound, msg, err)
	case errors.Is(err, docstore.ErrConditionFailed):
		return infra.WrapRepoErr(infra.KindConflict, msg, err)
	case errors.Is(err, docstore.ErrDuplicateID):
		return infra.WrapRepoErr(infra.KindDuplicateKey, msg, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return infra.WrapRepoErr(infra.KindTransient, msg, err)
	default:
		return infra.WrapRepoErr(infra.KindStoreFailure, msg, err)
	}
}
