package booking

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingFullName      = errors.New("full name is required")
	ErrMissingEmail         = errors.New("email is required")
	ErrMissingPhone         = errors.New("phone is required")
	ErrMissingDate          = errors.New("date is required")
	ErrInvalidServiceType   = errors.New("invalid service type")
	ErrNotPending           = errors.New("booking is not pending")
	ErrNotAccepted          = errors.New("booking is not accepted")
	ErrNotInProgress        = errors.New("booking is not in progress")
	ErrNotCompleted         = errors.New("booking is not completed")
	ErrProviderAssigned     = errors.New("provider already assigned")
	ErrPaymentRecorded      = errors.New("payment already recorded")
	ErrNegativePayment      = errors.New("payment amount cannot be negative")
	ErrMissingPaymentMethod = errors.New("payment method is required")
)

// Contact is the denormalized snapshot of the requesting customer taken at
// booking time. It never changes afterwards, even if the profile does.
type Contact struct {
	UserID   uuid.UUID
	FullName string
	Email    string
	Phone    string
}

func (c Contact) validate() error {
	if strings.TrimSpace(c.FullName) == "" {
		return ErrMissingFullName
	}
	if strings.TrimSpace(c.Email) == "" {
		return ErrMissingEmail
	}
	if strings.TrimSpace(c.Phone) == "" {
		return ErrMissingPhone
	}
	return nil
}

// Details carries the customer-supplied scheduling fields. No slot-conflict
// enforcement happens server side.
type Details struct {
	ServiceType ServiceType
	Date        string
	TimeSlot    string
	Description string
	Address     string
	IsUrgent    bool
}

type Payment struct {
	Status     PaymentStatus
	Amount     int64
	Method     string
	RecordedAt *time.Time
}

type Booking struct {
	id                uuid.UUID
	customer          Contact
	details           Details
	status            Status
	preferredProvider *uuid.UUID
	providerName      string
	acceptedAt        *time.Time
	startedAt         *time.Time
	completedAt       *time.Time
	payment           Payment
	createdAt         time.Time
	updatedAt         time.Time
}

func NewBooking(customer Contact, details Details, now time.Time) (*Booking, error) {
	if err := customer.validate(); err != nil {
		return nil, err
	}
	if !details.ServiceType.IsValid() {
		return nil, ErrInvalidServiceType
	}
	if strings.TrimSpace(details.Date) == "" {
		return nil, ErrMissingDate
	}

	return &Booking{
		id:        uuid.New(),
		customer:  customer,
		details:   details,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func Reconstruct(
	id uuid.UUID,
	customer Contact,
	details Details,
	status Status,
	preferredProvider *uuid.UUID,
	providerName string,
	acceptedAt, startedAt, completedAt *time.Time,
	payment Payment,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                id,
		customer:          customer,
		details:           details,
		status:            status,
		preferredProvider: preferredProvider,
		providerName:      providerName,
		acceptedAt:        acceptedAt,
		startedAt:         startedAt,
		completedAt:       completedAt,
		payment:           payment,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// Accept assigns the provider and moves the booking to accepted. The
// provider assignment happens exactly once; there is no reassignment path.
func (b *Booking) Accept(providerID uuid.UUID, providerName string, now time.Time) error {
	if b.preferredProvider != nil {
		return ErrProviderAssigned
	}
	if b.status != StatusPending {
		return ErrNotPending
	}
	id := providerID
	b.preferredProvider = &id
	b.providerName = providerName
	b.status = StatusAccepted
	b.acceptedAt = &now
	b.updatedAt = now
	return nil
}

func (b *Booking) Reject(now time.Time) error {
	if b.status != StatusPending {
		return ErrNotPending
	}
	b.status = StatusRejected
	b.updatedAt = now
	return nil
}

func (b *Booking) StartService(now time.Time) error {
	if b.status != StatusAccepted {
		return ErrNotAccepted
	}
	b.status = StatusInProgress
	b.startedAt = &now
	b.updatedAt = now
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if b.status != StatusInProgress {
		return ErrNotInProgress
	}
	b.status = StatusCompleted
	b.completedAt = &now
	b.updatedAt = now
	return nil
}

func (b *Booking) RecordPayment(amount int64, method string, now time.Time) error {
	if b.status != StatusCompleted {
		return ErrNotCompleted
	}
	if b.payment.Status == PaymentStatusCompleted {
		return ErrPaymentRecorded
	}
	if amount < 0 {
		return ErrNegativePayment
	}
	if strings.TrimSpace(method) == "" {
		return ErrMissingPaymentMethod
	}
	b.payment = Payment{
		Status:     PaymentStatusCompleted,
		Amount:     amount,
		Method:     method,
		RecordedAt: &now,
	}
	b.updatedAt = now
	return nil
}

func (b *Booking) IsTerminal() bool {
	return b.status.IsTerminal()
}

func (b *Booking) ID() uuid.UUID                { return b.id }
func (b *Booking) Customer() Contact            { return b.customer }
func (b *Booking) Details() Details             { return b.details }
func (b *Booking) Status() Status               { return b.status }
func (b *Booking) PreferredProvider() *uuid.UUID { return b.preferredProvider }
func (b *Booking) ProviderName() string         { return b.providerName }
func (b *Booking) AcceptedAt() *time.Time       { return b.acceptedAt }
func (b *Booking) StartedAt() *time.Time        { return b.startedAt }
func (b *Booking) CompletedAt() *time.Time      { return b.completedAt }
func (b *Booking) Payment() Payment             { return b.payment }
func (b *Booking) CreatedAt() time.Time         { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time         { return b.updatedAt }
