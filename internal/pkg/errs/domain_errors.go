package errs

import "errors"

// Domain-specific sentinel errors for the booking usecase layers
var (
	// Booking errors
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrBookingConflict   = errors.New("booking update conflict")

	// Payment errors
	ErrPaymentPrecondition = errors.New("payment precondition not met")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Storage errors
	ErrStoreOperationFailed = errors.New("store operation failed")
	ErrStoreTransient       = errors.New("transient store failure")
)
