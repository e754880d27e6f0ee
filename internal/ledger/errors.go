package ledger

import (
	"errors"
	"fmt"
)

// Failure kinds.  Every Failure unwraps to exactly one of these, which the
// HTTP layer maps onto a status code.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("state conflict")
	ErrUnavailable  = errors.New("service unavailable")
)

// Failure reasons.  A Failure carries at most one reason so callers can
// react to a specific outcome with errors.Is.
var (
	ErrInvalidRoomType   = errors.New("invalid room type")
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrPastCheckIn       = errors.New("check-in in the past")
	ErrInvalidDates      = errors.New("check-out not after check-in")
	ErrInvalidDateRange  = errors.New("end date before start date")
	ErrInvalidName       = errors.New("invalid guest name")
	ErrInvalidEmail      = errors.New("invalid guest email")
	ErrRoomNotFound      = errors.New("room not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrRoomUnavailable   = errors.New("room not available for booking")
	ErrRoomBooked        = errors.New("room already booked")
	ErrAlreadyConfirmed  = errors.New("booking already confirmed")
	ErrAlreadyCancelled  = errors.New("booking already cancelled")
	ErrBookingCancelled  = errors.New("booking cancelled")
	ErrBookingCompleted  = errors.New("booking completed")
	ErrNotConfirmed      = errors.New("booking not confirmed")
)

// Failure is the typed, non-exceptional outcome of a rejected operation.
// Message is the human-readable text shown to the guest.
type Failure struct {
	Kind    error
	Reason  error
	Message string
	// Reference is set for failures about an existing booking.
	Reference string
	// Status is the booking's status code when the failure reports it
	// (already confirmed or already cancelled).
	Status string
	cause  error
}

func (f *Failure) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.cause)
	}
	return f.Message
}

func (f *Failure) Unwrap() []error {
	errs := []error{f.Kind}
	if f.Reason != nil {
		errs = append(errs, f.Reason)
	}
	if f.cause != nil {
		errs = append(errs, f.cause)
	}
	return errs
}

func invalid(reason error, msg string) *Failure {
	return &Failure{Kind: ErrInvalidInput, Reason: reason, Message: msg}
}

func conflict(reason error, ref, status, msg string) *Failure {
	return &Failure{Kind: ErrConflict, Reason: reason, Reference: ref, Status: status, Message: msg}
}

func bookingNotFound(ref string) *Failure {
	return &Failure{
		Kind:      ErrNotFound,
		Reason:    ErrBookingNotFound,
		Reference: ref,
		Message:   fmt.Sprintf("Booking with reference '%s' was not found.", ref),
	}
}

func unavailable(cause error) *Failure {
	return &Failure{
		Kind:    ErrUnavailable,
		Message: "The booking service is temporarily unavailable. Please try again.",
		cause:   cause,
	}
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	ok := errors.As(err, &f)
	return f, ok
}
