package model

import (
	"fmt"
	"strings"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus int

const (
	StatusPending BookingStatus = iota + 1
	StatusConfirmed
	StatusCancelled
	StatusCompleted
)

var statusInfo = map[BookingStatus]struct {
	code        string
	displayName string
	description string
}{
	StatusPending:   {"PENDING", "Pending", "Booking is awaiting confirmation"},
	StatusConfirmed: {"CONFIRMED", "Confirmed", "Booking has been confirmed"},
	StatusCancelled: {"CANCELLED", "Cancelled", "Booking has been cancelled"},
	StatusCompleted: {"COMPLETED", "Completed", "Guest has checked out"},
}

// ParseBookingStatus accepts the upper-case code or the display name in any case.
func ParseBookingStatus(s string) (BookingStatus, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	for st, info := range statusInfo {
		if info.code == code {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown booking status %q", s)
}

func (s BookingStatus) Valid() bool {
	_, ok := statusInfo[s]
	return ok
}

// Code is the wire name stored in the database ("CONFIRMED").
func (s BookingStatus) Code() string { return statusInfo[s].code }

// DisplayName is the label shown to guests ("Confirmed").
func (s BookingStatus) DisplayName() string { return statusInfo[s].displayName }

func (s BookingStatus) Description() string { return statusInfo[s].description }

func (s BookingStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("BookingStatus(%d)", int(s))
	}
	return s.Code()
}

// Active reports whether a booking in this status holds its room.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether no further transition is allowed.
func (s BookingStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Booking is one reservation of one room for a stay [CheckIn, CheckOut).
// PricePerNight and TotalPrice are frozen at creation and never recomputed,
// even when the room's price changes later.
type Booking struct {
	ID            string // internal identity (UUID)
	Reference     string // human-facing code, unique
	GuestName     string
	GuestEmail    string
	GuestPhone    string // optional, not validated
	RoomID        uint64
	RoomNumber    string
	RoomType      RoomType
	CheckIn       time.Time // calendar date, UTC midnight
	CheckOut      time.Time // calendar date, UTC midnight, after CheckIn
	Status        BookingStatus
	PricePerNight Money
	TotalPrice    Money
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Nights is the number of nights between check-in and check-out.
func (b Booking) Nights() int { return DaysBetween(b.CheckIn, b.CheckOut) }

// Stay returns the booking's date interval.
func (b Booking) Stay() Stay { return Stay{CheckIn: b.CheckIn, CheckOut: b.CheckOut} }
