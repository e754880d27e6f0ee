// Package repository defines the storage contract for rooms and bookings
// together with its two implementations: an in-process MemoryStore and a
// MySQLStore backed by database/sql.
//
// The sentinel errors below are shared by both stores so that the ledger
// can distinguish failure scenarios with errors.Is regardless of which
// backend is configured.
package repository

import "errors"

// ErrRoomNotFound is returned when no room matches the requested number or
// ID.
var ErrRoomNotFound = errors.New("room not found")

// ErrBookingNotFound is returned when no booking carries the requested
// reference.
var ErrBookingNotFound = errors.New("booking not found")

// ErrDuplicateReference is returned by InsertBooking when the reference is
// already taken.  The ledger regenerates the reference and retries.
var ErrDuplicateReference = errors.New("duplicate booking reference")

// ErrDuplicateRoom is returned when seeding a room whose number exists.
var ErrDuplicateRoom = errors.New("duplicate room number")

// ErrRetryable marks transient storage conflicts such as deadlocks or lock
// wait timeouts.  The whole operation may be retried from the start.
var ErrRetryable = errors.New("transient storage conflict")
