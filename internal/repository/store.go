package repository

import (
	"context"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Store is the persistence contract used by the ledger.  Reads return
// copies of committed state; the only ways to write are WithRoomLock (new
// bookings) and UpdateBooking (status changes).
type Store interface {
	// CountRooms and InsertRooms are used once at bootstrap to seed the
	// catalog.  InsertRooms assigns IDs.
	CountRooms(ctx context.Context) (int, error)
	InsertRooms(ctx context.Context, rooms []model.Room) error

	// ListRooms returns every room in catalog order.
	ListRooms(ctx context.Context) ([]model.Room, error)
	// RoomByNumber returns ErrRoomNotFound when absent.
	RoomByNumber(ctx context.Context, number string) (model.Room, error)

	// ListBookings returns all committed bookings ordered by creation time.
	ListBookings(ctx context.Context) ([]model.Booking, error)
	// BookingByReference returns ErrBookingNotFound when absent.
	BookingByReference(ctx context.Context, reference string) (model.Booking, error)

	// WithRoomLock runs fn inside an exclusive critical section for one
	// room.  Concurrent calls for the same room are serialized; calls for
	// different rooms never wait on each other.  Writes made through tx
	// become visible only if fn returns nil.
	WithRoomLock(ctx context.Context, roomID uint64, fn func(ctx context.Context, tx RoomTx) error) error

	// UpdateBooking loads the booking with reference under a per-record
	// lock and passes it to fn.  When fn returns nil the new Status and
	// UpdatedAt are persisted.  The returned booking is the state after
	// the call, or the unchanged state when fn fails.
	UpdateBooking(ctx context.Context, reference string, fn func(b *model.Booking) error) (model.Booking, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// RoomTx is the view of a single locked room handed to WithRoomLock
// callbacks.
type RoomTx interface {
	// Room is the room as read under the lock.
	Room() model.Room
	// ActiveBookings lists the room's Pending and Confirmed bookings.
	ActiveBookings(ctx context.Context) ([]model.Booking, error)
	// InsertBooking stores b.  It fails with ErrDuplicateReference when
	// the reference is already taken.
	InsertBooking(ctx context.Context, b *model.Booking) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*MySQLStore)(nil)
)
