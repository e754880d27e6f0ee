package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// MemoryStore keeps rooms and bookings in process memory.  It is the
// default backend for development and tests.
//
// Locking: each room owns a one-slot semaphore that serializes bookings
// for that room, and each booking owns a mutex that serializes its status
// changes.  The reference index is a sync.Map, so readers never wait on a
// room's critical section.  Inserts are staged and published to the index
// only after the room callback returns nil.
type MemoryStore struct {
	roomsMu  sync.RWMutex
	rooms    []*roomSlot // catalog order
	byID     map[uint64]*roomSlot
	byNumber map[string]*roomSlot
	nextID   uint64

	refs sync.Map // reference -> *bookingSlot
}

type roomSlot struct {
	sem      chan struct{}
	room     model.Room
	bookings []*bookingSlot // guarded by sem
}

type bookingSlot struct {
	mu sync.Mutex
	b  model.Booking
}

func (s *bookingSlot) snapshot() model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[uint64]*roomSlot),
		byNumber: make(map[string]*roomSlot),
	}
}

func (m *MemoryStore) CountRooms(ctx context.Context) (int, error) {
	m.roomsMu.RLock()
	defer m.roomsMu.RUnlock()
	return len(m.rooms), nil
}

// InsertRooms adds rooms in order.  The batch is rejected as a whole when
// any number is already present or repeated.
func (m *MemoryStore) InsertRooms(ctx context.Context, rooms []model.Room) error {
	m.roomsMu.Lock()
	defer m.roomsMu.Unlock()
	seen := make(map[string]bool, len(rooms))
	for _, r := range rooms {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, ok := m.byNumber[r.Number]; ok || seen[r.Number] {
			return fmt.Errorf("room %s: %w", r.Number, ErrDuplicateRoom)
		}
		seen[r.Number] = true
	}
	for _, r := range rooms {
		m.nextID++
		r.ID = m.nextID
		slot := &roomSlot{sem: make(chan struct{}, 1), room: r}
		m.rooms = append(m.rooms, slot)
		m.byID[r.ID] = slot
		m.byNumber[r.Number] = slot
	}
	return nil
}

func (m *MemoryStore) ListRooms(ctx context.Context) ([]model.Room, error) {
	m.roomsMu.RLock()
	defer m.roomsMu.RUnlock()
	out := make([]model.Room, 0, len(m.rooms))
	for _, slot := range m.rooms {
		out = append(out, slot.room)
	}
	return out, nil
}

func (m *MemoryStore) RoomByNumber(ctx context.Context, number string) (model.Room, error) {
	m.roomsMu.RLock()
	defer m.roomsMu.RUnlock()
	slot, ok := m.byNumber[strings.TrimSpace(number)]
	if !ok {
		return model.Room{}, ErrRoomNotFound
	}
	return slot.room, nil
}

func (m *MemoryStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	var out []model.Booking
	m.refs.Range(func(_, v any) bool {
		out = append(out, v.(*bookingSlot).snapshot())
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Reference < out[j].Reference
	})
	return out, nil
}

func (m *MemoryStore) BookingByReference(ctx context.Context, reference string) (model.Booking, error) {
	v, ok := m.refs.Load(reference)
	if !ok {
		return model.Booking{}, ErrBookingNotFound
	}
	return v.(*bookingSlot).snapshot(), nil
}

func (m *MemoryStore) WithRoomLock(ctx context.Context, roomID uint64, fn func(ctx context.Context, tx RoomTx) error) error {
	m.roomsMu.RLock()
	slot, ok := m.byID[roomID]
	m.roomsMu.RUnlock()
	if !ok {
		return ErrRoomNotFound
	}
	select {
	case slot.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-slot.sem }()

	tx := &memoryRoomTx{store: m, slot: slot}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

func (m *MemoryStore) UpdateBooking(ctx context.Context, reference string, fn func(b *model.Booking) error) (model.Booking, error) {
	v, ok := m.refs.Load(reference)
	if !ok {
		return model.Booking{}, ErrBookingNotFound
	}
	slot := v.(*bookingSlot)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	next := slot.b
	if err := fn(&next); err != nil {
		return slot.b, err
	}
	// Only status and update time are mutable.
	slot.b.Status = next.Status
	slot.b.UpdatedAt = next.UpdatedAt
	return slot.b, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

// memoryRoomTx stages inserts until the callback returns.  Staged bookings
// are visible to the transaction's own ActiveBookings but to no reader.
type memoryRoomTx struct {
	store  *MemoryStore
	slot   *roomSlot
	staged []*bookingSlot
}

func (tx *memoryRoomTx) Room() model.Room { return tx.slot.room }

func (tx *memoryRoomTx) ActiveBookings(ctx context.Context) ([]model.Booking, error) {
	var out []model.Booking
	for _, list := range [][]*bookingSlot{tx.slot.bookings, tx.staged} {
		for _, bs := range list {
			b := bs.snapshot()
			if b.Status.Active() {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func (tx *memoryRoomTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	if b.RoomID != tx.slot.room.ID {
		return fmt.Errorf("booking for room %d inserted under lock of room %d", b.RoomID, tx.slot.room.ID)
	}
	if _, taken := tx.store.refs.Load(b.Reference); taken {
		return fmt.Errorf("%s: %w", b.Reference, ErrDuplicateReference)
	}
	for _, bs := range tx.staged {
		if bs.b.Reference == b.Reference {
			return fmt.Errorf("%s: %w", b.Reference, ErrDuplicateReference)
		}
	}
	tx.staged = append(tx.staged, &bookingSlot{b: *b})
	return nil
}

// commit publishes staged bookings to the reference index and the room.
// A reference claimed meanwhile by another room's transaction aborts the
// whole commit.
func (tx *memoryRoomTx) commit() error {
	for i, bs := range tx.staged {
		if _, loaded := tx.store.refs.LoadOrStore(bs.b.Reference, bs); loaded {
			for _, done := range tx.staged[:i] {
				tx.store.refs.CompareAndDelete(done.b.Reference, done)
			}
			return fmt.Errorf("%s: %w", bs.b.Reference, ErrDuplicateReference)
		}
	}
	tx.slot.bookings = append(tx.slot.bookings, tx.staged...)
	tx.staged = nil
	return nil
}
