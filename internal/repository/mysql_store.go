package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// MySQL server error numbers the store reacts to.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// schema is applied by Migrate.  Money columns hold minor units, stay dates
// are DATE columns and timestamps are stored in UTC.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		room_number VARCHAR(16) NOT NULL,
		room_type ENUM('SINGLE','DOUBLE','SUITE','DELUXE') NOT NULL,
		price_per_night_cents BIGINT NOT NULL,
		max_occupancy INT NOT NULL,
		available TINYINT(1) NOT NULL DEFAULT 1,
		description VARCHAR(255) NOT NULL DEFAULT '',
		amenities VARCHAR(255) NOT NULL DEFAULT '',
		UNIQUE KEY uq_rooms_number (room_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id CHAR(36) NOT NULL PRIMARY KEY,
		reference VARCHAR(32) NOT NULL,
		room_id BIGINT UNSIGNED NOT NULL,
		guest_name VARCHAR(255) NOT NULL,
		guest_email VARCHAR(255) NOT NULL,
		guest_phone VARCHAR(64) NOT NULL DEFAULT '',
		check_in DATE NOT NULL,
		check_out DATE NOT NULL,
		status ENUM('PENDING','CONFIRMED','CANCELLED','COMPLETED') NOT NULL,
		price_per_night_cents BIGINT NOT NULL,
		total_price_cents BIGINT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_bookings_reference (reference),
		KEY idx_bookings_room_dates (room_id, check_in, check_out),
		CONSTRAINT fk_bookings_room FOREIGN KEY (room_id) REFERENCES rooms (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// MySQLStore persists rooms and bookings in MySQL.  Booking creation runs
// in a READ COMMITTED transaction that holds the room row with
// SELECT ... FOR UPDATE, so concurrent creates for one room queue on the
// row lock while other rooms proceed.  The unique key on reference backs
// the ledger's regeneration loop.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a store bound to db.  Call Migrate before use.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// DB exposes the underlying pool for health checks and tests.
func (s *MySQLStore) DB() *sql.DB { return s.db }

// Migrate creates the tables when they do not exist.
func (s *MySQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *MySQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *MySQLStore) CountRooms(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// InsertRooms inserts all rooms in one transaction.
func (s *MySQLStore) InsertRooms(ctx context.Context, rooms []model.Room) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `INSERT INTO rooms (room_number, room_type, price_per_night_cents, max_occupancy, available, description, amenities)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	for _, r := range rooms {
		if err := r.Validate(); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, q, r.Number, r.Type.Code(), int64(r.PricePerNight), r.MaxOccupancy, r.Available, r.Description, r.Amenities)
		if err != nil {
			if mysqlErrNumber(err) == mysqlErrDuplicateEntry {
				return fmt.Errorf("room %s: %w", r.Number, ErrDuplicateRoom)
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const roomColumns = `id, room_number, room_type, price_per_night_cents, max_occupancy, available, description, amenities`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (model.Room, error) {
	var (
		r     model.Room
		rtype string
		price int64
	)
	if err := row.Scan(&r.ID, &r.Number, &rtype, &price, &r.MaxOccupancy, &r.Available, &r.Description, &r.Amenities); err != nil {
		return model.Room{}, err
	}
	t, err := model.ParseRoomType(rtype)
	if err != nil {
		return model.Room{}, err
	}
	r.Type = t
	r.PricePerNight = model.Money(price)
	return r, nil
}

func (s *MySQLStore) ListRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *MySQLStore) RoomByNumber(ctx context.Context, number string) (model.Room, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE room_number = ?`, strings.TrimSpace(number))
	r, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Room{}, ErrRoomNotFound
	}
	return r, err
}

const bookingSelect = `SELECT b.id, b.reference, b.guest_name, b.guest_email, b.guest_phone,
	       b.room_id, r.room_number, r.room_type, b.check_in, b.check_out, b.status,
	       b.price_per_night_cents, b.total_price_cents, b.created_at, b.updated_at
	FROM bookings b
	JOIN rooms r ON r.id = b.room_id`

func scanBooking(row rowScanner) (model.Booking, error) {
	var (
		b             model.Booking
		rtype, status string
		rate, total   int64
	)
	err := row.Scan(&b.ID, &b.Reference, &b.GuestName, &b.GuestEmail, &b.GuestPhone,
		&b.RoomID, &b.RoomNumber, &rtype, &b.CheckIn, &b.CheckOut, &status,
		&rate, &total, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	if b.RoomType, err = model.ParseRoomType(rtype); err != nil {
		return model.Booking{}, err
	}
	if b.Status, err = model.ParseBookingStatus(status); err != nil {
		return model.Booking{}, err
	}
	b.PricePerNight = model.Money(rate)
	b.TotalPrice = model.Money(total)
	b.CheckIn = b.CheckIn.UTC()
	b.CheckOut = b.CheckOut.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

func queryBookings(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}, query string, args ...any) ([]model.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *MySQLStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	return queryBookings(ctx, s.db, bookingSelect+` ORDER BY b.created_at, b.reference`)
}

func (s *MySQLStore) BookingByReference(ctx context.Context, reference string) (model.Booking, error) {
	b, err := scanBooking(s.db.QueryRowContext(ctx, bookingSelect+` WHERE b.reference = ?`, reference))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

func (s *MySQLStore) WithRoomLock(ctx context.Context, roomID uint64, fn func(ctx context.Context, tx RoomTx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return classify(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	room, err := scanRoom(tx.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ? FOR UPDATE`, roomID))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRoomNotFound
	}
	if err != nil {
		return classify(err)
	}
	if err := fn(ctx, &mysqlRoomTx{tx: tx, room: room}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	committed = true
	return nil
}

func (s *MySQLStore) UpdateBooking(ctx context.Context, reference string, fn func(b *model.Booking) error) (model.Booking, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return model.Booking{}, classify(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Lock only the booking row; the room row stays free for creates.
	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM bookings WHERE reference = ? FOR UPDATE`, reference).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	if err != nil {
		return model.Booking{}, classify(err)
	}
	cur, err := scanBooking(tx.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if err != nil {
		return model.Booking{}, classify(err)
	}
	next := cur
	if err := fn(&next); err != nil {
		return cur, err
	}
	_, err = tx.ExecContext(ctx, `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		next.Status.Code(), next.UpdatedAt.UTC(), id)
	if err != nil {
		return cur, classify(err)
	}
	if err := tx.Commit(); err != nil {
		return cur, classify(err)
	}
	committed = true
	cur.Status = next.Status
	cur.UpdatedAt = next.UpdatedAt
	return cur, nil
}

type mysqlRoomTx struct {
	tx   *sql.Tx
	room model.Room
}

func (t *mysqlRoomTx) Room() model.Room { return t.room }

func (t *mysqlRoomTx) ActiveBookings(ctx context.Context) ([]model.Booking, error) {
	out, err := queryBookings(ctx, t.tx, bookingSelect+` WHERE b.room_id = ? AND b.status IN ('PENDING','CONFIRMED')`, t.room.ID)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (t *mysqlRoomTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (id, reference, room_id, guest_name, guest_email, guest_phone,
	               check_in, check_out, status, price_per_night_cents, total_price_cents, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, q, b.ID, b.Reference, b.RoomID, b.GuestName, b.GuestEmail, b.GuestPhone,
		b.CheckIn.Format(model.DateLayout), b.CheckOut.Format(model.DateLayout), b.Status.Code(),
		int64(b.PricePerNight), int64(b.TotalPrice), b.CreatedAt.UTC(), b.UpdatedAt.UTC())
	if err != nil {
		if mysqlErrNumber(err) == mysqlErrDuplicateEntry {
			return fmt.Errorf("%s: %w", b.Reference, ErrDuplicateReference)
		}
		return classify(err)
	}
	return nil
}

// mysqlErrNumber extracts the server error number, or 0 for other errors.
func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// classify tags deadlocks and lock wait timeouts with ErrRetryable.
func classify(err error) error {
	switch mysqlErrNumber(err) {
	case mysqlErrDeadlock, mysqlErrLockWaitTimeout:
		return fmt.Errorf("%w: %w", ErrRetryable, err)
	}
	return err
}
