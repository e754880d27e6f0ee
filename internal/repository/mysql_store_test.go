package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err       error
		retryable bool
	}{
		{&mysql.MySQLError{Number: mysqlErrDeadlock}, true},
		{fmt.Errorf("wrapped: %w", &mysql.MySQLError{Number: mysqlErrLockWaitTimeout}), true},
		{&mysql.MySQLError{Number: mysqlErrDuplicateEntry}, false},
		{errors.New("plain"), false},
	}
	for _, tc := range cases {
		got := classify(tc.err)
		if errors.Is(got, ErrRetryable) != tc.retryable {
			t.Errorf("classify(%v) retryable = %v, want %v", tc.err, !tc.retryable, tc.retryable)
		}
		if !errors.Is(got, tc.err) {
			t.Errorf("classify(%v) lost the cause", tc.err)
		}
	}
	if mysqlErrNumber(errors.New("x")) != 0 {
		t.Fatal("non-MySQL error must map to 0")
	}
}

// openTestMySQL connects to the database named by HOTEL_TEST_MYSQL_DSN and
// resets the schema.  Tests are skipped when the variable is unset.
func openTestMySQL(t *testing.T) *MySQLStore {
	t.Helper()
	dsn := os.Getenv("HOTEL_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("HOTEL_TEST_MYSQL_DSN not set")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()
	for _, stmt := range []string{`DROP TABLE IF EXISTS bookings`, `DROP TABLE IF EXISTS rooms`} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatal(err)
		}
	}
	s := NewMySQLStore(db)
	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	rooms := []model.Room{
		{Number: "101", Type: model.RoomTypeSingle, PricePerNight: 250000, MaxOccupancy: 1, Available: true},
		{Number: "201", Type: model.RoomTypeDouble, PricePerNight: 450000, MaxOccupancy: 2, Available: true},
	}
	if err := s.InsertRooms(ctx, rooms); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMySQLStoreRoundTrip(t *testing.T) {
	s := openTestMySQL(t)
	ctx := context.Background()

	room, err := s.RoomByNumber(ctx, "201")
	if err != nil {
		t.Fatal(err)
	}
	created := time.Date(2030, 1, 1, 9, 30, 0, 0, time.UTC)
	b := testBooking(room, "HBK-20300101-0001", created)
	b.ID = "00000000-0000-0000-0000-000000000001"
	err = s.WithRoomLock(ctx, room.ID, func(ctx context.Context, tx RoomTx) error {
		return tx.InsertBooking(ctx, &b)
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.BookingByReference(ctx, b.Reference)
	if err != nil {
		t.Fatal(err)
	}
	if got.RoomNumber != "201" || got.TotalPrice != b.TotalPrice || !got.CheckIn.Equal(b.CheckIn) || !got.CreatedAt.Equal(created) {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	dup := b
	dup.ID = "00000000-0000-0000-0000-000000000002"
	err = s.WithRoomLock(ctx, room.ID, func(ctx context.Context, tx RoomTx) error {
		return tx.InsertBooking(ctx, &dup)
	})
	if !errors.Is(err, ErrDuplicateReference) {
		t.Fatalf("want ErrDuplicateReference, got %v", err)
	}

	upd, err := s.UpdateBooking(ctx, b.Reference, func(b *model.Booking) error {
		b.Status = model.StatusConfirmed
		b.UpdatedAt = created.Add(time.Hour)
		return nil
	})
	if err != nil || upd.Status != model.StatusConfirmed {
		t.Fatalf("UpdateBooking = %+v, %v", upd, err)
	}
}

func TestMySQLStoreRoomLockSerializes(t *testing.T) {
	s := openTestMySQL(t)
	ctx := context.Background()
	room, err := s.RoomByNumber(ctx, "101")
	if err != nil {
		t.Fatal(err)
	}

	// Every goroutine inserts only when the room has no active booking, so
	// exactly one insert may succeed.
	var wg sync.WaitGroup
	var mu sync.Mutex
	inserted := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.WithRoomLock(ctx, room.ID, func(ctx context.Context, tx RoomTx) error {
				active, err := tx.ActiveBookings(ctx)
				if err != nil || len(active) > 0 {
					return err
				}
				b := testBooking(room, fmt.Sprintf("HBK-C-%d", i), time.Now().UTC())
				b.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", i)
				if err := tx.InsertBooking(ctx, &b); err != nil {
					return err
				}
				mu.Lock()
				inserted++
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Errorf("WithRoomLock: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if inserted != 1 {
		t.Fatalf("inserted %d bookings, want 1", inserted)
	}
}
