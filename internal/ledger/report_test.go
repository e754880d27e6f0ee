package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

func TestRevenue(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	if err := store.InsertRooms(ctx, []model.Room{
		{Number: "1", Type: model.RoomTypeSingle, PricePerNight: 5000, MaxOccupancy: 1, Available: true},
		{Number: "2", Type: model.RoomTypeDouble, PricePerNight: 12500, MaxOccupancy: 2, Available: true},
		{Number: "3", Type: model.RoomTypeDouble, PricePerNight: 99900, MaxOccupancy: 2, Available: true},
	}); err != nil {
		t.Fatal(err)
	}
	l := New(store, Options{Clock: ClockFunc(func() time.Time { return testNow })})
	create := func(room, in, out string) string {
		res, err := l.Create(ctx, CreateRequest{RoomNumber: room, GuestName: "G", GuestEmail: "g@example.com", CheckIn: in, CheckOut: out})
		if err != nil {
			t.Fatal(err)
		}
		return res.BookingReference
	}
	confirm := func(ref string) {
		if _, err := l.Confirm(ctx, ref); err != nil {
			t.Fatal(err)
		}
	}

	confirm(create("1", "2030-03-01", "2030-03-03")) // 100.00
	confirm(create("2", "2030-03-31", "2030-04-02")) // 250.00, check-in on the end date
	create("3", "2030-03-10", "2030-03-11")          // pending, excluded
	confirm(create("3", "2030-04-01", "2030-04-02")) // outside the range
	cancelled := create("1", "2030-03-20", "2030-03-21")
	confirm(cancelled)
	if _, err := l.Cancel(ctx, cancelled); err != nil {
		t.Fatal(err)
	}

	st, err := l.Revenue(ctx, "2030-03-01", "2030-03-31")
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalRevenue.String() != "350.00" || st.NumberOfBookings != 2 || st.AverageDailyRate.String() != "175.00" {
		t.Fatalf("unexpected revenue %+v", st)
	}

	st, err = l.Revenue(ctx, "2031-01-01", "2031-01-31")
	if err != nil || st.TotalRevenue != 0 || st.NumberOfBookings != 0 || st.AverageDailyRate != 0 {
		t.Fatalf("empty range = %+v, %v", st, err)
	}

	if _, err := l.Revenue(ctx, "2030-03-31", "2030-03-01"); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("want ErrInvalidDateRange, got %v", err)
	}
	if _, err := l.Revenue(ctx, "March", "2030-03-01"); !errors.Is(err, ErrInvalidDateFormat) {
		t.Fatalf("want ErrInvalidDateFormat, got %v", err)
	}
}

func TestOccupancy(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	book(t, l, "101", "2030-05-10", "2030-05-12") // occupied on the 11th, checks out the 12th
	book(t, l, "201", "2030-05-11", "2030-05-13") // checks in on the 11th
	book(t, l, "301", "2030-05-12", "2030-05-14")
	ref := book(t, l, "401", "2030-05-11", "2030-05-12").BookingReference
	if _, err := l.Cancel(ctx, ref); err != nil {
		t.Fatal(err)
	}

	st, err := l.Occupancy(ctx, "2030-05-11")
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalRooms != 16 || st.OccupiedRooms != 2 || st.OccupancyRate != 12.5 {
		t.Fatalf("unexpected occupancy %+v", st)
	}
	if st.ExpectedCheckIns != 1 || st.ExpectedCheckOuts != 0 {
		t.Fatalf("unexpected movements %+v", st)
	}

	st, _ = l.Occupancy(ctx, "2030-05-12")
	if st.OccupiedRooms != 2 || st.ExpectedCheckIns != 1 || st.ExpectedCheckOuts != 1 {
		t.Fatalf("unexpected occupancy on the 12th %+v", st)
	}

	if _, err := l.Occupancy(ctx, "12/05/2030"); !errors.Is(err, ErrInvalidDateFormat) {
		t.Fatalf("want ErrInvalidDateFormat, got %v", err)
	}
}

func TestOccupancyWithoutRooms(t *testing.T) {
	l := New(repository.NewMemoryStore(), Options{})
	st, err := l.Occupancy(context.Background(), "2030-01-01")
	if err != nil || st.TotalRooms != 0 || st.OccupancyRate != 0 {
		t.Fatalf("Occupancy = %+v, %v", st, err)
	}
}

func TestPercent(t *testing.T) {
	cases := []struct {
		part, total int
		want        float64
	}{
		{1, 3, 33.33},
		{2, 3, 66.67},
		{1, 8, 12.5},
		{16, 16, 100},
		{0, 16, 0},
		{1, 0, 0},
	}
	for _, tc := range cases {
		if got := percent(tc.part, tc.total); got != tc.want {
			t.Errorf("percent(%d, %d) = %v, want %v", tc.part, tc.total, got, tc.want)
		}
	}
}
