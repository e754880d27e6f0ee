package ledger

import (
	"context"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Occupancy reports how many rooms are occupied on date.  A room is
// occupied when an active booking has CheckIn <= date < CheckOut; the
// rate is taken over all rooms in the catalog.  Expected check-ins and
// check-outs count active bookings starting or ending on date.
func (l *Ledger) Occupancy(ctx context.Context, date string) (*OccupancyStats, error) {
	day, err := model.ParseDate(date)
	if err != nil {
		return nil, invalid(ErrInvalidDateFormat, "Invalid date format. Please use YYYY-MM-DD format.")
	}
	rooms, err := l.store.ListRooms(ctx)
	if err != nil {
		return nil, l.storeFailure("occupancy rooms", err)
	}
	bookings, err := l.store.ListBookings(ctx)
	if err != nil {
		return nil, l.storeFailure("occupancy bookings", err)
	}

	st := &OccupancyStats{Date: model.FormatDate(day), TotalRooms: len(rooms)}
	occupied := make(map[uint64]bool)
	for _, b := range bookings {
		if !b.Status.Active() {
			continue
		}
		if b.Stay().Contains(day) {
			occupied[b.RoomID] = true
		}
		if b.CheckIn.Equal(day) {
			st.ExpectedCheckIns++
		}
		if b.CheckOut.Equal(day) {
			st.ExpectedCheckOuts++
		}
	}
	st.OccupiedRooms = len(occupied)
	st.OccupancyRate = percent(st.OccupiedRooms, st.TotalRooms)
	return st, nil
}

// percent returns part/total*100 rounded half-up to two decimals, or 0
// when total is 0.
func percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	bp := (int64(part)*10000*2 + int64(total)) / (2 * int64(total))
	return float64(bp) / 100
}

// Revenue sums the total price of Confirmed bookings whose check-in falls
// within [start, end].  The average daily rate is the mean total per
// booking, rounded half-up to the cent.
func (l *Ledger) Revenue(ctx context.Context, start, end string) (*RevenueStats, error) {
	from, errFrom := model.ParseDate(start)
	to, errTo := model.ParseDate(end)
	if errFrom != nil || errTo != nil {
		return nil, invalid(ErrInvalidDateFormat, "Invalid date format. Please use YYYY-MM-DD format.")
	}
	if to.Before(from) {
		return nil, invalid(ErrInvalidDateRange, "End date must not be before start date.")
	}
	bookings, err := l.store.ListBookings(ctx)
	if err != nil {
		return nil, l.storeFailure("revenue bookings", err)
	}

	st := &RevenueStats{StartDate: model.FormatDate(from), EndDate: model.FormatDate(to)}
	for _, b := range bookings {
		if b.Status != model.StatusConfirmed || b.CheckIn.Before(from) || b.CheckIn.After(to) {
			continue
		}
		st.TotalRevenue += b.TotalPrice
		st.NumberOfBookings++
	}
	st.AverageDailyRate = st.TotalRevenue.DivRound(int64(st.NumberOfBookings))
	return st, nil
}
