package ledger

import (
	"fmt"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// Overlaps reports whether two stays conflict.  Both ends are inclusive,
// so a stay checking out on day D conflicts with one checking in on D and
// a room cannot be turned over on its check-out day.
func Overlaps(a, b model.Stay) bool {
	return !a.CheckIn.After(b.CheckOut) && !a.CheckOut.Before(b.CheckIn)
}

// RoomFree reports whether room can take stay: its availability flag is
// set and no active booking of that room overlaps the stay.  Bookings of
// other rooms and inactive bookings are ignored.
func RoomFree(room model.Room, stay model.Stay, bookings []model.Booking) bool {
	if !room.Available {
		return false
	}
	for _, b := range bookings {
		if b.RoomID != room.ID || !b.Status.Active() {
			continue
		}
		if Overlaps(b.Stay(), stay) {
			return false
		}
	}
	return true
}

// FreeRoomsOfType returns the rooms of type rt that are free for stay, in
// the order given.
func FreeRoomsOfType(rooms []model.Room, rt model.RoomType, stay model.Stay, bookings []model.Booking) []model.Room {
	byRoom := make(map[uint64][]model.Booking)
	for _, b := range bookings {
		if b.Status.Active() {
			byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
		}
	}
	var free []model.Room
	for _, r := range rooms {
		if r.Type == rt && RoomFree(r, stay, byRoom[r.ID]) {
			free = append(free, r)
		}
	}
	return free
}

// parseStay validates a requested stay against today's date.  Check-in on
// today is allowed.
func parseStay(checkIn, checkOut string, today time.Time) (model.Stay, error) {
	in, errIn := model.ParseDate(checkIn)
	out, errOut := model.ParseDate(checkOut)
	if errIn != nil || errOut != nil {
		return model.Stay{}, invalid(ErrInvalidDateFormat, "Invalid date format. Please use YYYY-MM-DD format.")
	}
	if in.Before(today) {
		return model.Stay{}, invalid(ErrPastCheckIn, "Check-in date cannot be in the past.")
	}
	if !out.After(in) {
		return model.Stay{}, invalid(ErrInvalidDates, "Check-out date must be after check-in date.")
	}
	return model.Stay{CheckIn: in, CheckOut: out}, nil
}

func parseRoomType(s string) (model.RoomType, error) {
	rt, err := model.ParseRoomType(s)
	if err != nil {
		return 0, invalid(ErrInvalidRoomType,
			fmt.Sprintf("Invalid room type: %s. Valid types are: %s", s, model.ValidRoomTypeCodes()))
	}
	return rt, nil
}
