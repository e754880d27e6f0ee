package model

import (
	"fmt"
	"strings"
)

// RoomType is the closed set of room categories offered by the hotel.
// The zero value is not a valid type; use ParseRoomType at the boundary.
type RoomType int

const (
	RoomTypeSingle RoomType = iota + 1
	RoomTypeDouble
	RoomTypeSuite
	RoomTypeDeluxe
)

// RoomTypes lists every room type in presentation order.
var RoomTypes = []RoomType{RoomTypeSingle, RoomTypeDouble, RoomTypeSuite, RoomTypeDeluxe}

var roomTypeInfo = map[RoomType]struct {
	code        string
	displayName string
	description string
}{
	RoomTypeSingle: {"SINGLE", "Single Room", "Cozy room for solo travelers"},
	RoomTypeDouble: {"DOUBLE", "Double Room", "Comfortable room for couples or friends"},
	RoomTypeSuite:  {"SUITE", "Suite", "Spacious suite with living area and premium amenities"},
	RoomTypeDeluxe: {"DELUXE", "Deluxe Room", "Luxurious room with premium services and exclusive amenities"},
}

// ParseRoomType maps a case-insensitive code such as "double" to its RoomType.
func ParseRoomType(s string) (RoomType, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	for t, info := range roomTypeInfo {
		if info.code == code {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown room type %q", s)
}

// Valid reports whether t is one of the declared room types.
func (t RoomType) Valid() bool {
	_, ok := roomTypeInfo[t]
	return ok
}

// Code is the upper-case wire name, e.g. "SUITE".
func (t RoomType) Code() string { return roomTypeInfo[t].code }

func (t RoomType) DisplayName() string { return roomTypeInfo[t].displayName }

func (t RoomType) Description() string { return roomTypeInfo[t].description }

func (t RoomType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("RoomType(%d)", int(t))
	}
	return t.Code()
}

// ValidRoomTypeCodes returns the codes joined for use in user-facing messages.
func ValidRoomTypeCodes() string {
	codes := make([]string, 0, len(RoomTypes))
	for _, t := range RoomTypes {
		codes = append(codes, t.Code())
	}
	return strings.Join(codes, ", ")
}

// Room is a bookable unit of inventory.  Rooms are reference data: the
// catalog creates them at bootstrap and only administrative operations
// change Available or PricePerNight afterwards.
//
// Fields:
//
//	ID            – rooms.id, stable identity.
//	Number        – rooms.room_number, unique and human-facing ("201").
//	Type          – rooms.room_type.
//	PricePerNight – rooms.price_per_night_cents.
//	MaxOccupancy  – rooms.max_occupancy, always positive.
//	Available     – rooms.available, administrative on/off switch
//	                independent of bookings.
//	Description   – rooms.description.
//	Amenities     – rooms.amenities, comma separated.
type Room struct {
	ID            uint64
	Number        string
	Type          RoomType
	PricePerNight Money
	MaxOccupancy  int
	Available     bool
	Description   string
	Amenities     string
}

// Validate checks the structural invariants of a catalog entry.
func (r Room) Validate() error {
	switch {
	case strings.TrimSpace(r.Number) == "":
		return fmt.Errorf("room number is required")
	case !r.Type.Valid():
		return fmt.Errorf("room %s: invalid type", r.Number)
	case r.PricePerNight < 0:
		return fmt.Errorf("room %s: negative price", r.Number)
	case r.MaxOccupancy <= 0:
		return fmt.Errorf("room %s: max occupancy must be positive", r.Number)
	}
	return nil
}
