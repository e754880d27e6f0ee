package ledger

import (
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoomTypeInfo summarises one room type over the rooms currently open for
// booking.
type RoomTypeInfo struct {
	Type           string      `json:"type"`
	DisplayName    string      `json:"display_name"`
	Description    string      `json:"description"`
	StartingPrice  model.Money `json:"starting_price"`
	MaxOccupancy   int         `json:"max_occupancy"`
	AvailableRooms int         `json:"available_rooms"`
}

type AvailableRoom struct {
	RoomNumber    string      `json:"room_number"`
	Type          string      `json:"type"`
	Description   string      `json:"description"`
	Amenities     string      `json:"amenities"`
	PricePerNight model.Money `json:"price_per_night"`
	MaxOccupancy  int         `json:"max_occupancy"`
}

// AvailabilityResult answers a search.  An empty result is not a failure:
// Available is false and Message says so.
type AvailabilityResult struct {
	Available          bool            `json:"available"`
	CheckInDate        string          `json:"check_in_date"`
	CheckOutDate       string          `json:"check_out_date"`
	RoomType           string          `json:"room_type"`
	NumberOfNights     int             `json:"number_of_nights"`
	AvailableRoomCount int             `json:"available_room_count"`
	AvailableRooms     []AvailableRoom `json:"available_rooms"`
	Message            string          `json:"message"`
}

type BookingResult struct {
	Success          bool        `json:"success"`
	BookingReference string      `json:"booking_reference"`
	RoomNumber       string      `json:"room_number"`
	RoomType         string      `json:"room_type"`
	GuestName        string      `json:"guest_name"`
	CheckInDate      string      `json:"check_in_date"`
	CheckOutDate     string      `json:"check_out_date"`
	NumberOfNights   int         `json:"number_of_nights"`
	PricePerNight    model.Money `json:"price_per_night"`
	TotalPrice       model.Money `json:"total_price"`
	Status           string      `json:"status"`
	Message          string      `json:"message"`
}

type ConfirmationResult struct {
	Success          bool   `json:"success"`
	BookingReference string `json:"booking_reference"`
	Status           string `json:"status"`
	GuestName        string `json:"guest_name"`
	RoomNumber       string `json:"room_number"`
	CheckInDate      string `json:"check_in_date"`
	CheckOutDate     string `json:"check_out_date"`
	Message          string `json:"message"`
}

// TransitionResult reports a cancellation or a completed stay.
// PreviousStatus is the display label ("Confirmed"), CurrentStatus the
// code ("CANCELLED").
type TransitionResult struct {
	Success          bool   `json:"success"`
	BookingReference string `json:"booking_reference"`
	PreviousStatus   string `json:"previous_status"`
	CurrentStatus    string `json:"current_status"`
	Message          string `json:"message"`
}

type BookingDetails struct {
	Found            bool        `json:"found"`
	BookingReference string      `json:"booking_reference"`
	Status           string      `json:"status"`
	GuestName        string      `json:"guest_name"`
	GuestEmail       string      `json:"guest_email"`
	GuestPhone       string      `json:"guest_phone"`
	RoomNumber       string      `json:"room_number"`
	RoomType         string      `json:"room_type"`
	CheckInDate      string      `json:"check_in_date"`
	CheckOutDate     string      `json:"check_out_date"`
	NumberOfNights   int         `json:"number_of_nights"`
	PricePerNight    model.Money `json:"price_per_night"`
	TotalPrice       model.Money `json:"total_price"`
	CreatedAt        string      `json:"created_at"`
	Message          string      `json:"message,omitempty"`
}

func detailsOf(b model.Booking) BookingDetails {
	return BookingDetails{
		Found:            true,
		BookingReference: b.Reference,
		Status:           b.Status.DisplayName(),
		GuestName:        b.GuestName,
		GuestEmail:       b.GuestEmail,
		GuestPhone:       b.GuestPhone,
		RoomNumber:       b.RoomNumber,
		RoomType:         b.RoomType.DisplayName(),
		CheckInDate:      model.FormatDate(b.CheckIn),
		CheckOutDate:     model.FormatDate(b.CheckOut),
		NumberOfNights:   b.Nights(),
		PricePerNight:    b.PricePerNight,
		TotalPrice:       b.TotalPrice,
		CreatedAt:        b.CreatedAt.Format(model.DateTimeLayout),
		Message:          "Booking found.",
	}
}

// OccupancyStats is the occupancy snapshot for one calendar date.
// OccupancyRate is a percentage rounded half-up to two decimals.
type OccupancyStats struct {
	Date              string  `json:"date"`
	TotalRooms        int     `json:"total_rooms"`
	OccupiedRooms     int     `json:"occupied_rooms"`
	OccupancyRate     float64 `json:"occupancy_rate"`
	ExpectedCheckIns  int     `json:"expected_check_ins"`
	ExpectedCheckOuts int     `json:"expected_check_outs"`
}

type RevenueStats struct {
	StartDate        string      `json:"start_date"`
	EndDate          string      `json:"end_date"`
	TotalRevenue     model.Money `json:"total_revenue"`
	NumberOfBookings int         `json:"number_of_bookings"`
	AverageDailyRate model.Money `json:"average_daily_rate"`
}

// RoomDetail describes a single room.
type RoomDetail struct {
	RoomNumber    string      `json:"room_number"`
	Type          string      `json:"type"`
	DisplayName   string      `json:"display_name"`
	PricePerNight model.Money `json:"price_per_night"`
	MaxOccupancy  int         `json:"max_occupancy"`
	Description   string      `json:"description"`
	Amenities     string      `json:"amenities"`
	Status        string      `json:"status"`
}
