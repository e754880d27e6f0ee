// Package queue carries booking lifecycle events over RabbitMQ: a publisher
// used by the ledger after each committed change and a consumer that
// appends every event to the booking log.
package queue

// Event types published on the booking events queue.
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
)

// BookingEvent is published after a booking is created or changes status.
// It carries enough information for downstream consumers to log, notify or
// feed analytics without querying the ledger.
type BookingEvent struct {
	Type            string `json:"type"`
	Reference       string `json:"booking_reference"`
	Status          string `json:"status"`
	PreviousStatus  string `json:"previous_status,omitempty"`
	RoomNumber      string `json:"room_number"`
	RoomType        string `json:"room_type"`
	GuestName       string `json:"guest_name"`
	GuestEmail      string `json:"guest_email"`
	CheckIn         string `json:"check_in_date"`
	CheckOut        string `json:"check_out_date"`
	Nights          int    `json:"number_of_nights"`
	TotalPriceCents int64  `json:"total_price_cents"`
	OccurredAt      string `json:"occurred_at"`
}
