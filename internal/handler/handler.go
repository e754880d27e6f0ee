// Package handler exposes the booking ledger over HTTP.  Handlers only
// translate between JSON and ledger calls; every decision lives in the
// ledger.
package handler

import (
	"context"

	"github.com/iliyamo/hotel-reservation/internal/catalog"
	"github.com/iliyamo/hotel-reservation/internal/ledger"
)

// Ledger is the subset of *ledger.Ledger used by the handlers.
type Ledger interface {
	ListRoomTypes(ctx context.Context) ([]ledger.RoomTypeInfo, error)
	CheckAvailability(ctx context.Context, roomType, checkIn, checkOut string) (*ledger.AvailabilityResult, error)
	RoomDetail(ctx context.Context, number string) (*ledger.RoomDetail, error)
	Create(ctx context.Context, req ledger.CreateRequest) (*ledger.BookingResult, error)
	Confirm(ctx context.Context, ref string) (*ledger.ConfirmationResult, error)
	Cancel(ctx context.Context, ref string) (*ledger.TransitionResult, error)
	Complete(ctx context.Context, ref string) (*ledger.TransitionResult, error)
	Details(ctx context.Context, ref string) (*ledger.BookingDetails, error)
	Search(ctx context.Context, q ledger.SearchQuery) ([]ledger.BookingDetails, error)
	Occupancy(ctx context.Context, date string) (*ledger.OccupancyStats, error)
	Revenue(ctx context.Context, start, end string) (*ledger.RevenueStats, error)
}

var _ Ledger = (*ledger.Ledger)(nil)

// HotelHandler serves catalog, booking and report endpoints.
type HotelHandler struct {
	Ledger Ledger
	Hotel  catalog.Hotel
}

// NewHotelHandler panics on a nil ledger; it is a wiring bug, not a
// runtime condition.
func NewHotelHandler(l Ledger, hotel catalog.Hotel) *HotelHandler {
	if l == nil {
		panic("nil ledger passed to NewHotelHandler")
	}
	return &HotelHandler{Ledger: l, Hotel: hotel}
}
