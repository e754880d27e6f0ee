// Package router registers the HTTP routes of the hotel API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/handler"
)

// Options carries the pieces RegisterRoutes wires together.  Nil
// middlewares are skipped.
type Options struct {
	Hotel *handler.HotelHandler
	// Store backs /healthz.
	Store handler.Pinger
	// RateLimit wraps every /v1 route.
	RateLimit echo.MiddlewareFunc
	// Cache wraps catalog reads only.  Availability, bookings and reports
	// must always reflect the ledger.
	Cache echo.MiddlewareFunc
}

// RegisterRoutes maps the health check and the /v1 API onto e.
func RegisterRoutes(e *echo.Echo, o Options) {
	e.GET("/healthz", handler.Health(o.Store))

	v1 := e.Group("/v1", skipNil(o.RateLimit)...)
	h := o.Hotel
	cached := skipNil(o.Cache)

	v1.GET("/hotel", h.GetHotel, cached...)
	v1.GET("/room-types", h.ListRoomTypes, cached...)
	v1.GET("/rooms/:number", h.GetRoom, cached...)
	v1.GET("/availability", h.CheckAvailability)

	v1.POST("/bookings", h.CreateBooking)
	v1.GET("/bookings", h.SearchBookings)
	v1.GET("/bookings/:reference", h.GetBooking)
	v1.POST("/bookings/:reference/confirm", h.ConfirmBooking)
	v1.POST("/bookings/:reference/cancel", h.CancelBooking)
	v1.POST("/bookings/:reference/complete", h.CompleteBooking)

	v1.GET("/reports/occupancy", h.OccupancyReport)
	v1.GET("/reports/revenue", h.RevenueReport)
}

func skipNil(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	var out []echo.MiddlewareFunc
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}
