package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/ledger"
)

// CreateBooking handles POST /v1/bookings.  The body is a JSON object with
// room_number, guest_name, guest_email, guest_phone, check_in_date and
// check_out_date.  A new booking is Pending and answered with 201.
func (h *HotelHandler) CreateBooking(c echo.Context) error {
	var req ledger.CreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	res, err := h.Ledger.Create(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// ConfirmBooking handles POST /v1/bookings/:reference/confirm.
func (h *HotelHandler) ConfirmBooking(c echo.Context) error {
	res, err := h.Ledger.Confirm(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// CancelBooking handles POST /v1/bookings/:reference/cancel.
func (h *HotelHandler) CancelBooking(c echo.Context) error {
	return h.transition(c, h.Ledger.Cancel)
}

// CompleteBooking handles POST /v1/bookings/:reference/complete.
func (h *HotelHandler) CompleteBooking(c echo.Context) error {
	return h.transition(c, h.Ledger.Complete)
}

func (h *HotelHandler) transition(c echo.Context, op func(context.Context, string) (*ledger.TransitionResult, error)) error {
	res, err := op(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// GetBooking handles GET /v1/bookings/:reference.
func (h *HotelHandler) GetBooking(c echo.Context) error {
	res, err := h.Ledger.Details(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// SearchBookings handles GET /v1/bookings?name=&phone=&email=.  Without
// any filter the list is empty rather than the whole ledger.
func (h *HotelHandler) SearchBookings(c echo.Context) error {
	q := ledger.SearchQuery{
		Name:  c.QueryParam("name"),
		Phone: c.QueryParam("phone"),
		Email: c.QueryParam("email"),
	}
	found, err := h.Ledger.Search(c.Request().Context(), q)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(found), "bookings": found})
}
