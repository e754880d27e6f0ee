package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListRoomTypes handles GET /v1/room-types.
func (h *HotelHandler) ListRoomTypes(c echo.Context) error {
	types, err := h.Ledger.ListRoomTypes(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"room_types": types})
}

// CheckAvailability handles GET /v1/availability.  An empty result is a
// 200 with available=false.
func (h *HotelHandler) CheckAvailability(c echo.Context) error {
	res, err := h.Ledger.CheckAvailability(c.Request().Context(),
		c.QueryParam("room_type"), c.QueryParam("check_in"), c.QueryParam("check_out"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// GetRoom handles GET /v1/rooms/:number.
func (h *HotelHandler) GetRoom(c echo.Context) error {
	room, err := h.Ledger.RoomDetail(c.Request().Context(), c.Param("number"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// GetHotel handles GET /v1/hotel.
func (h *HotelHandler) GetHotel(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Hotel)
}
