package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// OccupancyReport handles GET /v1/reports/occupancy?date=YYYY-MM-DD.
func (h *HotelHandler) OccupancyReport(c echo.Context) error {
	stats, err := h.Ledger.Occupancy(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// RevenueReport handles GET /v1/reports/revenue?start=&end=.  Both bounds
// are inclusive check-in dates.
func (h *HotelHandler) RevenueReport(c echo.Context) error {
	stats, err := h.Ledger.Revenue(c.Request().Context(), c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
