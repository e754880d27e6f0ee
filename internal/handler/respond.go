package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/ledger"
)

// failureBody is the JSON shape of every rejected request.
type failureBody struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	BookingReference string `json:"booking_reference,omitempty"`
	Status           string `json:"status,omitempty"`
}

// statusOf maps a failure kind onto an HTTP status.
func statusOf(f *ledger.Failure) int {
	switch {
	case errors.Is(f.Kind, ledger.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(f.Kind, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(f.Kind, ledger.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

// fail writes err as a failure body.  Errors that are not ledger failures
// are logged and reported as 503 without their text.
func fail(c echo.Context, err error) error {
	f, ok := ledger.AsFailure(err)
	if !ok {
		c.Logger().Errorf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusServiceUnavailable, failureBody{
			Message: "The booking service is temporarily unavailable. Please try again.",
		})
	}
	status := statusOf(f)
	if status == http.StatusServiceUnavailable {
		c.Logger().Warnf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, failureBody{
		Message:          f.Message,
		BookingReference: f.Reference,
		Status:           f.Status,
	})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, failureBody{Message: msg})
}
