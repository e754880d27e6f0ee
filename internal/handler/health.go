package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports backend reachability.  repository.Store satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health is used by load balancers to verify that the service is running
// and its store answers.  It returns "ok" with 200, or 503 when the ping
// fails within two seconds.
func Health(store Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if store != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				c.Logger().Warnf("health: store ping: %v", err)
				return c.String(http.StatusServiceUnavailable, "store unavailable")
			}
		}
		return c.String(http.StatusOK, "ok")
	}
}
