package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDKey is the echo context key holding the request id.
const RequestIDKey = "request_id"

// RequestLog assigns every request an id, echoes it in X-Request-ID and
// writes one access line per request to the echo logger.  An incoming
// X-Request-ID is kept; otherwise the active trace id is used when a span
// is present, falling back to a fresh uuid.
func RequestLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now().UTC()
			req := c.Request()

			id := req.Header.Get(echo.HeaderXRequestID)
			var traceID string
			if sc := trace.SpanContextFromContext(req.Context()); sc.IsValid() {
				traceID = sc.TraceID().String()
			}
			if id == "" {
				id = traceID
			}
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(RequestIDKey, id)
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			err := next(c)
			if err != nil {
				// Let echo render the error so the logged status is final.
				c.Error(err)
			}

			c.Logger().Infof(
				"type: access, id: %s, method: %s, url: %s, status: %d, userAgent: %s, traceID: %s, latency: %s",
				id,
				req.Method,
				req.URL.Path,
				c.Response().Status,
				req.UserAgent(),
				traceID,
				time.Since(start),
			)
			return nil
		}
	}
}
