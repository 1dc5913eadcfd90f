package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tphakala/hogwarts-heroes/internal/logger"
)

// RequestIDContextKey holds the request ID in the echo context.
const RequestIDContextKey = "request_id"

// NewRequestID assigns each request a short ID, honouring an incoming
// X-Request-ID header. The ID is echoed in the response, stored in the echo
// context and attached to the request context as the logger trace ID.
func NewRequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return uuid.New().String()[:8]
		},
		RequestIDHandler: func(c echo.Context, requestID string) {
			c.Set(RequestIDContextKey, requestID)
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithTraceID(req.Context(), requestID)))
		},
	})
}

// RequestID returns the ID assigned by NewRequestID, or "".
func RequestID(c echo.Context) string {
	id, _ := c.Get(RequestIDContextKey).(string)
	return id
}
