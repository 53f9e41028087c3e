package logging

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// FiberMiddleware returns a Fiber middleware that:
//  1. Generates or reads a request ID from X-Request-ID header.
//  2. Creates a child logger with request metadata and stores it in locals.
//  3. Sets the X-Request-ID response header.
//  4. Logs the completed request with status and latency.
func FiberMiddleware(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqID := c.Get(headerRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}

		child := logger.With().
			Str(FieldRequestID, reqID).
			Str(FieldMethod, c.Method()).
			Str(FieldPath, c.Path()).
			Str(FieldClientIP, c.IP()).
			Logger()

		c.Set(headerRequestID, reqID)
		c.Locals("logger", &child)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
		}

		child.Info().
			Int(FieldStatus, status).
			Float64(FieldLatency, float64(time.Since(start).Milliseconds())).
			Msg("request completed")

		return err
	}
}

// FromCtx returns the request-scoped logger, falling back to the global one.
func FromCtx(c *fiber.Ctx) zerolog.Logger {
	if l, ok := c.Locals("logger").(*zerolog.Logger); ok {
		return *l
	}
	return L()
}
