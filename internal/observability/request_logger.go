package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestIDKey is the fiber Locals key holding the request id.
const RequestIDKey = "requestid"

// RequestLogger logs every request and feeds the HTTP metrics. Register it
// outside the error middleware so the rendered status is recorded.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		route := c.Route().Path
		metrics.RecordRequest(route, c.Method(), status, latency)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}
		ForRequest(logger, c).Info("request", fields...)
		return err
	}
}

// ForRequest returns logger tagged with the request id assigned by the
// requestid middleware, or logger itself when none was assigned.
func ForRequest(logger *zap.Logger, c *fiber.Ctx) *zap.Logger {
	if id, ok := c.Locals(RequestIDKey).(string); ok && id != "" {
		return logger.With(zap.String("request_id", id))
	}
	return logger
}
