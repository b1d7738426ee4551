package logger

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "requestId"
	loggerKey    = "logger"
)

// WithRequest stores a logger tagged with the request id on the context.
func WithRequest(c *fiber.Ctx, base *zap.Logger, requestID string) *zap.Logger {
	log := base.With(zap.String("request_id", requestID))
	c.Locals(requestIDKey, requestID)
	c.Locals(loggerKey, log)
	return log
}

// FromContext returns the request logger, falling back to the global logger.
func FromContext(c *fiber.Ctx) *zap.Logger {
	if log, ok := c.Locals(loggerKey).(*zap.Logger); ok {
		return log
	}
	return zap.L()
}

// RequestID returns the id assigned to the current request, if any.
func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}
