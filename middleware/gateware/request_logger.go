package gateware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderCorrelationID tags every request with a fresh correlation id.
const HeaderCorrelationID = "X-Correlation-ID"

const slowRequestThreshold = time.Second

// RequestLogger tags requests with a correlation id and logs request and
// response lines. Mount it after the gate so the identity headers it reads
// are already verified.
func RequestLogger(logger Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		correlationID := uuid.NewString()
		c.Request().Header.Set(HeaderCorrelationID, correlationID)

		method := c.Method()
		path := c.Path()
		userID := c.Get(HeaderUserID)
		if userID == "" {
			userID = "anonymous"
		}

		start := time.Now()
		logger.Info("request",
			"correlation_id", correlationID,
			"method", method,
			"path", path,
			"user_id", userID,
			"ip", clientIP(c),
		)

		err := c.Next()

		duration := time.Since(start)
		logger.Info("response",
			"correlation_id", correlationID,
			"status", c.Response().StatusCode(),
			"duration_ms", duration.Milliseconds(),
		)

		if duration > slowRequestThreshold {
			logger.Warn("slow request",
				"correlation_id", correlationID,
				"method", method,
				"path", path,
				"duration_ms", duration.Milliseconds(),
			)
		}

		return err
	}
}

func clientIP(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return c.IP()
}
