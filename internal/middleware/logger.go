package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"blood-link/internal/metrics"
)

// RequestLogger writes one access log line per request and records its
// latency. Routes are labelled by pattern to keep metric cardinality low.
func RequestLogger(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			// The error handler has not run yet.
			status, _ = statusFor(err)
		}

		route := c.Route().Path
		metrics.RecordHTTPRequest(c.Method(), route, strconv.Itoa(status), elapsed)

		entry := logger.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"route":      route,
			"status":     status,
			"latency_ms": elapsed.Milliseconds(),
			"ip":         c.IP(),
		})
		if id := GetCurrentUserID(c); id != uuid.Nil {
			entry = entry.WithField("user_id", id)
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Warn("request")
		case status >= fiber.StatusBadRequest:
			entry.Info("request")
		default:
			entry.Debug("request")
		}
		return err
	}
}
