package transport

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/talentwire/pipeline-tracker/internal/observability"
)

// RequestContext copies the request id assigned by the requestid middleware
// into the user context, so service and worker logs can correlate one request
// end to end.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := ""
		if value, ok := c.Locals("requestid").(string); ok {
			requestID = strings.TrimSpace(value)
		}
		if requestID == "" {
			requestID = strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		}

		if requestID != "" {
			c.SetUserContext(observability.WithCorrelationID(c.UserContext(), requestID))
		}
		return c.Next()
	}
}
