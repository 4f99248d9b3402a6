package middlewares

import (
	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"

	"exusiai.dev/gommon/constant"
)

// EnrichSentry tags the request's Sentry scope with its request id and route.
func EnrichSentry() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		if hub := fibersentry.GetHubFromContext(c); hub != nil {
			if id, ok := c.Locals(constant.ContextKeyRequestID).(string); ok {
				hub.Scope().SetTag("request_id", id)
			}
			hub.Scope().SetTag("path", c.Path())
		}
		return c.Next()
	}
}
