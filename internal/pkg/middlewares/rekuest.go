package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"exusiai.dev/dashsync/internal/util/rekuest"
)

// InjectValidBody parses and validates the request body as T and stores it under
// the "body" locals key.
func InjectValidBody[T any]() func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		var dest T
		if err := rekuest.ValidBody(ctx, &dest); err != nil {
			return err
		}

		ctx.Locals("body", &dest)

		return ctx.Next()
	}
}
