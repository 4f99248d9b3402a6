package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"exusiai.dev/dashsync/internal/pkg/dserr"
)

func Accepts(mimes ...string) func(ctx *fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		if ctx.Accepts(mimes...) != "" {
			return ctx.Next()
		}

		return dserr.ErrInvalidReq.Msg("invalid or missing Accept header. Accepts: %s", strings.Join(mimes, ", "))
	}
}

var AcceptsJSON = Accepts(fiber.MIMEApplicationJSON)
