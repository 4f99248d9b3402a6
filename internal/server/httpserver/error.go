package httpserver

import (
	"strconv"

	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"

	"exusiai.dev/dashsync/internal/pkg/dserr"
	"exusiai.dev/dashsync/internal/pkg/flog"
)

func handleCustomError(ctx *fiber.Ctx, e *dserr.DashError) error {
	flog.WarnFrom(ctx).
		Err(e).
		Str("method", ctx.Method()).
		Str("path", ctx.Path()).
		Msg(e.Message)

	body := fiber.Map{
		"code":    e.ErrorCode,
		"message": e.Message,
	}

	if e.Extras != nil && len(*e.Extras) > 0 {
		for k, v := range *e.Extras {
			body[k] = v
		}
	}

	return ctx.Status(e.StatusCode).JSON(body)
}

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	if e, ok := err.(*dserr.DashError); ok {
		return handleCustomError(ctx, e)
	}

	re := *dserr.ErrInternalError

	if e, ok := err.(*fiber.Error); ok {
		re.StatusCode = e.Code
		re.ErrorCode = "UNKNOWN_ERROR"
		re.Message = e.Message
	}

	if re.StatusCode >= fiber.StatusInternalServerError {
		flog.ErrorFrom(ctx).
			Stack().
			Err(err).
			Str("method", ctx.Method()).
			Str("path", ctx.Path()).
			Int("status", re.StatusCode).
			Msg("Internal Server Error")

		if hub := fibersentry.GetHubFromContext(ctx); hub != nil {
			hub.Scope().SetTag("status", strconv.Itoa(re.StatusCode))
			hub.CaptureException(err)
		}
	}

	return handleCustomError(ctx, &re)
}
