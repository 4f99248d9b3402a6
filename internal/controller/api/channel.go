package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"exusiai.dev/dashsync/internal/pkg/cachectrl"
	"exusiai.dev/dashsync/internal/pkg/dserr"
	"exusiai.dev/dashsync/internal/server/svr"
	"exusiai.dev/dashsync/internal/service"
)

type Channel struct {
	fx.In

	Dashboard *service.Dashboard
	Health    *service.Health
}

func RegisterChannel(api *svr.API, c Channel) {
	api.Get("/channels", c.List)
	api.Post("/channels/:name/refresh", c.Refresh)
}

func (c *Channel) List(ctx *fiber.Ctx) error {
	cachectrl.OptOut(ctx)
	return ctx.JSON(fiber.Map{
		"route":     c.Dashboard.Route(),
		"channels":  c.Dashboard.Channels(),
		"unhealthy": len(c.Health.Unhealthy()),
	})
}

// Refresh polls one channel out of cycle and reports the outcome.
func (c *Channel) Refresh(ctx *fiber.Ctx) error {
	res, err := c.Dashboard.Refresh(ctx.UserContext(), ctx.Params("name"))
	if err != nil {
		return dserr.ErrNotFound.Msg("%s", err)
	}
	return ctx.JSON(fiber.Map{
		"result": res.String(),
	})
}
