package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"exusiai.dev/dashsync/internal/pkg/flog"
	"exusiai.dev/dashsync/internal/pkg/middlewares"
	"exusiai.dev/dashsync/internal/server/svr"
	"exusiai.dev/dashsync/internal/service"
)

type NavigateRequest struct {
	Path string `json:"path" form:"path" validate:"required,routepath"`
}

type Route struct {
	fx.In

	Dashboard *service.Dashboard
}

func RegisterRoute(api *svr.API, c Route) {
	api.Get("/route", c.Current)
	api.Post("/route", middlewares.InjectValidBody[NavigateRequest](), c.Navigate)
}

func (c *Route) Current(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"route": c.Dashboard.Route(),
	})
}

// Navigate is the route signal of the host: it gates every channel on the new path.
func (c *Route) Navigate(ctx *fiber.Ctx) error {
	req := ctx.Locals("body").(*NavigateRequest)

	activated, deactivated := c.Dashboard.Navigate(req.Path)
	flog.InfoFrom(ctx).
		Str("evt.name", "api.navigate").
		Str("route", req.Path).
		Msg("route changed by host")

	return ctx.JSON(fiber.Map{
		"route":       req.Path,
		"activated":   nonNil(activated),
		"deactivated": nonNil(deactivated),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
