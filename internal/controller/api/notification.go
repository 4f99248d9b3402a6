package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"exusiai.dev/dashsync/internal/model"
	"exusiai.dev/dashsync/internal/pkg/cachectrl"
	"exusiai.dev/dashsync/internal/server/svr"
	"exusiai.dev/dashsync/internal/service"
)

type Notification struct {
	fx.In

	Dashboard *service.Dashboard
}

func RegisterNotification(api *svr.API, c Notification) {
	api.Get("/notifications", c.Drain)
}

// Drain returns and removes every pending notification.
func (c *Notification) Drain(ctx *fiber.Ctx) error {
	cachectrl.OptOut(ctx)
	notes := c.Dashboard.Notifications()
	if notes == nil {
		notes = []*model.Notification{}
	}
	return ctx.JSON(notes)
}
