package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"exusiai.dev/dashsync/internal/command"
	"exusiai.dev/dashsync/internal/constant"
	"exusiai.dev/dashsync/internal/pkg/dserr"
	"exusiai.dev/dashsync/internal/pkg/flog"
	"exusiai.dev/dashsync/internal/server/svr"
	"exusiai.dev/dashsync/internal/service"
)

type Shipment struct {
	fx.In

	Dashboard    *service.Dashboard
	Confirmation *service.Confirmation
}

func RegisterShipment(api *svr.API, c Shipment) {
	api.Get("/shipments/:id", c.Detail)
	api.Post("/shipments/:id/:action", c.Execute)
}

func shipmentID(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, dserr.ErrInvalidReq.Msg("invalid or missing shipment id")
	}
	return id, nil
}

func (c *Shipment) Detail(ctx *fiber.Ctx) error {
	id, err := shipmentID(ctx)
	if err != nil {
		return err
	}

	detail, err := c.Dashboard.Detail(ctx.UserContext(), id)
	if err != nil {
		return dserr.ErrUpstreamUnavailable.Msg("failed to load shipment #%d: %s", id, err)
	}
	return ctx.JSON(detail)
}

// Execute runs complete or refund. The first call answers 409 with a confirmation
// token; repeating the call with ?confirm=<token> sends the command.
func (c *Shipment) Execute(ctx *fiber.Ctx) error {
	id, err := shipmentID(ctx)
	if err != nil {
		return err
	}
	kind, err := command.ParseKind(ctx.Params("action"))
	if err != nil {
		return dserr.ErrNotFound.Msg("unknown shipment action %q", ctx.Params("action"))
	}

	token := ctx.Query(constant.ConfirmTokenQuery)
	if token == "" {
		return c.confirmationRequired(kind, id)
	}
	confirmer, err := c.Confirmation.Redeem(token, kind, id)
	if err != nil {
		return c.confirmationRequired(kind, id)
	}

	msg, err := c.Dashboard.Execute(ctx.UserContext(), kind, id, confirmer)
	if err != nil {
		flog.WarnFrom(ctx).
			Err(err).
			Str("evt.name", "api.command.failed").
			Str("command", string(kind)).
			Int64("shipment", id).
			Msg("command failed")
		if errors.Is(err, command.ErrMissingToken) {
			return dserr.ErrCommandFailed.Msg("no anti-forgery token is configured for the dashboard backend")
		}
		return dserr.ErrCommandFailed.Msg("%s", err)
	}

	return ctx.JSON(fiber.Map{
		"message": msg,
	})
}

func (c *Shipment) confirmationRequired(kind command.Kind, id int64) error {
	return dserr.ErrConfirmationRequired.WithExtras(dserr.Extras{
		"prompt":  kind.Prompt(id),
		"confirm": c.Confirmation.Issue(kind, id),
	})
}
