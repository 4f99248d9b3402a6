package api

import (
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/zeebo/xxh3"
	"go.uber.org/fx"

	"exusiai.dev/dashsync/internal/constant"
	"exusiai.dev/dashsync/internal/pkg/cachectrl"
	"exusiai.dev/dashsync/internal/server/svr"
	"exusiai.dev/dashsync/internal/service"
)

type View struct {
	fx.In

	Dashboard *service.Dashboard
}

func RegisterView(api *svr.API, c View) {
	api.Get("/view", c.Snapshot)
	api.Get("/view/document", c.Document)
}

// Snapshot returns the current view state. The ETag is a hash of the body, so a
// client polling with If-None-Match gets 304 until a channel merges something new.
func (c *View) Snapshot(ctx *fiber.Ctx) error {
	return sendTagged(ctx, c.Dashboard.Snapshot())
}

// Document returns the view rendered onto element ids.
func (c *View) Document(ctx *fiber.Ctx) error {
	return sendTagged(ctx, fiber.Map{
		"route":    c.Dashboard.Route(),
		"elements": c.Dashboard.Document().Elements(),
	})
}

func sendTagged(ctx *fiber.Ctx, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	cachectrl.OptOut(ctx)
	etag := `"` + strconv.FormatUint(xxh3.Hash(body), 16) + `"`
	ctx.Set(fiber.HeaderETag, etag)

	if ctx.Get(fiber.HeaderIfNoneMatch) == etag {
		ctx.Set(constant.ETagCacheHeader, "hit")
		return ctx.SendStatus(fiber.StatusNotModified)
	}

	ctx.Set(constant.ETagCacheHeader, "miss")
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return ctx.Send(body)
}
