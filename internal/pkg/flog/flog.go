// Package flog attaches a request-scoped zerolog logger to fiber requests.
package flog

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FromFiberCtx gets the logger in the request's context, or the global logger
// before the handler middleware ran.
func FromFiberCtx(c *fiber.Ctx) *zerolog.Logger {
	if l := log.Ctx(c.UserContext()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

// NewHandlerMiddleware injects a copy of l into every request's context.
func NewHandlerMiddleware(l zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// a copy per request, UpdateContext would race otherwise
		rl := l.With().Logger()
		c.SetUserContext(rl.WithContext(c.UserContext()))
		return c.Next()
	}
}

// FieldHandler adds value(c) to the request logger under fieldKey.
func FieldHandler(fieldKey string, value func(c *fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v := value(c)
		zerolog.Ctx(c.UserContext()).UpdateContext(func(zc zerolog.Context) zerolog.Context {
			return zc.Str(fieldKey, v)
		})
		return c.Next()
	}
}

func URLHandler(fieldKey string) fiber.Handler {
	return FieldHandler(fieldKey, func(c *fiber.Ctx) string { return c.Path() })
}

func MethodHandler(fieldKey string) fiber.Handler {
	return FieldHandler(fieldKey, func(c *fiber.Ctx) string { return c.Method() })
}

func RemoteAddrHandler(fieldKey string) fiber.Handler {
	return FieldHandler(fieldKey, func(c *fiber.Ctx) string { return c.IP() })
}

func UserAgentHandler(fieldKey string) fiber.Handler {
	return FieldHandler(fieldKey, func(c *fiber.Ctx) string { return c.Get(fiber.HeaderUserAgent) })
}

type idKey struct{}

// IDFromFiberCtx returns the request id set by RequestIDHandler, if any.
func IDFromFiberCtx(c *fiber.Ctx) (id xid.ID, ok bool) {
	if c == nil {
		return
	}
	return IDFromCtx(c.UserContext())
}

func IDFromCtx(ctx context.Context) (id xid.ID, ok bool) {
	id, ok = ctx.Value(idKey{}).(xid.ID)
	return
}

func CtxWithID(ctx context.Context, id xid.ID) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// RequestIDHandler assigns every request an xid, logs it under fieldKey and echoes
// it in headerName. Empty keys are skipped.
func RequestIDHandler(fieldKey, headerName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := IDFromFiberCtx(c)
		if !ok {
			id = xid.New()
			c.SetUserContext(CtxWithID(c.UserContext(), id))
		}
		if fieldKey != "" {
			FromFiberCtx(c).UpdateContext(func(zc zerolog.Context) zerolog.Context {
				return zc.Str(fieldKey, id.String())
			})
		}
		if headerName != "" {
			c.Set(headerName, id.String())
		}
		return c.Next()
	}
}

// AccessHandler calls f after each request.
func AccessHandler(f func(c *fiber.Ctx, duration time.Duration)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		f(c, time.Since(start))
		return err
	}
}

func InfoFrom(c *fiber.Ctx) *zerolog.Event {
	return FromFiberCtx(c).Info()
}

func WarnFrom(c *fiber.Ctx) *zerolog.Event {
	return FromFiberCtx(c).Warn()
}

func ErrorFrom(c *fiber.Ctx) *zerolog.Event {
	return FromFiberCtx(c).Error()
}
