package httpserver

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/helmet/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"exusiai.dev/dashsync/internal/app/appconfig"
	"exusiai.dev/dashsync/internal/constant"
	"exusiai.dev/dashsync/internal/pkg/bininfo"
	"exusiai.dev/dashsync/internal/pkg/dserr"
	"exusiai.dev/dashsync/internal/pkg/middlewares"
	"exusiai.dev/dashsync/internal/pkg/observability"
)

var registerPromOnce sync.Once

func Create(conf *appconfig.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "dashsync",
		ServerHeader: fmt.Sprintf("dashsync/%s", bininfo.Version),
		ReadTimeout:  time.Second * 20,
		// commands wait for the upstream and for the refresh that follows
		WriteTimeout:   conf.CommandTimeout + time.Second*5,
		ReadBufferSize: 8192,
		// allow possibility for graceful shutdown, otherwise app#Shutdown() will block forever
		IdleTimeout:             conf.HTTPServerShutdownTimeout,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          conf.TrustedProxies,
		ErrorHandler:            ErrorHandler,
		Immutable:               true,
		JSONEncoder:             json.Marshal,
		JSONDecoder:             json.Unmarshal,
	})

	app.Use(favicon.New())
	app.Use(fibersentry.New(fibersentry.Config{
		Repanic: true,
		Timeout: time.Second * 5,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET, POST, OPTIONS",
		AllowHeaders:  "Content-Type, Authorization, X-Requested-With, If-None-Match, sentry-trace",
		ExposeHeaders: "Content-Type, ETag, " + constant.RequestIDHeader,
	}))
	middlewares.Logger(app)
	// the logger middleware injects the request id into the context,
	// and we need an extra middleware to extract it and repopulate it into ctx.Locals
	app.Use(middlewares.RequestID())

	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		if e, ok := err.(*dserr.DashError); ok {
			return handleCustomError(c, e)
		}
		return err
	})

	middlewares.Chained(app,
		helmet.New(helmet.Config{
			HSTSMaxAge:         31356000,
			HSTSPreloadEnabled: true,
			ReferrerPolicy:     "strict-origin-when-cross-origin",
			PermissionPolicy:   "interest-cohort=()",
		}),
		recover.New(recover.Config{
			EnableStackTrace: true,
			StackTraceHandler: func(c *fiber.Ctx, e any) {
				buf := make([]byte, 4096)
				buf = buf[:runtime.Stack(buf, false)]
				log.Error().Msgf("panic: %v\n%s\n", e, buf)
			},
		}),
	)
	registerPromOnce.Do(func() {
		fiberprom := fiberprometheus.New(observability.ServiceName)
		fiberprom.RegisterAt(app, "/metrics")
		app.Use(fiberprom.Middleware)
	})

	if conf.DevMode {
		log.Info().Msg("Running in DEV mode")
		app.Use(pprof.New())
	} else {
		app.Use(middlewares.EnrichSentry())
	}

	return app
}
