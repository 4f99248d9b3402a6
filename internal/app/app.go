package app

import (
	"time"

	"go.uber.org/fx"

	"exusiai.dev/dashsync/internal/app/appconfig"
	"exusiai.dev/dashsync/internal/app/appcontext"
	"exusiai.dev/dashsync/internal/controller"
	"exusiai.dev/dashsync/internal/infra"
	"exusiai.dev/dashsync/internal/pkg/logger"
	"exusiai.dev/dashsync/internal/repo"
	"exusiai.dev/dashsync/internal/server"
	"exusiai.dev/dashsync/internal/service"
)

func Options(ctx appcontext.Ctx, additionalOpts ...fx.Option) []fx.Option {
	conf, err := appconfig.Parse(ctx)
	if err != nil {
		panic(err)
	}

	// logger and configuration are the only two things that are not in the fx graph
	// because some other packages need them to be initialized before fx starts
	logger.Configure(conf)

	baseOpts := []fx.Option{
		// fx meta
		fx.WithLogger(logger.Fx),

		// Misc
		fx.Supply(conf),

		// Infrastructures
		infra.Module(),

		// Repositories
		repo.Module(),

		// Services
		service.Module(),

		// Global Singleton Inits: Keep those before controllers to ensure they are initialized
		// before controllers are registered as controllers are also fx#Invoke functions which
		// are called in the order of their registration.
		fx.Invoke(infra.SentryInit),

		// fx Extra Options
		fx.StartTimeout(1 * time.Second),
		// StopTimeout is not typically needed, since we're using fiber's Shutdown(),
		// in which fiber has its own IdleTimeout for controlling the shutdown timeout.
		// It acts as a countermeasure in case the fiber app is not properly shutting down.
		fx.StopTimeout(conf.HTTPServerShutdownTimeout + conf.FetchTimeout),
	}

	switch ctx.Env {
	case appcontext.EnvServer:
		baseOpts = append(baseOpts,
			// Servers
			server.Module(),

			// Controllers
			controller.Module(),

			// Engine
			fx.Invoke(service.RunDashboard),
		)
	case appcontext.EnvWatch:
		// the watcher starts the engine itself, after it has subscribed to changes
	case appcontext.EnvCLI:
		// one-shot commands never schedule channels
	}

	return append(baseOpts, additionalOpts...)
}

func New(ctx appcontext.Ctx, additionalOpts ...fx.Option) *fx.App {
	return fx.New(Options(ctx, additionalOpts...)...)
}
