package server

import (
	"context"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"exusiai.dev/dashsync/internal/app"
	"exusiai.dev/dashsync/internal/app/appconfig"
	"exusiai.dev/dashsync/internal/app/appcontext"
)

func Run() {
	app.New(appcontext.Declare(appcontext.EnvServer), fx.Invoke(run)).Run()
}

func run(serverApp *fiber.App, conf *appconfig.Config, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", conf.ServiceAddress)
			if err != nil {
				return err
			}

			go func() {
				log.Info().Str("address", conf.ServiceAddress).Msg("dashboard host listening")
				if err := serverApp.Listener(ln); err != nil {
					log.Error().Err(err).Msg("server terminated unexpectedly")
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if conf.DevMode {
				return nil
			}
			return serverApp.ShutdownWithContext(ctx)
		},
	})
}
