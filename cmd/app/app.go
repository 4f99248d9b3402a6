package app

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"exusiai.dev/dashsync/cmd/app/cli/shipment"
	"exusiai.dev/dashsync/cmd/app/server"
	"exusiai.dev/dashsync/cmd/app/watch"
	"exusiai.dev/dashsync/internal/pkg/bininfo"
)

func Run() {
	app := &cli.App{
		Name:        "dashsync",
		Description: "Keeps a cold-chain shipment dashboard in sync with its backend. Built with Go, fiber and go.uber.org/fx.",
		Version:     bininfo.Version,
		Commands: []*cli.Command{
			server.Command(),
			watch.Command(),
			shipment.Command(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run app")
	}
}
