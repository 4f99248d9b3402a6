package watch

import (
	"os"

	"github.com/urfave/cli/v2"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "run the polling engine and re-render the dashboard in the terminal on every change",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "route",
				Usage: "route to navigate to; defaults to DASHSYNC_INITIAL_ROUTE",
			},
		},
		Action: func(c *cli.Context) error {
			Run(c.String("route"), os.Stdout)
			return nil
		},
	}
}
