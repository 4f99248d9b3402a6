package shipment

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	cliapp "exusiai.dev/dashsync/cmd/app/cli"
	"exusiai.dev/dashsync/internal/command"
	"exusiai.dev/dashsync/internal/service"
)

type CommandDeps struct {
	fx.In

	Dashboard *service.Dashboard
}

func depsFn() (CommandDeps, func(), error) {
	var deps CommandDeps
	a, err := cliapp.Start(fx.Populate(&deps))
	if err != nil {
		return deps, nil, err
	}
	return deps, func() { _ = a.Stop(context.Background()) }, nil
}

func Command() *cli.Command {
	return &cli.Command{
		Name:  "shipment",
		Usage: "inspect and act on shipments",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "print the detail of one or more shipments",
				ArgsUsage: "<id>...",
				Action: func(c *cli.Context) error {
					ids, err := parseIDs(c.Args().Slice())
					if err != nil {
						return err
					}
					deps, stop, err := depsFn()
					if err != nil {
						return err
					}
					defer stop()
					return show(c.Context, deps, ids, os.Stdout)
				},
			},
			actionCommand(command.Complete, "mark a shipment as complete"),
			actionCommand(command.Refund, "refund a shipment"),
		},
	}
}

func actionCommand(k command.Kind, usage string) *cli.Command {
	return &cli.Command{
		Name:      string(k),
		Usage:     usage,
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "skip the confirmation prompt",
			},
		},
		Action: func(c *cli.Context) error {
			ids, err := parseIDs(c.Args().Slice())
			if err != nil {
				return err
			}
			if len(ids) != 1 {
				return cli.Exit("exactly one shipment id is required", 2)
			}

			var confirmer command.Confirmer = command.TerminalConfirmer{In: os.Stdin, Out: os.Stderr}
			if c.Bool("yes") {
				confirmer = command.Static(true)
			}

			deps, stop, err := depsFn()
			if err != nil {
				return err
			}
			defer stop()
			return execute(c.Context, deps, k, ids[0], confirmer, os.Stdout)
		},
	}
}
