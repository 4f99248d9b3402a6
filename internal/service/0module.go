package service

import (
	"context"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("service", fx.Provide(
		NewDashboard,
		NewHealth,
		NewConfirmation,
	))
}

// RunDashboard ties the polling engine to the application lifecycle.
func RunDashboard(lc fx.Lifecycle, d *Dashboard) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			d.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Stop()
			return nil
		},
	})
}
