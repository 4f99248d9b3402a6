package repo

import (
	"go.uber.org/fx"

	"exusiai.dev/dashsync/internal/util"
)

func Module() fx.Option {
	return fx.Module("repo", fx.Provide(
		util.NewValidator,
		NewMetrics,
		NewAlert,
		NewShipment,
	))
}
