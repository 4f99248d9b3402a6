package controller

import (
	"go.uber.org/fx"

	controllerapi "exusiai.dev/dashsync/internal/controller/api"
	controllermeta "exusiai.dev/dashsync/internal/controller/meta"
)

func Module() fx.Option {
	return fx.Module("controller",
		// Controllers (dashboard host)
		controllerapi.Module(),

		// Controllers (meta)
		controllermeta.Module(),
	)
}
