package cli

import (
	"context"

	"go.uber.org/fx"

	"exusiai.dev/dashsync/internal/app"
	"exusiai.dev/dashsync/internal/app/appcontext"
)

// Start builds the application for one-shot commands. Callers stop it when done.
func Start(module fx.Option) (*fx.App, error) {
	a := app.New(appcontext.Declare(appcontext.EnvCLI), module)
	if err := a.Start(context.Background()); err != nil {
		return nil, err
	}
	return a, nil
}
