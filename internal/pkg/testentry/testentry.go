package testentry

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"exusiai.dev/dashsync/internal/app"
	"exusiai.dev/dashsync/internal/app/appcontext"
)

// Populate builds the one-shot application graph and fills targets from it. The
// app is stopped when t finishes.
func Populate(t testing.TB, targets ...any) {
	t.Helper()
	t.Setenv("DASHSYNC_LOG_FILE", "")

	opts := app.Options(appcontext.Declare(appcontext.EnvCLI))
	// for testing, logger is too annoying. therefore, we use a NopLogger here
	opts = append(opts, fx.NopLogger)
	opts = append(opts, fx.Populate(targets...))
	opts = append(opts, fx.Invoke(func() {
		log.Logger = log.Logger.Output(zerolog.NewTestWriter(t))
	}))

	a := fx.New(opts...)
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("testentry: start app: %v", err)
	}
	t.Cleanup(func() {
		_ = a.Stop(context.Background())
	})
}
