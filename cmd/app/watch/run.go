package watch

import (
	"context"
	"io"

	"go.uber.org/fx"

	"exusiai.dev/dashsync/internal/app"
	"exusiai.dev/dashsync/internal/app/appcontext"
	"exusiai.dev/dashsync/internal/service"
)

func Run(route string, out io.Writer) {
	app.New(appcontext.Declare(appcontext.EnvWatch), fx.Invoke(func(lc fx.Lifecycle, d *service.Dashboard) {
		watch(lc, d, route, out)
	})).Run()
}

// watch subscribes to view changes before starting the engine at route, so the
// first merge is printed too.
func watch(lc fx.Lifecycle, d *service.Dashboard, route string, out io.Writer) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			notifier := d.State().Notifier()
			sub := notifier.Subscribe()
			go func() {
				defer close(done)
				defer notifier.Unsubscribe(sub)
				for {
					select {
					case <-ctx.Done():
						return
					case <-sub:
						Print(out, d.Route(), d.Document())
					}
				}
			}()
			d.StartAt(route)
			return nil
		},
		OnStop: func(context.Context) error {
			d.Stop()
			cancel()
			<-done
			return nil
		},
	})
}
