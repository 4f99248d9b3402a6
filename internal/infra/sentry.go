package infra

import (
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"

	"exusiai.dev/dashsync/internal/app/appconfig"
	"exusiai.dev/dashsync/internal/pkg/bininfo"
)

// SentryInit initializes sentry with side-effect
func SentryInit(conf *appconfig.Config) error {
	if conf.SentryDSN == "" {
		log.Warn().Msg("Sentry is disabled due to missing DSN.")
		return nil
	} else {
		log.Info().Msg("Initializing Sentry...")
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              conf.SentryDSN,
		Release:          "dashsync@" + bininfo.Version,
		Debug:            conf.DevMode,
		AttachStacktrace: true,
		TracesSampleRate: 0.01,
	})
}

// CaptureChannelFailure reports a failed channel fetch. It is a no-op while Sentry
// is not initialized.
func CaptureChannelFailure(channel string, err error) {
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("channel", channel)
		scope.SetLevel(sentry.LevelWarning)
	})
	hub.CaptureException(err)
}
