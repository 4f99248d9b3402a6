package logger

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx/fxevent"
)

type fxLogger struct {
	l zerolog.Logger
}

var _ fxevent.Logger = (*fxLogger)(nil)

// Fx adapts fx lifecycle events onto the global zerolog logger. Errors are logged
// at error level, routine events at debug level.
func Fx() fxevent.Logger {
	return &fxLogger{
		l: log.Logger.
			With().
			Str("evt.name", "fx.init").
			Logger(),
	}
}

func (l *fxLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			l.l.Error().Err(e.Err).Str("callee", e.FunctionName).Str("caller", e.CallerName).Msg("OnStart hook failed")
			return
		}
		l.l.Debug().Str("callee", e.FunctionName).Dur("runtime", e.Runtime).Msg("OnStart hook executed")
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			l.l.Error().Err(e.Err).Str("callee", e.FunctionName).Str("caller", e.CallerName).Msg("OnStop hook failed")
			return
		}
		l.l.Debug().Str("callee", e.FunctionName).Dur("runtime", e.Runtime).Msg("OnStop hook executed")
	case *fxevent.Provided:
		if e.Err != nil {
			l.l.Error().Err(e.Err).Str("module", e.ModuleName).Msg("error encountered while applying options")
			return
		}
		for _, t := range e.OutputTypeNames {
			l.l.Trace().Str("module", e.ModuleName).Str("constructor", e.ConstructorName).Str("type", t).Msg("provided")
		}
	case *fxevent.Invoked:
		if e.Err != nil {
			l.l.Error().Err(e.Err).Str("module", e.ModuleName).Str("function", e.FunctionName).Str("stack", e.Trace).Msg("invoke failed")
			return
		}
		l.l.Trace().Str("module", e.ModuleName).Str("function", e.FunctionName).Msg("invoked")
	case *fxevent.Started:
		if e.Err != nil {
			l.l.Error().Err(e.Err).Msg("start failed")
			return
		}
		l.l.Info().Msg("started")
	case *fxevent.Stopped:
		if e.Err != nil {
			l.l.Error().Err(e.Err).Msg("stop failed")
			return
		}
		l.l.Info().Msg("stopped")
	case *fxevent.RollingBack:
		l.l.Error().Err(e.StartErr).Msg("start failed, rolling back")
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			l.l.Error().Err(e.Err).Msg("custom logger initialization failed")
		}
	}
}
