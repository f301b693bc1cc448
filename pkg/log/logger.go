package log

import (
	"log/slog"
	"os"

	"github.com/rs/zerolog"

	svrerrors "github.com/YuminosukeSato/svrkit/pkg/errors"
)

// SetupLogger configures the process-wide slog logger.
//
// Logs are emitted as JSON with CloudLogging-compatible attribute names so the
// service can run behind the same log collectors as the rest of the stack. An
// unrecognized level falls back to info rather than refusing to start.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
		// Replace attributes to convert to CloudLogging format.
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr = slog.Attr{
					Key:   "severity",
					Value: attr.Value,
				}
			case slog.MessageKey:
				attr = slog.Attr{
					Key:   "message",
					Value: attr.Value,
				}
			case slog.SourceKey:
				attr = slog.Attr{
					Key:   "logging.googleapis.com/sourceLocation",
					Value: attr.Value,
				}
			}
			return attr
		},
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))

	bridgeWarnings()
}

// ToLogLevel maps a config string to a slog level. Unknown values become info.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// bridgeWarnings routes library warnings (ConvergenceWarning and friends)
// through zerolog so they carry their structured fields, instead of the
// default stderr handler.
func bridgeWarnings() {
	zl := zerolog.New(os.Stdout).With().Timestamp().Logger()
	svrerrors.SetZerologWarnFunc(func(warning error) {
		ev := zl.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev.Object("warning", obj)
		} else {
			ev.AnErr("warning", warning)
		}
		ev.Msg("training warning")
	})
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
