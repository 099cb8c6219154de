package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
)

// Options configures the zap logger
type Options struct {
	Production bool // JSON with ISO8601 timestamps, otherwise colored console output
	Level      string
	Service    string
}

// redactedKeys never reach the log output with their value
var redactedKeys = map[string]struct{}{
	"alias_token":   {},
	"token":         {},
	"private_key":   {},
	"authorization": {},
	"password":      {},
	"jwt":           {},
}

const redacted = "[redacted]"

// ZapLogger implements core.Logger with zap. The level is atomic so SetLevel is safe at runtime.
type ZapLogger struct {
	zl    *zap.Logger
	level zap.AtomicLevel
}

// NewZapLogger builds the process logger. It panics when zap cannot open its sinks.
func NewZapLogger(opts Options) core.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if opts.Production {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(core.ParseLogLevel(opts.Level)))

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	if opts.Service != "" {
		zl = zl.With(zap.String("service", opts.Service))
	}
	return &ZapLogger{zl: zl, level: cfg.Level}
}

// NewZapLoggerFromCore wraps an existing core; tests use it with zaptest/observer
func NewZapLoggerFromCore(zcore zapcore.Core, level core.LogLevel) core.Logger {
	atom := zap.NewAtomicLevelAt(zapLevel(level))
	// the atomic level gates entries before they reach zcore
	return &ZapLogger{zl: zap.New(zcore), level: atom}
}

// ParseLevel maps a configuration string to a log level. Unknown values mean info.
func ParseLevel(level string) core.LogLevel {
	return core.ParseLogLevel(level)
}

func zapLevel(level core.LogLevel) zapcore.Level {
	switch level {
	case core.LogLevelDebug:
		return zap.DebugLevel
	case core.LogLevelWarn:
		return zap.WarnLevel
	case core.LogLevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func (l *ZapLogger) SetLevel(level core.LogLevel) { l.level.SetLevel(zapLevel(level)) }

func (l *ZapLogger) GetLevel() core.LogLevel {
	switch l.level.Level() {
	case zap.DebugLevel:
		return core.LogLevelDebug
	case zap.WarnLevel:
		return core.LogLevelWarn
	case zap.ErrorLevel, zap.DPanicLevel, zap.PanicLevel, zap.FatalLevel:
		return core.LogLevelError
	default:
		return core.LogLevelInfo
	}
}

func (l *ZapLogger) Debug(message string, fields map[string]any) {
	l.write(zap.DebugLevel, message, fields)
}

func (l *ZapLogger) Info(message string, fields map[string]any) {
	l.write(zap.InfoLevel, message, fields)
}

func (l *ZapLogger) Warn(message string, fields map[string]any) {
	l.write(zap.WarnLevel, message, fields)
}

func (l *ZapLogger) Error(message string, fields map[string]any) {
	l.write(zap.ErrorLevel, message, fields)
}

func (l *ZapLogger) write(level zapcore.Level, message string, fields map[string]any) {
	if !l.level.Enabled(level) {
		return
	}
	if ce := l.zl.Check(level, message); ce != nil {
		ce.Write(toFields(fields)...)
	}
}

// Flush syncs buffered entries
func (l *ZapLogger) Flush() error {
	return l.zl.Sync()
}

func toFields(fields map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if _, secret := redactedKeys[k]; secret {
			out = append(out, zap.String(k, redacted))
			continue
		}
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
