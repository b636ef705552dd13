// Package logging provides the collector's structured event façade:
// timestamp, level, component, and message/payload, always to a console
// sink and optionally to a size-rotated file sink.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// severityKey carries the five-level DEBUG/INFO/WARNING/ERROR/CRITICAL
// taxonomy as a field, since zap's builtin level set has no CRITICAL
// rung between Error and the panicking Fatal/DPanic levels.
const severityKey = "severity"

// Logger wraps a *zap.SugaredLogger with the component tag and level
// taxonomy this collector's events use.
type Logger struct {
	z *zap.SugaredLogger
}

// New builds a Logger writing structured JSON to stdout, and additionally
// to a rotating file at filePath when non-empty.
func New(component string, filePath string) (*Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(os.Stdout)),
		zapcore.DebugLevel,
	)

	cores := []zapcore.Core{consoleCore}
	if filePath != "" {
		writer, err := newRotatingWriter(filePath)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), writer, zapcore.DebugLevel))
	}

	base := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return &Logger{z: base.Sugar().With("component", component)}, nil
}

func (l *Logger) Debug(msg string, kv ...any) { l.z.Debugw(msg, withSeverity("DEBUG", kv)...) }
func (l *Logger) Info(msg string, kv ...any)   { l.z.Infow(msg, withSeverity("INFO", kv)...) }
func (l *Logger) Warn(msg string, kv ...any)   { l.z.Warnw(msg, withSeverity("WARNING", kv)...) }
func (l *Logger) Error(msg string, kv ...any)  { l.z.Errorw(msg, withSeverity("ERROR", kv)...) }

// Critical logs at zap's Error level (zap has no CRITICAL rung) tagged
// with severity=CRITICAL so log consumers can still distinguish it.
func (l *Logger) Critical(msg string, kv ...any) {
	l.z.Errorw(msg, withSeverity("CRITICAL", kv)...)
}

// Sync flushes buffered log entries; call before process exit.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

func withSeverity(level string, kv []any) []any {
	return append([]any{severityKey, level}, kv...)
}
