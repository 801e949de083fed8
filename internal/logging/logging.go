package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Production JSON encoding, debug level when
// debug is set. Callers own the returned logger and should Sync it on exit.
func New(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return config.Build()
}

// Nop returns a logger that discards everything, for tests and commands
// that run before configuration is loaded.
func Nop() *zap.Logger {
	return zap.NewNop()
}
