// Package logging builds the application logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLogLevel = "info"
	levelEnv        = "OMRSHEET_LOG_LEVEL"
)

// New constructs a zap logger emitting structured JSON to path. The terminal
// belongs to the UI, so logs never go to stdout. An empty level falls back to
// OMRSHEET_LOG_LEVEL and then to info.
func New(path, level string) (*zap.Logger, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	cfg := zap.Config{
		Level:             parseLevel(level),
		Encoding:          "json",
		EncoderConfig:     encoderConfig(),
		OutputPaths:       []string{path},
		ErrorOutputPaths:  []string{path},
		DisableCaller:     false,
		DisableStacktrace: true,
	}
	return cfg.Build()
}

func parseLevel(level string) zap.AtomicLevel {
	lvl := zap.NewAtomicLevel()
	if strings.TrimSpace(level) == "" {
		level = os.Getenv(levelEnv)
	}
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil || strings.TrimSpace(level) == "" {
		// Fallback to default level when unset or invalid.
		_ = lvl.UnmarshalText([]byte(defaultLogLevel))
	}
	return lvl
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		NameKey:    "logger",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		EncodeDuration: zapcore.MillisDurationEncoder,
		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		StacktraceKey:  "stacktrace",
	}
}
