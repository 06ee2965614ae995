// Package obs builds the structured logger shared by every component.
package obs

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogLevel = "warn"

// ParseLevel reads a level name, falling back to the default when the name is
// empty or unknown. verbose forces debug.
func ParseLevel(name string, verbose bool) zapcore.Level {
	if verbose {
		return zapcore.DebugLevel
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil || strings.TrimSpace(name) == "" {
		_ = level.UnmarshalText([]byte(defaultLogLevel))
	}
	return level
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
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// NewLogger builds a JSON logger writing to stderr, leaving stdout to command
// output.
func NewLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          "json",
		EncoderConfig:     encoderConfig(),
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}
	return cfg.Build()
}

// NewLoggerTo builds a JSON logger writing to w.
func NewLoggerTo(w io.Writer, level zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(w), level)
	return zap.New(core)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
