package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how much the service logs.
type Options struct {
	Level      string
	Dir        string // empty disables file output
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New builds a zap logger writing readable lines to stdout and, when Dir is
// set, JSON lines to a rotating file.
func New(opts Options) (*zap.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{newConsoleCore(level)}
	if opts.Dir != "" {
		fileCore, err := newFileCore(opts, level)
		if err != nil {
			return nil, err
		}
		cores = append(cores, fileCore)
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// ParseLevel accepts zap level names; empty means info.
func ParseLevel(raw string) (zapcore.Level, error) {
	if raw == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", raw, err)
	}
	return level, nil
}

func newFileCore(opts Options, level zapcore.Level) (zapcore.Core, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:    "message",
		LevelKey:      "level",
		TimeKey:       "time",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, "quiz-result-service.log"),
		MaxSize:    orDefault(opts.MaxSizeMB, 10),
		MaxBackups: orDefault(opts.MaxBackups, 3),
		MaxAge:     orDefault(opts.MaxAgeDays, 7),
		Compress:   opts.Compress,
	})

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer, level), nil
}

func newConsoleCore(level zapcore.Level) zapcore.Core {
	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)
}

func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
