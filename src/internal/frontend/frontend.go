// FILE: hooklog/src/internal/frontend/frontend.go
package frontend

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the application logger
type Options struct {
	// Minimum level for every core
	Level string

	// Mirror entries to ConsoleOutput (stdout when nil)
	Console       bool
	ConsoleOutput zapcore.WriteSyncer

	// Receives internal zap errors, including failed webhook writes
	ErrorOutput zapcore.WriteSyncer
}

// New builds the application logger: a console core for humans and a compact
// core without time or color whose every entry becomes one webhook fragment.
func New(webhook zapcore.WriteSyncer, opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid frontend level: %w", err)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(webhookEncoderConfig()), webhook, level),
	}

	if opts.Console {
		out := opts.ConsoleOutput
		if out == nil {
			out = zapcore.Lock(os.Stdout)
		}
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), out, level))
	}

	errOut := opts.ErrorOutput
	if errOut == nil {
		errOut = zapcore.Lock(os.Stderr)
	}

	return zap.New(zapcore.NewTee(cores...), zap.ErrorOutput(errOut)), nil
}

// webhookEncoderConfig renders "LEVEL<tab>logger<tab>message<tab>{fields}"
func webhookEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}
