// FILE: hooklog/src/cmd/hooklog/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hooklog/src/cmd/hooklog/commands"
	"hooklog/src/internal/config"
	"hooklog/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

func main() {
	// Subcommands run before any relay setup
	router := commands.NewCommandRouter()
	handled, err := router.Route(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if handled {
		os.Exit(0)
	}

	flagCfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\nRun 'hooklog help' for usage\n", err)
		os.Exit(1)
	}

	InitOutputHandler(flagCfg.Quiet)

	if flagCfg.ConfigFile != "" {
		os.Setenv("HOOKLOG_CONFIG_FILE", flagCfg.ConfigFile)
	}

	cfg, err := config.Load(flagCfg.ConfigArgs)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			FatalError(2, "Config file not found: %s\n", config.GetConfigPath())
		}
		FatalError(1, "Failed to load config: %v\n", err)
	}
	cfg.Quiet = flagCfg.Quiet

	if err := initializeLogger(cfg); err != nil {
		FatalError(1, "Failed to initialize logger: %v\n", err)
	}
	defer shutdownLogger()

	logger.Info("msg", "Hooklog starting",
		"version", version.String(),
		"config_file", cfg.ConfigFile,
		"log_output", cfg.Logging.Output)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	r, err := bootstrapRelay(ctx, cfg)
	if err != nil {
		logger.Error("msg", "Failed to bootstrap relay", "error", err)
		shutdownLogger()
		FatalError(1, "Failed to start: %v\n", err)
	}

	if cfg.Status.IntervalS > 0 {
		go statusReporter(ctx, r, time.Duration(cfg.Status.IntervalS)*time.Second)
	}

	select {
	case sig := <-sigChan:
		logger.Info("msg", "Shutdown signal received, starting graceful shutdown...",
			"signal", sig.String())
	case <-r.inputDone():
		logger.Info("msg", "Input closed, starting graceful shutdown...")
	}
	cancel()

	timeout := time.Duration(cfg.ShutdownTimeoutMS) * time.Millisecond
	if err := r.shutdown(timeout); err != nil {
		logger.Error("msg", "Shutdown timeout exceeded, queued log lines were dropped",
			"error", err)
		shutdownLogger()
		os.Exit(1)
	}
	logger.Info("msg", "Shutdown complete")
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			// Best effort - can't log the shutdown error
			Error("Logger shutdown error: %v\n", err)
		}
	}
}
