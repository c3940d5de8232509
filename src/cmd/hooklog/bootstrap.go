// FILE: hooklog/src/cmd/hooklog/bootstrap.go
package main

import (
	"context"
	"fmt"
	"time"

	"hooklog/src/internal/config"
	"hooklog/src/internal/core"
	"hooklog/src/internal/filter"
	"hooklog/src/internal/format"
	"hooklog/src/internal/forward"
	"hooklog/src/internal/frontend"
	"hooklog/src/internal/queue"
	"hooklog/src/internal/source"
	"hooklog/src/internal/version"
	"hooklog/src/internal/webhook"
	"hooklog/src/internal/writer"

	"github.com/lixenwraith/log"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// relay holds every running component of the forwarding pipeline
type relay struct {
	cfg       *config.Config
	handle    *webhook.Handle
	queue     *queue.Queue[core.Fragment]
	forwarder *forward.Forwarder
	filters   *filter.Chain
	writer    *writer.Writer
	app       *zap.Logger
	sources   []source.Source

	// Cancels the forwarder when the drain deadline passes
	cancel context.CancelFunc
}

// bootstrapRelay builds the pipeline in dependency order. The sink handle is
// resolved before any producer exists, so bad credentials abort startup.
func bootstrapRelay(ctx context.Context, cfg *config.Config) (*relay, error) {
	provider := webhook.NewProvider(&cfg.Webhook, logger)
	handle, err := provider.Get(ctx)
	if err != nil {
		return nil, err
	}

	policy, err := queue.ParseOverflow(cfg.Queue.Overflow)
	if err != nil {
		return nil, err
	}
	q, producer := queue.New[core.Fragment](queue.Options{
		Capacity: int(cfg.Queue.Capacity),
		Overflow: policy,
	})

	formatter, err := format.New(&cfg.Forward.Format, logger)
	if err != nil {
		producer.Close()
		return nil, err
	}
	opts := forward.Options{
		Transform: forward.Formatted(formatter,
			forward.Wrap(cfg.Forward.Wrap, int(cfg.Forward.MaxContentLength))),
	}

	chain, err := filter.NewChain(cfg.Forward.Filters, logger)
	if err != nil {
		producer.Close()
		return nil, err
	}
	if chain.Len() > 0 {
		opts.Filter = chain
	}
	if rl := cfg.Forward.RateLimit; rl.RequestsPerSecond > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), int(rl.Burst))
	}

	fwdCtx, cancel := context.WithCancel(context.Background())
	fwd := forward.New(handle, q, logger, opts)
	if err := fwd.Start(fwdCtx); err != nil {
		cancel()
		producer.Close()
		return nil, err
	}

	r := &relay{
		cfg:       cfg,
		handle:    handle,
		queue:     q,
		forwarder: fwd,
		filters:   chain,
		writer:    writer.New(producer, cfg.Webhook.LoggingEnabled, logger),
		cancel:    cancel,
	}

	r.app, err = frontend.New(r.writer, frontend.Options{
		Level:   cfg.Frontend.Level,
		Console: cfg.Frontend.Console && !cfg.Quiet,
	})
	if err != nil {
		r.abort()
		return nil, err
	}

	if !cfg.Webhook.LoggingEnabled {
		logger.Warn("msg", "Webhook forwarding disabled, log output stays local",
			"component", "main")
	}

	channel := handle.Channel()
	r.app.Info("Prefire async webhook message",
		zap.String("version", version.Short()),
		zap.String("channel_id", channel.ChannelID))

	if err := r.startSources(); err != nil {
		r.abort()
		return nil, err
	}

	r.app.Info("Client startup",
		zap.Int("sources", len(r.sources)),
		zap.Int64("queue_capacity", cfg.Queue.Capacity))

	logger.Info("msg", "Hooklog started",
		"component", "main",
		"version", version.Short(),
		"webhook_id", cfg.Webhook.ID,
		"forwarding", cfg.Webhook.LoggingEnabled,
		"sources", len(r.sources))

	return r, nil
}

// startSources gives every enabled relay input its own writer handle
func (r *relay) startSources() error {
	if r.cfg.Stdin.Enabled {
		w, err := r.writer.Clone()
		if err != nil {
			return err
		}
		src := source.NewStdinSource(nil, w, logger)
		if err := src.Start(); err != nil {
			w.Close()
			return fmt.Errorf("failed to start stdin source: %w", err)
		}
		r.sources = append(r.sources, src)
	}

	if r.cfg.TCP.Enabled {
		w, err := r.writer.Clone()
		if err != nil {
			return err
		}
		src, err := source.NewTCPSource(&r.cfg.TCP, w, logger)
		if err != nil {
			w.Close()
			return err
		}
		// A failed start closes the writer itself
		if err := src.Start(); err != nil {
			return fmt.Errorf("failed to start tcp source: %w", err)
		}
		r.sources = append(r.sources, src)
	}

	return nil
}

// inputDone is closed when stdin is the only input and it reached EOF.
// It is nil otherwise, blocking forever in a select.
func (r *relay) inputDone() <-chan struct{} {
	if len(r.sources) != 1 || r.cfg.TCP.Enabled {
		return nil
	}
	return r.sources[0].Done()
}

// shutdown stops inputs, drops the last producer handle and waits for the
// forwarder to deliver what is still queued
func (r *relay) shutdown(timeout time.Duration) error {
	for _, src := range r.sources {
		src.Stop()
	}

	r.app.Info("Client shutdown")
	_ = r.app.Sync()
	r.writer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := r.forwarder.Wait(ctx)
	if err != nil {
		// Abandon the rest of the queue
		r.cancel()
		<-r.forwarder.Done()
	}
	r.cancel()
	return err
}

// abort tears down a partially built relay
func (r *relay) abort() {
	for _, src := range r.sources {
		src.Stop()
	}
	r.writer.Close()
	r.cancel()
	<-r.forwarder.Done()
}

// initializeLogger sets up the diagnostic logger based on configuration
func initializeLogger(cfg *config.Config) error {
	logger = log.NewLogger()

	var configArgs []string

	if cfg.Quiet {
		// In quiet mode, disable ALL logging output
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=false",
			"level=255")

		return logger.InitWithDefaults(configArgs...)
	}

	levelValue, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	configArgs = append(configArgs, fmt.Sprintf("level=%d", levelValue))

	switch cfg.Logging.Output {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")

	case "stdout":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stdout")

	case "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stderr")

	case "file":
		configArgs = append(configArgs, "enable_stdout=false")
		configureFileLogging(&configArgs, cfg)

	case "both":
		configArgs = append(configArgs, "enable_stdout=true")
		configureFileLogging(&configArgs, cfg)
		configureConsoleTarget(&configArgs, cfg)

	default:
		return fmt.Errorf("invalid log output mode: %s", cfg.Logging.Output)
	}

	if cfg.Logging.Console.Format != "" {
		configArgs = append(configArgs, fmt.Sprintf("format=%s", cfg.Logging.Console.Format))
	}

	return logger.InitWithDefaults(configArgs...)
}

// configureFileLogging sets up file-based logging parameters
func configureFileLogging(configArgs *[]string, cfg *config.Config) {
	file := cfg.Logging.File
	*configArgs = append(*configArgs,
		fmt.Sprintf("directory=%s", file.Directory),
		fmt.Sprintf("name=%s", file.Name),
		fmt.Sprintf("max_size_mb=%d", file.MaxSizeMB),
		fmt.Sprintf("max_total_size_mb=%d", file.MaxTotalSizeMB))

	if file.RetentionHours > 0 {
		*configArgs = append(*configArgs,
			fmt.Sprintf("retention_period_hrs=%.1f", file.RetentionHours))
	}
}

// configureConsoleTarget sets up console output parameters
func configureConsoleTarget(configArgs *[]string, cfg *config.Config) {
	target := "stderr"
	if cfg.Logging.Console.Target != "" {
		target = cfg.Logging.Console.Target
	}

	if target == "split" {
		*configArgs = append(*configArgs, "stdout_split_mode=true")
		*configArgs = append(*configArgs, "stdout_target=split")
	} else {
		*configArgs = append(*configArgs, fmt.Sprintf("stdout_target=%s", target))
	}
}
