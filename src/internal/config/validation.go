// FILE: hooklog/src/internal/config/validation.go
package config

import (
	"fmt"
	"net/url"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

// ValidateConfig is the centralized validator. Unusable webhook credentials
// are rejected here so that startup fails before anything is logged remotely.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := validateWebhook(&cfg.Webhook); err != nil {
		return fmt.Errorf("webhook: %w", err)
	}

	if err := validateQueue(&cfg.Queue); err != nil {
		return fmt.Errorf("queue: %w", err)
	}

	if err := validateForward(&cfg.Forward); err != nil {
		return fmt.Errorf("forward: %w", err)
	}

	if err := validateFrontend(&cfg.Frontend); err != nil {
		return fmt.Errorf("frontend: %w", err)
	}

	if err := validateLogConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if cfg.TCP.Enabled {
		if err := validateTCP(&cfg.TCP); err != nil {
			return fmt.Errorf("tcp: %w", err)
		}
	}

	if cfg.Status.IntervalS < 0 {
		return fmt.Errorf("status: interval_s cannot be negative: %d", cfg.Status.IntervalS)
	}

	if cfg.ShutdownTimeoutMS <= 0 {
		cfg.ShutdownTimeoutMS = 10000
	}

	return nil
}

func validateWebhook(w *WebhookConfig) error {
	if w.ID <= 0 {
		return fmt.Errorf("missing or invalid id (set WEBHOOK_ID)")
	}

	if err := lconfig.NonEmpty(strings.TrimSpace(w.Token)); err != nil {
		return fmt.Errorf("missing token (set WEBHOOK_TOKEN)")
	}

	if strings.ContainsAny(w.Token, " \t\r\n/") {
		return fmt.Errorf("token contains invalid characters")
	}

	parsed, err := url.Parse(w.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api_url must use http or https: %s", w.APIURL)
	}

	if w.TimeoutMS < 0 {
		return fmt.Errorf("timeout_ms cannot be negative: %d", w.TimeoutMS)
	}

	return nil
}

func validateQueue(q *QueueConfig) error {
	if q.Capacity < 0 {
		return fmt.Errorf("capacity cannot be negative: %d", q.Capacity)
	}

	switch q.Overflow {
	case "drop_newest", "drop_oldest", "block":
	case "":
		q.Overflow = "drop_newest"
	default:
		return fmt.Errorf("invalid overflow policy: %s (valid: drop_newest, drop_oldest, block)", q.Overflow)
	}

	return nil
}

func validateForward(f *ForwardConfig) error {
	if f.MaxContentLength <= 0 {
		return fmt.Errorf("max_content_length must be positive: %d", f.MaxContentLength)
	}

	// Room for the decoration on both sides plus at least one character
	if int64(2*len([]rune(f.Wrap))) >= f.MaxContentLength {
		return fmt.Errorf("wrap %q leaves no room for content within %d characters", f.Wrap, f.MaxContentLength)
	}

	if f.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("rate_limit.requests_per_second cannot be negative: %f", f.RateLimit.RequestsPerSecond)
	}
	if f.RateLimit.RequestsPerSecond > 0 && f.RateLimit.Burst < 1 {
		f.RateLimit.Burst = 1
	}

	switch f.Format.Type {
	case "", "raw", "text", "json":
	default:
		return fmt.Errorf("invalid format type: %s (valid: raw, text, json)", f.Format.Type)
	}

	for i := range f.Filters {
		if err := validateFilter(i, &f.Filters[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateFrontend(f *FrontendConfig) error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[f.Level] {
		return fmt.Errorf("invalid level: %s", f.Level)
	}
	return nil
}

func validateLogConfig(cfg *LogConfig) error {
	validOutputs := map[string]bool{
		"file": true, "stdout": true, "stderr": true,
		"both": true, "none": true,
	}
	if !validOutputs[cfg.Output] {
		return fmt.Errorf("invalid log output mode: %s", cfg.Output)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[cfg.Level] {
		return fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	validTargets := map[string]bool{
		"stdout": true, "stderr": true, "split": true, "": true,
	}
	if !validTargets[cfg.Console.Target] {
		return fmt.Errorf("invalid console target: %s", cfg.Console.Target)
	}

	validFormats := map[string]bool{
		"txt": true, "json": true, "": true,
	}
	if !validFormats[cfg.Console.Format] {
		return fmt.Errorf("invalid console format: %s", cfg.Console.Format)
	}

	if cfg.Output == "file" || cfg.Output == "both" {
		if err := lconfig.NonEmpty(cfg.File.Directory); err != nil {
			return fmt.Errorf("file output requires a directory")
		}
		if err := lconfig.NonEmpty(cfg.File.Name); err != nil {
			return fmt.Errorf("file output requires a name")
		}
	}

	return nil
}

func validateTCP(t *TCPConfig) error {
	if t.Port < 1 || t.Port > 65535 {
		return fmt.Errorf("invalid port: %d", t.Port)
	}

	if t.Host == "" {
		t.Host = "0.0.0.0"
	} else if t.Host != "0.0.0.0" {
		if err := lconfig.IPAddress(t.Host); err != nil {
			return err
		}
	}

	if t.MaxLineLength <= 0 {
		t.MaxLineLength = 1024 * 1024
	}

	return nil
}
