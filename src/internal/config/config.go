// FILE: hooklog/src/internal/config/config.go
package config

// Config is the complete runtime configuration
type Config struct {
	Webhook  WebhookConfig  `toml:"webhook"`
	Queue    QueueConfig    `toml:"queue"`
	Forward  ForwardConfig  `toml:"forward"`
	Frontend FrontendConfig `toml:"frontend"`
	Logging  LogConfig      `toml:"logging"`
	Stdin    StdinConfig    `toml:"stdin"`
	TCP      TCPConfig      `toml:"tcp"`
	Status   StatusConfig   `toml:"status"`

	// Time allowed for the forwarder to drain on shutdown
	ShutdownTimeoutMS int64 `toml:"shutdown_timeout_ms"`

	// Runtime flags, never read from file
	ConfigFile string `toml:"-"`
	Quiet      bool   `toml:"-"`
}

// WebhookConfig holds the sink credentials
type WebhookConfig struct {
	// Numeric webhook identifier
	ID int64 `toml:"id"`

	// Webhook secret, never logged
	Token string `toml:"token"`

	// Forwarding is off unless explicitly enabled
	LoggingEnabled bool `toml:"logging_enabled"`

	// API root the webhook paths are appended to
	APIURL string `toml:"api_url"`

	// Per-request timeout, 0 = wait indefinitely
	TimeoutMS int64 `toml:"timeout_ms"`
}

// QueueConfig bounds the forwarding queue
type QueueConfig struct {
	// 0 = unbounded
	Capacity int64 `toml:"capacity"`

	// Bounded mode only: "drop_newest", "drop_oldest", "block"
	Overflow string `toml:"overflow"`
}

// ForwardConfig controls the consumer task
type ForwardConfig struct {
	// Decoration placed on both sides of every delivered fragment
	Wrap string `toml:"wrap"`

	// Longest content sent in one delivery, in characters
	MaxContentLength int64 `toml:"max_content_length"`

	// Rendering of each fragment before decoration
	Format FormatConfig `toml:"format"`

	RateLimit RateLimitConfig `toml:"rate_limit"`

	// Applied in order before delivery; a line must pass every filter
	Filters []FilterConfig `toml:"filters"`
}

// RateLimitConfig paces deliveries; a zero rate disables pacing
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int64   `toml:"burst"`
}

// FrontendConfig configures the application logger feeding the webhook
type FrontendConfig struct {
	// Minimum level: "debug", "info", "warn", "error"
	Level string `toml:"level"`

	// Mirror the application log to stdout
	Console bool `toml:"console"`
}

// StdinConfig enables relaying lines read from standard input
type StdinConfig struct {
	Enabled bool `toml:"enabled"`
}

// TCPConfig enables relaying newline-delimited lines received over TCP
type TCPConfig struct {
	Enabled       bool   `toml:"enabled"`
	Host          string `toml:"host"`
	Port          int64  `toml:"port"`
	MaxLineLength int64  `toml:"max_line_length"`
}

// StatusConfig controls the periodic status report
type StatusConfig struct {
	// 0 disables the reporter
	IntervalS int64 `toml:"interval_s"`
}

// FormatConfig selects how fragment text is rendered into content
type FormatConfig struct {
	// "raw" (default), "text" or "json"
	Type string `toml:"type"`

	// text: Go template over Timestamp, ID and Message
	Template        string `toml:"template"`
	TimestampFormat string `toml:"timestamp_format"`

	// json: field names and indentation
	TimestampField string `toml:"timestamp_field"`
	IDField        string `toml:"id_field"`
	MessageField   string `toml:"message_field"`
	Pretty         bool   `toml:"pretty"`
}
