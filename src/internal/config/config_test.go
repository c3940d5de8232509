// FILE: hooklog/src/internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := defaults()
	cfg.Webhook.ID = 1234567890
	cfg.Webhook.Token = "abc-DEF_123"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := defaults()
	assert.False(t, cfg.Webhook.LoggingEnabled, "forwarding must be opt-in")
	assert.Zero(t, cfg.Webhook.TimeoutMS)
	assert.Zero(t, cfg.Queue.Capacity)
	assert.Equal(t, "`", cfg.Forward.Wrap)
	assert.Equal(t, int64(2000), cfg.Forward.MaxContentLength)
	assert.Zero(t, cfg.Forward.RateLimit.RequestsPerSecond)
	assert.True(t, cfg.Stdin.Enabled)
	assert.False(t, cfg.TCP.Enabled)
}

func TestValidateConfig(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{name: "Valid", mutate: func(c *Config) {}},
		{name: "MissingID", mutate: func(c *Config) { c.Webhook.ID = 0 }, errSubstr: "WEBHOOK_ID"},
		{name: "MissingToken", mutate: func(c *Config) { c.Webhook.Token = "  " }, errSubstr: "WEBHOOK_TOKEN"},
		{name: "TokenWithSlash", mutate: func(c *Config) { c.Webhook.Token = "a/b" }, errSubstr: "invalid characters"},
		{name: "BadAPIScheme", mutate: func(c *Config) { c.Webhook.APIURL = "ftp://example.com" }, errSubstr: "http or https"},
		{name: "NegativeTimeout", mutate: func(c *Config) { c.Webhook.TimeoutMS = -1 }, errSubstr: "timeout_ms"},
		{name: "NegativeCapacity", mutate: func(c *Config) { c.Queue.Capacity = -5 }, errSubstr: "capacity"},
		{name: "UnknownOverflow", mutate: func(c *Config) { c.Queue.Overflow = "spill" }, errSubstr: "overflow"},
		{name: "WrapTooLong", mutate: func(c *Config) { c.Forward.MaxContentLength = 6; c.Forward.Wrap = "```" }, errSubstr: "no room"},
		{name: "ZeroMaxLength", mutate: func(c *Config) { c.Forward.MaxContentLength = 0 }, errSubstr: "max_content_length"},
		{name: "NegativeRate", mutate: func(c *Config) { c.Forward.RateLimit.RequestsPerSecond = -1 }, errSubstr: "requests_per_second"},
		{name: "BadFilterType", mutate: func(c *Config) { c.Forward.Filters = []FilterConfig{{Type: "maybe"}} }, errSubstr: "filter[0]"},
		{name: "BadFilterRegex", mutate: func(c *Config) { c.Forward.Filters = []FilterConfig{{}, {Patterns: []string{"("}}} }, errSubstr: "filter[1] pattern[0]"},
		{name: "ValidFilters", mutate: func(c *Config) {
			c.Forward.Filters = []FilterConfig{{Type: FilterTypeExclude, Logic: FilterLogicAnd, Patterns: []string{"^DEBUG", "health"}}}
		}},
		{name: "BadFormat", mutate: func(c *Config) { c.Forward.Format.Type = "xml" }, errSubstr: "format type"},
		{name: "BadFrontendLevel", mutate: func(c *Config) { c.Frontend.Level = "trace" }, errSubstr: "frontend"},
		{name: "BadLogOutput", mutate: func(c *Config) { c.Logging.Output = "syslog" }, errSubstr: "output mode"},
		{name: "BadConsoleTarget", mutate: func(c *Config) { c.Logging.Console.Target = "tty" }, errSubstr: "console target"},
		{name: "FileWithoutDirectory", mutate: func(c *Config) { c.Logging.Output = "file"; c.Logging.File.Directory = "" }, errSubstr: "directory"},
		{name: "BadTCPPort", mutate: func(c *Config) { c.TCP.Enabled = true; c.TCP.Port = 70000 }, errSubstr: "port"},
		{name: "DisabledTCPIgnored", mutate: func(c *Config) { c.TCP.Port = 70000 }},
		{name: "NegativeStatusInterval", mutate: func(c *Config) { c.Status.IntervalS = -1 }, errSubstr: "interval_s"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := ValidateConfig(cfg)
			if tc.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errSubstr)
		})
	}

	t.Run("NilConfig", func(t *testing.T) {
		assert.Error(t, ValidateConfig(nil))
	})
}

func TestValidateConfig_FillsDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Queue.Overflow = ""
	cfg.Forward.RateLimit = RateLimitConfig{RequestsPerSecond: 2, Burst: 0}
	cfg.TCP = TCPConfig{Enabled: true, Port: 9470}
	cfg.ShutdownTimeoutMS = 0

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, "drop_newest", cfg.Queue.Overflow)
	assert.Equal(t, int64(1), cfg.Forward.RateLimit.Burst)
	assert.Equal(t, "0.0.0.0", cfg.TCP.Host)
	assert.Equal(t, int64(1024*1024), cfg.TCP.MaxLineLength)
	assert.Equal(t, int64(10000), cfg.ShutdownTimeoutMS)
}

func TestCustomEnvTransform(t *testing.T) {
	testCases := []struct {
		path     string
		expected string
	}{
		{path: "webhook.id", expected: "WEBHOOK_ID"},
		{path: "webhook.token", expected: "WEBHOOK_TOKEN"},
		{path: "webhook.logging_enabled", expected: "WEBHOOK_LOGGING_ENABLED"},
		{path: "queue.capacity", expected: "HOOKLOG_QUEUE_CAPACITY"},
		{path: "forward.rate_limit.burst", expected: "HOOKLOG_FORWARD_RATE_LIMIT_BURST"},
		{path: "shutdown_timeout_ms", expected: "HOOKLOG_SHUTDOWN_TIMEOUT_MS"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, customEnvTransform(tc.path))
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Run("AbsoluteFile", func(t *testing.T) {
		t.Setenv("HOOKLOG_CONFIG_FILE", "/etc/hooklog/prod.toml")
		t.Setenv("HOOKLOG_CONFIG_DIR", "/ignored")
		assert.Equal(t, "/etc/hooklog/prod.toml", GetConfigPath())
	})

	t.Run("RelativeFileInDir", func(t *testing.T) {
		t.Setenv("HOOKLOG_CONFIG_FILE", "prod.toml")
		t.Setenv("HOOKLOG_CONFIG_DIR", "/etc/hooklog")
		assert.Equal(t, filepath.Join("/etc/hooklog", "prod.toml"), GetConfigPath())
	})

	t.Run("DirOnly", func(t *testing.T) {
		t.Setenv("HOOKLOG_CONFIG_FILE", "")
		t.Setenv("HOOKLOG_CONFIG_DIR", "/opt/hooklog")
		assert.Equal(t, filepath.Join("/opt/hooklog", "hooklog.toml"), GetConfigPath())
	})

	t.Run("HomeDefault", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOOKLOG_CONFIG_FILE", "")
		t.Setenv("HOOKLOG_CONFIG_DIR", "")
		t.Setenv("HOME", home)
		assert.Equal(t, filepath.Join(home, ".config", "hooklog.toml"), GetConfigPath())
	})
}

func TestLoad_ConfigFile(t *testing.T) {
	credentials := []string{"--webhook.id=42", "--webhook.token=cli-token"}

	t.Run("ExplicitMissing", func(t *testing.T) {
		t.Setenv("HOOKLOG_CONFIG_DIR", "")
		t.Setenv("HOOKLOG_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

		cfg, err := Load(credentials)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfigNotFound)
		assert.Nil(t, cfg)
	})

	t.Run("ExplicitPresent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hooklog.toml")
		content := "[webhook]\nid = 77\ntoken = \"file-token\"\n\n[queue]\ncapacity = 500\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		t.Setenv("HOOKLOG_CONFIG_DIR", "")
		t.Setenv("HOOKLOG_CONFIG_FILE", path)

		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.Equal(t, int64(77), cfg.Webhook.ID)
		assert.Equal(t, "file-token", cfg.Webhook.Token)
		assert.Equal(t, int64(500), cfg.Queue.Capacity)
		assert.Equal(t, path, cfg.ConfigFile)
	})

	t.Run("ImplicitMissing", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOOKLOG_CONFIG_FILE", "")
		t.Setenv("HOOKLOG_CONFIG_DIR", "")
		t.Setenv("HOME", home)

		cfg, err := Load(credentials)
		require.NoError(t, err)
		assert.Equal(t, int64(42), cfg.Webhook.ID)
		assert.Equal(t, "cli-token", cfg.Webhook.Token)
		assert.Equal(t, filepath.Join(home, ".config", "hooklog.toml"), cfg.ConfigFile)
	})
}
