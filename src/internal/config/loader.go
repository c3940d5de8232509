// FILE: hooklog/src/internal/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	lconfig "github.com/lixenwraith/config"
)

const envPrefix = "HOOKLOG_"

// ErrConfigNotFound is returned when an explicitly named config file is missing
var ErrConfigNotFound = errors.New("config file not found")

func defaults() *Config {
	return &Config{
		Webhook: WebhookConfig{
			LoggingEnabled: false,
			APIURL:         "https://discord.com/api/v10",
			TimeoutMS:      0,
		},
		Queue: QueueConfig{
			Capacity: 0,
			Overflow: "drop_newest",
		},
		Forward: ForwardConfig{
			Wrap:             "`",
			MaxContentLength: 2000,
			Format: FormatConfig{
				Type:            "raw",
				Template:        "[{{.Timestamp | FmtTime}}] {{.Message}}",
				TimestampFormat: "2006-01-02 15:04:05",
				TimestampField:  "time",
				IDField:         "id",
				MessageField:    "message",
			},
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 0,
				Burst:             5,
			},
		},
		Frontend: FrontendConfig{
			Level:   "info",
			Console: true,
		},
		Logging: *DefaultLogConfig(),
		Stdin: StdinConfig{
			Enabled: true,
		},
		TCP: TCPConfig{
			Enabled:       false,
			Host:          "127.0.0.1",
			Port:          9470,
			MaxLineLength: 1024 * 1024,
		},
		Status: StatusConfig{
			IntervalS: 30,
		},
		ShutdownTimeoutMS: 10000,
	}
}

// Load reads configuration from defaults, file, .env/environment and CLI args,
// in increasing precedence, then validates it.
func Load(cliArgs []string) (*Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	configPath := GetConfigPath()

	// Only the implicit default location may be absent
	explicit := os.Getenv("HOOKLOG_CONFIG_FILE") != ""
	if explicit {
		if _, err := os.Stat(configPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
			}
			return nil, fmt.Errorf("failed to access config file %s: %w", configPath, err)
		}
	}

	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix(envPrefix).
		WithFile(configPath).
		WithArgs(cliArgs).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if explicit || !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	finalConfig := &Config{}
	if err := cfg.Scan("", finalConfig); err != nil {
		return nil, fmt.Errorf("failed to scan config: %w", err)
	}
	finalConfig.ConfigFile = configPath

	return finalConfig, ValidateConfig(finalConfig)
}

// customEnvTransform keeps the webhook keys under their bare, historical names
// (WEBHOOK_ID, WEBHOOK_TOKEN, WEBHOOK_LOGGING_ENABLED); everything else is prefixed.
func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ToUpper(env)
	if strings.HasPrefix(path, "webhook.") {
		return env
	}
	return envPrefix + env
}

// GetConfigPath resolves the config file location from the environment
func GetConfigPath() string {
	if configFile := os.Getenv("HOOKLOG_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("HOOKLOG_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("HOOKLOG_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "hooklog.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "hooklog.toml")
	}

	return "hooklog.toml"
}
