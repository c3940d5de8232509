// FILE: hooklog/src/cmd/hooklog/flags.go
package main

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/log"
)

// Flags handled by main; everything else is passed to the config loader as
// --section.key=value overrides
type FlagConfig struct {
	ConfigFile string
	Quiet      bool
	NoStdin    bool

	// Arguments forwarded to the config loader
	ConfigArgs []string
}

// Splits process arguments into main flags and config overrides
func parseFlags(args []string) (*FlagConfig, error) {
	fc := &FlagConfig{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")

		switch name {
		case "-c", "--config", "-config":
			if !hasValue {
				if i+1 >= len(args) {
					return nil, fmt.Errorf("%s requires a path", name)
				}
				i++
				value = args[i]
			}
			if value == "" {
				return nil, fmt.Errorf("%s requires a path", name)
			}
			fc.ConfigFile = value

		case "-q", "--quiet", "-quiet":
			fc.Quiet = true

		case "--no-stdin", "-no-stdin":
			fc.NoStdin = true

		default:
			if !strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unexpected argument: %s", arg)
			}
			fc.ConfigArgs = append(fc.ConfigArgs, arg)
		}
	}

	if fc.NoStdin {
		fc.ConfigArgs = append(fc.ConfigArgs, "--stdin.enabled=false")
	}

	return fc, nil
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
