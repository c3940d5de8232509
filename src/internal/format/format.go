// FILE: hooklog/src/internal/format/format.go
package format

import (
	"fmt"

	"hooklog/src/internal/config"
	"hooklog/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter renders a fragment into the text that is delivered
type Formatter interface {
	// Format returns the rendered fragment, newline terminated
	Format(fragment core.Fragment) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// New creates a Formatter from configuration; a nil config selects raw
func New(cfg *config.FormatConfig, logger *log.Logger) (Formatter, error) {
	name := ""
	if cfg != nil {
		name = cfg.Type
	}

	switch name {
	case "json":
		return NewJSONFormatter(cfg, logger)
	case "text":
		return NewTextFormatter(cfg, logger)
	case "raw", "":
		return NewRawFormatter(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", name)
	}
}
