// FILE: hooklog/src/internal/format/raw.go
package format

import (
	"hooklog/src/internal/config"
	"hooklog/src/internal/core"

	"github.com/lixenwraith/log"
)

// Outputs the fragment text as-is with a newline
type RawFormatter struct {
	logger *log.Logger
}

// Creates a new raw formatter
func NewRawFormatter(cfg *config.FormatConfig, logger *log.Logger) (*RawFormatter, error) {
	return &RawFormatter{
		logger: logger,
	}, nil
}

// Returns the text with a newline appended
func (f *RawFormatter) Format(fragment core.Fragment) ([]byte, error) {
	return append([]byte(fragment.Text), '\n'), nil
}

// Returns the formatter name
func (f *RawFormatter) Name() string {
	return "raw"
}
