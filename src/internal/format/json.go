// FILE: hooklog/src/internal/format/json.go
package format

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hooklog/src/internal/config"
	"hooklog/src/internal/core"

	"github.com/lixenwraith/log"
)

// JSONFormatter renders each fragment as one JSON object
type JSONFormatter struct {
	timestampField string
	idField        string
	messageField   string
	pretty         bool
	logger         *log.Logger
}

// NewJSONFormatter creates a new JSON formatter from configuration
func NewJSONFormatter(cfg *config.FormatConfig, logger *log.Logger) (*JSONFormatter, error) {
	f := &JSONFormatter{
		timestampField: "time",
		idField:        "id",
		messageField:   "message",
		logger:         logger,
	}

	if cfg != nil {
		f.timestampField = coalesce(cfg.TimestampField, f.timestampField)
		f.idField = coalesce(cfg.IDField, f.idField)
		f.messageField = coalesce(cfg.MessageField, f.messageField)
		f.pretty = cfg.Pretty
	}

	if f.timestampField == f.idField || f.timestampField == f.messageField || f.idField == f.messageField {
		return nil, fmt.Errorf("json formatter fields must be distinct")
	}

	return f, nil
}

// Format transforms a fragment into a JSON byte slice. Text that is itself
// a JSON object is merged in; the metadata fields take precedence.
func (f *JSONFormatter) Format(fragment core.Fragment) ([]byte, error) {
	output := make(map[string]any)

	output[f.timestampField] = fragment.Time.Format(time.RFC3339Nano)
	output[f.idField] = fragment.ID.String()

	text := strings.TrimRight(fragment.Text, "\r\n")

	var msgData map[string]any
	if err := json.Unmarshal([]byte(text), &msgData); err == nil {
		for k, v := range msgData {
			if k != f.timestampField && k != f.idField {
				output[k] = v
			}
		}

		if _, hasTime := msgData[f.timestampField]; hasTime {
			f.logger.Debug("msg", "Overriding timestamp from JSON message",
				"component", "json_formatter",
				"original", msgData[f.timestampField],
				"fragment_id", fragment.ID)
		}
	} else {
		output[f.messageField] = text
	}

	var result []byte
	var err error
	if f.pretty {
		result, err = json.MarshalIndent(output, "", "  ")
	} else {
		result, err = json.Marshal(output)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return append(result, '\n'), nil
}

// Name returns the formatter's type name.
func (f *JSONFormatter) Name() string {
	return "json"
}

func coalesce(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
