// FILE: hooklog/src/internal/format/text.go
package format

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"hooklog/src/internal/config"
	"hooklog/src/internal/core"

	"github.com/lixenwraith/log"
)

const (
	defaultTextTemplate    = "[{{.Timestamp | FmtTime}}] {{.Message}}"
	defaultTimestampFormat = time.RFC3339
)

// Produces human-readable lines using templates
type TextFormatter struct {
	timestampFormat string
	template        *template.Template
	logger          *log.Logger
}

// Creates a new text formatter
func NewTextFormatter(cfg *config.FormatConfig, logger *log.Logger) (*TextFormatter, error) {
	f := &TextFormatter{
		timestampFormat: defaultTimestampFormat,
		logger:          logger,
	}

	tmplText := defaultTextTemplate
	if cfg != nil {
		if cfg.Template != "" {
			tmplText = cfg.Template
		}
		if cfg.TimestampFormat != "" {
			f.timestampFormat = cfg.TimestampFormat
		}
	}

	// Create template with helper functions
	funcMap := template.FuncMap{
		"FmtTime": func(t time.Time) string {
			return t.Format(f.timestampFormat)
		},
		"ToUpper":   strings.ToUpper,
		"ToLower":   strings.ToLower,
		"TrimSpace": strings.TrimSpace,
	}

	tmpl, err := template.New("fragment").Funcs(funcMap).Parse(tmplText)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	f.template = tmpl
	return f, nil
}

// Formats the fragment using the template
func (f *TextFormatter) Format(fragment core.Fragment) ([]byte, error) {
	data := map[string]any{
		"Timestamp": fragment.Time,
		"ID":        fragment.ID.String(),
		"Message":   strings.TrimRight(fragment.Text, "\r\n"),
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		f.logger.Debug("msg", "Template execution failed, using fallback",
			"component", "text_formatter",
			"error", err)

		fallback := fmt.Sprintf("[%s] %s\n",
			fragment.Time.Format(f.timestampFormat),
			data["Message"])
		return []byte(fallback), nil
	}

	// Ensure newline at end
	result := buf.Bytes()
	if len(result) == 0 || result[len(result)-1] != '\n' {
		result = append(result, '\n')
	}

	return result, nil
}

// Returns the formatter name
func (f *TextFormatter) Name() string {
	return "text"
}
