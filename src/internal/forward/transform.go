// FILE: hooklog/src/internal/forward/transform.go
package forward

import (
	"strings"
	"unicode/utf8"

	"hooklog/src/internal/core"
)

const ellipsis = "…"

// Transform turns a fragment into the content posted to the sink
type Transform func(core.Fragment) string

// Wrap returns the default transform: drop the trailing line break added by
// log encoders, cap the length at maxLen characters including decoration,
// and surround the text with wrapper.
func Wrap(wrapper string, maxLen int) Transform {
	return func(f core.Fragment) string {
		text := strings.TrimRight(f.Text, "\r\n")
		if maxLen > 0 {
			text = truncate(text, maxLen-2*utf8.RuneCountInString(wrapper))
		}
		return wrapper + text + wrapper
	}
}

// truncate caps s at limit runes, marking the cut with an ellipsis
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	keep := limit - utf8.RuneCountInString(ellipsis)
	if keep <= 0 {
		return string([]rune(s)[:limit])
	}

	i := 0
	for pos := range s {
		if i == keep {
			return s[:pos] + ellipsis
		}
		i++
	}
	return s
}

// Formatter renders a fragment before it is decorated
type Formatter interface {
	Format(core.Fragment) ([]byte, error)
}

// Formatted renders each fragment with formatter and hands the result to
// next. A formatter error leaves the text unchanged.
func Formatted(formatter Formatter, next Transform) Transform {
	return func(f core.Fragment) string {
		if out, err := formatter.Format(f); err == nil {
			f.Text = string(out)
		}
		return next(f)
	}
}
