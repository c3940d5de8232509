// FILE: hooklog/src/internal/webhook/classify.go
package webhook

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of delivery failure classes
type Kind int

const (
	KindNone Kind = iota
	KindAuthInvalid
	KindPayloadMalformed
	KindResponseUndecodable
	KindUnclassified
)

// KindCount is the number of kinds, including KindNone
const KindCount = int(KindUnclassified) + 1

// String returns the short name used in diagnostics and stats
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAuthInvalid:
		return "auth_invalid"
	case KindPayloadMalformed:
		return "payload_malformed"
	case KindResponseUndecodable:
		return "response_undecodable"
	default:
		return "unclassified"
	}
}

// Message returns the fixed diagnostic line logged for the kind
func (k Kind) Message() string {
	switch k {
	case KindNone:
		return "Webhook delivery succeeded"
	case KindAuthInvalid:
		return "Webhook token was rejected or is missing"
	case KindPayloadMalformed:
		return "Webhook content is malformed, or the remote reply was unreadable"
	case KindResponseUndecodable:
		return "Received invalid JSON from webhook"
	default:
		return "Webhook delivery failed for an unclassified reason"
	}
}

// SinkError is returned by every failing Client call
type SinkError struct {
	Kind   Kind
	Status int
	Body   string
	Err    error
}

func (e *SinkError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("webhook %s (status %d): %v", e.Kind, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("webhook %s (status %d): %s", e.Kind, e.Status, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("webhook %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("webhook %s", e.Kind)
	}
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// Classify maps any delivery error into a Kind. A nil error is KindNone.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	var se *SinkError
	if errors.As(err, &se) && se.Kind != KindNone {
		return se.Kind
	}
	return KindUnclassified
}

// kindForStatus classifies a non-2xx HTTP status
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuthInvalid
	case status == http.StatusTooManyRequests:
		// Rate limited requests are well formed
		return KindUnclassified
	case status >= 400 && status < 500:
		return KindPayloadMalformed
	default:
		return KindUnclassified
	}
}
