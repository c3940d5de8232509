// FILE: hooklog/src/internal/core/types.go
package core

import (
	"time"

	"github.com/google/uuid"
)

// Fragment is one discrete unit of log text queued for delivery.
// Fragments are never mutated once created. Wait asks the sink to confirm
// persistence and return the stored message.
type Fragment struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
	Wait bool      `json:"wait,omitempty"`
	Time time.Time `json:"time"`
}

// Creates a fragment stamped with a fresh id and the current time
func NewFragment(text string, wait bool) Fragment {
	return Fragment{
		ID:   uuid.New(),
		Text: text,
		Wait: wait,
		Time: time.Now(),
	}
}

// Message is the remote handle of a delivered fragment
type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
}
