// FILE: hooklog/src/internal/webhook/handle.go
package webhook

import (
	"context"
	"fmt"
	"sync"

	"hooklog/src/internal/config"
	"hooklog/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

// Deliverer is the sink side of the forwarding pipeline
type Deliverer interface {
	Deliver(ctx context.Context, content string, wait bool) (*core.Message, error)
}

// Handle is a verified client bound to its resolved channel.
// It is immutable after Open and safe for concurrent use.
type Handle struct {
	client  *Client
	channel Channel
}

// Open resolves the channel descriptor with one blocking call. An error means
// the credentials or the webhook id are unusable.
func Open(ctx context.Context, client *Client, logger *log.Logger) (*Handle, error) {
	ch, err := client.Resolve(ctx)
	if err != nil {
		logger.Error("msg", "Getting webhook failed",
			"component", "webhook",
			"webhook_id", client.ID(),
			"kind", Classify(err).String(),
			"error", err)
		return nil, fmt.Errorf("failed to resolve webhook %d: %w", client.ID(), err)
	}

	logger.Info("msg", "Webhook resolved",
		"component", "webhook",
		"webhook_id", client.ID(),
		"channel_id", ch.ChannelID,
		"name", ch.Name)

	return &Handle{client: client, channel: *ch}, nil
}

// Channel returns the resolved channel descriptor
func (h *Handle) Channel() Channel {
	return h.channel
}

// Deliver posts content through the underlying client
func (h *Handle) Deliver(ctx context.Context, content string, wait bool) (*core.Message, error) {
	return h.client.Deliver(ctx, content, wait)
}

// Provider constructs the process-wide handle exactly once
type Provider struct {
	cfg    *config.WebhookConfig
	logger *log.Logger
	dial   fasthttp.DialFunc

	once   sync.Once
	handle *Handle
	err    error
}

// Creates a provider; nothing is constructed until Get
func NewProvider(cfg *config.WebhookConfig, logger *log.Logger) *Provider {
	return &Provider{cfg: cfg, logger: logger}
}

// Get returns the shared handle, constructing it on the first call.
// Concurrent first callers block until the single construction finishes and
// all observe the same handle or the same error.
func (p *Provider) Get(ctx context.Context) (*Handle, error) {
	p.once.Do(func() {
		p.logger.Info("msg", "Constructing webhook handle", "component", "webhook")

		client, err := NewClient(p.cfg, p.logger)
		if err != nil {
			p.err = fmt.Errorf("failed to create webhook client: %w", err)
			return
		}
		if p.dial != nil {
			client.client.Dial = p.dial
		}

		p.handle, p.err = Open(ctx, client, p.logger)
	})
	return p.handle, p.err
}
