// FILE: hooklog/src/internal/webhook/client.go
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hooklog/src/internal/config"
	"hooklog/src/internal/core"
	"hooklog/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

// connWaitTimeout bounds the wait for a pooled connection when no request
// timeout is configured
const connWaitTimeout = 30 * time.Second

// Channel describes the remote channel a webhook posts into
type Channel struct {
	ID        string `json:"id"`
	Type      int    `json:"type"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Name      string `json:"name"`
}

// executeRequest is the body of a webhook execute call
type executeRequest struct {
	Content string `json:"content"`
}

// Client posts content to one webhook. It keeps no buffer and never retries.
type Client struct {
	id        int64
	token     string
	baseURL   string
	timeout   time.Duration
	userAgent string

	client *fasthttp.Client
	logger *log.Logger
}

// Creates a client from webhook configuration; no network I/O happens here
func NewClient(cfg *config.WebhookConfig, logger *log.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("webhook config cannot be nil")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, &SinkError{Kind: KindAuthInvalid, Err: errors.New("webhook token is empty")}
	}
	if cfg.ID <= 0 {
		return nil, fmt.Errorf("invalid webhook id: %d", cfg.ID)
	}

	c := &Client{
		id:        cfg.ID,
		token:     cfg.Token,
		baseURL:   strings.TrimRight(cfg.APIURL, "/"),
		timeout:   time.Duration(cfg.TimeoutMS) * time.Millisecond,
		userAgent: fmt.Sprintf("hooklog/%s", version.Short()),
		logger:    logger,
	}

	// Callers beyond MaxConnsPerHost queue for a free connection
	c.client = &fasthttp.Client{
		MaxConnsPerHost:               10,
		MaxConnWaitTimeout:            connWaitTimeout,
		MaxIdleConnDuration:           30 * time.Second,
		DisableHeaderNamesNormalizing: true,
	}
	if c.timeout > 0 {
		c.client.ReadTimeout = c.timeout
		c.client.WriteTimeout = c.timeout
		c.client.MaxConnWaitTimeout = c.timeout
	}

	return c, nil
}

// ID returns the numeric webhook identifier
func (c *Client) ID() int64 {
	return c.id
}

// Resolve fetches the channel descriptor, verifying token and id in one call
func (c *Client) Resolve(ctx context.Context) (*Channel, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.endpoint())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", c.userAgent)

	if err := c.do(ctx, req, resp); err != nil {
		return nil, err
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, &SinkError{Kind: kindForStatus(status), Status: status, Body: string(resp.Body())}
	}

	var ch Channel
	if err := json.Unmarshal(resp.Body(), &ch); err != nil {
		return nil, &SinkError{Kind: KindResponseUndecodable, Status: status, Err: err}
	}
	if ch.ID != "" && ch.ID != strconv.FormatInt(c.id, 10) {
		return nil, &SinkError{
			Kind:   KindPayloadMalformed,
			Status: status,
			Err:    fmt.Errorf("remote returned webhook %s, expected %d", ch.ID, c.id),
		}
	}

	return &ch, nil
}

// Deliver performs exactly one execute call. With wait set the remote
// confirms persistence and the stored message is returned; otherwise the
// returned message is nil on success.
func (c *Client) Deliver(ctx context.Context, content string, wait bool) (*core.Message, error) {
	body, err := json.Marshal(executeRequest{Content: content})
	if err != nil {
		return nil, &SinkError{Kind: KindPayloadMalformed, Err: err}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.endpoint() + "?wait=" + strconv.FormatBool(wait))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.SetBody(body)

	if err := c.do(ctx, req, resp); err != nil {
		return nil, err
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, &SinkError{Kind: kindForStatus(status), Status: status, Body: string(resp.Body())}
	}

	if !wait {
		return nil, nil
	}

	respBody := resp.Body()
	if len(respBody) == 0 {
		return nil, &SinkError{
			Kind:   KindPayloadMalformed,
			Status: status,
			Err:    errors.New("empty reply to a confirmed delivery"),
		}
	}

	var msg core.Message
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return nil, &SinkError{Kind: KindResponseUndecodable, Status: status, Err: err}
	}
	return &msg, nil
}

// do sends the request honoring the context deadline, then the configured timeout
func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return &SinkError{Kind: KindUnclassified, Err: err}
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else if c.timeout > 0 {
		err = c.client.DoTimeout(req, resp, c.timeout)
	} else {
		err = c.client.Do(req, resp)
	}

	if err != nil {
		return &SinkError{Kind: KindUnclassified, Err: fmt.Errorf("request failed: %w", err)}
	}
	return nil
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/webhooks/%d/%s", c.baseURL, c.id, url.PathEscape(c.token))
}
