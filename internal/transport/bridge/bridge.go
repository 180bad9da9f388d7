// Package bridge is a transport client for a JSON control-point bridge:
// events arrive over a websocket per subscribed service and actions are
// posted over HTTP.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"avtopology/internal/httputil"
	"avtopology/internal/transport"
)

const (
	pingInterval = 10 * time.Second
	pingTimeout  = 5 * time.Second
)

type Client struct {
	baseURL    string
	http       *http.Client
	dialer     *websocket.Dialer
	limiter    *rate.Limiter
	minBackoff time.Duration
	maxBackoff time.Duration
}

type Option func(*Client)

// WithRateLimit bounds the rate of action calls.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds each action call, including reading its outputs.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = httputil.NewClientWithTimeout(d) }
}

// WithBackoff sets the reconnect delay bounds of event streams.
func WithBackoff(min, max time.Duration) Option {
	return func(c *Client) {
		c.minBackoff = min
		c.maxBackoff = max
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if err := httputil.ValidateURL(baseURL); err != nil {
		return nil, fmt.Errorf("bridge: %w", err)
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		http:       httputil.NewClient(),
		dialer:     websocket.DefaultDialer,
		limiter:    rate.NewLimiter(20, 5),
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Subscribe keeps an event stream open until ctx is cancelled, reconnecting
// with exponential backoff. Every connection starts with an initial event.
func (c *Client) Subscribe(ctx context.Context, udn, service string, handler func(transport.Event)) error {
	q := url.Values{"udn": {udn}, "service": {service}, "sid": {uuid.NewString()}}
	wsURL := httputil.WebsocketURL(c.baseURL) + "/subscribe?" + q.Encode()
	go c.wsLoop(ctx, wsURL, udn, service, handler)
	return nil
}

func (c *Client) wsLoop(ctx context.Context, wsURL, udn, service string, handler func(transport.Event)) {
	backoff := c.minBackoff

	for {
		delivered, err := c.wsConnect(ctx, wsURL, handler)
		if ctx.Err() != nil {
			return
		}
		if delivered {
			backoff = c.minBackoff
		}
		if err != nil {
			log.Warn().Err(err).Str("module", "bridge").Str("udn", udn).Str("service", service).
				Dur("retry", backoff).Msg("event stream lost")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			backoff = min(backoff*2, c.maxBackoff)
		}
	}
}

func (c *Client) wsConnect(ctx context.Context, wsURL string, handler func(transport.Event)) (bool, error) {
	conn, _, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-connCtx.Done():
				// unblock ReadMessage
				conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteControl(
					websocket.PingMessage, nil,
					time.Now().Add(pingTimeout),
				); err != nil {
					return
				}
			}
		}
	}()

	delivered := false
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return delivered, err
		}
		var ev transport.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			log.Warn().Err(err).Str("module", "bridge").Msg("ignoring malformed event")
			continue
		}
		if connCtx.Err() != nil {
			return delivered, connCtx.Err()
		}
		handler(ev)
		delivered = true
	}
}

type actionRequest struct {
	Udn     string            `json:"udn"`
	Service string            `json:"service"`
	Action  string            `json:"action"`
	Args    map[string]string `json:"args"`
}

type actionResponse struct {
	Outputs map[string]string `json:"outputs"`
}

func (c *Client) Invoke(ctx context.Context, udn, service, action string, args map[string]string) (map[string]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(actionRequest{Udn: udn, Service: service, Action: action, Args: args})
	if err != nil {
		return nil, fmt.Errorf("encoding action: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/action", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	defer httputil.DrainBody(resp)

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, httputil.MaxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bridge returned status %d: %s", resp.StatusCode, httputil.Truncate(respBody, 200))
	}

	var out actionResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decoding outputs: %w", err)
	}
	return out.Outputs, nil
}

var _ transport.Client = (*Client)(nil)
