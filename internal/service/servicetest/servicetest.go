// Package servicetest provides helpers for testing capabilities against an
// isolated scheduler.
package servicetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"avtopology/internal/future"
	"avtopology/internal/models"
	"avtopology/internal/scheduler"
	"avtopology/internal/script"
	"avtopology/internal/service"
	"avtopology/internal/transport"
)

// NewThread starts a scheduler that is stopped when the test ends.
func NewThread(t *testing.T) *scheduler.Thread {
	t.Helper()
	th := scheduler.New(scheduler.WithName(t.Name()))
	th.Start(context.Background())
	t.Cleanup(th.Stop)
	return th
}

// Flush waits until every unit scheduled so far has run.
func Flush(th *scheduler.Thread) {
	th.Execute(func() {})
}

// Proxy creates a proxy and waits for it to be delivered. Network services
// need a handshake func that emits their initial event.
func Proxy[P service.Proxy](t *testing.T, th *scheduler.Thread, d *service.Device, kind models.ServiceKind, handshake ...func()) P {
	t.Helper()
	var (
		p   P
		ok  bool
		err error
	)
	th.Execute(func() {
		err = service.Create(d, kind, func(got P) {
			p, ok = got, true
		})
	})
	require.NoError(t, err)
	for _, h := range handshake {
		h()
	}
	require.Eventually(t, func() bool {
		done := false
		th.Execute(func() { done = ok })
		return done
	}, time.Second, time.Millisecond)
	return p
}

// Exec runs one scripting line against a device.
func Exec(t *testing.T, th *scheduler.Thread, d *service.Device, line string) error {
	t.Helper()
	cmd, err := script.Parse(line)
	require.NoError(t, err)
	th.Execute(func() { err = d.Execute(cmd) })
	return err
}

// Await waits for a future started by fn inside the scheduler context.
func Await[T any](t *testing.T, th *scheduler.Thread, fn func() future.Future[T]) (T, error) {
	t.Helper()
	var f future.Future[T]
	th.Execute(func() { f = fn() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := f.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return res, err
}

// Call is one recorded transport action.
type Call struct {
	Udn     string
	Service string
	Action  string
	Args    map[string]string
}

// Client is an in-memory transport client. Events are pushed with Emit;
// actions are recorded and answered from Outputs.
type Client struct {
	mu       sync.Mutex
	handlers map[string]func(transport.Event)
	ctxs     map[string]context.Context
	calls    []Call

	Outputs map[string]map[string]string
	Err     error
}

func NewClient() *Client {
	return &Client{
		handlers: make(map[string]func(transport.Event)),
		ctxs:     make(map[string]context.Context),
		Outputs:  make(map[string]map[string]string),
	}
}

func key(udn, svc string) string {
	return udn + "/" + svc
}

func (c *Client) Subscribe(ctx context.Context, udn, svc string, handler func(transport.Event)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[key(udn, svc)] = handler
	c.ctxs[key(udn, svc)] = ctx
	return nil
}

func (c *Client) Invoke(ctx context.Context, udn, svc, action string, args map[string]string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Udn: udn, Service: svc, Action: action, Args: args})
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Outputs[action], nil
}

// Subscribed reports whether a live subscription exists for the service.
func (c *Client) Subscribed(udn, svc string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx, ok := c.ctxs[key(udn, svc)]
	return ok && ctx.Err() == nil
}

// Emit delivers an event to the service's subscriber. It fails the test when
// nothing subscribed.
func (c *Client) Emit(t *testing.T, udn, svc string, props map[string]string) {
	t.Helper()
	c.mu.Lock()
	h, ok := c.handlers[key(udn, svc)]
	c.mu.Unlock()
	require.True(t, ok, "no subscription for %s", key(udn, svc))
	h(transport.Event{Udn: udn, Service: svc, Properties: props})
}

func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}
