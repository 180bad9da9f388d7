package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"avtopology/internal/transport"
)

type fakeBridge struct {
	upgrader websocket.Upgrader
	connects atomic.Int32
	// events sent on each connection before it is closed or held open
	events  []transport.Event
	hold    bool
	closed  chan struct{}
	actions chan actionRequest
	status  int
}

func newFakeBridge(t *testing.T) (*fakeBridge, *httptest.Server) {
	fb := &fakeBridge{closed: make(chan struct{}, 8), actions: make(chan actionRequest, 8), status: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/subscribe", fb.subscribe)
	mux.HandleFunc("/action", fb.action)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBridge) subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := fb.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	fb.connects.Add(1)

	for _, ev := range fb.events {
		ev.Udn = r.URL.Query().Get("udn")
		ev.Service = r.URL.Query().Get("service")
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
	if fb.hold {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				fb.closed <- struct{}{}
				return
			}
		}
	}
}

func (fb *fakeBridge) action(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fb.actions <- req
	if fb.status != http.StatusOK {
		http.Error(w, "device unreachable", fb.status)
		return
	}
	json.NewEncoder(w).Encode(actionResponse{Outputs: map[string]string{"NewId": "7"}})
}

type collector struct {
	mu     sync.Mutex
	events []transport.Event
}

func (c *collector) handle(ev transport.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *collector) snapshot() []transport.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]transport.Event(nil), c.events...)
}

func TestSubscribeStreamsEvents(t *testing.T) {
	fb, srv := newFakeBridge(t)
	fb.hold = true
	fb.events = []transport.Event{
		{Seq: 0, Properties: map[string]string{"Volume": "40"}},
		{Seq: 1, Properties: map[string]string{"Volume": "41"}},
	}

	c, err := New(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var got collector
	require.NoError(t, c.Subscribe(ctx, "ds1", "volume", got.handle))

	require.Eventually(t, func() bool { return got.len() == 2 }, 2*time.Second, 5*time.Millisecond)
	events := got.snapshot()
	assert.Equal(t, "ds1", events[0].Udn)
	assert.Equal(t, "volume", events[0].Service)
	assert.Equal(t, "41", events[1].Properties["Volume"])

	cancel()
	select {
	case <-fb.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after cancel")
	}
}

func TestSubscribeReconnects(t *testing.T) {
	fb, srv := newFakeBridge(t)
	fb.events = []transport.Event{{Properties: map[string]string{"Mute": "false"}}}

	c, err := New(srv.URL, WithBackoff(5*time.Millisecond, 20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var got collector
	require.NoError(t, c.Subscribe(ctx, "ds1", "volume", got.handle))

	require.Eventually(t, func() bool { return fb.connects.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, got.len(), 3)
}

func TestInvoke(t *testing.T) {
	fb, srv := newFakeBridge(t)
	c, err := New(srv.URL + "/")
	require.NoError(t, err)

	out, err := c.Invoke(context.Background(), "ds1", "playlist", "Insert", map[string]string{"AfterId": "0"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"NewId": "7"}, out)

	req := <-fb.actions
	assert.Equal(t, actionRequest{Udn: "ds1", Service: "playlist", Action: "Insert", Args: map[string]string{"AfterId": "0"}}, req)
}

func TestInvokeStatusError(t *testing.T) {
	fb, srv := newFakeBridge(t)
	fb.status = http.StatusBadGateway
	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), "ds1", "volume", "SetMute", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "device unreachable")
}

func TestInvokeRateLimited(t *testing.T) {
	_, srv := newFakeBridge(t)
	c, err := New(srv.URL, WithRateLimit(rate.Every(time.Hour), 1))
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), "ds1", "volume", "VolumeInc", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Invoke(ctx, "ds1", "volume", "VolumeInc", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestInvokeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := New(srv.URL, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Invoke(context.Background(), "ds1", "volume", "VolumeInc", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection failed")
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("bridge.local:9000")
	assert.Error(t, err)
}
