package websocket

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient captures sent messages for assertions
type fakeClient struct {
	id       string
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func (f *fakeClient) ID() string { return f.id }

func (f *fakeClient) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClientClosed
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	client := &fakeClient{id: "c1"}

	hub.Register(client)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	c1 := &fakeClient{id: "c1"}
	c2 := &fakeClient{id: "c2"}
	hub.Register(c1)
	hub.Register(c2)

	hub.Broadcast(PaymentRecorded(map[string]any{"subscriberId": 1}))

	waitFor(t, func() bool { return c1.messageCount() == 1 && c2.messageCount() == 1 })

	var event Event
	require.NoError(t, json.Unmarshal(c1.messages[0], &event))
	assert.Equal(t, "payment.recorded", event.Type)
	assert.Equal(t, EntityTypePayment, event.Entity)
}

func TestHub_BroadcastSkipsUnregistered(t *testing.T) {
	hub := NewHub()
	c1 := &fakeClient{id: "c1"}
	hub.Register(c1)
	hub.Unregister(c1)

	hub.Broadcast(ObligationUnmarked(nil))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, c1.messageCount())
}

func TestNoOpPublisher(t *testing.T) {
	var p NoOpPublisher
	// must not panic
	p.Publish(PriceApplied(nil))
}
