package gameserver

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeConn is an in-memory session.Conn. It is mutex-guarded so tests that
// exercise the running dispatch loop can poll it safely.
type fakeConn struct {
	mu   sync.Mutex
	sent [][]byte
	open bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{open: true}
}

func (f *fakeConn) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeConn) Open() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fakeConn) setOpen(open bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = open
}

func (f *fakeConn) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// events decodes everything delivered to the connection.
func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.sent))
	for _, data := range f.sent {
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		out = append(out, m)
	}
	return out
}

func TestPublishDeliversToAllOpen(t *testing.T) {
	f := NewFanout(zaptest.NewLogger(t))
	a, b := newFakeConn(), newFakeConn()
	f.Subscribe("ROOM01", a)
	f.Subscribe("ROOM01", b)

	f.Publish("ROOM01", ErrorEvent{Type: EventRoomFull})

	require.Equal(t, 1, a.sentCount())
	require.Equal(t, 1, b.sentCount())
	assert.Equal(t, EventRoomFull, a.events(t)[0]["type"])
}

// TestSubscribeIdempotent verifies a doubly-subscribed connection still
// receives exactly one copy of a published event.
func TestSubscribeIdempotent(t *testing.T) {
	f := NewFanout(zaptest.NewLogger(t))
	c := newFakeConn()
	f.Subscribe("ROOM01", c)
	f.Subscribe("ROOM01", c)

	f.Publish("ROOM01", ErrorEvent{Type: EventRoomNotFound})

	assert.Equal(t, 1, c.sentCount())
}

// TestPublishSkipsClosedWithoutPruning verifies non-open connections are
// silently skipped but stay subscribed.
func TestPublishSkipsClosedWithoutPruning(t *testing.T) {
	f := NewFanout(zaptest.NewLogger(t))
	c := newFakeConn()
	f.Subscribe("ROOM01", c)

	c.setOpen(false)
	f.Publish("ROOM01", ErrorEvent{Type: EventRoomFull})
	assert.Zero(t, c.sentCount())

	c.setOpen(true)
	f.Publish("ROOM01", ErrorEvent{Type: EventRoomFull})
	assert.Equal(t, 1, c.sentCount(), "connection must still be subscribed after being skipped")
}

func TestUnsubscribeAndEmpty(t *testing.T) {
	f := NewFanout(zaptest.NewLogger(t))
	a, b := newFakeConn(), newFakeConn()
	f.Subscribe("ROOM01", a)
	f.Subscribe("ROOM01", b)

	assert.False(t, f.Empty("ROOM01"))
	f.Unsubscribe("ROOM01", a)
	assert.False(t, f.Empty("ROOM01"))
	f.Unsubscribe("ROOM01", b)
	assert.True(t, f.Empty("ROOM01"))

	f.Delete("ROOM01")
	f.Publish("ROOM01", ErrorEvent{Type: EventRoomFull})
	assert.Zero(t, a.sentCount())
	assert.Zero(t, b.sentCount())
}

func TestPublishToUnknownRoomIsNoOp(t *testing.T) {
	f := NewFanout(zaptest.NewLogger(t))
	// Must not panic or create state.
	f.Publish("NOPE", ErrorEvent{Type: EventRoomFull})
	assert.True(t, f.Empty("NOPE"))
}

func TestSendToClosedConn(t *testing.T) {
	f := NewFanout(zaptest.NewLogger(t))
	c := newFakeConn()
	c.setOpen(false)
	f.SendTo(c, ErrorEvent{Type: EventRoomFull})
	assert.Zero(t, c.sentCount())
}
