// Package ws provides the websocket frontend: the listener that upgrades
// client connections and the connection wrapper that feeds frames to the
// game gateway.
package ws

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout  = 10 * time.Second
	sendQueueSize = 64
)

// Conn wraps a websocket connection with a buffered outbound queue drained
// by a single writer goroutine, since the underlying socket permits only
// one concurrent writer.
type Conn struct {
	socket *websocket.Conn
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

// newConn wraps an upgraded websocket and starts its writer goroutine.
//
// Precondition: socket must be a freshly upgraded, open connection.
func newConn(socket *websocket.Conn) *Conn {
	c := &Conn{
		socket: socket,
		send:   make(chan []byte, sendQueueSize),
	}
	go c.writeLoop()
	return c
}

// Send queues one serialized event for delivery.
//
// Postcondition: Data is enqueued, or an error if the connection is closed
// or its queue is full. A full queue means a client that has stopped
// reading; the connection is closed so the client resynchronizes through
// the reconnect path instead of playing on with the events it missed.
func (c *Conn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("connection is closed")
	}
	select {
	case c.send <- data:
		return nil
	default:
		c.closed = true
		close(c.send)
		return fmt.Errorf("send queue full, closing connection")
	}
}

// Open reports whether the connection can still accept sends.
func (c *Conn) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Close marks the connection closed and tears down the writer and socket.
// Safe to call more than once.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
}

// writeLoop drains the send queue onto the socket. It owns all writes.
func (c *Conn) writeLoop() {
	for data := range c.send {
		_ = c.socket.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
			break
		}
	}
	_ = c.socket.Close()
}
