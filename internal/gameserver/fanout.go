package gameserver

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/cory-johannsen/snakeladder/internal/game/session"
)

// Fanout holds the per-room sets of live connections subscribed to room
// broadcasts.
//
// Fanout is not safe for concurrent use: it is confined to the gateway's
// dispatch goroutine.
type Fanout struct {
	conns  map[string]map[session.Conn]struct{}
	logger *zap.Logger
}

// NewFanout creates an empty Fanout.
//
// Precondition: logger must be non-nil.
func NewFanout(logger *zap.Logger) *Fanout {
	return &Fanout{
		conns:  make(map[string]map[session.Conn]struct{}),
		logger: logger,
	}
}

// Subscribe adds conn to the room's connection set. Adding the same
// connection twice is a no-op, so a subscriber receives exactly one copy
// of each published event.
func (f *Fanout) Subscribe(roomCode string, conn session.Conn) {
	set, ok := f.conns[roomCode]
	if !ok {
		set = make(map[session.Conn]struct{})
		f.conns[roomCode] = set
	}
	set[conn] = struct{}{}
}

// Unsubscribe removes conn from the room's connection set.
// The set itself is left in place even when it empties: set deletion is
// paired with room deletion by the gateway's close handler.
func (f *Fanout) Unsubscribe(roomCode string, conn session.Conn) {
	if set, ok := f.conns[roomCode]; ok {
		delete(set, conn)
	}
}

// Empty reports whether the room has no subscribed connections.
func (f *Fanout) Empty(roomCode string) bool {
	return len(f.conns[roomCode]) == 0
}

// Delete drops the room's connection set entirely.
func (f *Fanout) Delete(roomCode string) {
	delete(f.conns, roomCode)
}

// Publish serializes event once and delivers it to every subscribed
// connection whose transport is open. Connections in any other state are
// skipped, not pruned; pruning happens only on an explicit close.
//
// Precondition: event must be JSON-serializable.
func (f *Fanout) Publish(roomCode string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		f.logger.Error("marshalling broadcast event", zap.Error(err))
		return
	}
	for conn := range f.conns[roomCode] {
		if !conn.Open() {
			continue
		}
		if err := conn.Send(data); err != nil {
			f.logger.Warn("delivering broadcast",
				zap.String("room", roomCode),
				zap.Error(err),
			)
		}
	}
}

// SendTo delivers event to a single connection, bypassing room membership.
// Used for direct replies such as room-created and game-over.
func (f *Fanout) SendTo(conn session.Conn, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		f.logger.Error("marshalling direct event", zap.Error(err))
		return
	}
	if !conn.Open() {
		return
	}
	if err := conn.Send(data); err != nil {
		f.logger.Warn("delivering direct event", zap.Error(err))
	}
}
