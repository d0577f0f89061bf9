// Package session tracks which room and live connection each player
// identity is bound to.
package session

// Conn is a live client connection as seen by the coordinator core.
// The directory uses it only as an identity; the broadcast side also
// delivers through it.
type Conn interface {
	// Send queues one serialized event for delivery.
	Send(data []byte) error
	// Open reports whether the transport can still accept sends.
	Open() bool
}

// Session is the transient binding of a player to a room and connection.
// It is never persisted.
type Session struct {
	PlayerID string
	RoomCode string
	Conn     Conn
}

// Directory maps player identities to their sessions.
//
// Directory is not safe for concurrent use: it is confined to the gateway's
// dispatch goroutine.
type Directory struct {
	sessions map[string]Session
}

// NewDirectory creates an empty Directory.
func NewDirectory() *Directory {
	return &Directory{sessions: make(map[string]Session)}
}

// Bind inserts or overwrites the session entry for playerID.
// Used on create, join, and reconnect; a reconnect rebinds the player to
// the new connection.
//
// Precondition: playerID and roomCode must be non-empty; conn must be non-nil.
func (d *Directory) Bind(playerID, roomCode string, conn Conn) {
	d.sessions[playerID] = Session{PlayerID: playerID, RoomCode: roomCode, Conn: conn}
}

// Lookup returns the session for playerID.
func (d *Directory) Lookup(playerID string) (Session, bool) {
	s, ok := d.sessions[playerID]
	return s, ok
}

// Unbind removes the entry for playerID.
func (d *Directory) Unbind(playerID string) {
	delete(d.sessions, playerID)
}

// FindByConn returns every session riding the given connection. The
// directory is keyed by player, so this scans all entries; expected
// cardinality is 0 or 1 but the close path must handle any count.
func (d *Directory) FindByConn(conn Conn) []Session {
	var out []Session
	for _, s := range d.sessions {
		if s.Conn == conn {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of bound sessions.
func (d *Directory) Len() int {
	return len(d.sessions)
}
