// Package room provides the room registry and turn tracking for active games.
package room

import "errors"

// Registry and room errors surfaced to clients as typed events.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room full")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrUnknownPlayer    = errors.New("unknown player")
)

// Player is one participant's game state. A player is owned by exactly one
// room and mutated only inside the gateway's dispatch goroutine.
type Player struct {
	// ID is the unique player identifier.
	ID string `json:"id"`
	// Name is the display name chosen at join time.
	Name string `json:"name"`
	// Position is the board square, 0-100. 0 means not yet entered.
	Position int `json:"position"`
	// Started reports whether the token is on the board.
	Started bool `json:"started"`
	// LastRoll is the most recent die value, advisory only.
	LastRoll int `json:"diceValue"`
}

// Room is one game instance: an ordered roster plus a turn cursor.
// Roster order is join order and defines turn order.
type Room struct {
	code    string
	players []*Player

	// turn indexes players. It starts at 0 and is advanced before being
	// read, so the first advance of a multi-player room hands the turn to
	// the second player to join. Clients compensate for this; keep it.
	turn int
}

// Code returns the room's shareable code.
func (r *Room) Code() string { return r.code }

// Len returns the current roster size.
func (r *Room) Len() int { return len(r.players) }

// Registry owns all active rooms.
//
// Registry is not safe for concurrent use: it is confined to the gateway's
// dispatch goroutine, which processes one message to completion at a time.
type Registry struct {
	maxPlayers int
	rooms      map[string]*Room
}

// NewRegistry creates an empty Registry.
//
// Precondition: maxPlayers must be >= 2.
func NewRegistry(maxPlayers int) *Registry {
	return &Registry{
		maxPlayers: maxPlayers,
		rooms:      make(map[string]*Room),
	}
}

// Create creates a room under the given code with a single player.
//
// Precondition: code must be unique; the caller collision-checks via Exists.
// Postcondition: The room exists with a one-player roster.
func (g *Registry) Create(code string, first *Player) *Room {
	r := &Room{
		code:    code,
		players: []*Player{first},
	}
	g.rooms[code] = r
	return r
}

// Join appends a player to the room's roster, preserving arrival order.
//
// Postcondition: Returns the room, or ErrRoomNotFound / ErrRoomFull with
// the roster unchanged.
func (g *Registry) Join(code string, p *Player) (*Room, error) {
	r, ok := g.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if len(r.players) >= g.maxPlayers {
		return nil, ErrRoomFull
	}
	r.players = append(r.players, p)
	return r, nil
}

// Exists reports whether a room is registered under code.
func (g *Registry) Exists(code string) bool {
	_, ok := g.rooms[code]
	return ok
}

// Remove deletes the matching player from the room's roster.
// The room itself is not deleted here even if the roster empties: room and
// connection-set deletion are one logical operation performed by the
// gateway's close handler, so neither is observed without the other.
//
// Postcondition: Returns false if the room is unknown.
func (g *Registry) Remove(code, playerID string) bool {
	r, ok := g.rooms[code]
	if !ok {
		return false
	}
	kept := r.players[:0]
	for _, p := range r.players {
		if p.ID != playerID {
			kept = append(kept, p)
		}
	}
	r.players = kept
	return true
}

// Delete drops the room entirely.
func (g *Registry) Delete(code string) {
	delete(g.rooms, code)
}

// Players returns a snapshot of the room's roster in turn order.
//
// Postcondition: Returns an empty slice if the room is unknown; the slice
// is safe for the caller to hold across later mutations.
func (g *Registry) Players(code string) []Player {
	r, ok := g.rooms[code]
	if !ok {
		return []Player{}
	}
	out := make([]Player, len(r.players))
	for i, p := range r.players {
		out[i] = *p
	}
	return out
}

// FindPlayer returns the live player record for mutation by the gateway.
//
// Postcondition: Returns ErrRoomNotFound or ErrUnknownPlayer when absent.
func (g *Registry) FindPlayer(code, playerID string) (*Player, error) {
	r, ok := g.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	for _, p := range r.players {
		if p.ID == playerID {
			return p, nil
		}
	}
	return nil, ErrUnknownPlayer
}

// AdvanceTurn moves the room's turn cursor to the next roster index,
// wrapping modulo the roster length, and returns the id of the player now
// holding the turn.
//
// Postcondition: Returns ("", false) for an unknown or empty room;
// otherwise the cursor is a valid roster index.
func (g *Registry) AdvanceTurn(code string) (string, bool) {
	r, ok := g.rooms[code]
	if !ok || len(r.players) == 0 {
		return "", false
	}
	r.turn = (r.turn + 1) % len(r.players)
	return r.players[r.turn].ID, true
}

// HoldsTurn reports whether a player keeps the turn after rolling die,
// given whether they had started before the roll. A started player keeps
// the turn on 1 or 6. A player still off the board keeps it only on 6 —
// an entry roll of 1 brings the token on but passes the turn.
func HoldsTurn(startedBeforeRoll bool, die int) bool {
	if startedBeforeRoll {
		return die == 1 || die == 6
	}
	return die == 6
}
