package gameserver

import "github.com/cory-johannsen/snakeladder/internal/game/room"

// Outbound event types. Field names below match what deployed browser
// clients expect, quirks included: room-created and player-joined carry
// "playerID" while every other event uses "playerId".
const (
	EventRoomCreated        = "room-created"
	EventRoomNotFound       = "room-not-found"
	EventRoomFull           = "room-full"
	EventPlayerJoined       = "player-joined"
	EventNotEnoughPlayers   = "not-enough-players"
	EventPlayerTurn         = "player-turn"
	EventDiceRolled         = "dice-rolled"
	EventGameOver           = "game-over"
	EventUpdateBoard        = "update-board"
	EventReconnected        = "reconnected"
	EventPlayerReconnected  = "player-reconnected"
	EventPlayerDisconnected = "player-disconnected"
	EventMalformedEnvelope  = "malformed-envelope"
)

// RoomCreated acknowledges a create-room request to the creator only.
type RoomCreated struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerID"`
	Players  int    `json:"players"`
}

// ErrorEvent is the payload for the bare failure events
// (room-not-found, room-full, not-enough-players).
type ErrorEvent struct {
	Type string `json:"type"`
}

// PlayerJoined is broadcast to a room when its roster grows.
type PlayerJoined struct {
	Type       string        `json:"type"`
	Players    int           `json:"players"`
	PlayerID   string        `json:"playerID"`
	AllPlayers []room.Player `json:"allPlayers"`
}

// PlayerTurn announces the player now holding the turn.
type PlayerTurn struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

// DiceRolled is broadcast after every roll, wasted turns included.
type DiceRolled struct {
	Type      string `json:"type"`
	DiceValue int    `json:"diceValue"`
	PlayerID  string `json:"playerId"`
	Position  int    `json:"position"`
}

// GameOver is sent to the winning roller only.
type GameOver struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

// UpdateBoard relays a cosmetic position update verbatim.
type UpdateBoard struct {
	Type        string `json:"type"`
	PlayerID    string `json:"playerId"`
	NewPosition int    `json:"newPosition"`
}

// Reconnected acknowledges a reconnect to the requesting connection.
type Reconnected struct {
	Type     string        `json:"type"`
	RoomCode string        `json:"roomCode"`
	PlayerID string        `json:"playerId"`
	Players  []room.Player `json:"players"`
}

// PlayerReconnected notifies a room that a player rebound its connection.
type PlayerReconnected struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

// PlayerDisconnected notifies a room of a departure, with the remaining roster.
type PlayerDisconnected struct {
	Type     string        `json:"type"`
	PlayerID string        `json:"playerId"`
	Players  []room.Player `json:"players"`
}

// MalformedEnvelope answers an envelope rejected at the decode boundary.
type MalformedEnvelope struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
