// Package gameserver implements the connection gateway for the
// snake-and-ladder game: envelope decoding, message dispatch, and the
// per-room broadcast fanout.
package gameserver

import (
	"encoding/json"
	"fmt"
)

// Inbound message types.
const (
	TypeCreateRoom = "create-room"
	TypeJoinRoom   = "join-room"
	TypeStartGame  = "start-game"
	TypeRollDice   = "roll-dice"
	TypePlayerMove = "player-move"
	TypeReconnect  = "reconnect"
)

// Message is one decoded inbound envelope. The concrete type is determined
// by the envelope's "type" field; Decode guarantees required fields are set.
type Message interface {
	isMessage()
}

// CreateRoom requests a new room with the sender as sole player.
type CreateRoom struct {
	Name string
}

// JoinRoom requests to join an existing room.
type JoinRoom struct {
	RoomCode string
	Name     string
}

// StartGame requests the first turn advance for a room.
type StartGame struct {
	RoomCode string
}

// RollDice requests a die roll for the named player.
type RollDice struct {
	PlayerID string
	RoomCode string
}

// PlayerMove is a cosmetic board-position relay, not authoritative state.
type PlayerMove struct {
	RoomCode    string
	PlayerID    string
	NewPosition int
}

// Reconnect rebinds a known player to a new connection.
type Reconnect struct {
	PlayerID string
	RoomCode string
}

func (CreateRoom) isMessage() {}
func (JoinRoom) isMessage()   {}
func (StartGame) isMessage()  {}
func (RollDice) isMessage()   {}
func (PlayerMove) isMessage() {}
func (Reconnect) isMessage()  {}

// MalformedError describes an envelope rejected at the decode boundary.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed envelope: %s", e.Reason)
}

// envelope is the superset of fields across all inbound message types.
type envelope struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	RoomCode    string `json:"roomCode"`
	PlayerID    string `json:"playerId"`
	NewPosition *int   `json:"newPosition"`
}

// Decode parses one inbound frame into its message variant, validating the
// required fields for that variant. A bad payload never reaches a handler.
//
// Postcondition: Returns a Message, or a *MalformedError naming the problem.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &MalformedError{Reason: "invalid JSON"}
	}

	switch env.Type {
	case TypeCreateRoom:
		if env.Name == "" {
			return nil, &MalformedError{Reason: "create-room requires name"}
		}
		return CreateRoom{Name: env.Name}, nil

	case TypeJoinRoom:
		if env.RoomCode == "" || env.Name == "" {
			return nil, &MalformedError{Reason: "join-room requires roomCode and name"}
		}
		return JoinRoom{RoomCode: env.RoomCode, Name: env.Name}, nil

	case TypeStartGame:
		if env.RoomCode == "" {
			return nil, &MalformedError{Reason: "start-game requires roomCode"}
		}
		return StartGame{RoomCode: env.RoomCode}, nil

	case TypeRollDice:
		if env.PlayerID == "" || env.RoomCode == "" {
			return nil, &MalformedError{Reason: "roll-dice requires playerId and roomCode"}
		}
		return RollDice{PlayerID: env.PlayerID, RoomCode: env.RoomCode}, nil

	case TypePlayerMove:
		if env.RoomCode == "" || env.PlayerID == "" || env.NewPosition == nil {
			return nil, &MalformedError{Reason: "player-move requires roomCode, playerId and newPosition"}
		}
		return PlayerMove{RoomCode: env.RoomCode, PlayerID: env.PlayerID, NewPosition: *env.NewPosition}, nil

	case TypeReconnect:
		if env.PlayerID == "" || env.RoomCode == "" {
			return nil, &MalformedError{Reason: "reconnect requires playerId and roomCode"}
		}
		return Reconnect{PlayerID: env.PlayerID, RoomCode: env.RoomCode}, nil

	case "":
		return nil, &MalformedError{Reason: "missing type"}

	default:
		return nil, &MalformedError{Reason: fmt.Sprintf("unknown type %q", env.Type)}
	}
}
