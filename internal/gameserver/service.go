package gameserver

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/snakeladder/internal/game/board"
	"github.com/cory-johannsen/snakeladder/internal/game/dice"
	"github.com/cory-johannsen/snakeladder/internal/game/room"
	"github.com/cory-johannsen/snakeladder/internal/game/session"
)

// inbound is one unit of work for the dispatch loop: either a raw frame
// from a connection or a close notification for it.
type inbound struct {
	conn   session.Conn
	data   []byte
	closed bool
}

// Service is the connection gateway. It owns the room registry, session
// directory, and fanout, and is the only component that mutates them.
//
// Concurrency model: a single goroutine (the Start loop) drains the inbox
// and processes one message to completion before the next, across all
// connections and rooms. That single-writer discipline replaces locking on
// the registries. Transport read pumps only enqueue; write queues live on
// the connections themselves.
type Service struct {
	gameBoard board.Board
	roller    *dice.Roller
	codeSrc   dice.Source
	rooms     *room.Registry
	sessions  *session.Directory
	fanout    *Fanout
	logger    *zap.Logger

	inbox    chan inbound
	quit     chan struct{}
	stopOnce sync.Once
}

// NewService creates the gateway with its owned state. Passing the
// registries in (rather than package globals) keeps server instances
// independent and unit tests deterministic.
//
// Precondition: b must pass Validate; roller, codeSrc, and logger must be
// non-nil; maxPlayers must be >= 2.
func NewService(b board.Board, roller *dice.Roller, codeSrc dice.Source, maxPlayers int, logger *zap.Logger) *Service {
	return &Service{
		gameBoard: b,
		roller:    roller,
		codeSrc:   codeSrc,
		rooms:     room.NewRegistry(maxPlayers),
		sessions:  session.NewDirectory(),
		fanout:    NewFanout(logger),
		logger:    logger,
		inbox:     make(chan inbound, 256),
		quit:      make(chan struct{}),
	}
}

// Start runs the dispatch loop. It blocks until Stop is called.
func (s *Service) Start() error {
	for {
		select {
		case in := <-s.inbox:
			if in.closed {
				s.handleClose(in.conn)
			} else {
				s.dispatch(in.conn, in.data)
			}
		case <-s.quit:
			return nil
		}
	}
}

// Stop terminates the dispatch loop. Messages still queued are dropped;
// the transport layer is shutting down with us.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
}

// HandleFrame enqueues one inbound frame for dispatch. Safe for concurrent
// use by transport read pumps.
func (s *Service) HandleFrame(conn session.Conn, data []byte) {
	select {
	case s.inbox <- inbound{conn: conn, data: data}:
	case <-s.quit:
	}
}

// HandleDisconnect enqueues a close notification for the connection.
// Safe for concurrent use by transport read pumps.
func (s *Service) HandleDisconnect(conn session.Conn) {
	select {
	case s.inbox <- inbound{conn: conn, closed: true}:
	case <-s.quit:
	}
}

// dispatch decodes one frame and routes it to its handler. Runs only on
// the dispatch goroutine.
func (s *Service) dispatch(conn session.Conn, data []byte) {
	msg, err := Decode(data)
	if err != nil {
		var malformed *MalformedError
		if errors.As(err, &malformed) {
			s.logger.Warn("rejecting malformed envelope", zap.String("reason", malformed.Reason))
			s.fanout.SendTo(conn, MalformedEnvelope{Type: EventMalformedEnvelope, Reason: malformed.Reason})
			return
		}
		s.logger.Error("decoding envelope", zap.Error(err))
		return
	}

	s.logger.Debug("message received", zap.String("type", typeName(msg)))

	switch m := msg.(type) {
	case CreateRoom:
		s.handleCreateRoom(conn, m)
	case JoinRoom:
		s.handleJoinRoom(conn, m)
	case StartGame:
		s.handleStartGame(conn, m)
	case RollDice:
		s.handleRollDice(conn, m)
	case PlayerMove:
		s.handlePlayerMove(m)
	case Reconnect:
		s.handleReconnect(conn, m)
	}
}

func typeName(m Message) string {
	switch m.(type) {
	case CreateRoom:
		return TypeCreateRoom
	case JoinRoom:
		return TypeJoinRoom
	case StartGame:
		return TypeStartGame
	case RollDice:
		return TypeRollDice
	case PlayerMove:
		return TypePlayerMove
	case Reconnect:
		return TypeReconnect
	default:
		return "unknown"
	}
}

func (s *Service) handleCreateRoom(conn session.Conn, m CreateRoom) {
	code := room.GenerateCode(s.codeSrc)
	for s.rooms.Exists(code) {
		code = room.GenerateCode(s.codeSrc)
	}
	playerID := uuid.NewString()

	s.rooms.Create(code, &room.Player{ID: playerID, Name: m.Name})
	s.sessions.Bind(playerID, code, conn)
	s.fanout.Subscribe(code, conn)

	s.logger.Info("room created",
		zap.String("room", code),
		zap.String("player", playerID),
	)

	s.fanout.SendTo(conn, RoomCreated{
		Type:     EventRoomCreated,
		RoomCode: code,
		PlayerID: playerID,
		Players:  len(s.rooms.Players(code)),
	})
}

func (s *Service) handleJoinRoom(conn session.Conn, m JoinRoom) {
	playerID := uuid.NewString()
	_, err := s.rooms.Join(m.RoomCode, &room.Player{ID: playerID, Name: m.Name})
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		s.fanout.SendTo(conn, ErrorEvent{Type: EventRoomNotFound})
		return
	case errors.Is(err, room.ErrRoomFull):
		s.fanout.SendTo(conn, ErrorEvent{Type: EventRoomFull})
		return
	}

	s.sessions.Bind(playerID, m.RoomCode, conn)
	s.fanout.Subscribe(m.RoomCode, conn)

	players := s.rooms.Players(m.RoomCode)
	s.logger.Info("player joined",
		zap.String("room", m.RoomCode),
		zap.String("player", playerID),
		zap.Int("roster", len(players)),
	)

	s.fanout.Publish(m.RoomCode, PlayerJoined{
		Type:       EventPlayerJoined,
		Players:    len(players),
		PlayerID:   playerID,
		AllPlayers: players,
	})
}

func (s *Service) handleStartGame(conn session.Conn, m StartGame) {
	if !s.rooms.Exists(m.RoomCode) {
		s.fanout.SendTo(conn, ErrorEvent{Type: EventRoomNotFound})
		return
	}
	if len(s.rooms.Players(m.RoomCode)) < 2 {
		s.fanout.SendTo(conn, ErrorEvent{Type: EventNotEnoughPlayers})
		return
	}

	playerID, _ := s.rooms.AdvanceTurn(m.RoomCode)
	s.logger.Info("game started",
		zap.String("room", m.RoomCode),
		zap.String("first_turn", playerID),
	)
	s.fanout.Publish(m.RoomCode, PlayerTurn{Type: EventPlayerTurn, PlayerID: playerID})
}

func (s *Service) handleRollDice(conn session.Conn, m RollDice) {
	p, err := s.rooms.FindPlayer(m.RoomCode, m.PlayerID)
	if err != nil {
		// Ignored by design: a roll for a vanished player or room carries
		// no reply-to the client protocol understands.
		s.logger.Debug("dropping roll for unknown player",
			zap.String("room", m.RoomCode),
			zap.String("player", m.PlayerID),
			zap.Error(err),
		)
		return
	}

	die := s.roller.Roll()
	startedBefore := p.Started
	move := s.gameBoard.Apply(p.Position, p.Started, die)
	p.Position = move.To
	p.Started = move.Started
	p.LastRoll = die

	s.fanout.Publish(m.RoomCode, DiceRolled{
		Type:      EventDiceRolled,
		DiceValue: die,
		PlayerID:  m.PlayerID,
		Position:  move.To,
	})

	if move.Won {
		s.logger.Info("game over",
			zap.String("room", m.RoomCode),
			zap.String("winner", m.PlayerID),
		)
		// Direct reply to the roller only; the room already saw the final
		// position in dice-rolled.
		s.fanout.SendTo(conn, GameOver{Type: EventGameOver, PlayerID: m.PlayerID})
		return
	}

	if room.HoldsTurn(startedBefore, die) {
		s.fanout.Publish(m.RoomCode, PlayerTurn{Type: EventPlayerTurn, PlayerID: m.PlayerID})
		return
	}

	next, ok := s.rooms.AdvanceTurn(m.RoomCode)
	if !ok {
		return
	}
	s.fanout.Publish(m.RoomCode, PlayerTurn{Type: EventPlayerTurn, PlayerID: next})
}

func (s *Service) handlePlayerMove(m PlayerMove) {
	// Cosmetic relay. The authoritative position only ever moves through
	// handleRollDice.
	s.fanout.Publish(m.RoomCode, UpdateBoard{
		Type:        EventUpdateBoard,
		PlayerID:    m.PlayerID,
		NewPosition: m.NewPosition,
	})
}

func (s *Service) handleReconnect(conn session.Conn, m Reconnect) {
	if !s.rooms.Exists(m.RoomCode) {
		s.fanout.SendTo(conn, ErrorEvent{Type: EventRoomNotFound})
		return
	}

	// Any caller presenting a known playerId and roomCode is accepted and
	// rebound; there is no credential. Open by design.
	s.sessions.Bind(m.PlayerID, m.RoomCode, conn)
	s.fanout.Subscribe(m.RoomCode, conn)

	s.logger.Info("player reconnected",
		zap.String("room", m.RoomCode),
		zap.String("player", m.PlayerID),
	)

	s.fanout.SendTo(conn, Reconnected{
		Type:     EventReconnected,
		RoomCode: m.RoomCode,
		PlayerID: m.PlayerID,
		Players:  s.rooms.Players(m.RoomCode),
	})
	s.fanout.Publish(m.RoomCode, PlayerReconnected{Type: EventPlayerReconnected, PlayerID: m.PlayerID})
}

// handleClose cleans up every session riding the closed connection:
// roster removal, fanout unsubscribe, session unbind, and the paired
// room+fanout deletion when the connection set empties.
func (s *Service) handleClose(conn session.Conn) {
	for _, sess := range s.sessions.FindByConn(conn) {
		code := sess.RoomCode

		s.rooms.Remove(code, sess.PlayerID)
		s.fanout.Unsubscribe(code, conn)
		s.sessions.Unbind(sess.PlayerID)

		if s.fanout.Empty(code) {
			// One logical operation: neither deletion is observed alone.
			s.fanout.Delete(code)
			s.rooms.Delete(code)
			s.logger.Info("room deleted", zap.String("room", code))
			continue
		}

		s.logger.Info("player disconnected",
			zap.String("room", code),
			zap.String("player", sess.PlayerID),
		)
		s.fanout.Publish(code, PlayerDisconnected{
			Type:     EventPlayerDisconnected,
			PlayerID: sess.PlayerID,
			Players:  s.rooms.Players(code),
		})
	}
}
