package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/snakeladder/internal/config"
	"github.com/cory-johannsen/snakeladder/internal/frontend/ws"
	"github.com/cory-johannsen/snakeladder/internal/game/board"
	"github.com/cory-johannsen/snakeladder/internal/game/dice"
	"github.com/cory-johannsen/snakeladder/internal/gameserver"
)

// TestLifecycleRunsGameServer runs the real gateway and websocket acceptor
// under lifecycle management: a client creates a room over a live socket,
// then a context cancellation shuts everything down while that client is
// still connected.
func TestLifecycleRunsGameServer(t *testing.T) {
	logger := zaptest.NewLogger(t)
	src := dice.NewSeededSource(7)
	gateway := gameserver.NewService(board.Classic(), dice.NewRoller(src, logger), src, 4, logger)
	acceptor := ws.NewAcceptor(config.ServerConfig{Host: "127.0.0.1", Port: 0}, gateway, logger)

	lc := NewLifecycle(logger)
	lc.Add("gateway", gateway)
	lc.Add("websocket", acceptor)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for !acceptor.IsRunning() || acceptor.Addr() == "" {
		select {
		case <-deadline:
			t.Fatal("acceptor did not start in time")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	client, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws", acceptor.Addr()), nil)
	require.NoError(t, err)
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(`{"type":"create-room","name":"alice"}`)))

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"room-created"`)

	// Shut down with the client still connected. The websocket service
	// stops before the gateway and must close the socket itself.
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down with a live client")
	}

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = client.ReadMessage()
	assert.Error(t, err, "shutdown must close the client socket")
}

func TestLifecycleReturnsServiceError(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))

	lc.Add("gateway", &FuncService{
		StartFn: func() error { return fmt.Errorf("address already in use") },
		StopFn:  func() {},
	})

	done := make(chan error, 1)
	go func() { done <- lc.Run(context.Background()) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gateway")
		assert.Contains(t, err.Error(), "address already in use")
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down after the service failure")
	}
}

func TestLifecycleStopsInReverseOrder(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))

	var order []string
	stopper := func(name string) *FuncService {
		quit := make(chan struct{})
		return &FuncService{
			StartFn: func() error { <-quit; return nil },
			StopFn: func() {
				order = append(order, name)
				close(quit)
			},
		}
	}
	lc.Add("gateway", stopper("gateway"))
	lc.Add("websocket", stopper("websocket"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}

	// The transport must stop before the gateway it feeds.
	assert.Equal(t, []string{"websocket", "gateway"}, order)
}
