package ws

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/snakeladder/internal/config"
	"github.com/cory-johannsen/snakeladder/internal/game/session"
)

// Gateway consumes inbound frames and close notifications from the
// websocket layer. Implementations must be safe for concurrent enqueueing.
type Gateway interface {
	HandleFrame(conn session.Conn, data []byte)
	HandleDisconnect(conn session.Conn)
}

// Acceptor listens for websocket connections and pumps their frames into a
// Gateway. It also serves the HTTP liveness routes, which never touch game
// state.
type Acceptor struct {
	cfg      config.ServerConfig
	gateway  Gateway
	logger   *zap.Logger
	upgrader websocket.Upgrader

	httpSrv  *http.Server
	listener net.Listener
	conns    map[*Conn]struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// NewAcceptor creates a websocket acceptor with the given configuration.
//
// Precondition: gateway and logger must be non-nil.
// Postcondition: Returns an Acceptor ready to be started with Start.
func NewAcceptor(cfg config.ServerConfig, gateway Gateway, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		cfg:     cfg,
		gateway: gateway,
		logger:  logger,
		conns:   make(map[*Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients connect from arbitrary origins; there is no
			// credential to protect, so no origin allowlist either.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Start starts the HTTP listener and serves until Stop is called.
// This method blocks until the acceptor is stopped.
//
// Precondition: The acceptor must not already be running.
// Postcondition: The listener is closed when this method returns.
func (a *Acceptor) Start() error {
	start := time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", a.handleUpgrade)
	mux.HandleFunc("/health", handleLiveness)
	mux.HandleFunc("/", handleLiveness)

	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	a.listener = listener
	a.httpSrv = &http.Server{Handler: mux}
	a.running = true
	a.mu.Unlock()

	a.logger.Info("websocket acceptor listening",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("startup", time.Since(start)),
	)

	if err := a.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

// IsRunning reports whether the acceptor has started.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Addr returns the bound listen address, empty until started.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Stop gracefully stops the acceptor, shutting down the HTTP server,
// closing the live websockets, and waiting for their pumps to finish.
// Upgraded connections are hijacked from the HTTP server, so Shutdown
// neither closes nor waits for them; the acceptor closes them itself.
//
// Postcondition: All connections are closed and goroutines have exited.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	srv := a.httpSrv
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Warn("shutting down http server", zap.Error(err))
		_ = srv.Close()
	}

	a.mu.Lock()
	for conn := range a.conns {
		conn.Close()
	}
	a.mu.Unlock()

	a.wg.Wait()
}

func handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleUpgrade upgrades one HTTP request to a websocket and runs its read
// pump. The pump only enqueues to the gateway; all game state stays on the
// gateway's dispatch goroutine.
func (a *Acceptor) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	socket, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Error("upgrading connection",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	a.logger.Info("client connected",
		zap.String("remote_addr", r.RemoteAddr),
	)

	conn := newConn(socket)

	a.mu.Lock()
	if !a.running {
		// Stop has already snapshotted the connection set; a pump started
		// now would never be closed.
		a.mu.Unlock()
		conn.Close()
		return
	}
	a.conns[conn] = struct{}{}
	a.wg.Add(1)
	a.mu.Unlock()

	go a.readPump(conn, socket, r.RemoteAddr)
}

func (a *Acceptor) readPump(conn *Conn, socket *websocket.Conn, addr string) {
	defer a.wg.Done()
	start := time.Now()

	for {
		_, data, err := socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				a.logger.Warn("websocket read failed",
					zap.String("remote_addr", addr),
					zap.Error(err),
				)
			}
			break
		}
		a.gateway.HandleFrame(conn, data)
	}

	a.mu.Lock()
	delete(a.conns, conn)
	a.mu.Unlock()

	// The close notification drives all registry cleanup for this
	// connection; the transport layer itself holds no game state.
	a.gateway.HandleDisconnect(conn)
	conn.Close()

	a.logger.Info("client disconnected",
		zap.String("remote_addr", addr),
		zap.Duration("duration", time.Since(start)),
	)
}
