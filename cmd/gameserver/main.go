// Package main provides the game server binary: it wires the board, dice,
// gateway, and websocket acceptor together and runs them under lifecycle
// management.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/snakeladder/internal/config"
	"github.com/cory-johannsen/snakeladder/internal/frontend/ws"
	"github.com/cory-johannsen/snakeladder/internal/game/board"
	"github.com/cory-johannsen/snakeladder/internal/game/dice"
	"github.com/cory-johannsen/snakeladder/internal/gameserver"
	"github.com/cory-johannsen/snakeladder/internal/observability"
	"github.com/cory-johannsen/snakeladder/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = built-in defaults")
	seed := flag.Int64("seed", 0, "seed for a deterministic die; 0 = crypto randomness")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	gameBoard := board.Classic()
	if cfg.Board.Path != "" {
		gameBoard, err = board.LoadFromFile(cfg.Board.Path)
		if err != nil {
			logger.Fatal("loading board", zap.Error(err))
		}
	}
	logger.Info("board loaded",
		zap.Int("snakes", len(gameBoard.Snakes)),
		zap.Int("ladders", len(gameBoard.Ladders)),
	)

	var src dice.Source = dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
		logger.Warn("running with a seeded die", zap.Int64("seed", *seed))
	}
	roller := dice.NewRoller(src, logger)

	gateway := gameserver.NewService(gameBoard, roller, src, cfg.Game.MaxPlayers, logger)
	acceptor := ws.NewAcceptor(cfg.Server, gateway, logger)

	logger.Info("starting game server",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("max_players", cfg.Game.MaxPlayers),
		zap.Duration("boot", time.Since(start)),
	)

	lc := server.NewLifecycle(logger)
	lc.Add("gateway", gateway)
	lc.Add("websocket", acceptor)

	if err := lc.Run(context.Background()); err != nil {
		logger.Fatal("running server", zap.Error(err))
	}
}
