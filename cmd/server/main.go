// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/config"
	"github.com/jason-s-yu/uno/internal/database"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/handlers"
	"github.com/jason-s-yu/uno/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	// Postgres and Redis are optional; without them match recording and the
	// action queue degrade to no-ops.
	if cfg.DatabaseURL != "" {
		if err := database.Connect(context.Background(), cfg.DatabaseURL); err != nil {
			log.Fatalf("database: %v", err)
		}
		defer database.Close()
	}
	if cfg.RedisAddr != "" {
		if err := cache.Connect(cfg.RedisAddr, cfg.RedisDB); err != nil {
			log.Fatalf("redis: %v", err)
		}
	}

	registry := game.NewRegistry(cfg.MaxPlayers, cfg.IdleTimeout)
	srv := handlers.NewGameServer(registry, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", handlers.HealthzHandler)

	// game websocket
	mux.Handle("/game/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameWSHandler(logger, srv),
	)))

	// state + admin endpoints
	mux.Handle("/game/", middleware.LogMiddleware(logger)(srv))

	logger.Infof("Running on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
