// Command server runs the idea lab HTTP API.
//
// Configuration is read from the environment (and an optional idealab.yaml)
// by internal/config; main only builds the logger, ensures the data
// directory exists, and starts the server.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/idealab/internal/config"
	"github.com/sakif/idealab/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.JWTSecret == "" {
		// The API is useless without sessions: nobody could ever submit
		// anything. Fail fast instead of starting a read-only husk.
		logger.Error("JWT_SECRET is not set; generate one with: openssl rand -hex 32")
		os.Exit(1)
	}

	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
