package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/kirinyoku/busgo/docs"
	"github.com/kirinyoku/busgo/internal/app"
	"github.com/kirinyoku/busgo/internal/config"
	"github.com/kirinyoku/busgo/internal/logging"
)

// @title BusGo API
// @version 1.0
// @description Seat booking for scheduled bus trips.
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		logger.Error("application finished with error", "error", err)
		os.Exit(1)
	}
}
