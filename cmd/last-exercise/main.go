// Package main Last Exercise API
//
// @title           Last Exercise API
// @version         1.0
// @description     Учёт упражнений и истории тренировок.

// @BasePath  /

// @securityDefinitions.apikey AccessToken
// @in header
// @name access_token
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/last-exercise/internal/app/lastexercise"
	"github.com/magabrotheeeer/last-exercise/internal/config"
	"github.com/magabrotheeeer/last-exercise/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env)

	logger.Info("starting last-exercise", slog.String("env", cfg.Env))
	logger.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := lastexercise.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("last-exercise stopped gracefully")
}
