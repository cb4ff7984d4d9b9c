package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/emberchat/ember-server/internal/config"
	"github.com/emberchat/ember-server/internal/engine"
	"github.com/emberchat/ember-server/internal/handlers"
	"github.com/emberchat/ember-server/internal/transport"
)

func main() {
	logger := initLogger()

	cfg, err := config.Load(os.Getenv("EMBER_CONFIG"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	hub := transport.NewHub(cfg.SendBuffer, logger)
	eng := engine.New(cfg, hub, engine.NewScheduler(), logger)
	router := handlers.NewRouter(eng, cfg, logger)
	hub.SetRouter(router)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/health", handlers.Health(eng))
	e.GET("/ws", hub.ServeWS)

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("server running")
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}

func initLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("app", "ember").Logger()
	log.Logger = logger
	return logger
}
