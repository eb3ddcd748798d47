package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/deppfellow/quiz-api/internal/config"
	"github.com/deppfellow/quiz-api/internal/logger"
)

const shutdownTimeoutSeconds = 30

// app is what every subcommand needs before it does anything else.
type app struct {
	cfg           *config.Config
	logger        zerolog.Logger
	loggerService *logger.LoggerService
}

func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	return &app{
		cfg:           cfg,
		logger:        log,
		loggerService: loggerService,
	}, nil
}

func (a *app) close() {
	a.loggerService.Shutdown()
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
