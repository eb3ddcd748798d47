package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/quiz-api/internal/database"
	"github.com/deppfellow/quiz-api/internal/handler"
	"github.com/deppfellow/quiz-api/internal/repository"
	"github.com/deppfellow/quiz-api/internal/router"
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/service"
)

func newServeCmd() *cobra.Command {
	var migrate, seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), migrate, seed)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply database migrations before starting")
	cmd.Flags().BoolVar(&seed, "seed", false, "insert fixture data before starting")

	return cmd
}

func runServe(parent context.Context, migrate, seed bool) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if migrate {
		if err := database.Migrate(parent, &a.logger, a.cfg); err != nil {
			a.logger.Error().Err(err).Msg("failed to migrate database")
			return err
		}
	}

	srv, err := server.New(a.cfg, &a.logger, a.loggerService)
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to initialize server")
		return err
	}

	if seed {
		err := database.Seed(parent, srv.DB.Pool, &a.logger, a.cfg)
		switch {
		case errors.Is(err, database.ErrSeedInProduction):
			a.logger.Warn().Err(err).Msg("skipping seed")
		case err != nil:
			_ = srv.Shutdown(context.Background())
			return err
		}
	}

	repos := repository.NewRepositories(srv)
	services := service.NewServices(srv, repos)
	handlers := handler.NewHandlers(srv, services)
	srv.SetupHTTPServer(router.NewRouter(srv, handlers, services))

	ctx, stop := signalContext()
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error().Err(err).Msg("server stopped unexpectedly")
		}
		_ = srv.Shutdown(context.Background())
		return err
	case <-ctx.Done():
	}

	a.logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeoutSeconds*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	a.logger.Info().Msg("server exited properly")
	return nil
}
