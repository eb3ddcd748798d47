package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/quiz-api/internal/lib/email"
	"github.com/deppfellow/quiz-api/internal/lib/job"
	"github.com/deppfellow/quiz-api/internal/repository"
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/service"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the background worker (emails, question import)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker()
		},
	}
}

func runWorker() error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	srv, err := server.New(a.cfg, &a.logger, a.loggerService)
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to initialize worker dependencies")
		return err
	}

	mailer, err := email.NewClient(a.cfg, &a.logger)
	if err != nil {
		_ = srv.Shutdown(context.Background())
		return err
	}

	services := service.NewServices(srv, repository.NewRepositories(srv))
	jobs := job.NewJobService(a.cfg, &a.logger, job.NewHandlers(mailer, services.Import, &a.logger))

	if err := jobs.Start(); err != nil {
		a.logger.Error().Err(err).Msg("failed to start job server")
		_ = srv.Shutdown(context.Background())
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	<-ctx.Done()

	a.logger.Info().Msg("shutting down worker")
	jobs.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeoutSeconds*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
