// Package job runs background work on Asynq, a Redis-backed task queue.
//
// The API process only enqueues (Enqueuer). The worker process runs a
// JobService that executes email tasks and, when enabled, schedules the
// periodic question import.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/deppfellow/quiz-api/internal/config"
)

type JobService struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	handlers  *Handlers
	importCfg config.ImportConfig
	logger    *zerolog.Logger
}

func NewJobService(cfg *config.Config, logger *zerolog.Logger, handlers *Handlers) *JobService {
	redisOpt := RedisOpt(cfg.Redis)
	asynqLog := &asynqLogger{logger: logger.With().Str("component", "asynq").Logger()}

	// Email tasks get twice the worker share of everything else.
	queues := map[string]int{DefaultQueue: 3}
	queues[cfg.Redis.EmailQueue] = 6

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues:      queues,
		Logger:      asynqLog,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Warn().
				Err(err).
				Str("type", task.Type()).
				Int("retried", retried).
				Int("max_retry", maxRetry).
				Msg("task failed")
		}),
	})

	var scheduler *asynq.Scheduler
	if cfg.Import.Enabled {
		scheduler = asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
			Logger:   asynqLog,
			Location: time.UTC,
		})
	}

	return &JobService{
		server:    server,
		scheduler: scheduler,
		handlers:  handlers,
		importCfg: cfg.Import,
		logger:    logger,
	}
}

// Start registers the handlers and starts the workers and the scheduler.
// It does not block. The import schedule is validated before anything
// starts, and the workers are shut down again when the scheduler fails.
func (j *JobService) Start() error {
	var entryID string
	if j.scheduler != nil {
		var err error
		if entryID, err = j.registerImport(); err != nil {
			return err
		}
	}

	mux := asynq.NewServeMux()
	j.handlers.Register(mux)

	j.logger.Info().Msg("starting background job server")

	if err := j.server.Start(mux); err != nil {
		return err
	}

	if j.scheduler == nil {
		return nil
	}

	if err := j.scheduler.Start(); err != nil {
		j.server.Shutdown()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	j.logger.Info().
		Str("cron", j.importCfg.Cron).
		Str("entry_id", entryID).
		Msg("question import scheduled")
	return nil
}

func (j *JobService) registerImport() (string, error) {
	task, err := NewQuestionImportTask(j.importCfg.Amount)
	if err != nil {
		return "", err
	}
	entryID, err := j.scheduler.Register(j.importCfg.Cron, task)
	if err != nil {
		return "", fmt.Errorf("failed to schedule question import: %w", err)
	}
	return entryID, nil
}

// Stop waits for in-flight tasks before returning.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	if j.scheduler != nil {
		j.scheduler.Shutdown()
	}
	j.server.Shutdown()
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct {
	logger zerolog.Logger
}

func (l *asynqLogger) Debug(args ...any) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...any)  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...any)  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...any) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...any) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
