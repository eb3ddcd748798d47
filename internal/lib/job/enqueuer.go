package job

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/deppfellow/quiz-api/internal/config"
)

type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Enqueuer is the producer side used by the API process.
type Enqueuer struct {
	client taskClient
	queue  string
	logger *zerolog.Logger
}

func NewEnqueuer(cfg config.RedisConfig, logger *zerolog.Logger) *Enqueuer {
	return &Enqueuer{
		client: asynq.NewClient(RedisOpt(cfg)),
		queue:  cfg.EmailQueue,
		logger: logger,
	}
}

// RedisOpt builds the asynq connection options.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func (e *Enqueuer) enqueue(ctx context.Context, task *asynq.Task, err error) error {
	if err != nil {
		return err
	}

	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}

	e.logger.Debug().
		Str("type", task.Type()).
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Msg("task enqueued")
	return nil
}

func (e *Enqueuer) EnqueueVerificationEmail(ctx context.Context, to, name, token string, ttl time.Duration) error {
	task, err := NewVerificationEmailTask(e.queue, to, name, token, ttl)
	return e.enqueue(ctx, task, err)
}

func (e *Enqueuer) EnqueuePasswordResetEmail(ctx context.Context, to, name, token string, ttl time.Duration) error {
	task, err := NewPasswordResetEmailTask(e.queue, to, name, token, ttl)
	return e.enqueue(ctx, task, err)
}

func (e *Enqueuer) EnqueueWelcomeEmail(ctx context.Context, to, name string) error {
	task, err := NewWelcomeEmailTask(e.queue, to, name)
	return e.enqueue(ctx, task, err)
}

func (e *Enqueuer) EnqueueCustomEmail(ctx context.Context, to []string, subject, body string) error {
	task, err := NewCustomEmailTask(e.queue, to, subject, body)
	return e.enqueue(ctx, task, err)
}

func (e *Enqueuer) EnqueueQuestionImport(ctx context.Context, amount int) error {
	task, err := NewQuestionImportTask(amount)
	return e.enqueue(ctx, task, err)
}

func (e *Enqueuer) Close() error {
	return e.client.Close()
}
