package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Mailer is the part of the email client the worker needs.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, otp string, ttl time.Duration) error
	SendPasswordResetEmail(ctx context.Context, to, name, otp string, ttl time.Duration) error
	SendWelcomeEmail(ctx context.Context, to, name string) error
	SendCustomEmail(ctx context.Context, to []string, subject, body string) error
}

// Importer pulls questions from an external trivia source and returns how
// many were stored.
type Importer interface {
	ImportQuestions(ctx context.Context, amount int) (int, error)
}

// Handlers processes tasks. Importer may be nil, in which case import
// tasks are not registered.
type Handlers struct {
	mailer   Mailer
	importer Importer
	logger   *zerolog.Logger
}

func NewHandlers(mailer Mailer, importer Importer, logger *zerolog.Logger) *Handlers {
	return &Handlers{mailer: mailer, importer: importer, logger: logger}
}

// Register routes every task type to its handler.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskVerificationEmail, h.handleVerificationEmail)
	mux.HandleFunc(TaskPasswordResetEmail, h.handlePasswordResetEmail)
	mux.HandleFunc(TaskWelcomeEmail, h.handleWelcomeEmail)
	mux.HandleFunc(TaskCustomEmail, h.handleCustomEmail)
	if h.importer != nil {
		mux.HandleFunc(TaskQuestionImport, h.handleQuestionImport)
	}
}

// decode fails with SkipRetry: a payload that does not parse never will.
func decode(t *asynq.Task, v any) error {
	if err := json.Unmarshal(t.Payload(), v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}

func (h *Handlers) handleVerificationEmail(ctx context.Context, t *asynq.Task) error {
	var p OTPEmailPayload
	if err := decode(t, &p); err != nil {
		return err
	}

	return h.logResult(t, p.To, h.mailer.SendVerificationEmail(ctx, p.To, p.Name, p.Token, p.TTL))
}

func (h *Handlers) handlePasswordResetEmail(ctx context.Context, t *asynq.Task) error {
	var p OTPEmailPayload
	if err := decode(t, &p); err != nil {
		return err
	}

	return h.logResult(t, p.To, h.mailer.SendPasswordResetEmail(ctx, p.To, p.Name, p.Token, p.TTL))
}

func (h *Handlers) handleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := decode(t, &p); err != nil {
		return err
	}

	return h.logResult(t, p.To, h.mailer.SendWelcomeEmail(ctx, p.To, p.Name))
}

func (h *Handlers) handleCustomEmail(ctx context.Context, t *asynq.Task) error {
	var p CustomEmailPayload
	if err := decode(t, &p); err != nil {
		return err
	}
	if len(p.To) == 0 {
		return fmt.Errorf("custom email without recipients: %w", asynq.SkipRetry)
	}

	return h.logResult(t, fmt.Sprintf("%d recipients", len(p.To)), h.mailer.SendCustomEmail(ctx, p.To, p.Subject, p.Body))
}

func (h *Handlers) handleQuestionImport(ctx context.Context, t *asynq.Task) error {
	var p QuestionImportPayload
	if err := decode(t, &p); err != nil {
		return err
	}

	imported, err := h.importer.ImportQuestions(ctx, p.Amount)
	if err != nil {
		h.logger.Error().Err(err).Str("type", t.Type()).Msg("question import failed")
		return err
	}

	h.logger.Info().
		Str("type", t.Type()).
		Int("requested", p.Amount).
		Int("imported", imported).
		Msg("question import finished")
	return nil
}

// logResult returning a non-nil error makes asynq schedule a retry.
func (h *Handlers) logResult(t *asynq.Task, to string, err error) error {
	if err != nil {
		h.logger.Error().
			Str("type", t.Type()).
			Str("to", to).
			Err(err).
			Msg("failed to send email")
		return err
	}

	h.logger.Info().
		Str("type", t.Type()).
		Str("to", to).
		Msg("email sent")
	return nil
}
