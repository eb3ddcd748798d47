package handler

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/quiz-api/internal/middleware"
	"github.com/deppfellow/quiz-api/internal/model"
	"github.com/deppfellow/quiz-api/internal/model/admin"
	"github.com/deppfellow/quiz-api/internal/server"
)

type taskQueue interface {
	EnqueueCustomEmail(ctx context.Context, to []string, subject, body string) error
	EnqueueQuestionImport(ctx context.Context, amount int) error
}

// AdminHandler queues background work on behalf of an admin. Unlike the
// mails sent from the auth flows, a failed enqueue fails the request here.
type AdminHandler struct {
	Handler
	tasks taskQueue
}

func NewAdminHandler(s *server.Server, tasks taskQueue) *AdminHandler {
	return &AdminHandler{
		Handler: NewHandler(s),
		tasks:   tasks,
	}
}

func (h *AdminHandler) SendEmail(c echo.Context, payload *admin.SendEmailRequest) (*model.MessageResponse, error) {
	if err := h.tasks.EnqueueCustomEmail(c.Request().Context(), payload.To, payload.Subject, payload.Body); err != nil {
		return nil, err
	}

	middleware.GetLogger(c).Info().
		Int("recipients", len(payload.To)).
		Str("subject", payload.Subject).
		Msg("custom email queued")

	return message(fmt.Sprintf("Email queued for %d recipient(s)", len(payload.To))), nil
}

func (h *AdminHandler) ImportQuestions(c echo.Context, payload *admin.ImportQuestionsRequest) (*model.MessageResponse, error) {
	if err := h.tasks.EnqueueQuestionImport(c.Request().Context(), payload.Amount); err != nil {
		return nil, err
	}
	return message("Question import queued"), nil
}
