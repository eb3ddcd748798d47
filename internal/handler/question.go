package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/quiz-api/internal/model"
	"github.com/deppfellow/quiz-api/internal/model/question"
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/service"
)

type questionService interface {
	List(ctx context.Context, query *question.ListQuestionsRequest) (*model.PaginatedResponse[question.PopulatedQuestion], error)
	Get(ctx context.Context, id uuid.UUID) (*question.PopulatedQuestion, error)
	Create(ctx context.Context, actor service.Actor, payload *question.CreateQuestionRequest) (*question.PopulatedQuestion, error)
	Update(ctx context.Context, actor service.Actor, payload *question.UpdateQuestionRequest) (*question.PopulatedQuestion, error)
	Delete(ctx context.Context, actor service.Actor, id uuid.UUID) error
	Review(ctx context.Context, payload *question.ReviewQuestionRequest) (*question.PopulatedQuestion, error)
	Stats(ctx context.Context) (*question.Stats, error)
}

type QuestionHandler struct {
	Handler
	questions questionService
}

func NewQuestionHandler(s *server.Server, questions questionService) *QuestionHandler {
	return &QuestionHandler{
		Handler:   NewHandler(s),
		questions: questions,
	}
}

func (h *QuestionHandler) List(c echo.Context, query *question.ListQuestionsRequest) (*model.PaginatedResponse[question.PopulatedQuestion], error) {
	return h.questions.List(c.Request().Context(), query)
}

func (h *QuestionHandler) Get(c echo.Context, payload *model.IDRequest) (*question.PopulatedQuestion, error) {
	return h.questions.Get(c.Request().Context(), payload.UUID())
}

func (h *QuestionHandler) Create(c echo.Context, payload *question.CreateQuestionRequest) (*question.PopulatedQuestion, error) {
	return h.questions.Create(c.Request().Context(), currentActor(c), payload)
}

func (h *QuestionHandler) Update(c echo.Context, payload *question.UpdateQuestionRequest) (*question.PopulatedQuestion, error) {
	return h.questions.Update(c.Request().Context(), currentActor(c), payload)
}

func (h *QuestionHandler) Delete(c echo.Context, payload *model.IDRequest) error {
	return h.questions.Delete(c.Request().Context(), currentActor(c), payload.UUID())
}

func (h *QuestionHandler) Review(c echo.Context, payload *question.ReviewQuestionRequest) (*question.PopulatedQuestion, error) {
	return h.questions.Review(c.Request().Context(), payload)
}

func (h *QuestionHandler) Stats(c echo.Context, _ *model.EmptyRequest) (*question.Stats, error) {
	return h.questions.Stats(c.Request().Context())
}
