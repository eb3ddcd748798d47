package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/quiz-api/internal/model"
	"github.com/deppfellow/quiz-api/internal/model/quiz"
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/service"
)

type quizService interface {
	Create(ctx context.Context, actor service.Actor, payload *quiz.CreateQuizRequest) (*quiz.PopulatedQuiz, error)
	Get(ctx context.Context, actor service.Actor, id uuid.UUID) (*quiz.PopulatedQuiz, error)
	List(ctx context.Context, actor service.Actor, query *quiz.ListQuizzesRequest) (*model.PaginatedResponse[quiz.Quiz], error)
	Update(ctx context.Context, actor service.Actor, payload *quiz.UpdateQuizRequest) (*quiz.PopulatedQuiz, error)
	Delete(ctx context.Context, actor service.Actor, id uuid.UUID) error
	StartAttempt(ctx context.Context, actor service.Actor, quizID uuid.UUID) (*quiz.AttemptSheet, error)
	SubmitAttempt(ctx context.Context, actor service.Actor, payload *quiz.SubmitAttemptRequest) (*quiz.AttemptResult, error)
	GetAttempt(ctx context.Context, actor service.Actor, id uuid.UUID) (*quiz.AttemptResult, error)
	ListAttempts(ctx context.Context, actor service.Actor) ([]quiz.Attempt, error)
}

// QuizHandler serves quizzes and the attempts played on them.
type QuizHandler struct {
	Handler
	quizzes quizService
}

func NewQuizHandler(s *server.Server, quizzes quizService) *QuizHandler {
	return &QuizHandler{
		Handler: NewHandler(s),
		quizzes: quizzes,
	}
}

func (h *QuizHandler) List(c echo.Context, query *quiz.ListQuizzesRequest) (*model.PaginatedResponse[quiz.Quiz], error) {
	return h.quizzes.List(c.Request().Context(), currentActor(c), query)
}

func (h *QuizHandler) Get(c echo.Context, payload *model.IDRequest) (*quiz.PopulatedQuiz, error) {
	return h.quizzes.Get(c.Request().Context(), currentActor(c), payload.UUID())
}

func (h *QuizHandler) Create(c echo.Context, payload *quiz.CreateQuizRequest) (*quiz.PopulatedQuiz, error) {
	return h.quizzes.Create(c.Request().Context(), currentActor(c), payload)
}

func (h *QuizHandler) Update(c echo.Context, payload *quiz.UpdateQuizRequest) (*quiz.PopulatedQuiz, error) {
	return h.quizzes.Update(c.Request().Context(), currentActor(c), payload)
}

func (h *QuizHandler) Delete(c echo.Context, payload *model.IDRequest) error {
	return h.quizzes.Delete(c.Request().Context(), currentActor(c), payload.UUID())
}

func (h *QuizHandler) StartAttempt(c echo.Context, payload *model.IDRequest) (*quiz.AttemptSheet, error) {
	return h.quizzes.StartAttempt(c.Request().Context(), currentActor(c), payload.UUID())
}

func (h *QuizHandler) SubmitAttempt(c echo.Context, payload *quiz.SubmitAttemptRequest) (*quiz.AttemptResult, error) {
	return h.quizzes.SubmitAttempt(c.Request().Context(), currentActor(c), payload)
}

func (h *QuizHandler) GetAttempt(c echo.Context, payload *model.IDRequest) (*quiz.AttemptResult, error) {
	return h.quizzes.GetAttempt(c.Request().Context(), currentActor(c), payload.UUID())
}

func (h *QuizHandler) ListAttempts(c echo.Context, _ *model.EmptyRequest) ([]quiz.Attempt, error) {
	return h.quizzes.ListAttempts(c.Request().Context(), currentActor(c))
}
