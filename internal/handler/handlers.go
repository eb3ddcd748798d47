package handler

import (
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/service"
)

type Handlers struct {
	Health   *HealthHandler
	OpenAPI  *OpenAPIHandler
	Auth     *AuthHandler
	User     *UserHandler
	Category *CategoryHandler
	Question *QuestionHandler
	Quiz     *QuizHandler
	Admin    *AdminHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
		Auth:     NewAuthHandler(s, services.Auth),
		User:     NewUserHandler(s, services.User),
		Category: NewCategoryHandler(s, services.Category),
		Question: NewQuestionHandler(s, services.Question),
		Quiz:     NewQuizHandler(s, services.Quiz),
		Admin:    NewAdminHandler(s, s.Enqueuer),
	}
}
