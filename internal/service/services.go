package service

import (
	"github.com/deppfellow/quiz-api/internal/repository"
	"github.com/deppfellow/quiz-api/internal/server"
)

type Services struct {
	Auth     *AuthService
	User     *UserService
	Category *CategoryService
	Question *QuestionService
	Quiz     *QuizService
	Import   *ImportService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Auth:     NewAuthService(s, repos),
		User:     NewUserService(repos),
		Category: NewCategoryService(repos),
		Question: NewQuestionService(repos),
		Quiz:     NewQuizService(repos),
		Import:   NewImportService(s, repos),
	}
}
