package repository

import (
	"github.com/deppfellow/quiz-api/internal/server"
)

type Repositories struct {
	User     *UserRepository
	Token    *TokenRepository
	Category *CategoryRepository
	Question *QuestionRepository
	Quiz     *QuizRepository
	Attempt  *AttemptRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		User:     NewUserRepository(s),
		Token:    NewTokenRepository(s),
		Category: NewCategoryRepository(s),
		Question: NewQuestionRepository(s),
		Quiz:     NewQuizRepository(s),
		Attempt:  NewAttemptRepository(s),
	}
}
