// Package service contains the business logic.
//
// It sits between the handler and repository layers. It receives validated
// data from the handler, enforces ownership and state rules, and calls the
// repositories. Dependencies are held behind small interfaces declared here
// so each service can be exercised with in-memory fakes.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/quiz-api/internal/model/auth"
	"github.com/deppfellow/quiz-api/internal/model/category"
	"github.com/deppfellow/quiz-api/internal/model/question"
	"github.com/deppfellow/quiz-api/internal/model/quiz"
	"github.com/deppfellow/quiz-api/internal/model/user"
	"github.com/deppfellow/quiz-api/internal/repository"
)

type userStore interface {
	Create(ctx context.Context, params repository.CreateUserParams) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, payload *user.UpdateProfileRequest) (*user.User, error)
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
	SetPasswordResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type tokenStore interface {
	Create(ctx context.Context, t *auth.Token) error
	GetByAccessToken(ctx context.Context, accessToken string) (*auth.Token, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (*auth.Token, error)
	Rotate(ctx context.Context, oldRefresh string, next *auth.Token) error
	Revoke(ctx context.Context, accessToken string, at time.Time) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, at time.Time) error
}

type categoryStore interface {
	List(ctx context.Context) ([]category.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*category.Category, error)
	Create(ctx context.Context, payload *category.CreateCategoryRequest) (*category.Category, error)
	Upsert(ctx context.Context, name string) (*category.Category, error)
	Update(ctx context.Context, payload *category.UpdateCategoryRequest) (*category.Category, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type questionStore interface {
	Create(ctx context.Context, params repository.QuestionParams) (*question.PopulatedQuestion, error)
	Update(ctx context.Context, id uuid.UUID, params repository.QuestionParams) (*question.PopulatedQuestion, error)
	GetByID(ctx context.Context, id uuid.UUID) (*question.PopulatedQuestion, error)
	List(ctx context.Context, query *question.ListQuestionsRequest) ([]question.PopulatedQuestion, int, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Review(ctx context.Context, id uuid.UUID, status question.Status, comment *string) (*question.PopulatedQuestion, error)
	Stats(ctx context.Context) ([]question.CategoryStats, error)
	ExistsByText(ctx context.Context, text string) (bool, error)
	ActiveIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]question.PopulatedQuestion, error)
}

type quizStore interface {
	Create(ctx context.Context, userID uuid.UUID, payload *quiz.CreateQuizRequest) (*quiz.Quiz, error)
	GetByID(ctx context.Context, id uuid.UUID) (*quiz.Quiz, error)
	List(ctx context.Context, ownerID *uuid.UUID, query *quiz.ListQuizzesRequest) ([]quiz.Quiz, int, error)
	Update(ctx context.Context, id uuid.UUID, payload *quiz.UpdateQuizRequest) (*quiz.Quiz, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Items(ctx context.Context, quizID uuid.UUID) ([]quiz.Item, error)
}

type attemptStore interface {
	Create(ctx context.Context, quizID, userID uuid.UUID, questionIDs []uuid.UUID) (*quiz.Attempt, error)
	GetByID(ctx context.Context, id uuid.UUID) (*quiz.Attempt, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]quiz.Attempt, error)
	Submit(ctx context.Context, attemptID uuid.UUID, answers []quiz.Answer, correct, score int) (*quiz.Attempt, error)
	Answers(ctx context.Context, attemptID uuid.UUID) ([]quiz.Answer, error)
}

// mailQueue hands emails to the background worker.
type mailQueue interface {
	EnqueueVerificationEmail(ctx context.Context, to, name, token string, ttl time.Duration) error
	EnqueuePasswordResetEmail(ctx context.Context, to, name, token string, ttl time.Duration) error
	EnqueueWelcomeEmail(ctx context.Context, to, name string) error
}

// enqueueLogged runs an enqueue call and only logs its failure; a request
// never fails because Redis is unavailable.
func enqueueLogged(logger *zerolog.Logger, task string, to string, err error) {
	if err != nil {
		logger.Error().Err(err).Str("task", task).Str("to", to).Msg("failed to enqueue task")
	}
}
