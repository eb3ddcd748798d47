package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/deppfellow/quiz-api/internal/errs"
	"github.com/deppfellow/quiz-api/internal/model"
	"github.com/deppfellow/quiz-api/internal/model/question"
	"github.com/deppfellow/quiz-api/internal/repository"
)

type QuestionService struct {
	questions  questionStore
	categories categoryStore
}

func NewQuestionService(repos *repository.Repositories) *QuestionService {
	return &QuestionService{questions: repos.Question, categories: repos.Category}
}

func (s *QuestionService) List(ctx context.Context, query *question.ListQuestionsRequest) (*model.PaginatedResponse[question.PopulatedQuestion], error) {
	items, total, err := s.questions.List(ctx, query)
	if err != nil {
		return nil, err
	}
	resp := model.NewPaginatedResponse(items, query.Page, query.PageSize, total)
	return &resp, nil
}

func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*question.PopulatedQuestion, error) {
	return s.questions.GetByID(ctx, id)
}

// Create stores a question owned by the actor. Questions written by admins
// skip review and start active; everybody else's start as drafts.
func (s *QuestionService) Create(ctx context.Context, actor Actor, payload *question.CreateQuestionRequest) (*question.PopulatedQuestion, error) {
	if err := s.checkCategory(ctx, payload.CategoryID); err != nil {
		return nil, err
	}

	exists, err := s.questions.ExistsByText(ctx, payload.Question)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errQuestionExists
	}

	status := question.StatusDraft
	if actor.Admin {
		status = question.StatusActive
	}

	return s.questions.Create(ctx, repository.QuestionParams{
		UserID:       actor.ID,
		CategoryID:   payload.CategoryID,
		Question:     payload.Question,
		QuestionType: payload.QuestionType,
		Status:       status,
		Difficulty:   payload.Difficulty,
		Explanation:  payload.Explanation,
		References:   payload.References,
		Choices:      payload.Choices,
	})
}

var errQuestionExists = errs.NewBadRequestError("A question with this text already exists", true, errs.Code("QUESTION_ALREADY_EXISTS"), nil, nil)

func (s *QuestionService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.categories.GetByID(ctx, *id)
	return err
}

// Update replaces the question. An edit by a non-admin sends the question
// back to draft for another review.
func (s *QuestionService) Update(ctx context.Context, actor Actor, payload *question.UpdateQuestionRequest) (*question.PopulatedQuestion, error) {
	current, err := s.questions.GetByID(ctx, payload.UUID())
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(&current.UserID) {
		return nil, forbidden("question")
	}

	if err := s.checkCategory(ctx, payload.CategoryID); err != nil {
		return nil, err
	}

	if payload.Question != current.Question.Question {
		exists, err := s.questions.ExistsByText(ctx, payload.Question)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errQuestionExists
		}
	}

	status := current.Status
	if !actor.Admin {
		status = question.StatusDraft
	}

	return s.questions.Update(ctx, current.ID, repository.QuestionParams{
		UserID:       current.UserID,
		CategoryID:   payload.CategoryID,
		Question:     payload.Question,
		QuestionType: payload.QuestionType,
		Status:       status,
		Difficulty:   payload.Difficulty,
		Explanation:  payload.Explanation,
		References:   payload.References,
		Choices:      payload.Choices,
	})
}

func (s *QuestionService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	current, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(&current.UserID) {
		return forbidden("question")
	}
	return s.questions.SoftDelete(ctx, id)
}

// Review publishes or rejects a question. Admin only.
func (s *QuestionService) Review(ctx context.Context, payload *question.ReviewQuestionRequest) (*question.PopulatedQuestion, error) {
	return s.questions.Review(ctx, payload.UUID(), payload.Status, payload.ReviewComment)
}

func (s *QuestionService) Stats(ctx context.Context) (*question.Stats, error) {
	rows, err := s.questions.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats := question.NewStats(rows)
	return &stats, nil
}
