package question

import (
	"strings"

	"github.com/google/uuid"

	"github.com/deppfellow/quiz-api/internal/model"
	"github.com/deppfellow/quiz-api/internal/validation"
)

type CreateQuestionRequest struct {
	Question     string        `json:"question" validate:"required"`
	QuestionType Type          `json:"question_type" validate:"required,oneof=multiple_choice boolean"`
	Difficulty   Difficulty    `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	CategoryID   *uuid.UUID    `json:"category_id"`
	Explanation  *string       `json:"explanation" validate:"omitempty,max=2000"`
	References   *string       `json:"references" validate:"omitempty,max=2000"`
	Choices      []ChoiceInput `json:"choices" validate:"required,dive"`
}

func (r *CreateQuestionRequest) Validate() error {
	r.Question = strings.TrimSpace(r.Question)
	if r.Difficulty == "" {
		r.Difficulty = DifficultyEasy
	}

	if err := validation.Struct(r); err != nil {
		return err
	}
	return CheckRules(r.Question, r.QuestionType, r.Choices)
}

// UpdateQuestionRequest replaces a question and synchronises its choices:
// choices with an id are updated, choices without one are inserted and
// stored choices missing from the list are deleted.
type UpdateQuestionRequest struct {
	ID           string        `param:"id" validate:"required,uuid"`
	Question     string        `json:"question" validate:"required"`
	QuestionType Type          `json:"question_type" validate:"required,oneof=multiple_choice boolean"`
	Difficulty   Difficulty    `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	CategoryID   *uuid.UUID    `json:"category_id"`
	Explanation  *string       `json:"explanation" validate:"omitempty,max=2000"`
	References   *string       `json:"references" validate:"omitempty,max=2000"`
	Choices      []ChoiceInput `json:"choices" validate:"required,dive"`
}

func (r *UpdateQuestionRequest) Validate() error {
	r.Question = strings.TrimSpace(r.Question)
	if r.Difficulty == "" {
		r.Difficulty = DifficultyEasy
	}

	if err := validation.Struct(r); err != nil {
		return err
	}
	return CheckRules(r.Question, r.QuestionType, r.Choices)
}

func (r *UpdateQuestionRequest) UUID() uuid.UUID {
	return uuid.MustParse(r.ID)
}

type ReviewQuestionRequest struct {
	ID            string  `param:"id" validate:"required,uuid"`
	Status        Status  `json:"status" validate:"required,oneof=active rejected"`
	ReviewComment *string `json:"review_comment" validate:"omitempty,max=200"`
}

func (r *ReviewQuestionRequest) Validate() error {
	return validation.Struct(r)
}

func (r *ReviewQuestionRequest) UUID() uuid.UUID {
	return uuid.MustParse(r.ID)
}

type ListQuestionsRequest struct {
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`
	Sort     string `query:"sort" validate:"omitempty,oneof=id created_at"`
	Order    string `query:"order" validate:"omitempty,oneof=asc desc"`
	UserName string `query:"user_name" validate:"omitempty,max=200"`
	Category string `query:"category" validate:"omitempty,max=100"`
	Question string `query:"question" validate:"omitempty,max=200"`
	Status   Status `query:"status" validate:"omitempty,oneof=draft active rejected"`
}

// Validate also fills in the paging and sorting defaults.
func (r *ListQuestionsRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	if r.Page == 0 {
		r.Page = model.DefaultPage
	}
	if r.PageSize == 0 {
		r.PageSize = model.DefaultPageSize
	}
	if r.Sort == "" {
		r.Sort = "created_at"
	}
	if r.Order == "" {
		r.Order = "desc"
	}
	return nil
}

func (r *ListQuestionsRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}
