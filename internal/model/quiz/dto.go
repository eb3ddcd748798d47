package quiz

import (
	"strings"

	"github.com/google/uuid"

	"github.com/deppfellow/quiz-api/internal/model"
	"github.com/deppfellow/quiz-api/internal/validation"
)

type CreateQuizRequest struct {
	Title       string      `json:"title" validate:"required,min=3,max=255"`
	Description *string     `json:"description" validate:"omitempty,max=500"`
	QuestionIDs []uuid.UUID `json:"question_ids" validate:"omitempty,max=100,unique"`
}

func (r *CreateQuizRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	return validation.Struct(r)
}

// UpdateQuizRequest leaves nil fields untouched. A non-nil QuestionIDs
// replaces the quiz's questions in the given order.
type UpdateQuizRequest struct {
	ID          string       `param:"id" validate:"required,uuid"`
	Title       *string      `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string      `json:"description" validate:"omitempty,max=500"`
	QuestionIDs *[]uuid.UUID `json:"question_ids"`
}

func (r *UpdateQuizRequest) Validate() error {
	if r.Title != nil {
		trimmed := strings.TrimSpace(*r.Title)
		r.Title = &trimmed
	}
	if err := validation.Struct(r); err != nil {
		return err
	}
	if r.QuestionIDs != nil {
		return checkQuestionIDs(*r.QuestionIDs)
	}
	return nil
}

func (r *UpdateQuizRequest) UUID() uuid.UUID {
	return uuid.MustParse(r.ID)
}

func checkQuestionIDs(ids []uuid.UUID) error {
	if len(ids) > 100 {
		return validation.CustomValidationErrors{{Field: "question_ids", Message: "must not contain more than 100 items"}}
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return validation.CustomValidationErrors{{Field: "question_ids", Message: "must not contain duplicates"}}
		}
		seen[id] = true
	}
	return nil
}

type AnswerInput struct {
	QuestionID uuid.UUID  `json:"question_id"`
	ChoiceID   *uuid.UUID `json:"choice_id"`
}

type SubmitAttemptRequest struct {
	ID      string        `param:"id" validate:"required,uuid"`
	Answers []AnswerInput `json:"answers" validate:"required,min=1,dive"`
}

func (r *SubmitAttemptRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	seen := make(map[uuid.UUID]bool, len(r.Answers))
	for _, a := range r.Answers {
		if a.QuestionID == uuid.Nil {
			return validation.CustomValidationErrors{{Field: "answers", Message: "question_id is required"}}
		}
		if seen[a.QuestionID] {
			return validation.CustomValidationErrors{{Field: "answers", Message: "only one answer per question is allowed"}}
		}
		seen[a.QuestionID] = true
	}
	return nil
}

func (r *SubmitAttemptRequest) UUID() uuid.UUID {
	return uuid.MustParse(r.ID)
}

type ListQuizzesRequest struct {
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`
	Title    string `query:"title" validate:"omitempty,max=255"`
	Mine     bool   `query:"mine"`
}

// Validate also fills in the paging defaults.
func (r *ListQuizzesRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	if r.Page == 0 {
		r.Page = model.DefaultPage
	}
	if r.PageSize == 0 {
		r.PageSize = model.DefaultPageSize
	}
	return nil
}

func (r *ListQuizzesRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}
