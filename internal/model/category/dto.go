package category

import (
	"strings"

	"github.com/google/uuid"

	"github.com/deppfellow/quiz-api/internal/validation"
)

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

func (r *CreateCategoryRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	return validation.Struct(r)
}

type UpdateCategoryRequest struct {
	ID          string  `param:"id" validate:"required,uuid"`
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

func (r *UpdateCategoryRequest) Validate() error {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		r.Name = &trimmed
	}
	return validation.Struct(r)
}

func (r *UpdateCategoryRequest) UUID() uuid.UUID {
	return uuid.MustParse(r.ID)
}
