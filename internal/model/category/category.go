package category

import (
	"time"

	"github.com/deppfellow/quiz-api/internal/model"
)

type Category struct {
	model.Base
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	DeletedAt   *time.Time `json:"-" db:"deleted_at"`
}
