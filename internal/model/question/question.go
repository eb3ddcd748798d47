package question

import (
	"time"

	"github.com/google/uuid"

	"github.com/deppfellow/quiz-api/internal/model"
)

type Type string

const (
	TypeMultipleChoice Type = "multiple_choice"
	TypeBoolean        Type = "boolean"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusRejected Status = "rejected"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Question struct {
	model.Base
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	CategoryID    *uuid.UUID `json:"category_id" db:"category_id"`
	Question      string     `json:"question" db:"question"`
	QuestionType  Type       `json:"question_type" db:"question_type"`
	Status        Status     `json:"status" db:"status"`
	Difficulty    Difficulty `json:"difficulty" db:"difficulty"`
	IsPublished   bool       `json:"is_published" db:"is_published"`
	ReviewComment *string    `json:"review_comment" db:"review_comment"`
	Explanation   *string    `json:"explanation" db:"explanation"`
	References    *string    `json:"references" db:"references"`
	DeletedAt     *time.Time `json:"-" db:"deleted_at"`
}

type Choice struct {
	model.Base
	QuestionID uuid.UUID `json:"question_id" db:"question_id"`
	OptionText string    `json:"option_text" db:"option_text"`
	IsCorrect  bool      `json:"is_correct" db:"is_correct"`
}

// PopulatedQuestion is a question with its author, category and choices.
type PopulatedQuestion struct {
	Question
	UserName     string   `json:"user_name" db:"user_name"`
	CategoryName *string  `json:"category_name" db:"category_name"`
	Choices      []Choice `json:"choices" db:"-"`
}

type CategoryStats struct {
	CategoryID   *uuid.UUID `json:"category_id" db:"category_id"`
	CategoryName string     `json:"category_name" db:"category_name"`
	Draft        int        `json:"draft" db:"draft"`
	Active       int        `json:"active" db:"active"`
	Rejected     int        `json:"rejected" db:"rejected"`
	Total        int        `json:"total" db:"total"`
}

type Stats struct {
	Categories []CategoryStats `json:"categories"`
	Draft      int             `json:"draft"`
	Active     int             `json:"active"`
	Rejected   int             `json:"rejected"`
	Total      int             `json:"total"`
}

// NewStats sums the per-category rows.
func NewStats(rows []CategoryStats) Stats {
	stats := Stats{Categories: rows}
	if stats.Categories == nil {
		stats.Categories = []CategoryStats{}
	}
	for _, r := range rows {
		stats.Draft += r.Draft
		stats.Active += r.Active
		stats.Rejected += r.Rejected
		stats.Total += r.Total
	}
	return stats
}
