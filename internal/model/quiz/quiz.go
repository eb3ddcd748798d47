package quiz

import (
	"time"

	"github.com/google/uuid"

	"github.com/deppfellow/quiz-api/internal/model"
	"github.com/deppfellow/quiz-api/internal/model/question"
)

type Quiz struct {
	model.Base
	UserID         *uuid.UUID `json:"user_id" db:"user_id"`
	Title          string     `json:"title" db:"title"`
	Description    *string    `json:"description" db:"description"`
	TotalQuestions int        `json:"total_questions" db:"total_questions"`
}

// Item is a question placed in a quiz.
type Item struct {
	Position int                        `json:"position"`
	Question question.PopulatedQuestion `json:"question"`
}

type PopulatedQuiz struct {
	Quiz
	Items []Item `json:"items"`
}

type Attempt struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	QuizID         uuid.UUID  `json:"quiz_id" db:"quiz_id"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	Score          *int       `json:"score" db:"score"`
	TotalQuestions int        `json:"total_questions" db:"total_questions"`
	CorrectAnswers *int       `json:"correct_answers" db:"correct_answers"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	SubmittedAt    *time.Time `json:"submitted_at" db:"submitted_at"`
	// QuestionIDs are the questions handed out when the attempt started.
	QuestionIDs []uuid.UUID `json:"-" db:"question_ids"`
}

func (a *Attempt) Submitted() bool {
	return a.SubmittedAt != nil
}

type Answer struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	QuizAttemptID    uuid.UUID  `json:"quiz_attempt_id" db:"quiz_attempt_id"`
	QuestionID       uuid.UUID  `json:"question_id" db:"question_id"`
	SelectedChoiceID *uuid.UUID `json:"selected_choice_id" db:"selected_choice_id"`
	IsCorrect        bool       `json:"is_correct" db:"is_correct"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// PlayChoice is a choice as shown to a player, without its correctness.
type PlayChoice struct {
	ID         uuid.UUID `json:"id"`
	OptionText string    `json:"option_text"`
}

type PlayQuestion struct {
	ID           uuid.UUID           `json:"id"`
	Question     string              `json:"question"`
	QuestionType question.Type       `json:"question_type"`
	Difficulty   question.Difficulty `json:"difficulty"`
	Choices      []PlayChoice        `json:"choices"`
}

// AttemptSheet is returned when an attempt starts.
type AttemptSheet struct {
	Attempt   Attempt        `json:"attempt"`
	Title     string         `json:"title"`
	Questions []PlayQuestion `json:"questions"`
}

type AttemptResult struct {
	Attempt Attempt  `json:"attempt"`
	Answers []Answer `json:"answers"`
}

// Score is the integer percentage of correct answers, capped at 100.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return min(correct, total) * 100 / total
}
