package question

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/deppfellow/quiz-api/internal/validation"
)

const (
	MinQuestionLength = 5
	MaxQuestionLength = 200
	MinChoices        = 2
)

type ChoiceInput struct {
	ID         *uuid.UUID `json:"id"`
	OptionText string     `json:"option_text" validate:"required,max=150"`
	IsCorrect  bool       `json:"is_correct"`
}

// CheckRules validates the question text and its choices together. It
// returns nil when everything holds.
func CheckRules(text string, typ Type, choices []ChoiceInput) error {
	var problems validation.CustomValidationErrors

	length := utf8.RuneCountInString(strings.TrimSpace(text))
	if length < MinQuestionLength || length > MaxQuestionLength {
		problems = append(problems, validation.CustomValidationError{
			Field:   "question",
			Message: "must be between 5 and 200 characters",
		})
	}

	correct := 0
	seenText := make(map[string]bool, len(choices))
	seenID := make(map[uuid.UUID]bool, len(choices))
	for _, c := range choices {
		if c.IsCorrect {
			correct++
		}

		key := strings.ToLower(strings.TrimSpace(c.OptionText))
		if seenText[key] {
			problems = append(problems, validation.CustomValidationError{
				Field:   "choices",
				Message: "option texts must be unique",
			})
		}
		seenText[key] = true

		if c.ID != nil {
			if seenID[*c.ID] {
				problems = append(problems, validation.CustomValidationError{
					Field:   "choices",
					Message: "choice ids must be unique",
				})
			}
			seenID[*c.ID] = true
		}
	}

	if len(choices) < MinChoices {
		problems = append(problems, validation.CustomValidationError{
			Field:   "choices",
			Message: "at least 2 choices are required",
		})
	}
	if correct == 0 {
		problems = append(problems, validation.CustomValidationError{
			Field:   "choices",
			Message: "at least one choice must be correct",
		})
	}

	if typ == TypeBoolean {
		if len(choices) != 2 {
			problems = append(problems, validation.CustomValidationError{
				Field:   "choices",
				Message: "boolean questions must have exactly 2 choices",
			})
		}
		if correct != 1 {
			problems = append(problems, validation.CustomValidationError{
				Field:   "choices",
				Message: "boolean questions must have exactly one correct choice",
			})
		}
	}

	if len(problems) > 0 {
		return problems
	}
	return nil
}
