// Package admin holds the payloads of the admin-only operational endpoints.
package admin

import (
	"strings"

	"github.com/deppfellow/quiz-api/internal/validation"
)

// SendEmailRequest is a free-form announcement. Paragraphs in Body are
// separated by blank lines.
type SendEmailRequest struct {
	To      []string `json:"to" validate:"required,min=1,max=50,unique,dive,email"`
	Subject string   `json:"subject" validate:"required,max=200"`
	Body    string   `json:"body" validate:"required,max=10000"`
}

func (r *SendEmailRequest) Validate() error {
	r.Subject = strings.TrimSpace(r.Subject)
	r.Body = strings.TrimSpace(r.Body)
	return validation.Struct(r)
}

// ImportQuestionsRequest queues an Open Trivia DB import. A zero Amount uses
// the configured default.
type ImportQuestionsRequest struct {
	Amount int `json:"amount" validate:"omitempty,min=1,max=50"`
}

func (r *ImportQuestionsRequest) Validate() error {
	return validation.Struct(r)
}
