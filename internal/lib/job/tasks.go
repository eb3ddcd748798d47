package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names stored in Redis; the worker mux routes on them.
const (
	TaskVerificationEmail  = "email:verification"
	TaskPasswordResetEmail = "email:password_reset"
	TaskWelcomeEmail       = "email:welcome"
	TaskCustomEmail        = "email:custom"
	TaskQuestionImport     = "question:import"
)

// DefaultQueue receives everything that is not email.
const DefaultQueue = "default"

// OTPEmailPayload carries a one-time code for the verification and
// password reset emails.
type OTPEmailPayload struct {
	To    string        `json:"to"`
	Name  string        `json:"name"`
	Token string        `json:"token"`
	TTL   time.Duration `json:"ttl"`
}

type WelcomeEmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}

type CustomEmailPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

type QuestionImportPayload struct {
	Amount int `json:"amount"`
}

func emailOptions(queue string) []asynq.Option {
	return []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Queue(queue),
		asynq.Timeout(30 * time.Second),
	}
}

func newTask(typ string, payload any, opts ...asynq.Option) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typ, b, opts...), nil
}

func NewVerificationEmailTask(queue, to, name, token string, ttl time.Duration) (*asynq.Task, error) {
	return newTask(TaskVerificationEmail, OTPEmailPayload{To: to, Name: name, Token: token, TTL: ttl}, emailOptions(queue)...)
}

func NewPasswordResetEmailTask(queue, to, name, token string, ttl time.Duration) (*asynq.Task, error) {
	return newTask(TaskPasswordResetEmail, OTPEmailPayload{To: to, Name: name, Token: token, TTL: ttl}, emailOptions(queue)...)
}

func NewWelcomeEmailTask(queue, to, name string) (*asynq.Task, error) {
	return newTask(TaskWelcomeEmail, WelcomeEmailPayload{To: to, Name: name}, emailOptions(queue)...)
}

func NewCustomEmailTask(queue string, to []string, subject, body string) (*asynq.Task, error) {
	return newTask(TaskCustomEmail, CustomEmailPayload{To: to, Subject: subject, Body: body}, emailOptions(queue)...)
}

// NewQuestionImportTask is unique for ten minutes so a slow import and the
// next cron tick never overlap.
func NewQuestionImportTask(amount int) (*asynq.Task, error) {
	return newTask(TaskQuestionImport, QuestionImportPayload{Amount: amount},
		asynq.MaxRetry(1),
		asynq.Queue(DefaultQueue),
		asynq.Timeout(2*time.Minute),
		asynq.Unique(10*time.Minute),
	)
}
