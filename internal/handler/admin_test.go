package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

type fakeTasks struct {
	to      []string
	subject string
	amount  int
	err     error
}

func (f *fakeTasks) EnqueueCustomEmail(_ context.Context, to []string, subject, _ string) error {
	f.to, f.subject = to, subject
	return f.err
}

func (f *fakeTasks) EnqueueQuestionImport(_ context.Context, amount int) error {
	f.amount = amount
	return f.err
}

func TestAdminSendEmail(t *testing.T) {
	s := testServer()
	tasks := &fakeTasks{}
	h := NewAdminHandler(s, tasks)
	e := newEcho(s)
	e.POST("/admin/emails", Handle(h.Handler, h.SendEmail, http.StatusAccepted, nil))
	e.POST("/admin/questions/import", Handle(h.Handler, h.ImportQuestions, http.StatusAccepted, nil))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"queued", `{"to":["a@example.com","b@example.com"],"subject":"  Season two  ","body":"Hello\n\nSee you"}`, http.StatusAccepted},
		{"no recipients", `{"to":[],"subject":"x","body":"y"}`, http.StatusBadRequest},
		{"bad address", `{"to":["nope"],"subject":"x","body":"y"}`, http.StatusBadRequest},
		{"blank body", `{"to":["a@example.com"],"subject":"x","body":"   "}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/admin/emails", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}

	if len(tasks.to) != 2 || tasks.subject != "Season two" {
		t.Fatalf("unexpected task %+v", tasks)
	}

	rec := do(e, http.MethodPost, "/admin/questions/import", `{"amount":20}`)
	if rec.Code != http.StatusAccepted || tasks.amount != 20 {
		t.Fatalf("expected import of 20 to be queued, got %d (%d)", rec.Code, tasks.amount)
	}

	tasks.err = errors.New("redis: connection refused")
	rec = do(e, http.MethodPost, "/admin/questions/import", `{}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected enqueue failures to surface, got %d", rec.Code)
	}
}
