package repository

import (
	"strings"
	"testing"

	"github.com/deppfellow/quiz-api/internal/model/question"
)

func TestQuestionFilters(t *testing.T) {
	where, args := questionFilters(&question.ListQuestionsRequest{
		UserName: "ada",
		Category: "100%_real",
		Status:   question.StatusActive,
	})

	for _, want := range []string{"q.deleted_at IS NULL", "u.name ILIKE @user_name", "c.name ILIKE @category", "q.status = @status"} {
		if !strings.Contains(where, want) {
			t.Errorf("expected %q in %q", want, where)
		}
	}
	if strings.Contains(where, "@question") {
		t.Errorf("unexpected question filter in %q", where)
	}
	if args["category"] != `%100\%\_real%` {
		t.Errorf("expected escaped pattern, got %v", args["category"])
	}
}

func TestSortClauses(t *testing.T) {
	if sortColumn("id") != "id" || sortColumn("created_at") != "created_at" || sortColumn("; DROP") != "created_at" {
		t.Fatal("unexpected sort column mapping")
	}
	if sortOrder("asc") != "ASC" || sortOrder("desc") != "DESC" || sortOrder("x") != "DESC" {
		t.Fatal("unexpected sort order mapping")
	}
}
