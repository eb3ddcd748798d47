package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/quiz-api/internal/errs"
	"github.com/deppfellow/quiz-api/internal/model/question"
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/sqlerr"
)

const populatedQuestionSelect = `
	SELECT q.*, u.name AS user_name, c.name AS category_name
	FROM questions q
	JOIN users u ON u.id = q.user_id
	LEFT JOIN categories c ON c.id = q.category_id
`

type QuestionRepository struct {
	server *server.Server
}

func NewQuestionRepository(s *server.Server) *QuestionRepository {
	return &QuestionRepository{server: s}
}

// QuestionParams are the writable columns of a question and its choices.
type QuestionParams struct {
	UserID       uuid.UUID
	CategoryID   *uuid.UUID
	Question     string
	QuestionType question.Type
	Status       question.Status
	Difficulty   question.Difficulty
	Explanation  *string
	References   *string
	Choices      []question.ChoiceInput
}

func (r *QuestionRepository) Create(ctx context.Context, params QuestionParams) (*question.PopulatedQuestion, error) {
	var id uuid.UUID

	err := pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		stmt := `
			INSERT INTO questions (
				user_id, category_id, question, question_type, status,
				difficulty, is_published, explanation, "references"
			)
			VALUES (
				@user_id, @category_id, @question, @question_type, @status,
				@difficulty, @status = 'active', @explanation, @references
			)
			RETURNING id
		`

		err := tx.QueryRow(ctx, stmt, pgx.NamedArgs{
			"user_id":       params.UserID,
			"category_id":   params.CategoryID,
			"question":      params.Question,
			"question_type": params.QuestionType,
			"status":        params.Status,
			"difficulty":    params.Difficulty,
			"explanation":   params.Explanation,
			"references":    params.References,
		}).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert into table:questions: %w", err)
		}

		return insertChoices(ctx, tx, id, params.Choices)
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Update rewrites the question and synchronises its choices in one
// transaction. Choice ids that do not belong to the question are rejected.
func (r *QuestionRepository) Update(ctx context.Context, id uuid.UUID, params QuestionParams) (*question.PopulatedQuestion, error) {
	err := pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		stmt := `
			UPDATE questions
			SET
				category_id = @category_id,
				question = @question,
				question_type = @question_type,
				status = @status,
				is_published = @status = 'active',
				difficulty = @difficulty,
				explanation = @explanation,
				"references" = @references,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = @id AND deleted_at IS NULL
		`

		tag, err := tx.Exec(ctx, stmt, pgx.NamedArgs{
			"id":            id,
			"category_id":   params.CategoryID,
			"question":      params.Question,
			"question_type": params.QuestionType,
			"status":        params.Status,
			"difficulty":    params.Difficulty,
			"explanation":   params.Explanation,
			"references":    params.References,
		})
		if err != nil {
			return fmt.Errorf("failed to update table:questions for id=%s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return sqlerr.NotFound("questions")
		}

		return syncChoices(ctx, tx, id, params.Choices)
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func insertChoices(ctx context.Context, q querier, questionID uuid.UUID, choices []question.ChoiceInput) error {
	stmt := `
		INSERT INTO choices (question_id, option_text, is_correct)
		VALUES (@question_id, @option_text, @is_correct)
	`

	for _, c := range choices {
		_, err := q.Exec(ctx, stmt, pgx.NamedArgs{
			"question_id": questionID,
			"option_text": strings.TrimSpace(c.OptionText),
			"is_correct":  c.IsCorrect,
		})
		if err != nil {
			return fmt.Errorf("failed to insert into table:choices for question_id=%s: %w", questionID, err)
		}
	}
	return nil
}

func syncChoices(ctx context.Context, q querier, questionID uuid.UUID, choices []question.ChoiceInput) error {
	keep := make([]uuid.UUID, 0, len(choices))
	var fresh []question.ChoiceInput

	for _, c := range choices {
		if c.ID == nil {
			fresh = append(fresh, c)
			continue
		}
		keep = append(keep, *c.ID)
	}

	if len(keep) > 0 {
		var owned int
		err := q.QueryRow(ctx,
			`SELECT count(*) FROM choices WHERE question_id = @question_id AND id = ANY(@ids)`,
			pgx.NamedArgs{"question_id": questionID, "ids": keep},
		).Scan(&owned)
		if err != nil {
			return fmt.Errorf("failed to check choices for question_id=%s: %w", questionID, err)
		}
		if owned != len(keep) {
			return errs.NewBadRequestError("One or more choices do not belong to this question", true, errs.Code("CHOICE_NOT_FOUND"), nil, nil)
		}
	}

	_, err := q.Exec(ctx,
		`DELETE FROM choices WHERE question_id = @question_id AND NOT (id = ANY(@ids))`,
		pgx.NamedArgs{"question_id": questionID, "ids": keep},
	)
	if err != nil {
		return fmt.Errorf("failed to delete from table:choices for question_id=%s: %w", questionID, err)
	}

	for _, c := range choices {
		if c.ID == nil {
			continue
		}
		_, err := q.Exec(ctx, `
			UPDATE choices
			SET option_text = @option_text, is_correct = @is_correct, updated_at = CURRENT_TIMESTAMP
			WHERE id = @id AND question_id = @question_id
		`, pgx.NamedArgs{
			"id":          *c.ID,
			"question_id": questionID,
			"option_text": strings.TrimSpace(c.OptionText),
			"is_correct":  c.IsCorrect,
		})
		if err != nil {
			return fmt.Errorf("failed to update table:choices for id=%s: %w", *c.ID, err)
		}
	}

	return insertChoices(ctx, q, questionID, fresh)
}

func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*question.PopulatedQuestion, error) {
	stmt := populatedQuestionSelect + ` WHERE q.id = @id AND q.deleted_at IS NULL`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get question query for id=%s: %w", id, err)
	}

	q, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[question.PopulatedQuestion])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound("questions")
		}
		return nil, fmt.Errorf("failed to collect row from table:questions for id=%s: %w", id, err)
	}

	choices, err := r.ChoicesFor(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	q.Choices = nonNil(choices[id])

	return q, nil
}

// GetMany loads questions with their choices by id. Soft-deleted questions
// are included, since open attempts may still reference them.
func (r *QuestionRepository) GetMany(ctx context.Context, ids []uuid.UUID) ([]question.PopulatedQuestion, error) {
	if len(ids) == 0 {
		return []question.PopulatedQuestion{}, nil
	}

	rows, err := r.server.DB.Pool.Query(ctx, populatedQuestionSelect+` WHERE q.id = ANY(@ids)`, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get questions query: %w", err)
	}

	questions, err := pgx.CollectRows(rows, pgx.RowToStructByName[question.PopulatedQuestion])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:questions: %w", err)
	}

	choices, err := r.ChoicesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].Choices = nonNil(choices[questions[i].ID])
	}

	return questions, nil
}

// ChoicesFor loads the choices of several questions, keyed by question id.
func (r *QuestionRepository) ChoicesFor(ctx context.Context, questionIDs []uuid.UUID) (map[uuid.UUID][]question.Choice, error) {
	out := make(map[uuid.UUID][]question.Choice, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}

	stmt := `
		SELECT * FROM choices
		WHERE question_id = ANY(@ids)
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"ids": questionIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to execute choices query: %w", err)
	}

	choices, err := pgx.CollectRows(rows, pgx.RowToStructByName[question.Choice])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:choices: %w", err)
	}

	for _, c := range choices {
		out[c.QuestionID] = append(out[c.QuestionID], c)
	}
	return out, nil
}

// List returns one page of questions matching the filters, and the total
// number of matches.
func (r *QuestionRepository) List(ctx context.Context, query *question.ListQuestionsRequest) ([]question.PopulatedQuestion, int, error) {
	where, args := questionFilters(query)

	var total int
	countStmt := `
		SELECT count(*)
		FROM questions q
		JOIN users u ON u.id = q.user_id
		LEFT JOIN categories c ON c.id = q.category_id
	` + where
	if err := r.server.DB.Pool.QueryRow(ctx, countStmt, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count table:questions: %w", err)
	}

	args["limit"] = query.PageSize
	args["offset"] = query.Offset()

	stmt := populatedQuestionSelect + where +
		fmt.Sprintf(" ORDER BY q.%s %s, q.id %s LIMIT @limit OFFSET @offset",
			sortColumn(query.Sort), sortOrder(query.Order), sortOrder(query.Order))

	rows, err := r.server.DB.Pool.Query(ctx, stmt, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute list questions query: %w", err)
	}

	questions, err := pgx.CollectRows(rows, pgx.RowToStructByName[question.PopulatedQuestion])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to collect rows from table:questions: %w", err)
	}

	ids := make([]uuid.UUID, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
	}

	choices, err := r.ChoicesFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range questions {
		questions[i].Choices = nonNil(choices[questions[i].ID])
	}

	return questions, total, nil
}

func questionFilters(query *question.ListQuestionsRequest) (string, pgx.NamedArgs) {
	conditions := []string{"q.deleted_at IS NULL"}
	args := pgx.NamedArgs{}

	if query.UserName != "" {
		conditions = append(conditions, "u.name ILIKE @user_name")
		args["user_name"] = "%" + escapeLike(query.UserName) + "%"
	}
	if query.Category != "" {
		conditions = append(conditions, "c.name ILIKE @category")
		args["category"] = "%" + escapeLike(query.Category) + "%"
	}
	if query.Question != "" {
		conditions = append(conditions, "q.question ILIKE @question")
		args["question"] = "%" + escapeLike(query.Question) + "%"
	}
	if query.Status != "" {
		conditions = append(conditions, "q.status = @status")
		args["status"] = query.Status
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// Sort keys are validated upstream; the switches keep anything else out of
// the SQL text.
func sortColumn(sort string) string {
	if sort == "id" {
		return "id"
	}
	return "created_at"
}

func sortOrder(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *QuestionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	stmt := `
		UPDATE questions
		SET deleted_at = CURRENT_TIMESTAMP, is_published = FALSE, updated_at = CURRENT_TIMESTAMP
		WHERE id = @id AND deleted_at IS NULL
	`

	tag, err := r.server.DB.Pool.Exec(ctx, stmt, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete from table:questions for id=%s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.NotFound("questions")
	}
	return nil
}

// Review sets the moderation status. Only active questions are published.
func (r *QuestionRepository) Review(ctx context.Context, id uuid.UUID, status question.Status, comment *string) (*question.PopulatedQuestion, error) {
	stmt := `
		UPDATE questions
		SET
			status = @status,
			is_published = @status = 'active',
			review_comment = @review_comment,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = @id AND deleted_at IS NULL
	`

	tag, err := r.server.DB.Pool.Exec(ctx, stmt, pgx.NamedArgs{
		"id":             id,
		"status":         status,
		"review_comment": comment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to review table:questions for id=%s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, sqlerr.NotFound("questions")
	}

	return r.GetByID(ctx, id)
}

func (r *QuestionRepository) Stats(ctx context.Context) ([]question.CategoryStats, error) {
	stmt := `
		SELECT
			c.id AS category_id,
			COALESCE(c.name, 'Uncategorized') AS category_name,
			count(*) FILTER (WHERE q.status = 'draft') AS draft,
			count(*) FILTER (WHERE q.status = 'active') AS active,
			count(*) FILTER (WHERE q.status = 'rejected') AS rejected,
			count(*) AS total
		FROM questions q
		LEFT JOIN categories c ON c.id = q.category_id
		WHERE q.deleted_at IS NULL
		GROUP BY c.id, c.name
		ORDER BY category_name ASC
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to execute question stats query: %w", err)
	}

	stats, err := pgx.CollectRows(rows, pgx.RowToStructByName[question.CategoryStats])
	if err != nil {
		return nil, fmt.Errorf("failed to collect question stats: %w", err)
	}
	return stats, nil
}

// ExistsByText reports whether a live question with this exact text exists.
func (r *QuestionRepository) ExistsByText(ctx context.Context, text string) (bool, error) {
	var exists bool
	err := r.server.DB.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM questions WHERE question = @question AND deleted_at IS NULL)`,
		pgx.NamedArgs{"question": text},
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check table:questions: %w", err)
	}
	return exists, nil
}

// ActiveIDs returns the subset of ids that are live, active questions.
func (r *QuestionRepository) ActiveIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.server.DB.Pool.Query(ctx, `
		SELECT id FROM questions
		WHERE id = ANY(@ids) AND status = 'active' AND deleted_at IS NULL
	`, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("failed to execute active questions query: %w", err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:questions: %w", err)
	}
	return found, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
