package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/quiz-api/internal/model/question"
	"github.com/deppfellow/quiz-api/internal/model/quiz"
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/sqlerr"
)

type QuizRepository struct {
	server *server.Server
}

func NewQuizRepository(s *server.Server) *QuizRepository {
	return &QuizRepository{server: s}
}

// Create stores the quiz and its questions in the given order.
func (r *QuizRepository) Create(ctx context.Context, userID uuid.UUID, payload *quiz.CreateQuizRequest) (*quiz.Quiz, error) {
	var created *quiz.Quiz

	err := pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		stmt := `
			INSERT INTO quizzes (user_id, title, description, total_questions)
			VALUES (@user_id, @title, @description, @total_questions)
			RETURNING *
		`

		rows, err := tx.Query(ctx, stmt, pgx.NamedArgs{
			"user_id":         userID,
			"title":           payload.Title,
			"description":     payload.Description,
			"total_questions": len(payload.QuestionIDs),
		})
		if err != nil {
			return fmt.Errorf("failed to execute create quiz query: %w", err)
		}

		created, err = pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[quiz.Quiz])
		if err != nil {
			return fmt.Errorf("failed to collect row from table:quizzes: %w", err)
		}

		return insertQuizQuestions(ctx, tx, created.ID, payload.QuestionIDs)
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func insertQuizQuestions(ctx context.Context, tx pgx.Tx, quizID uuid.UUID, questionIDs []uuid.UUID) error {
	if len(questionIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, id := range questionIDs {
		batch.Queue(`
			INSERT INTO quiz_questions (quiz_id, question_id, position)
			VALUES (@quiz_id, @question_id, @position)
		`, pgx.NamedArgs{"quiz_id": quizID, "question_id": id, "position": i + 1})
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert into table:quiz_questions for quiz_id=%s: %w", quizID, err)
	}
	return nil
}

func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*quiz.Quiz, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `SELECT * FROM quizzes WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get quiz query for id=%s: %w", id, err)
	}

	q, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[quiz.Quiz])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound("quizzes")
		}
		return nil, fmt.Errorf("failed to collect row from table:quizzes for id=%s: %w", id, err)
	}
	return q, nil
}

// List pages through quizzes, optionally only those owned by ownerID.
func (r *QuizRepository) List(ctx context.Context, ownerID *uuid.UUID, query *quiz.ListQuizzesRequest) ([]quiz.Quiz, int, error) {
	where := ` WHERE (@owner_id::uuid IS NULL OR user_id = @owner_id)
		AND (@title = '' OR title ILIKE '%' || @title || '%')`
	args := pgx.NamedArgs{"owner_id": ownerID, "title": escapeLike(query.Title)}

	var total int
	if err := r.server.DB.Pool.QueryRow(ctx, `SELECT count(*) FROM quizzes`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count table:quizzes: %w", err)
	}

	args["limit"] = query.PageSize
	args["offset"] = query.Offset()

	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT * FROM quizzes`+where+` ORDER BY created_at DESC, id DESC LIMIT @limit OFFSET @offset`,
		args,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute list quizzes query: %w", err)
	}

	quizzes, err := pgx.CollectRows(rows, pgx.RowToStructByName[quiz.Quiz])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to collect rows from table:quizzes: %w", err)
	}
	return quizzes, total, nil
}

// Update changes title and description when given. A non-nil questionIDs
// replaces the question list and total_questions.
func (r *QuizRepository) Update(ctx context.Context, id uuid.UUID, payload *quiz.UpdateQuizRequest) (*quiz.Quiz, error) {
	var updated *quiz.Quiz

	err := pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		var total *int
		if payload.QuestionIDs != nil {
			n := len(*payload.QuestionIDs)
			total = &n

			if _, err := tx.Exec(ctx, `DELETE FROM quiz_questions WHERE quiz_id = @id`, pgx.NamedArgs{"id": id}); err != nil {
				return fmt.Errorf("failed to clear table:quiz_questions for quiz_id=%s: %w", id, err)
			}
			if err := insertQuizQuestions(ctx, tx, id, *payload.QuestionIDs); err != nil {
				return err
			}
		}

		stmt := `
			UPDATE quizzes
			SET
				title = COALESCE(@title, title),
				description = COALESCE(@description, description),
				total_questions = COALESCE(@total_questions, total_questions),
				updated_at = CURRENT_TIMESTAMP
			WHERE id = @id
			RETURNING *
		`

		rows, err := tx.Query(ctx, stmt, pgx.NamedArgs{
			"id":              id,
			"title":           payload.Title,
			"description":     payload.Description,
			"total_questions": total,
		})
		if err != nil {
			return fmt.Errorf("failed to execute update quiz query for id=%s: %w", id, err)
		}

		updated, err = pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[quiz.Quiz])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return sqlerr.NotFound("quizzes")
			}
			return fmt.Errorf("failed to collect row from table:quizzes for id=%s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.server.DB.Pool.Exec(ctx, `DELETE FROM quizzes WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete from table:quizzes for id=%s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.NotFound("quizzes")
	}
	return nil
}

type quizItemRow struct {
	Position int `db:"position"`
	question.PopulatedQuestion
}

// Items returns the live questions of a quiz, in position order, with their
// choices.
func (r *QuizRepository) Items(ctx context.Context, quizID uuid.UUID) ([]quiz.Item, error) {
	stmt := `
		SELECT qq.position, q.*, u.name AS user_name, c.name AS category_name
		FROM quiz_questions qq
		JOIN questions q ON q.id = qq.question_id
		JOIN users u ON u.id = q.user_id
		LEFT JOIN categories c ON c.id = q.category_id
		WHERE qq.quiz_id = @quiz_id AND q.deleted_at IS NULL
		ORDER BY qq.position ASC
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"quiz_id": quizID})
	if err != nil {
		return nil, fmt.Errorf("failed to execute quiz items query for quiz_id=%s: %w", quizID, err)
	}

	itemRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[quizItemRow])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:quiz_questions: %w", err)
	}

	ids := make([]uuid.UUID, len(itemRows))
	for i := range itemRows {
		ids[i] = itemRows[i].ID
	}

	choices, err := NewQuestionRepository(r.server).ChoicesFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]quiz.Item, len(itemRows))
	for i, row := range itemRows {
		row.Choices = nonNil(choices[row.ID])
		items[i] = quiz.Item{Position: row.Position, Question: row.PopulatedQuestion}
	}
	return items, nil
}
