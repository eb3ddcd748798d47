package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/quiz-api/internal/errs"
	"github.com/deppfellow/quiz-api/internal/model/quiz"
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/sqlerr"
)

type AttemptRepository struct {
	server *server.Server
}

func NewAttemptRepository(s *server.Server) *AttemptRepository {
	return &AttemptRepository{server: s}
}

// Create opens an attempt over questionIDs. They are stored with the
// attempt and graded on submit, whatever happens to the quiz meanwhile.
func (r *AttemptRepository) Create(ctx context.Context, quizID, userID uuid.UUID, questionIDs []uuid.UUID) (*quiz.Attempt, error) {
	stmt := `
		INSERT INTO quiz_attempts (quiz_id, user_id, total_questions, question_ids)
		VALUES (@quiz_id, @user_id, @total_questions, @question_ids)
		RETURNING *
	`

	return r.getOne(ctx, stmt, pgx.NamedArgs{
		"quiz_id":         quizID,
		"user_id":         userID,
		"total_questions": len(questionIDs),
		"question_ids":    questionIDs,
	})
}

func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*quiz.Attempt, error) {
	return r.getOne(ctx, `SELECT * FROM quiz_attempts WHERE id = @id`, pgx.NamedArgs{"id": id})
}

func (r *AttemptRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]quiz.Attempt, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT * FROM quiz_attempts WHERE user_id = @user_id ORDER BY started_at DESC`,
		pgx.NamedArgs{"user_id": userID},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute list attempts query for user_id=%s: %w", userID, err)
	}

	attempts, err := pgx.CollectRows(rows, pgx.RowToStructByName[quiz.Attempt])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:quiz_attempts: %w", err)
	}
	return attempts, nil
}

// Submit records the graded answers and closes the attempt. The update only
// matches an open attempt, so concurrent submissions cannot both succeed.
func (r *AttemptRepository) Submit(ctx context.Context, attemptID uuid.UUID, answers []quiz.Answer, correct, score int) (*quiz.Attempt, error) {
	var submitted *quiz.Attempt

	err := pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		stmt := `
			UPDATE quiz_attempts
			SET correct_answers = @correct, score = @score, submitted_at = CURRENT_TIMESTAMP
			WHERE id = @id AND submitted_at IS NULL
			RETURNING *
		`

		rows, err := tx.Query(ctx, stmt, pgx.NamedArgs{"id": attemptID, "correct": correct, "score": score})
		if err != nil {
			return fmt.Errorf("failed to execute submit attempt query for id=%s: %w", attemptID, err)
		}

		submitted, err = pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[quiz.Attempt])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.NewBadRequestError("This attempt has already been submitted", true, errs.Code("ATTEMPT_ALREADY_SUBMITTED"), nil, nil)
			}
			return fmt.Errorf("failed to collect row from table:quiz_attempts for id=%s: %w", attemptID, err)
		}

		batch := &pgx.Batch{}
		for _, a := range answers {
			batch.Queue(`
				INSERT INTO attempt_answers (quiz_attempt_id, question_id, selected_choice_id, is_correct)
				VALUES (@attempt_id, @question_id, @choice_id, @is_correct)
			`, pgx.NamedArgs{
				"attempt_id":  attemptID,
				"question_id": a.QuestionID,
				"choice_id":   a.SelectedChoiceID,
				"is_correct":  a.IsCorrect,
			})
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert into table:attempt_answers for attempt_id=%s: %w", attemptID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return submitted, nil
}

func (r *AttemptRepository) Answers(ctx context.Context, attemptID uuid.UUID) ([]quiz.Answer, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT * FROM attempt_answers WHERE quiz_attempt_id = @attempt_id ORDER BY created_at ASC, id ASC`,
		pgx.NamedArgs{"attempt_id": attemptID},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute answers query for attempt_id=%s: %w", attemptID, err)
	}

	answers, err := pgx.CollectRows(rows, pgx.RowToStructByName[quiz.Answer])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:attempt_answers: %w", err)
	}
	return answers, nil
}

func (r *AttemptRepository) getOne(ctx context.Context, stmt string, args pgx.NamedArgs) (*quiz.Attempt, error) {
	rows, err := r.server.DB.Pool.Query(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute attempt query: %w", err)
	}

	a, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[quiz.Attempt])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound("quiz_attempts")
		}
		return nil, fmt.Errorf("failed to collect row from table:quiz_attempts: %w", err)
	}
	return a, nil
}
