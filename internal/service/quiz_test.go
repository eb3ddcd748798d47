package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/deppfellow/quiz-api/internal/model"
	"github.com/deppfellow/quiz-api/internal/model/question"
	"github.com/deppfellow/quiz-api/internal/model/quiz"
	"github.com/deppfellow/quiz-api/internal/sqlerr"
)

func testQuestion(text string, correctFirst bool) question.PopulatedQuestion {
	qID := uuid.New()
	return question.PopulatedQuestion{
		Question: question.Question{
			Base:         model.Base{ID: qID},
			Question:     text,
			QuestionType: question.TypeBoolean,
			Status:       question.StatusActive,
			Difficulty:   question.DifficultyEasy,
		},
		Choices: []question.Choice{
			{Base: model.Base{ID: uuid.New()}, QuestionID: qID, OptionText: "True", IsCorrect: correctFirst},
			{Base: model.Base{ID: uuid.New()}, QuestionID: qID, OptionText: "False", IsCorrect: !correctFirst},
		},
	}
}

func reverse(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func TestGrade(t *testing.T) {
	q1 := testQuestion("Is the sky blue?", true)
	q2 := testQuestion("Is fire cold?", false)
	questions := []question.PopulatedQuestion{q1, q2}

	right1, wrong2 := q1.Choices[0].ID, q2.Choices[0].ID
	foreign := uuid.New()

	tests := []struct {
		name    string
		answers []quiz.AnswerInput
		correct int
		code    string
	}{
		{"all correct", []quiz.AnswerInput{{QuestionID: q1.ID, ChoiceID: &right1}, {QuestionID: q2.ID, ChoiceID: &q2.Choices[1].ID}}, 2, ""},
		{"one wrong", []quiz.AnswerInput{{QuestionID: q1.ID, ChoiceID: &right1}, {QuestionID: q2.ID, ChoiceID: &wrong2}}, 1, ""},
		{"skipped answer", []quiz.AnswerInput{{QuestionID: q1.ID}}, 0, ""},
		{"question outside attempt", []quiz.AnswerInput{{QuestionID: uuid.New(), ChoiceID: &right1}}, 0, "QUESTION_NOT_IN_ATTEMPT"},
		{"choice of another question counts as wrong", []quiz.AnswerInput{{QuestionID: q2.ID, ChoiceID: &right1}}, 0, ""},
		{"unknown choice counts as wrong", []quiz.AnswerInput{{QuestionID: q1.ID, ChoiceID: &foreign}}, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers, correct, err := grade(questions, tt.answers)
			if tt.code != "" {
				if httpErr := requireStatus(t, err, 400); httpErr.Code != tt.code {
					t.Fatalf("expected code %s, got %s", tt.code, httpErr.Code)
				}
				return
			}
			if err != nil {
				t.Fatalf("grade: %v", err)
			}
			if correct != tt.correct {
				t.Fatalf("expected %d correct, got %d", tt.correct, correct)
			}
			if len(answers) != len(tt.answers) {
				t.Fatalf("expected %d answers, got %d", len(tt.answers), len(answers))
			}
			for _, a := range answers {
				if a.SelectedChoiceID != nil && *a.SelectedChoiceID == foreign {
					t.Fatal("an unknown choice must not be stored as the selection")
				}
			}
		})
	}
}

func TestStartAttempt(t *testing.T) {
	owner, player := uuid.New(), uuid.New()
	quizID := uuid.New()
	q1, q2 := testQuestion("Is the sky blue?", true), testQuestion("Is fire cold?", false)

	var created struct {
		quizID, userID uuid.UUID
		questionIDs    []uuid.UUID
	}
	svc := &QuizService{
		quizzes: &fakeQuizzes{
			getByIDFn: func(_ context.Context, id uuid.UUID) (*quiz.Quiz, error) {
				return &quiz.Quiz{Base: model.Base{ID: id}, UserID: &owner, Title: "Basics", TotalQuestions: 2}, nil
			},
			itemsFn: func(context.Context, uuid.UUID) ([]quiz.Item, error) {
				return []quiz.Item{{Position: 1, Question: q1}, {Position: 2, Question: q2}}, nil
			},
		},
		attempts: &fakeAttempts{
			createFn: func(_ context.Context, qID, uID uuid.UUID, questionIDs []uuid.UUID) (*quiz.Attempt, error) {
				created.quizID, created.userID, created.questionIDs = qID, uID, questionIDs
				return &quiz.Attempt{ID: uuid.New(), QuizID: qID, UserID: uID, TotalQuestions: len(questionIDs), QuestionIDs: questionIDs, StartedAt: time.Now()}, nil
			},
		},
		shuffle: reverse,
	}

	sheet, err := svc.StartAttempt(context.Background(), Actor{ID: player}, quizID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	if created.quizID != quizID || created.userID != player {
		t.Fatalf("unexpected attempt %+v", created)
	}
	if len(created.questionIDs) != 2 || created.questionIDs[0] != q1.ID || created.questionIDs[1] != q2.ID {
		t.Fatalf("expected the quiz's questions to be stored with the attempt, got %v", created.questionIDs)
	}
	if sheet.Title != "Basics" || len(sheet.Questions) != 2 {
		t.Fatalf("unexpected sheet %+v", sheet)
	}
	if sheet.Questions[0].ID != q2.ID {
		t.Fatal("expected questions to go through the shuffle")
	}
	if sheet.Questions[0].Choices[0].ID != q2.Choices[1].ID {
		t.Fatal("expected choices to go through the shuffle")
	}
}

func TestStartAttemptEmptyQuiz(t *testing.T) {
	svc := &QuizService{
		quizzes: &fakeQuizzes{
			getByIDFn: func(_ context.Context, id uuid.UUID) (*quiz.Quiz, error) {
				return &quiz.Quiz{Base: model.Base{ID: id}}, nil
			},
			itemsFn: func(context.Context, uuid.UUID) ([]quiz.Item, error) { return nil, nil },
		},
		shuffle: reverse,
	}

	_, err := svc.StartAttempt(context.Background(), Actor{ID: uuid.New()}, uuid.New())
	if httpErr := requireStatus(t, err, 400); httpErr.Code != "QUIZ_EMPTY" {
		t.Fatalf("unexpected code %s", httpErr.Code)
	}
}

func TestSubmitAttempt(t *testing.T) {
	player := uuid.New()
	q1, q2 := testQuestion("Is the sky blue?", true), testQuestion("Is fire cold?", false)
	attemptID := uuid.New()

	newService := func(attempt quiz.Attempt, submit func(correct, score int)) *QuizService {
		return &QuizService{
			questions: &fakeQuestions{
				getManyFn: func(_ context.Context, ids []uuid.UUID) ([]question.PopulatedQuestion, error) {
					all := map[uuid.UUID]question.PopulatedQuestion{q1.ID: q1, q2.ID: q2}
					var out []question.PopulatedQuestion
					for _, id := range ids {
						out = append(out, all[id])
					}
					return out, nil
				},
			},
			attempts: &fakeAttempts{
				getByIDFn: func(context.Context, uuid.UUID) (*quiz.Attempt, error) { return &attempt, nil },
				submitFn: func(_ context.Context, _ uuid.UUID, _ []quiz.Answer, correct, score int) (*quiz.Attempt, error) {
					submit(correct, score)
					now := time.Now()
					attempt.SubmittedAt, attempt.Score, attempt.CorrectAnswers = &now, &score, &correct
					return &attempt, nil
				},
				answersFn: func(context.Context, uuid.UUID) ([]quiz.Answer, error) { return []quiz.Answer{}, nil },
			},
		}
	}

	payload := &quiz.SubmitAttemptRequest{
		ID: attemptID.String(),
		Answers: []quiz.AnswerInput{
			{QuestionID: q1.ID, ChoiceID: &q1.Choices[0].ID},
			{QuestionID: q2.ID, ChoiceID: &q2.Choices[0].ID},
		},
	}

	t.Run("scores the attempt", func(t *testing.T) {
		var gotCorrect, gotScore int
		svc := newService(quiz.Attempt{ID: attemptID, UserID: player, TotalQuestions: 2, QuestionIDs: []uuid.UUID{q1.ID, q2.ID}}, func(c, s int) { gotCorrect, gotScore = c, s })

		result, err := svc.SubmitAttempt(context.Background(), Actor{ID: player}, payload)
		if err != nil {
			t.Fatalf("SubmitAttempt: %v", err)
		}
		if gotCorrect != 1 || gotScore != 50 {
			t.Fatalf("expected 1 correct and score 50, got %d and %d", gotCorrect, gotScore)
		}
		if !result.Attempt.Submitted() {
			t.Fatal("expected a submitted attempt")
		}
	})

	t.Run("rejects another user's attempt", func(t *testing.T) {
		svc := newService(quiz.Attempt{ID: attemptID, UserID: uuid.New(), TotalQuestions: 2}, func(int, int) { t.Fatal("must not submit") })
		_, err := svc.SubmitAttempt(context.Background(), Actor{ID: player}, payload)
		requireStatus(t, err, 403)
	})

	t.Run("rejects a second submission", func(t *testing.T) {
		now := time.Now()
		svc := newService(quiz.Attempt{ID: attemptID, UserID: player, TotalQuestions: 2, SubmittedAt: &now}, func(int, int) { t.Fatal("must not submit") })
		_, err := svc.SubmitAttempt(context.Background(), Actor{ID: player}, payload)
		if httpErr := requireStatus(t, err, 400); httpErr.Code != "ATTEMPT_ALREADY_SUBMITTED" {
			t.Fatalf("unexpected code %s", httpErr.Code)
		}
	})
}

func TestSubmitAttemptIgnoresQuizEdits(t *testing.T) {
	player := uuid.New()
	started := testQuestion("Is the sky blue?", true)
	added1, added2 := testQuestion("Is ice cold?", true), testQuestion("Is water wet?", true)

	// The choices of the started question were rewritten after the attempt
	// began: the first choice the player saw is gone.
	edited := started
	edited.Choices = []question.Choice{
		{Base: model.Base{ID: uuid.New()}, QuestionID: started.ID, OptionText: "Yes", IsCorrect: true},
		started.Choices[1],
	}

	attempt := quiz.Attempt{ID: uuid.New(), QuizID: uuid.New(), UserID: player, TotalQuestions: 1, QuestionIDs: []uuid.UUID{started.ID}}

	var requested []uuid.UUID
	var gotCorrect, gotScore int
	svc := &QuizService{
		quizzes: &fakeQuizzes{
			itemsFn: func(context.Context, uuid.UUID) ([]quiz.Item, error) {
				t.Fatal("an attempt with stored questions must not read the quiz")
				return nil, nil
			},
		},
		questions: &fakeQuestions{
			getManyFn: func(_ context.Context, ids []uuid.UUID) ([]question.PopulatedQuestion, error) {
				requested = ids
				return []question.PopulatedQuestion{edited}, nil
			},
		},
		attempts: &fakeAttempts{
			getByIDFn: func(context.Context, uuid.UUID) (*quiz.Attempt, error) { return &attempt, nil },
			submitFn: func(_ context.Context, _ uuid.UUID, _ []quiz.Answer, correct, score int) (*quiz.Attempt, error) {
				gotCorrect, gotScore = correct, score
				return &attempt, nil
			},
			answersFn: func(context.Context, uuid.UUID) ([]quiz.Answer, error) { return []quiz.Answer{}, nil },
		},
	}
	ctx := context.Background()

	t.Run("questions added later are rejected", func(t *testing.T) {
		payload := &quiz.SubmitAttemptRequest{ID: attempt.ID.String(), Answers: []quiz.AnswerInput{
			{QuestionID: started.ID, ChoiceID: &edited.Choices[0].ID},
			{QuestionID: added1.ID, ChoiceID: &added1.Choices[0].ID},
			{QuestionID: added2.ID, ChoiceID: &added2.Choices[0].ID},
		}}
		_, err := svc.SubmitAttempt(ctx, Actor{ID: player}, payload)
		if httpErr := requireStatus(t, err, 400); httpErr.Code != "QUESTION_NOT_IN_ATTEMPT" {
			t.Fatalf("unexpected code %s", httpErr.Code)
		}
	})

	t.Run("a removed choice still submits", func(t *testing.T) {
		payload := &quiz.SubmitAttemptRequest{ID: attempt.ID.String(), Answers: []quiz.AnswerInput{
			{QuestionID: started.ID, ChoiceID: &started.Choices[0].ID},
		}}
		if _, err := svc.SubmitAttempt(ctx, Actor{ID: player}, payload); err != nil {
			t.Fatalf("SubmitAttempt: %v", err)
		}
		if gotCorrect != 0 || gotScore != 0 {
			t.Fatalf("expected 0 correct and score 0, got %d and %d", gotCorrect, gotScore)
		}
		if len(requested) != 1 || requested[0] != started.ID {
			t.Fatalf("expected only the stored question to be loaded, got %v", requested)
		}
	})

	t.Run("scores within the stored questions", func(t *testing.T) {
		payload := &quiz.SubmitAttemptRequest{ID: attempt.ID.String(), Answers: []quiz.AnswerInput{
			{QuestionID: started.ID, ChoiceID: &edited.Choices[0].ID},
		}}
		if _, err := svc.SubmitAttempt(ctx, Actor{ID: player}, payload); err != nil {
			t.Fatalf("SubmitAttempt: %v", err)
		}
		if gotCorrect != 1 || gotScore != 100 {
			t.Fatalf("expected 1 correct and score 100, got %d and %d", gotCorrect, gotScore)
		}
	})
}

func TestSubmitAttemptWithoutStoredQuestions(t *testing.T) {
	player := uuid.New()
	q1, q2, q3 := testQuestion("Is the sky blue?", true), testQuestion("Is ice cold?", true), testQuestion("Is water wet?", true)

	// Opened before question ids were recorded, with one question; the quiz
	// has grown to three since.
	attempt := quiz.Attempt{ID: uuid.New(), QuizID: uuid.New(), UserID: player, TotalQuestions: 1}

	var gotScore int
	svc := &QuizService{
		quizzes: &fakeQuizzes{
			itemsFn: func(context.Context, uuid.UUID) ([]quiz.Item, error) {
				return []quiz.Item{{Position: 1, Question: q1}, {Position: 2, Question: q2}, {Position: 3, Question: q3}}, nil
			},
		},
		questions: &fakeQuestions{
			getManyFn: func(context.Context, []uuid.UUID) ([]question.PopulatedQuestion, error) {
				return []question.PopulatedQuestion{q1, q2, q3}, nil
			},
		},
		attempts: &fakeAttempts{
			getByIDFn: func(context.Context, uuid.UUID) (*quiz.Attempt, error) { return &attempt, nil },
			submitFn: func(_ context.Context, _ uuid.UUID, _ []quiz.Answer, _, score int) (*quiz.Attempt, error) {
				gotScore = score
				return &attempt, nil
			},
			answersFn: func(context.Context, uuid.UUID) ([]quiz.Answer, error) { return []quiz.Answer{}, nil },
		},
	}

	payload := &quiz.SubmitAttemptRequest{ID: attempt.ID.String(), Answers: []quiz.AnswerInput{
		{QuestionID: q1.ID, ChoiceID: &q1.Choices[0].ID},
		{QuestionID: q2.ID, ChoiceID: &q2.Choices[0].ID},
		{QuestionID: q3.ID, ChoiceID: &q3.Choices[0].ID},
	}}
	if _, err := svc.SubmitAttempt(context.Background(), Actor{ID: player}, payload); err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if gotScore != 100 {
		t.Fatalf("expected the score capped at 100, got %d", gotScore)
	}
}

func TestQuizOwnership(t *testing.T) {
	owner := uuid.New()
	deleted := false
	svc := &QuizService{
		quizzes: &fakeQuizzes{
			getByIDFn: func(_ context.Context, id uuid.UUID) (*quiz.Quiz, error) {
				return &quiz.Quiz{Base: model.Base{ID: id}, UserID: &owner}, nil
			},
			deleteFn: func(context.Context, uuid.UUID) error { deleted = true; return nil },
			itemsFn: func(context.Context, uuid.UUID) ([]quiz.Item, error) {
				return []quiz.Item{{Position: 1, Question: testQuestion("Is the sky blue?", true)}}, nil
			},
		},
	}
	ctx := context.Background()

	requireStatus(t, svc.Delete(ctx, Actor{ID: uuid.New()}, uuid.New()), 403)
	if deleted {
		t.Fatal("a stranger must not delete the quiz")
	}

	stranger, err := svc.Get(ctx, Actor{ID: uuid.New()}, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if len(stranger.Items) != 0 {
		t.Fatal("strangers must not see the answer key")
	}

	mine, err := svc.Get(ctx, Actor{ID: owner}, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if len(mine.Items) != 1 {
		t.Fatal("the owner should see the questions")
	}

	if err := svc.Delete(ctx, Actor{ID: uuid.New(), Admin: true}, uuid.New()); err != nil || !deleted {
		t.Fatalf("an admin may delete any quiz, got %v", err)
	}
}

func TestCreateQuizRequiresActiveQuestions(t *testing.T) {
	active, draft := uuid.New(), uuid.New()
	svc := &QuizService{
		questions: &fakeQuestions{
			activeIDsFn: func(context.Context, []uuid.UUID) ([]uuid.UUID, error) { return []uuid.UUID{active}, nil },
		},
		quizzes: &fakeQuizzes{
			createFn: func(context.Context, uuid.UUID, *quiz.CreateQuizRequest) (*quiz.Quiz, error) {
				t.Fatal("must not create")
				return nil, nil
			},
		},
	}

	_, err := svc.Create(context.Background(), Actor{ID: uuid.New()}, &quiz.CreateQuizRequest{Title: "Mixed", QuestionIDs: []uuid.UUID{active, draft}})
	httpErr := requireStatus(t, err, 400)
	if httpErr.Code != "QUESTION_NOT_ACTIVE" || len(httpErr.Errors) != 1 {
		t.Fatalf("expected one field error for the draft question, got %+v", httpErr)
	}
}

func TestListQuizzesMine(t *testing.T) {
	me := uuid.New()
	var gotOwner *uuid.UUID
	svc := &QuizService{
		quizzes: &fakeQuizzes{
			listFn: func(_ context.Context, owner *uuid.UUID, _ *quiz.ListQuizzesRequest) ([]quiz.Quiz, int, error) {
				gotOwner = owner
				return nil, 0, nil
			},
		},
	}

	resp, err := svc.List(context.Background(), Actor{ID: me}, &quiz.ListQuizzesRequest{Page: 1, PageSize: 10, Mine: true})
	if err != nil {
		t.Fatal(err)
	}
	if gotOwner == nil || *gotOwner != me {
		t.Fatal("expected the list to be filtered by the caller")
	}
	if resp.Data == nil {
		t.Fatal("expected an empty slice, not nil")
	}
}

func TestGetAttemptNotFound(t *testing.T) {
	svc := &QuizService{
		attempts: &fakeAttempts{
			getByIDFn: func(context.Context, uuid.UUID) (*quiz.Attempt, error) {
				return nil, sqlerr.NotFound("quiz_attempts")
			},
		},
	}

	_, err := svc.GetAttempt(context.Background(), Actor{ID: uuid.New()}, uuid.New())
	if !sqlerr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
