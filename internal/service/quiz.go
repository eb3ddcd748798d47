package service

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/deppfellow/quiz-api/internal/errs"
	"github.com/deppfellow/quiz-api/internal/model"
	"github.com/deppfellow/quiz-api/internal/model/question"
	"github.com/deppfellow/quiz-api/internal/model/quiz"
	"github.com/deppfellow/quiz-api/internal/repository"
)

type QuizService struct {
	quizzes   quizStore
	questions questionStore
	attempts  attemptStore
	shuffle   func(n int, swap func(i, j int))
}

func NewQuizService(repos *repository.Repositories) *QuizService {
	return &QuizService{
		quizzes:   repos.Quiz,
		questions: repos.Question,
		attempts:  repos.Attempt,
		shuffle:   rand.Shuffle,
	}
}

// checkActive rejects question lists that reference anything but active
// questions.
func (s *QuizService) checkActive(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	active, err := s.questions.ActiveIDs(ctx, ids)
	if err != nil {
		return err
	}

	found := make(map[uuid.UUID]bool, len(active))
	for _, id := range active {
		found[id] = true
	}

	var fieldErrs []errs.FieldError
	for _, id := range ids {
		if !found[id] {
			fieldErrs = append(fieldErrs, errs.FieldError{Field: "question_ids", Error: id.String() + " is not an active question"})
		}
	}
	if len(fieldErrs) > 0 {
		return errs.NewBadRequestError("Only active questions can be added to a quiz", true, errs.Code("QUESTION_NOT_ACTIVE"), fieldErrs, nil)
	}
	return nil
}

func (s *QuizService) Create(ctx context.Context, actor Actor, payload *quiz.CreateQuizRequest) (*quiz.PopulatedQuiz, error) {
	if err := s.checkActive(ctx, payload.QuestionIDs); err != nil {
		return nil, err
	}

	created, err := s.quizzes.Create(ctx, actor.ID, payload)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, created)
}

func (s *QuizService) populate(ctx context.Context, q *quiz.Quiz) (*quiz.PopulatedQuiz, error) {
	items, err := s.quizzes.Items(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []quiz.Item{}
	}
	return &quiz.PopulatedQuiz{Quiz: *q, Items: items}, nil
}

// Get returns the quiz with its questions and answers to the owner or an
// admin. Other players only see the quiz itself.
func (s *QuizService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*quiz.PopulatedQuiz, error) {
	q, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(q.UserID) {
		return &quiz.PopulatedQuiz{Quiz: *q, Items: []quiz.Item{}}, nil
	}
	return s.populate(ctx, q)
}

func (s *QuizService) List(ctx context.Context, actor Actor, query *quiz.ListQuizzesRequest) (*model.PaginatedResponse[quiz.Quiz], error) {
	var owner *uuid.UUID
	if query.Mine {
		owner = &actor.ID
	}

	quizzes, total, err := s.quizzes.List(ctx, owner, query)
	if err != nil {
		return nil, err
	}
	resp := model.NewPaginatedResponse(quizzes, query.Page, query.PageSize, total)
	return &resp, nil
}

func (s *QuizService) Update(ctx context.Context, actor Actor, payload *quiz.UpdateQuizRequest) (*quiz.PopulatedQuiz, error) {
	current, err := s.quizzes.GetByID(ctx, payload.UUID())
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(current.UserID) {
		return nil, forbidden("quiz")
	}

	if payload.QuestionIDs != nil {
		if err := s.checkActive(ctx, *payload.QuestionIDs); err != nil {
			return nil, err
		}
	}

	updated, err := s.quizzes.Update(ctx, current.ID, payload)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, updated)
}

func (s *QuizService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	current, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(current.UserID) {
		return forbidden("quiz")
	}
	return s.quizzes.Delete(ctx, id)
}

// StartAttempt opens an attempt and returns the questions in random order
// with shuffled choices and without their correctness.
func (s *QuizService) StartAttempt(ctx context.Context, actor Actor, quizID uuid.UUID) (*quiz.AttemptSheet, error) {
	q, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	items, err := s.quizzes.Items(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errs.NewBadRequestError("This quiz has no questions yet", true, errs.Code("QUIZ_EMPTY"), nil, nil)
	}

	questions := make([]quiz.PlayQuestion, len(items))
	questionIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		questions[i] = s.playQuestion(item.Question)
		questionIDs[i] = item.Question.ID
	}

	attempt, err := s.attempts.Create(ctx, q.ID, actor.ID, questionIDs)
	if err != nil {
		return nil, err
	}

	s.shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	return &quiz.AttemptSheet{Attempt: *attempt, Title: q.Title, Questions: questions}, nil
}

func (s *QuizService) playQuestion(q question.PopulatedQuestion) quiz.PlayQuestion {
	choices := make([]quiz.PlayChoice, len(q.Choices))
	for i, c := range q.Choices {
		choices[i] = quiz.PlayChoice{ID: c.ID, OptionText: c.OptionText}
	}
	s.shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	return quiz.PlayQuestion{
		ID:           q.ID,
		Question:     q.Question.Question,
		QuestionType: q.QuestionType,
		Difficulty:   q.Difficulty,
		Choices:      choices,
	}
}

// SubmitAttempt grades the answers against the questions the attempt was
// started with. Questions left unanswered count as wrong; the score is the
// integer percentage of the attempt's questions.
func (s *QuizService) SubmitAttempt(ctx context.Context, actor Actor, payload *quiz.SubmitAttemptRequest) (*quiz.AttemptResult, error) {
	attempt, err := s.attempts.GetByID(ctx, payload.UUID())
	if err != nil {
		return nil, err
	}
	if attempt.UserID != actor.ID {
		return nil, errs.NewForbiddenError("This attempt belongs to another user", true)
	}
	if attempt.Submitted() {
		return nil, errAttemptSubmitted
	}

	questionIDs, err := s.attemptQuestionIDs(ctx, attempt)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.GetMany(ctx, questionIDs)
	if err != nil {
		return nil, err
	}

	answers, correct, err := grade(questions, payload.Answers)
	if err != nil {
		return nil, err
	}

	submitted, err := s.attempts.Submit(ctx, attempt.ID, answers, correct, quiz.Score(correct, attempt.TotalQuestions))
	if err != nil {
		return nil, err
	}

	stored, err := s.attempts.Answers(ctx, attempt.ID)
	if err != nil {
		return nil, err
	}
	return &quiz.AttemptResult{Attempt: *submitted, Answers: stored}, nil
}

// attemptQuestionIDs returns the questions stored with the attempt. Attempts
// opened before question ids were recorded fall back to the quiz's current
// questions.
func (s *QuizService) attemptQuestionIDs(ctx context.Context, attempt *quiz.Attempt) ([]uuid.UUID, error) {
	if len(attempt.QuestionIDs) > 0 {
		return attempt.QuestionIDs, nil
	}

	items, err := s.quizzes.Items(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.Question.ID
	}
	return ids, nil
}

var errAttemptSubmitted = errs.NewBadRequestError("This attempt has already been submitted", true, errs.Code("ATTEMPT_ALREADY_SUBMITTED"), nil, nil)

// grade marks each answer. An answer to a question outside the attempt is
// rejected. A choice that is not among the question's current choices, for
// instance because the owner rewrote them after the attempt started, counts
// as a wrong answer with no selection.
func grade(questions []question.PopulatedQuestion, inputs []quiz.AnswerInput) ([]quiz.Answer, int, error) {
	byQuestion := make(map[uuid.UUID]question.PopulatedQuestion, len(questions))
	for _, q := range questions {
		byQuestion[q.ID] = q
	}

	answers := make([]quiz.Answer, 0, len(inputs))
	correct := 0

	for _, in := range inputs {
		q, ok := byQuestion[in.QuestionID]
		if !ok {
			return nil, 0, errs.NewBadRequestError("Question "+in.QuestionID.String()+" is not part of this attempt", true, errs.Code("QUESTION_NOT_IN_ATTEMPT"), nil, nil)
		}

		answer := quiz.Answer{QuestionID: q.ID}
		if in.ChoiceID != nil {
			if choice, ok := findChoice(q.Choices, *in.ChoiceID); ok {
				answer.SelectedChoiceID = in.ChoiceID
				answer.IsCorrect = choice.IsCorrect
			}
		}

		if answer.IsCorrect {
			correct++
		}
		answers = append(answers, answer)
	}

	return answers, correct, nil
}

func findChoice(choices []question.Choice, id uuid.UUID) (question.Choice, bool) {
	for _, c := range choices {
		if c.ID == id {
			return c, true
		}
	}
	return question.Choice{}, false
}

func (s *QuizService) GetAttempt(ctx context.Context, actor Actor, id uuid.UUID) (*quiz.AttemptResult, error) {
	attempt, err := s.attempts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != actor.ID && !actor.Admin {
		return nil, errs.NewForbiddenError("This attempt belongs to another user", true)
	}

	answers, err := s.attempts.Answers(ctx, id)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = []quiz.Answer{}
	}
	return &quiz.AttemptResult{Attempt: *attempt, Answers: answers}, nil
}

func (s *QuizService) ListAttempts(ctx context.Context, actor Actor) ([]quiz.Attempt, error) {
	attempts, err := s.attempts.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []quiz.Attempt{}
	}
	return attempts, nil
}
