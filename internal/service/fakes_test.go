package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/quiz-api/internal/model"
	"github.com/deppfellow/quiz-api/internal/model/auth"
	"github.com/deppfellow/quiz-api/internal/model/category"
	"github.com/deppfellow/quiz-api/internal/model/question"
	"github.com/deppfellow/quiz-api/internal/model/quiz"
	"github.com/deppfellow/quiz-api/internal/model/user"
	"github.com/deppfellow/quiz-api/internal/repository"
	"github.com/deppfellow/quiz-api/internal/sqlerr"
)

var nopLogger = zerolog.Nop()

// memUsers is an in-memory userStore.
type memUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*user.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uuid.UUID]*user.User{}}
}

func (m *memUsers) put(u *user.User) *user.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.byID[u.ID] = u
	cp := *u
	return &cp
}

func (m *memUsers) Create(_ context.Context, p repository.CreateUserParams) (*user.User, error) {
	now := time.Now()
	return m.put(&user.User{
		Base:                 model.Base{CreatedAt: now, UpdatedAt: now},
		Name:                 p.Name,
		Email:                strings.ToLower(p.Email),
		Password:             p.PasswordHash,
		Status:               p.Status,
		UserType:             p.UserType,
		EmailVerifiedAt:      p.EmailVerifiedAt,
		EmailVerifyToken:     p.EmailVerifyToken,
		EmailVerifyExpiredAt: p.EmailVerifyExpiredAt,
	}), nil
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, sqlerr.NotFound("users")
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sqlerr.NotFound("users")
}

func (m *memUsers) update(id uuid.UUID, fn func(u *user.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return sqlerr.NotFound("users")
	}
	fn(u)
	return nil
}

func (m *memUsers) UpdateProfile(ctx context.Context, id uuid.UUID, p *user.UpdateProfileRequest) (*user.User, error) {
	err := m.update(id, func(u *user.User) {
		if p.Name != nil {
			u.Name = *p.Name
		}
		if p.PhoneNo != nil {
			u.PhoneNo = p.PhoneNo
			u.DialCode = p.DialCode
		}
	})
	if err != nil {
		return nil, err
	}
	return m.GetByID(ctx, id)
}

func (m *memUsers) SetVerificationToken(_ context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	return m.update(id, func(u *user.User) {
		u.EmailVerifyToken = &token
		u.EmailVerifyExpiredAt = &expiresAt
	})
}

func (m *memUsers) MarkVerified(_ context.Context, id uuid.UUID) error {
	return m.update(id, func(u *user.User) {
		now := time.Now()
		if u.Status == user.StatusInactive {
			u.Status = user.StatusActive
		}
		u.EmailVerifiedAt = &now
		u.EmailVerifyToken = nil
		u.EmailVerifyExpiredAt = nil
	})
}

func (m *memUsers) SetPasswordResetToken(_ context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	return m.update(id, func(u *user.User) {
		u.PasswordResetToken = &token
		u.PasswordResetExpiredAt = &expiresAt
	})
}

func (m *memUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	return m.update(id, func(u *user.User) {
		u.Password = hash
		u.PasswordResetToken = nil
		u.PasswordResetExpiredAt = nil
	})
}

// memTokens is an in-memory tokenStore keyed by access token.
type memTokens struct {
	mu       sync.Mutex
	byAccess map[string]*auth.Token
}

func newMemTokens() *memTokens {
	return &memTokens{byAccess: map[string]*auth.Token{}}
}

func (m *memTokens) Create(_ context.Context, t *auth.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.byAccess[t.AccessToken] = &cp
	return nil
}

func (m *memTokens) GetByAccessToken(_ context.Context, access string) (*auth.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byAccess[access]
	if !ok {
		return nil, sqlerr.NotFound("user_tokens")
	}
	cp := *t
	return &cp, nil
}

func (m *memTokens) GetByRefreshToken(_ context.Context, refresh string) (*auth.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.byAccess {
		if t.RefreshToken == refresh {
			cp := *t
			return &cp, nil
		}
	}
	return nil, sqlerr.NotFound("user_tokens")
}

func (m *memTokens) Rotate(_ context.Context, oldRefresh string, next *auth.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for access, t := range m.byAccess {
		if t.RefreshToken == oldRefresh && t.RevokedAt == nil {
			delete(m.byAccess, access)
			cp := *next
			m.byAccess[next.AccessToken] = &cp
			return nil
		}
	}
	return sqlerr.NotFound("user_tokens")
}

func (m *memTokens) Revoke(_ context.Context, access string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.byAccess[access]; ok && t.RevokedAt == nil {
		revoke(t, at)
	}
	return nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.byAccess {
		if t.UserID == userID && t.RevokedAt == nil {
			revoke(t, at)
		}
	}
	return nil
}

func revoke(t *auth.Token, at time.Time) {
	t.RevokedAt = &at
	if at.Before(t.ExpiredAt) {
		t.ExpiredAt = at
	}
}

type sentMail struct {
	kind  string
	to    string
	token string
}

type fakeMail struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMail) record(kind, to, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{kind: kind, to: to, token: token})
	return f.err
}

func (f *fakeMail) EnqueueVerificationEmail(_ context.Context, to, _, token string, _ time.Duration) error {
	return f.record("verification", to, token)
}

func (f *fakeMail) EnqueuePasswordResetEmail(_ context.Context, to, _, token string, _ time.Duration) error {
	return f.record("password_reset", to, token)
}

func (f *fakeMail) EnqueueWelcomeEmail(_ context.Context, to, _ string) error {
	return f.record("welcome", to, "")
}

func (f *fakeMail) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMail{}
	}
	return f.sent[len(f.sent)-1]
}

// fakeQuestions is a questionStore built from function fields; unset
// fields panic when called.
type fakeQuestions struct {
	createFn       func(ctx context.Context, p repository.QuestionParams) (*question.PopulatedQuestion, error)
	updateFn       func(ctx context.Context, id uuid.UUID, p repository.QuestionParams) (*question.PopulatedQuestion, error)
	getByIDFn      func(ctx context.Context, id uuid.UUID) (*question.PopulatedQuestion, error)
	listFn         func(ctx context.Context, q *question.ListQuestionsRequest) ([]question.PopulatedQuestion, int, error)
	softDeleteFn   func(ctx context.Context, id uuid.UUID) error
	reviewFn       func(ctx context.Context, id uuid.UUID, s question.Status, c *string) (*question.PopulatedQuestion, error)
	statsFn        func(ctx context.Context) ([]question.CategoryStats, error)
	existsByTextFn func(ctx context.Context, text string) (bool, error)
	activeIDsFn    func(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	getManyFn      func(ctx context.Context, ids []uuid.UUID) ([]question.PopulatedQuestion, error)
}

func (f *fakeQuestions) Create(ctx context.Context, p repository.QuestionParams) (*question.PopulatedQuestion, error) {
	return f.createFn(ctx, p)
}

func (f *fakeQuestions) Update(ctx context.Context, id uuid.UUID, p repository.QuestionParams) (*question.PopulatedQuestion, error) {
	return f.updateFn(ctx, id, p)
}

func (f *fakeQuestions) GetByID(ctx context.Context, id uuid.UUID) (*question.PopulatedQuestion, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeQuestions) List(ctx context.Context, q *question.ListQuestionsRequest) ([]question.PopulatedQuestion, int, error) {
	return f.listFn(ctx, q)
}

func (f *fakeQuestions) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return f.softDeleteFn(ctx, id)
}

func (f *fakeQuestions) Review(ctx context.Context, id uuid.UUID, s question.Status, c *string) (*question.PopulatedQuestion, error) {
	return f.reviewFn(ctx, id, s, c)
}

func (f *fakeQuestions) Stats(ctx context.Context) ([]question.CategoryStats, error) {
	return f.statsFn(ctx)
}

func (f *fakeQuestions) ExistsByText(ctx context.Context, text string) (bool, error) {
	return f.existsByTextFn(ctx, text)
}

func (f *fakeQuestions) ActiveIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	return f.activeIDsFn(ctx, ids)
}

func (f *fakeQuestions) GetMany(ctx context.Context, ids []uuid.UUID) ([]question.PopulatedQuestion, error) {
	return f.getManyFn(ctx, ids)
}

type fakeCategories struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (*category.Category, error)
	upsertFn  func(ctx context.Context, name string) (*category.Category, error)
}

func (f *fakeCategories) List(context.Context) ([]category.Category, error) { return nil, nil }

func (f *fakeCategories) GetByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeCategories) Create(context.Context, *category.CreateCategoryRequest) (*category.Category, error) {
	return nil, nil
}

func (f *fakeCategories) Upsert(ctx context.Context, name string) (*category.Category, error) {
	return f.upsertFn(ctx, name)
}

func (f *fakeCategories) Update(context.Context, *category.UpdateCategoryRequest) (*category.Category, error) {
	return nil, nil
}

func (f *fakeCategories) SoftDelete(context.Context, uuid.UUID) error { return nil }

type fakeQuizzes struct {
	createFn  func(ctx context.Context, userID uuid.UUID, p *quiz.CreateQuizRequest) (*quiz.Quiz, error)
	getByIDFn func(ctx context.Context, id uuid.UUID) (*quiz.Quiz, error)
	listFn    func(ctx context.Context, owner *uuid.UUID, q *quiz.ListQuizzesRequest) ([]quiz.Quiz, int, error)
	updateFn  func(ctx context.Context, id uuid.UUID, p *quiz.UpdateQuizRequest) (*quiz.Quiz, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) error
	itemsFn   func(ctx context.Context, quizID uuid.UUID) ([]quiz.Item, error)
}

func (f *fakeQuizzes) Create(ctx context.Context, userID uuid.UUID, p *quiz.CreateQuizRequest) (*quiz.Quiz, error) {
	return f.createFn(ctx, userID, p)
}

func (f *fakeQuizzes) GetByID(ctx context.Context, id uuid.UUID) (*quiz.Quiz, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeQuizzes) List(ctx context.Context, owner *uuid.UUID, q *quiz.ListQuizzesRequest) ([]quiz.Quiz, int, error) {
	return f.listFn(ctx, owner, q)
}

func (f *fakeQuizzes) Update(ctx context.Context, id uuid.UUID, p *quiz.UpdateQuizRequest) (*quiz.Quiz, error) {
	return f.updateFn(ctx, id, p)
}

func (f *fakeQuizzes) Delete(ctx context.Context, id uuid.UUID) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeQuizzes) Items(ctx context.Context, quizID uuid.UUID) ([]quiz.Item, error) {
	return f.itemsFn(ctx, quizID)
}

type fakeAttempts struct {
	createFn     func(ctx context.Context, quizID, userID uuid.UUID, questionIDs []uuid.UUID) (*quiz.Attempt, error)
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*quiz.Attempt, error)
	listByUserFn func(ctx context.Context, userID uuid.UUID) ([]quiz.Attempt, error)
	submitFn     func(ctx context.Context, id uuid.UUID, answers []quiz.Answer, correct, score int) (*quiz.Attempt, error)
	answersFn    func(ctx context.Context, id uuid.UUID) ([]quiz.Answer, error)
}

func (f *fakeAttempts) Create(ctx context.Context, quizID, userID uuid.UUID, questionIDs []uuid.UUID) (*quiz.Attempt, error) {
	return f.createFn(ctx, quizID, userID, questionIDs)
}

func (f *fakeAttempts) GetByID(ctx context.Context, id uuid.UUID) (*quiz.Attempt, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeAttempts) ListByUser(ctx context.Context, userID uuid.UUID) ([]quiz.Attempt, error) {
	return f.listByUserFn(ctx, userID)
}

func (f *fakeAttempts) Submit(ctx context.Context, id uuid.UUID, answers []quiz.Answer, correct, score int) (*quiz.Attempt, error) {
	return f.submitFn(ctx, id, answers, correct, score)
}

func (f *fakeAttempts) Answers(ctx context.Context, id uuid.UUID) ([]quiz.Answer, error) {
	return f.answersFn(ctx, id)
}
