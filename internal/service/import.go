package service

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/deppfellow/quiz-api/internal/config"
	"github.com/deppfellow/quiz-api/internal/model/question"
	"github.com/deppfellow/quiz-api/internal/repository"
	"github.com/deppfellow/quiz-api/internal/server"
)

// Open Trivia DB category ids span 9 (General Knowledge) to 32 (Cartoon &
// Animations).
const (
	openTDBMinCategory = 9
	openTDBMaxCategory = 32
	importReference    = "opentdb.com"
	maxOptionLength    = 150
)

type openTDBResponse struct {
	ResponseCode int             `json:"response_code"`
	Results      []openTDBResult `json:"results"`
}

type openTDBResult struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// ImportService pulls trivia questions from Open Trivia DB. Imported
// questions are drafts owned by the configured importer account and wait
// for an admin review like any other submission.
type ImportService struct {
	users      userStore
	categories categoryStore
	questions  questionStore
	client     *http.Client
	cfg        config.ImportConfig
	logger     *zerolog.Logger
	category   func() int
	shuffle    func(n int, swap func(i, j int))
}

func NewImportService(s *server.Server, repos *repository.Repositories) *ImportService {
	return &ImportService{
		users:      repos.User,
		categories: repos.Category,
		questions:  repos.Question,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: newrelic.NewRoundTripper(http.DefaultTransport),
		},
		cfg:    s.Config.Import,
		logger: s.Logger,
		category: func() int {
			return openTDBMinCategory + rand.IntN(openTDBMaxCategory-openTDBMinCategory+1)
		},
		shuffle: rand.Shuffle,
	}
}

// ImportQuestions fetches up to amount questions from a random category and
// stores the new ones. It returns how many were stored.
func (s *ImportService) ImportQuestions(ctx context.Context, amount int) (int, error) {
	if amount <= 0 {
		amount = s.cfg.Amount
	}

	importer, err := s.users.GetByEmail(ctx, s.cfg.ImporterEmail)
	if err != nil {
		return 0, fmt.Errorf("failed to load importer account %s: %w", s.cfg.ImporterEmail, err)
	}

	results, err := s.fetch(ctx, amount, s.category())
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, r := range results {
		params, ok := s.toParams(r)
		if !ok {
			continue
		}

		exists, err := s.questions.ExistsByText(ctx, params.Question)
		if err != nil {
			return imported, err
		}
		if exists {
			continue
		}

		cat, err := s.categories.Upsert(ctx, html.UnescapeString(r.Category))
		if err != nil {
			return imported, err
		}

		params.UserID = importer.ID
		params.CategoryID = &cat.ID

		if _, err := s.questions.Create(ctx, params); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (s *ImportService) fetch(ctx context.Context, amount, category int) ([]openTDBResult, error) {
	u, err := url.Parse(s.cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid import api url: %w", err)
	}
	q := u.Query()
	q.Set("amount", strconv.Itoa(amount))
	q.Set("category", strconv.Itoa(category))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("question api returned %d", resp.StatusCode)
	}

	var body openTDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode question api response: %w", err)
	}
	if body.ResponseCode != 0 {
		return nil, fmt.Errorf("question api response code %d", body.ResponseCode)
	}

	return body.Results, nil
}

// toParams converts one result, reporting false for questions that break
// the local rules (too long, duplicate options and so on).
func (s *ImportService) toParams(r openTDBResult) (repository.QuestionParams, bool) {
	text := html.UnescapeString(r.Question)

	typ := question.TypeMultipleChoice
	if r.Type == "boolean" {
		typ = question.TypeBoolean
	}

	difficulty := question.Difficulty(r.Difficulty)
	switch difficulty {
	case question.DifficultyEasy, question.DifficultyMedium, question.DifficultyHard:
	default:
		difficulty = question.DifficultyEasy
	}

	choices := []question.ChoiceInput{{OptionText: html.UnescapeString(r.CorrectAnswer), IsCorrect: true}}
	for _, wrong := range r.IncorrectAnswers {
		choices = append(choices, question.ChoiceInput{OptionText: html.UnescapeString(wrong)})
	}
	for _, c := range choices {
		if utf8.RuneCountInString(c.OptionText) > maxOptionLength {
			return repository.QuestionParams{}, false
		}
	}
	s.shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	if err := question.CheckRules(text, typ, choices); err != nil {
		s.logger.Debug().Err(err).Str("question", text).Msg("skipping imported question")
		return repository.QuestionParams{}, false
	}

	reference := importReference
	return repository.QuestionParams{
		Question:     text,
		QuestionType: typ,
		Status:       question.StatusDraft,
		Difficulty:   difficulty,
		References:   &reference,
		Choices:      choices,
	}, true
}
