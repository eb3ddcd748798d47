package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/deppfellow/quiz-api/internal/config"
	"github.com/deppfellow/quiz-api/internal/lib/password"
)

// ErrSeedInProduction is returned when seeding is attempted with
// primary.env=production.
var ErrSeedInProduction = errors.New("refusing to seed a production database")

// Open Trivia DB category names, so imported questions land in existing
// categories.
var seedCategories = []string{
	"General Knowledge",
	"Entertainment: Books",
	"Entertainment: Film",
	"Entertainment: Music",
	"Entertainment: Musicals & Theatres",
	"Entertainment: Television",
	"Entertainment: Video Games",
	"Entertainment: Board Games",
	"Science & Nature",
	"Science: Computers",
	"Science: Mathematics",
	"Mythology",
	"Sports",
	"Geography",
	"Entertainment: Comics",
	"Science: Gadgets",
	"Entertainment: Japanese Anime & Manga",
	"History",
	"Politics",
	"Art",
	"Celebrities",
	"Animals",
	"Vehicles",
	"Entertainment: Cartoon & Animations",
}

type seedUser struct {
	name     string
	email    string
	userType string
}

// Seed inserts fixture categories and accounts. Existing rows are left
// untouched, so running it twice is harmless.
func Seed(ctx context.Context, pool *pgxpool.Pool, logger *zerolog.Logger, cfg *config.Config) error {
	if cfg.IsProduction() {
		return ErrSeedInProduction
	}

	hashed, err := password.NewHasher(cfg.Auth.BcryptCost).Hash(cfg.Seed.AdminPassword)
	if err != nil {
		return err
	}

	users := []seedUser{
		{name: "Quiz Admin", email: cfg.Seed.AdminEmail, userType: "admin"},
		{name: "Quiz Player", email: "player@example.com", userType: "user"},
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, name := range seedCategories {
		batch.Queue(`
			INSERT INTO categories (name)
			VALUES (@name)
			ON CONFLICT (name) WHERE deleted_at IS NULL DO NOTHING
		`, pgx.NamedArgs{"name": name})
	}
	for _, u := range users {
		batch.Queue(`
			INSERT INTO users (name, email, password, status, user_type, email_verified_at)
			VALUES (@name, lower(@email), @password, 'active', @user_type, CURRENT_TIMESTAMP)
			ON CONFLICT (lower(email)) WHERE deleted_at IS NULL DO NOTHING
		`, pgx.NamedArgs{
			"name":      u.name,
			"email":     u.email,
			"password":  hashed,
			"user_type": u.userType,
		})
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to seed fixtures: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	logger.Info().
		Int("categories", len(seedCategories)).
		Int("users", len(users)).
		Msg("database seeded")

	return nil
}
