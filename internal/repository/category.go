package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/quiz-api/internal/model/category"
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/sqlerr"
)

type CategoryRepository struct {
	server *server.Server
}

func NewCategoryRepository(s *server.Server) *CategoryRepository {
	return &CategoryRepository{server: s}
}

func (r *CategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	stmt := `SELECT * FROM categories WHERE deleted_at IS NULL ORDER BY name ASC`

	rows, err := r.server.DB.Pool.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to execute list categories query: %w", err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowToStructByName[category.Category])
	if err != nil {
		return nil, fmt.Errorf("failed to collect rows from table:categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	stmt := `SELECT * FROM categories WHERE id = @id AND deleted_at IS NULL`

	return r.getOne(ctx, stmt, pgx.NamedArgs{"id": id})
}

func (r *CategoryRepository) Create(ctx context.Context, payload *category.CreateCategoryRequest) (*category.Category, error) {
	stmt := `
		INSERT INTO categories (name, description)
		VALUES (@name, @description)
		RETURNING *
	`

	return r.getOne(ctx, stmt, pgx.NamedArgs{
		"name":        payload.Name,
		"description": payload.Description,
	})
}

// Upsert returns the live category with this name, creating it if needed.
func (r *CategoryRepository) Upsert(ctx context.Context, name string) (*category.Category, error) {
	stmt := `
		INSERT INTO categories (name)
		VALUES (@name)
		ON CONFLICT (name) WHERE deleted_at IS NULL
		DO UPDATE SET updated_at = categories.updated_at
		RETURNING *
	`

	return r.getOne(ctx, stmt, pgx.NamedArgs{"name": name})
}

func (r *CategoryRepository) Update(ctx context.Context, payload *category.UpdateCategoryRequest) (*category.Category, error) {
	stmt := `
		UPDATE categories
		SET
			name = COALESCE(@name, name),
			description = COALESCE(@description, description),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = @id AND deleted_at IS NULL
		RETURNING *
	`

	return r.getOne(ctx, stmt, pgx.NamedArgs{
		"id":          payload.UUID(),
		"name":        payload.Name,
		"description": payload.Description,
	})
}

func (r *CategoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	stmt := `
		UPDATE categories
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = @id AND deleted_at IS NULL
	`

	tag, err := r.server.DB.Pool.Exec(ctx, stmt, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete from table:categories for id=%s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.NotFound("categories")
	}
	return nil
}

func (r *CategoryRepository) getOne(ctx context.Context, stmt string, args pgx.NamedArgs) (*category.Category, error) {
	rows, err := r.server.DB.Pool.Query(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute category query: %w", err)
	}

	c, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[category.Category])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound("categories")
		}
		return nil, fmt.Errorf("failed to collect row from table:categories: %w", err)
	}
	return c, nil
}
