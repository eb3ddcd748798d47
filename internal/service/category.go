package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/deppfellow/quiz-api/internal/model/category"
	"github.com/deppfellow/quiz-api/internal/repository"
)

// CategoryService is thin: name uniqueness is a database constraint and
// write access is checked by the admin middleware.
type CategoryService struct {
	categories categoryStore
}

func NewCategoryService(repos *repository.Repositories) *CategoryService {
	return &CategoryService{categories: repos.Category}
}

func (s *CategoryService) List(ctx context.Context) ([]category.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*category.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, payload *category.CreateCategoryRequest) (*category.Category, error) {
	return s.categories.Create(ctx, payload)
}

func (s *CategoryService) Update(ctx context.Context, payload *category.UpdateCategoryRequest) (*category.Category, error) {
	return s.categories.Update(ctx, payload)
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.categories.SoftDelete(ctx, id)
}
