package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/quiz-api/internal/model"
	"github.com/deppfellow/quiz-api/internal/model/category"
	"github.com/deppfellow/quiz-api/internal/server"
)

type categoryService interface {
	List(ctx context.Context) ([]category.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*category.Category, error)
	Create(ctx context.Context, payload *category.CreateCategoryRequest) (*category.Category, error)
	Update(ctx context.Context, payload *category.UpdateCategoryRequest) (*category.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CategoryHandler struct {
	Handler
	categories categoryService
}

func NewCategoryHandler(s *server.Server, categories categoryService) *CategoryHandler {
	return &CategoryHandler{
		Handler:    NewHandler(s),
		categories: categories,
	}
}

func (h *CategoryHandler) List(c echo.Context, _ *model.EmptyRequest) ([]category.Category, error) {
	return h.categories.List(c.Request().Context())
}

func (h *CategoryHandler) Get(c echo.Context, payload *model.IDRequest) (*category.Category, error) {
	return h.categories.Get(c.Request().Context(), payload.UUID())
}

func (h *CategoryHandler) Create(c echo.Context, payload *category.CreateCategoryRequest) (*category.Category, error) {
	return h.categories.Create(c.Request().Context(), payload)
}

func (h *CategoryHandler) Update(c echo.Context, payload *category.UpdateCategoryRequest) (*category.Category, error) {
	return h.categories.Update(c.Request().Context(), payload)
}

func (h *CategoryHandler) Delete(c echo.Context, payload *model.IDRequest) error {
	return h.categories.Delete(c.Request().Context(), payload.UUID())
}
