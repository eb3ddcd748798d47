// Package model holds the types shared by the entity packages below it.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/deppfellow/quiz-api/internal/validation"
)

type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type PaginatedResponse[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewPaginatedResponse[T any](data []T, page, pageSize, total int) PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	return PaginatedResponse[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// EmptyRequest is the payload of endpoints that take no input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}

// IDRequest binds an :id path parameter.
type IDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (r *IDRequest) Validate() error {
	return validation.Struct(r)
}

// UUID is only meaningful after Validate succeeded.
func (r *IDRequest) UUID() uuid.UUID {
	return uuid.MustParse(r.ID)
}

type MessageResponse struct {
	Message string `json:"message"`
}
