package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/deppfellow/quiz-api/internal/model/user"
	"github.com/deppfellow/quiz-api/internal/repository"
)

type UserService struct {
	users userStore
}

func NewUserService(repos *repository.Repositories) *UserService {
	return &UserService{users: repos.User}
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, payload *user.UpdateProfileRequest) (*user.User, error) {
	return s.users.UpdateProfile(ctx, id, payload)
}
