package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/quiz-api/internal/middleware"
	"github.com/deppfellow/quiz-api/internal/model"
	"github.com/deppfellow/quiz-api/internal/model/user"
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/service"
)

type userService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*user.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, payload *user.UpdateProfileRequest) (*user.User, error)
}

type UserHandler struct {
	Handler
	users userService
}

func NewUserHandler(s *server.Server, users userService) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		users:   users,
	}
}

// currentActor is only meaningful on routes behind RequireAuth.
func currentActor(c echo.Context) service.Actor {
	u := middleware.GetUser(c)
	if u == nil {
		return service.Actor{}
	}
	return service.ActorFromUser(u)
}

func (h *UserHandler) Me(c echo.Context, _ *model.EmptyRequest) (*user.User, error) {
	return h.users.GetProfile(c.Request().Context(), currentActor(c).ID)
}

func (h *UserHandler) UpdateMe(c echo.Context, payload *user.UpdateProfileRequest) (*user.User, error) {
	return h.users.UpdateProfile(c.Request().Context(), currentActor(c).ID, payload)
}
