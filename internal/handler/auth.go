package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/quiz-api/internal/middleware"
	"github.com/deppfellow/quiz-api/internal/model"
	"github.com/deppfellow/quiz-api/internal/model/auth"
	"github.com/deppfellow/quiz-api/internal/model/user"
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/service"
)

type authService interface {
	Register(ctx context.Context, payload *auth.RegisterRequest) (*user.User, error)
	Login(ctx context.Context, payload *auth.LoginRequest, client service.ClientInfo) (*auth.TokenResponse, error)
	Refresh(ctx context.Context, payload *auth.RefreshRequest, client service.ClientInfo) (*auth.TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
	VerifyEmail(ctx context.Context, payload *auth.VerifyEmailRequest) error
	ResendVerification(ctx context.Context, payload *auth.EmailRequest) error
	ForgotPassword(ctx context.Context, payload *auth.EmailRequest) error
	ResetPassword(ctx context.Context, payload *auth.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, userID uuid.UUID, payload *auth.ChangePasswordRequest) error
	OAuthProviders() []string
	OAuthLoginURL(ctx context.Context, payload *auth.OAuthLoginRequest) (string, error)
	OAuthCallback(ctx context.Context, payload *auth.OAuthCallbackRequest, client service.ClientInfo) (*auth.TokenResponse, error)
}

type AuthHandler struct {
	Handler
	auth authService
}

func NewAuthHandler(s *server.Server, auth authService) *AuthHandler {
	return &AuthHandler{
		Handler: NewHandler(s),
		auth:    auth,
	}
}

func clientInfo(c echo.Context) service.ClientInfo {
	return service.ClientInfo{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

func message(msg string) *model.MessageResponse {
	return &model.MessageResponse{Message: msg}
}

func (h *AuthHandler) Register(c echo.Context, payload *auth.RegisterRequest) (*user.User, error) {
	return h.auth.Register(c.Request().Context(), payload)
}

func (h *AuthHandler) Login(c echo.Context, payload *auth.LoginRequest) (*auth.TokenResponse, error) {
	return h.auth.Login(c.Request().Context(), payload, clientInfo(c))
}

func (h *AuthHandler) Refresh(c echo.Context, payload *auth.RefreshRequest) (*auth.TokenResponse, error) {
	return h.auth.Refresh(c.Request().Context(), payload, clientInfo(c))
}

func (h *AuthHandler) Logout(c echo.Context, _ *model.EmptyRequest) error {
	return h.auth.Logout(c.Request().Context(), middleware.GetAccessToken(c))
}

func (h *AuthHandler) VerifyEmail(c echo.Context, payload *auth.VerifyEmailRequest) (*model.MessageResponse, error) {
	if err := h.auth.VerifyEmail(c.Request().Context(), payload); err != nil {
		return nil, err
	}
	return message("Email verified, you can now log in"), nil
}

func (h *AuthHandler) ResendVerification(c echo.Context, payload *auth.EmailRequest) (*model.MessageResponse, error) {
	if err := h.auth.ResendVerification(c.Request().Context(), payload); err != nil {
		return nil, err
	}
	return message("If the account exists and is unverified, a new code has been sent"), nil
}

func (h *AuthHandler) ForgotPassword(c echo.Context, payload *auth.EmailRequest) (*model.MessageResponse, error) {
	if err := h.auth.ForgotPassword(c.Request().Context(), payload); err != nil {
		return nil, err
	}
	return message("If the account exists, a password reset code has been sent"), nil
}

func (h *AuthHandler) ResetPassword(c echo.Context, payload *auth.ResetPasswordRequest) (*model.MessageResponse, error) {
	if err := h.auth.ResetPassword(c.Request().Context(), payload); err != nil {
		return nil, err
	}
	return message("Password has been reset, please log in again"), nil
}

func (h *AuthHandler) ChangePassword(c echo.Context, payload *auth.ChangePasswordRequest) (*model.MessageResponse, error) {
	if err := h.auth.ChangePassword(c.Request().Context(), currentActor(c).ID, payload); err != nil {
		return nil, err
	}
	return message("Password changed, please log in again"), nil
}

type providersResponse struct {
	Providers []string `json:"providers"`
}

func (h *AuthHandler) OAuthProviders(c echo.Context, _ *model.EmptyRequest) (*providersResponse, error) {
	return &providersResponse{Providers: h.auth.OAuthProviders()}, nil
}

// OAuthLogin redirects the browser to the provider's consent page.
func (h *AuthHandler) OAuthLogin(c echo.Context, payload *auth.OAuthLoginRequest) (string, error) {
	return h.auth.OAuthLoginURL(c.Request().Context(), payload)
}

// OAuthURL is OAuthLogin for clients that open the consent page themselves.
func (h *AuthHandler) OAuthURL(c echo.Context, payload *auth.OAuthLoginRequest) (*auth.OAuthURLResponse, error) {
	url, err := h.auth.OAuthLoginURL(c.Request().Context(), payload)
	if err != nil {
		return nil, err
	}
	return &auth.OAuthURLResponse{URL: url}, nil
}

func (h *AuthHandler) OAuthCallback(c echo.Context, payload *auth.OAuthCallbackRequest) (*auth.TokenResponse, error) {
	return h.auth.OAuthCallback(c.Request().Context(), payload, clientInfo(c))
}
