package auth

import (
	"time"

	"github.com/deppfellow/quiz-api/internal/model/user"
	"github.com/deppfellow/quiz-api/internal/validation"
)

type RegisterRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=200"`
	Email           string `json:"email" validate:"required,email,max=320"`
	Password        string `json:"password" validate:"required,password,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

func (r *RegisterRequest) Validate() error {
	return validation.Struct(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	return validation.Struct(r)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (r *RefreshRequest) Validate() error {
	return validation.Struct(r)
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required,len=6,numeric"`
}

func (r *VerifyEmailRequest) Validate() error {
	return validation.Struct(r)
}

// EmailRequest carries just an address: resend verification and forgot
// password.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *EmailRequest) Validate() error {
	return validation.Struct(r)
}

type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Token           string `json:"token" validate:"required,len=6,numeric"`
	Password        string `json:"password" validate:"required,password,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

func (r *ResetPasswordRequest) Validate() error {
	return validation.Struct(r)
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password,max=72,nefield=OldPassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

func (r *ChangePasswordRequest) Validate() error {
	return validation.Struct(r)
}

type OAuthLoginRequest struct {
	Provider string `param:"provider" validate:"required,oneof=google github"`
}

func (r *OAuthLoginRequest) Validate() error {
	return validation.Struct(r)
}

// OAuthCallbackRequest is what the provider appends to the redirect URL.
type OAuthCallbackRequest struct {
	Provider         string `param:"provider" validate:"required,oneof=google github"`
	State            string `query:"state" validate:"required"`
	Code             string `query:"code" validate:"required_without=Error"`
	Error            string `query:"error"`
	ErrorDescription string `query:"error_description"`
}

func (r *OAuthCallbackRequest) Validate() error {
	return validation.Struct(r)
}

type TokenResponse struct {
	AccessToken      string     `json:"access_token"`
	RefreshToken     string     `json:"refresh_token"`
	TokenType        string     `json:"token_type"`
	ExpiresAt        time.Time  `json:"expires_at"`
	RefreshExpiresAt time.Time  `json:"refresh_expires_at"`
	User             *user.User `json:"user"`
}

type OAuthURLResponse struct {
	URL string `json:"url"`
}
