package user

import (
	"time"

	"github.com/deppfellow/quiz-api/internal/model"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBlocked  Status = "blocked"
)

type Type string

const (
	TypeAdmin Type = "admin"
	TypeUser  Type = "user"
)

type User struct {
	model.Base
	Name                   string     `json:"name" db:"name"`
	Email                  string     `json:"email" db:"email"`
	PhoneNo                *string    `json:"phone_no" db:"phone_no"`
	DialCode               *string    `json:"dial_code" db:"dial_code"`
	Password               string     `json:"-" db:"password"`
	Status                 Status     `json:"status" db:"status"`
	UserType               Type       `json:"user_type" db:"user_type"`
	EmailVerifiedAt        *time.Time `json:"email_verified_at" db:"email_verified_at"`
	EmailVerifyToken       *string    `json:"-" db:"email_verify_token"`
	EmailVerifyExpiredAt   *time.Time `json:"-" db:"email_verify_expired_at"`
	PasswordResetToken     *string    `json:"-" db:"password_reset_token"`
	PasswordResetExpiredAt *time.Time `json:"-" db:"password_reset_expired_at"`
	DeletedAt              *time.Time `json:"-" db:"deleted_at"`
}

func (u *User) IsAdmin() bool {
	return u.UserType == TypeAdmin
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}
