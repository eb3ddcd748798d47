package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/quiz-api/internal/model/user"
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/sqlerr"
)

type UserRepository struct {
	server *server.Server
}

func NewUserRepository(s *server.Server) *UserRepository {
	return &UserRepository{server: s}
}

// CreateUserParams are the columns set when an account is created.
type CreateUserParams struct {
	Name                 string
	Email                string
	PasswordHash         string
	Status               user.Status
	UserType             user.Type
	EmailVerifiedAt      *time.Time
	EmailVerifyToken     *string
	EmailVerifyExpiredAt *time.Time
}

func (r *UserRepository) Create(ctx context.Context, params CreateUserParams) (*user.User, error) {
	stmt := `
		INSERT INTO users (
			name, email, password, status, user_type,
			email_verified_at, email_verify_token, email_verify_expired_at
		)
		VALUES (
			@name, lower(@email), @password, @status, @user_type,
			@email_verified_at, @email_verify_token, @email_verify_expired_at
		)
		RETURNING *
	`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"name":                    params.Name,
		"email":                   params.Email,
		"password":                params.PasswordHash,
		"status":                  params.Status,
		"user_type":               params.UserType,
		"email_verified_at":       params.EmailVerifiedAt,
		"email_verify_token":      params.EmailVerifyToken,
		"email_verify_expired_at": params.EmailVerifyExpiredAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute create user query for email=%s: %w", params.Email, err)
	}

	u, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[user.User])
	if err != nil {
		return nil, fmt.Errorf("failed to collect row from table:users for email=%s: %w", params.Email, err)
	}

	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	stmt := `SELECT * FROM users WHERE id = @id AND deleted_at IS NULL`

	return r.getOne(ctx, stmt, pgx.NamedArgs{"id": id})
}

// GetByEmail matches case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	stmt := `SELECT * FROM users WHERE lower(email) = lower(@email) AND deleted_at IS NULL`

	return r.getOne(ctx, stmt, pgx.NamedArgs{"email": email})
}

func (r *UserRepository) getOne(ctx context.Context, stmt string, args pgx.NamedArgs) (*user.User, error) {
	rows, err := r.server.DB.Pool.Query(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute get user query: %w", err)
	}

	u, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[user.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound("users")
		}
		return nil, fmt.Errorf("failed to collect row from table:users: %w", err)
	}

	return u, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, payload *user.UpdateProfileRequest) (*user.User, error) {
	stmt := `
		UPDATE users
		SET
			name = COALESCE(@name, name),
			phone_no = COALESCE(@phone_no, phone_no),
			dial_code = COALESCE(@dial_code, dial_code),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = @id AND deleted_at IS NULL
		RETURNING *
	`

	return r.getOne(ctx, stmt, pgx.NamedArgs{
		"id":        id,
		"name":      payload.Name,
		"phone_no":  payload.PhoneNo,
		"dial_code": payload.DialCode,
	})
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	stmt := `
		UPDATE users
		SET email_verify_token = @token, email_verify_expired_at = @expires_at, updated_at = CURRENT_TIMESTAMP
		WHERE id = @id AND deleted_at IS NULL
	`

	return r.execOne(ctx, stmt, pgx.NamedArgs{"id": id, "token": token, "expires_at": expiresAt})
}

// MarkVerified activates an inactive account and clears the verification
// code. A blocked account stays blocked.
func (r *UserRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	stmt := `
		UPDATE users
		SET
			status = CASE WHEN status = 'inactive' THEN 'active' ELSE status END,
			email_verified_at = CURRENT_TIMESTAMP,
			email_verify_token = NULL,
			email_verify_expired_at = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = @id AND deleted_at IS NULL
	`

	return r.execOne(ctx, stmt, pgx.NamedArgs{"id": id})
}

func (r *UserRepository) SetPasswordResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	stmt := `
		UPDATE users
		SET password_reset_token = @token, password_reset_expired_at = @expires_at, updated_at = CURRENT_TIMESTAMP
		WHERE id = @id AND deleted_at IS NULL
	`

	return r.execOne(ctx, stmt, pgx.NamedArgs{"id": id, "token": token, "expires_at": expiresAt})
}

// UpdatePassword stores a new hash and clears any pending reset code.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	stmt := `
		UPDATE users
		SET
			password = @password,
			password_reset_token = NULL,
			password_reset_expired_at = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = @id AND deleted_at IS NULL
	`

	return r.execOne(ctx, stmt, pgx.NamedArgs{"id": id, "password": hash})
}

func (r *UserRepository) execOne(ctx context.Context, stmt string, args pgx.NamedArgs) error {
	tag, err := r.server.DB.Pool.Exec(ctx, stmt, args)
	if err != nil {
		return fmt.Errorf("failed to update table:users: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.NotFound("users")
	}
	return nil
}
