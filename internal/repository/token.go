package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/quiz-api/internal/model/auth"
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/sqlerr"
)

type TokenRepository struct {
	server *server.Server
}

func NewTokenRepository(s *server.Server) *TokenRepository {
	return &TokenRepository{server: s}
}

func (r *TokenRepository) Create(ctx context.Context, t *auth.Token) error {
	stmt := `
		INSERT INTO user_tokens (access_token, refresh_token, user_id, ip, user_agent, expired_at)
		VALUES (@access_token, @refresh_token, @user_id, @ip, @user_agent, @expired_at)
	`

	_, err := r.server.DB.Pool.Exec(ctx, stmt, pgx.NamedArgs{
		"access_token":  t.AccessToken,
		"refresh_token": t.RefreshToken,
		"user_id":       t.UserID,
		"ip":            t.IP,
		"user_agent":    t.UserAgent,
		"expired_at":    t.ExpiredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert into table:user_tokens for user_id=%s: %w", t.UserID, err)
	}
	return nil
}

func (r *TokenRepository) GetByAccessToken(ctx context.Context, accessToken string) (*auth.Token, error) {
	return r.getOne(ctx, `SELECT * FROM user_tokens WHERE access_token = @token`, accessToken)
}

func (r *TokenRepository) GetByRefreshToken(ctx context.Context, refreshToken string) (*auth.Token, error) {
	return r.getOne(ctx, `SELECT * FROM user_tokens WHERE refresh_token = @token`, refreshToken)
}

func (r *TokenRepository) getOne(ctx context.Context, stmt, token string) (*auth.Token, error) {
	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{"token": token})
	if err != nil {
		return nil, fmt.Errorf("failed to execute get token query: %w", err)
	}

	t, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[auth.Token])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound("user_tokens")
		}
		return nil, fmt.Errorf("failed to collect row from table:user_tokens: %w", err)
	}
	return t, nil
}

// Rotate swaps the session identified by oldRefresh for a new token pair.
// It fails with a not found error if the session was revoked meanwhile.
func (r *TokenRepository) Rotate(ctx context.Context, oldRefresh string, next *auth.Token) error {
	stmt := `
		UPDATE user_tokens
		SET
			access_token = @access_token,
			refresh_token = @refresh_token,
			ip = @ip,
			user_agent = @user_agent,
			expired_at = @expired_at,
			updated_at = CURRENT_TIMESTAMP
		WHERE refresh_token = @old_refresh AND revoked_at IS NULL
	`

	tag, err := r.server.DB.Pool.Exec(ctx, stmt, pgx.NamedArgs{
		"old_refresh":   oldRefresh,
		"access_token":  next.AccessToken,
		"refresh_token": next.RefreshToken,
		"ip":            next.IP,
		"user_agent":    next.UserAgent,
		"expired_at":    next.ExpiredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to rotate table:user_tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.NotFound("user_tokens")
	}
	return nil
}

// Revoke expires the session at the given instant.
func (r *TokenRepository) Revoke(ctx context.Context, accessToken string, at time.Time) error {
	stmt := `
		UPDATE user_tokens
		SET expired_at = LEAST(expired_at, @at), revoked_at = @at, updated_at = CURRENT_TIMESTAMP
		WHERE access_token = @access_token AND revoked_at IS NULL
	`

	_, err := r.server.DB.Pool.Exec(ctx, stmt, pgx.NamedArgs{"access_token": accessToken, "at": at})
	if err != nil {
		return fmt.Errorf("failed to revoke token in table:user_tokens: %w", err)
	}
	return nil
}

// RevokeAllForUser ends every open session of the user.
func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID, at time.Time) error {
	stmt := `
		UPDATE user_tokens
		SET expired_at = LEAST(expired_at, @at), revoked_at = @at, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = @user_id AND revoked_at IS NULL
	`

	_, err := r.server.DB.Pool.Exec(ctx, stmt, pgx.NamedArgs{"user_id": userID, "at": at})
	if err != nil {
		return fmt.Errorf("failed to revoke tokens in table:user_tokens for user_id=%s: %w", userID, err)
	}
	return nil
}
