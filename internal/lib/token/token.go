// Package token issues and parses the signed JWTs used for API sessions.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/deppfellow/quiz-api/internal/config"
)

type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrWrongType    = errors.New("unexpected token type")
)

// Claims are the JWT claims of both token types. Subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	Type  Type   `json:"type"`
	jwt.RegisteredClaims
}

// Pair is an access token with its refresh token.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type Manager struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(cfg config.AuthConfig) *Manager {
	method := jwt.GetSigningMethod(cfg.JWTAlgorithm)
	if method == nil {
		method = jwt.SigningMethodHS256
	}

	return &Manager{
		secret:     []byte(cfg.SecretKey),
		method:     method,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
}

// Issue signs a new access and refresh token for the user.
func (m *Manager) Issue(userID uuid.UUID, email string) (*Pair, error) {
	now := m.now()

	access, accessExp, err := m.sign(userID, email, TypeAccess, now, m.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, refreshExp, err := m.sign(userID, email, TypeRefresh, now, m.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (m *Manager) sign(userID uuid.UUID, email string, typ Type, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)

	claims := Claims{
		Email: email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrapf(err, "failed to sign %s token", typ)
	}

	return signed, expiresAt, nil
}

// Parse verifies the signature and expiry of raw and checks its type.
func (m *Manager) Parse(raw string, want Type) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims.Type != want {
		return nil, ErrWrongType
	}

	return claims, nil
}

// UserID returns the subject as a UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}
