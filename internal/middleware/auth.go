package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/quiz-api/internal/errs"
	"github.com/deppfellow/quiz-api/internal/model/user"
	"github.com/deppfellow/quiz-api/internal/server"
)

const (
	UserKey        = "user"
	AccessTokenKey = "access_token"
)

// Authenticator resolves an access token to the active user that owns it.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*user.User, error)
}

type AuthMiddleware struct {
	server *server.Server
	auth   Authenticator
}

func NewAuthMiddleware(s *server.Server, auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		auth:   auth,
	}
}

var errMissingToken = errs.NewUnauthorizedError("Missing or malformed bearer token", true)

// RequireAuth rejects requests without a valid "Authorization: Bearer" access
// token. On success the user, its id and its role are stored in the echo
// context and added to the request logger.
func (a *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		raw, ok := BearerToken(c)
		if !ok {
			return errMissingToken
		}

		u, err := a.auth.Authenticate(c.Request().Context(), raw)
		if err != nil {
			GetLogger(c).Warn().
				Err(err).
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Msg("authentication failed")
			return err
		}

		c.Set(UserKey, u)
		c.Set(AccessTokenKey, raw)
		c.Set(UserIDKey, u.ID.String())
		c.Set(UserRoleKey, string(u.UserType))

		logger := GetLogger(c).With().
			Str("user_id", u.ID.String()).
			Str("user_role", string(u.UserType)).
			Logger()
		c.Set(LoggerKey, &logger)

		logger.Debug().
			Str("function", "RequireAuth").
			Dur("duration", time.Since(start)).
			Msg("user authenticated")

		return next(c)
	}
}

// RequireAdmin must run after RequireAuth.
func (a *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u := GetUser(c)
		if u == nil {
			return errMissingToken
		}
		if !u.IsAdmin() {
			return errs.NewForbiddenError("Admin privileges required", true)
		}
		return next(c)
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUser returns the authenticated user, or nil outside RequireAuth.
func GetUser(c echo.Context) *user.User {
	u, _ := c.Get(UserKey).(*user.User)
	return u
}

func GetAccessToken(c echo.Context) string {
	token, _ := c.Get(AccessTokenKey).(string)
	return token
}
