package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/quiz-api/internal/server"
)

// TracingMiddleware wires New Relic into echo. Both middlewares pass
// requests through untouched when the agent is disabled.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware starts a transaction per request.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing tags the transaction with the matched route, the resource
// or OAuth provider in the path and the caller, and notices returned errors.
// Caller fields are read after the handler ran, since RequireAuth sits on
// the route groups, below this middleware.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			txn.AddAttribute("http.real_ip", c.RealIP())
			if requestID := GetRequestID(c); requestID != "" {
				txn.AddAttribute("request.id", requestID)
			}

			err := next(c)

			// Route and params are only known once echo has matched the path.
			txn.AddAttribute("http.route", c.Path())
			if id := c.Param("id"); id != "" {
				txn.AddAttribute("resource.id", id)
			}
			if provider := c.Param("provider"); provider != "" {
				txn.AddAttribute("oauth.provider", provider)
			}

			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}

			if userID := GetUserID(c); userID != "" {
				txn.AddAttribute("user.id", userID)
			}
			if role, ok := c.Get(UserRoleKey).(string); ok && role != "" {
				txn.AddAttribute("user.role", role)
			}
			txn.AddAttribute("http.status_code", c.Response().Status)

			return err
		}
	}
}
