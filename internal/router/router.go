// Package router builds the echo instance: global middleware in order, the
// system routes and the versioned API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/quiz-api/internal/handler"
	"github.com/deppfellow/quiz-api/internal/middleware"
	"github.com/deppfellow/quiz-api/internal/server"
	"github.com/deppfellow/quiz-api/internal/service"
)

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	return newRouter(h, middleware.NewMiddlewares(s, services.Auth))
}

func newRouter(h *handler.Handlers, mw *middleware.Middlewares) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	// Order matters: the request id feeds the context logger, the New
	// Relic transaction must exist before EnhanceTracing and the logger
	// must exist before RequestLogger reads it.
	router.Use(
		mw.Global.Recover(),
		middleware.RequestID(),
		mw.Tracing.NewRelicMiddleware(),
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.CORS(),
		mw.Global.Secure(),
		mw.Global.BodyLimit(),
		mw.Global.RequestLogger(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerV1Routes(v1, h, mw)

	return router
}
