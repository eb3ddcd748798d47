package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/quiz-api/internal/handler"
)

// registerSystemRoutes mounts the endpoints outside the versioned API.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.HEAD("/status", h.Health.CheckHealth)

	r.Static("/static", "static")
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
