package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/quiz-api/internal/middleware"
	"github.com/deppfellow/quiz-api/internal/server"
)

// dependencyCheck pings one backing service.
type dependencyCheck struct {
	name string
	ping func(ctx context.Context) error
}

type HealthHandler struct {
	Handler
	checks  []dependencyCheck
	timeout time.Duration
}

// NewHealthHandler registers a check for every dependency that is both
// connected and listed in observability.health_checks.checks.
func NewHealthHandler(s *server.Server) *HealthHandler {
	h := &HealthHandler{Handler: NewHandler(s), timeout: 5 * time.Second}

	obs := s.Config.Observability
	if obs == nil {
		return h
	}
	if obs.HealthChecks.Timeout > 0 {
		h.timeout = obs.HealthChecks.Timeout
	}

	if s.DB != nil && obs.HasCheck("database") {
		h.checks = append(h.checks, dependencyCheck{name: "database", ping: s.DB.Pool.Ping})
	}
	if s.Redis != nil && obs.HasCheck("redis") {
		h.checks = append(h.checks, dependencyCheck{name: "redis", ping: func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}})
	}

	return h
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]checkResult `json:"checks"`
}

// CheckHealth answers 200 when PostgreSQL and Redis both respond and 503
// otherwise. Redis counts because mail delivery and OAuth state live there.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()

	response := healthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]checkResult, len(h.checks)),
	}

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		checkStart := time.Now()
		err := check.ping(ctx)
		elapsed := time.Since(checkStart)
		cancel()

		if err != nil {
			response.Status = "unhealthy"
			response.Checks[check.name] = checkResult{Status: "unhealthy", ResponseTime: elapsed.String(), Error: err.Error()}

			logger.Error().Err(err).Dur("response_time", elapsed).Msgf("%s health check failed", check.name)
			h.recordFailure(check.name, elapsed, err)
			continue
		}

		response.Checks[check.name] = checkResult{Status: "healthy", ResponseTime: elapsed.String()}
	}

	if response.Status != "healthy" {
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")
	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) recordFailure(check string, elapsed time.Duration, err error) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", map[string]any{
		"check_type":       check,
		"operation":        "health_check",
		"error_type":       check + "_unhealthy",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    err.Error(),
	})
}
