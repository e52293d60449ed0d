package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	xhttp "GhostSniper/pkg/http"
)

// HealthCheck reports a dependency as healthy when it returns nil.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	started time.Time
	checks  map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{started: time.Now(), checks: checks}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}
	return xhttp.DataResponse(c, code, map[string]any{
		"status": status,
		"uptime": time.Since(h.started).Round(time.Second).String(),
		"deps":   deps,
	})
}
