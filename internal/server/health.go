package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/azhar1598/xplore-be/internal/util"
)

const healthCheckTimeout = 3 * time.Second

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler reports dependency reachability and the text circuit state.
type HealthHandler struct {
	checks  map[string]HealthCheck
	circuit func() util.CircuitBreakerStatus
}

func NewHealthHandler(checks map[string]HealthCheck, circuit func() util.CircuitBreakerStatus) *HealthHandler {
	return &HealthHandler{checks: checks, circuit: circuit}
}

func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	healthy := true
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			healthy = false
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	payload := map[string]any{
		"status": "ok",
		"checks": results,
	}
	if h.circuit != nil {
		payload["textCircuit"] = h.circuit()
	}

	if !healthy {
		payload["status"] = "degraded"
		return Success(c, http.StatusServiceUnavailable, "service degraded", payload)
	}
	return Success(c, http.StatusOK, "service healthy", payload)
}
