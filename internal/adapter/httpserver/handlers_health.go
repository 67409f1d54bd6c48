package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/reviewpulse/internal/platform/version"
)

const (
	startupCheckTimeout   = 2 * time.Second
	readinessCheckTimeout = 5 * time.Second
)

// HealthCheck is a named health check function. A failing Optional check is
// reported and marks the instance degraded without failing readiness; the
// circuit breakers of shared upstreams are registered that way.
type HealthCheck struct {
	Name     string
	Check    func(ctx context.Context) error
	Optional bool
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/startup", s.handleStartup)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
}

func (s *Server) handleStartup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), startupCheckTimeout)
	defer cancel()

	return s.runHealthChecks(c, ctx)
}

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Since(s.startTime).Seconds()

	response := map[string]any{
		"status": "ok",
		"uptime": uptime,
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write liveness response: %w", err)
	}

	return nil
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessCheckTimeout)
	defer cancel()

	return s.runHealthChecks(c, ctx)
}

// runHealthChecks runs every check so one response shows all failing
// dependencies; failed_check names the first required failure.
func (s *Server) runHealthChecks(c echo.Context, ctx context.Context) error {
	results := make(map[string]string, len(s.healthChecks))
	status := "ready"
	var failedName string
	var failedErr error

	for _, hc := range s.healthChecks {
		err := hc.Check(ctx)
		if err == nil {
			results[hc.Name] = "ok"
			continue
		}

		results[hc.Name] = err.Error()
		switch {
		case hc.Optional:
			status = "degraded"
		case failedErr == nil:
			failedName, failedErr = hc.Name, err
		}
	}

	if failedErr != nil {
		response := map[string]any{
			"status":       "unhealthy",
			"failed_check": failedName,
			"error":        failedErr.Error(),
			"checks":       results,
		}
		if err := c.JSON(http.StatusServiceUnavailable, response); err != nil {
			return fmt.Errorf("failed to send JSON response: %w", err)
		}
		return nil
	}

	if err := c.JSON(http.StatusOK, map[string]any{"status": status, "checks": results}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleVersion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, version.WithSchema(s.schema.ID)); err != nil {
		return fmt.Errorf("failed to write version response: %w", err)
	}
	return nil
}
