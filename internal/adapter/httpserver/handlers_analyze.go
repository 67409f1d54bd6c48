package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

type analyzeRequest struct {
	Text string `json:"text" validate:"required"`
}

func (s *Server) registerAnalyzeRoutes() {
	limiter := newRateLimiter(s.config.AnalyzeRateLimit, s.config.AnalyzeRateBurst, s.httpMetrics)
	s.echo.POST("/analyze", s.handleAnalyze, limiter)
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := s.app.Analyze(c.Request().Context(), req.Text)
	if err != nil {
		return translateError(err)
	}

	if err := c.JSON(http.StatusOK, result); err != nil {
		return fmt.Errorf("failed to write analyze response: %w", err)
	}
	return nil
}
