package httpserver

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/pscheid92/reviewpulse/internal/adapter/metrics"
	apperrors "github.com/pscheid92/reviewpulse/internal/platform/errors"
)

const rateLimiterExpiry = 5 * time.Minute

// newRateLimiter limits requests per client IP. It guards the analyze
// endpoint, where every request may cost a model server round trip.
// Rejections carry Retry-After and are counted per route when m is non-nil.
func newRateLimiter(ratePerSecond float64, burst int, m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterExpiry,
		},
	)
	retryAfter := retryAfterSeconds(ratePerSecond)

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			if m != nil {
				m.RateLimited.WithLabelValues(c.Path()).Inc()
			}
			c.Response().Header().Set("Retry-After", retryAfter)
			return c.JSON(http.StatusTooManyRequests, apperrors.ErrorResponse{
				Error: "rate limit exceeded",
				Type:  apperrors.TypeValidation,
			})
		},
	})
}

// retryAfterSeconds is the time until one token refills, at least a second.
func retryAfterSeconds(ratePerSecond float64) string {
	if ratePerSecond <= 0 {
		return strconv.Itoa(int(rateLimiterExpiry.Seconds()))
	}
	return strconv.Itoa(int(math.Max(1, math.Ceil(1/ratePerSecond))))
}
