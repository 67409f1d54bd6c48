package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/reviewpulse/internal/adapter/metrics"
	"github.com/pscheid92/reviewpulse/internal/app"
	"github.com/pscheid92/reviewpulse/internal/aspect"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/platform/config"
)

type appService interface {
	Analyze(ctx context.Context, text string) (aspect.Result, error)

	CreateProductName(ctx context.Context, name string) (*domain.ProductName, error)
	CreateProduct(ctx context.Context, p domain.NewProduct) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListProductsByName(ctx context.Context, productNameID int64) ([]domain.Product, error)

	CreateRating(ctx context.Context, r domain.NewRating) (*domain.RatingRecord, error)
	ListRatingsByProduct(ctx context.Context, productID int64) ([]domain.RatingRecord, error)
	ListRatingsByReview(ctx context.Context, reviewID int64) ([]domain.RatingRecord, error)

	CreateReview(ctx context.Context, r domain.NewReview) (*domain.ProductReview, error)
	ListReviewsByProduct(ctx context.Context, productID int64) ([]domain.ProductReview, error)

	GetProductRates(ctx context.Context, productID int64) (*app.ProductRates, error)
	GetProductReviews(ctx context.Context, productID int64) (*app.ProductReviews, error)
	RateStats(ctx context.Context, productID int64) (*app.RateStats, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	app    appService

	schema       domain.AspectSchema
	healthChecks []HealthCheck
	clock        clockwork.Clock
	startTime    time.Time

	httpMetrics    *metrics.HTTPMetrics
	metricsHandler http.Handler
}

// NewServer wires routes onto a fresh echo instance. reg may be nil, in which
// case neither the metrics middleware nor /metrics are installed.
func NewServer(cfg *config.Config, app appService, schema domain.AspectSchema, healthChecks []HealthCheck, reg *prometheus.Registry, clock clockwork.Clock) *Server {
	srv := &Server{
		echo:         newEcho(),
		config:       cfg,
		app:          app,
		schema:       schema,
		healthChecks: healthChecks,
		clock:        clock,
		startTime:    clock.Now(),
	}
	if reg != nil {
		srv.httpMetrics = metrics.NewHTTPMetrics(reg)
		srv.metricsHandler = metrics.Handler(reg)
	}

	srv.registerRoutes()
	return srv
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Validator = newRequestValidator()
	return e
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
